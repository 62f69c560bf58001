package api

import (
	"net/http"

	"expertdb/internal/export"
	"expertdb/internal/record"
)

func handleExport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expertDocs, err := deps.Experts.List()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list experts: %v", err)
			return
		}
		companyDocs, err := deps.Companies.List()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list companies: %v", err)
			return
		}

		experts := make([]record.Expert, 0, len(expertDocs))
		for _, doc := range expertDocs {
			experts = append(experts, record.NormalizeExpert(doc))
		}
		companies := make([]record.Company, 0, len(companyDocs))
		for _, doc := range companyDocs {
			companies = append(companies, record.NormalizeCompany(doc))
		}

		expertsPath, companiesPath, err := export.All(deps.ExportDir, experts, companies)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "export failed: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"experts":   expertsPath,
			"companies": companiesPath,
		})
	}
}
