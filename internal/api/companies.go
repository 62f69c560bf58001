package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"expertdb/internal/record"
	"expertdb/internal/store"
)

// companyID keys a company by its domain when one is known, falling back
// to a slug of the name.
func companyID(doc map[string]any, c record.Company) string {
	if id := record.FirstString(doc, "id"); id != "" {
		return id
	}
	if c.Domain != "" {
		return record.DomainKey(c.Domain)
	}
	if slug := record.Slugify(c.Name); slug != "" {
		return slug
	}
	return uuid.New().String()
}

func handleListCompanies(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := deps.Companies.List()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list companies: %v", err)
			return
		}

		companies := make([]record.Company, 0, len(docs))
		for _, doc := range docs {
			companies = append(companies, record.NormalizeCompany(doc))
		}
		writeJSON(w, http.StatusOK, companies)
	}
}

func handleCreateCompanies(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		docs, single, err := decodeOneOrMany(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(docs) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "no records in request")
			return
		}

		created := make([]record.Company, 0, len(docs))
		for _, doc := range docs {
			c := record.NormalizeCompany(doc)
			if c.Name == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
				return
			}
			if c.Website == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "website is required")
				return
			}
			id := companyID(doc, c)
			if id == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "record has no usable id")
				return
			}
			c.ID = id
			if c.CreatedAt == "" {
				c.CreatedAt = today()
			}
			c.LastUpdated = today()
			// Logo discovery is best effort; a miss never blocks creation.
			if c.LogoURL == "" && c.Domain != "" && deps.Avatar != nil {
				if logo, err := deps.Avatar.Logo(r.Context(), c.Domain); err == nil {
					c.LogoURL = logo
				}
			}
			if err := deps.Companies.Put(id, c); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to save company: %v", err)
				return
			}
			created = append(created, c)
		}

		if single {
			writeJSON(w, http.StatusCreated, created[0])
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func handleUpdateCompany(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var fragment map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fragment); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		id := record.FirstString(fragment, "id")
		if id == "" {
			if domain := record.FirstString(fragment, "domain"); domain != "" {
				id = record.DomainKey(domain)
			}
		}
		if id == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "id or domain is required")
			return
		}

		doc, err := deps.Companies.Get(id)
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "company not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load company: %v", err)
			return
		}

		current := record.NormalizeCompany(doc)
		merged, changed := record.MergeCompany(current, fragment)
		if changed {
			merged.LastUpdated = today()
			if err := deps.Companies.Put(id, merged); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to save company: %v", err)
				return
			}
		}
		writeJSON(w, http.StatusOK, merged)
	}
}

func handleGetCompany(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		doc, err := deps.Companies.Get(id)
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			httpError(w, http.StatusNotFound, "not_found", "company not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load company: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, record.NormalizeCompany(doc))
	}
}

func handleDeleteCompany(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := r.URL.Query().Get("domain")
		if domain == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "domain query parameter is required")
			return
		}

		err := deps.Companies.Delete(record.DomainKey(domain))
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			httpError(w, http.StatusNotFound, "not_found", "company not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete company: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
