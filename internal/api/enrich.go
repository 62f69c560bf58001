package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"expertdb/internal/enrich"
	"expertdb/internal/record"
	"expertdb/internal/store"
)

// handleEnrichStoredExpert runs generative enrichment against a stored
// record and merges the result back. A provider failure leaves the store
// untouched.
func handleEnrichStoredExpert(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Completer == nil {
			httpError(w, http.StatusServiceUnavailable, "provider_unavailable", "generative enrichment is not configured")
			return
		}

		id := chi.URLParam(r, "id")
		doc, err := deps.Experts.Get(id)
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			httpError(w, http.StatusNotFound, "not_found", "expert not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load expert: %v", err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Options      enrich.ExpertOptions `json:"options"`
			CustomPrompt string               `json:"customPrompt"`
		}
		// An empty body means "enrich everything".
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Options == (enrich.ExpertOptions{}) {
			req.Options = enrich.ExpertOptions{
				AcademicBackground: true,
				ResearchAreas:      true,
				Publications:       true,
				Expertise:          true,
				Projects:           true,
			}
		}
		// A custom prompt implies the custom-prompt mode.
		if req.CustomPrompt != "" {
			req.Options.CustomPrompt = true
		}

		current := record.NormalizeExpert(doc)
		fragment, err := deps.Completer.EnrichExpert(r.Context(), current, req.Options, req.CustomPrompt)
		if err != nil {
			httpError(w, http.StatusBadGateway, "enrichment_failed", "%v", err)
			return
		}

		merged, changed := record.MergeExpert(current, fragment)
		if changed {
			merged.LastUpdated = today()
			if err := deps.Experts.Put(id, merged); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to save expert: %v", err)
				return
			}
		}
		writeJSON(w, http.StatusOK, merged)
	}
}

// handleEnrichExpert enriches a posted record without persisting
// anything; the response is the provider fragment.
func handleEnrichExpert(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Completer == nil {
			httpError(w, http.StatusServiceUnavailable, "provider_unavailable", "generative enrichment is not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Expert       map[string]any       `json:"expert"`
			Options      enrich.ExpertOptions `json:"options"`
			CustomPrompt string               `json:"customPrompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Expert) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "expert record is required")
			return
		}
		if req.CustomPrompt != "" {
			req.Options.CustomPrompt = true
		}

		fragment, err := deps.Completer.EnrichExpert(r.Context(), record.NormalizeExpert(req.Expert), req.Options, req.CustomPrompt)
		if err != nil {
			httpError(w, http.StatusBadGateway, "enrichment_failed", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, fragment)
	}
}

func handleEnrichCompany(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Completer == nil {
			httpError(w, http.StatusServiceUnavailable, "provider_unavailable", "generative enrichment is not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Company map[string]any        `json:"company"`
			Options enrich.CompanyOptions `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Company) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "company record is required")
			return
		}

		fragment, err := deps.Completer.EnrichCompany(r.Context(), record.NormalizeCompany(req.Company), req.Options)
		if err != nil {
			httpError(w, http.StatusBadGateway, "enrichment_failed", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, fragment)
	}
}

// handleEnrichProfile resolves a LinkedIn profile URL into an expert
// fragment via the profile provider.
func handleEnrichProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.LinkedIn == nil {
			httpError(w, http.StatusServiceUnavailable, "provider_unavailable", "profile enrichment is not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var doc map[string]any
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		profileURL := record.FirstString(doc, "linkedin_url", "linkedinUrl", "url")
		if profileURL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "linkedin_url is required")
			return
		}

		fragment, err := deps.LinkedIn.Profile(r.Context(), profileURL)
		if errors.Is(err, enrich.ErrNoData) {
			httpError(w, http.StatusNotFound, "not_found", "no profile data for %s", profileURL)
			return
		}
		if err != nil {
			httpError(w, http.StatusBadGateway, "enrichment_failed", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, fragment)
	}
}

// handleResearchCompany resolves firmographic data for a posted record's
// domain via the company-data provider.
func handleResearchCompany(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.CompanyData == nil {
			httpError(w, http.StatusServiceUnavailable, "provider_unavailable", "company data lookup is not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var doc map[string]any
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		domain := record.FirstString(doc, "domain")
		if domain == "" {
			domain = record.ExtractDomain(record.FirstString(doc, "website"))
		}
		if domain == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "domain or website is required")
			return
		}

		fragment, err := deps.CompanyData.Lookup(r.Context(), domain)
		if errors.Is(err, enrich.ErrNoData) {
			httpError(w, http.StatusNotFound, "not_found", "no company data for %s", domain)
			return
		}
		if err != nil {
			httpError(w, http.StatusBadGateway, "enrichment_failed", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, fragment)
	}
}

func handleResearchAI(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Completer == nil {
			httpError(w, http.StatusServiceUnavailable, "provider_unavailable", "generative enrichment is not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Query   string         `json:"query"`
			Fields  []string       `json:"fields"`
			Current map[string]any `json:"current"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
			return
		}
		if len(req.Fields) == 0 {
			req.Fields = []string{"name", "position", "company", "linkedin_url", "profile_image"}
		}

		fields, err := deps.Completer.Research(r.Context(), req.Query, req.Fields, req.Current)
		if err != nil {
			httpError(w, http.StatusBadGateway, "enrichment_failed", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, fields)
	}
}

func handleNews(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.News == nil {
			httpError(w, http.StatusServiceUnavailable, "provider_unavailable", "news search is not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
			return
		}

		articles, err := deps.News.Search(r.Context(), req.Query, req.Limit)
		if err != nil {
			httpError(w, http.StatusBadGateway, "enrichment_failed", "%v", err)
			return
		}
		if articles == nil {
			articles = []enrich.Article{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
	}
}

func handleProfilePhoto(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Avatar == nil {
			httpError(w, http.StatusServiceUnavailable, "provider_unavailable", "profile photo lookup is not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		url, err := deps.Avatar.Lookup(r.Context(), req.Email)
		if errors.Is(err, enrich.ErrNoData) {
			httpError(w, http.StatusNotFound, "not_found", "no photo found for %s", req.Email)
			return
		}
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}
