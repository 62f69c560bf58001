// Package api exposes the HTTP surface: record CRUD, enrichment
// endpoints wrapping the external providers, and CSV export.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"expertdb/internal/enrich"
	"expertdb/internal/record"
	"expertdb/internal/store"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Completer abstracts the generative text provider.
type Completer interface {
	EnrichExpert(ctx context.Context, expert record.Expert, opts enrich.ExpertOptions, customPrompt string) (map[string]any, error)
	EnrichCompany(ctx context.Context, company record.Company, opts enrich.CompanyOptions) (map[string]any, error)
	Research(ctx context.Context, query string, fields []string, current map[string]any) (map[string]string, error)
}

// CompanyLookup abstracts the firmographic data provider.
type CompanyLookup interface {
	Lookup(ctx context.Context, domain string) (map[string]any, error)
}

// ProfileLookup abstracts the LinkedIn profile provider.
type ProfileLookup interface {
	Profile(ctx context.Context, profileURL string) (map[string]any, error)
}

// AvatarLookup abstracts the profile photo and logo discovery service.
type AvatarLookup interface {
	Lookup(ctx context.Context, email string) (string, error)
	Logo(ctx context.Context, domain string) (string, error)
}

// NewsSearcher abstracts the news search provider.
type NewsSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]enrich.Article, error)
}

// Deps carries the stores and providers the handlers run against.
// Provider fields may be nil; endpoints backed by a nil provider answer
// 503 with a configuration hint.
type Deps struct {
	Experts   *store.Store
	Companies *store.Store

	Completer   Completer
	CompanyData CompanyLookup
	LinkedIn    ProfileLookup
	Avatar      AvatarLookup
	News        NewsSearcher

	ExportDir string
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Get("/experts", handleListExperts(deps))
	r.Post("/experts", handleCreateExperts(deps))
	r.Put("/experts", handleUpdateExpert(deps))
	r.Get("/experts/{id}", handleGetExpert(deps))
	r.Delete("/experts/{id}", handleDeleteExpert(deps))
	r.Post("/experts/{id}/enrich", handleEnrichStoredExpert(deps))

	r.Get("/companies", handleListCompanies(deps))
	r.Post("/companies", handleCreateCompanies(deps))
	r.Put("/companies", handleUpdateCompany(deps))
	r.Delete("/companies", handleDeleteCompany(deps))
	r.Get("/companies/{id}", handleGetCompany(deps))

	r.Post("/enrich-expert", handleEnrichExpert(deps))
	r.Post("/enrich-company", handleEnrichCompany(deps))
	r.Post("/enrich-profile", handleEnrichProfile(deps))
	r.Post("/research/company", handleResearchCompany(deps))
	r.Post("/research-ai", handleResearchAI(deps))
	r.Post("/news", handleNews(deps))
	r.Post("/profile-photo", handleProfilePhoto(deps))

	r.Get("/export", handleExport(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
