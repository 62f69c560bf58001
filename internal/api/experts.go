package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"expertdb/internal/record"
	"expertdb/internal/store"
)

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// expertID picks the identity for a new record: an explicit id wins, then
// a slug of the name, then a random one.
func expertID(doc map[string]any, e record.Expert) string {
	if id := record.FirstString(doc, "id"); id != "" {
		return id
	}
	if slug := record.Slugify(e.PersonalInfo.FullName); slug != "" {
		return slug
	}
	return uuid.New().String()
}

func handleListExperts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := deps.Experts.List()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list experts: %v", err)
			return
		}

		experts := make([]record.Expert, 0, len(docs))
		for _, doc := range docs {
			experts = append(experts, record.NormalizeExpert(doc))
		}
		writeJSON(w, http.StatusOK, experts)
	}
}

// handleCreateExperts accepts a single record or an array of records.
// Every document is normalized before it is written.
func handleCreateExperts(deps Deps) http.HandlerFunc {
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

		created := make([]record.Expert, 0, len(docs))
		for _, doc := range docs {
			e := record.NormalizeExpert(doc)
			e.ID = expertID(doc, e)
			if e.ID == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "record has no usable id")
				return
			}
			if deps.Experts.Exists(e.ID) {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "expert %q already exists", e.ID)
				return
			}
			e.LastUpdated = today()
			if err := deps.Experts.Put(e.ID, e); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to save expert: %v", err)
				return
			}
			created = append(created, e)
		}

		if single {
			writeJSON(w, http.StatusCreated, created[0])
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// handleUpdateExpert merges a partial fragment into the stored record.
// Keys absent from the fragment are left alone; keys present with an
// empty value clear the field.
func handleUpdateExpert(deps Deps) http.HandlerFunc {
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
			httpError(w, http.StatusBadRequest, "invalid_request_error", "id is required")
			return
		}

		doc, err := deps.Experts.Get(id)
		if errors.Is(err, store.ErrNotFound) {
			// Upsert: an unknown id creates the record from the fragment.
			e := record.NormalizeExpert(fragment)
			e.ID = id
			e.LastUpdated = today()
			if err := deps.Experts.Put(id, e); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to save expert: %v", err)
				return
			}
			writeJSON(w, http.StatusCreated, e)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load expert: %v", err)
			return
		}

		current := record.NormalizeExpert(doc)
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

func handleGetExpert(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusOK, record.NormalizeExpert(doc))
	}
}

func handleDeleteExpert(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := deps.Experts.Delete(id)
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			httpError(w, http.StatusNotFound, "not_found", "expert not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete expert: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// decodeOneOrMany reads the body as either a single JSON object or an
// array of objects. single reports which shape the client sent.
func decodeOneOrMany(r *http.Request) ([]map[string]any, bool, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, false, err
	}

	var one map[string]any
	if err := json.Unmarshal(raw, &one); err == nil {
		return []map[string]any{one}, true, nil
	}

	var many []map[string]any
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, false, err
	}
	return many, false, nil
}
