package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"expertdb/internal/record"
)

const defaultScrapinURL = "https://api.scrapin.io/enrichment/profile"

// LinkedIn resolves profile data for a LinkedIn URL through scrapin.io.
type LinkedIn struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewLinkedIn(apiKey string) *LinkedIn {
	return &LinkedIn{
		baseURL:    defaultScrapinURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Profile fetches the profile behind profileURL and returns a canonical
// expert fragment. A profile the provider cannot resolve yields ErrNoData.
func (l *LinkedIn) Profile(ctx context.Context, profileURL string) (map[string]any, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("scrapin API key is required")
	}
	if profileURL == "" {
		return nil, fmt.Errorf("linkedin URL is required")
	}

	endpoint := l.baseURL + "?apikey=" + url.QueryEscape(l.apiKey) + "&linkedInUrl=" + url.QueryEscape(profileURL)

	var raw map[string]any
	err := withRetry(ctx, defaultAttempts, defaultBackoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := l.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return &statusError{status: resp.StatusCode, body: string(body)}
		}
		return json.Unmarshal(body, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("linkedin profile: %w", err)
	}

	person := record.SubMap(raw, "person")
	if person == nil {
		return nil, ErrNoData
	}
	return linkedinFragment(profileURL, person), nil
}

func linkedinFragment(profileURL string, person map[string]any) map[string]any {
	frag := map[string]any{"linkedin_url": profileURL}

	first := record.FirstString(person, "firstName")
	last := record.FirstString(person, "lastName")
	switch {
	case first != "" && last != "":
		frag["name"] = first + " " + last
	case first != "":
		frag["name"] = first
	}

	if v := record.FirstString(person, "headline"); v != "" {
		frag["position"] = v
	}
	if v := record.FirstString(person, "summary"); v != "" {
		frag["description"] = v
	}
	if v := record.FirstString(person, "location"); v != "" {
		frag["location"] = v
	}
	if v := record.FirstString(person, "photoUrl", "profilePicture"); v != "" {
		frag["image"] = v
	}

	// The first position is the current one.
	if positions := record.SubMap(person, "positions"); positions != nil {
		if history, ok := positions["positionHistory"].([]any); ok && len(history) > 0 {
			if pos, ok := history[0].(map[string]any); ok {
				if v := record.FirstString(pos, "companyName"); v != "" {
					frag["company"] = v
				}
				if v := record.FirstString(pos, "title"); v != "" {
					frag["position"] = v
				}
			}
		}
	}

	if skills := record.AsStringSlice(person["skills"]); len(skills) > 0 {
		frag["expertise"] = skills
	}

	now := time.Now().UTC().Format("2006-01-02")
	frag["sources"] = []any{
		map[string]any{
			"url":           profileURL,
			"type":          "linkedin",
			"date_accessed": now,
			"verified":      true,
		},
	}
	frag["ai_enrichment"] = map[string]any{
		"confidence":      85,
		"last_updated":    now,
		"enriched_fields": fragmentKeys(frag),
		"sources": []any{
			map[string]any{"name": "scrapin.io", "type": "linkedin_api"},
		},
	}
	return frag
}
