package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"expertdb/internal/record"
)

const defaultCompanyDataURL = "https://api-lr.agent.ai/v1/company/lite"

// ErrNoData marks a provider response that was well-formed but empty.
var ErrNoData = errors.New("provider returned no data")

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Version/17.3 Safari/605.1.15",
}

// CompanyData looks up firmographic data by domain via the agent.ai
// company endpoint.
type CompanyData struct {
	baseURL    string
	httpClient *http.Client
}

func NewCompanyData() *CompanyData {
	return &CompanyData{
		baseURL:    defaultCompanyDataURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Lookup fetches company data for a domain and returns a canonical
// fragment ready for the merge engine. A domain the provider does not
// know yields ErrNoData.
func (c *CompanyData) Lookup(ctx context.Context, domain string) (map[string]any, error) {
	if domain == "" {
		return nil, fmt.Errorf("domain is required")
	}

	payload, err := json.Marshal(map[string]string{"domain": domain})
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	err = withRetry(ctx, defaultAttempts, defaultBackoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])

		resp, err := c.httpClient.Do(req)
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
		return nil, fmt.Errorf("company lookup for %s: %w", domain, err)
	}

	props := record.SubMap(raw, "properties")
	if props == nil {
		props = raw
	}
	if len(props) == 0 {
		return nil, ErrNoData
	}
	return companyFragment(domain, props), nil
}

// companyFragment maps agent.ai property names onto the canonical company
// shape. Unknown properties are dropped rather than carried verbatim.
func companyFragment(domain string, props map[string]any) map[string]any {
	frag := map[string]any{"domain": domain}

	setIf := func(key string, srcKeys ...string) {
		if v := record.FirstString(props, srcKeys...); v != "" {
			frag[key] = v
		}
	}
	setIf("name", "name", "company_name")
	setIf("legal_name", "legal_name")
	setIf("company_type", "type", "company_type")
	setIf("industry", "industry")
	setIf("description", "description", "seo_description")
	setIf("website", "website", "domain_url")
	setIf("logo_url", "logo", "logo_url")
	setIf("street_address", "street", "address")
	setIf("city", "city")
	setIf("state", "state")
	setIf("postal_code", "postal_code", "zip")
	setIf("country", "country")
	setIf("email", "email")
	setIf("phone", "phone")
	setIf("linkedin_url", "linkedin_url", "linkedin")
	setIf("twitter_url", "twitter_url", "twitter")
	setIf("facebook_url", "facebook_url", "facebook")

	if n := record.FirstInt(props, "founded_year", "year_founded", "founded"); n != nil {
		frag["founded_year"] = *n
	}
	if n := record.FirstInt(props, "employee_count", "employees", "headcount"); n != nil {
		frag["employee_count"] = *n
	}
	if n := record.FirstInt(props, "followers", "linkedin_followers"); n != nil {
		frag["linkedin_followers"] = *n
	}
	if techs := record.AsStringSlice(props["technologies"]); len(techs) > 0 {
		frag["technologies"] = techs
	}
	if cats := record.AsStringSlice(props["tech_categories"]); len(cats) > 0 {
		frag["tech_categories"] = cats
	}
	if tags := record.AsStringSlice(props["tags"]); len(tags) > 0 {
		frag["tags"] = tags
	}

	now := time.Now().UTC().Format("2006-01-02")
	frag["sources"] = []any{
		map[string]any{
			"url":           "https://agent.ai",
			"type":          "company_data_api",
			"date_accessed": now,
			"verified":      true,
		},
	}
	frag["ai_enrichment"] = map[string]any{
		"confidence":      completeness(frag),
		"last_updated":    now,
		"enriched_fields": fragmentKeys(frag),
		"sources": []any{
			map[string]any{"name": "agent.ai", "type": "company_data_api"},
		},
	}
	return frag
}

// completeness scores how much of the interesting profile the provider
// filled in, on a 0..100 scale.
func completeness(frag map[string]any) int {
	weighted := []string{
		"name", "industry", "description", "website", "founded_year",
		"employee_count", "linkedin_url", "city", "country", "technologies",
	}
	have := 0
	for _, key := range weighted {
		if _, ok := frag[key]; ok {
			have++
		}
	}
	return have * 100 / len(weighted)
}

func fragmentKeys(frag map[string]any) []any {
	keys := make([]any, 0, len(frag))
	for key := range frag {
		if key == "domain" || key == "sources" || key == "ai_enrichment" {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
