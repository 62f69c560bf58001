package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultNewsURL = "https://newsapi.org/v2/everything"

// Article is a single news hit as returned to API clients.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// News searches recent articles mentioning a query via newsapi.org.
type News struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewNews(apiKey string) *News {
	return &News{
		baseURL:    defaultNewsURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Search returns up to limit articles for the query, newest first.
func (n *News) Search(ctx context.Context, query string, limit int) ([]Article, error) {
	if n.apiKey == "" {
		return nil, fmt.Errorf("news API key is required")
	}
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 || limit > 20 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", fmt.Sprint(limit))

	var payload struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			URLToImage  string `json:"urlToImage"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}

	err := withRetry(ctx, defaultAttempts, defaultBackoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Api-Key", n.apiKey)

		resp, err := n.httpClient.Do(req)
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
		return json.Unmarshal(body, &payload)
	})
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("news search: %s", payload.Message)
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			ImageURL:    a.URLToImage,
		})
	}
	return articles, nil
}
