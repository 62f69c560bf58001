package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"expertdb/internal/record"
	"expertdb/internal/store"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Experts   *store.Store
	Companies *store.Store
}

// NewMCPServer creates an MCP server exposing the expert database to
// agent clients.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"expertdb",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("expertdb: database of AI experts and AI companies with enrichment notes."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_experts",
			mcp.WithDescription("Search experts by name, expertise, organization, location, or tag."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		mcpSearchExperts(deps),
	)

	s.AddTool(
		mcp.NewTool("get_expert",
			mcp.WithDescription("Fetch a single expert record by id."),
			mcp.WithString("id", mcp.Description("Expert record id"), mcp.Required()),
		),
		mcpGetExpert(deps),
	)

	s.AddTool(
		mcp.NewTool("add_expert_note",
			mcp.WithDescription("Attach a research note to an expert record."),
			mcp.WithString("id", mcp.Description("Expert record id"), mcp.Required()),
			mcp.WithString("note", mcp.Description("Note text"), mcp.Required()),
		),
		mcpAddExpertNote(deps),
	)

	s.AddTool(
		mcp.NewTool("list_companies",
			mcp.WithDescription("List all companies with their domain, industry, and trust score."),
		),
		mcpListCompanies(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"expertdb://experts",
			"Expert Index",
			mcp.WithResourceDescription("All experts as a JSON array of {id, name, organization}"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceExperts(deps),
	)

	return s
}

func mcpSearchExperts(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		docs, err := deps.Experts.List()
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		type hit struct {
			ID           string   `json:"id"`
			Name         string   `json:"name"`
			Organization string   `json:"organization,omitempty"`
			Location     string   `json:"location,omitempty"`
			Expertise    []string `json:"expertise,omitempty"`
		}

		needle := strings.ToLower(query)
		var hits []hit
		for _, doc := range docs {
			e := record.NormalizeExpert(doc)
			if !expertMatches(e, needle) {
				continue
			}
			hits = append(hits, hit{
				ID:           e.ID,
				Name:         e.PersonalInfo.FullName,
				Organization: e.CurrentRole.Organization,
				Location:     e.Location,
				Expertise:    e.Expertise.Primary,
			})
			if len(hits) >= limit {
				break
			}
		}

		if len(hits) == 0 {
			return mcpText("[]"), nil
		}
		b, err := json.Marshal(hits)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func expertMatches(e record.Expert, needle string) bool {
	haystack := []string{
		e.PersonalInfo.FullName,
		e.CurrentRole.Organization,
		e.Institution.Name,
		e.Location,
		e.Company,
	}
	haystack = append(haystack, e.Expertise.Primary...)
	haystack = append(haystack, e.Tags...)
	for _, h := range haystack {
		if h != "" && strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func mcpGetExpert(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		doc, err := deps.Experts.Get(id)
		if err != nil {
			return mcpError(fmt.Sprintf("expert %s: %v", id, err)), nil
		}

		b, err := json.Marshal(record.NormalizeExpert(doc))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal expert: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAddExpertNote(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		note, err := req.RequireString("note")
		if err != nil {
			return mcpError("note is required"), nil
		}

		doc, err := deps.Experts.Get(id)
		if err != nil {
			return mcpError(fmt.Sprintf("expert %s: %v", id, err)), nil
		}

		e := record.NormalizeExpert(doc)
		if e.AIEnrichment == nil {
			e.AIEnrichment = map[string]any{}
		}
		notes, _ := e.AIEnrichment["notes"].([]any)
		notes = append(notes, map[string]any{
			"text": note,
			"date": time.Now().UTC().Format("2006-01-02"),
		})
		e.AIEnrichment["notes"] = notes
		e.LastUpdated = time.Now().UTC().Format("2006-01-02")

		if err := deps.Experts.Put(id, e); err != nil {
			return mcpError(fmt.Sprintf("failed to save note: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Added note to %s", id)), nil
	}
}

func mcpListCompanies(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := deps.Companies.List()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list companies: %v", err)), nil
		}

		type entry struct {
			Name       string `json:"name"`
			Domain     string `json:"domain,omitempty"`
			Industry   string `json:"industry,omitempty"`
			TrustScore int    `json:"trust_score,omitempty"`
		}

		entries := make([]entry, 0, len(docs))
		for _, doc := range docs {
			c := record.NormalizeCompany(doc)
			e := entry{Name: c.Name, Domain: c.Domain, Industry: c.Industry}
			if c.TrustScore != nil {
				e.TrustScore = c.TrustScore.Score
			}
			entries = append(entries, e)
		}

		b, err := json.Marshal(entries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal companies: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceExperts(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		docs, err := deps.Experts.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list experts: %w", err)
		}

		type entry struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			Organization string `json:"organization,omitempty"`
		}
		entries := make([]entry, 0, len(docs))
		for _, doc := range docs {
			e := record.NormalizeExpert(doc)
			entries = append(entries, entry{
				ID:           e.ID,
				Name:         e.PersonalInfo.FullName,
				Organization: e.CurrentRole.Organization,
			})
		}

		b, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal experts: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
