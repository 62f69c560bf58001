package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"expertdb/internal/store"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) MCPDeps {
	t.Helper()
	experts, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening expert store: %v", err)
	}
	companies, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening company store: %v", err)
	}
	return MCPDeps{Experts: experts, Companies: companies}
}

func seedExpert(t *testing.T, deps MCPDeps, id string, doc map[string]any) {
	t.Helper()
	if err := deps.Experts.Put(id, doc); err != nil {
		t.Fatalf("seeding expert %s: %v", id, err)
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// --- tests ---

func TestMCPTool_SearchExperts(t *testing.T) {
	deps := newTestMCPDeps(t)
	seedExpert(t, deps, "dr-jane-smith", map[string]any{
		"id":       "dr-jane-smith",
		"fullName": "Dr. Jane Smith",
		"currentRole": map[string]any{
			"organization": "TU München",
		},
		"expertise": map[string]any{
			"primary": []any{"Robotics", "Machine Learning"},
		},
	})
	seedExpert(t, deps, "max-weber", map[string]any{
		"id":       "max-weber",
		"fullName": "Max Weber",
		"currentRole": map[string]any{
			"organization": "ETH Zürich",
		},
	})

	handler := mcpSearchExperts(deps)
	req := makeCallToolRequest("search_experts", map[string]interface{}{
		"query": "robotics",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var hits []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &hits); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].ID != "dr-jane-smith" {
		t.Errorf("id = %q, want dr-jane-smith", hits[0].ID)
	}
}

func TestMCPTool_SearchExperts_NoMatch(t *testing.T) {
	deps := newTestMCPDeps(t)
	seedExpert(t, deps, "max-weber", map[string]any{
		"id":       "max-weber",
		"fullName": "Max Weber",
	})

	handler := mcpSearchExperts(deps)
	req := makeCallToolRequest("search_experts", map[string]interface{}{
		"query": "quantum computing",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := toolText(t, result); got != "[]" {
		t.Errorf("expected empty array, got: %s", got)
	}
}

func TestMCPTool_SearchExperts_MissingQuery(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpSearchExperts(deps)

	result, err := handler(context.Background(), makeCallToolRequest("search_experts", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing query")
	}
}

func TestMCPTool_GetExpert_NormalizesAliases(t *testing.T) {
	deps := newTestMCPDeps(t)
	seedExpert(t, deps, "dr-jane-smith", map[string]any{
		"id":           "dr-jane-smith",
		"name":         "Dr. Jane Smith",
		"organisation": "TU München",
	})

	handler := mcpGetExpert(deps)
	req := makeCallToolRequest("get_expert", map[string]interface{}{
		"id": "dr-jane-smith",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var expert struct {
		PersonalInfo struct {
			FullName string `json:"fullName"`
		} `json:"personalInfo"`
		CurrentRole struct {
			Organization string `json:"organization"`
		} `json:"currentRole"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &expert); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if expert.PersonalInfo.FullName != "Dr. Jane Smith" {
		t.Errorf("fullName = %q, want Dr. Jane Smith", expert.PersonalInfo.FullName)
	}
	if expert.CurrentRole.Organization != "TU München" {
		t.Errorf("organization = %q, want TU München", expert.CurrentRole.Organization)
	}
}

func TestMCPTool_GetExpert_NotFound(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpGetExpert(deps)

	result, err := handler(context.Background(), makeCallToolRequest("get_expert", map[string]interface{}{
		"id": "nobody",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for unknown id")
	}
}

func TestMCPTool_AddExpertNote(t *testing.T) {
	deps := newTestMCPDeps(t)
	seedExpert(t, deps, "dr-jane-smith", map[string]any{
		"id":       "dr-jane-smith",
		"fullName": "Dr. Jane Smith",
	})

	handler := mcpAddExpertNote(deps)
	req := makeCallToolRequest("add_expert_note", map[string]interface{}{
		"id":   "dr-jane-smith",
		"note": "Spoke at NeurIPS 2025",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	doc, err := deps.Experts.Get("dr-jane-smith")
	if err != nil {
		t.Fatalf("getting expert: %v", err)
	}
	enrichment, ok := doc["ai_enrichment"].(map[string]any)
	if !ok {
		t.Fatal("expected ai_enrichment block on saved record")
	}
	notes, ok := enrichment["notes"].([]any)
	if !ok || len(notes) != 1 {
		t.Fatalf("expected 1 note, got %v", enrichment["notes"])
	}
	note := notes[0].(map[string]any)
	if note["text"] != "Spoke at NeurIPS 2025" {
		t.Errorf("note text = %v, want 'Spoke at NeurIPS 2025'", note["text"])
	}
	if doc["last_updated"] == "" {
		t.Error("expected last_updated to be stamped")
	}
}

func TestMCPTool_ListCompanies(t *testing.T) {
	deps := newTestMCPDeps(t)
	if err := deps.Companies.Put("example_ai", map[string]any{
		"name":     "Example AI",
		"domain":   "example.ai",
		"industry": "Artificial Intelligence",
		"trust_score": map[string]any{
			"score": 82,
		},
	}); err != nil {
		t.Fatalf("seeding company: %v", err)
	}

	handler := mcpListCompanies(deps)
	result, err := handler(context.Background(), makeCallToolRequest("list_companies", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var entries []struct {
		Name       string `json:"name"`
		Domain     string `json:"domain"`
		TrustScore int    `json:"trust_score"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &entries); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 company, got %d", len(entries))
	}
	if entries[0].Domain != "example.ai" {
		t.Errorf("domain = %q, want example.ai", entries[0].Domain)
	}
	if entries[0].TrustScore != 82 {
		t.Errorf("trust_score = %d, want 82", entries[0].TrustScore)
	}
}

func TestMCPResource_Experts(t *testing.T) {
	deps := newTestMCPDeps(t)
	seedExpert(t, deps, "dr-jane-smith", map[string]any{
		"id":       "dr-jane-smith",
		"fullName": "Dr. Jane Smith",
	})

	handler := mcpResourceExperts(deps)
	req := mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "expertdb://experts"},
	}

	contents, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 resource content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var entries []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(tc.Text), &entries); err != nil {
		t.Fatalf("failed to parse resource: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "dr-jane-smith" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}
