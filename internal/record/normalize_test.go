package record

import (
	"encoding/json"
	"reflect"
	"testing"
)

func toDoc(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestNormalizeExpert_CanonicalPassThrough(t *testing.T) {
	doc := map[string]any{
		"id": "exp1",
		"personalInfo": map[string]any{
			"fullName": "Dr. Anna Schmidt",
			"title":    "Dr.",
			"image":    "/experts/anna-schmidt.jpg",
			"email":    "anna.schmidt@ai-institute.de",
		},
		"institution": map[string]any{
			"name":       "Berlin Institute of AI",
			"department": "Machine Learning",
			"position":   "Senior Researcher",
		},
		"expertise": map[string]any{
			"primary":   []any{"Machine Learning", "Computer Vision"},
			"secondary": []any{"NLP"},
		},
	}

	e := NormalizeExpert(doc)

	if e.ID != "exp1" {
		t.Errorf("ID = %q, want exp1", e.ID)
	}
	if e.PersonalInfo.FullName != "Dr. Anna Schmidt" {
		t.Errorf("FullName = %q", e.PersonalInfo.FullName)
	}
	if e.Institution.Name != "Berlin Institute of AI" {
		t.Errorf("Institution.Name = %q", e.Institution.Name)
	}
	want := Expertise{
		Primary:    []string{"Machine Learning", "Computer Vision"},
		Secondary:  []string{"NLP"},
		Industries: []string{},
	}
	if !reflect.DeepEqual(e.Expertise, want) {
		t.Errorf("Expertise = %+v, want %+v", e.Expertise, want)
	}
}

func TestNormalizeExpert_LegacyAliases(t *testing.T) {
	doc := map[string]any{
		"id":           "exp2",
		"name":         "Marcus Weber",
		"titel":        "Prof. Dr.",
		"position":     "Department Head",
		"organisation": "Technical University Munich",
		"standort":     "München",
		"kontakt": map[string]any{
			"email":   "m.weber@tech-uni.de",
			"telefon": "+49 89 9876543",
			"website": "https://tum.de",
		},
		"social_media": map[string]any{
			"linkedin": "https://linkedin.com/in/marcusweber",
		},
	}

	e := NormalizeExpert(doc)

	if e.PersonalInfo.FullName != "Marcus Weber" {
		t.Errorf("FullName = %q", e.PersonalInfo.FullName)
	}
	if e.PersonalInfo.Title != "Prof. Dr." {
		t.Errorf("Title = %q", e.PersonalInfo.Title)
	}
	if e.PersonalInfo.Email != "m.weber@tech-uni.de" {
		t.Errorf("Email = %q", e.PersonalInfo.Email)
	}
	if e.PersonalInfo.Phone != "+49 89 9876543" {
		t.Errorf("Phone = %q", e.PersonalInfo.Phone)
	}
	if e.CurrentRole.Title != "Department Head" {
		t.Errorf("CurrentRole.Title = %q", e.CurrentRole.Title)
	}
	if e.CurrentRole.Organization != "Technical University Munich" {
		t.Errorf("CurrentRole.Organization = %q", e.CurrentRole.Organization)
	}
	if e.Location != "München" {
		t.Errorf("Location = %q", e.Location)
	}
	if e.LinkedInURL != "https://linkedin.com/in/marcusweber" {
		t.Errorf("LinkedInURL = %q", e.LinkedInURL)
	}
	if e.Website != "https://tum.de" {
		t.Errorf("Website = %q", e.Website)
	}
}

func TestNormalizeExpert_CanonicalWinsOverLegacy(t *testing.T) {
	doc := map[string]any{
		"name": "Old Name",
		"personalInfo": map[string]any{
			"fullName": "New Name",
		},
	}
	e := NormalizeExpert(doc)
	if e.PersonalInfo.FullName != "New Name" {
		t.Errorf("FullName = %q, want canonical key to win", e.PersonalInfo.FullName)
	}
}

func TestNormalizeExpert_FlatExpertiseFolding(t *testing.T) {
	e := NormalizeExpert(map[string]any{"expertise": []any{"ML", "NLP", "ML"}})
	want := Expertise{Primary: []string{"ML", "NLP"}, Secondary: []string{}, Industries: []string{}}
	if !reflect.DeepEqual(e.Expertise, want) {
		t.Errorf("Expertise = %+v, want %+v", e.Expertise, want)
	}
}

func TestNormalizeExpert_StringInstitution(t *testing.T) {
	e := NormalizeExpert(map[string]any{"institution": "DFKI"})
	if e.Institution.Name != "DFKI" {
		t.Errorf("Institution.Name = %q, want DFKI", e.Institution.Name)
	}
	if e.CurrentRole.Organization != "DFKI" {
		t.Errorf("CurrentRole.Organization = %q, want fallback to institution", e.CurrentRole.Organization)
	}
}

func TestNormalizeExpert_FlatPublicationsNumber(t *testing.T) {
	e := NormalizeExpert(map[string]any{"publications": float64(45), "hIndex": float64(18)})
	if e.AcademicMetrics.Publications.Total == nil || *e.AcademicMetrics.Publications.Total != 45 {
		t.Errorf("Publications.Total = %v, want 45", e.AcademicMetrics.Publications.Total)
	}
	if e.AcademicMetrics.HIndex == nil || *e.AcademicMetrics.HIndex != 18 {
		t.Errorf("HIndex = %v, want 18", e.AcademicMetrics.HIndex)
	}
}

func TestNormalizeExpert_MalformedFieldsDegrade(t *testing.T) {
	doc := map[string]any{
		"id":           float64(42),
		"expertise":    float64(7),
		"tags":         "solo-tag",
		"sources":      "not-a-list",
		"ai_enrichment": "not-a-map",
	}
	e := NormalizeExpert(doc)
	if e.ID != "42" {
		t.Errorf("ID = %q, want numeric id coerced to string", e.ID)
	}
	if len(e.Expertise.Primary) != 0 {
		t.Errorf("Expertise.Primary = %v, want empty for non-coercible input", e.Expertise.Primary)
	}
	if !reflect.DeepEqual(e.Tags, []string{"solo-tag"}) {
		t.Errorf("Tags = %v, want singleton coercion", e.Tags)
	}
	if e.Sources != nil {
		t.Errorf("Sources = %v, want nil", e.Sources)
	}
	if e.AIEnrichment != nil {
		t.Errorf("AIEnrichment = %v, want nil", e.AIEnrichment)
	}
}

func TestNormalizeExpert_Idempotent(t *testing.T) {
	docs := []map[string]any{
		{"id": "a", "name": "Jane Doe", "expertise": []any{"ML", "NLP"}},
		{
			"id":    "b",
			"titel": "Dr.",
			"kontakt": map[string]any{"email": "x@y.de"},
			"publications": float64(12),
		},
		{
			"id": "c",
			"personalInfo": map[string]any{"fullName": "Full", "image": "pic.jpg"},
			"expertise":    map[string]any{"primary": []any{"AI"}, "industries": []any{"Automotive"}},
			"ai_enrichment": map[string]any{"confidence": float64(85)},
		},
	}
	for _, doc := range docs {
		once := NormalizeExpert(doc)
		twice := NormalizeExpert(toDoc(t, once))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("normalize not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
		}
	}
}

func TestResolveImagePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"https://example.com/a.jpg", "https://example.com/a.jpg"},
		{"/experts/anna.jpg", "/experts/anna.jpg"},
		{"anna.jpg", "/experts/anna.jpg"},
	}
	for _, c := range cases {
		if got := ResolveImagePath(c.in); got != c.want {
			t.Errorf("ResolveImagePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeExpert_NilDoc(t *testing.T) {
	e := NormalizeExpert(nil)
	if e.ID != "" || e.PersonalInfo.FullName != "" {
		t.Errorf("expected zero-value record, got %+v", e)
	}
}
