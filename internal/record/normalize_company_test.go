package record

import (
	"reflect"
	"testing"
)

func TestNormalizeCompany_CanonicalFlat(t *testing.T) {
	doc := map[string]any{
		"id":             "acme_com",
		"name":           "Acme",
		"company_type":   "private",
		"industry":       "Software",
		"founded_year":   float64(2015),
		"employee_count": float64(250),
		"website":        "https://www.acme.com",
		"technologies":   []any{"go", "python", "go"},
		"tags":           []any{"ai"},
	}

	c := NormalizeCompany(doc)

	if c.ID != "acme_com" || c.Name != "Acme" {
		t.Errorf("id/name = %q/%q", c.ID, c.Name)
	}
	if c.FoundedYear == nil || *c.FoundedYear != 2015 {
		t.Errorf("FoundedYear = %v", c.FoundedYear)
	}
	if c.Domain != "acme.com" {
		t.Errorf("Domain = %q, want derived acme.com", c.Domain)
	}
	if !reflect.DeepEqual(c.Technologies, []string{"go", "python"}) {
		t.Errorf("Technologies = %v, want deduplicated", c.Technologies)
	}
}

func TestNormalizeCompany_GermanNestedVariant(t *testing.T) {
	doc := map[string]any{
		"id": "neural_de",
		"unternehmensinformationen": map[string]any{
			"legal_name":      "Neural Systems GmbH",
			"unternehmenstyp": "GmbH",
			"branche":         "Computer Vision",
			"grundungsjahr":   float64(2019),
			"mitarbeiter":     map[string]any{"anzahl": float64(80)},
			"beschreibung":    "Bildverarbeitung und Qualitätskontrolle",
		},
		"standort": map[string]any{
			"adresse": "Musterstraße 1",
			"stadt":   "Hamburg",
			"land":    "Deutschland",
		},
		"kontakt": map[string]any{
			"website": "https://neural-systems.de",
			"email":   "info@neural-systems.de",
			"telefon": "+49 40 123",
		},
		"technologie_stack": map[string]any{
			"technologien": []any{"pytorch", "opencv"},
			"tags":         []any{"vision"},
		},
		"metadaten": map[string]any{
			"vertrauenswert":        float64(72),
			"letzte_aktualisierung": "2024-06-01",
		},
	}

	c := NormalizeCompany(doc)

	if c.Name != "Neural Systems GmbH" || c.LegalName != "Neural Systems GmbH" {
		t.Errorf("name/legal = %q/%q", c.Name, c.LegalName)
	}
	if c.CompanyType != "GmbH" || c.Industry != "Computer Vision" {
		t.Errorf("type/industry = %q/%q", c.CompanyType, c.Industry)
	}
	if c.FoundedYear == nil || *c.FoundedYear != 2019 {
		t.Errorf("FoundedYear = %v", c.FoundedYear)
	}
	if c.EmployeeCount == nil || *c.EmployeeCount != 80 {
		t.Errorf("EmployeeCount = %v", c.EmployeeCount)
	}
	if c.StreetAddress != "Musterstraße 1" || c.City != "Hamburg" || c.Country != "Deutschland" {
		t.Errorf("address = %+v", c)
	}
	if c.Website != "https://neural-systems.de" || c.Email != "info@neural-systems.de" {
		t.Errorf("contact = %q/%q", c.Website, c.Email)
	}
	if !reflect.DeepEqual(c.Technologies, []string{"pytorch", "opencv"}) {
		t.Errorf("Technologies = %v", c.Technologies)
	}
	if !reflect.DeepEqual(c.Tags, []string{"vision"}) {
		t.Errorf("Tags = %v", c.Tags)
	}
	if c.TrustScore == nil || c.TrustScore.Score != 72 {
		t.Errorf("TrustScore = %+v", c.TrustScore)
	}
	if c.LastUpdated != "2024-06-01" {
		t.Errorf("LastUpdated = %q", c.LastUpdated)
	}
}

func TestNormalizeCompany_Idempotent(t *testing.T) {
	docs := []map[string]any{
		{"id": "a", "name": "Acme", "website": "https://acme.com", "technologies": []any{"go"}},
		{
			"id": "b",
			"unternehmensinformationen": map[string]any{"legal_name": "B GmbH", "branche": "AI"},
			"kontakt":                   map[string]any{"email": "b@b.de"},
		},
	}
	for _, doc := range docs {
		once := NormalizeCompany(doc)
		twice := NormalizeCompany(toDoc(t, once))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("normalize not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
		}
	}
}

func TestNormalizeCompany_LegacyFirmShape(t *testing.T) {
	// Shape of the oldest hand-authored firm entries.
	doc := map[string]any{
		"id":        "1",
		"name":      "DeepMind Deutschland GmbH",
		"location":  "Berlin",
		"employees": float64(250),
		"founded":   float64(2018),
		"logo":      "/company1.jpg",
	}
	c := NormalizeCompany(doc)
	if c.EmployeeCount == nil || *c.EmployeeCount != 250 {
		t.Errorf("EmployeeCount = %v", c.EmployeeCount)
	}
	if c.FoundedYear == nil || *c.FoundedYear != 2018 {
		t.Errorf("FoundedYear = %v", c.FoundedYear)
	}
	if c.LogoURL != "/company1.jpg" {
		t.Errorf("LogoURL = %q", c.LogoURL)
	}
}
