package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expertdb/internal/record"
)

func sampleExpert() record.Expert {
	e := record.Expert{
		ID:          "jane-smith",
		Location:    "Berlin, Germany",
		LinkedInURL: "https://linkedin.com/in/janesmith",
		Tags:        []string{"nlp", "ethics"},
		LastUpdated: "2026-08-01",
	}
	e.PersonalInfo.FullName = "Dr. Jane Smith"
	e.PersonalInfo.Title = "Dr."
	e.PersonalInfo.Email = "jane@example.ai"
	e.CurrentRole.Title = "Chief Scientist"
	e.CurrentRole.Organization = "Example AI"
	e.Expertise.Primary = []string{"NLP", "Machine Learning"}
	return e
}

func TestExpertsProjection(t *testing.T) {
	var b strings.Builder
	if err := Experts(&b, []record.Expert{sampleExpert()}); err != nil {
		t.Fatalf("Experts: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][12] != "Letzte Aktualisierung" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "Dr. Jane Smith" {
		t.Errorf("name cell = %q", rows[1][0])
	}
	if rows[1][5] != "NLP; Machine Learning" {
		t.Errorf("expertise cell = %q", rows[1][5])
	}
	if rows[1][11] != "nlp; ethics" {
		t.Errorf("tags cell = %q", rows[1][11])
	}
}

func TestCompaniesProjection(t *testing.T) {
	year := 2019
	count := 42
	c := record.Company{
		Name:          "Example AI",
		LegalName:     "Example AI GmbH",
		CompanyType:   "Startup",
		Industry:      "Artificial Intelligence",
		FoundedYear:   &year,
		EmployeeCount: &count,
		City:          "Berlin",
		Country:       "Germany",
		Technologies:  []string{"NLP", "Computer Vision"},
		TrustScore:    &record.TrustScore{Score: 85},
		LastUpdated:   "2026-08-01",
	}

	var b strings.Builder
	if err := Companies(&b, []record.Company{c}); err != nil {
		t.Fatalf("Companies: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	row := rows[1]
	if row[0] != "Example AI GmbH" {
		t.Errorf("name cell = %q, want legal name", row[0])
	}
	if row[3] != "2019" || row[4] != "42" {
		t.Errorf("year/employees = %q/%q", row[3], row[4])
	}
	if row[15] != "85" {
		t.Errorf("trust cell = %q", row[15])
	}
}

func TestCompaniesLegalNameFallback(t *testing.T) {
	var b strings.Builder
	if err := Companies(&b, []record.Company{{Name: "Example AI"}}); err != nil {
		t.Fatalf("Companies: %v", err)
	}
	rows, _ := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	if rows[1][0] != "Example AI" {
		t.Errorf("name cell = %q, want fallback to display name", rows[1][0])
	}
}

func TestAllWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	expertsPath, companiesPath, err := All(filepath.Join(dir, "exports"), []record.Expert{sampleExpert()}, nil)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	for _, path := range []string{expertsPath, companiesPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing export file %s: %v", path, err)
		}
	}
	data, err := os.ReadFile(companiesPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Gründungsjahr") {
		t.Error("companies header missing")
	}
}
