// Package export writes flat CSV projections of the expert and company
// stores. Column order is fixed; multi-value fields are joined with "; ".
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"expertdb/internal/record"
)

const (
	ExpertsFile   = "ai_experts.csv"
	CompaniesFile = "ai_companies.csv"
)

var expertHeaders = []string{
	"Name", "Titel", "Position", "Organisation", "Fachgebiet", "Expertise",
	"Email", "LinkedIn", "Twitter", "Website", "Standort", "Tags",
	"Letzte Aktualisierung",
}

var companyHeaders = []string{
	"Name", "Unternehmenstyp", "Branche", "Gründungsjahr", "Mitarbeiter",
	"Beschreibung", "Website", "Adresse", "Stadt", "Land", "Email", "Telefon",
	"LinkedIn", "Technologien", "Tags", "Vertrauenswert",
	"Letzte Aktualisierung",
}

// Experts writes the expert projection to w.
func Experts(w io.Writer, experts []record.Expert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(expertHeaders); err != nil {
		return err
	}
	for _, e := range experts {
		row := []string{
			e.PersonalInfo.FullName,
			e.PersonalInfo.Title,
			e.CurrentRole.Title,
			e.CurrentRole.Organization,
			e.CurrentRole.Focus,
			joinCell(e.Expertise.Primary),
			e.PersonalInfo.Email,
			e.LinkedInURL,
			e.TwitterURL,
			e.Website,
			e.Location,
			joinCell(e.Tags),
			e.LastUpdated,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Companies writes the company projection to w.
func Companies(w io.Writer, companies []record.Company) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(companyHeaders); err != nil {
		return err
	}
	for _, c := range companies {
		name := c.LegalName
		if name == "" {
			name = c.Name
		}
		row := []string{
			name,
			c.CompanyType,
			c.Industry,
			intCell(c.FoundedYear),
			intCell(c.EmployeeCount),
			c.Description,
			c.Website,
			c.StreetAddress,
			c.City,
			c.Country,
			c.Email,
			c.Phone,
			c.LinkedInURL,
			joinCell(c.Technologies),
			joinCell(c.Tags),
			trustCell(c.TrustScore),
			c.LastUpdated,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// All writes both projections under dir, experts and companies in
// parallel, and returns the two file paths.
func All(dir string, experts []record.Expert, companies []record.Company) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating export directory: %w", err)
	}

	expertsPath := filepath.Join(dir, ExpertsFile)
	companiesPath := filepath.Join(dir, CompaniesFile)

	var g errgroup.Group
	g.Go(func() error { return writeFile(expertsPath, func(w io.Writer) error { return Experts(w, experts) }) })
	g.Go(func() error { return writeFile(companiesPath, func(w io.Writer) error { return Companies(w, companies) }) })
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return expertsPath, companiesPath, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func joinCell(items []string) string {
	return strings.Join(items, "; ")
}

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprint(*n)
}

func trustCell(ts *record.TrustScore) string {
	if ts == nil {
		return ""
	}
	return fmt.Sprint(ts.Score)
}
