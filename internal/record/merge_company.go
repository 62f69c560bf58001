package record

import "reflect"

// MergeCompany combines a stored canonical company record with an incoming
// partial fragment under the same field-group rules as MergeExpert: id and
// created_at stay with the current record, present scalars win (explicit
// empty clears), set-valued fields are replaced, provenance blocks merge
// by sub-key. German-keyed nested fragments from the legacy enrichment
// adapter are folded in before canonical flat keys so the canonical form
// wins when both appear.
func MergeCompany(current Company, fragment map[string]any) (Company, bool) {
	out := current
	if len(fragment) == 0 {
		return out, false
	}

	mergeGermanBlocks(&out, fragment)

	setString(&out.Name, fragment, "name")
	setString(&out.LegalName, fragment, "legal_name")
	setString(&out.CompanyType, fragment, "company_type")
	setString(&out.Industry, fragment, "industry")
	setIntPtr(&out.FoundedYear, fragment, "founded_year", "founded")
	setIntPtr(&out.EmployeeCount, fragment, "employee_count", "employees")
	setString(&out.RevenueRange, fragment, "revenue_range")
	setString(&out.Funding, fragment, "funding")
	setString(&out.Description, fragment, "description")

	setString(&out.Website, fragment, "website", "url")
	setString(&out.Domain, fragment, "domain")
	setString(&out.LogoURL, fragment, "logo_url")

	setString(&out.StreetAddress, fragment, "street_address", "address")
	setString(&out.City, fragment, "city")
	setString(&out.State, fragment, "state")
	setString(&out.Country, fragment, "country")
	setString(&out.PostalCode, fragment, "postal_code")

	setString(&out.Email, fragment, "email")
	setString(&out.Phone, fragment, "phone")

	setString(&out.LinkedInURL, fragment, "linkedin_url")
	setIntPtr(&out.LinkedInFollowers, fragment, "linkedin_followers")
	setString(&out.TwitterURL, fragment, "twitter_url")
	setIntPtr(&out.TwitterFollowers, fragment, "twitter_followers")
	setString(&out.FacebookURL, fragment, "facebook_url")
	setIntPtr(&out.FacebookLikes, fragment, "facebook_likes")

	setSlice(&out.Technologies, fragment, "technologies")
	setSlice(&out.TechCategories, fragment, "tech_categories")
	setSlice(&out.Tags, fragment, "tags")

	out.Sources = mergeSources(out.Sources, fragment)
	out.AIEnrichment = mergeEnrichment(out.AIEnrichment, fragment)
	out.TrustScore = mergeTrustScore(out.TrustScore, fragment)

	// Fragments that supply a website but no domain keep the domain key
	// derivable.
	if out.Domain == "" && out.Website != "" {
		out.Domain = ExtractDomain(out.Website)
	}

	return out, !reflect.DeepEqual(out, current)
}

func mergeGermanBlocks(out *Company, fragment map[string]any) {
	if info := SubMap(fragment, "unternehmensinformationen"); info != nil {
		setString(&out.LegalName, info, "legal_name")
		setString(&out.CompanyType, info, "unternehmenstyp")
		setString(&out.Industry, info, "branche")
		setIntPtr(&out.FoundedYear, info, "grundungsjahr")
		setString(&out.Description, info, "beschreibung")
		if mitarbeiter := SubMap(info, "mitarbeiter"); mitarbeiter != nil {
			setIntPtr(&out.EmployeeCount, mitarbeiter, "anzahl")
		}
	}
	if standort := SubMap(fragment, "standort"); standort != nil {
		setString(&out.StreetAddress, standort, "adresse")
		setString(&out.City, standort, "stadt")
		setString(&out.Country, standort, "land")
		setString(&out.PostalCode, standort, "plz")
	}
	if kontakt := SubMap(fragment, "kontakt"); kontakt != nil {
		setString(&out.Website, kontakt, "website")
		setString(&out.Email, kontakt, "email")
		setString(&out.Phone, kontakt, "telefon")
	}
	if social := SubMap(fragment, "social_media"); social != nil {
		setString(&out.LinkedInURL, social, "linkedin")
		setString(&out.TwitterURL, social, "twitter")
		setString(&out.FacebookURL, social, "facebook")
	}
	if tech := SubMap(fragment, "technologie_stack"); tech != nil {
		setSlice(&out.Technologies, tech, "technologien")
		setSlice(&out.Tags, tech, "tags")
	}
	if meta := SubMap(fragment, "metadaten"); meta != nil {
		if n := FirstInt(meta, "vertrauenswert"); n != nil {
			ts := &TrustScore{}
			if out.TrustScore != nil {
				*ts = *out.TrustScore
			}
			ts.Score = *n
			out.TrustScore = ts
		}
	}
}
