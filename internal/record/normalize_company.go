package record

// NormalizeCompany maps an arbitrary JSON document to the canonical flat
// Company shape. Besides the canonical English keys it folds the nested
// German-keyed variant one enrichment adapter used to produce:
// unternehmensinformationen, standort, kontakt, social_media,
// technologie_stack, metadaten.
func NormalizeCompany(doc map[string]any) Company {
	if doc == nil {
		doc = map[string]any{}
	}

	info := SubMap(doc, "unternehmensinformationen")
	standort := SubMap(doc, "standort")
	kontakt := SubMap(doc, "kontakt", "contact")
	social := SubMap(doc, "social_media", "socialMedia")
	tech := SubMap(doc, "technologie_stack")
	meta := SubMap(doc, "metadaten")

	var c Company
	c.ID = FirstString(doc, "id")
	c.Name = firstNonEmpty(
		FirstString(doc, "name"),
		FirstString(info, "legal_name", "name"),
	)
	c.LegalName = firstNonEmpty(FirstString(doc, "legal_name"), FirstString(info, "legal_name"))
	c.CompanyType = firstNonEmpty(FirstString(doc, "company_type"), FirstString(info, "unternehmenstyp"))
	c.Industry = firstNonEmpty(FirstString(doc, "industry"), FirstString(info, "branche"))

	c.FoundedYear = FirstInt(doc, "founded_year", "founded")
	if c.FoundedYear == nil {
		c.FoundedYear = FirstInt(info, "grundungsjahr")
	}
	c.EmployeeCount = AsInt(firstPresent(
		doc["employee_count"],
		doc["employees"],
		nestedValue(info, "mitarbeiter", "anzahl"),
	))
	c.RevenueRange = FirstString(doc, "revenue_range")
	c.Funding = FirstString(doc, "funding")
	c.Description = firstNonEmpty(
		FirstString(doc, "description"),
		FirstString(info, "beschreibung"),
	)

	c.Website = firstNonEmpty(
		FirstString(doc, "website", "url"),
		FirstString(kontakt, "website"),
	)
	c.Domain = FirstString(doc, "domain")
	if c.Domain == "" {
		c.Domain = ExtractDomain(c.Website)
	}
	c.LogoURL = FirstString(doc, "logo_url", "logo")

	c.StreetAddress = firstNonEmpty(
		FirstString(doc, "street_address", "address"),
		FirstString(standort, "adresse"),
	)
	c.City = firstNonEmpty(
		FirstString(doc, "city"),
		FirstString(standort, "stadt"),
		FirstString(doc, "location"),
	)
	c.State = FirstString(doc, "state")
	c.Country = firstNonEmpty(FirstString(doc, "country"), FirstString(standort, "land"))
	c.PostalCode = firstNonEmpty(FirstString(doc, "postal_code"), FirstString(standort, "plz"))

	c.Email = firstNonEmpty(FirstString(doc, "email"), FirstString(kontakt, "email"))
	c.Phone = firstNonEmpty(FirstString(doc, "phone"), FirstString(kontakt, "telefon", "phone"))

	c.LinkedInURL = firstNonEmpty(FirstString(doc, "linkedin_url"), FirstString(social, "linkedin"))
	c.LinkedInFollowers = FirstInt(doc, "linkedin_followers")
	c.TwitterURL = firstNonEmpty(FirstString(doc, "twitter_url"), FirstString(social, "twitter"))
	c.TwitterFollowers = FirstInt(doc, "twitter_followers")
	c.FacebookURL = firstNonEmpty(FirstString(doc, "facebook_url"), FirstString(social, "facebook"))
	c.FacebookLikes = FirstInt(doc, "facebook_likes")

	c.Technologies = firstSlice(
		AsStringSlice(doc["technologies"]),
		pickSlice(tech, "technologien"),
	)
	c.TechCategories = AsStringSlice(doc["tech_categories"])
	c.Tags = firstSlice(
		AsStringSlice(doc["tags"]),
		pickSlice(tech, "tags"),
	)

	c.Sources = dedupeSources(sourcesFromAny(doc["sources"]))
	c.AIEnrichment = AsAnyMap(doc["ai_enrichment"])
	c.TrustScore = trustScoreFromAny(doc["trust_score"])
	if c.TrustScore == nil {
		if n := FirstInt(meta, "vertrauenswert"); n != nil {
			c.TrustScore = &TrustScore{Score: *n}
		}
	}

	c.CreatedAt = FirstString(doc, "created_at")
	c.LastUpdated = firstNonEmpty(
		FirstString(doc, "last_updated", "lastUpdated"),
		FirstString(meta, "letzte_aktualisierung"),
		FirstString(doc, "letzte_aktualisierung"),
	)

	return c
}

func firstPresent(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func nestedValue(m map[string]any, key, subkey string) any {
	sub := SubMap(m, key)
	if sub == nil {
		return nil
	}
	return sub[subkey]
}
