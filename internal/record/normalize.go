package record

import "strings"

// NormalizeExpert maps an arbitrary JSON document to the canonical Expert
// shape. Lookup order per field: canonical key, then legacy aliases, then
// the zero value. It never fails; malformed fields degrade to empty so a
// best-effort record is always displayable. Idempotent apart from set
// deduplication.
func NormalizeExpert(doc map[string]any) Expert {
	if doc == nil {
		doc = map[string]any{}
	}

	pi := SubMap(doc, "personalInfo")
	kontakt := SubMap(doc, "kontakt", "contact")
	social := SubMap(doc, "social_media", "socialMedia", "profiles")

	var e Expert
	e.ID = FirstString(doc, "id")

	e.PersonalInfo = PersonalInfo{
		FullName: firstNonEmpty(
			FirstString(pi, "fullName"),
			FirstString(doc, "name", "fullName"),
		),
		Title: firstNonEmpty(
			FirstString(pi, "title"),
			FirstString(doc, "titel", "title"),
		),
		Image: ResolveImagePath(firstNonEmpty(
			FirstString(pi, "image", "imageUrl"),
			FirstString(doc, "image", "profile_image", "photo"),
		)),
		Email: firstNonEmpty(
			FirstString(pi, "email"),
			FirstString(kontakt, "email"),
			FirstString(doc, "email"),
		),
		Phone: firstNonEmpty(
			FirstString(pi, "phone"),
			FirstString(kontakt, "telefon", "phone"),
			FirstString(doc, "phone", "telefon"),
		),
		Languages: firstSlice(pickSlice(pi, "languages"), pickSlice(doc, "languages", "sprachen")),
	}

	e.Institution = normalizeInstitution(doc)
	e.CurrentRole = normalizeCurrentRole(doc, e.Institution.Name)
	e.Expertise = normalizeExpertise(doc["expertise"])
	e.AcademicMetrics = normalizeAcademicMetrics(doc)

	e.Description = FirstString(doc, "description", "beschreibung")
	e.Location = FirstString(doc, "location", "standort")
	e.Company = FirstString(doc, "company", "firma")

	e.LinkedInURL = firstNonEmpty(FirstString(doc, "linkedin_url"), FirstString(social, "linkedin"))
	e.TwitterURL = firstNonEmpty(FirstString(doc, "twitter_url"), FirstString(social, "twitter"))
	e.Website = firstNonEmpty(
		FirstString(doc, "website", "url"),
		FirstString(kontakt, "website"),
	)

	e.Tags = AsStringSlice(doc["tags"])
	e.Sources = dedupeSources(sourcesFromAny(doc["sources"]))
	e.AIEnrichment = AsAnyMap(doc["ai_enrichment"])
	e.TrustScore = trustScoreFromAny(doc["trust_score"])
	e.LastUpdated = FirstString(doc, "last_updated", "letzte_aktualisierung", "lastUpdated")

	return e
}

func normalizeInstitution(doc map[string]any) Institution {
	switch inst := doc["institution"].(type) {
	case map[string]any:
		return Institution{
			Name:       FirstString(inst, "name"),
			Department: firstNonEmpty(FirstString(inst, "department"), FirstString(doc, "department")),
			Position:   FirstString(inst, "position"),
			Website:    FirstString(inst, "website"),
		}
	case string:
		return Institution{
			Name:       strings.TrimSpace(inst),
			Department: FirstString(doc, "department"),
		}
	default:
		return Institution{
			Name:       FirstString(doc, "organisation", "organization"),
			Department: FirstString(doc, "department"),
		}
	}
}

func normalizeCurrentRole(doc map[string]any, institutionName string) CurrentRole {
	cr := SubMap(doc, "currentRole")
	role := CurrentRole{
		Title: firstNonEmpty(
			FirstString(cr, "title"),
			FirstString(doc, "position"),
		),
		Organization: firstNonEmpty(
			FirstString(cr, "organization", "company"),
			FirstString(doc, "organisation", "organization"),
		),
		Focus: firstNonEmpty(
			FirstString(cr, "focus"),
			FirstString(doc, "fachgebiet", "focus"),
		),
	}
	if role.Organization == "" {
		role.Organization = institutionName
	}
	return role
}

// normalizeExpertise accepts the structured {primary, secondary,
// industries} form, the legacy flat string array (folded into primary),
// and a bare string (singleton primary).
func normalizeExpertise(v any) Expertise {
	ex := Expertise{Primary: []string{}, Secondary: []string{}, Industries: []string{}}
	switch vv := v.(type) {
	case map[string]any:
		if p := AsStringSlice(vv["primary"]); p != nil {
			ex.Primary = p
		}
		if s := AsStringSlice(vv["secondary"]); s != nil {
			ex.Secondary = s
		}
		if i := AsStringSlice(vv["industries"]); i != nil {
			ex.Industries = i
		}
	default:
		if p := AsStringSlice(v); p != nil {
			ex.Primary = p
		}
	}
	return ex
}

func normalizeAcademicMetrics(doc map[string]any) AcademicMetrics {
	am := SubMap(doc, "academicMetrics")
	var metrics AcademicMetrics

	switch pubs := pickFrom(am, doc, "publications").(type) {
	case map[string]any:
		metrics.Publications = Publications{
			Total:   AsInt(pubs["total"]),
			Sources: AsIntMap(pubs["sources"]),
		}
	default:
		metrics.Publications = Publications{Total: AsInt(pubs)}
	}

	metrics.HIndex = firstIntFrom(am, doc, "hIndex", "h_index")
	metrics.Citations = firstIntFrom(am, doc, "citations")
	return metrics
}

// ResolveImagePath passes absolute URLs and rooted paths through unchanged
// and resolves bare filenames to the conventional local prefix. Empty in,
// empty out; the UI supplies its own placeholder.
func ResolveImagePath(image string) string {
	switch {
	case image == "":
		return ""
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		return image
	case strings.HasPrefix(image, "/"):
		return image
	default:
		return "/experts/" + image
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func pickSlice(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		if s := AsStringSlice(m[k]); s != nil {
			return s
		}
	}
	return nil
}

func firstSlice(slices ...[]string) []string {
	for _, s := range slices {
		if s != nil {
			return s
		}
	}
	return nil
}

// pickFrom reads key from the canonical sub-object first, then the
// document root.
func pickFrom(sub, doc map[string]any, key string) any {
	if sub != nil {
		if v, ok := sub[key]; ok {
			return v
		}
	}
	return doc[key]
}

func firstIntFrom(sub, doc map[string]any, keys ...string) *int {
	if n := FirstInt(sub, keys...); n != nil {
		return n
	}
	return FirstInt(doc, keys...)
}
