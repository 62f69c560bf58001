package record

import "reflect"

// MergeExpert combines a stored canonical record with an incoming partial
// fragment (manual-edit diff or parsed enrichment fragment) and reports
// whether anything changed. The caller stamps last_updated on change.
//
// Field-group rules:
//   - id is immutable; a fragment id is ignored.
//   - scalars: the fragment wins whenever the key is present, including an
//     explicit empty string or null (intentional clearing). Absent keys
//     leave the current value untouched.
//   - set-valued fields (expertise, tags, languages): present means full
//     replacement, not union. Fragments that want to add must send the
//     union. A bare string is coerced to a singleton set.
//   - ai_enrichment is shallow-merged by sub-key; sources are concatenated
//     and deduplicated by (url, type); trust_score merges score and factors.
//
// Deterministic: a pure function of (current, fragment).
func MergeExpert(current Expert, fragment map[string]any) (Expert, bool) {
	out := current
	if len(fragment) == 0 {
		return out, false
	}

	// Flat legacy aliases first, nested canonical objects after, so a
	// fragment carrying both resolves in canonical favor.
	setString(&out.PersonalInfo.FullName, fragment, "name", "fullName")
	setString(&out.PersonalInfo.Title, fragment, "titel", "title")
	setString(&out.PersonalInfo.Email, fragment, "email")
	setString(&out.PersonalInfo.Phone, fragment, "phone", "telefon")
	setImage(&out.PersonalInfo.Image, fragment, "image", "profile_image", "photo")
	setSlice(&out.PersonalInfo.Languages, fragment, "languages")

	if pi := SubMap(fragment, "personalInfo"); pi != nil {
		setString(&out.PersonalInfo.FullName, pi, "fullName")
		setString(&out.PersonalInfo.Title, pi, "title")
		setImage(&out.PersonalInfo.Image, pi, "image", "imageUrl")
		setString(&out.PersonalInfo.Email, pi, "email")
		setString(&out.PersonalInfo.Phone, pi, "phone")
		setSlice(&out.PersonalInfo.Languages, pi, "languages")
	}

	mergeInstitution(&out, fragment)
	mergeCurrentRole(&out, fragment)
	mergeExpertise(&out.Expertise, fragment)
	mergeAcademicMetrics(&out.AcademicMetrics, fragment)

	setString(&out.Description, fragment, "description", "beschreibung")
	setString(&out.Location, fragment, "location", "standort")
	setString(&out.Company, fragment, "company")
	setString(&out.LinkedInURL, fragment, "linkedin_url")
	setString(&out.TwitterURL, fragment, "twitter_url")
	setString(&out.Website, fragment, "website", "url")
	setSlice(&out.Tags, fragment, "tags")

	out.Sources = mergeSources(out.Sources, fragment)
	out.AIEnrichment = mergeEnrichment(out.AIEnrichment, fragment)
	out.TrustScore = mergeTrustScore(out.TrustScore, fragment)

	return out, !reflect.DeepEqual(out, current)
}

func mergeInstitution(out *Expert, fragment map[string]any) {
	switch inst := fragment["institution"].(type) {
	case map[string]any:
		setString(&out.Institution.Name, inst, "name")
		setString(&out.Institution.Department, inst, "department")
		setString(&out.Institution.Position, inst, "position")
		setString(&out.Institution.Website, inst, "website")
	case string:
		out.Institution.Name = inst
	case nil:
		if _, ok := fragment["institution"]; ok {
			out.Institution = Institution{}
		}
	}
	setString(&out.Institution.Department, fragment, "department")
}

func mergeCurrentRole(out *Expert, fragment map[string]any) {
	setString(&out.CurrentRole.Title, fragment, "position")
	setString(&out.CurrentRole.Organization, fragment, "organisation", "organization")
	setString(&out.CurrentRole.Focus, fragment, "fachgebiet", "focus")
	if cr := SubMap(fragment, "currentRole"); cr != nil {
		setString(&out.CurrentRole.Title, cr, "title")
		setString(&out.CurrentRole.Organization, cr, "organization", "company")
		setString(&out.CurrentRole.Focus, cr, "focus")
	}
}

func mergeExpertise(ex *Expertise, fragment map[string]any) {
	v, ok := fragment["expertise"]
	if !ok {
		return
	}
	switch vv := v.(type) {
	case map[string]any:
		setSlice(&ex.Primary, vv, "primary")
		setSlice(&ex.Secondary, vv, "secondary")
		setSlice(&ex.Industries, vv, "industries")
	default:
		// Legacy flat array (or bare string) replaces the primary set.
		ex.Primary = AsStringSlice(vv)
		if ex.Primary == nil {
			ex.Primary = []string{}
		}
	}
}

func mergeAcademicMetrics(am *AcademicMetrics, fragment map[string]any) {
	applyPublications := func(v any) {
		switch pubs := v.(type) {
		case map[string]any:
			if tv, ok := pubs["total"]; ok {
				am.Publications.Total = AsInt(tv)
			}
			if sv, ok := pubs["sources"]; ok {
				am.Publications.Sources = AsIntMap(sv)
			}
		default:
			am.Publications.Total = AsInt(v)
		}
	}

	if v, ok := fragment["publications"]; ok {
		applyPublications(v)
	}
	setIntPtr(&am.HIndex, fragment, "hIndex", "h_index")
	setIntPtr(&am.Citations, fragment, "citations")

	if sub := SubMap(fragment, "academicMetrics"); sub != nil {
		if v, ok := sub["publications"]; ok {
			applyPublications(v)
		}
		setIntPtr(&am.HIndex, sub, "hIndex")
		setIntPtr(&am.Citations, sub, "citations")
	}
}

// mergeSources concatenates current provenance with the fragment's and
// deduplicates by (url, type), current entries first.
func mergeSources(current []Source, fragment map[string]any) []Source {
	v, ok := fragment["sources"]
	if !ok {
		return current
	}
	incoming := sourcesFromAny(v)
	if v == nil && incoming == nil {
		// Explicit null clears provenance.
		return nil
	}
	return dedupeSources(append(append([]Source{}, current...), incoming...))
}

// mergeEnrichment shallow-merges the incoming ai_enrichment block onto the
// current one: incoming sub-keys override, everything else is preserved.
// An absent key keeps the current block untouched; an explicit null drops
// it. Any other non-map value is malformed and ignored rather than
// allowed to clear provenance.
func mergeEnrichment(current map[string]any, fragment map[string]any) map[string]any {
	v, ok := fragment["ai_enrichment"]
	if !ok {
		return current
	}
	if v == nil {
		return nil
	}
	incoming, isMap := v.(map[string]any)
	if !isMap {
		return current
	}
	return shallowMerge(current, incoming)
}

func mergeTrustScore(current *TrustScore, fragment map[string]any) *TrustScore {
	v, ok := fragment["trust_score"]
	if !ok {
		return current
	}
	if v == nil {
		return nil
	}
	incoming, isMap := v.(map[string]any)
	if !isMap {
		// Malformed value; keep the current score.
		return current
	}
	out := &TrustScore{}
	if current != nil {
		out.Score = current.Score
		out.Factors = current.Factors
	}
	if n := AsInt(incoming["score"]); n != nil {
		out.Score = *n
	}
	if f, ok := incoming["factors"]; ok {
		out.Factors = shallowMerge(out.Factors, AsAnyMap(f))
	}
	return out
}

func shallowMerge(current, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(current)+len(incoming))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

func setString(dst *string, m map[string]any, keys ...string) {
	if v, ok := Pick(m, keys...); ok {
		*dst = AsString(v)
	}
}

func setImage(dst *string, m map[string]any, keys ...string) {
	if v, ok := Pick(m, keys...); ok {
		*dst = ResolveImagePath(AsString(v))
	}
}

// setSlice applies replacement semantics for set-valued fields. A bare
// string coerces to a singleton set; explicit null or empty clears.
func setSlice(dst *[]string, m map[string]any, keys ...string) {
	if v, ok := Pick(m, keys...); ok {
		*dst = AsStringSlice(v)
	}
}

func setIntPtr(dst **int, m map[string]any, keys ...string) {
	if v, ok := Pick(m, keys...); ok {
		*dst = AsInt(v)
	}
}
