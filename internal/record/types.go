package record

// Expert is the canonical shape of an expert record. Legacy documents
// (hand-authored, CSV-imported, or produced by older enrichment runs) are
// folded into this shape by NormalizeExpert before display or merge.
type Expert struct {
	ID              string          `json:"id"`
	PersonalInfo    PersonalInfo    `json:"personalInfo"`
	Institution     Institution     `json:"institution"`
	CurrentRole     CurrentRole     `json:"currentRole"`
	Expertise       Expertise       `json:"expertise"`
	AcademicMetrics AcademicMetrics `json:"academicMetrics"`
	Description     string          `json:"description,omitempty"`
	Location        string          `json:"location,omitempty"`

	// Weak back-reference to a company by name or id. Dangling references
	// are tolerated and resolved lazily by the UI.
	Company string `json:"company,omitempty"`

	LinkedInURL string `json:"linkedin_url,omitempty"`
	TwitterURL  string `json:"twitter_url,omitempty"`
	Website     string `json:"website,omitempty"`

	Tags    []string `json:"tags,omitempty"`
	Sources []Source `json:"sources,omitempty"`

	// AIEnrichment keeps the provider metadata block as written by the
	// enrichment adapters: confidence, last_updated, enriched_fields,
	// sources, plus provider-specific sub-blocks (market_insights,
	// key_metrics, ...). Stored as a map so merges can preserve sub-keys
	// the incoming fragment does not supply.
	AIEnrichment map[string]any `json:"ai_enrichment,omitempty"`
	TrustScore   *TrustScore    `json:"trust_score,omitempty"`

	LastUpdated string `json:"last_updated,omitempty"`
}

type PersonalInfo struct {
	FullName  string   `json:"fullName"`
	Title     string   `json:"title,omitempty"`
	Image     string   `json:"image,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

type Institution struct {
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	Website    string `json:"website,omitempty"`
}

type CurrentRole struct {
	Title        string `json:"title,omitempty"`
	Organization string `json:"organization,omitempty"`
	Focus        string `json:"focus,omitempty"`
}

// Expertise is always the structured form on write. Legacy documents that
// store a flat string array are folded into Primary on read.
type Expertise struct {
	Primary    []string `json:"primary"`
	Secondary  []string `json:"secondary"`
	Industries []string `json:"industries"`
}

type AcademicMetrics struct {
	Publications Publications `json:"publications"`
	HIndex       *int         `json:"hIndex,omitempty"`
	Citations    *int         `json:"citations,omitempty"`
}

type Publications struct {
	Total   *int           `json:"total,omitempty"`
	Sources map[string]int `json:"sources,omitempty"`
}

// Source is a provenance entry tracking where a piece of record data came
// from. Deduplicated by (URL, Type) on merge.
type Source struct {
	URL          string   `json:"url"`
	Type         string   `json:"type"`
	Tags         []string `json:"tags,omitempty"`
	DateAccessed string   `json:"date_accessed,omitempty"`
	Verified     bool     `json:"verified,omitempty"`
}

type TrustScore struct {
	Score   int            `json:"score"`
	Factors map[string]any `json:"factors,omitempty"`
}

// Company is the canonical shape of a company record. One enrichment
// adapter historically produced German-keyed nested documents
// (unternehmensinformationen, standort, kontakt, technologie_stack,
// metadaten); NormalizeCompany folds those into this flat shape.
type Company struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LegalName   string `json:"legal_name,omitempty"`
	CompanyType string `json:"company_type,omitempty"`
	Industry    string `json:"industry,omitempty"`
	FoundedYear *int   `json:"founded_year,omitempty"`

	EmployeeCount *int   `json:"employee_count,omitempty"`
	RevenueRange  string `json:"revenue_range,omitempty"`
	Funding       string `json:"funding,omitempty"`
	Description   string `json:"description,omitempty"`

	Website string `json:"website,omitempty"`
	Domain  string `json:"domain,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`

	StreetAddress string `json:"street_address,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	Country       string `json:"country,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`

	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	LinkedInURL       string `json:"linkedin_url,omitempty"`
	LinkedInFollowers *int   `json:"linkedin_followers,omitempty"`
	TwitterURL        string `json:"twitter_url,omitempty"`
	TwitterFollowers  *int   `json:"twitter_followers,omitempty"`
	FacebookURL       string `json:"facebook_url,omitempty"`
	FacebookLikes     *int   `json:"facebook_likes,omitempty"`

	Technologies   []string `json:"technologies,omitempty"`
	TechCategories []string `json:"tech_categories,omitempty"`
	Tags           []string `json:"tags,omitempty"`

	Sources      []Source       `json:"sources,omitempty"`
	AIEnrichment map[string]any `json:"ai_enrichment,omitempty"`
	TrustScore   *TrustScore    `json:"trust_score,omitempty"`

	CreatedAt   string `json:"created_at,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}
