package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"expertdb/internal/record"
)

const defaultGeminiModel = "gemini-1.5-pro"

// ExpertOptions selects which aspects of an expert the model is asked to
// research.
type ExpertOptions struct {
	AcademicBackground bool `json:"academicBackground"`
	ResearchAreas      bool `json:"researchAreas"`
	Publications       bool `json:"publications"`
	Expertise          bool `json:"expertise"`
	Projects           bool `json:"projects"`
	CustomPrompt       bool `json:"customPrompt"`
}

// CompanyOptions selects which field groups of a company to enrich.
type CompanyOptions struct {
	CompanyInfo  bool `json:"companyInfo"`
	SocialMedia  bool `json:"socialMedia"`
	Technologies bool `json:"technologies"`
	Products     bool `json:"products"`
	Financials   bool `json:"financials"`
}

// Gemini is the generative-completion adapter. Calls are rate limited and
// run under a bounded timeout; a failed or unparseable completion comes
// back as an error, never as a partial write.
type Gemini struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
}

// NewGemini creates the adapter. model may be empty for the default;
// requestsPerSec and timeout fall back to defaults when zero.
func NewGemini(ctx context.Context, apiKey, model string, requestsPerSec float64, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if requestsPerSec <= 0 {
		// Free-tier quota is on the order of one request per second.
		requestsPerSec = 1
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gemini{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 2),
		timeout: timeout,
	}, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
		TopP:        genai.Ptr[float32](0.8),
	}
	if jsonOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	var text string
	err := withRetry(ctx, defaultAttempts, defaultBackoff, func(ctx context.Context) error {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
		if err != nil {
			return err
		}
		text = resp.Text()
		if text == "" {
			return fmt.Errorf("empty completion")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// EnrichExpert asks the model for additional detail about an expert and
// returns a partial fragment in canonical-ish shape.
func (g *Gemini) EnrichExpert(ctx context.Context, expert record.Expert, opts ExpertOptions, customPrompt string) (map[string]any, error) {
	prompt := buildExpertPrompt(expert, opts, customPrompt)

	text, err := g.generate(ctx, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("expert enrichment: %w", err)
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		slog.Warn("expert enrichment response not parseable", "error", err)
		return nil, fmt.Errorf("expert enrichment: %w", err)
	}
	return expertFragmentFromModel(raw), nil
}

// EnrichCompany asks the model for company detail per the option flags.
func (g *Gemini) EnrichCompany(ctx context.Context, company record.Company, opts CompanyOptions) (map[string]any, error) {
	prompt := buildCompanyPrompt(company, opts)

	text, err := g.generate(ctx, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("company enrichment: %w", err)
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		slog.Warn("company enrichment response not parseable", "error", err)
		return nil, fmt.Errorf("company enrichment: %w", err)
	}
	raw["ai_enrichment"] = map[string]any{
		"confidence":      70,
		"last_updated":    time.Now().UTC().Format("2006-01-02"),
		"enriched_fields": enrichedCompanyFields(opts),
		"sources": []any{
			map[string]any{"name": "Gemini", "type": "generative_ai"},
		},
	}
	return raw, nil
}

// Research runs the free-form field lookup: the model answers with
// "field: value" lines which are validated and returned as a flat
// fragment. Image URLs that are not direct raster links are dropped.
func (g *Gemini) Research(ctx context.Context, query string, fields []string, current map[string]any) (map[string]string, error) {
	prompt := buildResearchPrompt(query, fields, current)

	text, err := g.generate(ctx, prompt, false)
	if err != nil {
		return nil, fmt.Errorf("research: %w", err)
	}

	data := ParseFieldLines(text)
	if img, ok := data["profile_image"]; ok && !ValidImageURL(img) {
		delete(data, "profile_image")
	}
	return data, nil
}

func buildExpertPrompt(expert record.Expert, opts ExpertOptions, customPrompt string) string {
	name := expert.PersonalInfo.FullName
	position := orUnknown(expert.CurrentRole.Title)
	institution := orUnknown(expert.Institution.Name)

	if opts.CustomPrompt && customPrompt != "" {
		return fmt.Sprintf(`Analyze this expert: %s
Current Role: %s
Institution: %s

Custom Analysis Request:
%s

Please format the response as JSON.`, name, position, institution, customPrompt)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Analyze this expert's information and enrich it with additional details focusing on their AI expertise:
Name: %s
Current Role: %s
Institution: %s

Please provide:
`, name, position, institution)
	if opts.AcademicBackground {
		b.WriteString("- Academic background and education history\n")
	}
	if opts.ResearchAreas {
		b.WriteString("- Specific AI research areas and contributions\n")
	}
	if opts.Publications {
		b.WriteString("- Notable publications and research impact\n")
	}
	if opts.Expertise {
		b.WriteString("- Technical expertise and AI specializations\n")
	}
	if opts.Projects {
		b.WriteString("- Key AI projects and achievements\n")
	}
	b.WriteString(`
Format the response as JSON with these fields:
{
  "academic_background": [],
  "research_areas": [],
  "publications": [],
  "expertise": [],
  "projects": [],
  "h_index": number,
  "citations": number
}`)
	return b.String()
}

func buildCompanyPrompt(company record.Company, opts CompanyOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find information about the company %s. ", company.Name)
	if opts.CompanyInfo {
		b.WriteString("Include general company information like founding year, size, industry focus, and company type. ")
	}
	if opts.SocialMedia {
		b.WriteString("Find their LinkedIn, Twitter, Facebook, and other social media profiles. ")
	}
	if opts.Technologies {
		b.WriteString("List their AI technologies, focus areas, and technical capabilities. ")
	}
	if opts.Products {
		b.WriteString("Detail their main products and services, especially AI-related offerings. ")
	}
	if opts.Financials {
		b.WriteString("Include any public financial information, funding rounds, and market position. ")
	}
	b.WriteString(`Format the response as a JSON object using these keys where known: company_type, industry, founded_year, employee_count, revenue_range, description, linkedin_url, twitter_url, facebook_url, technologies, tags.`)
	return b.String()
}

func buildResearchPrompt(query string, fields []string, current map[string]any) string {
	currentJSON := "{}"
	if len(current) > 0 {
		if data, err := jsonIndent(current); err == nil {
			currentJSON = data
		}
	}
	return fmt.Sprintf(`Act as an AI research assistant. Find detailed information about this expert:
%s

Current known information:
%s

Please find and verify information for these fields: %s

Requirements:
1. Return only factual, verifiable information
2. For images, provide direct URLs to profile pictures (must end in .jpg, .jpeg, .png, or .webp)
3. Prefer official sources (LinkedIn, company websites, academic institutions)
4. Format the response as field:value pairs, one per line
5. If a field's information cannot be verified, omit it
6. For URLs, provide complete URLs including https://

Example format:
name: Dr. Jane Smith
position: Chief AI Researcher
company: Tech Corp
linkedin_url: https://linkedin.com/in/janesmith
profile_image: https://example.com/profile.jpg`, query, currentJSON, strings.Join(fields, ", "))
}

// expertFragmentFromModel maps the model's answer keys onto canonical
// fragment keys so the merge engine can apply it directly.
func expertFragmentFromModel(raw map[string]any) map[string]any {
	frag := map[string]any{}
	if v, ok := raw["expertise"]; ok {
		frag["expertise"] = v
	}
	if v, ok := raw["h_index"]; ok {
		frag["hIndex"] = v
	}
	if v, ok := raw["citations"]; ok {
		frag["citations"] = v
	}
	if v, ok := raw["publications"]; ok {
		// The model returns a list of notable publications, not a count.
		if list, isList := v.([]any); isList {
			frag["publications"] = map[string]any{"total": len(list)}
		} else {
			frag["publications"] = v
		}
	}
	enrichment := map[string]any{
		"confidence":      75,
		"last_updated":    time.Now().UTC().Format("2006-01-02"),
		"enriched_fields": modelFieldList(raw),
		"sources": []any{
			map[string]any{"name": "Gemini", "type": "generative_ai"},
		},
	}
	// Narrative findings have no canonical field; they ride along in the
	// enrichment block where merges preserve them by sub-key.
	for _, key := range []string{"academic_background", "research_areas", "projects"} {
		if v, ok := raw[key]; ok {
			enrichment[key] = v
		}
	}
	frag["ai_enrichment"] = enrichment
	return frag
}

func modelFieldList(raw map[string]any) []any {
	fields := make([]any, 0, len(raw))
	for _, key := range []string{"academic_background", "research_areas", "publications", "expertise", "projects", "h_index", "citations"} {
		if _, ok := raw[key]; ok {
			fields = append(fields, key)
		}
	}
	return fields
}

func enrichedCompanyFields(opts CompanyOptions) []any {
	var fields []any
	if opts.CompanyInfo {
		fields = append(fields, "company_info")
	}
	if opts.SocialMedia {
		fields = append(fields, "social_media")
	}
	if opts.Technologies {
		fields = append(fields, "technologies")
	}
	if opts.Products {
		fields = append(fields, "products")
	}
	if opts.Financials {
		fields = append(fields, "financials")
	}
	return fields
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
