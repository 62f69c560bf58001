package enrich

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var imageExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp)(\?.*)?$`)

// ExtractJSON pulls a JSON object out of generative model output. Models
// wrap their answer in markdown fences or leading prose more often than
// not, so the parser falls back to the outermost brace pair.
func ExtractJSON(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)

	if fenced := stripFences(text); fenced != "" {
		text = fenced
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("parsing model response: %w", err)
	}
	return out, nil
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return ""
	}
	rest := strings.TrimPrefix(text, "```")
	if i := strings.Index(rest, "\n"); i >= 0 {
		rest = rest[i+1:] // drop the language tag line
	}
	if i := strings.LastIndex(rest, "```"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

// ParseFieldLines parses a "field: value" per-line model response into a
// map with lowercased keys. Lines without a colon are skipped; values keep
// embedded colons (URLs) intact and lose surrounding quotes.
func ParseFieldLines(text string) map[string]string {
	out := make(map[string]string)
	for line := range strings.Lines(text) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
			value = value[1 : len(value)-1]
		}
		out[key] = value
	}
	return out
}

// ValidImageURL reports whether a URL points at a usable profile image:
// direct link ending in a raster image extension.
func ValidImageURL(url string) bool {
	return imageExtRe.MatchString(strings.TrimSpace(url))
}

func jsonIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
