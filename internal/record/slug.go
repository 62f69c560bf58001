package record

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify derives a filesystem- and URL-safe key from a name or domain.
// Diacritics are folded to their base letters (NFD decompose, drop
// combining marks), everything outside [a-z0-9] becomes a hyphen, and runs
// of hyphens collapse.
func Slugify(s string) string {
	s = stripDiacritics(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// DomainKey turns a company domain into a store key the way the records
// were historically written: dots become underscores.
func DomainKey(domain string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(domain)), ".", "_")
}

// ExtractDomain pulls the bare host out of a URL, dropping protocol, www
// prefix, and any path. Empty when the input has no host-like part.
func ExtractDomain(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if !strings.Contains(s, ".") {
		return ""
	}
	return s
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
