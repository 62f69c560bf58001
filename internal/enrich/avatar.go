package enrich

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// Avatar discovers a profile photo URL for an email address. Gravatar is
// checked first, then Clearbit's logo service keyed on the mail domain.
type Avatar struct {
	gravatarBase string
	clearbitBase string
	httpClient   *http.Client
}

func NewAvatar() *Avatar {
	return &Avatar{
		gravatarBase: "https://www.gravatar.com/avatar",
		clearbitBase: "https://logo.clearbit.com",
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
}

// Lookup returns a usable photo URL for the address, or ErrNoData when
// neither service knows it.
func (a *Avatar) Lookup(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("valid email is required")
	}

	sum := md5.Sum([]byte(email))
	gravatarURL := fmt.Sprintf("%s/%s?d=404&s=400", a.gravatarBase, hex.EncodeToString(sum[:]))
	if a.exists(ctx, gravatarURL) {
		return gravatarURL, nil
	}

	_, domain, _ := strings.Cut(email, "@")
	clearbitURL := fmt.Sprintf("%s/%s", a.clearbitBase, domain)
	if a.exists(ctx, clearbitURL) {
		return clearbitURL, nil
	}
	return "", ErrNoData
}

// Logo returns a Clearbit logo URL for a company domain, or ErrNoData
// when Clearbit has none.
func (a *Avatar) Logo(ctx context.Context, domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return "", fmt.Errorf("domain is required")
	}
	logoURL := fmt.Sprintf("%s/%s", a.clearbitBase, domain)
	if a.exists(ctx, logoURL) {
		return logoURL, nil
	}
	return "", ErrNoData
}

// exists probes a URL with a HEAD request. Any transport error counts as
// absent rather than failing the whole lookup.
func (a *Avatar) exists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
