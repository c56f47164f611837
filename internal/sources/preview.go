// Package sources fetches grounding-source pages and renders them as
// markdown, so cited references can be previewed without leaving the app.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

const maxPreviewChars = 50000

// Previewer fetches a source URL and converts its HTML to markdown.
type Previewer struct {
	client *http.Client
}

// New creates a Previewer with a sensible fetch timeout.
func New() *Previewer {
	return &Previewer{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Preview fetches rawURL and returns its content as markdown, truncated to
// a bounded length. Only http and https URLs are accepted; grounding
// chunks come back from providers unsanitized.
func (p *Previewer) Preview(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme: %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Storyweaver/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}

	if len(md) > maxPreviewChars {
		md = truncateUTF8(md, maxPreviewChars) + "\n\n[Content truncated]"
	}
	return md, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a multi-byte
// rune at the boundary.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
