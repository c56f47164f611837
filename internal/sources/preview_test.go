package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><h1>Harbors</h1><p>A <strong>harbor</strong> shelters ships.</p></body></html>"))
	}))
	defer srv.Close()

	got, err := New().Preview(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(got, "# Harbors") {
		t.Errorf("heading not converted: %q", got)
	}
	if !strings.Contains(got, "**harbor**") {
		t.Errorf("emphasis not converted: %q", got)
	}
}

func TestTruncateUTF8(t *testing.T) {
	// "宇" is 3 bytes; a 4-byte budget must cut back to the rune boundary.
	got := truncateUTF8("宇宙", 4)
	if got != "宇" {
		t.Errorf("got %q, want the first rune only", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}

	if got := truncateUTF8("short", 100); got != "short" {
		t.Errorf("got %q, want input unchanged", got)
	}
	if got := truncateUTF8("abcdef", 3); got != "abc" {
		t.Errorf("got %q, want clean ASCII cut", got)
	}
}

func TestPreview_TruncatesOnRuneBoundary(t *testing.T) {
	body := "<p>" + strings.Repeat("宇宙故事", 5000) + "</p>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	got, err := New().Preview(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.HasSuffix(got, "[Content truncated]") {
		t.Error("oversized preview not truncated")
	}
	if !utf8.ValidString(got) {
		t.Error("preview contains invalid UTF-8 after truncation")
	}
}

func TestPreview_RejectsNonHTTP(t *testing.T) {
	_, err := New().Preview(context.Background(), "file:///etc/passwd")
	if err == nil {
		t.Fatal("expected scheme rejection")
	}
}

func TestPreview_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New().Preview(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want status 404", err)
	}
}
