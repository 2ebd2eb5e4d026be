package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/agentlens/agentlens/internal/testutil"
)

func newFetcher(t *testing.T, client *testutil.DummyWebClient) *Fetcher {
	t.Helper()
	f, err := New(client, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestFetchParsesPage(t *testing.T) {
	const url = "http://example.test/page"
	f := newFetcher(t, &testutil.DummyWebClient{Pages: map[string]string{
		url: `<html><head><title> Widgets </title></head><body><p>hello</p></body></html>`,
	}})

	doc, err := f.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.Title() != "Widgets" {
		t.Fatalf("title %q", doc.Title())
	}
	if doc.StatusCode != 200 {
		t.Fatalf("status %d", doc.StatusCode)
	}
	if doc.Empty() {
		t.Fatal("document should not be empty")
	}
}

func TestFetchRejectsUnusableURL(t *testing.T) {
	f := newFetcher(t, &testutil.DummyWebClient{})
	for _, raw := range []string{"", "not a url", "/relative/only", "example.test/no-scheme"} {
		doc, err := f.Fetch(context.Background(), raw)
		if err == nil {
			t.Errorf("%q: expected error", raw)
		}
		if doc != nil {
			t.Errorf("%q: unusable URL must return a nil document", raw)
		}
	}
}

func TestFetchTransportFailureKeepsDocument(t *testing.T) {
	f := newFetcher(t, &testutil.DummyWebClient{Err: errors.New("dns failure")})

	doc, err := f.Fetch(context.Background(), "http://example.test/down")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if doc == nil {
		t.Fatal("transport failures must still return a best-effort document")
	}
	if !doc.Empty() {
		t.Fatal("document after a transport failure should be empty")
	}
}

func TestFetchNonSuccessStatusReturnsBothDocAndError(t *testing.T) {
	const url = "http://example.test/missing"
	// The dummy transport answers unmapped URLs with a 404 page.
	f := newFetcher(t, &testutil.DummyWebClient{Pages: map[string]string{}})

	doc, err := f.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("expected status error for a 404")
	}
	if doc == nil || doc.StatusCode != 404 {
		t.Fatalf("404 must still yield a parsed document: %+v", doc)
	}
}

func TestMainContentPreference(t *testing.T) {
	cases := []struct {
		name     string
		html     string
		selector string
	}{
		{"main wins", `<html><body><article><p>a</p></article><main><p>m</p></main></body></html>`, "main"},
		{"role main", `<html><body><div role="main"><p>m</p></div></body></html>`, "[role=main]"},
		{"article fallback", `<html><body><article><p>a</p></article></body></html>`, "article"},
		{"body fallback", `<html><body><p>b</p></body></html>`, "body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse("http://example.test/", tc.html)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := doc.MainContentSelector(); got != tc.selector {
				t.Fatalf("selector %q, want %q", got, tc.selector)
			}
		})
	}
}

func TestTextStripsScriptAndStyle(t *testing.T) {
	doc, err := Parse("http://example.test/", `<html><body><main>
<p>visible words</p>
<script>var hidden = "code";</script>
<style>p { color: red; }</style>
</main></body></html>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	text := doc.Text()
	if text != "visible words" {
		t.Fatalf("text %q", text)
	}
}

func TestEmptyDocument(t *testing.T) {
	var nilDoc *Document
	if !nilDoc.Empty() {
		t.Error("nil document must read as empty")
	}
	doc, err := Parse("http://example.test/", "   ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.Empty() {
		t.Error("whitespace-only markup must read as empty")
	}
}
