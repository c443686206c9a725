package content_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/satchel-io/satchel/internal/adapters/content"
	"github.com/satchel-io/satchel/internal/enrichment"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Test</title><script>var x = 1;</script></head>
<body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<article>
<h1>Understanding Worker Pools</h1>
<p>Worker pools bound the number of goroutines that run concurrently,
which keeps resource usage predictable under bursty load. They are one
of the most common concurrency patterns in production Go services.</p>
<p>A typical pool reads tasks from a channel and acknowledges completion
through a second channel or a wait group.</p>
</article>
<footer>Copyright 2026</footer>
</body>
</html>`

func TestRetrieveExtractsArticleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	r := content.NewRetriever(srv.Client(), discard())

	got, err := r.Retrieve(context.Background(), srv.URL, enrichment.PlatformGenericURL, "captured text")
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}

	if !strings.Contains(got, "Worker pools bound the number of goroutines") {
		t.Errorf("extracted text missing article body: %q", got)
	}
	if strings.Contains(got, "var x = 1") {
		t.Error("extracted text contains script content")
	}
	if strings.Contains(got, "Copyright 2026") {
		t.Error("extracted text contains footer content")
	}
	if strings.Contains(got, "About") {
		t.Error("extracted text contains navigation content")
	}
}

func TestRetrieveShortExtractionKeepsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Too short.</p></body></html>"))
	}))
	defer srv.Close()

	r := content.NewRetriever(srv.Client(), discard())

	got, err := r.Retrieve(context.Background(), srv.URL, enrichment.PlatformGenericURL, "captured text")
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}
	if got != "captured text" {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestRetrieveBoilerplateShorterThanCapturedKeepsFallback(t *testing.T) {
	// A paywalled page often yields a cookie notice well over any absolute
	// floor but still shorter than the text captured at bookmark time.
	notice := strings.Repeat("We use cookies to improve your experience. ", 4)
	page := "<html><body><article><p>" + notice + "</p></article></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	captured := strings.Repeat("The post text saved when the bookmark was created. ", 10)
	if len(captured) <= len(notice) {
		t.Fatalf("captured text must exceed extracted notice for this scenario")
	}

	r := content.NewRetriever(srv.Client(), discard())

	got, err := r.Retrieve(context.Background(), srv.URL, enrichment.PlatformGenericURL, captured)
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}
	if got != captured {
		t.Errorf("got %d-char extraction, want %d-char captured text", len(got), len(captured))
	}
}

func TestRetrieveMarginallyLongerExtractionKeepsFallback(t *testing.T) {
	captured := strings.Repeat("saved text ", 20)
	body := captured + "plus a little more"
	page := "<html><body><article><p>" + body + "</p></article></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	r := content.NewRetriever(srv.Client(), discard())

	got, err := r.Retrieve(context.Background(), srv.URL, enrichment.PlatformGenericURL, captured)
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}
	if got != captured {
		t.Errorf("extraction within the replacement margin should keep captured text")
	}
}

func TestRetrieveServerErrorKeepsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := content.NewRetriever(srv.Client(), discard())

	got, err := r.Retrieve(context.Background(), srv.URL, enrichment.PlatformGenericURL, "captured text")
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}
	if got != "captured text" {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestRetrieveUnreachableHostKeepsFallback(t *testing.T) {
	r := content.NewRetriever(&http.Client{}, discard())

	got, err := r.Retrieve(context.Background(), "http://127.0.0.1:1", enrichment.PlatformGenericURL, "captured text")
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}
	if got != "captured text" {
		t.Errorf("got %q, want fallback", got)
	}
}
