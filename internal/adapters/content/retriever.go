// Package content retrieves expanded page text for bookmarked URLs.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/satchel-io/satchel/internal/enrichment"
)

// minReplacementMargin guards against swapping captured bookmark text for a
// fragment of navigation chrome or a paywall notice. Extraction must beat the
// captured text by this many characters before it replaces it.
const minReplacementMargin = 100

// stripSelectors are removed from the document before text extraction.
var stripSelectors = []string{
	"script", "style", "noscript", "nav",
	"header", "footer", "aside", "form",
}

// Retriever fetches a bookmark's page and extracts the readable article text.
// It never fails the workflow: any error returns the fallback text instead.
type Retriever struct {
	client *http.Client
	logger *slog.Logger
}

// NewRetriever creates a Retriever with the given client. A nil client gets a
// 10 second timeout default.
func NewRetriever(client *http.Client, logger *slog.Logger) *Retriever {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Retriever{
		client: client,
		logger: logger.With("system", "content"),
	}
}

// Retrieve fetches url and returns the extracted article text, or fallback
// when the page cannot be fetched or yields too little text to trust.
func (r *Retriever) Retrieve(ctx context.Context, url string, platform enrichment.Platform, fallback string) (string, error) {
	extracted, err := r.fetch(ctx, url)
	if err != nil {
		r.logger.Warn("content retrieval failed, using captured text",
			"url", url,
			"platform", platform,
			"error", err,
		)
		return fallback, nil
	}

	if len(extracted) <= len(fallback)+minReplacementMargin {
		r.logger.Debug("extracted text not substantially longer, using captured text",
			"url", url,
			"extracted_length", len(extracted),
			"captured_length", len(fallback),
		)
		return fallback, nil
	}

	return extracted, nil
}

func (r *Retriever) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "satchel/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	return extractText(doc), nil
}

// extractText prefers semantic article containers and falls back to the body,
// stripping non-content elements first.
func extractText(doc *goquery.Document) string {
	for _, selector := range stripSelectors {
		doc.Find(selector).Remove()
	}

	root := doc.Find("article")
	if root.Length() == 0 {
		root = doc.Find("main")
	}
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var builder strings.Builder
	root.Find("p, h1, h2, h3, li, blockquote").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(text)
	})

	// Pages without paragraph structure still get their raw text.
	if builder.Len() == 0 {
		return strings.TrimSpace(root.Text())
	}

	return builder.String()
}
