// Package summarize produces AI summaries, keywords, and tag suggestions
// for bookmark content.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/satchel-io/satchel/internal/enrichment"
	"github.com/satchel-io/satchel/pkg/formatting"
)

type summaryResponse struct {
	Summary    string   `json:"summary"`
	Keywords   []string `json:"keywords"`
	Tags       []string `json:"tags"`
	TokensUsed int      `json:"tokens_used"`
}

// Summarizer sends bookmark content to a chat model and parses the structured
// response. A fresh agent is created per call; the underlying client pools
// connections.
type Summarizer struct {
	agent  gaconfig.AgentConfig
	logger *slog.Logger
}

// New creates a Summarizer bound to the given agent configuration.
func New(cfg gaconfig.AgentConfig, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		agent:  cfg,
		logger: logger.With("system", "summarize"),
	}
}

// Summarize sends content to the model and returns the parsed summary.
// maxLength bounds the summary text the model is asked to produce.
func (s *Summarizer) Summarize(ctx context.Context, content string, maxLength int) (*enrichment.Summary, error) {
	a, err := agent.New(&s.agent)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, composePrompt(content, maxLength))
	if err != nil {
		return nil, fmt.Errorf("chat call: %w", err)
	}

	parsed, err := formatting.Parse[summaryResponse](resp.Text())
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if parsed.Summary == "" {
		return nil, fmt.Errorf("model returned empty summary")
	}

	result := &enrichment.Summary{
		Summary:    parsed.Summary,
		Keywords:   parsed.Keywords,
		TokensUsed: parsed.TokensUsed,
	}
	for _, name := range parsed.Tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		result.Tags = append(result.Tags, enrichment.Tag{Name: name})
	}

	s.logger.Debug("summarization complete",
		"summary_length", len(result.Summary),
		"keywords", len(result.Keywords),
		"tags", len(result.Tags),
		"tokens_used", result.TokensUsed,
	)

	return result, nil
}

func composePrompt(content string, maxLength int) string {
	var b strings.Builder
	b.WriteString("Summarize the following saved post for a personal bookmark manager.\n")
	fmt.Fprintf(&b, "The summary must be at most %d characters.\n", maxLength)
	b.WriteString("Respond with a JSON object inside a ```json code fence with exactly these fields:\n")
	b.WriteString(`{"summary": string, "keywords": [string], "tags": [string], "tokens_used": number}`)
	b.WriteString("\n\nContent:\n")
	b.WriteString(content)
	return b.String()
}
