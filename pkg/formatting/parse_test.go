package formatting_test

import (
	"errors"
	"testing"

	"github.com/satchel-io/satchel/pkg/formatting"
)

type sample struct {
	Summary    string   `json:"summary"`
	Keywords   []string `json:"keywords"`
	TokensUsed int      `json:"tokens_used"`
}

func TestParse(t *testing.T) {
	t.Run("direct JSON", func(t *testing.T) {
		got, err := formatting.Parse[sample](`{"summary":"an article","keywords":["go"],"tokens_used":42}`)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Summary != "an article" || got.TokensUsed != 42 {
			t.Errorf("Parse = %+v", got)
		}
	})

	t.Run("fenced JSON", func(t *testing.T) {
		content := "Here is the result:\n```json\n{\"summary\":\"fenced\",\"tokens_used\":7}\n```\n"
		got, err := formatting.Parse[sample](content)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Summary != "fenced" || got.TokensUsed != 7 {
			t.Errorf("Parse = %+v", got)
		}
	})

	t.Run("fence without language tag", func(t *testing.T) {
		content := "```\n{\"summary\":\"plain fence\"}\n```"
		got, err := formatting.Parse[sample](content)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Summary != "plain fence" {
			t.Errorf("Parse = %+v", got)
		}
	})

	t.Run("prose-wrapped JSON", func(t *testing.T) {
		content := `Sure! The summary is {"summary":"wrapped","tokens_used":3} as requested.`
		got, err := formatting.Parse[sample](content)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Summary != "wrapped" || got.TokensUsed != 3 {
			t.Errorf("Parse = %+v", got)
		}
	})

	t.Run("unparseable content", func(t *testing.T) {
		_, err := formatting.Parse[sample]("the model refused to answer")
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("error = %v, want ErrParseFailed", err)
		}
	})
}
