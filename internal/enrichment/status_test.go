package enrichment_test

import (
	"testing"

	"github.com/satchel-io/satchel/internal/enrichment"
)

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		name       string
		hasErrors  bool
		hasSummary bool
		hasMedia   bool
		want       enrichment.Status
	}{
		{"clean run with summary", false, true, false, enrichment.StatusCompleted},
		{"clean run with media", false, false, true, enrichment.StatusCompleted},
		{"clean run with both", false, true, true, enrichment.StatusCompleted},
		{"nothing to enrich is still success", false, false, false, enrichment.StatusCompleted},
		{"errors but summary acquired", true, true, false, enrichment.StatusPartialSuccess},
		{"errors but media acquired", true, false, true, enrichment.StatusPartialSuccess},
		{"errors with both acquired", true, true, true, enrichment.StatusPartialSuccess},
		{"errors and nothing acquired", true, false, false, enrichment.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enrichment.DetermineStatus(tt.hasErrors, tt.hasSummary, tt.hasMedia)
			if got != tt.want {
				t.Errorf(
					"DetermineStatus(%v, %v, %v) = %v, want %v",
					tt.hasErrors, tt.hasSummary, tt.hasMedia, got, tt.want,
				)
			}
		})
	}
}
