package enrichment

// DetermineStatus derives the terminal processing status from the run's
// accumulated errors and partial outputs. It is computed once at the end of
// a run, never cached mid-run, since later steps may still acquire output.
//
// A bookmark with nothing enrichable and no errors completed successfully;
// absence of enrichable content is not itself a failure.
func DetermineStatus(hasErrors, hasSummary, hasMedia bool) Status {
	enriched := hasSummary || hasMedia

	switch {
	case !hasErrors:
		return StatusCompleted
	case enriched:
		return StatusPartialSuccess
	default:
		return StatusFailed
	}
}
