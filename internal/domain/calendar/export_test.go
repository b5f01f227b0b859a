package calendar

// SyncOutcomeForTest exposes the metric label helper to external tests.
func SyncOutcomeForTest(results []AccountEvents) string {
	return syncOutcome(results)
}
