package events

const (
	StreamName   = "SOULCOMPASS_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectQuizCompleted(respondentID string) string {
	return "soulcompass.quiz." + respondentID + ".completed"
}

func SubjectScoresPersistFailed(respondentID string) string {
	return "soulcompass.scores." + respondentID + ".persist_failed"
}

func SubjectCatalogReloaded() string { return "soulcompass.catalog.reloaded" }
func SubjectCatalogSeeded() string   { return "soulcompass.catalog.seeded" }
