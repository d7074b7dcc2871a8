package entities

// InsightBundle is the structured output derived from a transcript: the
// shape returned by the LLM path and by the heuristic fallback alike.
type InsightBundle struct {
	Summary     string    `json:"summary"`
	ActionItems []string  `json:"action_items"`
	KeyTopics   []string  `json:"key_topics"`
	Decisions   []string  `json:"decisions"`
	Takeaways   []string  `json:"takeaways"`
	Sentiment   Sentiment `json:"sentiment"`
}

// Normalize replaces nil list fields with empty slices so callers can rely
// on array-typed fields regardless of which path produced the bundle.
func (b *InsightBundle) Normalize() {
	if b.ActionItems == nil {
		b.ActionItems = []string{}
	}
	if b.KeyTopics == nil {
		b.KeyTopics = []string{}
	}
	if b.Decisions == nil {
		b.Decisions = []string{}
	}
	if b.Takeaways == nil {
		b.Takeaways = []string{}
	}
	if b.Sentiment == "" {
		b.Sentiment = SentimentNeutral
	}
}

// Valid reports whether a bundle satisfies the contract required of the
// primary path: a non-empty summary and array-typed list fields.
func (b *InsightBundle) Valid() bool {
	return b != nil && b.Summary != "" &&
		b.ActionItems != nil && b.KeyTopics != nil &&
		b.Decisions != nil && b.Takeaways != nil
}
