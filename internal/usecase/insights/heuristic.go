package insights

import (
	"sort"
	"strings"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// Deterministic fallback extraction. Never errors: given non-empty text it
// always produces a bundle with a non-empty summary and array-typed fields.

const summarySentences = 3

var actionKeywords = []string{
	"let's", "lets ", "will ", "we'll", "need to", "needs to", "should",
	"must", "have to", "todo", "to-do", "follow up", "follow-up", "assign",
	"schedule", "prepare", "send ", "take care", "by friday", "by monday",
	"next week", "ship",
}

var decisionKeywords = []string{
	"decided", "decision", "agreed", "agree", "approved", "confirmed",
	"we will go", "going with", "settled on", "final answer",
}

var takeawayKeywords = []string{
	"takeaway", "key point", "learned", "important", "remember", "keep in mind",
	"insight", "conclusion", "in summary",
}

var positiveWords = []string{
	"good", "great", "excellent", "agreed", "agree", "happy", "success",
	"successful", "on track", "well done", "perfect", "nice", "love",
	"awesome", "thanks", "thank you", "glad",
}

var negativeWords = []string{
	"bad", "problem", "issue", "blocked", "blocker", "delay", "delayed",
	"fail", "failed", "failure", "concern", "concerned", "risk", "unhappy",
	"wrong", "bug", "broken", "behind schedule", "missed",
}

var stopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "with": true,
	"have": true, "will": true, "then": true, "from": true, "they": true,
	"what": true, "when": true, "were": true, "your": true, "just": true,
	"about": true, "there": true, "would": true, "could": true, "should": true,
	"them": true, "been": true, "because": true, "into": true, "some": true,
	"more": true, "very": true, "also": true, "than": true, "like": true,
	"let's": true, "lets": true, "going": true, "okay": true, "yeah": true,
	"think": true, "know": true, "want": true, "need": true, "make": true,
	"here": true, "well": true,
}

// HeuristicAnalyze extracts a best-effort insight bundle without the LLM
func HeuristicAnalyze(transcript string) *entities.InsightBundle {
	sentences := splitSentences(transcript)

	bundle := &entities.InsightBundle{
		Summary:     buildSummary(sentences),
		ActionItems: matchSentences(sentences, actionKeywords),
		KeyTopics:   rankTopics(transcript, 5),
		Decisions:   matchSentences(sentences, decisionKeywords),
		Takeaways:   matchSentences(sentences, takeawayKeywords),
		Sentiment:   scoreSentiment(transcript),
	}
	bundle.Normalize()
	return bundle
}

// splitSentences breaks the transcript on terminal punctuation and newlines
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return sentences
}

func buildSummary(sentences []string) string {
	n := summarySentences
	if len(sentences) < n {
		n = len(sentences)
	}
	if n == 0 {
		return ""
	}
	return strings.Join(sentences[:n], ". ") + "."
}

func matchSentences(sentences []string, keywords []string) []string {
	var matched []string
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, stripSpeaker(sentence))
				break
			}
		}
	}
	return matched
}

// stripSpeaker drops a leading "Speaker:" label from a transcript sentence
func stripSpeaker(sentence string) string {
	if idx := strings.Index(sentence, ": "); idx > 0 && idx < 30 {
		prefix := sentence[:idx]
		if !strings.ContainsAny(prefix, ".!?") {
			return strings.TrimSpace(sentence[idx+2:])
		}
	}
	return sentence
}

// rankTopics returns the most frequent non-stopword terms
func rankTopics(text string, limit int) []string {
	counts := make(map[string]int)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,!?;:'\"()")
		if len(word) < 4 || stopwords[word] {
			continue
		}
		counts[word]++
	}

	type freq struct {
		word  string
		count int
	}
	ranked := make([]freq, 0, len(counts))
	for word, count := range counts {
		ranked = append(ranked, freq{word, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	topics := make([]string, 0, len(ranked))
	for _, f := range ranked {
		topics = append(topics, f.word)
	}
	return topics
}

// scoreSentiment tallies positive and negative keywords; the winning side
// must exceed the other by 50% or the result is neutral
func scoreSentiment(text string) entities.Sentiment {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range positiveWords {
		pos += strings.Count(lower, w)
	}
	for _, w := range negativeWords {
		neg += strings.Count(lower, w)
	}

	switch {
	case float64(pos) > float64(neg)*1.5 && pos > 0:
		return entities.SentimentPositive
	case float64(neg) > float64(pos)*1.5 && neg > 0:
		return entities.SentimentNegative
	default:
		return entities.SentimentNeutral
	}
}
