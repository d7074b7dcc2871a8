package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

const sampleTranscript = `Alice: Let's review the roadmap before launch.
Bob: The launch is on track and the roadmap looks great.
Alice: Then we will ship on Friday.
Bob: Agreed, good plan.`

func TestHeuristicAnalyze_ProducesCompleteBundle(t *testing.T) {
	bundle := HeuristicAnalyze(sampleTranscript)
	require.NotNil(t, bundle)

	assert.NotEmpty(t, bundle.Summary)
	assert.NotNil(t, bundle.ActionItems)
	assert.NotNil(t, bundle.KeyTopics)
	assert.NotNil(t, bundle.Decisions)
	assert.NotNil(t, bundle.Takeaways)
	assert.NotEmpty(t, bundle.Sentiment)
}

func TestHeuristicAnalyze_FindsActionItems(t *testing.T) {
	bundle := HeuristicAnalyze(sampleTranscript)

	require.NotEmpty(t, bundle.ActionItems)
	found := false
	for _, item := range bundle.ActionItems {
		if strings.Contains(strings.ToLower(item), "ship") {
			found = true
		}
		// speaker labels are stripped from extracted items
		assert.NotRegexp(t, `^(Alice|Bob): `, item)
	}
	assert.True(t, found, "expected a ship-related action item, got %v", bundle.ActionItems)
}

func TestHeuristicAnalyze_FindsDecisions(t *testing.T) {
	bundle := HeuristicAnalyze(sampleTranscript)

	require.NotEmpty(t, bundle.Decisions)
	assert.Contains(t, strings.ToLower(strings.Join(bundle.Decisions, " ")), "agreed")
}

func TestHeuristicAnalyze_SummaryFromLeadingSentences(t *testing.T) {
	bundle := HeuristicAnalyze(sampleTranscript)

	assert.Contains(t, bundle.Summary, "roadmap")
	assert.True(t, strings.HasSuffix(bundle.Summary, "."))
}

func TestHeuristicAnalyze_TopicRanking(t *testing.T) {
	bundle := HeuristicAnalyze(sampleTranscript)

	require.NotEmpty(t, bundle.KeyTopics)
	assert.LessOrEqual(t, len(bundle.KeyTopics), 5)
	// "roadmap" and "launch" each occur twice and outrank one-off words
	assert.Contains(t, bundle.KeyTopics, "roadmap")
	assert.Contains(t, bundle.KeyTopics, "launch")
}

func TestScoreSentiment_MarginRule(t *testing.T) {
	cases := []struct {
		name string
		text string
		want entities.Sentiment
	}{
		{"clearly positive", "great great great, one problem", entities.SentimentPositive},
		{"clearly negative", "problem problem problem, one good thing", entities.SentimentNegative},
		{"balanced is neutral", "good stuff but a problem too", entities.SentimentNeutral},
		{"no signal is neutral", "we talked about the quarterly numbers", entities.SentimentNeutral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, scoreSentiment(tc.text))
		})
	}
}

func TestHeuristicAnalyze_ToleratesOddInput(t *testing.T) {
	for _, text := range []string{
		"single line without punctuation",
		"!!! ??? ...",
		strings.Repeat("word ", 5000),
	} {
		bundle := HeuristicAnalyze(text)
		require.NotNil(t, bundle)
		assert.NotNil(t, bundle.ActionItems)
		assert.NotNil(t, bundle.KeyTopics)
	}
}

func TestStripSpeaker(t *testing.T) {
	assert.Equal(t, "hello there", stripSpeaker("Alice: hello there"))
	assert.Equal(t, "no label here", stripSpeaker("no label here"))
	// a colon deep inside the sentence is not a speaker label
	long := "this sentence talks about ratios like 3: 1 later on"
	assert.Equal(t, long, stripSpeaker(long))
}
