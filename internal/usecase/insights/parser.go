package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// ParseBundleResponse parses the LLM response into an InsightBundle. The
// model may wrap the JSON in a fenced code block or surround it with prose,
// so extraction is defensive. A response that parses but fails validation is
// a primary-path failure.
func ParseBundleResponse(content string) (*entities.InsightBundle, error) {
	jsonString := extractJSON(content)

	var bundle entities.InsightBundle
	if err := json.Unmarshal([]byte(jsonString), &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	bundle.Normalize()

	if !bundle.Valid() {
		return nil, fmt.Errorf("response missing required fields")
	}

	switch bundle.Sentiment {
	case entities.SentimentPositive, entities.SentimentNeutral, entities.SentimentNegative:
	default:
		return nil, fmt.Errorf("invalid sentiment value: %q", bundle.Sentiment)
	}

	return &bundle, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if start := strings.Index(content, "{"); start > 0 {
		// prose around a bare JSON object
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	return strings.TrimSpace(content)
}
