package transcriptfetch

import (
	"encoding/json"
	"strings"
)

// speakerBlock is the participant-keyed structure transcript downloads use:
// a list of speakers, each with a word list in utterance order.
type speakerBlock struct {
	Speaker string `json:"speaker"`
	Name    string `json:"name"`
	Words   []struct {
		Text string `json:"text"`
	} `json:"words"`
}

// ParseTranscriptPayload turns a raw provider payload into plain transcript
// text. Participant-keyed JSON becomes one "Speaker: words" line per block
// in original order; anything else is used as-is.
func ParseTranscriptPayload(raw []byte) string {
	var blocks []speakerBlock
	if err := json.Unmarshal(raw, &blocks); err != nil || len(blocks) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var lines []string
	for _, block := range blocks {
		speaker := block.Speaker
		if speaker == "" {
			speaker = block.Name
		}

		words := make([]string, 0, len(block.Words))
		for _, w := range block.Words {
			if w.Text != "" {
				words = append(words, w.Text)
			}
		}
		if speaker == "" && len(words) == 0 {
			continue
		}

		text := strings.Join(words, " ")
		if speaker != "" {
			lines = append(lines, speaker+": "+text)
		} else {
			lines = append(lines, text)
		}
	}

	if len(lines) == 0 {
		return strings.TrimSpace(string(raw))
	}
	return strings.Join(lines, "\n")
}
