package webhookproc

import (
	"encoding/json"
)

// ParsedEvent is the tagged union of known provider notifications. Every
// inbound payload parses into exactly one variant; unrecognized event types
// parse into Unknown instead of being silently dropped.
type ParsedEvent interface {
	BotID() string
}

// BotInLobby signals the bot is waiting for admission
type BotInLobby struct {
	Bot string
}

func (e BotInLobby) BotID() string { return e.Bot }

// BotAdmitted signals the bot joined the call
type BotAdmitted struct {
	Bot string
}

func (e BotAdmitted) BotID() string { return e.Bot }

// StatusChange carries a provider-side bot status transition
type StatusChange struct {
	Bot    string
	Status string
}

func (e StatusChange) BotID() string { return e.Bot }

// TranscriptLive carries an in-progress transcript snapshot
type TranscriptLive struct {
	Bot  string
	Text string
}

func (e TranscriptLive) BotID() string { return e.Bot }

// RecordingCompleted signals the bot finished recording
type RecordingCompleted struct {
	Bot string
}

func (e RecordingCompleted) BotID() string { return e.Bot }

// TranscriptReady signals the final transcript can be retrieved
type TranscriptReady struct {
	Bot         string
	DownloadURL string
}

func (e TranscriptReady) BotID() string { return e.Bot }

// Unknown preserves events of types this version does not understand
type Unknown struct {
	Bot  string
	Type string
	Raw  json.RawMessage
}

func (e Unknown) BotID() string { return e.Bot }

// rawPayload is the superset of fields known event payloads carry
type rawPayload struct {
	BotID       string `json:"bot_id"`
	Status      string `json:"status"`
	Text        string `json:"text"`
	Transcript  string `json:"transcript"`
	DownloadURL string `json:"download_url"`
}

// ParseEvent maps an event type and raw payload to its typed variant
func ParseEvent(eventType string, payload []byte) (ParsedEvent, error) {
	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	switch eventType {
	case "bot.in_lobby":
		return BotInLobby{Bot: raw.BotID}, nil
	case "bot.admitted":
		return BotAdmitted{Bot: raw.BotID}, nil
	case "bot.status_change", "status_change":
		return StatusChange{Bot: raw.BotID, Status: raw.Status}, nil
	case "transcript.live":
		text := raw.Text
		if text == "" {
			text = raw.Transcript
		}
		return TranscriptLive{Bot: raw.BotID, Text: text}, nil
	case "recording.completed":
		return RecordingCompleted{Bot: raw.BotID}, nil
	case "transcript.ready":
		return TranscriptReady{Bot: raw.BotID, DownloadURL: raw.DownloadURL}, nil
	default:
		return Unknown{Bot: raw.BotID, Type: eventType, Raw: payload}, nil
	}
}
