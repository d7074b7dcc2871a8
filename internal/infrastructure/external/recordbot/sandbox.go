package recordbot

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventSink receives the webhook events the sandbox emits.
// Wired to the webhook intake so sandbox runs exercise the same path as the
// real provider.
type EventSink func(event string, data map[string]interface{})

// SandboxOption configures the sandbox client
type SandboxOption func(*Sandbox)

// WithDelays overrides the lobby/admit/finish delays
func WithDelays(lobby, admit, finish time.Duration) SandboxOption {
	return func(s *Sandbox) {
		s.lobbyDelay = lobby
		s.admitDelay = admit
		s.finishDelay = finish
	}
}

// WithTranscript overrides the transcript the sandbox produces
func WithTranscript(text string) SandboxOption {
	return func(s *Sandbox) {
		s.transcript = text
	}
}

type sandboxBot struct {
	info    BotInfo
	stopped bool
	timers  []*time.Timer
}

// Sandbox is an in-process provider used in development and tests.
// It walks each dispatched bot through lobby, in-call and done, emitting the
// same event shapes the real provider delivers over webhooks.
type Sandbox struct {
	mu   sync.Mutex
	bots map[string]*sandboxBot
	sink EventSink

	lobbyDelay  time.Duration
	admitDelay  time.Duration
	finishDelay time.Duration
	transcript  string
}

// NewSandbox creates a sandbox provider feeding events into sink
func NewSandbox(sink EventSink, opts ...SandboxOption) *Sandbox {
	s := &Sandbox{
		bots:        make(map[string]*sandboxBot),
		sink:        sink,
		lobbyDelay:  500 * time.Millisecond,
		admitDelay:  2 * time.Second,
		finishDelay: 10 * time.Second,
		transcript:  "Alice: Let's review the roadmap.\nBob: The launch is on track.\nAlice: Then we will ship on Friday.\nBob: Agreed.",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartBot registers a sandbox bot and schedules its lifecycle events
func (s *Sandbox) StartBot(_ context.Context, meetingURL string) (string, error) {
	botID := "sandbox-" + uuid.New().String()

	bot := &sandboxBot{
		info: BotInfo{ID: botID, Status: "in_lobby", MeetingURL: meetingURL},
	}

	s.mu.Lock()
	s.bots[botID] = bot
	s.mu.Unlock()

	s.schedule(botID, s.lobbyDelay, "in_lobby", "bot.in_lobby", nil)
	s.schedule(botID, s.lobbyDelay+s.admitDelay, "in_call", "bot.admitted", nil)
	s.schedule(botID, s.lobbyDelay+s.admitDelay+s.finishDelay, "done", "recording.completed", nil)
	s.schedule(botID, s.lobbyDelay+s.admitDelay+s.finishDelay, "done", "transcript.ready", nil)

	return botID, nil
}

// StopBot halts the bot and cancels its remaining lifecycle events
func (s *Sandbox) StopBot(_ context.Context, botID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bot, ok := s.bots[botID]
	if !ok {
		return &ProviderError{StatusCode: http.StatusNotFound, Body: "bot not found"}
	}
	bot.stopped = true
	bot.info.Status = "done"
	for _, t := range bot.timers {
		t.Stop()
	}
	return nil
}

// GetBot returns the sandbox state of the bot
func (s *Sandbox) GetBot(_ context.Context, botID string) (*BotInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bot, ok := s.bots[botID]
	if !ok {
		return nil, &ProviderError{StatusCode: http.StatusNotFound, Body: "bot not found"}
	}
	info := bot.info
	return &info, nil
}

// GetTranscript returns the canned transcript once the bot is done
func (s *Sandbox) GetTranscript(_ context.Context, botID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bot, ok := s.bots[botID]
	if !ok {
		return nil, &ProviderError{StatusCode: http.StatusNotFound, Body: "bot not found"}
	}
	if bot.info.Status != "done" {
		return nil, &ProviderError{StatusCode: http.StatusConflict, Body: "recording not finished"}
	}
	return []byte(s.transcript), nil
}

// Download is not supported by the sandbox; it never issues signed URLs
func (s *Sandbox) Download(_ context.Context, _ string) ([]byte, error) {
	return nil, &ProviderError{StatusCode: http.StatusNotFound, Body: "sandbox has no download urls"}
}

func (s *Sandbox) schedule(botID string, after time.Duration, status, event string, extra map[string]interface{}) {
	timer := time.AfterFunc(after, func() {
		s.mu.Lock()
		bot, ok := s.bots[botID]
		if !ok || bot.stopped {
			s.mu.Unlock()
			return
		}
		bot.info.Status = status
		sink := s.sink
		s.mu.Unlock()

		if sink == nil {
			return
		}
		data := map[string]interface{}{"bot_id": botID, "status": status}
		for k, v := range extra {
			data[k] = v
		}
		sink(event, data)
	})

	s.mu.Lock()
	if bot, ok := s.bots[botID]; ok {
		bot.timers = append(bot.timers, timer)
	}
	s.mu.Unlock()
}
