package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/recordbot"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/webhookproc"
)

const testSecret = "webhook-test-secret"

type memMeetingRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting
}

func (r *memMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[m.ID] = m
	return nil
}

func (r *memMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	copy := *m
	return &copy, nil
}

func (r *memMeetingRepo) FindByBotID(_ context.Context, botID string) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.ExternalBotID != nil && *m.ExternalBotID == botID {
			copy := *m
			return &copy, nil
		}
	}
	return nil, entities.ErrMeetingNotFound
}

func (r *memMeetingRepo) UpdateFields(_ context.Context, _ uuid.UUID, _ map[string]interface{}) error {
	return nil
}

func (r *memMeetingRepo) AdvanceStatus(_ context.Context, id uuid.UUID, target entities.MeetingStatus, _ map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return false, entities.ErrMeetingNotFound
	}
	if !m.CanAdvanceTo(target) {
		return false, nil
	}
	m.Status = target
	return true, nil
}

func (r *memMeetingRepo) status(id uuid.UUID) entities.MeetingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meetings[id].Status
}

type memEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*entities.WebhookEvent
}

func (r *memEventRepo) Create(_ context.Context, e *entities.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = e
	return nil
}

func (r *memEventRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, entities.ErrEventNotFound
	}
	return e, nil
}

func (r *memEventRepo) MarkProcessed(_ context.Context, id uuid.UUID, processingError *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		e.Processed = true
		e.ProcessingError = processingError
	}
	return nil
}

func (r *memEventRepo) RecordAttempt(_ context.Context, id uuid.UUID, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		e.Attempts++
		e.ProcessingError = &lastError
	}
	return nil
}

func (r *memEventRepo) SetMeetingID(_ context.Context, id uuid.UUID, meetingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		e.MeetingID = &meetingID
	}
	return nil
}

func (r *memEventRepo) ListUnprocessed(_ context.Context, limit int) ([]entities.WebhookEvent, error) {
	return nil, nil
}

func (r *memEventRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newWebhookTestHandler() (*WebhookHandler, *memMeetingRepo, *memEventRepo, *entities.Meeting) {
	meetings := &memMeetingRepo{meetings: make(map[uuid.UUID]*entities.Meeting)}
	events := &memEventRepo{events: make(map[uuid.UUID]*entities.WebhookEvent)}

	m := entities.NewMeeting(uuid.New(), "Planning", "https://meet.google.com/abc-defg-hij")
	botID := "b1"
	m.ExternalBotID = &botID
	meetings.meetings[m.ID] = m

	snapshots := cache.NewMemorySnapshotStore(time.Hour)
	processor := webhookproc.NewService(meetings, events, snapshots, nil, zap.NewNop())
	return NewWebhookHandler(processor, testSecret, zap.NewNop()), meetings, events, m
}

func postWebhook(h *WebhookHandler, body, signature string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/recorder", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h.HandleRecorderWebhook(c)
	return rec
}

func TestHandleRecorderWebhook_AcceptsSignedEvent(t *testing.T) {
	h, meetings, events, m := newWebhookTestHandler()

	body := `{"event":"bot.in_lobby","data":{"bot_id":"b1"}}`
	rec := postWebhook(h, body, recordbot.SignPayload(testSecret, []byte(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accepted")
	assert.Equal(t, 1, events.count())

	// handling is detached from the response
	require.Eventually(t, func() bool {
		return meetings.status(m.ID) == entities.MeetingStatusWaitingForAdmission
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleRecorderWebhook_RejectsBadSignature(t *testing.T) {
	h, _, events, _ := newWebhookTestHandler()

	body := `{"event":"bot.in_lobby","data":{"bot_id":"b1"}}`
	rec := postWebhook(h, body, "0000deadbeef")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, events.count())
}

func TestHandleRecorderWebhook_RejectsMissingSignature(t *testing.T) {
	h, _, events, _ := newWebhookTestHandler()

	rec := postWebhook(h, `{"event":"bot.in_lobby","data":{}}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, events.count())
}

func TestHandleRecorderWebhook_RejectsMalformedEnvelope(t *testing.T) {
	h, _, events, _ := newWebhookTestHandler()

	for _, body := range []string{`not json`, `{"data":{"bot_id":"b1"}}`, `{"event":""}`} {
		rec := postWebhook(h, body, recordbot.SignPayload(testSecret, []byte(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Equal(t, 0, events.count())
}

func TestHandleRecorderWebhook_NilDataDefaults(t *testing.T) {
	h, _, events, _ := newWebhookTestHandler()

	body := `{"event":"bot.waved_hello"}`
	rec := postWebhook(h, body, recordbot.SignPayload(testSecret, []byte(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, events.count())
}
