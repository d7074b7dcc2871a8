package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/johnquangdev/meeting-recorder/errors"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/recordbot"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/insights"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/transcriptfetch"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/webhookproc"
)

type fakeMeetingRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting

	// transcriptWrites counts UpdateFields calls touching the transcript
	transcriptWrites int
}

func newFakeMeetingRepo(meetings ...*entities.Meeting) *fakeMeetingRepo {
	r := &fakeMeetingRepo{meetings: make(map[uuid.UUID]*entities.Meeting)}
	for _, m := range meetings {
		r.meetings[m.ID] = m
	}
	return r
}

func (r *fakeMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	copy := *m
	return &copy, nil
}

func (r *fakeMeetingRepo) FindByBotID(_ context.Context, botID string) (*entities.Meeting, error) {
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

func (r *fakeMeetingRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return entities.ErrMeetingNotFound
	}
	if _, ok := fields["transcript"]; ok {
		r.transcriptWrites++
	}
	applyFields(m, fields)
	return nil
}

func (r *fakeMeetingRepo) transcriptWriteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcriptWrites
}

func (r *fakeMeetingRepo) AdvanceStatus(_ context.Context, id uuid.UUID, target entities.MeetingStatus, extra map[string]interface{}) (bool, error) {
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
	applyFields(m, extra)
	return true, nil
}

func (r *fakeMeetingRepo) snapshot(id uuid.UUID) entities.Meeting {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.meetings[id]
}

func applyFields(m *entities.Meeting, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "start_time":
			t := v.(time.Time)
			m.StartTime = &t
		case "end_time":
			t := v.(time.Time)
			m.EndTime = &t
		case "external_bot_id":
			s := v.(string)
			m.ExternalBotID = &s
		case "transcript":
			s := v.(string)
			m.Transcript = &s
		case "transcript_provenance":
			s := v.(string)
			m.TranscriptProvenance = &s
		case "transcript_partial":
			m.TranscriptPartial = v.(bool)
		case "summary":
			s := v.(string)
			m.Summary = &s
		case "action_items":
			m.ActionItems = v.(datatypes.JSON)
		case "key_topics":
			m.KeyTopics = v.(datatypes.JSON)
		case "decisions":
			m.Decisions = v.(datatypes.JSON)
		case "takeaways":
			m.Takeaways = v.(datatypes.JSON)
		case "sentiment":
			s := entities.Sentiment(v.(string))
			m.Sentiment = &s
		}
	}
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*entities.WebhookEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*entities.WebhookEvent)}
}

func (r *fakeEventRepo) Create(_ context.Context, e *entities.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = e
	return nil
}

func (r *fakeEventRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, entities.ErrEventNotFound
	}
	return e, nil
}

func (r *fakeEventRepo) MarkProcessed(_ context.Context, id uuid.UUID, processingError *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return entities.ErrEventNotFound
	}
	e.Processed = true
	e.ProcessingError = processingError
	return nil
}

func (r *fakeEventRepo) RecordAttempt(_ context.Context, id uuid.UUID, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return entities.ErrEventNotFound
	}
	e.Attempts++
	e.ProcessingError = &lastError
	return nil
}

func (r *fakeEventRepo) SetMeetingID(_ context.Context, id uuid.UUID, meetingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return entities.ErrEventNotFound
	}
	e.MeetingID = &meetingID
	return nil
}

func (r *fakeEventRepo) ListUnprocessed(_ context.Context, limit int) ([]entities.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.WebhookEvent
	for _, e := range r.events {
		if !e.Processed && !e.Exhausted() && len(out) < limit {
			out = append(out, *e)
		}
	}
	return out, nil
}

// testHarness wires the sandbox provider through the same webhook machinery
// production uses, so a full recording cycle runs in-process.
type testHarness struct {
	meetings  *fakeMeetingRepo
	events    *fakeEventRepo
	sandbox   *recordbot.Sandbox
	pipe      *Service
	processor *webhookproc.Service
}

func newTestHarness(t *testing.T, meetings ...*entities.Meeting) *testHarness {
	t.Helper()
	logger := zap.NewNop()
	repo := newFakeMeetingRepo(meetings...)
	events := newFakeEventRepo()
	snapshots := cache.NewMemorySnapshotStore(time.Minute)

	var processor *webhookproc.Service
	sandbox := recordbot.NewSandbox(func(event string, data map[string]interface{}) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		ev, err := processor.Ingest(context.Background(), "sandbox", event, payload)
		if err != nil {
			return
		}
		// synchronous handling keeps the test deterministic
		_ = processor.Process(context.Background(), ev)
	}, recordbot.WithDelays(5*time.Millisecond, 5*time.Millisecond, 10*time.Millisecond))

	fetcher := transcriptfetch.NewService(repo, sandbox, snapshots, nil, logger)
	insightSvc := insights.NewService(nil, logger)
	pipe := NewService(repo, fetcher, insightSvc, nil, "", logger)
	processor = webhookproc.NewService(repo, events, snapshots, pipe, logger)

	return &testHarness{meetings: repo, events: events, sandbox: sandbox, pipe: pipe, processor: processor}
}

// deliver pushes one webhook event through ingest and synchronous handling
func (h *testHarness) deliver(t *testing.T, event string, data map[string]interface{}) *entities.WebhookEvent {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	ev, err := h.processor.Ingest(context.Background(), "sandbox", event, payload)
	require.NoError(t, err)
	require.NoError(t, h.processor.Process(context.Background(), ev))
	return ev
}

func (h *testHarness) dispatchBot(t *testing.T, meeting *entities.Meeting) string {
	t.Helper()
	botID, err := h.sandbox.StartBot(context.Background(), meeting.MeetingURL)
	require.NoError(t, err)
	require.NoError(t, h.meetings.UpdateFields(context.Background(), meeting.ID,
		map[string]interface{}{"external_bot_id": botID}))
	return botID
}

func decodeItems(t *testing.T, raw datatypes.JSON) []string {
	t.Helper()
	var items []string
	require.NoError(t, json.Unmarshal(raw, &items))
	return items
}

func TestFullRecordingCycle_SandboxToInsights(t *testing.T) {
	meeting := entities.NewMeeting(uuid.New(), "Roadmap Review", "https://meet.google.com/abc-defg-hij")
	h := newTestHarness(t, meeting)

	h.dispatchBot(t, meeting)

	require.Eventually(t, func() bool {
		m := h.meetings.snapshot(meeting.ID)
		return m.Status == entities.MeetingStatusCompleted && m.HasInsights()
	}, 5*time.Second, 10*time.Millisecond, "meeting never reached completed with insights")
	h.pipe.Wait()

	m := h.meetings.snapshot(meeting.ID)
	require.NotNil(t, m.Transcript)
	assert.Contains(t, *m.Transcript, "ship on Friday")
	require.NotNil(t, m.TranscriptProvenance)
	assert.Equal(t, string(entities.ProvenanceRecordingIDLookup), *m.TranscriptProvenance)
	assert.False(t, m.TranscriptPartial)
	assert.NotNil(t, m.StartTime)
	assert.NotNil(t, m.EndTime)

	require.NotNil(t, m.Summary)
	assert.NotEmpty(t, *m.Summary)

	actions := decodeItems(t, m.ActionItems)
	require.NotEmpty(t, actions)
	found := false
	for _, a := range actions {
		if strings.Contains(strings.ToLower(a), "ship") {
			found = true
		}
	}
	assert.True(t, found, "expected a ship-related action item, got %v", actions)

	require.NotNil(t, m.Sentiment)
	assert.Contains(t, []entities.Sentiment{entities.SentimentPositive, entities.SentimentNeutral}, *m.Sentiment)
}

func TestFullRecordingCycle_AllEventsResolved(t *testing.T) {
	meeting := entities.NewMeeting(uuid.New(), "Standup", "https://zoom.us/j/123456")
	h := newTestHarness(t, meeting)

	h.dispatchBot(t, meeting)

	require.Eventually(t, func() bool {
		return h.meetings.snapshot(meeting.ID).Status == entities.MeetingStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
	h.pipe.Wait()

	h.events.mu.Lock()
	defer h.events.mu.Unlock()
	require.Len(t, h.events.events, 4)
	for _, e := range h.events.events {
		assert.True(t, e.Processed, "event %s left unprocessed", e.EventType)
		assert.Nil(t, e.ProcessingError)
		require.NotNil(t, e.MeetingID, "event %s never correlated", e.EventType)
		assert.Equal(t, meeting.ID, *e.MeetingID)
	}
}

func TestRedeliveredTranscriptReady_DoesNotRerunPipeline(t *testing.T) {
	meeting := entities.NewMeeting(uuid.New(), "Roadmap Review", "https://meet.google.com/abc-defg-hij")
	h := newTestHarness(t, meeting)

	botID := h.dispatchBot(t, meeting)

	require.Eventually(t, func() bool {
		m := h.meetings.snapshot(meeting.ID)
		return m.Status == entities.MeetingStatusCompleted && m.HasInsights()
	}, 5*time.Second, 10*time.Millisecond)
	h.pipe.Wait()

	require.Equal(t, 1, h.meetings.transcriptWriteCount())
	before := h.meetings.snapshot(meeting.ID)

	// providers redeliver transcript.ready as a fresh event row
	ev := h.deliver(t, "transcript.ready", map[string]interface{}{"bot_id": botID, "status": "done"})
	h.pipe.Wait()

	assert.True(t, ev.Processed)
	assert.Nil(t, ev.ProcessingError)
	assert.Equal(t, 1, h.meetings.transcriptWriteCount(), "redelivery must not refetch the transcript")

	after := h.meetings.snapshot(meeting.ID)
	assert.Equal(t, *before.Transcript, *after.Transcript)
	assert.Equal(t, *before.Summary, *after.Summary)
	assert.Equal(t, before.ActionItems, after.ActionItems)
	assert.Equal(t, *before.Sentiment, *after.Sentiment)

	// the explicit operator path still regenerates
	_, err := h.pipe.ReFetch(context.Background(), meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, h.meetings.transcriptWriteCount())
}

func TestReFetch_RegeneratesInsights(t *testing.T) {
	meeting := entities.NewMeeting(uuid.New(), "Retro", "https://teams.microsoft.com/l/meetup-join/xyz")
	h := newTestHarness(t, meeting)

	h.dispatchBot(t, meeting)
	require.Eventually(t, func() bool {
		m := h.meetings.snapshot(meeting.ID)
		return m.HasInsights()
	}, 5*time.Second, 10*time.Millisecond)
	h.pipe.Wait()

	artifact, err := h.pipe.ReFetch(context.Background(), meeting.ID)
	require.NoError(t, err)
	assert.Contains(t, artifact.Text, "ship on Friday")
	assert.True(t, artifact.Final())

	m := h.meetings.snapshot(meeting.ID)
	require.NotNil(t, m.Summary)
	assert.NotEmpty(t, *m.Summary)
}

func TestReFetch_MeetingWithoutBot(t *testing.T) {
	meeting := entities.NewMeeting(uuid.New(), "Planning", "https://meet.google.com/xyz-abcd-efg")
	h := newTestHarness(t, meeting)

	_, err := h.pipe.ReFetch(context.Background(), meeting.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_BOT_NOT_FOUND, appErr.Code)
}

func TestReFetch_UnknownMeeting(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.pipe.ReFetch(context.Background(), uuid.New())
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_NOT_FOUND, appErr.Code)
}

func TestRun_TranscriptUnavailable(t *testing.T) {
	meeting := entities.NewMeeting(uuid.New(), "Kickoff", "https://zoom.us/j/999")
	h := newTestHarness(t, meeting)

	// bot never dispatched through the sandbox, so every strategy misses
	_, err := h.pipe.Run(context.Background(), meeting.ID, "bot-unknown", "")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_TRANSCRIPT_UNAVAILABLE, appErr.Code)

	m := h.meetings.snapshot(meeting.ID)
	assert.Nil(t, m.Transcript)
	assert.Nil(t, m.Summary)
}
