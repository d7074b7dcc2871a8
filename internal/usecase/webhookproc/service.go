package webhookproc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/domain/repositories"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/cache"
)

// PipelineTrigger starts transcript retrieval and insight generation
// detached from webhook handling.
type PipelineTrigger interface {
	TriggerPipeline(meetingID uuid.UUID, botID string, downloadURL string)
}

// Service applies inbound provider events to meeting state. Handling is
// idempotent and tolerates duplicate and out-of-order delivery: status only
// ever moves forward on the lattice, and stale transitions are no-ops.
type Service struct {
	meetings  repositories.MeetingRepository
	events    repositories.WebhookEventRepository
	snapshots cache.SnapshotStore
	pipeline  PipelineTrigger
	logger    *zap.Logger

	locks *keyedMutex
	now   func() time.Time
}

// NewService creates a webhook processing service
func NewService(
	meetings repositories.MeetingRepository,
	events repositories.WebhookEventRepository,
	snapshots cache.SnapshotStore,
	pipeline PipelineTrigger,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetings:  meetings,
		events:    events,
		snapshots: snapshots,
		pipeline:  pipeline,
		logger:    logger,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// Ingest appends an inbound notification to the event log. Processing is a
// separate step so receipt can be acknowledged before any handling runs.
func (s *Service) Ingest(ctx context.Context, source, eventType string, payload []byte) (*entities.WebhookEvent, error) {
	event := entities.NewWebhookEvent(source, eventType, payload)
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ProcessAsync handles an event detached from the caller, with a bounded
// deadline
func (s *Service) ProcessAsync(event *entities.WebhookEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		// the redelivery worker picks up anything that fails here
		_ = s.Process(ctx, event)
	}()
}

// Process handles one event end to end: apply it, then record the outcome on
// the event row. Structurally invalid events are dropped (marked processed)
// so they never loop through redelivery; transient failures leave the event
// unprocessed with an incremented attempt count.
func (s *Service) Process(ctx context.Context, event *entities.WebhookEvent) error {
	if event.Processed {
		return nil
	}

	err := s.Handle(ctx, event)
	if err == nil {
		return s.events.MarkProcessed(ctx, event.ID, nil)
	}

	if errors.Is(err, entities.ErrEventUnresolvable) || errors.Is(err, entities.ErrUnknownEventType) {
		s.logger.Warn("📭 Dropping structurally invalid webhook event",
			zap.String("event_id", event.ID.String()),
			zap.String("event_type", event.EventType),
			zap.Error(err))
		note := err.Error()
		return s.events.MarkProcessed(ctx, event.ID, &note)
	}

	s.logger.Error("Webhook event handling failed",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", event.EventType),
		zap.Int("attempt", event.Attempts+1),
		zap.Error(err))

	if rerr := s.events.RecordAttempt(ctx, event.ID, err.Error()); rerr != nil {
		s.logger.Error("Failed to record event attempt", zap.Error(rerr))
	}
	event.Attempts++

	if event.Exhausted() {
		s.logger.Warn("📭 Webhook event exhausted its attempt budget",
			zap.String("event_id", event.ID.String()),
			zap.Int("attempts", event.Attempts))
		final := fmt.Sprintf("gave up after %d attempts: %v", event.Attempts, err)
		if merr := s.events.MarkProcessed(ctx, event.ID, &final); merr != nil {
			s.logger.Error("Failed to mark exhausted event", zap.Error(merr))
		}
	}

	return err
}

// Handle applies a single event to meeting state without touching the event
// row. Safe to call concurrently for different meetings and to re-invoke for
// the same event.
func (s *Service) Handle(ctx context.Context, event *entities.WebhookEvent) error {
	parsed, err := ParseEvent(event.EventType, event.Payload)
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrEventUnresolvable, err)
	}

	if unknown, ok := parsed.(Unknown); ok {
		return fmt.Errorf("%w: %s", entities.ErrUnknownEventType, unknown.Type)
	}

	botID := parsed.BotID()
	if botID == "" {
		return fmt.Errorf("%w: payload has no bot id", entities.ErrEventUnresolvable)
	}

	meeting, err := s.meetings.FindByBotID(ctx, botID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return fmt.Errorf("%w: no meeting for bot %s", entities.ErrEventUnresolvable, botID)
		}
		return err
	}

	if event.MeetingID == nil {
		if err := s.events.SetMeetingID(ctx, event.ID, meeting.ID); err != nil {
			s.logger.Warn("Failed to correlate event to meeting", zap.Error(err))
		}
	}

	s.locks.Lock(meeting.ID.String())
	defer s.locks.Unlock(meeting.ID.String())

	switch e := parsed.(type) {
	case BotInLobby:
		return s.advance(ctx, meeting, entities.MeetingStatusWaitingForAdmission, nil)

	case BotAdmitted:
		return s.advance(ctx, meeting, entities.MeetingStatusInProgress, s.startTimeFields(meeting))

	case StatusChange:
		return s.applyStatusChange(ctx, meeting, e.Status)

	case TranscriptLive:
		if err := s.snapshots.SetSnapshot(ctx, botID, e.Text); err != nil {
			return fmt.Errorf("failed to store live snapshot: %w", err)
		}
		return nil

	case RecordingCompleted:
		return s.advance(ctx, meeting, entities.MeetingStatusCompleted, s.endTimeFields(meeting))

	case TranscriptReady:
		if s.pipeline != nil {
			s.pipeline.TriggerPipeline(meeting.ID, botID, e.DownloadURL)
		}
		return nil
	}

	return fmt.Errorf("%w: %s", entities.ErrUnknownEventType, event.EventType)
}

func (s *Service) applyStatusChange(ctx context.Context, meeting *entities.Meeting, status string) error {
	switch status {
	case "in_call":
		return s.advance(ctx, meeting, entities.MeetingStatusInProgress, s.startTimeFields(meeting))
	case "done":
		return s.advance(ctx, meeting, entities.MeetingStatusCompleted, s.endTimeFields(meeting))
	case "error":
		return s.advance(ctx, meeting, entities.MeetingStatusFailed, nil)
	default:
		// other provider statuses (joining, in_lobby echoes) carry no transition
		s.logger.Debug("Ignoring status change without transition",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("status", status))
		return nil
	}
}

// advance performs the conditional lattice move. A false result means the
// event was stale or duplicate, which is success, not an error.
func (s *Service) advance(ctx context.Context, meeting *entities.Meeting, target entities.MeetingStatus, extra map[string]interface{}) error {
	if !meeting.CanAdvanceTo(target) {
		s.logger.Debug("Ignoring stale status transition",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("current", string(meeting.Status)),
			zap.String("target", string(target)))
		return nil
	}

	moved, err := s.meetings.AdvanceStatus(ctx, meeting.ID, target, extra)
	if err != nil {
		return err
	}
	if moved {
		s.logger.Info("📌 Meeting status advanced",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("from", string(meeting.Status)),
			zap.String("to", string(target)))
		meeting.Status = target
	}
	return nil
}

func (s *Service) startTimeFields(meeting *entities.Meeting) map[string]interface{} {
	if meeting.StartTime != nil {
		return nil
	}
	return map[string]interface{}{"start_time": s.now().UTC()}
}

func (s *Service) endTimeFields(meeting *entities.Meeting) map[string]interface{} {
	if meeting.EndTime != nil {
		return nil
	}
	return map[string]interface{}{"end_time": s.now().UTC()}
}
