package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/johnquangdev/meeting-recorder/errors"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/domain/repositories"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/insights"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/tracksync"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/transcriptfetch"
	"github.com/johnquangdev/meeting-recorder/pkg/jobcontext"
)

// Service orchestrates the post-recording pipeline: retrieve the transcript,
// derive insights, persist them, then push to the tracker when one is
// connected. It runs detached from webhook handling so the inbound request
// can acknowledge immediately.
type Service struct {
	meetings repositories.MeetingRepository
	fetcher  *transcriptfetch.Service
	insights *insights.Service
	sync     *tracksync.Service
	logger   *zap.Logger

	// defaultProjectKey enables auto-sync after insights; empty disables it
	defaultProjectKey string

	wg sync.WaitGroup
}

// NewService creates the pipeline orchestrator. sync may be nil to disable
// auto-sync entirely.
func NewService(
	meetings repositories.MeetingRepository,
	fetcher *transcriptfetch.Service,
	insightSvc *insights.Service,
	syncSvc *tracksync.Service,
	defaultProjectKey string,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetings:          meetings,
		fetcher:           fetcher,
		insights:          insightSvc,
		sync:              syncSvc,
		defaultProjectKey: defaultProjectKey,
		logger:            logger,
	}
}

// TriggerPipeline launches a detached pipeline run for the meeting
func (s *Service) TriggerPipeline(meetingID uuid.UUID, botID string, downloadURL string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := jobcontext.JobBegin(context.Background(), meetingID, "insight_pipeline", 0)
		defer cancel()

		// JobEnd recovers panics and retries transient failures, e.g. the
		// provider still finishing the transcript when the event lands
		err := jobcontext.JobEnd(ctx, func(ctx context.Context) error {
			_, runErr := s.Run(ctx, meetingID, botID, downloadURL)
			return runErr
		})
		if err != nil {
			s.logger.Error("Insight pipeline failed",
				zap.String("meeting_id", meetingID.String()),
				zap.String("bot_id", botID),
				zap.Error(err))
		}
	}()
}

// ReFetch runs the pipeline synchronously for an operator-requested
// transcript regeneration
func (s *Service) ReFetch(ctx context.Context, meetingID uuid.UUID) (*entities.TranscriptArtifact, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return nil, apperrors.ErrNotFound("meeting")
		}
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if meeting.ExternalBotID == nil || *meeting.ExternalBotID == "" {
		return nil, apperrors.ErrBotNotFound("").WithDetail("meeting_id", meetingID.String())
	}
	return s.run(ctx, meetingID, *meeting.ExternalBotID, "")
}

// Wait blocks until all in-flight pipeline runs finish. Used on shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Run executes one pipeline pass synchronously. Providers redeliver
// transcript.ready, so a meeting whose transcript already has insights is
// left untouched; the transcript is immutable once analyzed and
// regeneration goes through ReFetch.
func (s *Service) Run(ctx context.Context, meetingID uuid.UUID, botID string, downloadURL string) (*entities.TranscriptArtifact, error) {
	// a partial live-stream transcript may still be upgraded by a later
	// delivery; only a final analyzed transcript blocks the re-run
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err == nil && meeting.Transcript != nil && !meeting.TranscriptPartial && meeting.HasInsights() {
		s.logger.Info("📌 Insights already derived, skipping redelivered pipeline run",
			zap.String("meeting_id", meetingID.String()),
			zap.String("bot_id", botID))
		return storedArtifact(meeting), nil
	}
	return s.run(ctx, meetingID, botID, downloadURL)
}

// run is the unguarded pass used by ReFetch to regenerate explicitly. The
// transcript is persisted by the fetcher before analysis, so an insight
// failure never loses it.
func (s *Service) run(ctx context.Context, meetingID uuid.UUID, botID string, downloadURL string) (*entities.TranscriptArtifact, error) {
	artifact, err := s.fetcher.Fetch(ctx, meetingID, botID, downloadURL)
	if err != nil {
		return nil, err
	}

	bundle := s.insights.Analyze(ctx, artifact.Text)

	if err := s.persistInsights(ctx, meetingID, bundle); err != nil {
		return nil, err
	}

	s.logger.Info("✨ Insights persisted",
		zap.String("meeting_id", meetingID.String()),
		zap.String("sentiment", string(bundle.Sentiment)),
		zap.Int("action_items", len(bundle.ActionItems)))

	s.autoSync(ctx, meetingID, artifact)
	return artifact, nil
}

func (s *Service) persistInsights(ctx context.Context, meetingID uuid.UUID, bundle *entities.InsightBundle) error {
	fields := map[string]interface{}{
		"summary":      bundle.Summary,
		"action_items": mustJSON(bundle.ActionItems),
		"key_topics":   mustJSON(bundle.KeyTopics),
		"decisions":    mustJSON(bundle.Decisions),
		"takeaways":    mustJSON(bundle.Takeaways),
		"sentiment":    string(bundle.Sentiment),
	}
	return s.meetings.UpdateFields(ctx, meetingID, fields)
}

// autoSync is best-effort: a tracker problem must not fail the pipeline
func (s *Service) autoSync(ctx context.Context, meetingID uuid.UUID, artifact *entities.TranscriptArtifact) {
	if s.sync == nil || s.defaultProjectKey == "" || !artifact.Final() {
		return
	}

	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		s.logger.Warn("Auto-sync skipped, meeting reload failed", zap.Error(err))
		return
	}

	if _, err := s.sync.SyncToTracker(ctx, meeting, s.defaultProjectKey, tracksync.SyncOptions{}); err != nil {
		s.logger.Warn("Auto-sync to tracker failed",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err))
	}
}

// storedArtifact reconstructs the artifact a previous pass persisted
func storedArtifact(meeting *entities.Meeting) *entities.TranscriptArtifact {
	artifact := &entities.TranscriptArtifact{
		Text:    *meeting.Transcript,
		Partial: meeting.TranscriptPartial,
	}
	if meeting.TranscriptProvenance != nil {
		artifact.Provenance = entities.TranscriptProvenance(*meeting.TranscriptProvenance)
	}
	return artifact
}

func mustJSON(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}
