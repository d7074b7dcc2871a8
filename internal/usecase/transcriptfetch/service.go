package transcriptfetch

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-recorder/errors"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/domain/repositories"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/recordbot"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/storage"
)

// Service retrieves the transcript for a finished (or still running)
// recording through an ordered strategy chain: shortcut download, then
// recording-id lookup, then the live snapshot as a partial fallback.
type Service struct {
	meetings  repositories.MeetingRepository
	provider  recordbot.Client
	snapshots cache.SnapshotStore
	archive   storage.ArtifactStore
	logger    *zap.Logger
}

// NewService creates a transcript retrieval service. archive may be nil;
// archiving is best-effort diagnostics, never a retrieval dependency.
func NewService(
	meetings repositories.MeetingRepository,
	provider recordbot.Client,
	snapshots cache.SnapshotStore,
	archive storage.ArtifactStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetings:  meetings,
		provider:  provider,
		snapshots: snapshots,
		archive:   archive,
		logger:    logger,
	}
}

// Fetch walks the strategy chain and persists the first artifact it finds so
// a later insight failure cannot lose the transcript. downloadURL may carry
// the shortcut URL from a transcript.ready event; when empty the bot's
// recordings are inspected for one.
func (s *Service) Fetch(ctx context.Context, meetingID uuid.UUID, botID string, downloadURL string) (*entities.TranscriptArtifact, error) {
	artifact := s.retrieve(ctx, botID, downloadURL)
	if artifact == nil {
		return nil, apperrors.ErrTranscriptUnavailable(meetingID.String())
	}

	s.logger.Info("📝 Transcript retrieved",
		zap.String("meeting_id", meetingID.String()),
		zap.String("bot_id", botID),
		zap.String("provenance", string(artifact.Provenance)),
		zap.Bool("partial", artifact.Partial))

	fields := map[string]interface{}{
		"transcript":            artifact.Text,
		"transcript_provenance": string(artifact.Provenance),
		"transcript_partial":    artifact.Partial,
	}
	if err := s.meetings.UpdateFields(ctx, meetingID, fields); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	s.archiveRaw(ctx, meetingID, artifact)

	return artifact, nil
}

// retrieve tries each strategy in fixed order and returns the first hit
func (s *Service) retrieve(ctx context.Context, botID string, downloadURL string) *entities.TranscriptArtifact {
	if artifact := s.fromShortcut(ctx, botID, downloadURL); artifact != nil {
		return artifact
	}
	if artifact := s.fromRecordingLookup(ctx, botID); artifact != nil {
		return artifact
	}
	return s.fromLiveSnapshot(ctx, botID)
}

func (s *Service) fromShortcut(ctx context.Context, botID string, downloadURL string) *entities.TranscriptArtifact {
	url := downloadURL
	if url == "" {
		info, err := s.provider.GetBot(ctx, botID)
		if err != nil {
			s.logger.Debug("Shortcut inspection failed", zap.String("bot_id", botID), zap.Error(err))
			return nil
		}
		for _, rec := range info.Recordings {
			if rec.Shortcut != nil && rec.Shortcut.Status == "done" && rec.Shortcut.DownloadURL != "" {
				url = rec.Shortcut.DownloadURL
				break
			}
		}
	}
	if url == "" {
		return nil
	}

	var raw []byte
	err := s.withRetry(ctx, func() error {
		var derr error
		raw, derr = s.provider.Download(ctx, url)
		return derr
	})
	if err != nil {
		s.logger.Debug("Shortcut download failed", zap.String("bot_id", botID), zap.Error(err))
		return nil
	}

	text := ParseTranscriptPayload(raw)
	if text == "" {
		return nil
	}
	return &entities.TranscriptArtifact{
		Text:       text,
		Provenance: entities.ProvenanceDownloadedShortcut,
		Raw:        raw,
	}
}

func (s *Service) fromRecordingLookup(ctx context.Context, botID string) *entities.TranscriptArtifact {
	var raw []byte
	err := s.withRetry(ctx, func() error {
		var gerr error
		raw, gerr = s.provider.GetTranscript(ctx, botID)
		return gerr
	})
	if err != nil {
		s.logger.Debug("Recording-id lookup failed", zap.String("bot_id", botID), zap.Error(err))
		return nil
	}

	text := ParseTranscriptPayload(raw)
	if text == "" {
		return nil
	}
	return &entities.TranscriptArtifact{
		Text:       text,
		Provenance: entities.ProvenanceRecordingIDLookup,
		Raw:        raw,
	}
}

func (s *Service) fromLiveSnapshot(ctx context.Context, botID string) *entities.TranscriptArtifact {
	text, ok, err := s.snapshots.GetSnapshot(ctx, botID)
	if err != nil {
		s.logger.Debug("Live snapshot read failed", zap.String("bot_id", botID), zap.Error(err))
		return nil
	}
	if !ok || text == "" {
		return nil
	}
	return &entities.TranscriptArtifact{
		Text:       text,
		Provenance: entities.ProvenanceLiveStream,
		Partial:    true,
	}
}

func (s *Service) archiveRaw(ctx context.Context, meetingID uuid.UUID, artifact *entities.TranscriptArtifact) {
	if s.archive == nil {
		return
	}
	raw := artifact.Raw
	if raw == nil {
		raw = []byte(artifact.Text)
	}
	key, err := s.archive.ArchiveTranscript(ctx, meetingID.String(), string(artifact.Provenance), raw)
	if err != nil {
		s.logger.Warn("Transcript archive failed",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err))
		return
	}
	s.logger.Debug("Transcript archived", zap.String("object_key", key))
}

// withRetry wraps an idempotent provider read with bounded backoff
func (s *Service) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 15 * time.Second
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx))
}
