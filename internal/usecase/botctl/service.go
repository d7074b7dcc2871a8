package botctl

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-recorder/errors"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/domain/repositories"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/recordbot"
	"github.com/johnquangdev/meeting-recorder/pkg/validator"
)

// Service drives the recording bot through its lifecycle against the
// provider. Starting a bot is a single attempt with no automatic retry: a
// start visibly joins the meeting, so it is not idempotent.
type Service struct {
	meetings repositories.MeetingRepository
	provider recordbot.Client
	logger   *zap.Logger
}

// NewService creates a bot lifecycle service
func NewService(meetings repositories.MeetingRepository, provider recordbot.Client, logger *zap.Logger) *Service {
	return &Service{
		meetings: meetings,
		provider: provider,
		logger:   logger,
	}
}

// Start validates the meeting URL and dispatches a bot, persisting the
// provider's bot ID on the meeting. A meeting that already has a bot returns
// the existing ID.
func (s *Service) Start(ctx context.Context, meetingID uuid.UUID) (string, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return "", apperrors.ErrNotFound("meeting")
		}
		return "", apperrors.ErrDBQueryFailed(err)
	}

	if !validator.IsMeetingURL(meeting.MeetingURL) {
		return "", apperrors.ErrInvalidMeetingURL(meeting.MeetingURL)
	}

	if meeting.ExternalBotID != nil && *meeting.ExternalBotID != "" {
		return *meeting.ExternalBotID, nil
	}

	botID, err := s.provider.StartBot(ctx, meeting.MeetingURL)
	if err != nil {
		var perr *recordbot.ProviderError
		if errors.As(err, &perr) {
			return "", apperrors.ErrProviderRejected(perr.StatusCode, perr.Body)
		}
		return "", apperrors.ErrExternalAPIFailed("recorder", err)
	}

	if err := s.meetings.UpdateFields(ctx, meeting.ID, map[string]interface{}{"external_bot_id": botID}); err != nil {
		return "", apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("🤖 Recording bot dispatched",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("bot_id", botID))

	return botID, nil
}

// Stop removes the bot from the meeting. Fire-and-forget beyond the
// provider's acknowledgment.
func (s *Service) Stop(ctx context.Context, meetingID uuid.UUID) error {
	botID, err := s.botIDFor(ctx, meetingID)
	if err != nil {
		return err
	}

	if err := s.provider.StopBot(ctx, botID); err != nil {
		var perr *recordbot.ProviderError
		if errors.As(err, &perr) {
			if perr.StatusCode == http.StatusNotFound {
				return apperrors.ErrBotNotFound(botID)
			}
			return apperrors.ErrProviderRejected(perr.StatusCode, perr.Body)
		}
		return apperrors.ErrExternalAPIFailed("recorder", err)
	}

	s.logger.Info("🛑 Recording bot stopped",
		zap.String("meeting_id", meetingID.String()),
		zap.String("bot_id", botID))

	return nil
}

// Status fetches the provider-side state of the meeting's bot
func (s *Service) Status(ctx context.Context, meetingID uuid.UUID) (*recordbot.BotInfo, error) {
	botID, err := s.botIDFor(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	info, err := s.provider.GetBot(ctx, botID)
	if err != nil {
		var perr *recordbot.ProviderError
		if errors.As(err, &perr) {
			if perr.StatusCode == http.StatusNotFound {
				return nil, apperrors.ErrBotNotFound(botID)
			}
			return nil, apperrors.ErrProviderRejected(perr.StatusCode, perr.Body)
		}
		return nil, apperrors.ErrExternalAPIFailed("recorder", err)
	}
	return info, nil
}

func (s *Service) botIDFor(ctx context.Context, meetingID uuid.UUID) (string, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return "", apperrors.ErrNotFound("meeting")
		}
		return "", apperrors.ErrDBQueryFailed(err)
	}
	if meeting.ExternalBotID == nil || *meeting.ExternalBotID == "" {
		return "", apperrors.ErrBotNotFound("").WithDetail("meeting_id", meetingID.String())
	}
	return *meeting.ExternalBotID, nil
}
