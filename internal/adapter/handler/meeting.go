package handler

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-recorder/errors"
	"github.com/johnquangdev/meeting-recorder/internal/adapter/dto"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/domain/repositories"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/botctl"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/tracksync"
)

// MeetingHandler exposes the operator endpoints for driving a recording
type MeetingHandler struct {
	meetings          repositories.MeetingRepository
	bots              *botctl.Service
	pipeline          *pipeline.Service
	sync              *tracksync.Service
	defaultProjectKey string
	logger            *zap.Logger
}

// NewMeetingHandler creates a meeting handler
func NewMeetingHandler(
	meetings repositories.MeetingRepository,
	bots *botctl.Service,
	pipelineSvc *pipeline.Service,
	syncSvc *tracksync.Service,
	defaultProjectKey string,
	logger *zap.Logger,
) *MeetingHandler {
	return &MeetingHandler{
		meetings:          meetings,
		bots:              bots,
		pipeline:          pipelineSvc,
		sync:              syncSvc,
		defaultProjectKey: defaultProjectKey,
		logger:            logger,
	}
}

// StartBot dispatches a recording bot to the meeting
func (h *MeetingHandler) StartBot(c echo.Context) error {
	meetingID, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	botID, err := h.bots.Start(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, dto.BotResponse{BotID: botID})
}

// StopBot removes the recording bot from the meeting
func (h *MeetingHandler) StopBot(c echo.Context) error {
	meetingID, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.bots.Stop(c.Request().Context(), meetingID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// BotStatus reports the provider-side state of the meeting's bot
func (h *MeetingHandler) BotStatus(c echo.Context) error {
	meetingID, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	info, err := h.bots.Status(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, dto.BotResponse{BotID: info.ID, Status: info.Status})
}

// RefetchTranscript re-runs the retrieval chain and insight pipeline
func (h *MeetingHandler) RefetchTranscript(c echo.Context) error {
	meetingID, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	artifact, err := h.pipeline.ReFetch(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, dto.TranscriptResponse{
		Provenance: string(artifact.Provenance),
		Partial:    artifact.Partial,
		Length:     len(artifact.Text),
	})
}

// SyncToTracker pushes the meeting's insights into the issue tracker
func (h *MeetingHandler) SyncToTracker(c echo.Context) error {
	meetingID, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.SyncRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	projectKey := req.ProjectKey
	if projectKey == "" {
		projectKey = h.defaultProjectKey
	}
	if projectKey == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("no tracker project configured"))
	}

	meeting, err := h.meetings.FindByID(c.Request().Context(), meetingID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return HandleError(h.logger, c, apperrors.ErrNotFound("meeting"))
		}
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
	}

	result, err := h.sync.SyncToTracker(c.Request().Context(), meeting, projectKey, tracksync.SyncOptions{})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	keys := result.ActionItemKeys
	if keys == nil {
		keys = []string{}
	}
	return HandleSuccess(h.logger, c, dto.SyncResponse{
		SummaryKey:     result.SummaryKey,
		ActionItemKeys: keys,
		FailedItems:    result.FailedItems,
	})
}

// ListTrackerProjects lists the tracker projects the organization can sync
// into
func (h *MeetingHandler) ListTrackerProjects(c echo.Context) error {
	if h.sync == nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("tracker is not configured"))
	}

	orgID, err := uuid.Parse(c.QueryParam("org_id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid organization id"))
	}

	projects, err := h.sync.ListProjects(c.Request().Context(), orgID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	out := make([]dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, dto.ProjectResponse{Key: p.Key, Name: p.Name})
	}
	return HandleSuccess(h.logger, c, out)
}

func (h *MeetingHandler) meetingID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidArgument("invalid meeting id")
	}
	return id, nil
}
