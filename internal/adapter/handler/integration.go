package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-recorder/errors"
	"github.com/johnquangdev/meeting-recorder/internal/adapter/dto"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/connect"
)

// IntegrationHandler exposes the OAuth connect flow for the issue tracker
type IntegrationHandler struct {
	connect *connect.Service
	logger  *zap.Logger
}

// NewIntegrationHandler creates an integration handler
func NewIntegrationHandler(connectSvc *connect.Service, logger *zap.Logger) *IntegrationHandler {
	return &IntegrationHandler{connect: connectSvc, logger: logger}
}

// Connect starts the flow and returns the authorization URL for the
// organization to visit
func (h *IntegrationHandler) Connect(c echo.Context) error {
	orgID, err := uuid.Parse(c.QueryParam("org_id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid organization id"))
	}

	authURL, err := h.connect.Begin(orgID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, dto.ConnectResponse{AuthURL: authURL})
}

// Callback completes the flow with the code the provider redirected back
// with. Unauthenticated; the one-time state token carries the attribution.
func (h *IntegrationHandler) Callback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("missing state or code"))
	}

	if err := h.connect.Complete(c.Request().Context(), state, code); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]string{"status": "connected"})
}
