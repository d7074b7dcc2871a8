package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-recorder/pkg/jwt"
)

// RegisterRoutes wires the HTTP surface. The webhook intake is
// signature-verified but unauthenticated; the operator endpoints require a
// bearer token.
func RegisterRoutes(e *echo.Echo, webhook *WebhookHandler, meetings *MeetingHandler, integrations *IntegrationHandler, verifier *jwt.Verifier) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/v1")
	v1.POST("/webhooks/recorder", webhook.HandleRecorderWebhook)

	protected := v1.Group("/meetings", middleware.EchoAuth(verifier))
	protected.POST("/:id/bot", meetings.StartBot)
	protected.GET("/:id/bot", meetings.BotStatus)
	protected.DELETE("/:id/bot", meetings.StopBot)
	protected.POST("/:id/transcript/refetch", meetings.RefetchTranscript)
	protected.POST("/:id/sync", meetings.SyncToTracker)

	v1.GET("/tracker/projects", meetings.ListTrackerProjects, middleware.EchoAuth(verifier))

	// integrations are optional; the group exists only when a tracker OAuth
	// app is configured
	if integrations != nil {
		v1.GET("/integrations/tracker/connect", integrations.Connect, middleware.EchoAuth(verifier))
		v1.GET("/integrations/tracker/callback", integrations.Callback)
	}
}
