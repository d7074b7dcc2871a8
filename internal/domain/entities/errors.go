package entities

import "errors"

// Domain errors
var (
	// Meeting errors
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrMeetingNoBot      = errors.New("meeting has no recording bot")
	ErrInvalidMeetingURL = errors.New("meeting url is not a supported platform")

	// Webhook errors
	ErrEventNotFound        = errors.New("webhook event not found")
	ErrEventUnresolvable    = errors.New("event cannot be correlated to a meeting")
	ErrEventAlreadyHandled  = errors.New("webhook event already processed")
	ErrUnknownEventType     = errors.New("unknown webhook event type")
	ErrStaleEventTransition = errors.New("event transition is stale for current status")

	// Token vault errors
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrCredentialExpired   = errors.New("credential expired and refresh failed; reconnect the integration")

	// Transcript errors
	ErrTranscriptUnavailable = errors.New("transcript not available yet")

	// Generic errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
)
