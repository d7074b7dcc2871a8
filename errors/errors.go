package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the application error type carried across layers
type AppError struct {
	Raw      error
	HTTPCode int
	Code     ErrorCode
	Message  string
	Details  map[string]string
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// AsAppError extracts an AppError from an error chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// General errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// Bot lifecycle errors

// ErrInvalidMeetingURL means the URL is not a supported meeting platform.
// Client input problem, never retried and never sent to the provider.
func ErrInvalidMeetingURL(url string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_MEETING_URL,
		Message:  "Meeting URL is not a supported platform",
	}.WithDetail("url", url)
}

// ErrProviderRejected carries the raw provider status and body for
// diagnostics. Bot starts are not idempotent, so this is not auto-retried.
func ErrProviderRejected(status int, body string) AppError {
	return AppError{
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_PROVIDER_REJECTED,
		Message:  "Recording provider rejected the request",
	}.WithDetail("provider_status", fmt.Sprintf("%d", status)).
		WithDetail("provider_body", body)
}

func ErrBotNotFound(botID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_BOT_NOT_FOUND,
		Message:  "Recording bot not found",
	}.WithDetail("bot_id", botID)
}

// Token vault errors

// ErrCredentialExpired means refresh failed and the integration was marked
// inactive. Callers must not retry; the integration needs a fresh OAuth
// grant.
func ErrCredentialExpired(provider string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_CREDENTIAL_EXPIRED,
		Message:  "Integration credentials expired; please reconnect the integration",
	}.WithDetail("provider", provider)
}

// ErrOAuthExchangeFailed means the provider refused the authorization code
// during the connect flow; the operator has to start over.
func ErrOAuthExchangeFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_OAUTH_EXCHANGE_FAILED,
		Message:  "Authorization code exchange failed",
	}
}

func ErrIntegrationNotConnected(provider string) AppError {
	return AppError{
		HTTPCode: http.StatusPreconditionFailed,
		Code:     ErrorCode_INTEGRATION_NOT_CONNECTED,
		Message:  "Integration is not connected",
	}.WithDetail("provider", provider)
}

// Transcript / insight errors

// ErrTranscriptUnavailable is transient: the transcript may appear on the
// next webhook or a later manual re-fetch.
func ErrTranscriptUnavailable(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_TRANSCRIPT_UNAVAILABLE,
		Message:  "Transcript is not ready yet; try again shortly",
	}.WithDetail("meeting_id", meetingID)
}

func ErrAnalysisFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_ANALYSIS_FAILED,
		Message:  "Insight generation failed",
	}
}

// Webhook errors

func ErrEventUnresolvable(eventID string) AppError {
	return AppError{
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_EVENT_UNRESOLVABLE,
		Message:  "Event cannot be correlated to a meeting",
	}.WithDetail("event_id", eventID)
}

// Sync errors

func ErrSyncFailed(itemTitle string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_SYNC_FAILED,
		Message:  "Failed to sync item to tracker",
	}.WithDetail("title", itemTitle)
}

// Infrastructure errors

func ErrDBQueryFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}
}

func ErrExternalAPIFailed(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_EXTERNAL_API_FAILED,
		Message:  fmt.Sprintf("External API call failed: %s", service),
	}
}

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

func ErrCacheFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_CACHE_FAILED,
		Message:  fmt.Sprintf("Cache operation failed: %s", operation),
	}
}
