package errors

// ErrorCode identifies an application error category
type ErrorCode int

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_PERMISSION_DENIED
	ErrorCode_UNAUTHENTICATED

	// Bot lifecycle
	ErrorCode_INVALID_MEETING_URL
	ErrorCode_PROVIDER_REJECTED
	ErrorCode_BOT_NOT_FOUND

	// Token vault
	ErrorCode_CREDENTIAL_EXPIRED
	ErrorCode_INTEGRATION_NOT_CONNECTED
	ErrorCode_OAUTH_EXCHANGE_FAILED

	// Transcript / insights
	ErrorCode_TRANSCRIPT_UNAVAILABLE
	ErrorCode_ANALYSIS_FAILED

	// Webhooks
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_EVENT_UNRESOLVABLE

	// Sync
	ErrorCode_SYNC_FAILED

	// Infrastructure
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_EXTERNAL_API_FAILED
	ErrorCode_STORAGE_FAILED
	ErrorCode_CACHE_FAILED
)

var codeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                   "UNKNOWN",
	ErrorCode_INTERNAL:                  "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:          "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                 "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:            "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:         "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:           "UNAUTHENTICATED",
	ErrorCode_INVALID_MEETING_URL:       "INVALID_MEETING_URL",
	ErrorCode_PROVIDER_REJECTED:         "PROVIDER_REJECTED",
	ErrorCode_BOT_NOT_FOUND:             "BOT_NOT_FOUND",
	ErrorCode_CREDENTIAL_EXPIRED:        "CREDENTIAL_EXPIRED",
	ErrorCode_INTEGRATION_NOT_CONNECTED: "INTEGRATION_NOT_CONNECTED",
	ErrorCode_OAUTH_EXCHANGE_FAILED:     "OAUTH_EXCHANGE_FAILED",
	ErrorCode_TRANSCRIPT_UNAVAILABLE:    "TRANSCRIPT_UNAVAILABLE",
	ErrorCode_ANALYSIS_FAILED:           "ANALYSIS_FAILED",
	ErrorCode_INVALID_PAYLOAD:           "INVALID_PAYLOAD",
	ErrorCode_EVENT_UNRESOLVABLE:        "EVENT_UNRESOLVABLE",
	ErrorCode_SYNC_FAILED:               "SYNC_FAILED",
	ErrorCode_DB_QUERY_FAILED:           "DB_QUERY_FAILED",
	ErrorCode_EXTERNAL_API_FAILED:       "EXTERNAL_API_FAILED",
	ErrorCode_STORAGE_FAILED:            "STORAGE_FAILED",
	ErrorCode_CACHE_FAILED:              "CACHE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
