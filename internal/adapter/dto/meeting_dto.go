package dto

// SyncRequest selects the tracker project a meeting syncs into. An empty
// project key falls back to the configured default.
type SyncRequest struct {
	ProjectKey string `json:"project_key" validate:"omitempty,max=50"`
}

// BotResponse reports the bot attached to a meeting
type BotResponse struct {
	BotID  string `json:"bot_id"`
	Status string `json:"status,omitempty"`
}

// TranscriptResponse reports a re-fetch outcome
type TranscriptResponse struct {
	Provenance string `json:"provenance"`
	Partial    bool   `json:"partial"`
	Length     int    `json:"length"`
}

// ProjectResponse is one tracker project an organization can sync into
type ProjectResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ConnectResponse carries the authorization URL that starts an OAuth
// connect flow
type ConnectResponse struct {
	AuthURL string `json:"auth_url"`
}

// SyncResponse reports what a sync call pushed
type SyncResponse struct {
	SummaryKey     string   `json:"summary_key,omitempty"`
	ActionItemKeys []string `json:"action_item_keys"`
	FailedItems    []string `json:"failed_items,omitempty"`
}
