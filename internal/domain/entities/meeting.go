package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingStatusScheduled           MeetingStatus = "scheduled"
	MeetingStatusWaitingForAdmission MeetingStatus = "waiting_for_admission"
	MeetingStatusInProgress          MeetingStatus = "in_progress"
	MeetingStatusCompleted           MeetingStatus = "completed"
	MeetingStatusFailed              MeetingStatus = "failed"
)

// statusRank orders the forward-only lifecycle states. Failed is not ranked:
// it absorbs from any non-terminal state instead of participating in the
// forward ordering.
var statusRank = map[MeetingStatus]int{
	MeetingStatusScheduled:           0,
	MeetingStatusWaitingForAdmission: 1,
	MeetingStatusInProgress:          2,
	MeetingStatusCompleted:           3,
}

// Rank returns the position of a status in the forward lattice, or -1 for
// statuses outside it (failed).
func (s MeetingStatus) Rank() int {
	rank, ok := statusRank[s]
	if !ok {
		return -1
	}
	return rank
}

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusFailed
}

// Sentiment is the overall tone of a meeting derived from its transcript
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Meeting is the aggregate root for a recorded meeting. It is created when a
// user schedules or starts a meeting and mutated only by the webhook
// processor, the bot controller and the insight pipeline. Meetings are never
// deleted; failure is expressed as a status transition.
type Meeting struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizationID uuid.UUID     `json:"organization_id" gorm:"type:uuid;not null;index"`
	Title          string        `json:"title" gorm:"type:varchar(255);not null"`
	MeetingURL     string        `json:"meeting_url" gorm:"type:text;not null"`
	Status         MeetingStatus `json:"status" gorm:"type:varchar(30);not null;default:'scheduled';index"`
	ExternalBotID  *string       `json:"external_bot_id,omitempty" gorm:"type:varchar(255);index"`
	StartTime      *time.Time    `json:"start_time,omitempty"`
	EndTime        *time.Time    `json:"end_time,omitempty"`

	// Transcript is set at most once per recording cycle and treated as
	// immutable once insights have been derived from it. Regeneration goes
	// through an explicit re-fetch.
	Transcript           *string `json:"transcript,omitempty" gorm:"type:text"`
	TranscriptProvenance *string `json:"transcript_provenance,omitempty" gorm:"type:varchar(40)"`
	TranscriptPartial    bool    `json:"transcript_partial" gorm:"default:false"`

	// Structured insight fields, nil until the pipeline has run.
	Summary     *string        `json:"summary,omitempty" gorm:"type:text"`
	ActionItems datatypes.JSON `json:"action_items,omitempty" gorm:"type:jsonb"`
	KeyTopics   datatypes.JSON `json:"key_topics,omitempty" gorm:"type:jsonb"`
	Decisions   datatypes.JSON `json:"decisions,omitempty" gorm:"type:jsonb"`
	Takeaways   datatypes.JSON `json:"takeaways,omitempty" gorm:"type:jsonb"`
	Sentiment   *Sentiment     `json:"sentiment,omitempty" gorm:"type:varchar(20)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a meeting in the scheduled state
func NewMeeting(orgID uuid.UUID, title, meetingURL string) *Meeting {
	return &Meeting{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Title:          title,
		MeetingURL:     meetingURL,
		Status:         MeetingStatusScheduled,
	}
}

// CanAdvanceTo reports whether moving to target is a forward move on the
// status lattice. Stale events whose declared transition would regress the
// status must be ignored, not applied.
func (m *Meeting) CanAdvanceTo(target MeetingStatus) bool {
	if m.Status == MeetingStatusFailed {
		return false
	}
	if target == MeetingStatusFailed {
		return !m.Status.IsTerminal()
	}
	return target.Rank() > m.Status.Rank()
}

// HasInsights reports whether the insight pipeline has already produced a
// summary for the current transcript.
func (m *Meeting) HasInsights() bool {
	return m.Summary != nil && *m.Summary != ""
}
