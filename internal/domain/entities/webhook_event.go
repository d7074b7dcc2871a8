package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookEvent is an immutable, append-only record of an inbound provider
// notification. Processing is idempotent: the processed flag is set exactly
// once after successful handling, and a failed attempt leaves it unset so
// the redelivery worker can retry up to MaxAttempts.
type WebhookEvent struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Source    string         `json:"source" gorm:"type:varchar(50);not null;index"`
	EventType string         `json:"event_type" gorm:"type:varchar(100);not null;index"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	MeetingID *uuid.UUID     `json:"meeting_id,omitempty" gorm:"type:uuid;index"`

	Processed       bool    `json:"processed" gorm:"default:false;index"`
	Attempts        int     `json:"attempts" gorm:"default:0"`
	MaxAttempts     int     `json:"max_attempts" gorm:"default:5"`
	ProcessingError *string `json:"processing_error,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for WebhookEvent
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// NewWebhookEvent wraps a raw provider notification
func NewWebhookEvent(source, eventType string, payload []byte) *WebhookEvent {
	return &WebhookEvent{
		ID:          uuid.New(),
		Source:      source,
		EventType:   eventType,
		Payload:     datatypes.JSON(payload),
		MaxAttempts: 5,
	}
}

// Exhausted reports whether the event has used up its redelivery budget
func (e *WebhookEvent) Exhausted() bool {
	return e.Attempts >= e.MaxAttempts
}
