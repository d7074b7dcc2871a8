package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// WebhookEventRepository defines the interface for the append-only webhook
// event log.
type WebhookEventRepository interface {
	// Create appends a new inbound event
	Create(ctx context.Context, event *entities.WebhookEvent) error

	// FindByID retrieves an event by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.WebhookEvent, error)

	// MarkProcessed sets the processed flag exactly once, recording the
	// final outcome. processingError is nil for clean handling.
	MarkProcessed(ctx context.Context, id uuid.UUID, processingError *string) error

	// RecordAttempt increments the attempt counter after a failed handling
	// so the redelivery worker can cap retries.
	RecordAttempt(ctx context.Context, id uuid.UUID, lastError string) error

	// SetMeetingID stores the resolved meeting correlation
	SetMeetingID(ctx context.Context, id uuid.UUID, meetingID uuid.UUID) error

	// ListUnprocessed retrieves oldest-first events still awaiting a
	// successful handling and under their attempt cap.
	ListUnprocessed(ctx context.Context, limit int) ([]entities.WebhookEvent, error)
}
