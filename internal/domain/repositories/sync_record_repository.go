package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// SyncRecordRepository defines the interface for the meeting-to-tracker
// item mapping.
type SyncRecordRepository interface {
	// Save creates or updates the record for (meeting, kind, title)
	Save(ctx context.Context, record *entities.SyncRecord) error

	// Find retrieves the record for (meeting, kind, title), nil if absent
	Find(ctx context.Context, meetingID uuid.UUID, kind entities.SyncItemKind, title string) (*entities.SyncRecord, error)

	// ListByMeeting retrieves all records for a meeting
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]entities.SyncRecord, error)
}
