package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access. The core
// only ever performs partial-field updates so concurrent handlers of the
// same meeting never clobber each other's fields.
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// FindByBotID retrieves the meeting whose externalBotId matches
	FindByBotID(ctx context.Context, botID string) (*entities.Meeting, error)

	// UpdateFields applies a partial update of the named columns only
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error

	// AdvanceStatus moves the meeting forward on the status lattice. The
	// update is conditional on the current status still being behind the
	// target, so stale or duplicate events become no-ops at the database
	// level too. Returns true if a row was updated.
	AdvanceStatus(ctx context.Context, id uuid.UUID, target entities.MeetingStatus, extraFields map[string]interface{}) (bool, error)
}
