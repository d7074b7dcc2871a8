package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// IntegrationRepository defines the interface for token-vault entries
type IntegrationRepository interface {
	// Upsert creates or replaces the entry for (organization, provider)
	Upsert(ctx context.Context, integration *entities.Integration) error

	// FindByProvider retrieves the entry for (organization, provider)
	FindByProvider(ctx context.Context, orgID uuid.UUID, provider entities.IntegrationProvider) (*entities.Integration, error)

	// UpdateFields applies a partial update of the named columns only
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}
