package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// IntegrationRepository handles token-vault entry data operations
type IntegrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository creates a new integration repository
func NewIntegrationRepository(db *gorm.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// Upsert creates or replaces the entry for (organization, provider)
func (r *IntegrationRepository) Upsert(ctx context.Context, integration *entities.Integration) error {
	if integration == nil {
		return errors.New("integration cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "organization_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "expires_at", "is_active", "updated_at",
			}),
		}).
		Create(integration).Error
}

// FindByProvider retrieves the entry for (organization, provider)
func (r *IntegrationRepository) FindByProvider(ctx context.Context, orgID uuid.UUID, provider entities.IntegrationProvider) (*entities.Integration, error) {
	var integration entities.Integration
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND provider = ?", orgID, provider).
		First(&integration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrIntegrationNotFound
		}
		return nil, err
	}
	return &integration, nil
}

// UpdateFields applies a partial update of the named columns only
func (r *IntegrationRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Integration{}).
		Where("id = ?", id).
		Updates(fields).Error
}
