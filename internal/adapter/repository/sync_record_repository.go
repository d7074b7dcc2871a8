package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// SyncRecordRepository handles meeting-to-tracker item mappings
type SyncRecordRepository struct {
	db *gorm.DB
}

// NewSyncRecordRepository creates a new sync record repository
func NewSyncRecordRepository(db *gorm.DB) *SyncRecordRepository {
	return &SyncRecordRepository{db: db}
}

// Save creates or updates the record for (meeting, kind, title)
func (r *SyncRecordRepository) Save(ctx context.Context, record *entities.SyncRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}, {Name: "kind"}, {Name: "title"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"external_key", "project_key", "synced_at", "updated_at",
			}),
		}).
		Create(record).Error
}

// Find retrieves the record for (meeting, kind, title), nil if absent
func (r *SyncRecordRepository) Find(ctx context.Context, meetingID uuid.UUID, kind entities.SyncItemKind, title string) (*entities.SyncRecord, error) {
	var record entities.SyncRecord
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND kind = ? AND title = ?", meetingID, kind, title).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByMeeting retrieves all records for a meeting
func (r *SyncRecordRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]entities.SyncRecord, error) {
	var records []entities.SyncRecord
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
