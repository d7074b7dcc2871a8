package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create creates a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by ID
func (r *MeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

// FindByBotID retrieves the meeting whose external bot id matches
func (r *MeetingRepository) FindByBotID(ctx context.Context, botID string) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("external_bot_id = ?", botID).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

// UpdateFields applies a partial update of the named columns only
func (r *MeetingRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// AdvanceStatus conditionally moves the meeting forward on the status
// lattice. The WHERE clause re-checks the current status so concurrent or
// replayed events cannot regress it: only one writer wins, the rest see
// zero rows affected.
func (r *MeetingRepository) AdvanceStatus(ctx context.Context, id uuid.UUID, target entities.MeetingStatus, extraFields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{
		"status":     target,
		"updated_at": time.Now(),
	}
	for k, v := range extraFields {
		updates[k] = v
	}

	query := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id)

	if target == entities.MeetingStatusFailed {
		// Failed absorbs from any non-terminal state
		query = query.Where("status NOT IN ?", []entities.MeetingStatus{
			entities.MeetingStatusCompleted,
			entities.MeetingStatusFailed,
		})
	} else {
		behind := make([]entities.MeetingStatus, 0, 4)
		for status, rank := range map[entities.MeetingStatus]int{
			entities.MeetingStatusScheduled:           0,
			entities.MeetingStatusWaitingForAdmission: 1,
			entities.MeetingStatusInProgress:          2,
			entities.MeetingStatusCompleted:           3,
		} {
			if rank < target.Rank() {
				behind = append(behind, status)
			}
		}
		query = query.Where("status IN ?", behind)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
