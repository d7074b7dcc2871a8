package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
)

// WebhookEventRepository handles the append-only webhook event log
type WebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Create appends a new inbound event
func (r *WebhookEventRepository) Create(ctx context.Context, event *entities.WebhookEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByID retrieves an event by ID
func (r *WebhookEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.WebhookEvent, error) {
	var event entities.WebhookEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// MarkProcessed sets the processed flag. The WHERE clause guards against
// double processing so a replayed event cannot flip the flag twice.
func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID, processingError *string) error {
	return r.db.WithContext(ctx).
		Model(&entities.WebhookEvent{}).
		Where("id = ? AND processed = ?", id, false).
		Updates(map[string]interface{}{
			"processed":        true,
			"processing_error": processingError,
			"updated_at":       time.Now(),
		}).Error
}

// RecordAttempt increments the attempt counter after a failed handling
func (r *WebhookEventRepository) RecordAttempt(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.db.WithContext(ctx).
		Model(&entities.WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":         gorm.Expr("attempts + 1"),
			"processing_error": lastError,
			"updated_at":       time.Now(),
		}).Error
}

// SetMeetingID stores the resolved meeting correlation
func (r *WebhookEventRepository) SetMeetingID(ctx context.Context, id uuid.UUID, meetingID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.WebhookEvent{}).
		Where("id = ?", id).
		Update("meeting_id", meetingID).Error
}

// ListUnprocessed retrieves oldest-first events still awaiting handling and
// under their attempt cap.
func (r *WebhookEventRepository) ListUnprocessed(ctx context.Context, limit int) ([]entities.WebhookEvent, error) {
	if limit == 0 {
		limit = 50
	}
	var events []entities.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("processed = ? AND attempts < max_attempts", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
