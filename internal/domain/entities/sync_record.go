package entities

import (
	"time"

	"github.com/google/uuid"
)

// SyncItemKind distinguishes what a tracker item was created from
type SyncItemKind string

const (
	SyncItemSummary    SyncItemKind = "summary"
	SyncItemActionItem SyncItemKind = "action_item"
)

// SyncRecord maps a meeting artifact (summary or one action item) to the
// external tracker item it was pushed to. The persisted mapping is the
// primary deduplication mechanism for repeated syncs; title search is only
// a recovery path when no record exists.
type SyncRecord struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID uuid.UUID    `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex:ux_sync_records_meeting_kind_title,priority:1"`
	Kind      SyncItemKind `json:"kind" gorm:"type:varchar(20);not null;uniqueIndex:ux_sync_records_meeting_kind_title,priority:2"`
	Title     string       `json:"title" gorm:"type:varchar(500);not null;uniqueIndex:ux_sync_records_meeting_kind_title,priority:3"`

	ExternalKey string    `json:"external_key" gorm:"type:varchar(100);not null"`
	ProjectKey  string    `json:"project_key" gorm:"type:varchar(50);not null"`
	SyncedAt    time.Time `json:"synced_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for SyncRecord
func (SyncRecord) TableName() string {
	return "sync_records"
}

// NewSyncRecord records a pushed tracker item
func NewSyncRecord(meetingID uuid.UUID, kind SyncItemKind, title, externalKey, projectKey string) *SyncRecord {
	return &SyncRecord{
		ID:          uuid.New(),
		MeetingID:   meetingID,
		Kind:        kind,
		Title:       title,
		ExternalKey: externalKey,
		ProjectKey:  projectKey,
		SyncedAt:    time.Now(),
	}
}
