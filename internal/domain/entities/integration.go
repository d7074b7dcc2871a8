package entities

import (
	"time"

	"github.com/google/uuid"
)

// IntegrationProvider identifies the external service an integration
// connects to.
type IntegrationProvider string

const (
	ProviderTracker  IntegrationProvider = "tracker"
	ProviderRecorder IntegrationProvider = "recorder"
)

// Integration is a token-vault entry: one per (organization, provider).
// AccessToken and RefreshToken are stored encrypted; plaintext exists only
// transiently in memory while an outbound call is being made.
type Integration struct {
	ID             uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizationID uuid.UUID           `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:ux_integrations_org_provider,priority:1"`
	Provider       IntegrationProvider `json:"provider" gorm:"type:varchar(50);not null;uniqueIndex:ux_integrations_org_provider,priority:2"`

	AccessToken  string     `json:"-" gorm:"type:text;not null"`
	RefreshToken *string    `json:"-" gorm:"type:text"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsActive     bool       `json:"is_active" gorm:"default:true;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Integration
func (Integration) TableName() string {
	return "integrations"
}

// IsExpired reports whether the access token is past its expiry. Entries
// without an expiry never expire.
func (i *Integration) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}
