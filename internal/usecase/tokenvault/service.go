package tokenvault

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/johnquangdev/meeting-recorder/errors"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/domain/repositories"
)

// TokenSet is a plaintext credential bundle handed to Store
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// Service is the token vault: encrypted credential storage with synchronous
// refresh on expiry
type Service struct {
	repo         repositories.IntegrationRepository
	cipher       *Cipher
	oauthConfigs map[entities.IntegrationProvider]*oauth2.Config
	margin       time.Duration
	logger       *zap.Logger

	// refreshes for the same (org, provider) collapse into one flight
	group singleflight.Group

	now func() time.Time
}

// NewService creates a token vault service
func NewService(
	repo repositories.IntegrationRepository,
	cipher *Cipher,
	oauthConfigs map[entities.IntegrationProvider]*oauth2.Config,
	margin time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:         repo,
		cipher:       cipher,
		oauthConfigs: oauthConfigs,
		margin:       margin,
		logger:       logger,
		now:          time.Now,
	}
}

// Store encrypts and persists a credential bundle for (org, provider)
func (s *Service) Store(ctx context.Context, orgID uuid.UUID, provider entities.IntegrationProvider, tokens TokenSet) error {
	encAccess, err := s.cipher.Encrypt(tokens.AccessToken)
	if err != nil {
		return apperrors.ErrInternal(err)
	}

	integration := &entities.Integration{
		OrganizationID: orgID,
		Provider:       provider,
		AccessToken:    encAccess,
		ExpiresAt:      tokens.ExpiresAt,
		IsActive:       true,
	}

	if tokens.RefreshToken != "" {
		encRefresh, err := s.cipher.Encrypt(tokens.RefreshToken)
		if err != nil {
			return apperrors.ErrInternal(err)
		}
		integration.RefreshToken = &encRefresh
	}

	if err := s.repo.Upsert(ctx, integration); err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("🔐 Stored integration credentials",
		zap.String("organization_id", orgID.String()),
		zap.String("provider", string(provider)))

	return nil
}

// Get returns a valid plaintext access token for (org, provider), refreshing
// it first when it is expired or about to expire
func (s *Service) Get(ctx context.Context, orgID uuid.UUID, provider entities.IntegrationProvider) (string, error) {
	integration, err := s.findActive(ctx, orgID, provider)
	if err != nil {
		return "", err
	}

	if !s.needsRefresh(integration) {
		return s.cipher.Decrypt(integration.AccessToken)
	}

	key := orgID.String() + "|" + string(provider)
	token, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.refresh(ctx, orgID, provider)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (s *Service) findActive(ctx context.Context, orgID uuid.UUID, provider entities.IntegrationProvider) (*entities.Integration, error) {
	integration, err := s.repo.FindByProvider(ctx, orgID, provider)
	if err != nil {
		if errors.Is(err, entities.ErrIntegrationNotFound) {
			return nil, apperrors.ErrIntegrationNotConnected(string(provider))
		}
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	if !integration.IsActive {
		return nil, apperrors.ErrCredentialExpired(string(provider), nil)
	}
	return integration, nil
}

func (s *Service) needsRefresh(integration *entities.Integration) bool {
	if integration.ExpiresAt == nil {
		return false
	}
	return s.now().Add(s.margin).After(*integration.ExpiresAt)
}

// refresh re-reads the entry inside the flight so the loser of a race reuses
// the winner's rotated tokens instead of refreshing again
func (s *Service) refresh(ctx context.Context, orgID uuid.UUID, provider entities.IntegrationProvider) (string, error) {
	integration, err := s.findActive(ctx, orgID, provider)
	if err != nil {
		return "", err
	}
	if !s.needsRefresh(integration) {
		return s.cipher.Decrypt(integration.AccessToken)
	}

	cfg, ok := s.oauthConfigs[provider]
	if !ok || integration.RefreshToken == nil {
		return "", s.deactivate(ctx, integration, provider, errors.New("no refresh path available"))
	}

	refreshToken, err := s.cipher.Decrypt(*integration.RefreshToken)
	if err != nil {
		return "", apperrors.ErrInternal(err)
	}

	stale := &oauth2.Token{RefreshToken: refreshToken, Expiry: s.now().Add(-time.Hour)}
	fresh, err := cfg.TokenSource(ctx, stale).Token()
	if err != nil {
		s.logger.Warn("⚠️ Token refresh failed, deactivating integration",
			zap.String("organization_id", orgID.String()),
			zap.String("provider", string(provider)),
			zap.Error(err))
		return "", s.deactivate(ctx, integration, provider, err)
	}

	encAccess, err := s.cipher.Encrypt(fresh.AccessToken)
	if err != nil {
		return "", apperrors.ErrInternal(err)
	}

	fields := map[string]interface{}{
		"access_token": encAccess,
	}
	if !fresh.Expiry.IsZero() {
		expiry := fresh.Expiry
		fields["expires_at"] = &expiry
	}
	// providers may rotate the refresh token on every refresh
	if fresh.RefreshToken != "" && fresh.RefreshToken != refreshToken {
		encRefresh, err := s.cipher.Encrypt(fresh.RefreshToken)
		if err != nil {
			return "", apperrors.ErrInternal(err)
		}
		fields["refresh_token"] = &encRefresh
	}

	if err := s.repo.UpdateFields(ctx, integration.ID, fields); err != nil {
		return "", apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("🔄 Refreshed integration credentials",
		zap.String("organization_id", orgID.String()),
		zap.String("provider", string(provider)))

	return fresh.AccessToken, nil
}

func (s *Service) deactivate(ctx context.Context, integration *entities.Integration, provider entities.IntegrationProvider, cause error) error {
	if err := s.repo.UpdateFields(ctx, integration.ID, map[string]interface{}{"is_active": false}); err != nil {
		s.logger.Error("Failed to deactivate integration", zap.Error(err))
	}
	return apperrors.ErrCredentialExpired(string(provider), cause)
}
