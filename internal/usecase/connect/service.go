package connect

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-recorder/errors"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/oauth"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/tokenvault"
)

// Service runs the OAuth connect flow for an integration: issue the
// authorization URL, then trade the callback code for credentials and hand
// them to the vault.
type Service struct {
	provider *oauth.Provider
	states   *oauth.StateManager
	vault    *tokenvault.Service
	logger   *zap.Logger
}

// NewService creates a connect flow service
func NewService(provider *oauth.Provider, states *oauth.StateManager, vault *tokenvault.Service, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		states:   states,
		vault:    vault,
		logger:   logger,
	}
}

// Begin starts the flow for an organization and returns the authorization
// URL to redirect the operator to
func (s *Service) Begin(orgID uuid.UUID) (string, error) {
	state, err := s.states.Issue(orgID)
	if err != nil {
		return "", apperrors.ErrInternal(err)
	}
	return s.provider.AuthURL(state), nil
}

// Complete handles the provider callback: the state token identifies the
// organization, the code buys the credential bundle.
func (s *Service) Complete(ctx context.Context, state, code string) error {
	orgID, ok := s.states.Consume(state)
	if !ok {
		return apperrors.ErrInvalidArgument("invalid or expired state token")
	}

	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return apperrors.ErrOAuthExchangeFailed(err)
	}

	tokens := tokenvault.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC().Truncate(time.Second)
		tokens.ExpiresAt = &expiry
	}

	if err := s.vault.Store(ctx, orgID, entities.ProviderTracker, tokens); err != nil {
		return err
	}

	s.logger.Info("🔗 Tracker integration connected",
		zap.String("organization_id", orgID.String()))
	return nil
}
