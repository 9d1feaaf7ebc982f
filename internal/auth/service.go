package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
)

type RepositoryAPI interface {
	GetCredentials(ctx context.Context, username string) (*Credentials, error)
	GetPrincipal(ctx context.Context, userID int64) (*Principal, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo        RepositoryAPI
	tokens      TokenGeneratorAPI
	revocations RevocationStore
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, revocations RevocationStore, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
	}
}

// Authenticate validates credentials and returns a token pair.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentials(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		return AuthTokens{}, fmt.Errorf("load credentials: %w", err)
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !creds.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	principal, err := s.repo.GetPrincipal(ctx, creds.UserID)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("load principal: %w", err)
	}

	tokens, err := s.issue(principal)
	if err != nil {
		return AuthTokens{}, err
	}

	if err := s.repo.UpdateLastLogin(ctx, principal.ID, time.Now().UTC()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "user_id", principal.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "user authenticated", "user_id", principal.ID)
	return tokens, nil
}

// RefreshTokens exchanges a refresh token for a new pair and revokes the old
// one.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.checkRefreshToken(ctx, refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	principal, err := s.activePrincipal(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}

	// the old token is spent before the new pair exists
	claimed, err := s.revocations.Claim(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("revoke rotated refresh token: %w", err)
	}
	if !claimed {
		return AuthTokens{}, errTokenBlacklisted()
	}

	return s.issue(principal)
}

// Revoke blacklists a refresh token until it would have expired.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.checkRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	s.logger.InfoContext(ctx, "refresh token revoked", "user_id", claims.UserID)
	return nil
}

// PrincipalFromAccessToken validates an access token and loads its user.
func (s *Service) PrincipalFromAccessToken(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	return s.activePrincipal(ctx, claims.UserID)
}

func (s *Service) checkRefreshToken(ctx context.Context, refreshToken string) (*Claims, error) {
	if err := (RefreshTokenDTO{RefreshToken: refreshToken}).Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, errTokenBlacklisted()
	}
	return claims, nil
}

func (s *Service) activePrincipal(ctx context.Context, userID int64) (*Principal, error) {
	principal, err := s.repo.GetPrincipal(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	if !principal.Active {
		return nil, internal.ErrUserInactive
	}
	return principal, nil
}

func (s *Service) issue(p *Principal) (AuthTokens, error) {
	access, err := s.tokens.GenerateAccessToken(p)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(p)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func errTokenBlacklisted() *internal.AppError {
	return internal.NewUnauthorizedError("Token is blacklisted", internal.ErrCodeInvalidToken)
}
