package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/osintdesk/console-api/internal/pkg/jwt"
	"github.com/osintdesk/console-api/internal/pkg/password"
)

const refreshKeyPrefix = "auth:refresh:"

// Service authenticates console admins and manages token rotation.
type Service interface {
	Login(ctx context.Context, email, plainPassword string) (*Admin, *TokenPair, error)

	// Refresh rotates a refresh token: the presented token is revoked
	// and a fresh pair issued. A revoked or unknown token is rejected.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	Logout(ctx context.Context, refreshToken string) error
}

type service struct {
	repo   Repository
	tokens *jwt.Service

	// redis holds issued refresh jtis; nil disables revocation and
	// refresh tokens become stateless until expiry
	redis *redis.Client
}

// NewService creates an auth service. redisClient may be nil.
func NewService(db *sqlx.DB, tokens *jwt.Service, redisClient *redis.Client) Service {
	return &service{repo: NewRepository(db), tokens: tokens, redis: redisClient}
}

func (s *service) Login(ctx context.Context, email, plainPassword string) (*Admin, *TokenPair, error) {
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if !password.Verify(plainPassword, admin.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issuePair(ctx, admin)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.TouchLastLogin(ctx, admin.ID); err != nil {
		log.Warn().Err(err).Str("admin_id", admin.ID.String()).Msg("failed to touch last_login")
	}

	return admin, pair, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	if s.redis != nil {
		// Rotation: the jti is single use
		deleted, err := s.redis.Del(ctx, refreshKeyPrefix+claims.ID).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: refresh store", ErrInternal)
		}
		if deleted == 0 {
			return nil, ErrInvalidRefresh
		}
	}

	admin, err := s.repo.GetByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.issuePair(ctx, admin)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		// Expired or malformed tokens are already unusable
		return nil
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, refreshKeyPrefix+claims.ID).Err(); err != nil {
			return fmt.Errorf("%w: refresh store", ErrInternal)
		}
	}
	return nil
}

func (s *service) issuePair(ctx context.Context, admin *Admin) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(admin.ID, admin.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: sign access token", ErrInternal)
	}

	refresh, jti, expiresAt, err := s.tokens.GenerateRefreshToken(admin.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: sign refresh token", ErrInternal)
	}

	if s.redis != nil {
		ttl := time.Until(expiresAt)
		if err := s.redis.Set(ctx, refreshKeyPrefix+jti, admin.ID.String(), ttl).Err(); err != nil {
			return nil, fmt.Errorf("%w: refresh store", ErrInternal)
		}
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}
