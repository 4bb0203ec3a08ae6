package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/infra/logger"
	"github.com/arklim/tourism-api/internal/infra/security"
)

// TokenBlacklistService records logged-out tokens and answers revocation lookups
// for the request gate. The database is the source of truth; the optional cache
// only short-circuits positive lookups.
type TokenBlacklistService struct {
	repo   port.BlacklistRepository
	cache  port.BlacklistCache
	tokens *security.TokenManager
	logger *zap.Logger
	now    func() time.Time
}

// NewTokenBlacklistService constructs the blacklist service. cache may be nil.
func NewTokenBlacklistService(repo port.BlacklistRepository, cache port.BlacklistCache, tokens *security.TokenManager, log *zap.Logger) *TokenBlacklistService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenBlacklistService{
		repo:   repo,
		cache:  cache,
		tokens: tokens,
		logger: log,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *TokenBlacklistService) WithClock(now func() time.Time) *TokenBlacklistService {
	if now != nil {
		s.now = now
	}
	return s
}

// Blacklist invalidates token until its own exp claim. Repeated calls for the same
// token leave exactly one entry. It returns the expiry recorded for the token.
func (s *TokenBlacklistService) Blacklist(ctx context.Context, token string) (time.Time, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, security.ErrInvalidTokenFormat
	}

	claims, err := s.tokens.ExtractClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	expiresAt := claims.ExpiresAt.Time

	existing, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("lookup blacklisted token: %w", err)
	}
	if existing != nil {
		s.remember(ctx, token, existing.ExpiryDate)
		return existing.ExpiryDate, nil
	}

	entry := domain.BlacklistEntry{
		Token:      token,
		ExpiryDate: expiresAt,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return time.Time{}, fmt.Errorf("store blacklisted token: %w", err)
	}

	s.remember(ctx, token, expiresAt)

	logger.FromContext(ctx, s.logger).Info("token blacklisted",
		zap.String("token", logger.MaskToken(token)),
		zap.Time("expires_at", expiresAt),
	)

	return expiresAt, nil
}

// IsBlacklisted reports whether token was explicitly invalidated.
func (s *TokenBlacklistService) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if s.cache != nil {
		hit, err := s.cache.Contains(ctx, token)
		if err != nil {
			s.logger.Warn("blacklist cache lookup failed", zap.Error(err))
		} else if hit {
			return true, nil
		}
	}

	entry, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return false, fmt.Errorf("lookup blacklisted token: %w", err)
	}
	if entry == nil {
		return false, nil
	}

	s.remember(ctx, token, entry.ExpiryDate)
	return true, nil
}

func (s *TokenBlacklistService) remember(ctx context.Context, token string, expiresAt time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remember(ctx, token, expiresAt); err != nil {
		s.logger.Warn("blacklist cache write failed", zap.Error(err))
	}
}
