package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSigningSecret indicates the token manager was built without a secret.
	ErrMissingSigningSecret = errors.New("jwt: signing secret is required")
	// ErrInvalidTokenFormat indicates the token is structurally malformed or its signature does not verify.
	ErrInvalidTokenFormat = errors.New("jwt: invalid token format")
	// ErrTokenExpired indicates a correctly signed token whose exp has passed.
	ErrTokenExpired = errors.New("jwt: token expired")
	// ErrInvalidToken covers every other verification failure.
	ErrInvalidToken = errors.New("jwt: invalid token")
)

const (
	// ShortLivedTTL is the lifetime of tokens produced by IssueShortLived.
	ShortLivedTTL = time.Minute

	expiredIssuedAgo  = 10 * time.Minute
	expiredExpiredAgo = 5 * time.Minute
)

// Claims is the payload of every bearer token: subject (user email), role and the
// registered time claims. The role travels under the "roles" key for compatibility
// with tokens minted by earlier deployments.
type Claims struct {
	Role string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens. The signing key is derived
// once at construction and never changes for the lifetime of the manager.
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenManager builds a TokenManager for secret whose default lifetime is ttl.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSigningSecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: ttl must be positive, got %v", ttl)
	}

	return &TokenManager{
		key: []byte(secret),
		ttl: ttl,
		now: time.Now,
	}, nil
}

// WithClock allows injection of a custom clock (primarily for testing).
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	if now != nil {
		m.now = now
	}
	return m
}

// TTL returns the configured default token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for subject carrying role that expires ttl after now.
// A negative ttl yields a token that is already expired.
func (m *TokenManager) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := m.now()
	return m.sign(subject, role, now, now.Add(ttl))
}

// IssueDefault signs a token using the configured lifetime.
func (m *TokenManager) IssueDefault(subject, role string) (string, error) {
	return m.Issue(subject, role, m.ttl)
}

// IssueShortLived signs a role-less token valid for one minute.
func (m *TokenManager) IssueShortLived(subject string) (string, error) {
	return m.Issue(subject, "", ShortLivedTTL)
}

// IssueExpired signs a role-less token issued ten minutes ago that expired five minutes ago.
func (m *TokenManager) IssueExpired(subject string) (string, error) {
	now := m.now()
	return m.sign(subject, "", now.Add(-expiredIssuedAgo), now.Add(-expiredExpiredAgo))
}

func (m *TokenManager) sign(subject, role string, issuedAt, expiresAt time.Time) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("jwt: subject is required")
	}

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks structure, signature and expiry of token and returns its claims.
// The returned error is always one of ErrInvalidTokenFormat, ErrTokenExpired or ErrInvalidToken.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	return m.parse(token,
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
}

// ExtractClaims verifies the signature of token but skips time-based validation,
// so the exp of an already expired token can still be read.
func (m *TokenManager) ExtractClaims(token string) (*Claims, error) {
	claims, err := m.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}
	return claims, nil
}

func (m *TokenManager) parse(token string, opts ...jwt.ParserOption) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidTokenFormat
	}

	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, m.keyFunc, opts...)
	if err != nil {
		return nil, classify(err)
	}
	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

func (m *TokenManager) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return m.key, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidTokenFormat
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
