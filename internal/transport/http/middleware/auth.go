package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/infra/logger"
	"github.com/arklim/tourism-api/internal/infra/security"
	"github.com/arklim/tourism-api/internal/infra/telemetry"
)

const identityKey = "identity"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// TokenVerifier checks signature and expiry of a bearer token.
type TokenVerifier interface {
	Verify(token string) (*security.Claims, error)
}

// BlacklistChecker reports whether a token was revoked before its expiry.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// Authenticate resolves the bearer token, if any, into a domain.Identity.
// Requests without a "Bearer " Authorization header continue anonymously;
// RequireAuth decides whether a route needs an identity.
func Authenticate(verifier TokenVerifier, blacklist BlacklistChecker, metrics *telemetry.AuthMetrics, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token, ok := security.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			metrics.ObserveGate(telemetry.OutcomeAnonymous)
			c.Next()
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrTokenExpired):
				metrics.ObserveGate(telemetry.OutcomeExpired)
				c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "Token has expired"))
			case errors.Is(err, security.ErrInvalidTokenFormat):
				metrics.ObserveGate(telemetry.OutcomeInvalidFormat)
				c.AbortWithStatusJSON(http.StatusBadRequest, newErrorResponse(c, "Invalid token format"))
			default:
				metrics.ObserveGate(telemetry.OutcomeInvalid)
				c.AbortWithStatusJSON(http.StatusBadRequest, newErrorResponse(c, "Invalid token"))
			}
			return
		}

		revoked, err := blacklist.IsBlacklisted(c.Request.Context(), token)
		if err != nil {
			metrics.ObserveGate(telemetry.OutcomeError)
			logger.FromContext(c.Request.Context(), log).Error("blacklist lookup failed",
				zap.String("token", logger.MaskToken(token)),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, newErrorResponse(c, "Authentication failed"))
			return
		}
		if revoked {
			metrics.ObserveGate(telemetry.OutcomeBlacklisted)
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "Token is blacklisted"))
			return
		}

		identity := domain.Identity{
			Email: claims.Subject,
			Role:  claims.Role,
			Token: token,
		}
		if claims.ExpiresAt != nil {
			identity.ExpiresAt = claims.ExpiresAt.Time
		}

		c.Set(identityKey, identity)
		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserEmail = identity.Email
		}

		metrics.ObserveGate(telemetry.OutcomeAuthenticated)
		c.Next()
	}
}

// RequireAuth rejects requests the gate did not attach an identity to.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "Authentication required"))
			return
		}
		c.Next()
	}
}

// RequireRole checks if the authenticated user has any of the specified roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "Authentication required"))
			return
		}

		if !identity.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, newErrorResponse(c, "Access is denied"))
			return
		}

		c.Next()
	}
}

// GetIdentity returns the identity attached by Authenticate, if any.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}
