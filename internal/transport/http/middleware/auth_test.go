package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/infra/security"
	"github.com/arklim/tourism-api/internal/infra/telemetry"
)

type fakeBlacklist struct {
	tokens map[string]bool
	err    error
	calls  int
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, token string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.tokens[token], nil
}

type gateFixture struct {
	tokens    *security.TokenManager
	blacklist *fakeBlacklist
	metrics   *telemetry.AuthMetrics
	router    *gin.Engine
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := security.NewTokenManager("gate-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	metrics, err := telemetry.NewAuthMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewAuthMetrics returned error: %v", err)
	}

	f := &gateFixture{
		tokens:    tokens,
		blacklist: &fakeBlacklist{tokens: map[string]bool{}},
		metrics:   metrics,
	}

	router := gin.New()
	router.Use(EnrichContext(), Authenticate(tokens, f.blacklist, metrics, zaptest.NewLogger(t)))
	router.GET("/public", func(c *gin.Context) {
		_, authenticated := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})
	router.GET("/me", RequireAuth(), func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"email": identity.Email, "role": identity.Role, "token": identity.Token})
	})
	router.GET("/admin", RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	f.router = router

	return f
}

func (f *gateFixture) do(t *testing.T, path, authorization string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	var body map[string]any
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body %q: %v", rr.Body.String(), err)
		}
	}
	return rr, body
}

func (f *gateFixture) outcomes(outcome string) float64 {
	return testutil.ToFloat64(f.metrics.GateDecisions.WithLabelValues(outcome))
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	f := newGateFixture(t)

	token, err := f.tokens.Issue("alice@example.com", domain.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	rr, body := f.do(t, "/me", "Bearer "+token)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body["email"] != "alice@example.com" || body["role"] != domain.RoleUser || body["token"] != token {
		t.Fatalf("unexpected identity: %v", body)
	}
	if f.outcomes(telemetry.OutcomeAuthenticated) != 1 {
		t.Fatal("expected authenticated outcome to be counted")
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	f := newGateFixture(t)

	token, err := f.tokens.Issue("alice@example.com", domain.RoleUser, -5*time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	f.blacklist.tokens[token] = true

	rr, body := f.do(t, "/public", "Bearer "+token)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body["error"] != "Token has expired" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
	if f.blacklist.calls != 0 {
		t.Fatal("expiry must be reported before the blacklist is consulted")
	}
}

func TestAuthenticateRejectsBlacklistedToken(t *testing.T) {
	f := newGateFixture(t)

	token, err := f.tokens.IssueDefault("alice@example.com", domain.RoleUser)
	if err != nil {
		t.Fatalf("IssueDefault returned error: %v", err)
	}
	f.blacklist.tokens[token] = true

	rr, body := f.do(t, "/me", "Bearer "+token)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body["error"] != "Token is blacklisted" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
	if f.outcomes(telemetry.OutcomeBlacklisted) != 1 {
		t.Fatal("expected blacklisted outcome to be counted")
	}
}

func TestAuthenticateRejectsMalformedToken(t *testing.T) {
	f := newGateFixture(t)

	rr, body := f.do(t, "/public", "Bearer not.a.jwt")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if body["error"] != "Invalid token format" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
	if body["trace_id"] == "" || body["trace_id"] == nil {
		t.Fatal("expected trace id on error body")
	}
}

func TestAuthenticateRejectsForeignSignature(t *testing.T) {
	f := newGateFixture(t)

	other, err := security.NewTokenManager("some-other-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	token, err := other.IssueDefault("mallory@example.com", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueDefault returned error: %v", err)
	}

	rr, _ := f.do(t, "/admin", "Bearer "+token)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAuthenticatePassesThroughWithoutBearerHeader(t *testing.T) {
	f := newGateFixture(t)

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "bearer lowercase", "Bearer "} {
		rr, body := f.do(t, "/public", header)
		if rr.Code != http.StatusOK {
			t.Fatalf("header %q: expected public route to answer 200, got %d", header, rr.Code)
		}
		if body["authenticated"] != false {
			t.Fatalf("header %q: expected anonymous request", header)
		}

		rr, body = f.do(t, "/me", header)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 on protected route, got %d", header, rr.Code)
		}
		if body["error"] != "Authentication required" {
			t.Fatalf("unexpected error: %v", body["error"])
		}
	}

	if f.blacklist.calls != 0 {
		t.Fatal("anonymous requests must not hit the blacklist")
	}
}

func TestAuthenticateFailsClosedOnLookupError(t *testing.T) {
	f := newGateFixture(t)
	f.blacklist.err = errors.New("connection refused")

	token, err := f.tokens.IssueDefault("alice@example.com", domain.RoleUser)
	if err != nil {
		t.Fatalf("IssueDefault returned error: %v", err)
	}

	rr, body := f.do(t, "/public", "Bearer "+token)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if body["error"] != "Authentication failed" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
}

func TestRequireRole(t *testing.T) {
	f := newGateFixture(t)

	userToken, _ := f.tokens.IssueDefault("alice@example.com", domain.RoleUser)
	adminToken, _ := f.tokens.IssueDefault("root@example.com", domain.RoleAdmin)

	rr, body := f.do(t, "/admin", "Bearer "+userToken)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if body["error"] != "Access is denied" {
		t.Fatalf("unexpected error: %v", body["error"])
	}

	if rr, _ := f.do(t, "/admin", "Bearer "+adminToken); rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin, got %d", rr.Code)
	}

	if rr, _ := f.do(t, "/admin", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rr.Code)
	}
}
