package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/tourism-api/internal/infra/security"
	"github.com/arklim/tourism-api/internal/transport/http/middleware"
)

type noBlacklist struct{}

func (noBlacklist) IsBlacklisted(context.Context, string) (bool, error) { return false, nil }

type testServer struct {
	t      *testing.T
	tokens *security.TokenManager
	router *gin.Engine
	api    *gin.RouterGroup
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := security.NewTokenManager("handler-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	router := gin.New()
	router.Use(middleware.EnrichContext(), middleware.Authenticate(tokens, noBlacklist{}, nil, nil))

	return &testServer{t: t, tokens: tokens, router: router, api: router.Group("/api")}
}

func (s *testServer) token(email, role string) string {
	s.t.Helper()
	token, err := s.tokens.IssueDefault(email, role)
	if err != nil {
		s.t.Fatalf("IssueDefault returned error: %v", err)
	}
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	if got := decode[ErrorResponse](t, rr).Error; got != message {
		t.Fatalf("expected error %q, got %q", message, got)
	}
}

func expectFieldError(t *testing.T, rr *httptest.ResponseRecorder, field, message string) {
	t.Helper()
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decode[ValidationErrorResponse](t, rr)
	if body.Message != "Validation failed" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if got := body.Errors[field]; got != message {
		t.Fatalf("expected %s error %q, got %q (all: %v)", field, message, got, body.Errors)
	}
}
