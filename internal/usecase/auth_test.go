package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/infra/security"
)

type authFixture struct {
	svc       *AuthService
	users     *memUserRepo
	blacklist *memBlacklistRepo
	tokens    *security.TokenManager
	events    *recordingPublisher
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	tokens := newTestTokens(t)
	users := newMemUserRepo()
	blacklistRepo := newMemBlacklistRepo()
	events := &recordingPublisher{}
	blacklist := NewTokenBlacklistService(blacklistRepo, nil, tokens, nil)

	return authFixture{
		svc:       NewAuthService(users, newTestHasher(t), tokens, blacklist, events, nil),
		users:     users,
		blacklist: blacklistRepo,
		tokens:    tokens,
		events:    events,
	}
}

func (f authFixture) register(t *testing.T, name, email, password, role string) domain.User {
	t.Helper()

	user, err := f.svc.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password, Role: role})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return user
}

func strPtr(s string) *string { return &s }

func TestAuthService_RegisterNormalisesAndPublishes(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, "  Alice ", " alice@example.com ", "secret1", " user ")

	if user.ID == 0 || user.Name != "Alice" || user.Email != "alice@example.com" || user.Role != domain.RoleUser {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PasswordHash != "" {
		t.Fatal("expected password hash to be stripped from result")
	}

	stored := f.users.users["alice@example.com"]
	if stored.PasswordHash == "" || stored.PasswordHash == "secret1" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}

	if len(f.events.registered) != 1 || f.events.registered[0].UserID != user.ID {
		t.Fatalf("expected one registered event, got %+v", f.events.registered)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct {
		in   RegisterInput
		want string
	}{
		{RegisterInput{Email: "a@example.com", Password: "secret1", Role: "USER"}, "Name is required"},
		{RegisterInput{Name: "A", Password: "secret1", Role: "USER"}, "Email is required"},
		{RegisterInput{Name: "A", Email: "nope", Password: "secret1", Role: "USER"}, "Invalid email format"},
		{RegisterInput{Name: "A", Email: "a@example.com", Password: "12345", Role: "USER"}, "Password must be at least 6 characters long"},
		{RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"}, "Role is required"},
	}

	for _, tc := range cases {
		_, err := f.svc.Register(context.Background(), tc.in)
		verr, ok := AsValidationError(err)
		if !ok {
			t.Fatalf("expected validation error %q, got %v", tc.want, err)
		}
		if verr.Message != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, verr.Message)
		}
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Alice", "alice@example.com", "secret1", "USER")

	_, err := f.svc.Register(context.Background(), RegisterInput{Name: "Other", Email: "alice@example.com", Password: "secret2", Role: "ADMIN"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestAuthService_LoginIssuesVerifiableToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Alice", "alice@example.com", "secret1", "ADMIN")

	token, err := f.svc.Login(context.Background(), "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := f.tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Subject != "alice@example.com" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Alice", "alice@example.com", "secret1", "USER")
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, " ", "x"); err == nil || err.Error() != "Email cannot be null or empty" {
		t.Fatalf("unexpected error for blank email: %v", err)
	}
	if _, err := f.svc.Login(ctx, "alice@example.com", ""); err == nil || err.Error() != "Password cannot be null or empty" {
		t.Fatalf("unexpected error for blank password: %v", err)
	}
	if _, err := f.svc.Login(ctx, "ghost@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "alice@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestAuthService_LogoutBlacklistsToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Alice", "alice@example.com", "secret1", "USER")

	token, err := f.svc.Login(context.Background(), "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := f.svc.Logout(context.Background(), "alice@example.com", token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, ok := f.blacklist.entries[token]; !ok {
		t.Fatal("expected token to be stored in the blacklist")
	}
	if len(f.events.loggedOut) != 1 {
		t.Fatalf("expected one logged-out event, got %d", len(f.events.loggedOut))
	}
}

func TestAuthService_PublishFailureDoesNotFailRegistration(t *testing.T) {
	f := newAuthFixture(t)
	f.events.err = errBoom

	if _, err := f.svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1", Role: "USER"}); err != nil {
		t.Fatalf("expected registration to succeed despite publish failure, got %v", err)
	}
}

func TestAuthService_Profile(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Alice", "alice@example.com", "secret1", "USER")

	profile, err := f.svc.Profile(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if profile.Name != "Alice" || profile.PasswordHash != "" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if _, err := f.svc.Profile(context.Background(), "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Alice", "alice@example.com", "secret1", "USER")
	f.register(t, "Bob", "bob@example.com", "secret1", "USER")
	ctx := context.Background()

	cases := []struct {
		name   string
		update domain.ProfileUpdate
		want   string
	}{
		{"empty", domain.ProfileUpdate{}, "At least one field is required for update"},
		{"blank fields", domain.ProfileUpdate{Name: strPtr(" "), Password: strPtr("")}, "At least one field is required for update"},
		{"bad email", domain.ProfileUpdate{Email: strPtr("not-an-email")}, "Invalid email format"},
		{"short password", domain.ProfileUpdate{Password: strPtr("short")}, "Password must be at least 8 characters long"},
	}
	for _, tc := range cases {
		_, err := f.svc.UpdateProfile(ctx, "alice@example.com", tc.update)
		if verr, ok := AsValidationError(err); !ok || verr.Message != tc.want {
			t.Fatalf("%s: expected %q, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := f.svc.UpdateProfile(ctx, "alice@example.com", domain.ProfileUpdate{Email: strPtr("bob@example.com")}); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	updated, err := f.svc.UpdateProfile(ctx, "alice@example.com", domain.ProfileUpdate{
		Name:     strPtr("Alicia"),
		Password: strPtr("longer-secret"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Name != "Alicia" || updated.Email != "alice@example.com" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	if _, err := f.svc.Login(ctx, "alice@example.com", "longer-secret"); err != nil {
		t.Fatalf("expected login with new password to succeed, got %v", err)
	}
}
