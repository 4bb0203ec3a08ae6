package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/infra/logger"
	"github.com/arklim/tourism-api/internal/infra/security"
	"github.com/arklim/tourism-api/internal/repository"
)

const (
	minRegisterPasswordLength = 6
	minProfilePasswordLength  = 8
)

// RegisterInput is the payload accepted by Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthService coordinates registration, login, logout and profile flows.
type AuthService struct {
	users     port.UserRepository
	hasher    *security.PasswordHasher
	tokens    *security.TokenManager
	blacklist *TokenBlacklistService
	events    port.EventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance. events may be nil.
func NewAuthService(
	users port.UserRepository,
	hasher *security.PasswordHasher,
	tokens *security.TokenManager,
	blacklist *TokenBlacklistService,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		blacklist: blacklist,
		events:    events,
		validate:  validator.New(),
		logger:    log,
		now:       time.Now,
	}
}

// Register creates a user account. The role is normalised to upper case.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	password := strings.TrimSpace(in.Password)
	role := domain.NormalizeRole(in.Role)

	switch {
	case name == "":
		return domain.User{}, invalid("Name is required")
	case email == "":
		return domain.User{}, invalid("Email is required")
	case !s.validEmail(email):
		return domain.User{}, invalid("Invalid email format")
	case len(password) < minRegisterPasswordLength:
		return domain.User{}, invalid("Password must be at least 6 characters long")
	case role == "":
		return domain.User{}, invalid("Role is required")
	case role != domain.RoleAdmin && role != domain.RoleUser:
		return domain.User{}, invalid("Role must be either ADMIN or USER")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, ErrEmailAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.User{}, ErrEmailAlreadyExists
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	log := logger.FromContext(ctx, s.logger)
	log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", logger.MaskEmail(user.Email)))

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Email:        user.Email,
			Role:         user.Role,
			RegisteredAt: user.CreatedAt,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			log.Warn("publish user registered failed", zap.Error(err))
		}
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues a bearer token with the configured lifetime.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid("Email cannot be null or empty")
	}
	if password == "" {
		return "", invalid("Password cannot be null or empty")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueDefault(user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Logout blacklists token so it is rejected for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, email, token string) error {
	expiresAt, err := s.blacklist.Blacklist(ctx, token)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx, s.logger)
	log.Info("user logged out", zap.String("email", logger.MaskEmail(email)))

	if s.events != nil {
		event := domain.UserLoggedOutEvent{
			EventID:        uuid.NewString(),
			Email:          email,
			LoggedOutAt:    s.now().UTC(),
			TokenExpiresAt: expiresAt,
		}
		if err := s.events.PublishUserLoggedOut(ctx, event); err != nil {
			log.Warn("publish user logged out failed", zap.Error(err))
		}
	}

	return nil
}

// Profile returns the user identified by email.
func (s *AuthService) Profile(ctx context.Context, email string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	profile := *user
	profile.PasswordHash = ""
	return profile, nil
}

// UpdateProfile applies the non-blank fields of update to the user identified by email.
func (s *AuthService) UpdateProfile(ctx context.Context, email string, update domain.ProfileUpdate) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	name := trimmed(update.Name)
	newEmail := trimmed(update.Email)
	password := trimmed(update.Password)

	if newEmail != "" && newEmail != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, newEmail)
		if err != nil {
			return domain.User{}, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return domain.User{}, ErrEmailAlreadyExists
		}
	}

	if name == "" && newEmail == "" && password == "" {
		return domain.User{}, invalid("At least one field is required for update")
	}
	if update.Email != nil && !s.validEmail(newEmail) {
		return domain.User{}, invalid("Invalid email format")
	}
	if update.Password != nil && len(*update.Password) < minProfilePasswordLength {
		return domain.User{}, invalid("Password must be at least 8 characters long")
	}

	if name != "" {
		user.Name = name
	}
	if newEmail != "" {
		user.Email = newEmail
	}
	if password != "" {
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, *user); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return domain.User{}, ErrEmailAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	profile := *user
	profile.PasswordHash = ""
	return profile, nil
}

func (s *AuthService) validEmail(email string) bool {
	return s.validate.Var(email, "required,email") == nil
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
