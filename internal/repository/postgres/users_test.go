package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/repository"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	user := domain.User{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		CreatedAt:    createdAt,
	}

	mock.ExpectQuery(`INSERT INTO users \(name,email,password_hash,role,created_at\)`).
		WithArgs(user.Name, user.Email, user.PasswordHash, user.Role, createdAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	created, err := repo.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 7 {
		t.Fatalf("expected id 7, got %d", created.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), domain.User{Email: "dup@example.com"})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows(userColumns).
		AddRow(int64(3), "Bob", "bob@example.com", "hash", domain.RoleAdmin, createdAt)

	mock.ExpectQuery(`SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = \$1`).
		WithArgs("bob@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user.ID != 3 || user.Role != domain.RoleAdmin || !user.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected user %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`FROM users WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns))

	if _, err := repo.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT EXISTS\( SELECT 1 FROM users WHERE email = \$1 \)`).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("ExistsByEmail returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected email to exist")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Update(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	user := domain.User{ID: 4, Name: "New", Email: "new@example.com", PasswordHash: "h", Role: domain.RoleUser}

	mock.ExpectExec(`UPDATE users SET name = \$1, email = \$2, password_hash = \$3, role = \$4 WHERE id = \$5`).
		WithArgs(user.Name, user.Email, user.PasswordHash, user.Role, user.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.Update(context.Background(), user); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE users`).
		WithArgs(user.Name, user.Email, user.PasswordHash, user.Role, int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	user.ID = 99
	if err := repo.Update(context.Background(), user); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
