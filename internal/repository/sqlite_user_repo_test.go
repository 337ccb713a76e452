package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/saeid-a/HealthQuestBack/internal/database"
	"github.com/saeid-a/HealthQuestBack/internal/models"
)

func newSQLiteUserRepo(t *testing.T) *SQLiteUserRepository {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteUserRepository(db)
}

func TestSQLiteUserRepositoryCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteUserRepo(t)

	user := &models.User{ID: "7d1f3c2e-0000-4000-8000-000000000001", Email: "ana@example.com", PasswordHash: "hash"}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be stamped")
	}

	byEmail, err := repo.GetByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.PasswordHash != "hash" || !byEmail.CreatedAt.Equal(user.CreatedAt) {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", byID)
	}
}

func TestSQLiteUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteUserRepo(t)

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	first := &models.User{ID: "u-1", Email: "ana@example.com", PasswordHash: "hash"}
	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	second := &models.User{ID: "u-2", Email: "ana@example.com", PasswordHash: "other"}
	if err := repo.CreateUser(ctx, second); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}
