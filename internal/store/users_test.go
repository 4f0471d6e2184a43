package store

import (
	"context"
	"testing"

	"github.com/erazemk/tigerpop/internal/db"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t, db.BackendSchema)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "testuser", "test@example.edu", "hash123")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", user.Username)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "test@example.edu" || got.PasswordHash != "hash123" {
		t.Errorf("unexpected account %+v", got)
	}
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t, db.BackendSchema)
	ctx := context.Background()

	CreateUser(ctx, database, "alice", "", "hash")

	user, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}

	missing, err := GetUserByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown user, got %+v", missing)
	}
}

func TestDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t, db.BackendSchema)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "alice", "", "h"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := CreateUser(ctx, database, "alice", "", "h"); err == nil {
		t.Error("expected unique violation for duplicate username")
	}
}

func TestUpsertNetIDUser(t *testing.T) {
	database := db.NewTestDB(t, db.BackendSchema)
	ctx := context.Background()

	first, err := UpsertNetIDUser(ctx, database, "tt42")
	if err != nil {
		t.Fatalf("UpsertNetIDUser: %v", err)
	}
	second, err := UpsertNetIDUser(ctx, database, "tt42")
	if err != nil {
		t.Fatalf("UpsertNetIDUser again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same account, got %d and %d", first.ID, second.ID)
	}
	if second.Email != "tt42@princeton.edu" {
		t.Errorf("unexpected email %q", second.Email)
	}
}
