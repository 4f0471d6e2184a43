package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/erazemk/tigerpop/internal/db"
	"github.com/erazemk/tigerpop/internal/model"
)

func TestSessionStoreEmpty(t *testing.T) {
	s := &SessionStore{DB: db.NewTestDB(t, db.SessionSchema)}

	token, user, err := s.LoadSession(context.Background())
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if token != "" || user != nil {
		t.Errorf("expected empty session, got %q %+v", token, user)
	}
}

func TestSessionStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.sqlite3")
	ctx := context.Background()

	open := func() *SessionStore {
		database, err := db.Open(path)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { database.Close() })
		if err := db.EnsureSchema(database, db.SessionSchema); err != nil {
			t.Fatalf("EnsureSchema: %v", err)
		}
		return &SessionStore{DB: database}
	}

	first := open()
	err := first.SaveSession(ctx, "tok-1", &model.User{ID: 12, Username: "tiger", NetID: "tt12"})
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	first.DB.Close()

	second := open()
	token, user, err := second.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("expected token tok-1, got %q", token)
	}
	if user == nil || user.ID != 12 || user.NetID != "tt12" {
		t.Errorf("unexpected user %+v", user)
	}

	if err := second.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	token, user, _ = second.LoadSession(ctx)
	if token != "" || user != nil {
		t.Errorf("expected cleared session, got %q %+v", token, user)
	}
}

func TestSaveSessionReplacesUser(t *testing.T) {
	s := &SessionStore{DB: db.NewTestDB(t, db.SessionSchema)}
	ctx := context.Background()

	s.SaveSession(ctx, "a", &model.User{ID: 1})
	if err := s.SaveSession(ctx, "b", nil); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	token, user, _ := s.LoadSession(ctx)
	if token != "b" || user != nil {
		t.Errorf("expected token b without user, got %q %+v", token, user)
	}
}
