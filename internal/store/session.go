package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/tigerpop/internal/model"
)

const (
	sessionTokenKey = "session.token"
	sessionUserKey  = "session.user"
)

// SessionStore persists the client's session in the settings table so it
// survives process restarts.
type SessionStore struct {
	DB *sql.DB
}

// LoadSession returns the persisted token and user. A missing session
// yields an empty token and a nil user.
func (s *SessionStore) LoadSession(ctx context.Context) (string, *model.User, error) {
	token, _, err := GetSetting(ctx, s.DB, sessionTokenKey)
	if err != nil {
		return "", nil, err
	}

	raw, ok, err := GetSetting(ctx, s.DB, sessionUserKey)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return token, nil, nil
	}

	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return "", nil, fmt.Errorf("decoding stored user: %w", err)
	}
	return token, &u, nil
}

// SaveSession replaces the persisted session in one transaction.
func (s *SessionStore) SaveSession(ctx context.Context, token string, user *model.User) error {
	var raw []byte
	if user != nil {
		var err error
		raw, err = json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encoding user: %w", err)
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM settings WHERE key IN (?, ?)`, sessionTokenKey, sessionUserKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if token != "" {
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, sessionTokenKey, token); err != nil {
			return fmt.Errorf("storing token: %w", err)
		}
	}
	if raw != nil {
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, sessionUserKey, string(raw)); err != nil {
			return fmt.Errorf("storing user: %w", err)
		}
	}

	return tx.Commit()
}

// ClearSession removes the persisted session.
func (s *SessionStore) ClearSession(ctx context.Context) error {
	return DeleteSettings(ctx, s.DB, sessionTokenKey, sessionUserKey)
}
