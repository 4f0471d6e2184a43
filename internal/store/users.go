package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/tigerpop/internal/model"
)

// Account is a backend user record including its credential hash.
type Account struct {
	model.User
	PasswordHash string
}

const accountColumns = `id, username, email, netid, password_hash`

func scanAccount(row interface{ Scan(...any) error }) (*Account, error) {
	a := &Account{}
	var username, email, netid, hash sql.NullString
	if err := row.Scan(&a.ID, &username, &email, &netid, &hash); err != nil {
		return nil, err
	}
	a.Username = username.String
	a.Email = email.String
	a.NetID = netid.String
	a.PasswordHash = hash.String
	return a, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateUser creates a password-based account.
func CreateUser(ctx context.Context, db *sql.DB, username, email, passwordHash string) (*Account, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		nullIfEmpty(username), nullIfEmpty(email), nullIfEmpty(passwordHash),
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns an account by ID, or nil if it does not exist.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*Account, error) {
	a, err := scanAccount(db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return a, nil
}

// GetUserByUsername returns an account by username, or nil if none matches.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*Account, error) {
	a, err := scanAccount(db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE username = ?`, username,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return a, nil
}

// UpsertNetIDUser returns the account for a CAS netid, creating it on first login.
func UpsertNetIDUser(ctx context.Context, db *sql.DB, netid string) (*Account, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (netid, email) SELECT ?, ?
		 WHERE NOT EXISTS (SELECT 1 FROM users WHERE netid = ?)`,
		netid, netid+"@princeton.edu", netid,
	)
	if err != nil {
		return nil, fmt.Errorf("creating netid user: %w", err)
	}

	a, err := scanAccount(db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE netid = ?`, netid,
	))
	if err != nil {
		return nil, fmt.Errorf("getting netid user: %w", err)
	}
	return a, nil
}
