// Package session holds the authenticated identity of the running client.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/auth"
	"github.com/erazemk/tigerpop/internal/model"
)

// Info is what the backend asserted at login or CAS callback.
type Info struct {
	Token     string
	User      model.User
	ExpiresAt time.Time // zero when the token carries no expiry
}

// Persister stores the session between runs.
type Persister interface {
	LoadSession(ctx context.Context) (string, *model.User, error)
	SaveSession(ctx context.Context, token string, user *model.User) error
	ClearSession(ctx context.Context) error
}

// ErrNoIdentity is returned by SetToken for tokens without a user id.
var ErrNoIdentity = errors.New("token carries no user id")

// Store is the process-wide session container. It is safe for concurrent use.
type Store struct {
	persist  Persister
	logger   *zap.Logger
	onLogout func()
	now      func() time.Time

	mu      sync.RWMutex
	info    *Info
	subs    map[int]func(*Info)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithLogoutHook registers fn to run after Logout, e.g. to show the login screen.
func WithLogoutHook(fn func()) Option {
	return func(s *Store) { s.onLogout = fn }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store. p may be nil for a memory-only session.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persist: p,
		logger:  zap.NewNop(),
		now:     time.Now,
		subs:    make(map[int]func(*Info)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted session, if any.
func (s *Store) Restore(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	token, user, err := s.persist.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if token == "" || user == nil {
		return nil
	}

	info := &Info{Token: token, User: *user, ExpiresAt: tokenExpiry(token)}
	s.replace(info)
	s.logger.Debug("session restored", zap.Int64("user_id", user.ID))
	return nil
}

// Set replaces the session and persists it. A nil info clears it.
func (s *Store) Set(ctx context.Context, info *Info) error {
	if info == nil {
		return s.clear(ctx)
	}

	cp := *info
	if cp.ExpiresAt.IsZero() {
		cp.ExpiresAt = tokenExpiry(cp.Token)
	}
	if s.persist != nil {
		if err := s.persist.SaveSession(ctx, cp.Token, &cp.User); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
	}
	s.replace(&cp)
	return nil
}

// SetToken builds the session from an access token alone, as handed to the
// CAS callback. The payload is decoded without verification.
func (s *Store) SetToken(ctx context.Context, token string) (*Info, error) {
	claims, err := auth.DecodeToken(token)
	if err != nil {
		return nil, err
	}
	id, ok := claims.Identity()
	if !ok {
		return nil, ErrNoIdentity
	}

	info := &Info{
		Token: token,
		User: model.User{
			ID:       id,
			Username: claims.Username,
			NetID:    claims.NetID,
		},
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	if err := s.Set(ctx, info); err != nil {
		return nil, err
	}
	return s.Get(), nil
}

// Get returns a copy of the session, or nil when logged out or expired.
func (s *Store) Get() *Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.activeLocked() {
		return nil
	}
	cp := *s.info
	return &cp
}

// Token returns the bearer token, or "" when there is no usable session.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.activeLocked() {
		return ""
	}
	return s.info.Token
}

// UserID returns the session user's id.
func (s *Store) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.activeLocked() {
		return 0, false
	}
	return s.info.User.ID, true
}

// IsAuthenticated reports whether a non-expired session is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked()
}

// Logout clears the session, persists the clear and runs the logout hook.
func (s *Store) Logout(ctx context.Context) error {
	err := s.clear(ctx)
	if s.onLogout != nil {
		s.onLogout()
	}
	return err
}

// Subscribe calls fn with the new session (nil on logout) after every
// change. The returned function cancels the subscription.
func (s *Store) Subscribe(fn func(*Info)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close drops every subscriber. The session itself is kept.
func (s *Store) Close() {
	s.mu.Lock()
	clear(s.subs)
	s.mu.Unlock()
}

func (s *Store) clear(ctx context.Context) error {
	var err error
	if s.persist != nil {
		if perr := s.persist.ClearSession(ctx); perr != nil {
			err = fmt.Errorf("clearing session: %w", perr)
		}
	}
	s.replace(nil)
	return err
}

func (s *Store) replace(info *Info) {
	s.mu.Lock()
	s.info = info
	fns := make([]func(*Info), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		if info == nil {
			fn(nil)
			continue
		}
		cp := *info
		fn(&cp)
	}
}

func (s *Store) activeLocked() bool {
	if s.info == nil || s.info.Token == "" {
		return false
	}
	return s.info.ExpiresAt.IsZero() || s.now().Before(s.info.ExpiresAt)
}

// tokenExpiry returns the exp claim of a JWT, or zero if it has none or
// is not a JWT.
func tokenExpiry(token string) time.Time {
	claims, err := auth.DecodeToken(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
