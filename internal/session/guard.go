// Package session enforces a single-session, idle-timeout overlay on top
// of externally authenticated user identities. Every state-reading or
// state-mutating operation consults the guard first; the guard refreshes
// the activity timestamp on success and fails closed otherwise.
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout is the idle window after which a session expires.
const DefaultTimeout = 10 * time.Minute

var (
	// ErrUnauthenticated means no user context or no active session at
	// all: the caller must log in.
	ErrUnauthenticated = errors.New("usuário não autenticado")
	// ErrSessionExpired means the idle window was exceeded. Surfaced
	// distinctly so callers can force a re-login instead of showing a
	// generic failure.
	ErrSessionExpired = errors.New("sessão expirada")
)

// Session is one user's login window.
type Session struct {
	ID           int64
	UserID       string
	LastActivity time.Time
	Active       bool
}

// Store is the persistence port the guard drives. Implementations must
// make each transition a conditional write so that concurrent calls for
// the same user cannot leave two sessions active.
type Store interface {
	// CreateSession deactivates every active session of the user and
	// inserts a fresh one with the given activity timestamp, atomically.
	CreateSession(ctx context.Context, userID string, now time.Time) (int64, error)
	// ActiveSession returns the user's active session, or nil.
	ActiveSession(ctx context.Context, userID string) (*Session, error)
	// TouchSession refreshes the active session's activity timestamp and
	// reports whether one existed.
	TouchSession(ctx context.Context, userID string, now time.Time) (bool, error)
	// ExpireSession flips a session inactive if it still is active.
	ExpireSession(ctx context.Context, id int64) (bool, error)
	// DeactivateSessions flips all of the user's active sessions off and
	// returns how many were flipped.
	DeactivateSessions(ctx context.Context, userID string) (int, error)
	// ExpireSessionsBefore flips every active session whose last activity
	// predates the cutoff and returns the count.
	ExpireSessionsBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Guard runs the session state machine. The zero clock means time.Now;
// tests override it.
type Guard struct {
	store   Store
	timeout time.Duration
	clock   func() time.Time
}

func NewGuard(store Store, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guard{store: store, timeout: timeout, clock: time.Now}
}

// WithClock replaces the guard's time source. Test hook.
func (g *Guard) WithClock(clock func() time.Time) *Guard {
	g.clock = clock
	return g
}

// Timeout returns the configured idle window.
func (g *Guard) Timeout() time.Duration {
	return g.timeout
}

// Create opens a new session for the user, deactivating any prior ones.
// Exactly one session is active for the user afterwards.
func (g *Guard) Create(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	return g.store.CreateSession(ctx, userID, g.clock())
}

// Touch refreshes the user's activity timestamp if a session is active.
// It is a silent no-op otherwise: heartbeats are low stakes and must not
// produce errors for logged-out tabs.
func (g *Guard) Touch(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	_, err := g.store.TouchSession(ctx, userID, g.clock())
	return err
}

// Require is the check in front of every guarded operation. It fails with
// ErrUnauthenticated when no session is active and with ErrSessionExpired
// when the idle window was exceeded, flipping the session off as a side
// effect; on success it refreshes the activity timestamp.
func (g *Guard) Require(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	s, err := g.store.ActiveSession(ctx, userID)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrUnauthenticated
	}
	now := g.clock()
	if now.Sub(s.LastActivity) > g.timeout {
		// Lazy expiry: the first call past the window flips the flag.
		// The flip is conditional, so a concurrent Require observing the
		// same expiry is harmless.
		if _, err := g.store.ExpireSession(ctx, s.ID); err != nil {
			return err
		}
		return ErrSessionExpired
	}
	if _, err := g.store.TouchSession(ctx, userID, now); err != nil {
		return err
	}
	return nil
}

// Invalidate logs the user out by flipping all active sessions off.
// Idempotent; no error when none exist.
func (g *Guard) Invalidate(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	_, err := g.store.DeactivateSessions(ctx, userID)
	return err
}

// Sweep flips every session idle past the timeout and returns how many it
// flipped. Safe to run concurrently with itself: each flip is independent
// and idempotent.
func (g *Guard) Sweep(ctx context.Context, now time.Time) (int, error) {
	return g.store.ExpireSessionsBefore(ctx, now.Add(-g.timeout))
}
