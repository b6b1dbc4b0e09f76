package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"despesas/internal/session"
)

// CreateSession deactivates any active session for the user and opens a
// fresh one. A user holds at most one active session at a time.
func (r *Repository) CreateSession(ctx context.Context, userID string, now time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET active = 0 WHERE user_id = ? AND active = 1`,
		userID,
	); err != nil {
		return 0, fmt.Errorf("deactivate prior sessions: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (user_id, last_activity, active) VALUES (?, ?, 1)`,
		userID, now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit session: %w", err)
	}
	return id, nil
}

// ActiveSession returns the user's current active session, or nil when
// there is none.
func (r *Repository) ActiveSession(ctx context.Context, userID string) (*session.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, last_activity, active FROM sessions
		 WHERE user_id = ? AND active = 1 ORDER BY id DESC LIMIT 1`,
		userID,
	)
	var s session.Session
	var active int
	if err := row.Scan(&s.ID, &s.UserID, &s.LastActivity, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load active session: %w", err)
	}
	s.Active = active != 0
	return &s, nil
}

// TouchSession refreshes last_activity on the user's active session and
// reports whether one existed.
func (r *Repository) TouchSession(ctx context.Context, userID string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_activity = ? WHERE user_id = ? AND active = 1`,
		now.UTC(), userID,
	)
	if err != nil {
		return false, fmt.Errorf("touch session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ExpireSession flips one session inactive. The condition on active
// makes the expiry idempotent under concurrent checks.
func (r *Repository) ExpireSession(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = 0 WHERE id = ? AND active = 1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("expire session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeactivateSessions logs the user out everywhere and returns how many
// sessions were closed.
func (r *Repository) DeactivateSessions(ctx context.Context, userID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = 0 WHERE user_id = ? AND active = 1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// ExpireSessionsBefore bulk-expires sessions idle since before the
// cutoff and returns the count, for the periodic sweeper.
func (r *Repository) ExpireSessionsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = 0 WHERE active = 1 AND last_activity < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("expire stale sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
