// Package storage persists expense records, sessions and credentials in
// SQLite. Session transitions are conditional writes so that the guard's
// state machine stays race-free across concurrent requests.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/session"

	_ "modernc.org/sqlite"
)

// ErrNotFoundOrForbidden covers both a missing row and a row owned by
// someone else. The two are deliberately indistinguishable so the API
// never leaks whether another user's record exists.
var ErrNotFoundOrForbidden = errors.New("despesa não encontrada ou sem permissão")

type Repository struct {
	db  *sql.DB
	log *applog.Logger
}

// Compile-time check: the repository backs the session guard.
var _ session.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: serializes SQLite writes and keeps :memory:
	// databases on the connection that was migrated.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, log: applog.ForComponent(applog.ComponentStorage)}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- records ---

// CreateRecord inserts the record and its amount fields in one
// transaction and returns the new id.
func (r *Repository) CreateRecord(ctx context.Context, rec core.Record) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (user_id, property, date, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.UserID, rec.Property, rec.Date.String(), string(core.NormalizeStatus(rec.Status)), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for key, m := range rec.Fields {
		if m.Cents == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO record_fields (record_id, field_key, amount_cents) VALUES (?, ?, ?)`,
			id, key, m.Cents,
		); err != nil {
			return 0, fmt.Errorf("insert record field %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit record: %w", err)
	}

	r.log.InfoContext(ctx, "Record saved",
		"id", id,
		"property", rec.Property,
		"date", rec.Date.String(),
		"fields", len(rec.Fields))

	return id, nil
}

// GetRecord returns the caller's record or ErrNotFoundOrForbidden.
func (r *Repository) GetRecord(ctx context.Context, userID string, id int64) (*core.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, property, date, status, created_at FROM records WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	if err := r.loadFields(ctx, map[int64]*core.Record{rec.ID: rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRecords returns all of the owner's records, optionally restricted to
// one property, newest date first. Amount fields are attached.
func (r *Repository) ListRecords(ctx context.Context, userID string, property string) ([]core.Record, error) {
	query := `SELECT id, user_id, property, date, status, created_at FROM records WHERE user_id = ?`
	args := []any{userID}
	if property != "" {
		query += ` AND property = ?`
		args = append(args, property)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	byID := make(map[int64]*core.Record)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
		byID[rec.ID] = &records[len(records)-1]
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	if err := r.loadFields(ctx, byID); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateRecordStatus flips the payment status. Amount fields stay
// immutable; status is the only mutable attribute of a record.
func (r *Repository) UpdateRecordStatus(ctx context.Context, userID string, id int64, status core.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET status = ? WHERE id = ? AND user_id = ?`,
		string(status), id, userID,
	)
	if err != nil {
		return fmt.Errorf("update record status: %w", err)
	}
	return requireRow(res)
}

// DeleteRecord removes the caller's record and its fields.
func (r *Repository) DeleteRecord(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*core.Record, error) {
	var (
		rec     core.Record
		dateStr string
		status  string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Property, &dateStr, &status, &rec.CreatedAt); err != nil {
		return nil, err
	}
	d, err := core.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	rec.Date = d
	rec.Status = core.NormalizeStatus(core.Status(status))
	rec.Fields = make(map[string]core.Money)
	return &rec, nil
}

func (r *Repository) loadFields(ctx context.Context, byID map[int64]*core.Record) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]any, 0, len(byID))
	placeholders := ""
	for id := range byID {
		if placeholders != "" {
			placeholders += ","
		}
		placeholders += "?"
		ids = append(ids, id)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT record_id, field_key, amount_cents FROM record_fields WHERE record_id IN (`+placeholders+`)`,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("load record fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recordID int64
			key      string
			cents    int64
		)
		if err := rows.Scan(&recordID, &key, &cents); err != nil {
			return fmt.Errorf("scan record field: %w", err)
		}
		if rec, ok := byID[recordID]; ok {
			rec.Fields[key] = core.Money{Cents: cents}
		}
	}
	return rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFoundOrForbidden
	}
	return nil
}
