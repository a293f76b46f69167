package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Load reads every user's state and the registered set.
func (r *SQLiteRepo) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{States: make(map[int64]domain.DoseState)}

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, morning_taken, lunch_taken,
		       morning_reminder_count, lunch_reminder_count, last_reset
		FROM dose_states`)
	if err != nil {
		return snap, fmt.Errorf("query states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID     int64
			morningInt int
			lunchInt   int
			st         domain.DoseState
		)
		if err := rows.Scan(
			&userID, &morningInt, &lunchInt,
			&st.MorningReminderCount, &st.LunchReminderCount, &st.LastResetDate,
		); err != nil {
			return snap, fmt.Errorf("scan state: %w", err)
		}
		st.MorningTaken = morningInt != 0
		st.LunchTaken = lunchInt != 0
		snap.States[userID] = st
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	userRows, err := r.db.QueryContext(ctx, `SELECT user_id FROM registered_users ORDER BY user_id ASC`)
	if err != nil {
		return snap, fmt.Errorf("query registered users: %w", err)
	}
	defer userRows.Close()

	for userRows.Next() {
		var id int64
		if err := userRows.Scan(&id); err != nil {
			return snap, fmt.Errorf("scan registered user: %w", err)
		}
		snap.Registered = append(snap.Registered, id)
	}
	return snap, userRows.Err()
}

// Save writes the whole snapshot in a single transaction.
// Users are never unregistered, so the registered set is only ever extended.
func (r *SQLiteRepo) Save(ctx context.Context, snap Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, 0, len(snap.States))
	for id := range snap.States {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		st := snap.States[id]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dose_states (
				user_id, morning_taken, lunch_taken,
				morning_reminder_count, lunch_reminder_count, last_reset
			) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				morning_taken          = excluded.morning_taken,
				lunch_taken            = excluded.lunch_taken,
				morning_reminder_count = excluded.morning_reminder_count,
				lunch_reminder_count   = excluded.lunch_reminder_count,
				last_reset             = excluded.last_reset`,
			id, boolToInt(st.MorningTaken), boolToInt(st.LunchTaken),
			st.MorningReminderCount, st.LunchReminderCount, st.LastResetDate,
		); err != nil {
			return fmt.Errorf("upsert state %d: %w", id, err)
		}
	}

	now := time.Now().UTC().Unix()
	for _, id := range snap.Registered {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO registered_users (user_id, created_at) VALUES (?, ?)
			ON CONFLICT(user_id) DO NOTHING`,
			id, now,
		); err != nil {
			return fmt.Errorf("register user %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
