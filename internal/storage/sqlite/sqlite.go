// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
//
// The store persists whole ledger snapshots: a save replaces the previous
// state inside one transaction. Data volumes of a personal expense tracker
// are small enough that full replacement is cheaper than diffing.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/hisaab-app/hisaab/internal/models"
	"github.com/hisaab-app/hisaab/internal/storage"
)

const activeGroupKey = "active_group_id"

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path. It creates
// the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the persisted state with the given snapshot inside
// a single transaction.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children first to satisfy foreign keys.
	for _, table := range []string{"expense_splits", "expenses", "group_members", "groups", "users", "app_state"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, u := range snap.Users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, email, avatar, password_hash, created_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Name, u.Email, nullable(u.Avatar), u.PasswordHash, u.CreatedAt, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
	}

	for i, g := range snap.Groups {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO groups (id, name, description, leader_id, color, icon, created_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.Name, g.Description, g.LeaderID, g.Color, g.Icon, g.CreatedAt, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		for j, memberID := range g.MemberIDs {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO group_members (group_id, user_id, position) VALUES (?, ?, ?)",
				g.ID, memberID, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}
	}

	for i, e := range snap.Expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, title, amount, category, paid_by, date, notes, receipt, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.GroupID, e.Title, e.Amount, string(e.Category), e.PaidBy, e.Date,
			nullable(e.Notes), nullable(e.Receipt), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		for j, userID := range e.SplitBetween {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO expense_splits (expense_id, user_id, position) VALUES (?, ?, ?)",
				e.ID, userID, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert expense split: %w", err)
			}
		}
	}

	if snap.ActiveGroupID != "" {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO app_state (key, value) VALUES (?, ?)",
			activeGroupKey, snap.ActiveGroupID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert app state: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadSnapshot reconstructs the last persisted ledger state. An empty
// database yields an empty snapshot.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, avatar, password_hash, created_at FROM users ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		var avatar sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &avatar, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Avatar = avatar.String
		snap.Users = append(snap.Users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	groupRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, leader_id, color, icon, created_at FROM groups ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer groupRows.Close()

	for groupRows.Next() {
		var g models.Group
		if err := groupRows.Scan(&g.ID, &g.Name, &g.Description, &g.LeaderID, &g.Color, &g.Icon, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		g.MemberIDs, err = s.listIDs(ctx,
			"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY position", g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load group members: %w", err)
		}
		snap.Groups = append(snap.Groups, g)
	}
	if err := groupRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	expenseRows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, title, amount, category, paid_by, date, notes, receipt FROM expenses ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer expenseRows.Close()

	for expenseRows.Next() {
		var e models.Expense
		var category string
		var notes, receipt sql.NullString
		if err := expenseRows.Scan(&e.ID, &e.GroupID, &e.Title, &e.Amount, &category, &e.PaidBy, &e.Date, &notes, &receipt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Category = models.Category(category)
		e.Notes = notes.String
		e.Receipt = receipt.String
		e.SplitBetween, err = s.listIDs(ctx,
			"SELECT user_id FROM expense_splits WHERE expense_id = ? ORDER BY position", e.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load expense splits: %w", err)
		}
		snap.Expenses = append(snap.Expenses, e)
	}
	if err := expenseRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	var active string
	err = s.db.QueryRowContext(ctx,
		"SELECT value FROM app_state WHERE key = ?", activeGroupKey,
	).Scan(&active)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load app state: %w", err)
	}
	snap.ActiveGroupID = active

	return snap, nil
}

// listIDs runs a single-column id query and collects the results in order.
func (s *SQLiteStore) listIDs(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// nullable maps an empty string to NULL for optional text columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
