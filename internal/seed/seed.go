package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/tenderhub/internal/markup"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureParameters(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureDefaultTactic(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// ensureParameters inserts missing standard parameters. Existing rows keep
// whatever values an administrator has set.
func ensureParameters(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	for _, p := range Parameters {
		var label string
		err := tx.QueryRowContext(ctx, `SELECT label FROM markup_parameters WHERE key = ?`, p.Key).Scan(&label)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO markup_parameters (key, label, default_value, sort_order)
				VALUES (?, ?, ?, ?)
			`, p.Key, p.Label, p.DefaultValue, p.SortOrder); err != nil {
				return fmt.Errorf("insert markup parameter %q: %w", p.Key, err)
			}
			stats.Inserts++
		case err != nil:
			return fmt.Errorf("check markup parameter %q: %w", p.Key, err)
		case label == "":
			if _, err := tx.ExecContext(ctx, `UPDATE markup_parameters SET label = ? WHERE key = ?`, p.Label, p.Key); err != nil {
				return fmt.Errorf("label markup parameter %q: %w", p.Key, err)
			}
			stats.Updates++
		}
	}
	return nil
}

func ensureDefaultTactic(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM markup_tactics WHERE is_global = 1 LIMIT 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check global tactic existence: %w", err)
	}
	if exists {
		return nil
	}

	t := DefaultTactic()
	if err := t.Validate(); err != nil {
		return fmt.Errorf("default tactic: %w", err)
	}
	doc, err := markup.EncodeTactic(t)
	if err != nil {
		return fmt.Errorf("encode default tactic: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO markup_tactics (name, is_global, document, updated_at)
		VALUES (?, ?, ?, ?)
	`, t.Name, true, string(doc), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("insert default tactic: %w", err)
	}
	stats.Inserts++
	return nil
}
