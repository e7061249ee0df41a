package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"atelier/internal/domain"
	"atelier/internal/repository"

	_ "modernc.org/sqlite"
)

var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite repository. Use ":memory:" for a throwaway database.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; one pooled connection also keeps
	// per-connection pragmas and in-memory databases stable.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS spaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		theme TEXT,
		color TEXT NOT NULL DEFAULT 'green',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS blocks (
		id TEXT PRIMARY KEY,
		space_id TEXT NOT NULL,
		x REAL NOT NULL DEFAULT 0,
		y REAL NOT NULL DEFAULT 0,
		x_global REAL,
		y_global REAL,
		shape TEXT NOT NULL DEFAULT 'rounded-rect',
		color TEXT NOT NULL DEFAULT 'green',
		width REAL NOT NULL DEFAULT 200,
		height REAL NOT NULL DEFAULT 120,
		title TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (space_id) REFERENCES spaces(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS block_contents (
		id TEXT PRIMARY KEY,
		block_id TEXT NOT NULL,
		type TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		metadata TEXT,
		ord INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (block_id) REFERENCES blocks(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		space_id TEXT,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'simple',
		weight REAL NOT NULL DEFAULT 1.0,
		validation TEXT NOT NULL DEFAULT 'validated',
		created_at TEXT NOT NULL,
		FOREIGN KEY (space_id) REFERENCES spaces(id) ON DELETE SET NULL,
		FOREIGN KEY (source_id) REFERENCES blocks(id) ON DELETE CASCADE,
		FOREIGN KEY (target_id) REFERENCES blocks(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_blocks_space ON blocks(space_id);
	CREATE INDEX IF NOT EXISTS idx_contents_block ON block_contents(block_id, ord);
	CREATE INDEX IF NOT EXISTS idx_links_source ON links(source_id);
	CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_id);
	CREATE INDEX IF NOT EXISTS idx_links_validation ON links(validation);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// ============================================================================
// Spaces
// ============================================================================

// ListSpaces returns all spaces ordered by name
func (r *Repository) ListSpaces(ctx context.Context) ([]domain.Space, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, theme, color, created_at, updated_at
		FROM spaces ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query spaces: %w", err)
	}
	defer rows.Close()

	spaces := make([]domain.Space, 0)
	for rows.Next() {
		space, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan space: %w", err)
		}
		spaces = append(spaces, space)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spaces: %w", err)
	}
	return spaces, nil
}

// GetSpace retrieves a single space by ID
func (r *Repository) GetSpace(ctx context.Context, id string) (*domain.Space, error) {
	space, err := scanSpace(r.db.QueryRowContext(ctx, `
		SELECT id, name, theme, color, created_at, updated_at
		FROM spaces WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, notFound("space", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query space: %w", err)
	}
	return &space, nil
}

// CreateSpace inserts a new space
func (r *Repository) CreateSpace(ctx context.Context, space *domain.Space) error {
	return insertSpace(ctx, r.db, space, false)
}

// UpdateSpace replaces the editable fields of a space
func (r *Repository) UpdateSpace(ctx context.Context, space *domain.Space) error {
	space.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE spaces SET name = ?, theme = ?, color = ?, updated_at = ?
		WHERE id = ?
	`, space.Name, stringToNull(space.Theme), string(space.Color), formatTime(space.UpdatedAt), space.ID)
	if err != nil {
		return fmt.Errorf("failed to update space: %w", err)
	}
	return expectAffected(res, "space", space.ID)
}

// DeleteSpace removes a space with its blocks, contents and links
func (r *Repository) DeleteSpace(ctx context.Context, id string) error {
	// Blocks, contents and links will be deleted by CASCADE
	res, err := r.db.ExecContext(ctx, `DELETE FROM spaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete space: %w", err)
	}
	return expectAffected(res, "space", id)
}

func insertSpace(ctx context.Context, q querier, space *domain.Space, upsert bool) error {
	if space.CreatedAt.IsZero() {
		space.CreatedAt = time.Now().UTC()
	}
	if space.UpdatedAt.IsZero() {
		space.UpdatedAt = space.CreatedAt
	}

	query := `
		INSERT INTO spaces (id, name, theme, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if upsert {
		query += `
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			theme = excluded.theme,
			color = excluded.color,
			updated_at = excluded.updated_at
		`
	}

	_, err := q.ExecContext(ctx, query,
		space.ID, space.Name, stringToNull(space.Theme), string(space.Color),
		formatTime(space.CreatedAt), formatTime(space.UpdatedAt))
	if err != nil {
		return writeError("insert space", err)
	}
	return nil
}

func scanSpace(s scanner) (domain.Space, error) {
	var (
		space                domain.Space
		theme                sql.NullString
		color                string
		createdAt, updatedAt string
	)
	if err := s.Scan(&space.ID, &space.Name, &theme, &color, &createdAt, &updatedAt); err != nil {
		return domain.Space{}, err
	}
	space.Theme = nullToString(theme)
	space.Color = domain.Color(color)
	space.CreatedAt = parseTime(createdAt)
	space.UpdatedAt = parseTime(updatedAt)
	return space, nil
}
