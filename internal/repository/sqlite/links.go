package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"atelier/internal/domain"
)

// GetLink retrieves a single link by ID
func (r *Repository) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	link, err := scanLink(r.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, notFound("link", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query link: %w", err)
	}
	return &link, nil
}

// CreateLink inserts a new link
func (r *Repository) CreateLink(ctx context.Context, link *domain.Link) error {
	return insertLink(ctx, r.db, link, false)
}

// UpdateLink replaces type, weight and validation of a link
func (r *Repository) UpdateLink(ctx context.Context, link *domain.Link) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE links SET type = ?, weight = ?, validation = ?
		WHERE id = ?
	`, string(link.Type), link.Weight, string(link.Validation), link.ID)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}
	return expectAffected(res, "link", link.ID)
}

// DeleteLink removes a link
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return expectAffected(res, "link", id)
}

// ListLinks returns every link touching a block of the space, including
// links whose other endpoint lives in another space.
func (r *Repository) ListLinks(ctx context.Context, spaceID string) ([]domain.Link, error) {
	return queryLinks(ctx, r.db, `
		SELECT `+linkColumns+` FROM links
		WHERE source_id IN (SELECT id FROM blocks WHERE space_id = ?)
		   OR target_id IN (SELECT id FROM blocks WHERE space_id = ?)
		ORDER BY created_at, id
	`, spaceID, spaceID)
}

// ListActiveLinks returns every link that was not rejected
func (r *Repository) ListActiveLinks(ctx context.Context) ([]domain.Link, error) {
	return queryLinks(ctx, r.db, `
		SELECT `+linkColumns+` FROM links
		WHERE validation != ?
		ORDER BY created_at, id
	`, string(domain.ValidationRejected))
}

func insertLink(ctx context.Context, q querier, link *domain.Link, upsert bool) error {
	link.ApplyDefaults()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO links (` + linkColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if upsert {
		query += `
		ON CONFLICT(id) DO UPDATE SET
			space_id = excluded.space_id,
			source_id = excluded.source_id,
			target_id = excluded.target_id,
			type = excluded.type,
			weight = excluded.weight,
			validation = excluded.validation
		`
	}

	if _, err := q.ExecContext(ctx, query, linkArgs(link)...); err != nil {
		return writeError("insert link", err)
	}
	return nil
}

func queryLinks(ctx context.Context, q querier, query string, args ...any) ([]domain.Link, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	links := make([]domain.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}
	return links, nil
}
