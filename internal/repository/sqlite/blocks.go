package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"atelier/internal/domain"
)

// ListBlocks returns the blocks of one space with their contents
func (r *Repository) ListBlocks(ctx context.Context, spaceID string) ([]domain.Block, error) {
	blocks, err := queryBlocks(ctx, r.db, `SELECT `+blockColumns+` FROM blocks WHERE space_id = ? ORDER BY created_at, id`, spaceID)
	if err != nil {
		return nil, err
	}

	contents, err := queryContents(ctx, r.db, `
		SELECT c.id, c.block_id, c.type, c.body, c.metadata, c.ord, c.created_at
		FROM block_contents c JOIN blocks b ON b.id = c.block_id
		WHERE b.space_id = ?
		ORDER BY c.block_id, c.ord, c.created_at
	`, spaceID)
	if err != nil {
		return nil, err
	}

	for i := range blocks {
		blocks[i].Contents = contents[blocks[i].ID]
	}
	return blocks, nil
}

// ListAllBlocks returns every block without contents, for graph-wide views
func (r *Repository) ListAllBlocks(ctx context.Context) ([]domain.Block, error) {
	return queryBlocks(ctx, r.db, `SELECT `+blockColumns+` FROM blocks ORDER BY space_id, created_at, id`)
}

// GetBlock retrieves a single block by ID with its contents
func (r *Repository) GetBlock(ctx context.Context, id string) (*domain.Block, error) {
	block, err := scanBlock(r.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, notFound("block", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query block: %w", err)
	}

	contents, err := queryContents(ctx, r.db, `
		SELECT id, block_id, type, body, metadata, ord, created_at
		FROM block_contents WHERE block_id = ?
		ORDER BY ord, created_at
	`, id)
	if err != nil {
		return nil, err
	}
	block.Contents = contents[id]
	return &block, nil
}

// CreateBlock inserts a new block and its contents
func (r *Repository) CreateBlock(ctx context.Context, block *domain.Block) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertBlock(ctx, tx, block, false); err != nil {
		return err
	}
	for i := range block.Contents {
		block.Contents[i].BlockID = block.ID
		if err := insertContent(ctx, tx, &block.Contents[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateBlock replaces the editable fields of a block. Contents and global
// coordinates are left untouched.
func (r *Repository) UpdateBlock(ctx context.Context, block *domain.Block) error {
	block.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE blocks SET
			space_id = ?, x = ?, y = ?, shape = ?, color = ?,
			width = ?, height = ?, title = ?, updated_at = ?
		WHERE id = ?
	`, block.SpaceID, block.X, block.Y, string(block.Shape), string(block.Color),
		block.Width, block.Height, stringToNull(block.Title), formatTime(block.UpdatedAt), block.ID)
	if err != nil {
		return writeError("update block", err)
	}
	return expectAffected(res, "block", block.ID)
}

// DeleteBlock removes a block with its contents and links
func (r *Repository) DeleteBlock(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	return expectAffected(res, "block", id)
}

// AddContent appends a content item to a block
func (r *Repository) AddContent(ctx context.Context, content *domain.Content) error {
	if content.Order == 0 {
		var next int
		if err := r.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(ord), -1) + 1 FROM block_contents WHERE block_id = ?`,
			content.BlockID,
		).Scan(&next); err != nil {
			return fmt.Errorf("failed to compute content order: %w", err)
		}
		content.Order = next
	}
	return insertContent(ctx, r.db, content)
}

// DeleteContent removes one content item from a block
func (r *Repository) DeleteContent(ctx context.Context, blockID, contentID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM block_contents WHERE id = ? AND block_id = ?`, contentID, blockID)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return expectAffected(res, "content", contentID)
}

func insertBlock(ctx context.Context, q querier, block *domain.Block, upsert bool) error {
	block.ApplyDefaults()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}
	if block.UpdatedAt.IsZero() {
		block.UpdatedAt = block.CreatedAt
	}

	query := `
		INSERT INTO blocks (` + blockColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if upsert {
		query += `
		ON CONFLICT(id) DO UPDATE SET
			space_id = excluded.space_id,
			x = excluded.x,
			y = excluded.y,
			x_global = COALESCE(excluded.x_global, blocks.x_global),
			y_global = COALESCE(excluded.y_global, blocks.y_global),
			shape = excluded.shape,
			color = excluded.color,
			width = excluded.width,
			height = excluded.height,
			title = excluded.title,
			updated_at = excluded.updated_at
		`
	}

	if _, err := q.ExecContext(ctx, query, blockArgs(block)...); err != nil {
		return writeError("insert block", err)
	}
	return nil
}

func insertContent(ctx context.Context, q querier, content *domain.Content) error {
	if content.CreatedAt.IsZero() {
		content.CreatedAt = time.Now().UTC()
	}
	metadata, err := marshalToNull(content.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal content metadata: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO block_contents (id, block_id, type, body, metadata, ord, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, content.ID, content.BlockID, string(content.Type), content.Body, metadata, content.Order, formatTime(content.CreatedAt))
	if err != nil {
		return writeError("insert content", err)
	}
	return nil
}

func queryBlocks(ctx context.Context, q querier, query string, args ...any) ([]domain.Block, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	blocks := make([]domain.Block, 0)
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocks: %w", err)
	}
	return blocks, nil
}

// queryContents groups content rows by block id
func queryContents(ctx context.Context, q querier, query string, args ...any) (map[string][]domain.Content, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contents: %w", err)
	}
	defer rows.Close()

	byBlock := make(map[string][]domain.Content)
	for rows.Next() {
		var (
			c         domain.Content
			typ       string
			metadata  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.BlockID, &typ, &c.Body, &metadata, &c.Order, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		c.Type = domain.ContentType(typ)
		c.CreatedAt = parseTime(createdAt)
		if err := unmarshalJSONField(metadata, &c.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content metadata: %w", err)
		}
		byBlock[c.BlockID] = append(byBlock[c.BlockID], c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contents: %w", err)
	}
	return byBlock, nil
}
