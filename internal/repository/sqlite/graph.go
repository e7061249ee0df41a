package sqlite

import (
	"context"
	"fmt"
	"slices"
	"time"

	"atelier/internal/domain"
)

// GlobalGraph assembles the cross-space view. Links are kept only when both
// endpoints survive the block filters.
func (r *Repository) GlobalGraph(ctx context.Context, filter domain.GraphFilter) (*domain.GlobalGraph, error) {
	graph := domain.NewGlobalGraph()

	spaces, err := r.ListSpaces(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range spaces {
		if len(filter.SpaceIDs) == 0 || slices.Contains(filter.SpaceIDs, s.ID) {
			graph.Spaces = append(graph.Spaces, s)
		}
	}

	blocks, err := r.ListAllBlocks(ctx)
	if err != nil {
		return nil, err
	}
	spaceOf := make(map[string]string, len(blocks))
	for i := range blocks {
		b := &blocks[i]
		if !filter.MatchBlock(b) {
			continue
		}
		spaceOf[b.ID] = b.SpaceID
		gx, gy := b.GlobalPosition()
		graph.Blocks = append(graph.Blocks, domain.GlobalBlock{Block: *b, GX: gx, GY: gy})
	}

	links, err := queryLinks(ctx, r.db, `SELECT `+linkColumns+` FROM links ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		src, ok := spaceOf[l.SourceID]
		if !ok {
			continue
		}
		dst, ok := spaceOf[l.TargetID]
		if !ok {
			continue
		}
		gl := domain.GlobalLink{
			Link:          l,
			SourceSpaceID: src,
			TargetSpaceID: dst,
			InterSpace:    src != dst,
		}
		if filter.MatchLink(&gl) {
			graph.Links = append(graph.Links, gl)
		}
	}

	return graph, nil
}

// SavePositions updates one coordinate pair for multiple blocks
func (r *Repository) SavePositions(ctx context.Context, scope domain.Scope, positions []domain.BlockPosition) error {
	var query string
	switch scope {
	case domain.ScopeLocal:
		query = `UPDATE blocks SET x = ?, y = ?, updated_at = ? WHERE id = ?`
	case domain.ScopeGlobal:
		query = `UPDATE blocks SET x_global = ?, y_global = ?, updated_at = ? WHERE id = ?`
	default:
		return fmt.Errorf("unknown scope %q: %w", scope, domain.ErrInvalid)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for _, pos := range positions {
		if _, err := stmt.ExecContext(ctx, pos.X, pos.Y, now, pos.BlockID); err != nil {
			return fmt.Errorf("failed to update position for %s: %w", pos.BlockID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ImportFragment upserts a space with its blocks, contents and links.
// Contents of imported blocks are replaced.
func (r *Repository) ImportFragment(ctx context.Context, fragment *domain.Fragment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if fragment.Space != nil {
		if err := insertSpace(ctx, tx, fragment.Space, true); err != nil {
			return err
		}
	}

	for i := range fragment.Blocks {
		block := &fragment.Blocks[i]
		if err := insertBlock(ctx, tx, block, true); err != nil {
			return fmt.Errorf("block %s: %w", block.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM block_contents WHERE block_id = ?`, block.ID); err != nil {
			return fmt.Errorf("failed to clear contents of %s: %w", block.ID, err)
		}
		for j := range block.Contents {
			block.Contents[j].BlockID = block.ID
			if err := insertContent(ctx, tx, &block.Contents[j]); err != nil {
				return fmt.Errorf("block %s: %w", block.ID, err)
			}
		}
	}

	for i := range fragment.Links {
		if err := insertLink(ctx, tx, &fragment.Links[i], true); err != nil {
			return fmt.Errorf("link %s: %w", fragment.Links[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ExportFragment returns one space with its blocks and links
func (r *Repository) ExportFragment(ctx context.Context, spaceID string) (*domain.Fragment, error) {
	space, err := r.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	blocks, err := r.ListBlocks(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	links, err := r.ListLinks(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	fragment := domain.NewFragment()
	fragment.Space = space
	fragment.Blocks = blocks
	fragment.Links = links
	return fragment, nil
}
