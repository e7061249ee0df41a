package repository

import (
	"context"

	"atelier/internal/domain"
)

// Repository defines the interface for canvas data access.
// Lookups of missing entities return an error wrapping domain.ErrNotFound.
type Repository interface {
	// Spaces
	ListSpaces(ctx context.Context) ([]domain.Space, error)
	GetSpace(ctx context.Context, id string) (*domain.Space, error)
	CreateSpace(ctx context.Context, space *domain.Space) error
	UpdateSpace(ctx context.Context, space *domain.Space) error
	DeleteSpace(ctx context.Context, id string) error

	// Blocks
	ListBlocks(ctx context.Context, spaceID string) ([]domain.Block, error)
	ListAllBlocks(ctx context.Context) ([]domain.Block, error)
	GetBlock(ctx context.Context, id string) (*domain.Block, error)
	CreateBlock(ctx context.Context, block *domain.Block) error
	UpdateBlock(ctx context.Context, block *domain.Block) error
	DeleteBlock(ctx context.Context, id string) error

	// Block contents
	AddContent(ctx context.Context, content *domain.Content) error
	DeleteContent(ctx context.Context, blockID, contentID string) error

	// Links
	GetLink(ctx context.Context, id string) (*domain.Link, error)
	CreateLink(ctx context.Context, link *domain.Link) error
	UpdateLink(ctx context.Context, link *domain.Link) error
	DeleteLink(ctx context.Context, id string) error
	ListLinks(ctx context.Context, spaceID string) ([]domain.Link, error)
	ListActiveLinks(ctx context.Context) ([]domain.Link, error)

	// Views
	GlobalGraph(ctx context.Context, filter domain.GraphFilter) (*domain.GlobalGraph, error)

	// Layout persistence
	SavePositions(ctx context.Context, scope domain.Scope, positions []domain.BlockPosition) error

	// Bulk operations
	ImportFragment(ctx context.Context, fragment *domain.Fragment) error
	ExportFragment(ctx context.Context, spaceID string) (*domain.Fragment, error)

	// Close releases resources
	Close() error
}
