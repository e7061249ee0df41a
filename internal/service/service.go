package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"atelier/internal/codec"
	"atelier/internal/domain"
	"atelier/internal/repository"
)

// GraphService provides business logic for canvas operations
type GraphService struct {
	repo     repository.Repository
	eventBus *EventBus
	logger   *log.Logger
}

// NewGraphService creates a new graph service
func NewGraphService(repo repository.Repository, eventBus *EventBus, logger *log.Logger) *GraphService {
	return &GraphService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// ListSpaces returns every space
func (s *GraphService) ListSpaces(ctx context.Context) ([]domain.Space, error) {
	return s.repo.ListSpaces(ctx)
}

// GetSpace retrieves a single space by ID
func (s *GraphService) GetSpace(ctx context.Context, id string) (*domain.Space, error) {
	return s.repo.GetSpace(ctx, id)
}

// CreateSpace creates a new space
func (s *GraphService) CreateSpace(ctx context.Context, req *SpaceRequest) (*domain.Space, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	space := domain.NewSpace(uuid.NewString(), req.Name)
	space.Theme = req.Theme
	if req.Color != "" {
		space.Color = domain.Color(req.Color)
	}

	if err := s.repo.CreateSpace(ctx, space); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventSpaceCreated,
		Payload: map[string]string{"space_id": space.ID},
	})

	return space, nil
}

// UpdateSpace replaces the name, theme and color of a space
func (s *GraphService) UpdateSpace(ctx context.Context, id string, req *SpaceRequest) (*domain.Space, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	space, err := s.repo.GetSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	space.Name = req.Name
	space.Theme = req.Theme
	if req.Color != "" {
		space.Color = domain.Color(req.Color)
	}

	if err := s.repo.UpdateSpace(ctx, space); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventSpaceUpdated,
		Payload: map[string]string{"space_id": id},
	})

	return space, nil
}

// DeleteSpace removes a space with its blocks and their links
func (s *GraphService) DeleteSpace(ctx context.Context, id string) error {
	if err := s.repo.DeleteSpace(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventSpaceDeleted,
		Payload: map[string]string{"space_id": id},
	})

	return nil
}

// ListBlocks returns the blocks of a space with their contents
func (s *GraphService) ListBlocks(ctx context.Context, spaceID string) ([]domain.Block, error) {
	if _, err := s.repo.GetSpace(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.repo.ListBlocks(ctx, spaceID)
}

// GetBlock retrieves a single block by ID
func (s *GraphService) GetBlock(ctx context.Context, id string) (*domain.Block, error) {
	return s.repo.GetBlock(ctx, id)
}

// CreateBlock creates a block, and its initial contents, in an existing space
func (s *GraphService) CreateBlock(ctx context.Context, req *BlockRequest) (*domain.Block, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.requireSpace(ctx, req.SpaceID); err != nil {
		return nil, err
	}

	block := domain.NewBlock(uuid.NewString(), req.SpaceID, req.X, req.Y)
	block.Shape = domain.Shape(req.Shape)
	block.Color = domain.Color(req.Color)
	block.Width = req.Width
	block.Height = req.Height
	block.Title = req.Title
	block.ApplyDefaults()

	for i := range req.Contents {
		content := newContent(block.ID, &req.Contents[i])
		if content.Order == 0 {
			content.Order = i
		}
		block.Contents = append(block.Contents, content)
	}

	if err := s.repo.CreateBlock(ctx, block); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventBlockCreated,
		Payload: map[string]string{"block_id": block.ID, "space_id": block.SpaceID},
	})

	return block, nil
}

// UpdateBlock applies the non-nil fields of an update
func (s *GraphService) UpdateBlock(ctx context.Context, id string, update *BlockUpdate) (*domain.Block, error) {
	if err := validateRequest(update); err != nil {
		return nil, err
	}

	block, err := s.repo.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.X != nil {
		block.X = *update.X
	}
	if update.Y != nil {
		block.Y = *update.Y
	}
	if update.Shape != nil {
		block.Shape = domain.Shape(*update.Shape)
	}
	if update.Color != nil {
		block.Color = domain.Color(*update.Color)
	}
	if update.Width != nil {
		block.Width = *update.Width
	}
	if update.Height != nil {
		block.Height = *update.Height
	}
	if update.Title != nil {
		block.Title = *update.Title
	}
	block.ApplyDefaults()

	if err := s.repo.UpdateBlock(ctx, block); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventBlockUpdated,
		Payload: map[string]string{"block_id": id},
	})

	return block, nil
}

// DeleteBlock removes a block, its contents and its links
func (s *GraphService) DeleteBlock(ctx context.Context, id string) error {
	if err := s.repo.DeleteBlock(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventBlockDeleted,
		Payload: map[string]string{"block_id": id},
	})

	return nil
}

// AddContent appends a content item to a block
func (s *GraphService) AddContent(ctx context.Context, blockID string, req *ContentRequest) (*domain.Content, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetBlock(ctx, blockID); err != nil {
		return nil, err
	}

	content := newContent(blockID, req)
	if err := s.repo.AddContent(ctx, &content); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventBlockUpdated,
		Payload: map[string]string{"block_id": blockID, "content_id": content.ID},
	})

	return &content, nil
}

// DeleteContent removes one content item from a block
func (s *GraphService) DeleteContent(ctx context.Context, blockID, contentID string) error {
	if err := s.repo.DeleteContent(ctx, blockID, contentID); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventBlockUpdated,
		Payload: map[string]string{"block_id": blockID, "content_id": contentID},
	})

	return nil
}

// GetLink retrieves a single link by ID
func (s *GraphService) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	return s.repo.GetLink(ctx, id)
}

// ListLinks returns every link touching a block of the space
func (s *GraphService) ListLinks(ctx context.Context, spaceID string) ([]domain.Link, error) {
	if _, err := s.repo.GetSpace(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.repo.ListLinks(ctx, spaceID)
}

// CreateLink connects two existing blocks. A link between blocks of the
// same space belongs to that space unless the request names one.
func (s *GraphService) CreateLink(ctx context.Context, req *LinkRequest) (*domain.Link, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	source, err := s.requireBlock(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.requireBlock(ctx, req.TargetID)
	if err != nil {
		return nil, err
	}

	link := domain.NewLink(uuid.NewString(), source.ID, target.ID)
	link.SpaceID = req.SpaceID
	if link.SpaceID == "" && source.SpaceID == target.SpaceID {
		link.SpaceID = source.SpaceID
	}
	if req.Type != "" {
		link.Type = domain.LinkType(req.Type)
	}
	if req.Weight != nil {
		link.Weight = *req.Weight
	}
	if req.Validation != "" {
		link.Validation = domain.Validation(req.Validation)
	}
	link.ApplyDefaults()

	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventLinkCreated,
		Payload: map[string]string{"link_id": link.ID, "source_id": link.SourceID, "target_id": link.TargetID},
	})

	return link, nil
}

// UpdateLink applies the non-nil fields of an update
func (s *GraphService) UpdateLink(ctx context.Context, id string, update *LinkUpdate) (*domain.Link, error) {
	if err := validateRequest(update); err != nil {
		return nil, err
	}

	link, err := s.repo.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Type != nil {
		link.Type = domain.LinkType(*update.Type)
	}
	if update.Weight != nil {
		link.Weight = *update.Weight
	}
	if update.Validation != nil {
		link.Validation = domain.Validation(*update.Validation)
	}
	link.ApplyDefaults()

	if err := s.repo.UpdateLink(ctx, link); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventLinkUpdated,
		Payload: map[string]string{"link_id": id},
	})

	return link, nil
}

// DeleteLink removes a link
func (s *GraphService) DeleteLink(ctx context.Context, id string) error {
	if err := s.repo.DeleteLink(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventLinkDeleted,
		Payload: map[string]string{"link_id": id},
	})

	return nil
}

// GlobalGraph returns the filtered cross-space view
func (s *GraphService) GlobalGraph(ctx context.Context, filter domain.GraphFilter) (*domain.GlobalGraph, error) {
	if filter.MinWeight < 0 {
		return nil, fmt.Errorf("%w: min_weight must not be negative", domain.ErrInvalid)
	}
	return s.repo.GlobalGraph(ctx, filter)
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	SpaceID      string `json:"space_id"`
	Blocks       int    `json:"blocks"`
	Links        int    `json:"links"`
	SkippedLinks int    `json:"skipped_links"`
	Format       string `json:"format"`
}

// Import parses a fragment and merges it into a space. Blocks and links
// without an id get a fresh one; links whose endpoints are neither in the
// fragment nor already stored are skipped.
func (s *GraphService) Import(ctx context.Context, spaceID string, r io.Reader, format string) (*ImportResult, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}

	fragment, err := c.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}

	if fragment.Space != nil {
		fragment.Space.ID = spaceID
		if fragment.Space.Name == "" {
			return nil, fmt.Errorf("%w: space: name is required", domain.ErrInvalid)
		}
		if fragment.Space.Color == "" {
			fragment.Space.Color = domain.ColorGreen
		}
	} else if err := s.requireSpace(ctx, spaceID); err != nil {
		return nil, err
	}

	known, err := s.knownBlockIDs(ctx)
	if err != nil {
		return nil, err
	}

	for i := range fragment.Blocks {
		block := &fragment.Blocks[i]
		if block.ID == "" {
			block.ID = uuid.NewString()
		}
		block.SpaceID = spaceID
		block.ApplyDefaults()
		if err := checkBlock(block); err != nil {
			return nil, err
		}
		for j := range block.Contents {
			if block.Contents[j].ID == "" {
				block.Contents[j].ID = uuid.NewString()
			}
			if !block.Contents[j].Type.Valid() {
				return nil, fmt.Errorf("%w: block %s: unknown content type %q", domain.ErrInvalid, block.ID, block.Contents[j].Type)
			}
		}
		known[block.ID] = true
	}

	links := fragment.Links[:0]
	skipped := 0
	for _, link := range fragment.Links {
		if !known[link.SourceID] || !known[link.TargetID] || link.SourceID == link.TargetID {
			skipped++
			continue
		}
		if link.ID == "" {
			link.ID = uuid.NewString()
		}
		if link.SpaceID == "" {
			link.SpaceID = spaceID
		}
		link.ApplyDefaults()
		if err := checkLink(&link); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	fragment.Links = links

	if err := s.repo.ImportFragment(ctx, fragment); err != nil {
		return nil, err
	}

	result := &ImportResult{
		SpaceID:      spaceID,
		Blocks:       len(fragment.Blocks),
		Links:        len(fragment.Links),
		SkippedLinks: skipped,
		Format:       c.Format(),
	}

	if skipped > 0 {
		s.logger.Warn("import skipped links with unknown endpoints", "space", spaceID, "skipped", skipped)
	}

	s.eventBus.Publish(Event{
		Type:    EventFragmentImported,
		Payload: result,
	})

	return result, nil
}

// Export writes one space with its blocks and links
func (s *GraphService) Export(ctx context.Context, spaceID string, w io.Writer, format string) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}

	fragment, err := s.repo.ExportFragment(ctx, spaceID)
	if err != nil {
		return err
	}

	return c.Export(fragment, w)
}

func (s *GraphService) requireSpace(ctx context.Context, id string) error {
	if _, err := s.repo.GetSpace(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: space %s does not exist", domain.ErrInvalid, id)
		}
		return err
	}
	return nil
}

func (s *GraphService) requireBlock(ctx context.Context, id string) (*domain.Block, error) {
	block, err := s.repo.GetBlock(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: block %s does not exist", domain.ErrInvalid, id)
		}
		return nil, err
	}
	return block, nil
}

func (s *GraphService) knownBlockIDs(ctx context.Context) (map[string]bool, error) {
	blocks, err := s.repo.ListAllBlocks(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		known[b.ID] = true
	}
	return known, nil
}

func newContent(blockID string, req *ContentRequest) domain.Content {
	return domain.Content{
		ID:        uuid.NewString(),
		BlockID:   blockID,
		Type:      domain.ContentType(req.Type),
		Body:      req.Body,
		Metadata:  req.Metadata,
		Order:     req.Order,
		CreatedAt: time.Now().UTC(),
	}
}

// Validation helpers for imported entities, which bypass request structs

func checkBlock(block *domain.Block) error {
	if !block.Shape.Valid() {
		return fmt.Errorf("%w: block %s: unknown shape %q", domain.ErrInvalid, block.ID, block.Shape)
	}
	if !block.Color.Valid() {
		return fmt.Errorf("%w: block %s: unknown color %q", domain.ErrInvalid, block.ID, block.Color)
	}
	return nil
}

func checkLink(link *domain.Link) error {
	if !link.Type.Valid() {
		return fmt.Errorf("%w: link %s: unknown type %q", domain.ErrInvalid, link.ID, link.Type)
	}
	if !link.Validation.Valid() {
		return fmt.Errorf("%w: link %s: unknown validation %q", domain.ErrInvalid, link.ID, link.Validation)
	}
	if link.Weight < 0 {
		return fmt.Errorf("%w: link %s: weight must not be negative", domain.ErrInvalid, link.ID)
	}
	return nil
}
