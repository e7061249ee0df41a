package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"atelier/internal/domain"
	"atelier/internal/layout"
	"atelier/internal/metrics"
	"atelier/internal/repository"
)

// LayoutOptions configures a LayoutService
type LayoutOptions struct {
	Timeout       time.Duration
	Workers       int
	MaxConcurrent int64
	// Seed fixes the jitter of every run that does not pass its own
	Seed      *uint64
	MinWeight float64
	Local     layout.Profile
	Global    layout.Profile
}

// RunOptions adjusts a single layout run
type RunOptions struct {
	Seed      *uint64                 `json:"seed,omitempty"`
	Overrides *layout.ProfileOverride `json:"overrides,omitempty"`
}

// Outcome is the result of a persisted layout run
type Outcome struct {
	Scope   domain.Scope   `json:"scope"`
	SpaceID string         `json:"space_id,omitempty"`
	Seed    uint64         `json:"seed"`
	Summary string         `json:"summary"`
	Report  *layout.Report `json:"report"`
}

// LayoutService rearranges blocks with the force-directed engine
type LayoutService struct {
	repo     repository.Repository
	eventBus *EventBus
	metrics  *metrics.Registry
	logger   *log.Logger
	opts     LayoutOptions
	sem      *semaphore.Weighted

	mu     sync.RWMutex
	local  layout.Profile
	global layout.Profile
}

// NewLayoutService creates a layout service. Zero profiles fall back to the
// built-in presets.
func NewLayoutService(repo repository.Repository, eventBus *EventBus, reg *metrics.Registry, logger *log.Logger, opts LayoutOptions) *LayoutService {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Local.Iterations == 0 {
		opts.Local = layout.LocalProfile()
	}
	if opts.Global.Iterations == 0 {
		opts.Global = layout.GlobalProfile()
	}

	return &LayoutService{
		repo:     repo,
		eventBus: eventBus,
		metrics:  reg,
		logger:   logger,
		opts:     opts,
		sem:      semaphore.NewWeighted(opts.MaxConcurrent),
		local:    opts.Local,
		global:   opts.Global,
	}
}

// Profiles returns the profiles currently in effect
func (s *LayoutService) Profiles() (local, global layout.Profile) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.local, s.global
}

// SetProfiles swaps both profiles. Runs already in progress keep theirs.
func (s *LayoutService) SetProfiles(local, global layout.Profile) error {
	if err := local.Validate(); err != nil {
		return fmt.Errorf("local profile: %w", err)
	}
	if err := global.Validate(); err != nil {
		return fmt.Errorf("global profile: %w", err)
	}

	s.mu.Lock()
	s.local, s.global = local, global
	s.mu.Unlock()

	s.logger.Info("layout profiles reloaded",
		"local_iterations", local.Iterations, "global_iterations", global.Iterations)
	s.eventBus.Publish(Event{Type: EventProfilesReloaded})
	return nil
}

// RelayoutSpace rearranges the blocks of one space and stores x,y
func (s *LayoutService) RelayoutSpace(ctx context.Context, spaceID string, ro RunOptions) (*Outcome, error) {
	if _, err := s.repo.GetSpace(ctx, spaceID); err != nil {
		return nil, err
	}

	blocks, err := s.repo.ListBlocks(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.ListLinks(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	snap := layout.Snapshot{
		Nodes: make([]layout.SnapshotNode, 0, len(blocks)),
		Edges: snapshotEdges(links),
	}
	for i := range blocks {
		b := &blocks[i]
		snap.Nodes = append(snap.Nodes, layout.SnapshotNode{
			ID: b.ID, SpaceID: b.SpaceID, Label: b.DisplayName(), X: b.X, Y: b.Y, Width: b.Width, Height: b.Height,
		})
	}

	outcome, err := s.arrange(ctx, domain.ScopeLocal, snap, ro)
	if err != nil {
		return nil, err
	}
	outcome.SpaceID = spaceID
	outcome.Summary = outcome.Report.Summary()

	if err := s.persist(ctx, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// RelayoutGlobal positions every block across spaces and stores
// x_global,y_global. Blocks never placed globally start from x,y.
func (s *LayoutService) RelayoutGlobal(ctx context.Context, ro RunOptions) (*Outcome, error) {
	blocks, err := s.repo.ListAllBlocks(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.ListActiveLinks(ctx)
	if err != nil {
		return nil, err
	}

	snap := layout.Snapshot{
		Nodes: make([]layout.SnapshotNode, 0, len(blocks)),
		Edges: snapshotEdges(links),
	}
	for i := range blocks {
		b := &blocks[i]
		x, y := b.GlobalPosition()
		snap.Nodes = append(snap.Nodes, layout.SnapshotNode{
			ID: b.ID, SpaceID: b.SpaceID, Label: b.DisplayName(), X: x, Y: y, Width: b.Width, Height: b.Height,
		})
	}

	outcome, err := s.arrange(ctx, domain.ScopeGlobal, snap, ro)
	if err != nil {
		return nil, err
	}
	outcome.Summary = outcome.Report.GlobalSummary(snap.SpaceCount())

	if err := s.persist(ctx, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// arrange runs the engine under the concurrency bound and the run timeout.
// A run that outlives its deadline keeps its slot until it finishes but its
// result is dropped.
func (s *LayoutService) arrange(ctx context.Context, scope domain.Scope, snap layout.Snapshot, ro RunOptions) (*Outcome, error) {
	start := time.Now()
	label := string(scope)

	profile, err := s.profileFor(scope, ro.Overrides)
	if err != nil {
		s.metrics.RecordLayout(label, metrics.OutcomeError, time.Since(start), 0, 0)
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		s.metrics.RecordLayout(label, metrics.OutcomeError, time.Since(start), 0, 0)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}

	seed := s.seedFor(ro)

	runCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	if err := s.sem.Acquire(runCtx, 1); err != nil {
		s.metrics.RecordLayout(label, ctxOutcome(err), time.Since(start), 0, 0)
		return nil, fmt.Errorf("layout %s: waiting for a free slot: %w", scope, err)
	}

	result := make(chan *layout.Report, 1)
	go func() {
		defer s.sem.Release(1)
		s.metrics.LayoutRunsInFlight.Inc()
		defer s.metrics.LayoutRunsInFlight.Dec()

		result <- layout.Arrange(snap, profile,
			layout.WithSeed(seed),
			layout.WithWorkers(s.opts.Workers),
			layout.WithMinWeight(s.opts.MinWeight),
			layout.WithObserver(s.observer(scope)),
		)
	}()

	var report *layout.Report
	select {
	case report = <-result:
	case <-runCtx.Done():
		err := runCtx.Err()
		s.metrics.RecordLayout(label, ctxOutcome(err), time.Since(start), 0, len(snap.Nodes))
		s.logger.Warn("layout run abandoned", "scope", scope, "nodes", len(snap.Nodes), "err", err)
		return nil, fmt.Errorf("layout %s: %w", scope, err)
	}

	elapsed := time.Since(start)
	if report.Empty() {
		s.metrics.RecordLayout(label, metrics.OutcomeEmpty, elapsed, 0, 0)
	} else {
		s.metrics.RecordLayout(label, metrics.OutcomeOK, elapsed, report.Iterations, report.NodeCount)
	}

	s.logger.Info("layout complete",
		"scope", scope,
		"nodes", report.NodeCount,
		"links", report.EdgeCount,
		"iterations", report.Iterations,
		"converged", report.Converged,
		"elapsed", elapsed.Round(time.Millisecond))

	return &Outcome{Scope: scope, Seed: seed, Report: report}, nil
}

// persist stores the positions of a finished run and announces it
func (s *LayoutService) persist(ctx context.Context, outcome *Outcome) error {
	positions := make([]domain.BlockPosition, len(outcome.Report.Positions))
	for i, p := range outcome.Report.Positions {
		positions[i] = domain.BlockPosition{BlockID: p.ID, X: p.X, Y: p.Y}
	}

	if len(positions) > 0 {
		if err := s.repo.SavePositions(ctx, outcome.Scope, positions); err != nil {
			return fmt.Errorf("failed to save %s positions: %w", outcome.Scope, err)
		}
	}

	s.eventBus.Publish(Event{
		Type: EventLayoutCompleted,
		Payload: map[string]any{
			"scope":    outcome.Scope,
			"space_id": outcome.SpaceID,
			"blocks":   outcome.Report.NodeCount,
			"summary":  outcome.Summary,
		},
	})
	return nil
}

func (s *LayoutService) profileFor(scope domain.Scope, override *layout.ProfileOverride) (layout.Profile, error) {
	s.mu.RLock()
	var base layout.Profile
	switch scope {
	case domain.ScopeGlobal:
		base = s.global
	default:
		base = s.local
	}
	s.mu.RUnlock()

	p := override.Apply(base)
	if err := p.Validate(); err != nil {
		return layout.Profile{}, fmt.Errorf("%w: profile overrides: %v", domain.ErrInvalid, err)
	}
	return p, nil
}

func (s *LayoutService) seedFor(ro RunOptions) uint64 {
	switch {
	case ro.Seed != nil:
		return *ro.Seed
	case s.opts.Seed != nil:
		return *s.opts.Seed
	default:
		return uint64(time.Now().UnixNano())
	}
}

// observer traces the cooling schedule at debug level
func (s *LayoutService) observer(scope domain.Scope) layout.Observer {
	if s.logger.GetLevel() > log.DebugLevel {
		return nil
	}
	return func(step layout.Step) {
		if step.Iteration%50 == 0 {
			s.logger.Debug("layout step", "scope", scope, "iteration", step.Iteration, "temperature", step.Temperature)
		}
	}
}

func snapshotEdges(links []domain.Link) []layout.SnapshotEdge {
	edges := make([]layout.SnapshotEdge, 0, len(links))
	for i := range links {
		l := &links[i]
		edges = append(edges, layout.SnapshotEdge{
			SourceID: l.SourceID,
			TargetID: l.TargetID,
			Weight:   l.Weight,
			Rejected: l.Rejected(),
		})
	}
	return edges
}

func ctxOutcome(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeCanceled
}
