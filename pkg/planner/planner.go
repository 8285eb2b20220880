// Package planner is the top-level entry point for generating a day's duty
// plan. It tries the AI proposal path first and downgrades to the
// deterministic allocator on any failure, so callers always receive a
// complete, usable plan tagged with its provenance.
package planner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/arnavshah/duty-planner-go/pkg/catalog"
	"github.com/arnavshah/duty-planner-go/pkg/llm"
	"github.com/arnavshah/duty-planner-go/pkg/models"
	"github.com/arnavshah/duty-planner-go/pkg/recovery"
	"github.com/arnavshah/duty-planner-go/pkg/scheduler"
	"github.com/google/uuid"
)

// DefaultAITimeout bounds the proposal service call when the caller does
// not supply a tighter bound.
const DefaultAITimeout = 30 * time.Second

// Planner orchestrates one planning run. A nil client means the
// deterministic path runs unconditionally.
type Planner struct {
	catalog *catalog.Catalog
	client  llm.Client
	timeout time.Duration
}

// Option configures a Planner
type Option func(*Planner)

// WithClient enables the AI proposal path
func WithClient(c llm.Client) Option {
	return func(p *Planner) { p.client = c }
}

// WithTimeout bounds the proposal service call
func WithTimeout(d time.Duration) Option {
	return func(p *Planner) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// New creates a planner over an already-validated catalog
func New(cat *catalog.Catalog, opts ...Option) *Planner {
	p := &Planner{catalog: cat, timeout: DefaultAITimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate produces the plan for one day. workers is the roster snapshot
// with absence exclusions already applied. The result is never nil and the
// call never panics past valid configuration: every runtime failure
// downgrades to the deterministic path with an advisory note.
func (p *Planner) Generate(ctx context.Context, day string, workers []models.Worker) *models.PlanResult {
	var notes []string

	if p.client != nil {
		assignments, aiNotes, err := p.tryProposal(ctx, day, workers)
		if err == nil {
			return p.envelope(day, models.SourceAIOptimized, assignments, aiNotes)
		}
		log.Printf("[planner] proposal path failed for %s: %v", day, err)
		notes = append(notes, fmt.Sprintf("proposal path unavailable: %v", err))
	}

	alloc := scheduler.NewAllocator(p.catalog, workers)
	assignments, allocNotes := alloc.Allocate()
	notes = append(notes, allocNotes...)
	notes = append(notes, fmt.Sprintf("workload spread %.0f%%", alloc.LoadSpread()))

	return p.envelope(day, models.SourceDeterministicFallback, assignments, notes)
}

// tryProposal runs the AI path end to end: prompt, bounded call, recovery,
// validation. Any error means "fall back", never "fail the run".
func (p *Planner) tryProposal(ctx context.Context, day string, workers []models.Worker) ([]models.Assignment, []string, error) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.client.Complete(cctx, llm.BuildPrompt(day, workers, p.catalog))
	if err != nil {
		return nil, nil, fmt.Errorf("proposal service: %w", err)
	}

	proposal := recovery.Recover(raw)
	assignments, notes, err := ValidateProposal(proposal, p.catalog, workers)
	if err != nil {
		return nil, nil, fmt.Errorf("proposal rejected: %w", err)
	}
	return assignments, notes, nil
}

func (p *Planner) envelope(day, source string, assignments []models.Assignment, notes []string) *models.PlanResult {
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	if notes == nil {
		notes = []string{}
	}
	return &models.PlanResult{
		ID:          uuid.New().String(),
		Day:         day,
		Source:      source,
		Assignments: assignments,
		Fills:       computeFills(p.catalog, assignments),
		Notes:       notes,
	}
}

// computeFills summarizes per-slot staffing against the catalog bounds.
// Min and Max aggregate segment bounds for segmented slots.
func computeFills(cat *catalog.Catalog, assignments []models.Assignment) map[string]models.SlotFill {
	fills := make(map[string]models.SlotFill, len(cat.Slots()))
	for _, s := range cat.Slots() {
		minTotal, maxTotal := 0, 0
		for _, seg := range catalog.Segments(&s) {
			minTotal += seg.Min
			maxTotal += seg.Max
		}
		fills[s.ID] = models.SlotFill{Min: minTotal, Max: maxTotal}
	}
	for _, a := range assignments {
		f := fills[a.SlotID]
		f.Assigned++
		fills[a.SlotID] = f
	}
	return fills
}
