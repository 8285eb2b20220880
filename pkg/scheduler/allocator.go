// Package scheduler implements the deterministic duty allocator: a
// priority-ordered greedy pass over the slot catalog, followed by a
// reinforcement pass for elastic slots and a catch-all sweep.
package scheduler

import (
	"fmt"
	"math"

	"github.com/arnavshah/duty-planner-go/pkg/catalog"
	"github.com/arnavshah/duty-planner-go/pkg/models"
)

// Allocator assigns workers to slots. State is local to one Allocate run;
// concurrent invocations must each use their own instance.
type Allocator struct {
	catalog *catalog.Catalog
	workers []models.Worker
	scorer  *Scorer

	inSlot      map[string]map[string]bool // slot id -> worker ids placed
	segCount    map[string]map[string]int  // slot id -> segment id -> headcount
	assignments []models.Assignment
	notes       []string
}

// NewAllocator creates an allocator for one run. workers must already have
// absence exclusions applied; their order is the declaration order used for
// all tie-breaks.
func NewAllocator(cat *catalog.Catalog, workers []models.Worker) *Allocator {
	return &Allocator{
		catalog:  cat,
		workers:  workers,
		scorer:   NewScorer(),
		inSlot:   make(map[string]map[string]bool),
		segCount: make(map[string]map[string]int),
	}
}

// Allocate produces the full assignment set plus advisory notes. Given
// identical inputs the output is identical across runs: no randomness, no
// map-order iteration.
func (a *Allocator) Allocate() ([]models.Assignment, []string) {
	ordered := a.catalog.Ordered()

	a.fixedPass(ordered)
	a.priorityPass(ordered)
	a.reinforcementPass(ordered)
	a.catchAllPass()
	a.shortfallNotes(ordered)

	return a.assignments, a.notes
}

// fixedPass places fixed-role workers before open competition. An absent
// bound worker is not an error: the slot simply competes openly.
func (a *Allocator) fixedPass(ordered []models.Slot) {
	for i := range ordered {
		s := &ordered[i]
		if s.FixedWorker == "" {
			continue
		}
		w := a.findWorker(s.FixedWorker)
		if w == nil {
			a.note("fixed worker %s for slot %s is unavailable; slot opens to competition", s.FixedWorker, s.ID)
			continue
		}
		for _, seg := range catalog.Segments(s) {
			a.place(w, s, seg.ID, models.RoleSupervisor)
		}
	}
}

// priorityPass fills every segment up to its minimum headcount, slots in
// priority order, candidates by score (or rotation order) with declaration
// order breaking ties.
func (a *Allocator) priorityPass(ordered []models.Slot) {
	for i := range ordered {
		s := &ordered[i]
		for _, seg := range catalog.Segments(s) {
			for a.count(s.ID, seg.ID) < seg.Min {
				w := a.pick(s, false)
				if w == nil {
					break
				}
				a.place(w, s, seg.ID, a.roleFor(s.ID, seg.ID))
			}
		}
	}
}

// reinforcementPass tops up elastic slots with still-unassigned workers,
// most senior tier first, stopping at each segment's maximum.
func (a *Allocator) reinforcementPass(ordered []models.Slot) {
	for i := range ordered {
		s := &ordered[i]
		if !s.Elastic() {
			continue
		}
		for _, seg := range catalog.Segments(s) {
			for a.count(s.ID, seg.ID) < seg.Max {
				w := a.pick(s, true)
				if w == nil {
					break
				}
				a.place(w, s, seg.ID, a.roleFor(s.ID, seg.ID))
			}
		}
	}
}

// catchAllPass sweeps workers who received nothing into the catch-all slot,
// if one is configured and has room left.
func (a *Allocator) catchAllPass() {
	ca := a.catalog.CatchAll()
	for i := range a.workers {
		w := &a.workers[i]
		if a.scorer.Load(w.ID) > 0 {
			continue
		}
		placed := false
		if ca != nil {
			for _, seg := range catalog.Segments(ca) {
				if a.count(ca.ID, seg.ID) < seg.Max && a.eligible(w, ca) {
					a.place(w, ca, seg.ID, a.roleFor(ca.ID, seg.ID))
					placed = true
					break
				}
			}
		}
		if !placed {
			a.note("worker %s (%s) left unassigned", w.ID, w.Name)
		}
	}
}

func (a *Allocator) shortfallNotes(ordered []models.Slot) {
	for i := range ordered {
		s := &ordered[i]
		for _, seg := range catalog.Segments(s) {
			got := a.count(s.ID, seg.ID)
			if got >= seg.Min {
				continue
			}
			if seg.ID == s.ID {
				a.note("slot %s filled %d/%d", s.ID, got, seg.Min)
			} else {
				a.note("slot %s segment %s filled %d/%d", s.ID, seg.ID, got, seg.Min)
			}
		}
	}
}

// pick selects the best remaining eligible worker for a slot segment.
// When unassignedOnly is set (reinforcement and catch-all), only workers with
// zero load compete, ranked by tier seniority. Otherwise ranking follows the
// slot's tie-break policy. Ties always fall back to declaration order by
// virtue of the strict comparison.
func (a *Allocator) pick(s *models.Slot, unassignedOnly bool) *models.Worker {
	var best *models.Worker
	bestKey := math.MinInt

	for i := range a.workers {
		w := &a.workers[i]
		if unassignedOnly && a.scorer.Load(w.ID) > 0 {
			continue
		}
		if !a.eligible(w, s) {
			continue
		}

		var key int
		switch {
		case unassignedOnly:
			key = w.Tier.Rank()
		case s.TieBreak == models.TieBreakRotation:
			// Least loaded first; skill gating still applies via eligible.
			key = -a.scorer.Load(w.ID)
		default:
			key = a.scorer.Score(w, s)
		}

		if best == nil || key > bestKey {
			best = w
			bestKey = key
		}
	}
	return best
}

func (a *Allocator) eligible(w *models.Worker, s *models.Slot) bool {
	if a.inSlot[s.ID][w.ID] {
		return false
	}
	return a.scorer.Score(w, s) != Ineligible
}

func (a *Allocator) place(w *models.Worker, s *models.Slot, segmentID, role string) {
	a.assignments = append(a.assignments, models.Assignment{
		WorkerID:  w.ID,
		SlotID:    s.ID,
		SegmentID: segmentID,
		Role:      role,
	})
	if a.inSlot[s.ID] == nil {
		a.inSlot[s.ID] = make(map[string]bool)
	}
	a.inSlot[s.ID][w.ID] = true
	if a.segCount[s.ID] == nil {
		a.segCount[s.ID] = make(map[string]int)
	}
	a.segCount[s.ID][segmentID]++
	a.scorer.recordAssignment(w.ID)
}

// roleFor derives the role label: the first worker placed into a segment
// leads it, unless a supervisor already occupies it.
func (a *Allocator) roleFor(slotID, segmentID string) string {
	if a.count(slotID, segmentID) == 0 {
		return models.RoleLead
	}
	return models.RoleMember
}

func (a *Allocator) count(slotID, segmentID string) int {
	return a.segCount[slotID][segmentID]
}

func (a *Allocator) findWorker(id string) *models.Worker {
	for i := range a.workers {
		if a.workers[i].ID == id {
			return &a.workers[i]
		}
	}
	return nil
}

func (a *Allocator) note(format string, args ...any) {
	a.notes = append(a.notes, fmt.Sprintf(format, args...))
}

// LoadSpread returns a percentage (0-100) describing how evenly assignments
// are distributed across the roster. 100 means every worker carries the same
// load (standard deviation zero).
func (a *Allocator) LoadSpread() float64 {
	if len(a.workers) == 0 {
		return 100.0
	}

	var sum float64
	for i := range a.workers {
		sum += float64(a.scorer.Load(a.workers[i].ID))
	}
	if sum == 0 {
		return 100.0
	}
	mean := sum / float64(len(a.workers))

	var varianceSum float64
	for i := range a.workers {
		diff := float64(a.scorer.Load(a.workers[i].ID)) - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(a.workers)))

	score := (1.0 - stdDev/mean) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
