package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arnavshah/duty-planner-go/pkg/catalog"
	"github.com/arnavshah/duty-planner-go/pkg/models"
	"github.com/arnavshah/duty-planner-go/pkg/recovery"
	"github.com/arnavshah/duty-planner-go/pkg/scheduler"
)

var (
	// ErrEmptyProposal rejects a proposal that arrived with no assignments.
	ErrEmptyProposal = errors.New("planner: proposal has no assignments")
	// ErrNoResolvable rejects a proposal whose entries all failed to resolve.
	ErrNoResolvable = errors.New("planner: no resolvable assignments in proposal")
	// ErrRequiredSlotEmpty rejects a proposal that left a satisfiable
	// required slot completely unstaffed.
	ErrRequiredSlotEmpty = errors.New("planner: required slot left empty")
)

// ValidateProposal checks a recovered proposal against the catalog and
// roster. Unresolvable or ineligible entries are dropped with advisory notes
// rather than failing the whole proposal; missing fixed bindings are
// injected. The proposal is rejected only when nothing usable remains or a
// required slot that could have been staffed was left empty.
func ValidateProposal(p *recovery.Proposal, cat *catalog.Catalog, workers []models.Worker) ([]models.Assignment, []string, error) {
	if p.Empty() {
		return nil, nil, ErrEmptyProposal
	}

	byID := make(map[string]*models.Worker, len(workers))
	byName := make(map[string]*models.Worker, len(workers))
	for i := range workers {
		byID[workers[i].ID] = &workers[i]
		byName[strings.ToLower(workers[i].Name)] = &workers[i]
	}

	var (
		assignments []models.Assignment
		notes       []string
		segCount    = make(map[string]map[string]int)
		placed      = make(map[string]map[string]bool)
	)

	count := func(slotID, segID string) int { return segCount[slotID][segID] }
	record := func(a models.Assignment) {
		assignments = append(assignments, a)
		if segCount[a.SlotID] == nil {
			segCount[a.SlotID] = make(map[string]int)
		}
		segCount[a.SlotID][a.SegmentID]++
		if placed[a.SlotID] == nil {
			placed[a.SlotID] = make(map[string]bool)
		}
		placed[a.SlotID][a.WorkerID] = true
	}

	for _, e := range p.Assignments {
		slot := resolveSlot(cat, e.Slot)
		if slot == nil {
			notes = append(notes, fmt.Sprintf("proposal referenced unknown slot %q, entry dropped", e.Slot))
			continue
		}

		w := byID[e.Worker]
		if w == nil {
			w = byName[strings.ToLower(e.Worker)]
		}
		if w == nil {
			notes = append(notes, fmt.Sprintf("proposal referenced unknown worker %q, entry dropped", e.Worker))
			continue
		}

		if slot.RequiredSkill != "" && !w.HasSkill(slot.RequiredSkill) {
			notes = append(notes, fmt.Sprintf("worker %s lacks skill %q required by slot %s, entry dropped",
				w.ID, slot.RequiredSkill, slot.ID))
			continue
		}

		seg := catalog.Segment(slot, e.Segment)
		if seg == nil {
			if e.Segment != "" {
				notes = append(notes, fmt.Sprintf("proposal referenced unknown segment %q of slot %s, defaulting to first",
					e.Segment, slot.ID))
			}
			seg = &catalog.Segments(slot)[0]
		}

		if placed[slot.ID][w.ID] {
			notes = append(notes, fmt.Sprintf("worker %s proposed twice for slot %s, duplicate dropped", w.ID, slot.ID))
			continue
		}
		if count(slot.ID, seg.ID) >= seg.Max {
			notes = append(notes, fmt.Sprintf("slot %s segment %s over maximum %d, extra entry dropped",
				slot.ID, seg.ID, seg.Max))
			continue
		}

		record(models.Assignment{
			WorkerID:  w.ID,
			SlotID:    slot.ID,
			SegmentID: seg.ID,
			Role:      normalizeRole(e.Role),
		})
	}

	// Fixed bindings hold for every generation path: inject any the proposal
	// forgot, provided the bound worker is on the roster.
	for _, s := range cat.Slots() {
		if s.FixedWorker == "" {
			continue
		}
		w := byID[s.FixedWorker]
		if w == nil {
			continue
		}
		if placed[s.ID][w.ID] {
			continue
		}
		for _, seg := range catalog.Segments(&s) {
			record(models.Assignment{WorkerID: w.ID, SlotID: s.ID, SegmentID: seg.ID, Role: models.RoleSupervisor})
		}
		notes = append(notes, fmt.Sprintf("fixed binding %s -> %s missing from proposal, injected", w.ID, s.ID))
	}

	if len(assignments) == 0 {
		return nil, nil, ErrNoResolvable
	}

	// Quota sanity: shortfalls are advisory, but a required slot left at
	// zero despite an eligible worker existing is a hard rejection.
	for _, s := range cat.Slots() {
		for _, seg := range catalog.Segments(&s) {
			got := count(s.ID, seg.ID)
			if got >= seg.Min {
				continue
			}
			if got == 0 && seg.Min > 0 && hasEligible(&s, workers) {
				return nil, nil, fmt.Errorf("%w: slot %s segment %s", ErrRequiredSlotEmpty, s.ID, seg.ID)
			}
			notes = append(notes, fmt.Sprintf("slot %s segment %s filled %d/%d", s.ID, seg.ID, got, seg.Min))
		}
	}

	return assignments, notes, nil
}

func resolveSlot(cat *catalog.Catalog, ref string) *models.Slot {
	if s := cat.Slot(ref); s != nil {
		return s
	}
	for _, s := range cat.Slots() {
		if strings.EqualFold(s.Name, ref) {
			return cat.Slot(s.ID)
		}
	}
	return nil
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "supervisor":
		return models.RoleSupervisor
	case "lead":
		return models.RoleLead
	default:
		return models.RoleMember
	}
}

func hasEligible(s *models.Slot, workers []models.Worker) bool {
	sc := scheduler.NewScorer()
	for i := range workers {
		if sc.Score(&workers[i], s) != scheduler.Ineligible {
			return true
		}
	}
	return false
}
