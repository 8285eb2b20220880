package models

// Tier is a worker capability rating used as a scoring signal
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Rank returns the ordering value of a tier (higher = more senior).
// Unknown tiers rank lowest.
func (t Tier) Rank() int {
	switch t {
	case TierHigh:
		return 2
	case TierMedium:
		return 1
	case TierLow:
		return 0
	}
	return -1
}

// Worker represents a person available for duty slots
type Worker struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Tier      Tier     `json:"tier" yaml:"tier"`
	Skills    []string `json:"skills,omitempty" yaml:"skills,omitempty"`
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty"`
	FixedSlot string   `json:"fixed_slot,omitempty" yaml:"fixed_slot,omitempty"`
	Active    bool     `json:"active" yaml:"active"`
}

// HasSkill reports whether the worker carries the given skill identifier
func (w *Worker) HasSkill(skill string) bool {
	for _, s := range w.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// Absence excludes a worker from planning for a date range.
// Dates are ISO "2006-01-02" strings, inclusive on both ends.
type Absence struct {
	WorkerID string `json:"worker_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Type     string `json:"type,omitempty"`
}

// Covers reports whether the absence applies to the given day
func (a *Absence) Covers(day string) bool {
	if a.From == "" && a.To == "" {
		return false
	}
	if a.From != "" && day < a.From {
		return false
	}
	if a.To != "" && day > a.To {
		return false
	}
	return true
}

// Available filters a roster down to the workers who can be planned on the
// given day: active and not covered by any absence. Declaration order is
// preserved, which downstream code relies on for deterministic tie-breaks.
func Available(workers []Worker, absences []Absence, day string) []Worker {
	absent := make(map[string]bool)
	for i := range absences {
		if absences[i].Covers(day) {
			absent[absences[i].WorkerID] = true
		}
	}

	out := make([]Worker, 0, len(workers))
	for _, w := range workers {
		if w.Active && !absent[w.ID] {
			out = append(out, w)
		}
	}
	return out
}

// TieBreak selects the candidate ordering policy for a slot
type TieBreak string

const (
	// TieBreakTier ranks candidates by score, so profile tier dominates
	TieBreakTier TieBreak = "tier"
	// TieBreakRotation ranks candidates by current run load, spreading
	// low-variety duties across the roster regardless of tier
	TieBreakRotation TieBreak = "rotation"
)

// Segment is a named time window inside a slot with its own headcount bounds
type Segment struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Min  int    `json:"min" yaml:"min"`
	Max  int    `json:"max" yaml:"max"`
}

// Slot is a duty position (station or vehicle) for a given day
type Slot struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Min           int       `json:"min" yaml:"min"`
	Max           int       `json:"max" yaml:"max"`
	Priority      int       `json:"priority" yaml:"priority"`
	RequiredSkill string    `json:"required_skill,omitempty" yaml:"required_skill,omitempty"`
	FixedWorker   string    `json:"fixed_worker,omitempty" yaml:"fixed_worker,omitempty"`
	CatchAll      bool      `json:"catch_all,omitempty" yaml:"catch_all,omitempty"`
	TieBreak      TieBreak  `json:"tie_break,omitempty" yaml:"tie_break,omitempty"`
	Segments      []Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// Elastic reports whether the slot can take more than its minimum
func (s *Slot) Elastic() bool {
	return s.Max > s.Min
}

// Role labels derived during assignment
const (
	RoleSupervisor = "Supervisor"
	RoleLead       = "Lead"
	RoleMember     = "Member"
)

// Assignment places a worker into a slot segment with a derived role
type Assignment struct {
	WorkerID  string `json:"worker_id"`
	SlotID    string `json:"slot_id"`
	SegmentID string `json:"segment_id"`
	Role      string `json:"role"`
}

// Generation source tags
const (
	SourceAIOptimized           = "ai_optimized"
	SourceDeterministicFallback = "deterministic_fallback"
)

// SlotFill summarizes how full a slot ended up
type SlotFill struct {
	Assigned int `json:"assigned"`
	Min      int `json:"min"`
	Max      int `json:"max"`
}

// PlanResult is the envelope returned for every planning run
type PlanResult struct {
	ID          string              `json:"id"`
	Day         string              `json:"day"`
	Source      string              `json:"source"`
	Assignments []Assignment        `json:"assignments"`
	Fills       map[string]SlotFill `json:"fills"`
	Notes       []string            `json:"notes"`
}

// PlanInput is the request body for the planning endpoints
type PlanInput struct {
	Day      string    `json:"day"`
	Workers  []Worker  `json:"workers"`
	Absences []Absence `json:"absences,omitempty"`
	Slots    []Slot    `json:"slots"`
}
