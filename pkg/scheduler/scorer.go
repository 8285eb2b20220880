package scheduler

import "github.com/arnavshah/duty-planner-go/pkg/models"

// Ineligible is the sentinel score for a worker who may not take a slot
const Ineligible = 0

// Scoring weights. The base keeps every eligible score positive, the tier
// bonus orders candidates by seniority, the language bonus nudges variety,
// and the load penalty discourages stacking one worker within a single run.
const (
	scoreBase        = 10
	scoreTierStep    = 3
	scoreLangBonus   = 1
	scoreLoadPenalty = 4
)

// Scorer computes the fitness of a (worker, slot) pair. It is pure apart
// from the run-local load counter shared with the allocator.
type Scorer struct {
	load map[string]int
}

// NewScorer creates a scorer with its own load counter
func NewScorer() *Scorer {
	return &Scorer{load: make(map[string]int)}
}

// Score returns the fitness of assigning the worker to the slot, or
// Ineligible when the slot requires a skill the worker lacks.
func (sc *Scorer) Score(w *models.Worker, s *models.Slot) int {
	if s.RequiredSkill != "" && !w.HasSkill(s.RequiredSkill) {
		return Ineligible
	}

	score := scoreBase + scoreTierStep*w.Tier.Rank()
	if extra := len(w.Languages) - 1; extra > 0 {
		score += scoreLangBonus * extra
	}
	score -= scoreLoadPenalty * sc.load[w.ID]

	// An eligible worker never collapses into the ineligible sentinel,
	// however loaded they already are.
	if score < 1 {
		score = 1
	}
	return score
}

// Load returns how many assignments the worker has received this run
func (sc *Scorer) Load(workerID string) int {
	return sc.load[workerID]
}

func (sc *Scorer) recordAssignment(workerID string) {
	sc.load[workerID]++
}
