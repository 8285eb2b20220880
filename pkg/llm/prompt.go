package llm

import (
	"fmt"
	"strings"

	"github.com/arnavshah/duty-planner-go/pkg/catalog"
	"github.com/arnavshah/duty-planner-go/pkg/models"
)

// BuildPrompt renders the planning constraints as natural language plus the
// exact reply shape the recovery pipeline expects. The same catalog rules
// the deterministic allocator enforces are embedded here so an accepted
// proposal and a fallback plan satisfy the same constraints.
func BuildPrompt(day string, workers []models.Worker, cat *catalog.Catalog) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan the duty roster for %s.\n\n", day)

	b.WriteString("## Workers\n")
	for i := range workers {
		w := &workers[i]
		fmt.Fprintf(&b, "- %s (%s), tier %s", w.ID, w.Name, w.Tier)
		if len(w.Skills) > 0 {
			fmt.Fprintf(&b, ", skills: %s", strings.Join(w.Skills, ", "))
		}
		if len(w.Languages) > 1 {
			fmt.Fprintf(&b, ", languages: %s", strings.Join(w.Languages, ", "))
		}
		if w.FixedSlot != "" {
			fmt.Fprintf(&b, ", permanently bound to slot %s", w.FixedSlot)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Slots (fill in priority order)\n")
	for _, s := range cat.Ordered() {
		fmt.Fprintf(&b, "- %s (%s), priority %d", s.ID, s.Name, s.Priority)
		if len(s.Segments) == 0 {
			fmt.Fprintf(&b, ", needs %d-%d workers", s.Min, s.Max)
		} else {
			b.WriteString(", segments:")
			for _, seg := range s.Segments {
				fmt.Fprintf(&b, " %s (%d-%d)", seg.ID, seg.Min, seg.Max)
			}
		}
		if s.RequiredSkill != "" {
			fmt.Fprintf(&b, ", requires skill %q", s.RequiredSkill)
		}
		if s.FixedWorker != "" {
			fmt.Fprintf(&b, ", always staffed by %s", s.FixedWorker)
		}
		if s.TieBreak == models.TieBreakRotation {
			b.WriteString(", rotate across the roster rather than favoring senior workers")
		}
		b.WriteString("\n")
	}

	b.WriteString(`
## Rules
- Fixed bindings are mandatory when the bound worker is listed above.
- Never place a worker into a slot whose required skill they lack.
- Respect every minimum and maximum headcount.
- Balance the load: avoid giving one worker several duties while others have none.
- Prefer variety: vary pairings compared to an obvious seniority-only ordering.

## Reply shape
Reply with exactly one JSON object, no prose, no code fences:
{"day": "` + day + `", "assignments": [{"worker": "<worker id>", "slot": "<slot id>", "segment": "<segment id>", "role": "Lead|Member|Supervisor", "score": <1-20>}]}
Use the slot id as segment id for slots without segments.
`)

	return b.String()
}
