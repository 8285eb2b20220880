package handlers

import (
	"net/http"

	"github.com/arnavshah/duty-planner-go/pkg/catalog"
	"github.com/arnavshah/duty-planner-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks a planning request without running the planner:
// catalog invariants, duplicate identifiers, and dangling fixed-worker
// references. Catalog violations are the hard failures; the rest come back
// as warnings.
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Workers) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one worker is required",
		})
		return
	}

	// Check for duplicate IDs
	workerIDs := make(map[string]bool)
	for _, w := range input.Workers {
		if workerIDs[w.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate worker ID: " + w.ID})
			return
		}
		workerIDs[w.ID] = true
	}

	if _, err := catalog.New(input.Slots); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	var warnings []string
	slotByID := make(map[string]*models.Slot, len(input.Slots))
	for i := range input.Slots {
		slotByID[input.Slots[i].ID] = &input.Slots[i]
	}
	for _, s := range input.Slots {
		if s.FixedWorker != "" && !workerIDs[s.FixedWorker] {
			warnings = append(warnings, "slot "+s.ID+" is bound to unknown worker "+s.FixedWorker)
		}
	}
	// The binding lives on the slot; a worker-side declaration is prompt
	// context only, so a disagreement between the two is worth flagging.
	for _, w := range input.Workers {
		if w.FixedSlot == "" {
			continue
		}
		s, ok := slotByID[w.FixedSlot]
		if !ok {
			warnings = append(warnings, "worker "+w.ID+" declares unknown fixed slot "+w.FixedSlot)
			continue
		}
		if s.FixedWorker != w.ID {
			warnings = append(warnings, "worker "+w.ID+" declares fixed slot "+w.FixedSlot+
				" but the slot binds "+quoteOrNone(s.FixedWorker))
		}
	}
	for _, a := range input.Absences {
		if !workerIDs[a.WorkerID] {
			warnings = append(warnings, "absence references unknown worker "+a.WorkerID)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"warnings": warnings,
		"stats": gin.H{
			"worker_count": len(input.Workers),
			"slot_count":   len(input.Slots),
		},
	})
}

func quoteOrNone(workerID string) string {
	if workerID == "" {
		return "nobody"
	}
	return workerID
}
