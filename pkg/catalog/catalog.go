// Package catalog holds the declarative slot configuration and is the single
// source of truth for headcount bounds, priorities and skill requirements.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/arnavshah/duty-planner-go/pkg/models"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyCatalog indicates a catalog with no slots.
	ErrEmptyCatalog = errors.New("catalog: no slots configured")
	// ErrDuplicateSlot indicates two slots sharing an identifier.
	ErrDuplicateSlot = errors.New("catalog: duplicate slot id")
	// ErrBadBounds indicates min > max on a slot or segment.
	ErrBadBounds = errors.New("catalog: minimum exceeds maximum")
	// ErrMultipleCatchAll indicates more than one catch-all slot.
	ErrMultipleCatchAll = errors.New("catalog: multiple catch-all slots")
	// ErrBadTieBreak indicates an unknown tie-break policy.
	ErrBadTieBreak = errors.New("catalog: unknown tie-break policy")
)

// Catalog is a validated, ordered set of slots
type Catalog struct {
	slots []models.Slot
	byID  map[string]*models.Slot
}

// New validates the given slots and builds a catalog. Validation failures are
// configuration errors and are meant to surface loudly before any run starts.
func New(slots []models.Slot) (*Catalog, error) {
	if len(slots) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		slots: make([]models.Slot, len(slots)),
		byID:  make(map[string]*models.Slot, len(slots)),
	}
	copy(c.slots, slots)

	catchAlls := 0
	for i := range c.slots {
		s := &c.slots[i]
		if s.ID == "" {
			return nil, fmt.Errorf("catalog: slot %d has no id", i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlot, s.ID)
		}
		if s.Min < 0 || s.Min > s.Max {
			return nil, fmt.Errorf("%w: slot %s has min=%d max=%d", ErrBadBounds, s.ID, s.Min, s.Max)
		}
		if s.TieBreak == "" {
			s.TieBreak = models.TieBreakTier
		}
		if s.TieBreak != models.TieBreakTier && s.TieBreak != models.TieBreakRotation {
			return nil, fmt.Errorf("%w: slot %s uses %q", ErrBadTieBreak, s.ID, s.TieBreak)
		}
		if s.CatchAll {
			catchAlls++
		}

		segIDs := make(map[string]bool, len(s.Segments))
		for j := range s.Segments {
			seg := &s.Segments[j]
			if seg.ID == "" {
				return nil, fmt.Errorf("catalog: slot %s segment %d has no id", s.ID, j)
			}
			if segIDs[seg.ID] {
				return nil, fmt.Errorf("catalog: slot %s has duplicate segment id %s", s.ID, seg.ID)
			}
			segIDs[seg.ID] = true
			if seg.Min < 0 || seg.Min > seg.Max {
				return nil, fmt.Errorf("%w: slot %s segment %s has min=%d max=%d",
					ErrBadBounds, s.ID, seg.ID, seg.Min, seg.Max)
			}
		}
		c.byID[s.ID] = s
	}

	if catchAlls > 1 {
		return nil, ErrMultipleCatchAll
	}
	return c, nil
}

// catalogFile is the YAML document shape for on-disk catalogs
type catalogFile struct {
	Slots []models.Slot `yaml:"slots"`
}

// Load reads and validates a slot catalog from a YAML file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}

	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
	}
	return New(doc.Slots)
}

// Slot returns the slot with the given id, or nil
func (c *Catalog) Slot(id string) *models.Slot {
	return c.byID[id]
}

// Slots returns the slots in declaration order
func (c *Catalog) Slots() []models.Slot {
	return c.slots
}

// Ordered returns the slots sorted by priority rank ascending. Slots with
// equal rank keep their declaration order, which is the documented tie-break.
func (c *Catalog) Ordered() []models.Slot {
	out := make([]models.Slot, len(c.slots))
	copy(out, c.slots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// CatchAll returns the catch-all slot, or nil if none is configured
func (c *Catalog) CatchAll() *models.Slot {
	for i := range c.slots {
		if c.slots[i].CatchAll {
			return &c.slots[i]
		}
	}
	return nil
}

// Segments returns the effective segments of a slot. A slot with no declared
// segments acts as a single segment spanning the whole duty, reusing the slot
// id and bounds.
func Segments(s *models.Slot) []models.Segment {
	if len(s.Segments) == 0 {
		return []models.Segment{{ID: s.ID, Name: s.Name, Min: s.Min, Max: s.Max}}
	}
	return s.Segments
}

// Segment resolves a segment id within a slot, or nil
func Segment(s *models.Slot, segmentID string) *models.Segment {
	segs := Segments(s)
	for i := range segs {
		if segs[i].ID == segmentID {
			return &segs[i]
		}
	}
	return nil
}

// Capacity returns the total maximum headcount across a slot's segments
func Capacity(s *models.Slot) int {
	total := 0
	for _, seg := range Segments(s) {
		total += seg.Max
	}
	return total
}
