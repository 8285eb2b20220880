package recovery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverValidPayload(t *testing.T) {
	raw := `{"day": "2026-03-05", "assignments": [
		{"worker": "w1", "slot": "counter", "segment": "am", "role": "Lead", "score": 14},
		{"worker": "w2", "slot": "counter", "segment": "am", "role": "Member", "score": 9}
	]}`

	p := Recover(raw)

	require.Len(t, p.Assignments, 2)
	assert.Equal(t, "2026-03-05", p.Day)
	assert.Equal(t, "w1", p.Assignments[0].Worker)
	assert.Equal(t, "Lead", p.Assignments[0].Role)
	assert.Equal(t, 14, p.Assignments[0].Score)
	assert.Equal(t, 9, p.Assignments[1].Score)
}

func TestRecoverLeavesValidPayloadIntact(t *testing.T) {
	// String values that look like separator noise to the rewrite stages
	// (embedded commas, colons, bare-key shapes) must pass through
	// untouched when the payload is already valid JSON.
	raw := `{"assignments": [
		{"worker": "Lopez, jr: PM", "slot": "s1"},
		{"worker": "w2", "slot": "s1", "role": "Member, acting: Lead"}
	]}`

	p := Recover(raw)

	require.Len(t, p.Assignments, 2)
	assert.Equal(t, "Lopez, jr: PM", p.Assignments[0].Worker)
	assert.Equal(t, "Member, acting: Lead", p.Assignments[1].Role)
}

func TestRecoverCodeFence(t *testing.T) {
	raw := "Here is the plan you asked for:\n```json\n" +
		`{"assignments": [{"worker": "w1", "slot": "van"}]}` +
		"\n```\nLet me know if you want changes."

	p := Recover(raw)

	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "van", p.Assignments[0].Slot)
}

func TestRecoverSurroundingProse(t *testing.T) {
	raw := `Sure! The optimized roster is {"assignments": [{"worker": "w1", "slot": "s1"}]} as requested.`

	p := Recover(raw)

	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "w1", p.Assignments[0].Worker)
}

func TestRecoverArrayRoot(t *testing.T) {
	raw := `[{"worker": "w1", "slot": "s1"}, {"worker": "w2", "slot": "s2"}]`

	p := Recover(raw)

	require.Len(t, p.Assignments, 2)
	assert.Equal(t, "s2", p.Assignments[1].Slot)
}

func TestRecoverAlternateFieldSpellings(t *testing.T) {
	raw := `{"entries": [{"worker_id": "w9", "slot_id": "grill", "role": "Supervisor", "score": 3}]}`

	p := Recover(raw)

	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "w9", p.Assignments[0].Worker)
	assert.Equal(t, "grill", p.Assignments[0].Slot)
	assert.Equal(t, "Supervisor", p.Assignments[0].Role)
}

func TestRecoverAppliesDefaults(t *testing.T) {
	raw := `{"assignments": [{"worker": "w1", "slot": "s1", "role": null}]}`

	p := Recover(raw)

	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "Member", p.Assignments[0].Role, "missing role defaults")
	assert.Equal(t, NeutralScore, p.Assignments[0].Score, "missing score defaults")
}

func TestRecoverDropsEntriesWithoutReferences(t *testing.T) {
	raw := `{"assignments": [
		{"worker": "w1", "slot": "s1"},
		{"worker": "", "slot": "s1"},
		{"worker": "w2"}
	]}`

	p := Recover(raw)

	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "w1", p.Assignments[0].Worker)
}

func TestRecoverTrailingAndDuplicateCommas(t *testing.T) {
	raw := `{"assignments": [{"worker": "w1",, "slot": "s1",},],}`

	p := Recover(raw)

	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "s1", p.Assignments[0].Slot)
}

func TestRecoverSingleQuotes(t *testing.T) {
	raw := `{'day': '2026-03-05', 'assignments': [{'worker': 'w1', 'slot': 's1'}]}`

	p := Recover(raw)

	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "2026-03-05", p.Day)
}

func TestRecoverSmartQuotes(t *testing.T) {
	raw := `{“assignments”: [{“worker”: “w1”，“slot”: “s1”}]}`

	p := Recover(raw)

	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "w1", p.Assignments[0].Worker)
}

func TestRecoverBareKeys(t *testing.T) {
	raw := `{day: "2026-03-05", assignments: [{worker: "w1", slot: "s1"}]}`

	p := Recover(raw)

	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "2026-03-05", p.Day)
}

func TestRecoverTruncatedStream(t *testing.T) {
	raw := `{"day": "2026-03-05", "assignments": [` +
		`{"worker": "w1", "slot": "s1", "role": "Lead"}, {"worker": "w2", "slot": "s`

	p := Recover(raw)

	require.Len(t, p.Assignments, 1, "the complete entry survives, the cut one is dropped")
	assert.Equal(t, "w1", p.Assignments[0].Worker)
}

func TestRecoverGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "no structure at all", "{{{", "}"} {
		p := Recover(raw)
		require.NotNil(t, p)
		assert.True(t, p.Empty(), "input %q should yield an empty proposal", raw)
	}
}

func TestExtractEnvelope(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, ExtractEnvelope(`noise {"a": 1} noise`))
	assert.Equal(t, `{"assignments": [1, 2]}`, ExtractEnvelope(`[1, 2]`))
	assert.Equal(t, "", ExtractEnvelope("plain text"))
}

func TestCleanStructureIdempotent(t *testing.T) {
	clean := `{"a": "b", "c": ["d"]}`
	assert.Equal(t, clean, CleanStructure(clean))
	assert.Equal(t, clean, CleanStructure(CleanStructure(clean)))
}

func TestCorruptionScore(t *testing.T) {
	assert.Zero(t, CorruptionScore(`{"a": "b"}`))
	assert.Equal(t, 2, CorruptionScore(`{"a": 1,, "b": 2,, }`))
	assert.GreaterOrEqual(t, CorruptionScore(`{"a": "", "b": "", "c": ""}`), 3)
}

func TestSurgicalRepairQuotesBareValues(t *testing.T) {
	repaired := SurgicalRepair(`{"worker": w1, "slot": s1}`)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(repaired), &decoded))
	assert.Equal(t, "w1", decoded["worker"])
	assert.Equal(t, "s1", decoded["slot"])
}

func TestSurgicalRepairClosesTruncation(t *testing.T) {
	repaired := SurgicalRepair(`{"assignments": [{"worker": "w1", "slot": "s1"`)

	p, ok := parse(repaired)
	require.True(t, ok)
	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "w1", p.Assignments[0].Worker)
}

func TestProposalEmpty(t *testing.T) {
	assert.True(t, (*Proposal)(nil).Empty())
	assert.True(t, EmptyProposal().Empty())
	assert.False(t, (&Proposal{Assignments: []Entry{{Worker: "w", Slot: "s"}}}).Empty())
}
