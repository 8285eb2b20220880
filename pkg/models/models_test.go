package models

import "testing"

func TestAbsenceCovers(t *testing.T) {
	cases := []struct {
		name string
		abs  Absence
		day  string
		want bool
	}{
		{"inside range", Absence{From: "2026-03-01", To: "2026-03-05"}, "2026-03-03", true},
		{"first day", Absence{From: "2026-03-01", To: "2026-03-05"}, "2026-03-01", true},
		{"last day", Absence{From: "2026-03-01", To: "2026-03-05"}, "2026-03-05", true},
		{"before range", Absence{From: "2026-03-01", To: "2026-03-05"}, "2026-02-28", false},
		{"after range", Absence{From: "2026-03-01", To: "2026-03-05"}, "2026-03-06", false},
		{"open ended", Absence{From: "2026-03-01"}, "2027-01-01", true},
		{"no dates", Absence{}, "2026-03-03", false},
	}

	for _, tc := range cases {
		if got := tc.abs.Covers(tc.day); got != tc.want {
			t.Errorf("%s: Covers(%s) = %v, want %v", tc.name, tc.day, got, tc.want)
		}
	}
}

func TestAvailable(t *testing.T) {
	workers := []Worker{
		{ID: "w1", Active: true},
		{ID: "w2", Active: false},
		{ID: "w3", Active: true},
	}
	absences := []Absence{
		{WorkerID: "w3", From: "2026-03-01", To: "2026-03-10"},
	}

	got := Available(workers, absences, "2026-03-05")
	if len(got) != 1 || got[0].ID != "w1" {
		t.Errorf("Expected only w1 available, got %v", got)
	}

	// Outside the absence window w3 returns; order stays as declared.
	got = Available(workers, absences, "2026-03-11")
	if len(got) != 2 || got[0].ID != "w1" || got[1].ID != "w3" {
		t.Errorf("Expected w1 and w3 in declaration order, got %v", got)
	}
}

func TestTierRank(t *testing.T) {
	if TierHigh.Rank() <= TierMedium.Rank() || TierMedium.Rank() <= TierLow.Rank() {
		t.Error("Expected high > medium > low ranks")
	}
	if Tier("mystery").Rank() >= TierLow.Rank() {
		t.Error("Expected unknown tiers to rank below low")
	}
}

func TestWorkerHasSkill(t *testing.T) {
	w := Worker{Skills: []string{"grill", "drive"}}
	if !w.HasSkill("drive") {
		t.Error("Expected drive skill present")
	}
	if w.HasSkill("bake") {
		t.Error("Did not expect bake skill")
	}
}
