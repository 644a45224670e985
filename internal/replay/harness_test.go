package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pulseplan/taste-engine/internal/content"
)

// #region fixtures

func trainedFixture() *Fixture {
	fix := &Fixture{
		Description: "curator profile, one strong and one weak candidate",
		SubjectID:   "brand-1",
		Gate: FixtureGateConfig{
			Enforced:          true,
			StrictMode:        true,
			Threshold:         70,
			AllowUserOverride: true,
		},
		Contents: []FixtureContent{
			{
				ContentID: "strong",
				Caption:   "editorial flatlay, muted palette",
				Scores:    content.AIScores{Virality: 85, Engagement: 80, Aesthetic: 90, Trend: 70},
			},
			{
				ContentID: "weak",
				Caption:   "random repost",
				Scores:    content.AIScores{Virality: 30, Engagement: 25, Aesthetic: 35, Trend: 40},
			},
		},
		Expected: []FixtureExpected{
			{ContentID: "strong", Allowed: true},
			{ContentID: "weak", Allowed: false},
		},
	}
	for i := 0; i < 40; i++ {
		fix.Signals = append(fix.Signals, FixtureSignal{
			Type:          "rating",
			Weight:        2,
			Polarity:      1,
			ArchetypeHint: "Curator",
			Prompt:        "muted editorial flatlay",
		})
	}
	return fix
}

// #endregion fixtures

// #region replay-tests

func TestReplayBuildsGenomeAndGates(t *testing.T) {
	sum, err := Replay(trainedFixture())
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if sum.PrimaryArchetype != "Curator" {
		t.Fatalf("expected Curator primary, got %s", sum.PrimaryArchetype)
	}
	if sum.SignalCount != 40 {
		t.Fatalf("expected 40 signals, got %d", sum.SignalCount)
	}
	if sum.Allowed != 1 || sum.Blocked != 1 {
		t.Fatalf("expected 1 allowed / 1 blocked, got %d / %d", sum.Allowed, sum.Blocked)
	}
	if len(sum.Mismatches) != 0 {
		t.Fatalf("unexpected mismatches: %v", sum.Mismatches)
	}

	byID := map[string]ContentResult{}
	for _, r := range sum.Results {
		byID[r.ContentID] = r
	}
	if byID["weak"].Code != "APPROVAL_GATE_BLOCKED" {
		t.Fatalf("expected gate block code on weak item, got %q", byID["weak"].Code)
	}
	if byID["strong"].Conviction < 70 {
		t.Fatalf("expected strong item at or above threshold, got %d", byID["strong"].Conviction)
	}
}

func TestReplayOverrideBeatsBlock(t *testing.T) {
	fix := trainedFixture()
	fix.Contents[1].Override = true
	fix.Contents[1].OverrideReason = "intentional off-profile post"
	fix.Expected[1].Allowed = true

	sum, err := Replay(fix)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if sum.Blocked != 0 {
		t.Fatalf("override should clear the block, got %d blocked", sum.Blocked)
	}
	if len(sum.Mismatches) != 0 {
		t.Fatalf("unexpected mismatches: %v", sum.Mismatches)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	fix := trainedFixture()
	a, err := Replay(fix)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	b, err := Replay(fix)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if a.PrimaryArchetype != b.PrimaryArchetype || a.Confidence != b.Confidence {
		t.Fatal("replay genome state diverged across runs")
	}
	for i := range a.Results {
		if a.Results[i].Conviction != b.Results[i].Conviction || a.Results[i].Allowed != b.Results[i].Allowed {
			t.Fatalf("result %d diverged: %+v vs %+v", i, a.Results[i], b.Results[i])
		}
	}
}

func TestReplayRequiresSubject(t *testing.T) {
	if _, err := Replay(&Fixture{}); err == nil {
		t.Fatal("expected error for fixture without subject_id")
	}
}

// #endregion replay-tests

// #region fixture-tests

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	raw := `{
		"description": "smoke",
		"subject_id": "brand-1",
		"gate_config": {"enforced": true, "strict_mode": true, "threshold": 70, "allow_user_override": true},
		"signals": [
			{"type": "rating", "weight": 2, "polarity": 1, "archetype_hint": "Dreamer", "prompt": "soft golden haze"}
		],
		"contents": [
			{"content_id": "c1", "caption": "sunset", "scores": {"virality": 80, "engagement": 80, "aesthetic": 80, "trend": 60}}
		],
		"expected_results": [{"content_id": "c1", "allowed": true}]
	}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	fix, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if fix.SubjectID != "brand-1" || len(fix.Signals) != 1 || len(fix.Contents) != 1 {
		t.Fatalf("fixture parsed wrong: %+v", fix)
	}
	if fix.Signals[0].ToSignal().Meta.ArchetypeHint != "Dreamer" {
		t.Fatal("signal conversion dropped the archetype hint")
	}
	if !fix.Gate.ToGateConfig().StrictMode {
		t.Fatal("gate config conversion dropped strict mode")
	}

	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing fixture file")
	}
}

// #endregion fixture-tests
