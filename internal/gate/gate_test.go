package gate

import (
	"context"
	"testing"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/genome"
)

// #region fakes

type fakeGenomes struct {
	g   *genome.Genome
	err error
}

func (f *fakeGenomes) GenomeFor(_ context.Context, _ string) (*genome.Genome, error) {
	return f.g, f.err
}

type fakeSaver struct {
	saves int
	err   error
}

func (f *fakeSaver) SaveContent(_ context.Context, _ *content.Item) error {
	f.saves++
	return f.err
}

type fakeApprovals struct {
	status string
	err    error
}

func (f *fakeApprovals) ApprovalStatus(_ context.Context, _ string) (string, error) {
	return f.status, f.err
}

func seasonedGenome(subjectID string, itemCount int) *genome.Genome {
	g := genome.New(subjectID)
	g.ItemCount = itemCount
	return g
}

func makeItem(scores content.AIScores) *content.Item {
	return &content.Item{
		ID:        "content-1",
		SubjectID: "brand-1",
		Caption:   "studio light test shot",
		Status:    content.StatusDraft,
		AIScores:  &scores,
	}
}

func newTestGate(cfg Config, g *genome.Genome) (*Gate, *fakeSaver) {
	saver := &fakeSaver{}
	return New(cfg, &fakeGenomes{g: g}, saver, nil, nil), saver
}

// #endregion fakes

// #region evaluate-tests

func TestEvaluateAllowsHighConviction(t *testing.T) {
	g, saver := newTestGate(DefaultConfig(), seasonedGenome("brand-1", 70))
	item := makeItem(content.AIScores{Virality: 80, Engagement: 80, Aesthetic: 80, Trend: 80})

	d := g.Evaluate(context.Background(), Request{Content: item, UserID: "user-1", Action: "publish"})

	if !d.Allowed {
		t.Fatalf("expected allow, got block: %s", d.Reason)
	}
	if d.Conviction == nil || d.Conviction.Score < DefaultConfig().Threshold {
		t.Fatalf("expected conviction at or above threshold, got %+v", d.Conviction)
	}
	if d.RequiresReview {
		t.Fatal("passing score should not require review")
	}
	if saver.saves != 1 {
		t.Fatalf("expected one persist of the computed conviction, got %d", saver.saves)
	}
}

func TestEvaluateBlocksLowConvictionInStrictMode(t *testing.T) {
	g, _ := newTestGate(DefaultConfig(), nil)
	item := makeItem(content.AIScores{Virality: 30, Engagement: 30, Aesthetic: 30, Trend: 30})

	d := g.Evaluate(context.Background(), Request{Content: item, UserID: "user-1", Action: "publish"})

	if d.Allowed {
		t.Fatalf("expected block, got allow: %s", d.Reason)
	}
	if d.Code != CodeBlocked {
		t.Fatalf("expected code %s, got %s", CodeBlocked, d.Code)
	}
	if len(d.Suggestions) == 0 {
		t.Fatal("blocked decision should carry suggestions")
	}
}

func TestEvaluateFlagsForReviewWhenNotStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictMode = false
	g, _ := newTestGate(cfg, nil)
	item := makeItem(content.AIScores{Virality: 30, Engagement: 30, Aesthetic: 30, Trend: 30})

	d := g.Evaluate(context.Background(), Request{Content: item, UserID: "user-1", Action: "schedule"})

	if !d.Allowed {
		t.Fatalf("non-strict mode should allow with review flag, got block: %s", d.Reason)
	}
	if !d.RequiresReview {
		t.Fatal("below-threshold allow should require review")
	}
}

func TestEvaluateBypassWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enforced = false
	g, saver := newTestGate(cfg, nil)
	item := makeItem(content.AIScores{})

	d := g.Evaluate(context.Background(), Request{Content: item, UserID: "user-1", Action: "publish"})

	if !d.Allowed || !d.Bypassed {
		t.Fatalf("expected bypassed allow, got %+v", d)
	}
	if saver.saves != 0 {
		t.Fatal("disabled gate should not touch persistence")
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	g, _ := newTestGate(DefaultConfig(), seasonedGenome("brand-1", 40))
	item := makeItem(content.AIScores{Virality: 55, Engagement: 62, Aesthetic: 71, Trend: 48})
	req := Request{Content: item, UserID: "user-1", Action: "publish"}

	first := g.Evaluate(context.Background(), req)
	second := g.Evaluate(context.Background(), req)

	if first.Allowed != second.Allowed {
		t.Fatalf("decision flipped across evaluations: %v vs %v", first.Allowed, second.Allowed)
	}
	if first.Conviction.Score != second.Conviction.Score {
		t.Fatalf("conviction changed across evaluations: %d vs %d",
			first.Conviction.Score, second.Conviction.Score)
	}
}

// #endregion evaluate-tests

// #region override-tests

func TestOverrideAllowsBlockedContent(t *testing.T) {
	g, _ := newTestGate(DefaultConfig(), nil)
	item := makeItem(content.AIScores{Virality: 30, Engagement: 30, Aesthetic: 30, Trend: 30})
	req := Request{Content: item, UserID: "user-1", Action: "publish"}

	blocked := g.Evaluate(context.Background(), req)
	if blocked.Allowed {
		t.Fatalf("precondition failed: low conviction should block, got %s", blocked.Reason)
	}

	item.Conviction.UserOverride = &content.UserOverride{Active: true, Reason: "launch announcement"}
	overridden := g.Evaluate(context.Background(), req)

	if !overridden.Allowed {
		t.Fatalf("active override should allow, got block: %s", overridden.Reason)
	}
	if overridden.Conviction.Score != blocked.Conviction.Score {
		t.Fatal("override must not change the conviction score")
	}
}

func TestOverrideIgnoredWhenDisallowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowUserOverride = false
	g, _ := newTestGate(cfg, nil)
	item := makeItem(content.AIScores{Virality: 30, Engagement: 30, Aesthetic: 30, Trend: 30})
	item.Conviction = &content.Conviction{
		Score:        38,
		Tier:         content.TierLow,
		UserOverride: &content.UserOverride{Active: true, Reason: "ignored"},
	}

	d := g.Evaluate(context.Background(), Request{Content: item, UserID: "user-1", Action: "publish"})

	if d.Allowed {
		t.Fatal("override must be ignored when policy disallows it")
	}
	if d.Code != CodeBlocked {
		t.Fatalf("expected code %s, got %s", CodeBlocked, d.Code)
	}
}

// #endregion override-tests

// #region queue-approval-tests

func TestQueueApprovalBlocksWithoutRecord(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequireQueueApproval = true
	gt := New(cfg, &fakeGenomes{g: seasonedGenome("brand-1", 70)}, &fakeSaver{}, nil, &fakeApprovals{status: ""})
	item := makeItem(content.AIScores{Virality: 80, Engagement: 80, Aesthetic: 80, Trend: 80})

	d := gt.Evaluate(context.Background(), Request{Content: item, UserID: "user-1", Action: "publish"})

	if d.Allowed {
		t.Fatal("missing approval record must block even when conviction passes")
	}
	if d.Code != CodeQueueApproval {
		t.Fatalf("expected code %s, got %s", CodeQueueApproval, d.Code)
	}
}

func TestQueueApprovalAllowsApprovedRecord(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequireQueueApproval = true
	gt := New(cfg, &fakeGenomes{g: seasonedGenome("brand-1", 70)}, &fakeSaver{}, nil, &fakeApprovals{status: "approved"})
	item := makeItem(content.AIScores{Virality: 80, Engagement: 80, Aesthetic: 80, Trend: 80})

	d := gt.Evaluate(context.Background(), Request{Content: item, UserID: "user-1", Action: "publish"})

	if !d.Allowed {
		t.Fatalf("approved record should allow, got block: %s", d.Reason)
	}
}

func TestQueueApprovalBlocksClosedWithoutSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequireQueueApproval = true
	gt := New(cfg, &fakeGenomes{g: seasonedGenome("brand-1", 70)}, &fakeSaver{}, nil, nil)
	item := makeItem(content.AIScores{Virality: 80, Engagement: 80, Aesthetic: 80, Trend: 80})

	d := gt.Evaluate(context.Background(), Request{Content: item, UserID: "user-1", Action: "publish"})

	if d.Allowed {
		t.Fatal("absent approval source must fail closed")
	}
}

// #endregion queue-approval-tests

// #region degradation-tests

func TestEvaluateToleratesGenomeLoadFailure(t *testing.T) {
	saver := &fakeSaver{}
	gt := New(DefaultConfig(), &fakeGenomes{err: context.DeadlineExceeded}, saver, nil, nil)
	item := makeItem(content.AIScores{Virality: 80, Engagement: 80, Aesthetic: 80, Trend: 80})

	d := gt.Evaluate(context.Background(), Request{Content: item, UserID: "user-1", Action: "publish"})

	if d.Conviction == nil {
		t.Fatal("conviction should still be computed without a genome")
	}
	// Without the genome's volume boost brand stays neutral, so the same
	// sub-scores land lower than in the seasoned case.
	if d.Conviction.Breakdown.Brand != 50 {
		t.Fatalf("expected neutral brand 50, got %v", d.Conviction.Breakdown.Brand)
	}
}

func TestConfigFromEnvKillSwitch(t *testing.T) {
	t.Setenv("TASTE_GATE_ENFORCED", "false")
	t.Setenv("TASTE_GATE_THRESHOLD", "55")

	cfg := ConfigFromEnv()
	if cfg.Enforced {
		t.Fatal("TASTE_GATE_ENFORCED=false should disable the gate")
	}
	if cfg.Threshold != 55 {
		t.Fatalf("expected threshold 55, got %d", cfg.Threshold)
	}
}

// #endregion degradation-tests
