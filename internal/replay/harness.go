package replay

import (
	"context"
	"fmt"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/conviction"
	"github.com/pulseplan/taste-engine/internal/gate"
	"github.com/pulseplan/taste-engine/internal/genome"
)

// #region results

// ContentResult is the gate outcome for one fixture content.
type ContentResult struct {
	ContentID  string `json:"content_id"`
	Conviction int    `json:"conviction"`
	Tier       string `json:"tier"`
	Allowed    bool   `json:"allowed"`
	Code       string `json:"code,omitempty"`
	Reason     string `json:"reason"`
}

// Summary aggregates one replay run.
type Summary struct {
	SignalCount      int             `json:"signal_count"`
	PrimaryArchetype string          `json:"primary_archetype"`
	Confidence       float64         `json:"confidence"`
	Allowed          int             `json:"allowed"`
	Blocked          int             `json:"blocked"`
	Results          []ContentResult `json:"results"`
	Mismatches       []string        `json:"mismatches,omitempty"`
}

// #endregion results

// #region memory-stores

// memoryGenomes serves a single prebuilt genome to the gate.
type memoryGenomes struct {
	genome *genome.Genome
}

func (m *memoryGenomes) GenomeFor(_ context.Context, subjectID string) (*genome.Genome, error) {
	if m.genome == nil || m.genome.SubjectID != subjectID {
		return nil, nil
	}
	return m.genome, nil
}

// memoryContents discards conviction persistence; replay is side-effect
// free outside its own result set.
type memoryContents struct{}

func (memoryContents) SaveContent(context.Context, *content.Item) error { return nil }

// #endregion memory-stores

// #region replay

// Replay runs a fixture through the full in-memory pipeline: signals
// build a genome via the classifier, then each content item is scored
// and gated exactly as the live scheduler would.
func Replay(fix *Fixture) (*Summary, error) {
	if fix.SubjectID == "" {
		return nil, fmt.Errorf("fixture has no subject_id")
	}

	gen := genome.New(fix.SubjectID)
	for _, fs := range fix.Signals {
		genome.RecordSignal(gen, fs.ToSignal())
	}

	g := gate.New(fix.Gate.ToGateConfig(), &memoryGenomes{genome: gen}, memoryContents{}, nil, nil)

	sum := &Summary{
		SignalCount:      len(gen.Signals),
		PrimaryArchetype: gen.Archetype.Primary.Designation,
		Confidence:       gen.Confidence,
	}

	ctx := context.Background()
	for i := range fix.Contents {
		fc := &fix.Contents[i]
		item := fc.ToItem(fix.SubjectID)
		if fc.Override {
			conv, _ := conviction.Calculate(item, gen, conviction.Options{StrictMode: fix.Gate.StrictMode})
			conv.UserOverride = &content.UserOverride{Active: true, Reason: fc.OverrideReason}
			item.Conviction = &conv
		}
		d := g.Evaluate(ctx, gate.Request{Content: item, UserID: fix.SubjectID, Action: "publish"})

		res := ContentResult{
			ContentID: item.ID,
			Allowed:   d.Allowed,
			Code:      d.Code,
			Reason:    d.Reason,
		}
		if d.Conviction != nil {
			res.Conviction = d.Conviction.Score
			res.Tier = string(d.Conviction.Tier)
		}
		sum.Results = append(sum.Results, res)
		if d.Allowed {
			sum.Allowed++
		} else {
			sum.Blocked++
		}
	}

	sum.Mismatches = checkExpected(fix, sum.Results)
	return sum, nil
}

// checkExpected compares results against the fixture's expectations.
func checkExpected(fix *Fixture, results []ContentResult) []string {
	if len(fix.Expected) == 0 {
		return nil
	}
	byID := make(map[string]ContentResult, len(results))
	for _, r := range results {
		byID[r.ContentID] = r
	}
	var out []string
	for _, ex := range fix.Expected {
		r, ok := byID[ex.ContentID]
		if !ok {
			out = append(out, fmt.Sprintf("%s: expected a result, got none", ex.ContentID))
			continue
		}
		if r.Allowed != ex.Allowed {
			out = append(out, fmt.Sprintf("%s: expected allowed=%v, got allowed=%v (score %d)", ex.ContentID, ex.Allowed, r.Allowed, r.Conviction))
		}
	}
	return out
}

// #endregion replay
