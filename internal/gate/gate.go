package gate

// #region imports
import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/conviction"
	"github.com/pulseplan/taste-engine/internal/platform"
)

// #endregion imports

// #region gate

// Gate is the approval policy deciding whether a content item may be
// scheduled or published given its conviction score and overrides.
type Gate struct {
	config    Config
	genomes   GenomeSource
	contents  ContentSaver
	analyzer  platform.Analyzer
	approvals ApprovalSource

	// ensure collapses concurrent conviction computes for the same
	// content id; the ensure step both reads and writes the item.
	ensure singleflight.Group
}

// New creates a gate. analyzer and approvals may be nil: without an
// analyzer the scorer falls back to cached sub-scores, and without an
// approval source the queue-approval requirement blocks closed.
func New(config Config, genomes GenomeSource, contents ContentSaver, analyzer platform.Analyzer, approvals ApprovalSource) *Gate {
	return &Gate{
		config:    config,
		genomes:   genomes,
		contents:  contents,
		analyzer:  analyzer,
		approvals: approvals,
	}
}

// Config returns the immutable gate policy.
func (g *Gate) Config() Config {
	return g.config
}

// #endregion gate

// #region evaluate

// Evaluate applies the approval policy to one action. Safe to call at
// both schedule and publish time; it never mutates the item except via
// the conviction-ensure step, and unchanged inputs yield the same
// decision.
func (g *Gate) Evaluate(ctx context.Context, req Request) Decision {
	if !g.config.Enforced {
		log.Printf("[GATE] bypass: gating disabled, action=%s content=%s", req.Action, req.Content.ID)
		return Decision{
			Allowed:    true,
			Bypassed:   true,
			Reason:     "approval gate disabled",
			Conviction: req.Content.Conviction,
		}
	}

	conv := g.ensureConviction(ctx, req.Content)

	// An active, permitted override beats the score check.
	if conv.UserOverride != nil && conv.UserOverride.Active && g.config.AllowUserOverride {
		return g.withQueueApproval(ctx, req, Decision{
			Allowed:    true,
			Reason:     fmt.Sprintf("user override active: %s", conv.UserOverride.Reason),
			Conviction: conv,
		})
	}

	if conv.Score < g.config.Threshold {
		if g.config.StrictMode {
			return Decision{
				Allowed:     false,
				Code:        CodeBlocked,
				Reason:      fmt.Sprintf("conviction %d below threshold %d", conv.Score, g.config.Threshold),
				Conviction:  conv,
				Suggestions: suggestionsFor(conv),
			}
		}
		return g.withQueueApproval(ctx, req, Decision{
			Allowed:        true,
			RequiresReview: true,
			Reason:         fmt.Sprintf("conviction %d below threshold %d, flagged for review", conv.Score, g.config.Threshold),
			Conviction:     conv,
		})
	}

	return g.withQueueApproval(ctx, req, Decision{
		Allowed:    true,
		Reason:     fmt.Sprintf("conviction %d meets threshold %d", conv.Score, g.config.Threshold),
		Conviction: conv,
	})
}

// #endregion evaluate

// #region ensure-conviction

// ensureConviction computes and persists the conviction when absent.
// Collaborator failures degrade: the score is still computed from
// whatever inputs exist and persistence errors are logged, never thrown.
func (g *Gate) ensureConviction(ctx context.Context, item *content.Item) *content.Conviction {
	if item.Conviction != nil {
		return item.Conviction
	}

	v, _, _ := g.ensure.Do(item.ID, func() (any, error) {
		if item.Conviction != nil { // raced with another caller
			return item.Conviction, nil
		}

		opts := conviction.Options{StrictMode: g.config.StrictMode}
		if item.AIScores == nil && g.analyzer != nil {
			if scores, err := g.analyzer.Analyze(ctx, item); err != nil {
				log.Printf("[GATE] analyze failed for %s: %v", item.ID, err)
			} else {
				opts.Scores = &scores
			}
		}

		gen, err := g.genomes.GenomeFor(ctx, item.SubjectID)
		if err != nil {
			log.Printf("[GATE] genome load failed for %s: %v", item.SubjectID, err)
			gen = nil
		}

		conv, scores := conviction.Calculate(item, gen, opts)
		item.Conviction = &conv
		if item.AIScores == nil && opts.Scores != nil {
			item.AIScores = &scores
		}
		if err := g.contents.SaveContent(ctx, item); err != nil {
			log.Printf("[GATE] persist conviction failed for %s: %v", item.ID, err)
		}
		return item.Conviction, nil
	})
	return v.(*content.Conviction)
}

// #endregion ensure-conviction

// #region queue-approval

// withQueueApproval layers the manual-approval requirement onto an
// otherwise allowed decision. The record must show approved or published
// status; anything else blocks even when conviction passed.
func (g *Gate) withQueueApproval(ctx context.Context, req Request, d Decision) Decision {
	if !g.config.RequireQueueApproval {
		return d
	}

	status := ""
	if g.approvals != nil {
		s, err := g.approvals.ApprovalStatus(ctx, req.Content.ID)
		if err != nil {
			log.Printf("[GATE] approval lookup failed for %s: %v", req.Content.ID, err)
		} else {
			status = s
		}
	}
	if status == "approved" || status == "published" {
		return d
	}
	return Decision{
		Allowed:    false,
		Code:       CodeQueueApproval,
		Reason:     "queue approval required before this action",
		Conviction: d.Conviction,
		Suggestions: []string{
			"approve the item in the review queue",
		},
	}
}

// #endregion queue-approval

// #region suggestions

// suggestionsFor turns a blocked conviction into actionable next steps.
func suggestionsFor(conv *content.Conviction) []string {
	var out []string
	if conv.Breakdown.Performance < 50 {
		out = append(out, "strengthen the content itself: hook, framing, and visual quality drive the performance score")
	}
	if conv.Breakdown.Brand < 50 {
		out = append(out, "align the caption with the account's learned taste keywords")
	}
	if conv.Breakdown.Brand == 20 && conv.Breakdown.Performance == 0 {
		out = append(out, "add a caption or run analysis before submitting an empty item")
	}
	out = append(out, "request a manual override if this post is intentionally off-profile")
	return out
}

// #endregion suggestions
