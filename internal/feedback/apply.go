package feedback

// #region imports
import (
	"math"
	"time"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/genome"
)

// #endregion imports

// #region apply

// ApplyFeedbackToGenome folds one validation outcome into the genome's
// learning state: the primary archetype's learned confidence is nudged,
// the scorer weights shift between performance and taste, and the
// accuracy history advances. Bounded and renormalized on every call.
func ApplyFeedbackToGenome(g *genome.Genome, rec *content.ValidationRecord) {
	if rec == nil || !rec.Feedback.ShouldUpdateGenome {
		return
	}
	if g.Learning.ArchetypeAdjustments == nil {
		g.Learning.ArchetypeAdjustments = map[string]genome.ArchetypeAdjustment{}
	}

	underestimated := false
	for _, sig := range rec.Feedback.Signals {
		if sig.Direction == DirectionUnderestimated || sig.Direction == DirectionSuccessfulOverride {
			underestimated = true
		}
	}

	nudgeArchetype(g, underestimated, rec)
	nudgeWeights(g, underestimated, rec.Feedback.Weight)
	recordAccuracy(g, rec.Accuracy, rec.ValidatedAt)

	g.Learning.TotalFeedbackEvents++
}

// #endregion apply

// #region archetype-nudge

// nudgeArchetype moves the primary archetype's learned confidence by the
// fixed step per event, bounded to [confidenceMin, confidenceMax].
func nudgeArchetype(g *genome.Genome, underestimated bool, rec *content.ValidationRecord) {
	designation := g.Archetype.Primary.Designation
	if designation == "" || designation == genome.VoidDesignation {
		return
	}

	adj, ok := g.Learning.ArchetypeAdjustments[designation]
	if !ok {
		adj = genome.ArchetypeAdjustment{Confidence: 1.0}
	}

	step := confidenceNudge
	if !underestimated {
		step = -confidenceNudge
	}
	adj.Confidence = clampFloat(adj.Confidence+step, confidenceMin, confidenceMax)
	adj.TotalAdjustments++
	adj.PerformanceDelta += rec.Actual.EngagementScore - float64(rec.Predicted.ConvictionScore)

	g.Learning.ArchetypeAdjustments[designation] = adj
}

// #endregion archetype-nudge

// #region weight-nudge

// nudgeWeights shifts mass between the performance and taste weights and
// renormalizes all three to sum to 1.0. An underestimated outcome means
// raw performance carried the post further than the taste model expected.
func nudgeWeights(g *genome.Genome, underestimated bool, eventWeight float64) {
	if eventWeight <= 0 {
		eventWeight = 1
	}
	delta := weightNudge * eventWeight

	w := g.Learning.Weights
	if underestimated {
		w.Performance += delta
		w.Taste -= delta
	} else {
		w.Performance -= delta
		w.Taste += delta
	}
	w.Performance = math.Max(w.Performance, weightMin)
	w.Taste = math.Max(w.Taste, weightMin)
	w.Brand = math.Max(w.Brand, weightMin)

	total := w.Performance + w.Taste + w.Brand
	w.Performance /= total
	w.Taste /= total
	w.Brand /= total

	g.Learning.Weights = w
}

// #endregion weight-nudge

// #region accuracy-history

// recencyDecay weights each older accuracy entry at this multiple of the
// next-newer one when computing the overall accuracy.
const recencyDecay = 0.97

// recordAccuracy appends to the capped history and recomputes the overall
// recency-weighted accuracy.
func recordAccuracy(g *genome.Genome, acc int, at time.Time) {
	g.Learning.AccuracyHistory = append(g.Learning.AccuracyHistory, genome.AccuracyEntry{
		Accuracy:   acc,
		RecordedAt: at,
	})
	if len(g.Learning.AccuracyHistory) > genome.AccuracyHistoryCap {
		g.Learning.AccuracyHistory = g.Learning.AccuracyHistory[len(g.Learning.AccuracyHistory)-genome.AccuracyHistoryCap:]
	}

	var weightedSum, totalWeight float64
	weight := 1.0
	for i := len(g.Learning.AccuracyHistory) - 1; i >= 0; i-- {
		weightedSum += float64(g.Learning.AccuracyHistory[i].Accuracy) * weight
		totalWeight += weight
		weight *= recencyDecay
	}
	if totalWeight > 0 {
		g.Learning.OverallAccuracy = weightedSum / totalWeight
	}
}

// #endregion accuracy-history

// #region helpers

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
