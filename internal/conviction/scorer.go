package conviction

// #region imports
import (
	"math"
	"time"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/genome"
)

// #endregion imports

// #region config

// DefaultWeights is the untuned performance/brand blend.
func DefaultWeights() content.Weights {
	return content.Weights{Performance: 0.6, Brand: 0.4}
}

// Options tune a single Calculate call.
type Options struct {
	Weights    *content.Weights  // nil = DefaultWeights
	Scores     *content.AIScores // nil = use the item's cached scores
	StrictMode bool              // apply the brand-consistency discount

	// PositiveRatioThreshold is the minimum share of positive signals
	// before the strict-mode brand discount kicks in.
	PositiveRatioThreshold float64
}

const (
	defaultPositiveRatioThreshold = 0.6

	brandNeutral    = 50.0
	brandCap        = 85.0
	brandEmptyFloor = 20.0

	trendPenaltyOnset = 80.0
	trendPenaltyFloor = 0.80
)

// #endregion config

// #region calculate

// Calculate produces the conviction score for one content item. Pure
// aside from the genome read: the same inputs always yield the same
// conviction, and recomputation is last-write-wins on the cached copy.
func Calculate(item *content.Item, g *genome.Genome, opts Options) (content.Conviction, content.AIScores) {
	weights := DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	threshold := opts.PositiveRatioThreshold
	if threshold == 0 {
		threshold = defaultPositiveRatioThreshold
	}

	scores := content.AIScores{}
	if opts.Scores != nil {
		scores = *opts.Scores
	} else if item.AIScores != nil {
		scores = *item.AIScores
	}

	performance := (scores.Virality + scores.Engagement + scores.Aesthetic + scores.Trend) / 4.0
	brand := brandScore(item, g, scores, opts.StrictMode, threshold)
	factor := temporalFactor(scores.Trend)

	raw := (weights.Performance*performance + weights.Brand*brand) * factor
	score := int(math.Round(raw))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	conv := content.Conviction{
		Score:        score,
		Tier:         TierFor(score),
		Breakdown:    content.Breakdown{Performance: performance, Brand: brand},
		Weights:      weights,
		CalculatedAt: time.Now().UTC(),
	}
	// An active override survives recalculation.
	if item.Conviction != nil && item.Conviction.UserOverride != nil {
		conv.UserOverride = item.Conviction.UserOverride
	}
	return conv, scores
}

// #endregion calculate

// #region brand

// brandScore starts neutral and is adjusted by the volume and positivity
// of prior signals when a genome is supplied. Content with no detectable
// signal of any kind is penalized to a low floor so an empty submission
// cannot coast on a neutral brand score.
func brandScore(item *content.Item, g *genome.Genome, scores content.AIScores, strict bool, threshold float64) float64 {
	if isEmptyContent(item, scores) {
		return brandEmptyFloor
	}

	brand := brandNeutral
	if g == nil {
		return brand
	}

	// Volume boost: every prior signal raises the baseline a little.
	brand += math.Min(brandCap-brandNeutral, float64(g.ItemCount)*0.5)
	if brand > brandCap {
		brand = brandCap
	}

	if strict && positiveRatio(g) < threshold {
		brand *= 0.9
	}
	return brand
}

// positiveRatio is the share of polarized signals that are positive.
// A genome with no polarized signals counts as neutral (ratio 1).
func positiveRatio(g *genome.Genome) float64 {
	var pos, total int
	for _, s := range g.Signals {
		switch genome.Polarity(s) {
		case 1:
			pos++
			total++
		case -1:
			total++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(pos) / float64(total)
}

// isEmptyContent reports whether the item carries no caption, no analysis,
// and no non-zero sub-score.
func isEmptyContent(item *content.Item, scores content.AIScores) bool {
	if item.Caption != "" {
		return false
	}
	if item.AIScores != nil {
		return false
	}
	return scores.Virality == 0 && scores.Engagement == 0 &&
		scores.Aesthetic == 0 && scores.Trend == 0
}

// #endregion brand

// #region temporal

// temporalFactor discounts trend-chasing: a multiplicative penalty applied
// only when the trend sub-score exceeds the onset, scaling linearly down
// to the floor as trend approaches 100.
func temporalFactor(trend float64) float64 {
	if trend <= trendPenaltyOnset {
		return 1.0
	}
	if trend > 100 {
		trend = 100
	}
	span := (trend - trendPenaltyOnset) / (100 - trendPenaltyOnset)
	return 1.0 - (1.0-trendPenaltyFloor)*span
}

// #endregion temporal

// #region tier

// TierFor buckets a conviction score.
func TierFor(score int) content.Tier {
	switch {
	case score >= 85:
		return content.TierExceptional
	case score >= 70:
		return content.TierHigh
	case score >= 50:
		return content.TierMedium
	default:
		return content.TierLow
	}
}

// #endregion tier
