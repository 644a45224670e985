package feedback

// #region imports
import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/platform"
)

// #endregion imports

// #region validator

// Validator compares predicted conviction to observed engagement after
// publish and writes adjustments back into the genome.
type Validator struct {
	contents ContentStore
	genomes  GenomeStore
	metrics  platform.MetricsFetcher
}

// NewValidator wires the outcome validator.
func NewValidator(contents ContentStore, genomes GenomeStore, metrics platform.MetricsFetcher) *Validator {
	return &Validator{contents: contents, genomes: genomes, metrics: metrics}
}

// #endregion validator

// #region validate

// ValidateConviction runs one publish-and-measure cycle for a content
// item. Missing conviction or metrics short-circuit with a status record
// rather than an error; only collaborator failures return an error.
func (v *Validator) ValidateConviction(ctx context.Context, contentID string) (*content.ValidationRecord, error) {
	item, err := v.contents.FindContent(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("find content %s: %w", contentID, err)
	}

	now := time.Now().UTC()
	if item.Conviction == nil {
		rec := &content.ValidationRecord{Status: StatusNoConviction, ValidatedAt: now}
		return rec, nil
	}

	metrics, err := v.fetchMetrics(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("fetch metrics for %s: %w", contentID, err)
	}
	if metrics.Status != "posted" {
		rec := &content.ValidationRecord{Status: StatusNotPosted, ValidatedAt: now}
		return rec, nil
	}

	rec := buildRecord(item.Conviction, metrics, now)
	item.Validation = rec
	item.UpdatedAt = now
	if err := v.contents.SaveContent(ctx, item); err != nil {
		return nil, fmt.Errorf("persist validation for %s: %w", contentID, err)
	}

	if rec.Feedback.ShouldUpdateGenome {
		if err := v.applyToGenome(ctx, item, rec); err != nil {
			// Feedback failures are logged and skipped, never fatal to
			// the validation itself.
			log.Printf("[FEEDBACK] genome update failed for %s: %v", item.SubjectID, err)
		}
	}
	return rec, nil
}

// ValidateBatch validates many items; per-item failures are logged and
// skipped so one bad item never aborts the batch.
func (v *Validator) ValidateBatch(ctx context.Context, contentIDs []string) []*content.ValidationRecord {
	records := make([]*content.ValidationRecord, 0, len(contentIDs))
	for _, id := range contentIDs {
		rec, err := v.ValidateConviction(ctx, id)
		if err != nil {
			log.Printf("[FEEDBACK] validation skipped for %s: %v", id, err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// fetchMetrics retries transient metric-fetch failures with fibonacci
// backoff before giving up.
func (v *Validator) fetchMetrics(ctx context.Context, contentID string) (platform.MetricsResult, error) {
	var result platform.MetricsResult
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		result, err = v.metrics.FetchMetrics(ctx, contentID)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	return result, err
}

func (v *Validator) applyToGenome(ctx context.Context, item *content.Item, rec *content.ValidationRecord) error {
	g, err := v.genomes.GenomeFor(ctx, item.SubjectID)
	if err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("no genome for subject %s", item.SubjectID)
	}
	ApplyFeedbackToGenome(g, rec)
	return v.genomes.SaveGenome(ctx, g)
}

// #endregion validate

// #region record

// buildRecord scores prediction accuracy and derives feedback signals.
func buildRecord(conv *content.Conviction, metrics platform.MetricsResult, now time.Time) *content.ValidationRecord {
	predicted := float64(conv.Score)
	actual := metrics.EngagementScore

	rec := &content.ValidationRecord{
		Status: StatusValidated,
		Predicted: content.PredictedOutcome{
			ConvictionScore: conv.Score,
			Tier:            conv.Tier,
			Breakdown:       conv.Breakdown,
		},
		Actual: content.ActualOutcome{
			EngagementScore: actual,
			Metrics:         metrics.Metrics,
		},
		Accuracy:    accuracy(predicted, actual),
		ValidatedAt: now,
	}
	rec.PredictionQuality = qualityFor(rec.Accuracy)

	diff := actual - predicted
	if math.Abs(diff) < adjustmentFloor {
		return rec
	}

	direction := DirectionUnderestimated
	if diff < 0 {
		direction = DirectionOverestimated
	}
	rec.Feedback = content.ValidationFeedback{
		ShouldUpdateGenome: true,
		Weight:             1.0,
		Signals: []content.FeedbackSignal{{
			Direction: direction,
			Magnitude: math.Abs(diff),
		}},
	}

	// An overridden low-conviction post that outperformed is the
	// strongest possible evidence the user knew better: double it.
	overridden := conv.UserOverride != nil && conv.UserOverride.Active
	if overridden && conv.Tier == content.TierLow && diff >= adjustmentFloor {
		rec.Feedback.Weight *= 2
		rec.Feedback.Signals = append(rec.Feedback.Signals, content.FeedbackSignal{
			Direction: DirectionSuccessfulOverride,
			Magnitude: diff,
		})
	}
	return rec
}

// accuracy is 100 − |p−a|/max(p,a)×100, clamped at 0. Two zero scores
// agree perfectly.
func accuracy(predicted, actual float64) int {
	denom := math.Max(predicted, actual)
	if denom == 0 {
		return 100
	}
	acc := 100 - math.Abs(predicted-actual)/denom*100
	if acc < 0 {
		return 0
	}
	return int(math.Round(acc))
}

// qualityFor buckets accuracy into the fixed prediction-quality tiers.
func qualityFor(acc int) content.PredictionQuality {
	switch {
	case acc >= 90:
		return content.QualityExcellent
	case acc >= 75:
		return content.QualityGood
	case acc >= 60:
		return content.QualityFair
	case acc >= 40:
		return content.QualityPoor
	default:
		return content.QualityVeryPoor
	}
}

// #endregion record
