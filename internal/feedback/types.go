package feedback

// #region imports
import (
	"context"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/genome"
)

// #endregion imports

// #region thresholds

const (
	// adjustmentFloor is the minimum |actual − predicted| worth learning
	// from. Small errors are noise.
	adjustmentFloor = 15.0

	// Archetype learned-confidence nudge per feedback event and bounds.
	confidenceNudge = 0.05
	confidenceMin   = 0.5
	confidenceMax   = 1.5

	// Scorer weight nudge per feedback event.
	weightNudge = 0.02
	weightMin   = 0.05
)

// #endregion thresholds

// #region statuses

const (
	StatusValidated    = "validated"
	StatusNotPosted    = "not_posted"
	StatusNoConviction = "no_conviction"
)

// #endregion statuses

// #region directions

const (
	DirectionUnderestimated     = "underestimated"
	DirectionOverestimated      = "overestimated"
	DirectionSuccessfulOverride = "successful_override"
)

// #endregion directions

// #region collaborators

// ContentStore is the narrow content surface the validator needs.
type ContentStore interface {
	FindContent(ctx context.Context, id string) (*content.Item, error)
	SaveContent(ctx context.Context, item *content.Item) error
}

// GenomeStore loads and saves genomes for feedback application.
type GenomeStore interface {
	GenomeFor(ctx context.Context, subjectID string) (*genome.Genome, error)
	SaveGenome(ctx context.Context, g *genome.Genome) error
}

// #endregion collaborators
