package content

// #region imports
import (
	"time"

	"github.com/google/uuid"
)

// #endregion imports

// #region status

// Status is the publish lifecycle state of one content item.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusQueued    Status = "queued"
	StatusApproved  Status = "approved"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// #endregion status

// #region ai-scores

// AIScores are the four content-quality sub-scores (0-100 each) supplied
// by the external analysis collaborator.
type AIScores struct {
	Virality   float64 `json:"virality"`
	Engagement float64 `json:"engagement"`
	Aesthetic  float64 `json:"aesthetic"`
	Trend      float64 `json:"trend"`
}

// #endregion ai-scores

// #region conviction

// Tier buckets a conviction score.
type Tier string

const (
	TierLow         Tier = "low"
	TierMedium      Tier = "medium"
	TierHigh        Tier = "high"
	TierExceptional Tier = "exceptional"
)

// Breakdown exposes the component scores behind a conviction.
type Breakdown struct {
	Performance float64 `json:"performance"`
	Brand       float64 `json:"brand"`
}

// Weights blend performance and brand into the composite score.
type Weights struct {
	Performance float64 `json:"performance"`
	Brand       float64 `json:"brand"`
}

// UserOverride marks a manual bypass of the approval gate for this item.
type UserOverride struct {
	Active bool   `json:"active"`
	Reason string `json:"reason,omitempty"`
}

// Conviction is the cached composite score for one content item.
type Conviction struct {
	Score        int           `json:"score"` // 0-100
	Tier         Tier          `json:"tier"`
	Breakdown    Breakdown     `json:"breakdown"`
	Weights      Weights       `json:"weights"`
	CalculatedAt time.Time     `json:"calculatedAt"`
	UserOverride *UserOverride `json:"userOverride,omitempty"`
}

// #endregion conviction

// #region validation

// PredictionQuality buckets validation accuracy.
type PredictionQuality string

const (
	QualityExcellent PredictionQuality = "excellent"
	QualityGood      PredictionQuality = "good"
	QualityFair      PredictionQuality = "fair"
	QualityPoor      PredictionQuality = "poor"
	QualityVeryPoor  PredictionQuality = "very_poor"
)

// FeedbackSignal is one genome adjustment derived from an observed outcome.
type FeedbackSignal struct {
	Direction string  `json:"direction"` // "underestimated" | "overestimated" | "successful_override"
	Magnitude float64 `json:"magnitude"`
	Archetype string  `json:"archetype,omitempty"`
}

// ValidationFeedback carries the genome update derived from one outcome.
type ValidationFeedback struct {
	ShouldUpdateGenome bool             `json:"shouldUpdateGenome"`
	Weight             float64          `json:"weight"`
	Signals            []FeedbackSignal `json:"signals,omitempty"`
}

// PredictedOutcome snapshots the conviction at validation time.
type PredictedOutcome struct {
	ConvictionScore int       `json:"convictionScore"`
	Tier            Tier      `json:"tier"`
	Breakdown       Breakdown `json:"breakdown"`
}

// ActualOutcome snapshots observed engagement.
type ActualOutcome struct {
	EngagementScore float64            `json:"engagementScore"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
}

// ValidationRecord compares the predicted conviction to the observed
// outcome. Created once per publish-and-measure cycle and written back
// onto the content item.
type ValidationRecord struct {
	Status            string             `json:"status"` // "validated" | "not_posted" | "no_conviction"
	Predicted         PredictedOutcome   `json:"predicted"`
	Actual            ActualOutcome      `json:"actual"`
	Accuracy          int                `json:"accuracy"` // 0-100
	PredictionQuality PredictionQuality  `json:"predictionQuality"`
	Feedback          ValidationFeedback `json:"feedback"`
	ValidatedAt       time.Time          `json:"validatedAt"`
}

// #endregion validation

// #region item

// Item is one piece of plannable content.
type Item struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId"` // owning brand/profile
	Platform  string `json:"platform"`
	Caption   string `json:"caption,omitempty"`

	Status   Status    `json:"status"`
	AIScores *AIScores `json:"aiScores,omitempty"`

	Conviction *Conviction       `json:"conviction,omitempty"`
	Validation *ValidationRecord `json:"validation,omitempty"`

	PostID   string     `json:"postId,omitempty"`
	PostURL  string     `json:"postUrl,omitempty"`
	PostedAt *time.Time `json:"postedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewItem creates a draft item for a subject with a fresh id.
func NewItem(subjectID, platform, caption string) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Platform:  platform,
		Caption:   caption,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// #endregion item
