package platform

// #region imports
import (
	"context"
	"time"

	"github.com/pulseplan/taste-engine/internal/content"
)

// #endregion imports

// #region analyzer

// Analyzer abstracts the external content-quality analysis service so the
// scorer and gate can be tested without a remote call.
type Analyzer interface {
	Analyze(ctx context.Context, item *content.Item) (content.AIScores, error)
}

// #endregion analyzer

// #region publisher

// PublishResult is the outcome of one publish call.
type PublishResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"postId,omitempty"`
	PostURL string `json:"postUrl,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Publisher posts one content item to an external social platform.
type Publisher interface {
	Publish(ctx context.Context, userID string, item *content.Item, platform string) (PublishResult, error)
}

// #endregion publisher

// #region metrics

// MetricsResult is the observed engagement for a published item.
type MetricsResult struct {
	Status          string             `json:"status"` // "posted" | "not_posted"
	EngagementScore float64            `json:"engagementScore"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
	PostedAt        *time.Time         `json:"postedAt,omitempty"`
}

// MetricsFetcher retrieves observed engagement for a published item.
type MetricsFetcher interface {
	FetchMetrics(ctx context.Context, contentID string) (MetricsResult, error)
}

// #endregion metrics

// #region credentials

// CredentialResult reports whether platform credentials are usable.
type CredentialResult struct {
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
	NeedsRefresh bool   `json:"needsRefresh,omitempty"`
}

// CredentialValidator checks a user's platform credentials before posting.
type CredentialValidator interface {
	Validate(ctx context.Context, userID, platform string) (CredentialResult, error)
}

// #endregion credentials
