package platform

// #region imports
import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/pulseplan/taste-engine/internal/content"
)

// #endregion imports

// #region rate-limited-publisher

// RateLimitedPublisher decorates a Publisher with a token bucket so the
// scheduler cannot hammer the platform API across close ticks.
type RateLimitedPublisher struct {
	inner   Publisher
	limiter *rate.Limiter
}

// NewRateLimitedPublisher wraps inner with r events/sec and burst b.
func NewRateLimitedPublisher(inner Publisher, r rate.Limit, b int) *RateLimitedPublisher {
	return &RateLimitedPublisher{
		inner:   inner,
		limiter: rate.NewLimiter(r, b),
	}
}

// Publish waits for a token, then delegates. A cancelled context surfaces
// as an error before the remote call is attempted.
func (p *RateLimitedPublisher) Publish(ctx context.Context, userID string, item *content.Item, platform string) (PublishResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return PublishResult{}, fmt.Errorf("publish rate limit: %w", err)
	}
	return p.inner.Publish(ctx, userID, item, platform)
}

// #endregion rate-limited-publisher
