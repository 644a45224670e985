package gate

// #region imports
import (
	"context"
	"os"
	"strconv"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/genome"
)

// #endregion imports

// #region codes

// CodeBlocked is returned when a conviction score fails the strict gate.
const CodeBlocked = "APPROVAL_GATE_BLOCKED"

// CodeQueueApproval is returned when the manual approval record is missing.
const CodeQueueApproval = "QUEUE_APPROVAL_REQUIRED"

// #endregion codes

// #region config

// Config is the process-wide approval gate policy. Env-sourced once at
// startup and immutable for the process lifetime.
type Config struct {
	Enforced             bool
	StrictMode           bool
	Threshold            int
	RequireQueueApproval bool
	AllowUserOverride    bool
}

// DefaultConfig returns the shipped gate policy.
func DefaultConfig() Config {
	return Config{
		Enforced:             true,
		StrictMode:           true,
		Threshold:            70,
		RequireQueueApproval: false,
		AllowUserOverride:    true,
	}
}

// ConfigFromEnv reads the gate policy from the environment.
// Kill switch: TASTE_GATE_ENFORCED=false disables gating entirely.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("TASTE_GATE_ENFORCED"); v == "false" {
		cfg.Enforced = false
	}
	if v := os.Getenv("TASTE_GATE_STRICT"); v == "false" {
		cfg.StrictMode = false
	}
	if v := os.Getenv("TASTE_GATE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 100 {
			cfg.Threshold = n
		}
	}
	if v := os.Getenv("TASTE_GATE_QUEUE_APPROVAL"); v == "true" {
		cfg.RequireQueueApproval = true
	}
	if v := os.Getenv("TASTE_GATE_ALLOW_OVERRIDE"); v == "false" {
		cfg.AllowUserOverride = false
	}
	return cfg
}

// #endregion config

// #region request

// Request bundles the inputs for one gate evaluation.
type Request struct {
	Content *content.Item
	UserID  string
	Action  string // "schedule" | "publish" | "manual_post"
}

// #endregion request

// #region decision

// Decision is the structured gate outcome. Policy blocks are values, not
// errors: a blocked action carries a code, a reason, and suggestions.
type Decision struct {
	Allowed        bool
	Reason         string
	Code           string
	Conviction     *content.Conviction
	RequiresReview bool
	Suggestions    []string
	Bypassed       bool
}

// #endregion decision

// #region collaborators

// GenomeSource loads the taste genome for a subject. A missing genome
// returns (nil, nil); the scorer treats that as neutral brand.
type GenomeSource interface {
	GenomeFor(ctx context.Context, subjectID string) (*genome.Genome, error)
}

// ContentSaver persists a content item after the conviction-ensure step.
type ContentSaver interface {
	SaveContent(ctx context.Context, item *content.Item) error
}

// ApprovalSource reports the independent manual-approval status for an
// item ("approved", "published", "pending", or "" when absent).
type ApprovalSource interface {
	ApprovalStatus(ctx context.Context, contentID string) (string, error)
}

// #endregion collaborators
