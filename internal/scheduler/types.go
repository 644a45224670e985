package scheduler

// #region imports
import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/gate"
)

// #endregion imports

// #region unit-status

// UnitStatus is the scheduler state machine position for one unit.
type UnitStatus string

const (
	StatusScheduled UnitStatus = "scheduled"
	StatusPosting   UnitStatus = "posting"
	StatusPaused    UnitStatus = "paused"
	StatusCompleted UnitStatus = "completed"
	StatusFailed    UnitStatus = "failed"
)

// #endregion unit-status

// #region unit

// UnitItem references one content item in a unit's posting order.
type UnitItem struct {
	ContentID string `json:"contentId"`
	Posted    bool   `json:"posted"`
	Order     int    `json:"order"`
}

// Cadence is the posting rhythm for a unit.
type Cadence struct {
	Hours float64 `json:"hours"` // interval between posts; 0 = 24h
}

// Interval returns the cadence as a duration, defaulting to daily.
func (c Cadence) Interval() time.Duration {
	if c.Hours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Hours * float64(time.Hour))
}

// Scheduling holds the unit's cadence policy and toggles.
type Scheduling struct {
	Enabled  bool    `json:"enabled"`
	AutoPost bool    `json:"autoPost"`
	Cadence  Cadence `json:"cadence"`
}

// UnitError is a structured failure recorded on a unit.
type UnitError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Unit is a queue of content items posted on a cadence.
type Unit struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId"`
	UserID    string `json:"userId"`
	Platform  string `json:"platform"`

	Items      []UnitItem  `json:"items"`
	Scheduling Scheduling  `json:"scheduling"`
	Status     UnitStatus  `json:"status"`
	NextPostAt time.Time   `json:"nextPostAt"`
	Errors     []UnitError `json:"errors,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUnit creates a scheduled, auto-posting unit over the given content
// ids in order. The first post is due immediately.
func NewUnit(subjectID, userID, platform string, contentIDs []string, cadence Cadence) *Unit {
	now := time.Now().UTC()
	u := &Unit{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		UserID:    userID,
		Platform:  platform,
		Scheduling: Scheduling{
			Enabled:  true,
			AutoPost: true,
			Cadence:  cadence,
		},
		Status:     StatusScheduled,
		NextPostAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, id := range contentIDs {
		u.Items = append(u.Items, UnitItem{ContentID: id, Order: i})
	}
	return u
}

// NextUnposted returns the lowest-order unposted item, or nil.
func (u *Unit) NextUnposted() *UnitItem {
	var next *UnitItem
	for i := range u.Items {
		it := &u.Items[i]
		if it.Posted {
			continue
		}
		if next == nil || it.Order < next.Order {
			next = it
		}
	}
	return next
}

// errorCap bounds the retained error log per unit.
const errorCap = 50

// RecordError appends a structured error, evicting the oldest past the cap.
func (u *Unit) RecordError(code, message string, at time.Time) {
	u.Errors = append(u.Errors, UnitError{Code: code, Message: message, At: at})
	if len(u.Errors) > errorCap {
		u.Errors = u.Errors[len(u.Errors)-errorCap:]
	}
}

// #endregion unit

// #region config

// Config tunes the polling scheduler.
type Config struct {
	PollInterval time.Duration
}

// DefaultConfig returns the shipped poll interval.
func DefaultConfig() Config {
	return Config{PollInterval: 60 * time.Second}
}

// ConfigFromEnv reads TASTE_POLL_SECONDS when set.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("TASTE_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = time.Duration(n) * time.Second
		}
	}
	return cfg
}

// #endregion config

// #region collaborators

// UnitRepo is the narrow persistence surface the scheduler needs.
type UnitRepo interface {
	Due(ctx context.Context, now time.Time) ([]*Unit, error)
	FindUnit(ctx context.Context, id string) (*Unit, error)
	SaveUnit(ctx context.Context, u *Unit) error
}

// ContentRepo loads and saves content items during posting.
type ContentRepo interface {
	FindContent(ctx context.Context, id string) (*content.Item, error)
	SaveContent(ctx context.Context, item *content.Item) error
}

// Approver re-validates the approval gate at publish time.
type Approver interface {
	Evaluate(ctx context.Context, req gate.Request) gate.Decision
}

// #endregion collaborators
