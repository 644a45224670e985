package scheduler

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/gate"
	"github.com/pulseplan/taste-engine/internal/logging"
	"github.com/pulseplan/taste-engine/internal/platform"
)

// #endregion imports

// #region error-codes

const (
	ErrCodeAuth           = "AUTH_FAILED"
	ErrCodePublish        = "PUBLISH_FAILED"
	ErrCodeContentMissing = "CONTENT_MISSING"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// #endregion error-codes

// #region scheduler

// Scheduler is the autonomous polling poster. One cooperative loop: a
// single timer fires per interval and all due units are processed
// sequentially within that tick, so no two ticks race on the same unit.
type Scheduler struct {
	config    Config
	units     UnitRepo
	contents  ContentRepo
	gate      Approver
	publisher platform.Publisher
	creds     platform.CredentialValidator
	db        *sql.DB // decision log; nil = skip durable logging

	now  func() time.Time
	stop chan struct{}
	done chan struct{}
}

// New creates a scheduler. It does not start polling until Start.
func New(config Config, units UnitRepo, contents ContentRepo, g Approver, publisher platform.Publisher, creds platform.CredentialValidator, db *sql.DB) *Scheduler {
	return &Scheduler{
		config:    config,
		units:     units,
		contents:  contents,
		gate:      g,
		publisher: publisher,
		creds:     creds,
		db:        db,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// #endregion scheduler

// #region lifecycle

// Start launches the polling loop. It returns when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	defer close(s.done)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	log.Printf("[SCHED] polling every %s", s.config.PollInterval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				log.Printf("[SCHED] tick error: %v", err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for the in-flight tick.
func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
}

// #endregion lifecycle

// #region tick

// Tick processes every due unit sequentially. Exported so tests and the
// manual trigger path can drive the scheduler without the timer.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()
	due, err := s.units.Due(ctx, now)
	if err != nil {
		return fmt.Errorf("query due units: %w", err)
	}
	for _, u := range due {
		// A unit already claimed by a prior tick is skipped; its
		// posting status is the lease.
		if u.Status != StatusScheduled {
			continue
		}
		s.processUnit(ctx, u)
	}
	return nil
}

// #endregion tick

// #region process-unit

// processUnit posts at most one item from the unit, then re-arms or
// finishes it. Every exit path persists the unit.
func (s *Scheduler) processUnit(ctx context.Context, u *Unit) {
	now := s.now()
	u.Status = StatusPosting
	if err := s.units.SaveUnit(ctx, u); err != nil {
		log.Printf("[SCHED] lease save failed for unit %s: %v", u.ID, err)
		return
	}

	// Credentials first: an auth failure needs external re-auth, so the
	// unit pauses rather than retrying.
	cred, err := s.creds.Validate(ctx, u.UserID, u.Platform)
	if err != nil || !cred.Valid {
		msg := cred.Error
		if err != nil {
			msg = err.Error()
		}
		u.RecordError(ErrCodeAuth, msg, now)
		s.finish(ctx, u, StatusPaused)
		log.Printf("[SCHED] unit %s paused: credential failure: %s", u.ID, msg)
		return
	}

	next := u.NextUnposted()
	if next == nil {
		s.finish(ctx, u, StatusCompleted)
		return
	}

	item, err := s.contents.FindContent(ctx, next.ContentID)
	if err != nil {
		u.RecordError(ErrCodeContentMissing, fmt.Sprintf("content %s: %v", next.ContentID, err), now)
		s.finish(ctx, u, StatusPaused)
		return
	}

	// Re-validate the gate at publish time, never trust the cached score
	// alone. Blocked means fail closed: pause for manual review.
	decision := s.safeEvaluate(ctx, gate.Request{Content: item, UserID: u.UserID, Action: "publish"})
	s.logDecision("gate", u, item, "publish", decision)
	if !decision.Allowed {
		u.RecordError(decision.Code, decision.Reason, now)
		s.finish(ctx, u, StatusPaused)
		log.Printf("[SCHED] unit %s paused: gate blocked %s: %s", u.ID, item.ID, decision.Reason)
		return
	}
	if decision.RequiresReview {
		log.Printf("[SCHED] unit %s: posting %s flagged for review: %s", u.ID, item.ID, decision.Reason)
	}

	result, err := s.publisher.Publish(ctx, u.UserID, item, u.Platform)
	if err != nil || !result.Success {
		msg := result.Error
		if err != nil {
			msg = err.Error()
		}
		u.RecordError(ErrCodePublish, msg, now)
		// Leave the item unposted; the next poll retries it.
		s.finish(ctx, u, StatusScheduled)
		log.Printf("[SCHED] unit %s: publish failed for %s: %s", u.ID, item.ID, msg)
		return
	}

	next.Posted = true
	item.Status = content.StatusPublished
	item.PostID = result.PostID
	item.PostURL = result.PostURL
	postedAt := now
	item.PostedAt = &postedAt
	item.UpdatedAt = now
	if err := s.contents.SaveContent(ctx, item); err != nil {
		log.Printf("[SCHED] persist published content %s failed: %v", item.ID, err)
	}
	s.logDecision("publish", u, item, "publish", decision)

	if u.NextUnposted() == nil {
		s.finish(ctx, u, StatusCompleted)
		log.Printf("[SCHED] unit %s completed", u.ID)
		return
	}
	u.NextPostAt = now.Add(u.Scheduling.Cadence.Interval())
	s.finish(ctx, u, StatusScheduled)
	log.Printf("[SCHED] unit %s: posted %s, next at %s", u.ID, item.ID, u.NextPostAt.Format(time.RFC3339))
}

// finish persists the unit in its terminal-or-rearmed status.
func (s *Scheduler) finish(ctx context.Context, u *Unit, status UnitStatus) {
	u.Status = status
	u.UpdatedAt = s.now()
	if err := s.units.SaveUnit(ctx, u); err != nil {
		log.Printf("[SCHED] save unit %s failed: %v", u.ID, err)
	}
}

// #endregion process-unit

// #region safe-evaluate

// safeEvaluate shields the poster from an unexpected scorer failure: the
// item is allowed with review rather than blocking posting indefinitely.
func (s *Scheduler) safeEvaluate(ctx context.Context, req gate.Request) (d gate.Decision) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SCHED] gate panic for %s: %v", req.Content.ID, r)
			d = gate.Decision{
				Allowed:        true,
				RequiresReview: true,
				Reason:         fmt.Sprintf("gate evaluation failed (%v), allowing with review", r),
			}
		}
	}()
	return s.gate.Evaluate(ctx, req)
}

// #endregion safe-evaluate

// #region manual

// PostNext posts the next item of one unit immediately, sharing the exact
// gate-then-publish path the polling loop uses.
func (s *Scheduler) PostNext(ctx context.Context, unitID string) error {
	u, err := s.units.FindUnit(ctx, unitID)
	if err != nil {
		return fmt.Errorf("find unit %s: %w", unitID, err)
	}
	if u.Status == StatusPosting {
		return fmt.Errorf("unit %s is already posting", unitID)
	}
	u.Status = StatusScheduled
	s.processUnit(ctx, u)
	return nil
}

// Resume re-arms a paused unit for the next poll.
func (s *Scheduler) Resume(ctx context.Context, unitID string) error {
	u, err := s.units.FindUnit(ctx, unitID)
	if err != nil {
		return fmt.Errorf("find unit %s: %w", unitID, err)
	}
	if u.Status != StatusPaused {
		return fmt.Errorf("unit %s is %s, not paused", unitID, u.Status)
	}
	u.Status = StatusScheduled
	u.NextPostAt = s.now()
	return s.units.SaveUnit(ctx, u)
}

// #endregion manual

// #region decision-log

func (s *Scheduler) logDecision(kind string, u *Unit, item *content.Item, action string, d gate.Decision) {
	if s.db == nil {
		return
	}
	detail, _ := json.Marshal(d)
	err := logging.LogDecision(s.db, logging.Entry{
		Kind:       kind,
		SubjectID:  u.SubjectID,
		TargetID:   item.ID,
		Action:     action,
		Allowed:    d.Allowed,
		Code:       d.Code,
		Reason:     d.Reason,
		DetailJSON: string(detail),
		CreatedAt:  s.now(),
	})
	if err != nil {
		log.Printf("[SCHED] decision log failed: %v", err)
	}
}

// #endregion decision-log
