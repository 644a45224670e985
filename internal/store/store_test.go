package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/genome"
	"github.com/pulseplan/taste-engine/internal/scheduler"
)

// #region helpers

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "taste.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// #endregion helpers

// #region genome-tests

func TestGenomeRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	missing, err := st.GenomeFor(ctx, "brand-1")
	require.NoError(t, err)
	require.Nil(t, missing, "missing genome must be (nil, nil)")

	g := genome.New("brand-1")
	genome.RecordSignal(g, genome.Signal{
		Type:   "rating",
		Weight: 2,
		Meta:   genome.SignalMeta{ArchetypeHint: "Minimalist", Polarity: 1, Prompt: "serene minimal interior"},
	})
	require.NoError(t, st.SaveGenome(ctx, g))

	loaded, err := st.GenomeFor(ctx, "brand-1")
	require.NoError(t, err)
	require.Equal(t, g.SubjectID, loaded.SubjectID)
	require.Equal(t, g.ItemCount, loaded.ItemCount)
	require.Equal(t, g.Archetype.Primary.Designation, loaded.Archetype.Primary.Designation)
	require.InDelta(t, g.Confidence, loaded.Confidence, 1e-9)
	require.Equal(t, len(g.Keywords), len(loaded.Keywords))
	require.Equal(t, g.Learning.Weights, loaded.Learning.Weights)
}

func TestEnsureGenomeCreatesLazily(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	g, err := st.EnsureGenome(ctx, "brand-1")
	require.NoError(t, err)
	require.Equal(t, "brand-1", g.SubjectID)
	require.Equal(t, genome.VoidDesignation, g.Archetype.Primary.Designation)

	// Second ensure loads the stored copy instead of recreating.
	g.ItemCount = 7
	require.NoError(t, st.SaveGenome(ctx, g))
	again, err := st.EnsureGenome(ctx, "brand-1")
	require.NoError(t, err)
	require.Equal(t, 7, again.ItemCount)
}

// #endregion genome-tests

// #region content-tests

func TestContentRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.FindContent(ctx, "nope")
	require.Error(t, err)

	item := &content.Item{
		ID:        "content-1",
		SubjectID: "brand-1",
		Platform:  "instagram",
		Caption:   "morning light",
		Status:    content.StatusApproved,
		AIScores:  &content.AIScores{Virality: 70, Engagement: 60, Aesthetic: 80, Trend: 40},
		Conviction: &content.Conviction{
			Score: 68,
			Tier:  content.TierMedium,
		},
	}
	require.NoError(t, st.SaveContent(ctx, item))

	loaded, err := st.FindContent(ctx, "content-1")
	require.NoError(t, err)
	require.Equal(t, item.Caption, loaded.Caption)
	require.Equal(t, item.Status, loaded.Status)
	require.Equal(t, 68, loaded.Conviction.Score)
	require.Equal(t, 70.0, loaded.AIScores.Virality)

	// Upsert replaces.
	item.Status = content.StatusPublished
	require.NoError(t, st.SaveContent(ctx, item))
	loaded, err = st.FindContent(ctx, "content-1")
	require.NoError(t, err)
	require.Equal(t, content.StatusPublished, loaded.Status)
}

func TestNewItemRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	item := content.NewItem("brand-1", "instagram", "first draft")
	require.NotEmpty(t, item.ID)
	require.Equal(t, content.StatusDraft, item.Status)

	require.NoError(t, st.SaveContent(ctx, item))
	loaded, err := st.FindContent(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, "first draft", loaded.Caption)
}

func TestPendingValidationSelectsUnvalidatedPublished(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	pending := &content.Item{ID: "c-pending", SubjectID: "brand-1", Status: content.StatusPublished}
	validated := &content.Item{
		ID: "c-done", SubjectID: "brand-1", Status: content.StatusPublished,
		Validation: &content.ValidationRecord{Status: "validated", Accuracy: 80},
	}
	draft := &content.Item{ID: "c-draft", SubjectID: "brand-1", Status: content.StatusDraft}
	for _, it := range []*content.Item{pending, validated, draft} {
		require.NoError(t, st.SaveContent(ctx, it))
	}

	ids, err := st.PendingValidation(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"c-pending"}, ids)
}

func TestApprovals(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	status, err := st.ApprovalStatus(ctx, "content-1")
	require.NoError(t, err)
	require.Empty(t, status, "absent approval record must be empty, not an error")

	require.NoError(t, st.SetApproval(ctx, "content-1", "pending"))
	require.NoError(t, st.SetApproval(ctx, "content-1", "approved"))

	status, err = st.ApprovalStatus(ctx, "content-1")
	require.NoError(t, err)
	require.Equal(t, "approved", status)
}

// #endregion content-tests

// #region unit-tests

func makeUnit(id string, status scheduler.UnitStatus, enabled, autoPost bool, nextPostAt time.Time) *scheduler.Unit {
	return &scheduler.Unit{
		ID:        id,
		SubjectID: "brand-1",
		UserID:    "user-1",
		Platform:  "instagram",
		Items:     []scheduler.UnitItem{{ContentID: "c1", Order: 0}},
		Scheduling: scheduler.Scheduling{
			Enabled:  enabled,
			AutoPost: autoPost,
			Cadence:  scheduler.Cadence{Hours: 24},
		},
		Status:     status,
		NextPostAt: nextPostAt,
	}
}

func TestDueFiltersUnits(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	due := makeUnit("u-due", scheduler.StatusScheduled, true, true, now.Add(-time.Hour))
	future := makeUnit("u-future", scheduler.StatusScheduled, true, true, now.Add(time.Hour))
	paused := makeUnit("u-paused", scheduler.StatusPaused, true, true, now.Add(-time.Hour))
	manual := makeUnit("u-manual", scheduler.StatusScheduled, true, false, now.Add(-time.Hour))
	disabled := makeUnit("u-disabled", scheduler.StatusScheduled, false, true, now.Add(-time.Hour))

	for _, u := range []*scheduler.Unit{due, future, paused, manual, disabled} {
		require.NoError(t, st.SaveUnit(ctx, u))
	}

	got, err := st.Due(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "u-due", got[0].ID)
}

func TestUnitRoundTripPreservesErrors(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	u := makeUnit("u1", scheduler.StatusScheduled, true, true, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	u.RecordError("PUBLISH_FAILED", "platform timeout", time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, st.SaveUnit(ctx, u))

	loaded, err := st.FindUnit(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, u.Platform, loaded.Platform)
	require.Len(t, loaded.Errors, 1)
	require.Equal(t, "PUBLISH_FAILED", loaded.Errors[0].Code)
	require.Equal(t, scheduler.Cadence{Hours: 24}, loaded.Scheduling.Cadence)

	_, err = st.FindUnit(ctx, "missing")
	require.Error(t, err)
}

func TestListUnits(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveUnit(ctx, makeUnit("u1", scheduler.StatusScheduled, true, true, now)))
	require.NoError(t, st.SaveUnit(ctx, makeUnit("u2", scheduler.StatusCompleted, true, true, now)))

	other := makeUnit("u3", scheduler.StatusScheduled, true, true, now)
	other.SubjectID = "brand-2"
	require.NoError(t, st.SaveUnit(ctx, other))

	units, err := st.ListUnits(ctx, "brand-1")
	require.NoError(t, err)
	require.Len(t, units, 2)
}

// #endregion unit-tests
