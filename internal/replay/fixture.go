package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pulseplan/taste-engine/internal/content"
	"github.com/pulseplan/taste-engine/internal/gate"
	"github.com/pulseplan/taste-engine/internal/genome"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a pipeline replay: a
// recorded signal history plus candidate contents, run deterministically
// through classifier → scorer → gate.
type Fixture struct {
	Description string            `json:"description"`
	SubjectID   string            `json:"subject_id"`
	Gate        FixtureGateConfig `json:"gate_config"`
	Signals     []FixtureSignal   `json:"signals"`
	Contents    []FixtureContent  `json:"contents"`
	Expected    []FixtureExpected `json:"expected_results,omitempty"`
}

// FixtureSignal mirrors genome.Signal with flat JSON tags.
type FixtureSignal struct {
	Type          string  `json:"type"`
	Value         string  `json:"value,omitempty"`
	Weight        float64 `json:"weight"`
	Score         int     `json:"score,omitempty"`
	Prompt        string  `json:"prompt,omitempty"`
	ArchetypeHint string  `json:"archetype_hint,omitempty"`
	Polarity      int     `json:"polarity,omitempty"`
}

// FixtureContent is one candidate item to score and gate.
type FixtureContent struct {
	ContentID      string           `json:"content_id"`
	Caption        string           `json:"caption,omitempty"`
	Scores         content.AIScores `json:"scores"`
	Override       bool             `json:"override,omitempty"`
	OverrideReason string           `json:"override_reason,omitempty"`
}

// FixtureGateConfig mirrors gate.Config with JSON tags.
type FixtureGateConfig struct {
	Enforced          bool `json:"enforced"`
	StrictMode        bool `json:"strict_mode"`
	Threshold         int  `json:"threshold"`
	AllowUserOverride bool `json:"allow_user_override"`
}

// FixtureExpected captures the expected gate outcome per content.
type FixtureExpected struct {
	ContentID string `json:"content_id"`
	Allowed   bool   `json:"allowed"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToSignal converts a FixtureSignal to a domain signal.
func (fs *FixtureSignal) ToSignal() genome.Signal {
	return genome.Signal{
		Type:   fs.Type,
		Value:  fs.Value,
		Weight: fs.Weight,
		Meta: genome.SignalMeta{
			Score:         fs.Score,
			Prompt:        fs.Prompt,
			ArchetypeHint: fs.ArchetypeHint,
			Polarity:      fs.Polarity,
		},
	}
}

// ToGateConfig converts the fixture gate block to a domain gate config.
func (fc *FixtureGateConfig) ToGateConfig() gate.Config {
	return gate.Config{
		Enforced:          fc.Enforced,
		StrictMode:        fc.StrictMode,
		Threshold:         fc.Threshold,
		AllowUserOverride: fc.AllowUserOverride,
	}
}

// ToItem converts a fixture content entry to a domain item. Overrides
// are applied by the harness after the conviction is computed, like the
// live path does.
func (fc *FixtureContent) ToItem(subjectID string) *content.Item {
	scores := fc.Scores
	return &content.Item{
		ID:        fc.ContentID,
		SubjectID: subjectID,
		Caption:   fc.Caption,
		Status:    content.StatusDraft,
		AIScores:  &scores,
	}
}

// #endregion fixture-loader
