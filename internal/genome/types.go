package genome

// #region imports
import (
	"time"
)

// #endregion imports

// #region constants

const (
	// MaxSignals caps the retained signal log; oldest entries are evicted.
	MaxSignals = 1000

	// MinSignalWeight and MaxSignalWeight bound the stored weight magnitude.
	MinSignalWeight = 0.1
	MaxSignalWeight = 3.0

	// MaxConfidence is the saturation ceiling for genome confidence.
	MaxConfidence = 0.95

	// SecondaryFloor is the minimum probability for a secondary archetype.
	SecondaryFloor = 0.12

	// AccuracyHistoryCap bounds the learning accuracy history.
	AccuracyHistoryCap = 100
)

// #endregion constants

// #region signal

// SignalMeta carries optional hints attached to a behavioral signal.
type SignalMeta struct {
	Score         int    `json:"score,omitempty"`         // Likert 1-5, 0 = unset
	Prompt        string `json:"prompt,omitempty"`        // free text for keyword learning
	ArchetypeHint string `json:"archetypeHint,omitempty"` // designation this signal points at
	Polarity      int    `json:"polarity,omitempty"`      // +1 / -1, 0 = derive from Score
	Topic         string `json:"topic,omitempty"`
}

// Signal is one weighted, timestamped behavioral observation.
// Immutable once appended to the genome log.
type Signal struct {
	Type      string     `json:"type"` // "rating" | "save" | "skip" | "best_pick" | "worst_pick" | ...
	Value     string     `json:"value,omitempty"`
	Weight    float64    `json:"weight"` // clamped to [MinSignalWeight, MaxSignalWeight]
	Meta      SignalMeta `json:"metadata"`
	Timestamp time.Time  `json:"timestamp"`
}

// #endregion signal

// #region archetype

// ArchetypeRef names one archetype with its glyph and learned confidence.
type ArchetypeRef struct {
	Designation string  `json:"designation"`
	Glyph       string  `json:"glyph"`
	Confidence  float64 `json:"confidence"`
}

// ArchetypeState is the classifier output stored on the genome.
type ArchetypeState struct {
	Primary      ArchetypeRef       `json:"primary"`
	Secondary    *ArchetypeRef      `json:"secondary,omitempty"`
	Distribution map[string]float64 `json:"distribution"` // designation -> probability, sums to 1
	ClassifiedAt time.Time          `json:"classifiedAt"`
}

// #endregion archetype

// #region keyword-score

// KeywordScore is the learned preference weight for one taxonomy term.
// Negative scores mark learned-avoid terms.
type KeywordScore struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// #endregion keyword-score

// #region directives

// Directives are the generation hints derived from the learned taste state.
type Directives struct {
	Tone     []string `json:"tone,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Avoid    []string `json:"avoid,omitempty"`
}

// #endregion directives

// #region gamification

// Gamification tracks engagement progression for the subject.
type Gamification struct {
	XP            int       `json:"xp"`
	Streak        int       `json:"streak"`
	LongestStreak int       `json:"longestStreak"`
	Achievements  []string  `json:"achievements,omitempty"`
	LastSignalDay time.Time `json:"lastSignalDay,omitzero"`
}

// #endregion gamification

// #region learning

// ArchetypeAdjustment is the feedback-learned correction for one archetype.
type ArchetypeAdjustment struct {
	Confidence       float64 `json:"confidence"` // bounded [0.5, 1.5], starts at 1.0
	TotalAdjustments int     `json:"totalAdjustments"`
	PerformanceDelta float64 `json:"performanceDelta"`
}

// LearningWeights are the scorer weights tuned by the feedback loop.
// They always sum to 1.0.
type LearningWeights struct {
	Performance float64 `json:"performance"`
	Taste       float64 `json:"taste"`
	Brand       float64 `json:"brand"`
}

// DefaultLearningWeights returns the untrained weight split.
func DefaultLearningWeights() LearningWeights {
	return LearningWeights{Performance: 0.5, Taste: 0.3, Brand: 0.2}
}

// AccuracyEntry is one validated prediction outcome.
type AccuracyEntry struct {
	Accuracy   int       `json:"accuracy"` // 0-100
	RecordedAt time.Time `json:"recordedAt"`
}

// LearningState accumulates feedback-driven adjustments.
type LearningState struct {
	TotalFeedbackEvents  int                            `json:"totalFeedbackEvents"`
	AccuracyHistory      []AccuracyEntry                `json:"accuracyHistory,omitempty"` // capped at AccuracyHistoryCap
	OverallAccuracy      float64                        `json:"overallAccuracy"`
	ArchetypeAdjustments map[string]ArchetypeAdjustment `json:"archetypeAdjustments,omitempty"`
	Weights              LearningWeights                `json:"weights"`
	Version              int                            `json:"version"`
}

// #endregion learning

// #region genome

// Genome is the per-subject durable record of behavioral signals and the
// taste state derived from them.
type Genome struct {
	SubjectID string `json:"subjectId"`

	Signals []Signal `json:"signals"` // capped at MaxSignals, insertion order = recency

	// ItemCount is the true historical signal total; never capped. Drives
	// confidence, not distribution math.
	ItemCount int `json:"itemCount"`

	Archetype  ArchetypeState          `json:"archetype"`
	Confidence float64                 `json:"confidence"` // [0, MaxConfidence]
	Keywords   map[string]KeywordScore `json:"keywordScores,omitempty"`

	Directives   Directives    `json:"directives"`
	Gamification Gamification  `json:"gamification"`
	Learning     LearningState `json:"learning"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates an empty genome for a subject. The archetype starts at the
// void sentinel until the first hinted signal arrives.
func New(subjectID string) *Genome {
	return &Genome{
		SubjectID: subjectID,
		Archetype: ArchetypeState{
			Primary:      VoidArchetype(),
			Distribution: softmax(nil),
		},
		Keywords: map[string]KeywordScore{},
		Learning: LearningState{
			ArchetypeAdjustments: map[string]ArchetypeAdjustment{},
			Weights:              DefaultLearningWeights(),
			Version:              1,
		},
	}
}

// ResetLearning zeroes the feedback-learned state and restores default
// weights. Admin/test path only.
func (g *Genome) ResetLearning() {
	g.Learning = LearningState{
		ArchetypeAdjustments: map[string]ArchetypeAdjustment{},
		Weights:              DefaultLearningWeights(),
		Version:              g.Learning.Version + 1,
	}
}

// #endregion genome
