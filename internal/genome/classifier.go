package genome

// #region imports
import (
	"math"
	"time"
)

// #endregion imports

// #region tuning

// softmaxTemperature controls how fast accumulated archetype scores pull
// the distribution away from uniform. Tuned so ~20-30 consistent
// same-archetype signals dominate while equal training keeps two
// archetypes level.
const softmaxTemperature = 8.0

// #endregion tuning

// #region record-signal

// RecordSignal validates, appends, and folds one signal into the genome.
// It never rejects: a malformed or hint-less signal still counts toward
// volume and confidence, it just contributes no directional pull.
func RecordSignal(g *Genome, s Signal) {
	s.Weight = ClampWeight(s.Weight)
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}

	g.Signals = append(g.Signals, s)
	if len(g.Signals) > MaxSignals {
		g.Signals = g.Signals[len(g.Signals)-MaxSignals:]
	}
	g.ItemCount++

	applyGamification(g, s)
	LearnKeywords(g, s)
	UpdateArchetypeFromSignals(g)
	g.Confidence = computeConfidence(g.ItemCount, distinctTypes(g.Signals))
	DeriveDirectives(g)
	g.UpdatedAt = s.Timestamp
}

// #endregion record-signal

// #region weight

// ClampWeight bounds a requested signal weight's magnitude to
// [MinSignalWeight, MaxSignalWeight]. Direction is carried by polarity,
// not by the weight's sign.
func ClampWeight(w float64) float64 {
	w = math.Abs(w)
	if w < MinSignalWeight {
		return MinSignalWeight
	}
	if w > MaxSignalWeight {
		return MaxSignalWeight
	}
	return w
}

// #endregion weight

// #region polarity

// Polarity resolves a signal's direction: explicit metadata first, then
// best/worst pick values, then the Likert score threshold (>=4 positive,
// <=2 negative). Neutral signals return 0.
func Polarity(s Signal) int {
	if s.Meta.Polarity > 0 {
		return 1
	}
	if s.Meta.Polarity < 0 {
		return -1
	}
	switch s.Value {
	case "best":
		return 1
	case "worst":
		return -1
	}
	if s.Meta.Score >= 4 {
		return 1
	}
	if s.Meta.Score > 0 && s.Meta.Score <= 2 {
		return -1
	}
	return 0
}

// #endregion polarity

// #region recompute

// UpdateArchetypeFromSignals recomputes the distribution from the full
// retained signal log. Derivation is from scratch each call, so repeated
// calls on an unchanged log are idempotent.
func UpdateArchetypeFromSignals(g *Genome) {
	if len(g.Signals) == 0 {
		g.Archetype.Distribution = softmax(nil)
		g.Archetype.Primary = VoidArchetype()
		g.Archetype.Secondary = nil
		g.Archetype.ClassifiedAt = time.Now().UTC()
		return
	}

	scores := make(map[string]float64, len(Archetypes))
	for _, s := range g.Signals {
		hint := s.Meta.ArchetypeHint
		if hint == "" {
			continue
		}
		if _, ok := LookupArchetype(hint); !ok {
			continue // tolerate malformed hints
		}
		scores[hint] += s.Weight * float64(Polarity(s))
	}

	g.Archetype.Distribution = softmax(scores)
	g.Archetype.ClassifiedAt = time.Now().UTC()

	primary, secondary := rankArchetypes(g.Archetype.Distribution)
	if primary == "" {
		g.Archetype.Primary = VoidArchetype()
		g.Archetype.Secondary = nil
		return
	}

	g.Archetype.Primary = refFor(primary, g.Archetype.Distribution[primary])
	if secondary != "" && g.Archetype.Distribution[secondary] >= SecondaryFloor {
		ref := refFor(secondary, g.Archetype.Distribution[secondary])
		g.Archetype.Secondary = &ref
	} else {
		g.Archetype.Secondary = nil
	}
}

// softmax turns accumulated archetype scores into a probability
// distribution over the full taxonomy. Archetypes with no score enter at
// zero, so a hint-less log decays toward uniform.
func softmax(scores map[string]float64) map[string]float64 {
	maxScore := math.Inf(-1)
	for _, a := range Archetypes {
		if s := scores[a.Designation]; s > maxScore {
			maxScore = s
		}
	}

	dist := make(map[string]float64, len(Archetypes))
	var total float64
	for _, a := range Archetypes {
		e := math.Exp((scores[a.Designation] - maxScore) / softmaxTemperature)
		dist[a.Designation] = e
		total += e
	}
	for k, v := range dist {
		dist[k] = v / total
	}
	return dist
}

// rankArchetypes returns the argmax and runner-up designations.
// Iterates the taxonomy in declaration order so ties break deterministically.
func rankArchetypes(dist map[string]float64) (primary, secondary string) {
	var pBest, pNext float64 = -1, -1
	for _, a := range Archetypes {
		p := dist[a.Designation]
		switch {
		case p > pBest:
			secondary, pNext = primary, pBest
			primary, pBest = a.Designation, p
		case p > pNext:
			secondary, pNext = a.Designation, p
		}
	}
	if pBest <= 0 {
		return "", ""
	}
	return primary, secondary
}

func refFor(designation string, probability float64) ArchetypeRef {
	a, _ := LookupArchetype(designation)
	return ArchetypeRef{
		Designation: a.Designation,
		Glyph:       a.Glyph,
		Confidence:  probability,
	}
}

// #endregion recompute

// #region confidence

// computeConfidence grows with signal volume and type diversity and
// saturates at MaxConfidence. A single signal yields a small nonzero value.
func computeConfidence(itemCount, types int) float64 {
	if itemCount <= 0 {
		return 0
	}
	volume := 1 - math.Exp(-float64(itemCount)/25.0)
	diversity := 0.5 + 0.5*math.Min(1, float64(types)/5.0)
	return math.Min(MaxConfidence, volume*diversity)
}

// distinctTypes counts distinct signal types in the retained log.
func distinctTypes(signals []Signal) int {
	seen := make(map[string]struct{}, 8)
	for _, s := range signals {
		seen[s.Type] = struct{}{}
	}
	return len(seen)
}

// #endregion confidence

// #region gamification

const xpPerWeightUnit = 10

var achievementThresholds = []struct {
	name  string
	count int
}{
	{"first_signal", 1},
	{"century", 100},
	{"millennium", 1000},
}

// applyGamification grants XP, advances the daily streak, and unlocks
// volume/streak achievements for the new signal.
func applyGamification(g *Genome, s Signal) {
	gam := &g.Gamification
	gam.XP += int(math.Round(s.Weight * xpPerWeightUnit))

	day := s.Timestamp.Truncate(24 * time.Hour)
	switch {
	case gam.LastSignalDay.IsZero():
		gam.Streak = 1
	case day.Equal(gam.LastSignalDay):
		// same day, streak unchanged
	case day.Sub(gam.LastSignalDay) == 24*time.Hour:
		gam.Streak++
	default:
		gam.Streak = 1
	}
	if day.After(gam.LastSignalDay) {
		gam.LastSignalDay = day
	}
	if gam.Streak > gam.LongestStreak {
		gam.LongestStreak = gam.Streak
	}

	for _, a := range achievementThresholds {
		if g.ItemCount >= a.count {
			unlock(gam, a.name)
		}
	}
	if gam.Streak >= 7 {
		unlock(gam, "week_streak")
	}
	if gam.Streak >= 30 {
		unlock(gam, "month_streak")
	}
}

func unlock(gam *Gamification, name string) {
	for _, a := range gam.Achievements {
		if a == name {
			return
		}
	}
	gam.Achievements = append(gam.Achievements, name)
}

// #endregion gamification
