package genome

// #region imports
import (
	"sort"
	"strings"
)

// #endregion imports

// #region learn

// LearnKeywords tokenizes the signal's free-text prompt against the fixed
// keyword taxonomy and adjusts keyword scores by the same signed weight
// used for archetype scoring. Signals without a prompt are a no-op.
func LearnKeywords(g *Genome, s Signal) {
	if s.Meta.Prompt == "" {
		return
	}
	delta := s.Weight * float64(Polarity(s))
	if delta == 0 {
		return
	}

	tokens := tokenizePrompt(s.Meta.Prompt)
	if len(tokens) == 0 {
		return
	}
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}

	if g.Keywords == nil {
		g.Keywords = map[string]KeywordScore{}
	}
	for category, subs := range KeywordTaxonomy {
		for sub, terms := range subs {
			for _, term := range terms {
				if !set[term] {
					continue
				}
				key := category + "." + sub + "." + term
				ks := g.Keywords[key]
				ks.Score += delta
				ks.Count++
				g.Keywords[key] = ks
			}
		}
	}
}

// #endregion learn

// #region projections

// RankedKeyword pairs a taxonomy key with its learned score.
type RankedKeyword struct {
	Key   string
	Term  string
	Score float64
	Count int
}

// TopKeywords returns the highest-scoring learned terms, optionally
// filtered to a single taxonomy category. Pure read projection.
func TopKeywords(g *Genome, category string, limit int) []RankedKeyword {
	ranked := rankKeywords(g, category, func(score float64) bool { return score > 0 })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return truncate(ranked, limit)
}

// AvoidKeywords returns the most negative learned terms.
func AvoidKeywords(g *Genome, limit int) []RankedKeyword {
	ranked := rankKeywords(g, "", func(score float64) bool { return score < 0 })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })
	return truncate(ranked, limit)
}

func rankKeywords(g *Genome, category string, keep func(float64) bool) []RankedKeyword {
	var ranked []RankedKeyword
	for key, ks := range g.Keywords {
		if category != "" && !strings.HasPrefix(key, category+".") {
			continue
		}
		if !keep(ks.Score) {
			continue
		}
		ranked = append(ranked, RankedKeyword{
			Key:   key,
			Term:  key[strings.LastIndex(key, ".")+1:],
			Score: ks.Score,
			Count: ks.Count,
		})
	}
	// Stable order under equal scores: sort by key first.
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Key < ranked[j].Key })
	return ranked
}

func truncate(ranked []RankedKeyword, limit int) []RankedKeyword {
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// #endregion projections

// #region directives

const directiveTermLimit = 8

// DeriveDirectives refreshes the genome's generation directives from the
// current archetype and keyword scores: tone from the primary archetype's
// palette, keywords from the top scores, avoid from the most negative.
func DeriveDirectives(g *Genome) {
	var tone []string
	if a, ok := LookupArchetype(g.Archetype.Primary.Designation); ok {
		tone = append(tone, a.Tones...)
	}
	if g.Archetype.Secondary != nil {
		if a, ok := LookupArchetype(g.Archetype.Secondary.Designation); ok && len(a.Tones) > 0 {
			tone = append(tone, a.Tones[0])
		}
	}

	var keywords, avoid []string
	for _, kw := range TopKeywords(g, "", directiveTermLimit) {
		keywords = append(keywords, kw.Term)
	}
	for _, kw := range AvoidKeywords(g, directiveTermLimit) {
		avoid = append(avoid, kw.Term)
	}

	g.Directives = Directives{Tone: tone, Keywords: keywords, Avoid: avoid}
}

// #endregion directives
