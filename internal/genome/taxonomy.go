package genome

// #region archetypes

// VoidDesignation is the sentinel archetype for genomes with zero signals.
const VoidDesignation = "Ø"

// Archetype describes one entry of the fixed taste taxonomy.
type Archetype struct {
	Designation string
	Glyph       string
	Tones       []string // tone palette fed into directives
}

// Archetypes is the fixed taxonomy. Order is stable; distribution math
// iterates this list so recomputation is deterministic.
var Archetypes = []Archetype{
	{"Minimalist", "LINE", []string{"clean", "quiet", "precise"}},
	{"Maximalist", "BLOOM", []string{"loud", "layered", "saturated"}},
	{"Curator", "FRAME", []string{"refined", "deliberate", "editorial"}},
	{"Provocateur", "SPARK", []string{"bold", "irreverent", "direct"}},
	{"Documentarian", "LENS", []string{"candid", "honest", "observational"}},
	{"Dreamer", "HAZE", []string{"soft", "wistful", "atmospheric"}},
	{"Architect", "GRID", []string{"structured", "geometric", "intentional"}},
	{"Storyteller", "THREAD", []string{"narrative", "warm", "personal"}},
}

// VoidArchetype returns the sentinel reference used before any signal exists.
func VoidArchetype() ArchetypeRef {
	return ArchetypeRef{Designation: VoidDesignation, Glyph: "VOID", Confidence: 0}
}

// LookupArchetype resolves a designation to its taxonomy entry.
// Unknown designations return (Archetype{}, false); callers tolerate this.
func LookupArchetype(designation string) (Archetype, bool) {
	for _, a := range Archetypes {
		if a.Designation == designation {
			return a, true
		}
	}
	return Archetype{}, false
}

// #endregion archetypes

// #region keyword-taxonomy

// KeywordTaxonomy maps category -> subcategory -> terms. Keyword scores are
// keyed "category.subcategory.term".
var KeywordTaxonomy = map[string]map[string][]string{
	"aesthetic": {
		"palette": {"muted", "pastel", "neon", "monochrome", "earthy", "vibrant"},
		"texture": {"grain", "gloss", "matte", "film", "crisp", "soft"},
		"light":   {"golden", "moody", "overexposed", "natural", "studio", "neon"},
	},
	"subject": {
		"people": {"portrait", "candid", "crowd", "solo", "hands", "silhouette"},
		"place":  {"urban", "coastal", "interior", "street", "nature", "rooftop"},
		"object": {"product", "flatlay", "detail", "architecture", "food", "texture"},
	},
	"mood": {
		"calm": {"serene", "still", "slow", "quiet", "minimal"},
		"bold": {"dramatic", "electric", "loud", "intense", "raw"},
		"warm": {"nostalgic", "cozy", "intimate", "sunlit", "tender"},
	},
	"format": {
		"composition": {"symmetry", "negative", "closeup", "wide", "layered", "centered"},
		"motion":      {"static", "blur", "action", "timelapse", "handheld"},
	},
}

// #endregion keyword-taxonomy
