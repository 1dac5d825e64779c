package intent

import (
	"strings"
)

// #region patterns

// matchConfidence is assigned whenever at least one pattern group matches.
// Keyword matching is binary, so there is nothing finer to grade on yet.
const matchConfidence = 0.8

// patternGroup maps a set of trigger keywords to the tag changes they
// imply. Keywords are matched as substrings of the lowercased input.
type patternGroup struct {
	name     string
	keywords []string
	changes  map[string]float64
}

// patternCategory is an ordered list of groups. Within a category the
// first matching group wins.
type patternCategory struct {
	name   string
	groups []patternGroup
}

var styleFeedback = patternCategory{
	name: "style_feedback",
	groups: []patternGroup{
		{
			name:     "harsh|sharp|aggressive|bright",
			keywords: []string{"harsh", "sharp", "aggressive", "bright"},
			changes:  map[string]float64{"smooth": 0.7, "calm": 0.5},
		},
		{
			name:     "soft|muted|calm",
			keywords: []string{"soft", "muted", "calm"},
			changes:  map[string]float64{"energetic": 0.6, "sharp": 0.4},
		},
		{
			name:     "noisy|busy|cluttered",
			keywords: []string{"noisy", "busy", "cluttered"},
			changes:  map[string]float64{"minimal": 0.8, "open": 0.6},
		},
		{
			name:     "empty|sparse|boring",
			keywords: []string{"empty", "sparse", "boring"},
			changes:  map[string]float64{"dense": 0.5, "energetic": 0.4},
		},
	},
}

var layoutFeedback = patternCategory{
	name: "layout_feedback",
	groups: []patternGroup{
		// The multi-word phrase goes first so "hard to focus" is not
		// swallowed by a later single-keyword group.
		{
			name:     "hard to focus",
			keywords: []string{"hard to focus"},
			changes:  map[string]float64{"focused": 0.9, "minimal": 0.7},
		},
		{
			name:     "dense|crowded|packed",
			keywords: []string{"dense", "crowded", "packed"},
			changes:  map[string]float64{"open": 0.8, "spacious": 0.6},
		},
		{
			name:     "spacious|empty|sparse",
			keywords: []string{"spacious", "empty", "sparse"},
			changes:  map[string]float64{"dense": 0.6, "compact": 0.5},
		},
		{
			name:     "scattered|disorganized",
			keywords: []string{"scattered", "disorganized"},
			changes:  map[string]float64{"focused": 0.8, "minimal": 0.5},
		},
	},
}

var elementSpecific = patternCategory{
	name: "element_specific",
	groups: []patternGroup{
		{
			name:     "smaller|reduce|shrink",
			keywords: []string{"smaller", "reduce", "shrink"},
			changes:  map[string]float64{"compact": 0.8, "minimal": 0.6},
		},
		{
			name:     "bigger|larger|expand",
			keywords: []string{"bigger", "larger", "expand"},
			changes:  map[string]float64{"open": 0.7, "spacious": 0.5},
		},
		{
			name:     "hide|remove|less",
			keywords: []string{"hide", "remove", "less"},
			changes:  map[string]float64{"minimal": 0.9, "light": 0.7},
		},
		{
			name:     "emphasize|highlight|focus",
			keywords: []string{"emphasize", "highlight", "focus"},
			changes:  map[string]float64{"focused": 0.8, "alert": 0.6},
		},
	},
}

// #endregion patterns

// #region parser

// Parser turns raw command text into a structured Intent. Mirror mode
// matches against style and layout feedback; edit mode matches only
// element-specific commands. Observe mode carries no text and parses
// to an empty intent.
type Parser struct {
	mirror []patternCategory
	edit   []patternCategory
}

// NewParser builds a parser with the built-in pattern catalog.
func NewParser() *Parser {
	return &Parser{
		mirror: []patternCategory{styleFeedback, layoutFeedback},
		edit:   []patternCategory{elementSpecific},
	}
}

// Parse matches rawInput against the pattern set for the given entry
// mode. Within each category the first matching group wins; matches
// from separate categories are merged. If currentElement is non-empty
// and the input references "this", the element is recorded as a target.
func (p *Parser) Parse(rawInput string, mode EntryMode, currentElement string) Intent {
	out := Intent{
		EntryMode:        mode,
		RawInput:         rawInput,
		DetectedPatterns: []string{},
		TagChanges:       map[string]float64{},
		TargetElements:   []string{},
	}

	var categories []patternCategory
	switch mode {
	case Mirror:
		categories = p.mirror
	case Edit:
		categories = p.edit
	default:
		return out
	}

	lower := strings.ToLower(rawInput)
	for _, cat := range categories {
		for _, group := range cat.groups {
			if !group.matches(lower) {
				continue
			}
			out.DetectedPatterns = append(out.DetectedPatterns, group.name)
			for tag, weight := range group.changes {
				out.TagChanges[tag] = weight
			}
			out.Confidence = matchConfidence
			break // first matching group per category
		}
	}

	if strings.Contains(lower, "this") && currentElement != "" {
		out.TargetElements = append(out.TargetElements, currentElement)
	}

	return out
}

func (g patternGroup) matches(lowerInput string) bool {
	for _, kw := range g.keywords {
		if strings.Contains(lowerInput, kw) {
			return true
		}
	}
	return false
}

// #endregion parser
