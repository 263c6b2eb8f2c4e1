package card

import (
	"regexp"
	"sort"
	"strings"
)

// TagRule maps a text pattern to a synergy tag. Patterns are tested
// against lowercased text, so they are written lowercase.
type TagRule struct {
	Pattern *regexp.Regexp
	Tag     string
}

// DefaultTagRules is the fixed rule vocabulary for deck-building themes.
// The order is stable but carries no precedence: every matching rule fires.
func DefaultTagRules() []TagRule {
	return []TagRule{
		{regexp.MustCompile(`\b(search|look up|reveal) (your )?(deck|discard)`), "tutor"},
		{regexp.MustCompile(`\bdraw\b|\bdraw [0-9]+ cards?`), "draw"},
		{regexp.MustCompile(`\battach (an? )?energy|extra energy|more energy|accelerat(e|ion)\b`), "energy_accel"},
		{regexp.MustCompile(`\b(heal|remove) (damage|damage counters?)\b`), "heal"},
		{regexp.MustCompile(`\b(switch|swap) (your )?(active|benched)\b`), "switch"},
		{regexp.MustCompile(`\b(retreat cost|reduce retreat)\b`), "retreat_reduction"},
		{regexp.MustCompile(`\bdiscard (a|an|any|up to|from|[0-9]+)\b`), "discard"},
		{regexp.MustCompile(`\b(search|attach) (a )?tool\b|pokemon tool`), "tool_synergy"},
		{regexp.MustCompile(`\b(evolve|evolution)\b`), "evolution"},
		{regexp.MustCompile(`\bresist(s|ance)?|weakness\b`), "type_matchup"},
	}
}

// DefaultTypeWords maps each card type to keyword aliases. A type alias
// occurring as a literal substring of the text yields a type_kw tag.
func DefaultTypeWords() map[string][]string {
	return map[string][]string{
		"Grass":     {"grass", "leaf", "plants"},
		"Fire":      {"fire", "flame", "burn"},
		"Water":     {"water", "aqua", "rain"},
		"Lightning": {"lightning", "electric", "spark"},
		"Psychic":   {"psychic", "mind", "psi"},
		"Fighting":  {"fighting", "punch", "kick"},
		"Darkness":  {"dark", "shadow"},
		"Metal":     {"metal", "steel"},
		"Fairy":     {"fairy"},
		"Dragon":    {"dragon"},
		"Colorless": {"colorless", "neutral"},
	}
}

// Extractor is a rule-driven text classifier for synergy tags. It holds an
// immutable ordered rule table plus a per-type alias table; both are
// injectable so tests can substitute a reduced vocabulary.
type Extractor struct {
	rules     []TagRule
	typeWords map[string][]string
}

// NewExtractor creates an Extractor with the given rule and alias tables.
func NewExtractor(rules []TagRule, typeWords map[string][]string) *Extractor {
	return &Extractor{rules: rules, typeWords: typeWords}
}

// DefaultExtractor creates an Extractor with the fixed default vocabulary.
func DefaultExtractor() *Extractor {
	return NewExtractor(DefaultTagRules(), DefaultTypeWords())
}

// Extract derives synergy tags from text plus an optional type list. Every
// matching rule contributes its tag; each supplied type contributes a
// type:<T> tag, plus type_kw:<T> when one of its aliases occurs in the
// text. The result is deduplicated and sorted for determinism; an empty
// result is valid and extraction never fails.
func (e *Extractor) Extract(text string, types []string) []string {
	lower := strings.ToLower(text)

	set := make(map[string]struct{})
	for _, rule := range e.rules {
		if rule.Pattern.MatchString(lower) {
			set[rule.Tag] = struct{}{}
		}
	}

	for _, t := range types {
		set["type:"+t] = struct{}{}
		for _, alias := range e.typeWords[t] {
			if strings.Contains(lower, alias) {
				set["type_kw:"+t] = struct{}{}
				break
			}
		}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
