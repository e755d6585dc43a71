// Package intent turns free-text conversational queries into a structured
// Intent using fixed lexical rule tables. Extraction is pure and
// deterministic: no external calls, and unmatched input degrades to a
// low-confidence default instead of failing.
package intent

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

const (
	baseConfidence      = 0.5
	confidenceIncrement = 0.1
	variantDecayStep    = 0.15
	variantWeightFloor  = 0.4
)

// Extractor holds the compiled matchers for every lexical dimension. Build it
// once with NewExtractor and share it across requests; it is immutable after
// construction.
type Extractor struct {
	lex *Lexicon

	categories  taggedMatcher
	atmosphere  taggedMatcher
	experiences taggedMatcher
	priceTiers  orderedMatcher
	timesOfDay  orderedMatcher
	groupTypes  orderedMatcher

	features []compiledFeature
	places   *PlaceIndex

	// canonical trigger per tag, for building the natural-language summary
	canonicalCategory map[types.Category]string
}

type taggedMatcher struct {
	matcher ahocorasick.AhoCorasick
	tagFor  map[string]string
	empty   bool
}

type orderedMatcher struct {
	matcher ahocorasick.AhoCorasick
	tagFor  map[string]string
	order   []string
	empty   bool
}

type compiledFeature struct {
	name string
	re   *regexp.Regexp
}

// NewExtractor compiles the lexicon's rule tables into matchers.
func NewExtractor(lex *Lexicon) (*Extractor, error) {
	e := &Extractor{
		lex:               lex,
		places:            NewPlaceIndex(lex.Places),
		canonicalCategory: make(map[types.Category]string, len(lex.Categories)),
	}

	e.categories = newTaggedMatcher(lex.Categories)
	e.atmosphere = newTaggedMatcher(lex.Atmosphere)
	e.experiences = newTaggedMatcher(lex.Experiences)

	priceEntries := make([]NamedTriggers, 0, len(lex.PriceTiers))
	for _, t := range lex.PriceTiers {
		priceEntries = append(priceEntries, NamedTriggers{Name: t.Tier, Triggers: t.Triggers})
	}
	e.priceTiers = newOrderedMatcher(priceEntries)
	e.timesOfDay = newOrderedMatcher(lex.TimeOfDay)
	e.groupTypes = newOrderedMatcher(lex.GroupTypes)

	for _, f := range lex.Features {
		re, err := regexp.Compile("(?i)" + f.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid feature pattern %q: %w", f.Name, err)
		}
		e.features = append(e.features, compiledFeature{name: f.Name, re: re})
	}

	for cat, triggers := range lex.Categories {
		if len(triggers) > 0 {
			e.canonicalCategory[types.Category(cat)] = triggers[0]
		}
	}

	return e, nil
}

func newTaggedMatcher(table map[string][]string) taggedMatcher {
	tagFor := make(map[string]string)
	var patterns []string
	tags := make([]string, 0, len(table))
	for tag := range table {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		for _, trigger := range table[tag] {
			trigger = strings.ToLower(trigger)
			tagFor[trigger] = tag
			patterns = append(patterns, trigger)
		}
	}
	if len(patterns) == 0 {
		return taggedMatcher{empty: true}
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
	})
	return taggedMatcher{matcher: builder.Build(patterns), tagFor: tagFor}
}

func newOrderedMatcher(entries []NamedTriggers) orderedMatcher {
	tagFor := make(map[string]string)
	var patterns []string
	var order []string
	for _, e := range entries {
		order = append(order, e.Name)
		for _, trigger := range e.Triggers {
			trigger = strings.ToLower(trigger)
			tagFor[trigger] = e.Name
			patterns = append(patterns, trigger)
		}
	}
	if len(patterns) == 0 {
		return orderedMatcher{empty: true}
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
	})
	return orderedMatcher{matcher: builder.Build(patterns), tagFor: tagFor, order: order}
}

// match returns the distinct tags fired by text, ordered by first occurrence.
func (m taggedMatcher) match(text string) []string {
	if m.empty {
		return nil
	}
	var tags []string
	seen := make(map[string]bool)
	for _, match := range m.matcher.FindAll(text) {
		trigger := text[match.Start():match.End()]
		tag, ok := m.tagFor[trigger]
		if !ok || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// match resolves to a single tag using the lexicon's declared order.
func (m orderedMatcher) match(text string) string {
	if m.empty {
		return ""
	}
	fired := make(map[string]bool)
	for _, match := range m.matcher.FindAll(text) {
		trigger := text[match.Start():match.End()]
		if tag, ok := m.tagFor[trigger]; ok {
			fired[tag] = true
		}
	}
	for _, tag := range m.order {
		if fired[tag] {
			return tag
		}
	}
	return ""
}

// Extract derives a structured Intent from the query and optional prior
// turns. Prior turns only backfill categories and location when the current
// query resolves neither.
func (e *Extractor) Extract(query string, history []string) types.Intent {
	lowered := strings.ToLower(strings.TrimSpace(query))

	intent := types.Intent{Confidence: baseConfidence}

	categories := e.matchCategories(lowered)
	location := e.places.Lookup(lowered)
	if (len(categories) == 0 || location == nil) && len(history) > 0 {
		prior := strings.ToLower(strings.Join(history, " "))
		if len(categories) == 0 {
			categories = e.matchCategories(prior)
		}
		if location == nil {
			location = e.places.Lookup(prior)
		}
	}

	intent.Categories = categories
	intent.Location = location
	intent.Atmosphere = e.atmosphere.match(lowered)
	intent.Experiences = e.experiences.match(lowered)
	intent.PriceTier = e.priceTiers.match(lowered)
	intent.TimeOfDay = e.timesOfDay.match(lowered)
	intent.GroupType = e.groupTypes.match(lowered)
	intent.MustHaveFeatures = e.matchFeatures(lowered)
	intent.NiceToHaveFeatures = e.implicitNeeds(intent.Atmosphere, intent.MustHaveFeatures)
	intent.RelatedCategories = e.relatedCategories(categories)
	intent.NaturalLanguageIntent = e.describe(intent)
	intent.SearchVariants = e.buildVariants(query, intent)

	for _, resolved := range []bool{
		len(intent.Categories) > 0,
		intent.Location != nil,
		len(intent.Atmosphere) > 0,
		intent.GroupType != "",
		intent.PriceTier != "",
	} {
		if resolved {
			intent.Confidence += confidenceIncrement
		}
	}
	if intent.Confidence > 1.0 {
		intent.Confidence = 1.0
	}

	return intent
}

func (e *Extractor) matchCategories(text string) []types.Category {
	var cats []types.Category
	for _, tag := range e.categories.match(text) {
		cats = append(cats, types.Category(tag))
	}
	return cats
}

func (e *Extractor) matchFeatures(text string) []string {
	var features []string
	for _, f := range e.features {
		if f.re.MatchString(text) {
			features = append(features, f.name)
		}
	}
	return features
}

func (e *Extractor) implicitNeeds(atmosphere, mustHaves []string) []string {
	must := make(map[string]bool, len(mustHaves))
	for _, f := range mustHaves {
		must[f] = true
	}
	var needs []string
	seen := make(map[string]bool)
	for _, tag := range atmosphere {
		for _, need := range e.lex.ImplicitNeeds[tag] {
			if must[need] || seen[need] {
				continue
			}
			seen[need] = true
			needs = append(needs, need)
		}
	}
	return needs
}

func (e *Extractor) relatedCategories(matched []types.Category) []types.Category {
	matchedSet := make(map[types.Category]bool, len(matched))
	for _, c := range matched {
		matchedSet[c] = true
	}
	var related []types.Category
	seen := make(map[types.Category]bool)
	for _, c := range matched {
		for _, adj := range e.lex.Adjacency[string(c)] {
			cat := types.Category(adj)
			if matchedSet[cat] || seen[cat] {
				continue
			}
			seen[cat] = true
			related = append(related, cat)
		}
	}
	return related
}

// describe builds a short re-parsable summary of the matched dimensions.
// Running Extract on its output re-detects at least the same categories,
// because each category is rendered via its own canonical trigger phrase.
func (e *Extractor) describe(intent types.Intent) string {
	var parts []string
	parts = append(parts, intent.Atmosphere...)
	parts = append(parts, intent.Experiences...)
	for _, c := range intent.Categories {
		if trigger, ok := e.canonicalCategory[c]; ok {
			parts = append(parts, trigger)
		} else {
			parts = append(parts, string(c))
		}
	}
	if intent.Location != nil {
		parts = append(parts, "near "+intent.Location.Name)
	}
	if intent.GroupType != "" {
		parts = append(parts, "for "+intent.GroupType)
	}
	if intent.PriceTier != "" {
		parts = append(parts, intent.PriceTier)
	}
	if len(parts) == 0 {
		return "general exploration"
	}
	return strings.Join(parts, " ")
}

// buildVariants returns the ordered search-query variants: the raw query
// first, then the enriched summary, each with its per-index decay weight.
func (e *Extractor) buildVariants(query string, intent types.Intent) []types.SearchVariant {
	variants := []types.SearchVariant{{Query: query, Weight: variantWeight(0)}}

	enriched := intent.NaturalLanguageIntent
	if enriched != "" && enriched != "general exploration" &&
		!strings.EqualFold(enriched, strings.TrimSpace(query)) {
		variants = append(variants, types.SearchVariant{
			Query:  enriched,
			Weight: variantWeight(len(variants)),
		})
	}
	return variants
}

func variantWeight(index int) float64 {
	w := 1.0 - variantDecayStep*float64(index)
	if w < variantWeightFloor {
		return variantWeightFloor
	}
	return w
}
