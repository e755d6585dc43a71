// Package selection picks the final marker set from sorted scored
// candidates under per-category diversity caps, so one dominant category
// cannot crowd out the rest of the map even when it dominates raw scores.
package selection

import (
	"math"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

// Config bounds the selection.
type Config struct {
	MaxTotal       int
	MaxHighlighted int
	// PerCategoryCap defaults to ceil(MaxTotal/4) when zero.
	PerCategoryCap int
}

// DefaultConfig returns the bounds used when nothing is configured.
func DefaultConfig() Config {
	return Config{MaxTotal: 10, MaxHighlighted: 5}
}

func (c Config) withDefaults() Config {
	if c.MaxTotal <= 0 {
		c.MaxTotal = DefaultConfig().MaxTotal
	}
	if c.MaxHighlighted <= 0 {
		c.MaxHighlighted = DefaultConfig().MaxHighlighted
	}
	if c.MaxHighlighted > c.MaxTotal {
		c.MaxHighlighted = c.MaxTotal
	}
	if c.PerCategoryCap <= 0 {
		c.PerCategoryCap = int(math.Ceil(float64(c.MaxTotal) / 4))
	}
	return c
}

// Result is the partitioned selection: the ordered accepted list, the first
// MaxHighlighted of it, and the clustered remainder.
type Result struct {
	Selected    []types.ScoredCandidate
	Highlighted []types.ScoredCandidate
	Clustered   []types.ScoredCandidate
}

// Select greedily walks the score-sorted candidates, skipping any candidate
// whose category already reached the per-category cap, and stops at MaxTotal
// accepted. Deterministic for identical input.
func Select(candidates []types.ScoredCandidate, cfg Config) Result {
	cfg = cfg.withDefaults()

	perCategory := make(map[types.Category]int)
	selected := make([]types.ScoredCandidate, 0, cfg.MaxTotal)
	for _, c := range candidates {
		if len(selected) >= cfg.MaxTotal {
			break
		}
		if perCategory[c.POI.Category] >= cfg.PerCategoryCap {
			continue
		}
		perCategory[c.POI.Category]++
		selected = append(selected, c)
	}

	split := cfg.MaxHighlighted
	if split > len(selected) {
		split = len(selected)
	}
	return Result{
		Selected:    selected,
		Highlighted: selected[:split],
		Clustered:   selected[split:],
	}
}
