package scoring

import "fmt"

// WeightProfile names one blend of the scoring axes. The same scorer serves
// both the conversational turn path and the live marker refresh path; only
// the profile differs.
type WeightProfile struct {
	Name       string  `koanf:"name"`
	Semantic   float64 `koanf:"semantic"`
	Quality    float64 `koanf:"quality"`
	Feature    float64 `koanf:"feature"`
	Geographic float64 `koanf:"geographic"`
	Diversity  float64 `koanf:"diversity"`
	Recency    float64 `koanf:"recency"`
}

const (
	// ProfileConversational is the canonical profile for conversational turns.
	ProfileConversational = "conversational"
	// ProfileLiveRefresh leans harder on semantic similarity for marker
	// refreshes, where the query context is already established.
	ProfileLiveRefresh = "live-refresh"
)

// ConversationalProfile returns the canonical weight blend.
func ConversationalProfile() WeightProfile {
	return WeightProfile{
		Name:       ProfileConversational,
		Semantic:   0.35,
		Quality:    0.15,
		Feature:    0.20,
		Geographic: 0.20,
		Diversity:  0.05,
		Recency:    0.05,
	}
}

// LiveRefreshProfile returns the alternate, semantic-heavy blend.
func LiveRefreshProfile() WeightProfile {
	return WeightProfile{
		Name:       ProfileLiveRefresh,
		Semantic:   0.50,
		Quality:    0.10,
		Feature:    0.20,
		Geographic: 0.15,
		Diversity:  0.05,
		Recency:    0.05,
	}
}

// ProfileByName resolves a configured profile name.
func ProfileByName(name string) (WeightProfile, error) {
	switch name {
	case ProfileConversational, "":
		return ConversationalProfile(), nil
	case ProfileLiveRefresh:
		return LiveRefreshProfile(), nil
	default:
		return WeightProfile{}, fmt.Errorf("unknown weight profile %q", name)
	}
}

// normalized rescales the weights to sum to 1 so totals stay in [0,1]
// whatever blend a profile declares.
func (w WeightProfile) normalized() WeightProfile {
	sum := w.Semantic + w.Quality + w.Feature + w.Geographic + w.Diversity + w.Recency
	if sum <= 0 {
		return ConversationalProfile()
	}
	return WeightProfile{
		Name:       w.Name,
		Semantic:   w.Semantic / sum,
		Quality:    w.Quality / sum,
		Feature:    w.Feature / sum,
		Geographic: w.Geographic / sum,
		Diversity:  w.Diversity / sum,
		Recency:    w.Recency / sum,
	}
}
