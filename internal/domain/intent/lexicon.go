package intent

import (
	_ "embed"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Lexicon is the full rule table driving intent extraction: trigger phrases,
// adjacency, implicit needs, feature patterns and the place gazetteer. It is
// data, not code, so it can be tested, extended and localized independently.
type Lexicon struct {
	Categories    map[string][]string `koanf:"categories"`
	Atmosphere    map[string][]string `koanf:"atmosphere"`
	Experiences   map[string][]string `koanf:"experiences"`
	PriceTiers    []PriceTierEntry    `koanf:"price_tiers"`
	TimeOfDay     []NamedTriggers     `koanf:"time_of_day"`
	GroupTypes    []NamedTriggers     `koanf:"group_types"`
	Adjacency     map[string][]string `koanf:"adjacency"`
	ImplicitNeeds map[string][]string `koanf:"implicit_needs"`
	Features      []FeaturePattern    `koanf:"features"`
	Places        []PlaceEntry        `koanf:"places"`
}

// PriceTierEntry is one tier of the ordered price lexicon. Order in the file
// is resolution order.
type PriceTierEntry struct {
	Tier     string   `koanf:"tier"`
	Triggers []string `koanf:"triggers"`
}

// NamedTriggers is an ordered lexicon entry (time of day, group type).
type NamedTriggers struct {
	Name     string   `koanf:"name"`
	Triggers []string `koanf:"triggers"`
}

// FeaturePattern is a must-have feature with its detection regex.
type FeaturePattern struct {
	Name    string `koanf:"name"`
	Pattern string `koanf:"pattern"`
}

// PlaceEntry is one gazetteer row.
type PlaceEntry struct {
	Name      string   `koanf:"name"`
	Aliases   []string `koanf:"aliases"`
	Latitude  float64  `koanf:"latitude"`
	Longitude float64  `koanf:"longitude"`
	RadiusKm  float64  `koanf:"radius_km"`
}

// LoadLexicon reads the rule tables from path, or from the embedded default
// document when path is empty.
func LoadLexicon(path string) (*Lexicon, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load lexicon file %s: %w", path, err)
		}
	} else {
		if err := k.Load(rawbytes.Provider(defaultLexicon), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load embedded lexicon: %w", err)
		}
	}

	var lex Lexicon
	if err := k.Unmarshal("", &lex); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lexicon: %w", err)
	}
	if err := lex.validate(); err != nil {
		return nil, err
	}
	return &lex, nil
}

func (l *Lexicon) validate() error {
	if len(l.Categories) == 0 {
		return fmt.Errorf("lexicon has no category triggers")
	}
	if len(l.Atmosphere) == 0 {
		return fmt.Errorf("lexicon has no atmosphere triggers")
	}
	if len(l.Places) == 0 {
		return fmt.Errorf("lexicon has no gazetteer entries")
	}
	for _, f := range l.Features {
		if f.Name == "" || f.Pattern == "" {
			return fmt.Errorf("feature entry missing name or pattern: %+v", f)
		}
	}
	return nil
}
