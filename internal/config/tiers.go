package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/analysis"
)

// LoadTiers reads a YAML resource-tier override file:
//
//	high: [es, pt]
//	medium: [th, hr]
//	low: [ht, lo]
//
// Returns nil (meaning "use the built-in map") when path is empty.
func LoadTiers(path string) (analysis.TierMap, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tiers file: %w", err)
	}
	var tiers analysis.TierMap
	if err := yaml.Unmarshal(data, &tiers); err != nil {
		return nil, fmt.Errorf("parse tiers file %s: %w", path, err)
	}

	seen := map[string]string{}
	for tier, langs := range tiers {
		for _, lang := range langs {
			if prev, dup := seen[lang]; dup {
				return nil, fmt.Errorf("language %q listed in both %q and %q tiers", lang, prev, tier)
			}
			seen[lang] = tier
		}
	}
	return tiers, nil
}
