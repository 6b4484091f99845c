package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML override file on top of the defaults. Lists left empty in
// the file keep their default values; a list that is present replaces its
// default wholesale rather than appending, so operators can also shrink it.
func Load(path string) (FilterConfig, error) {
	cfg := DefaultFilterConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return FilterConfig{}, fmt.Errorf("read filter config: %w", err)
	}

	var file FilterConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return FilterConfig{}, fmt.Errorf("parse filter config %s: %w", path, err)
	}

	if file.ExcludedOperations != nil {
		cfg.ExcludedOperations = file.ExcludedOperations
	}
	if file.ExcludedOperationPrefixes != nil {
		cfg.ExcludedOperationPrefixes = file.ExcludedOperationPrefixes
	}
	if file.IgnorePatterns != nil {
		cfg.IgnorePatterns = file.IgnorePatterns
	}
	if file.IncludedResourceTypes != nil {
		cfg.IncludedResourceTypes = file.IncludedResourceTypes
	}
	cfg.SkipRules = file.SkipRules

	return cfg, nil
}
