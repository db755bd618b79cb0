package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// sections are the nested config blocks; env keys starting with one of these
// map into the block, everything else stays a flat top-level key.
var sections = map[string]bool{
	"model":           true,
	"training":        true,
	"features":        true,
	"recommendations": true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if PADDOCK_CONFIG is set
//  3. env (prefix PADDOCK_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PADDOCK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PADDOCK_ADDR, PADDOCK_MODEL_TYPE,
	// PADDOCK_TRAINING_TEST_SIZE, PADDOCK_FEATURES_INCLUDE_WEATHER, ...
	// A leading section name becomes the nested key prefix; remaining
	// underscores are preserved to match koanf tags on the structs.
	envProvider := env.Provider("PADDOCK_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "PADDOCK_"))
		if head, rest, ok := strings.Cut(s, "_"); ok && sections[head] {
			return head + "." + rest
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
