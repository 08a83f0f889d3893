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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if SKINSIGHT_CONFIG is set
//  3. env (prefix SKINSIGHT_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("SKINSIGHT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SKINSIGHT_ADDR, SKINSIGHT_WORKER_COUNT, ...
	// Map env keys like SKINSIGHT_QUEUE_SIZE -> queue_size (flat keys).
	envProvider := env.Provider("SKINSIGHT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "skinsight_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DetectionThreshold <= 0 || c.DetectionThreshold > 1:
		return fmt.Errorf("%w: detection_threshold must be in (0,1]", ErrInvalidConfig)
	case c.RecommendationCount < 1:
		return fmt.Errorf("%w: recommendation_count must be positive", ErrInvalidConfig)
	case c.CategoryCap < 1:
		return fmt.Errorf("%w: category_cap must be positive", ErrInvalidConfig)
	case c.SimilarityTopK < 1:
		return fmt.Errorf("%w: similarity_top_k must be positive", ErrInvalidConfig)
	}
	return nil
}
