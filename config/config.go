package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"taximarket/core/broker"
	"taximarket/core/metrics"
	"taximarket/infra/mqtt"
	"taximarket/simulator"
)

// Config is the root configuration of the service.
type Config struct {
	Broker     broker.Config    `json:"broker"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       mqtt.Config      `json:"mqtt"`
	Simulation simulator.Config `json:"simulation"`
}

// Load reads the configuration file (yaml or json, by extension), applies
// TM_-prefixed environment overrides, then defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. TM_BROKER__STRATEGY.
	if err := k.Load(env.Provider("TM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "tm_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Broker.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Simulation.SetDefaults()
	if err := cfg.Broker.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
