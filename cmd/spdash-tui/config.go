package main

import (
	"fmt"

	"github.com/tinytelemetry/spdash/internal/model"
	"github.com/tinytelemetry/spdash/internal/settings"
)

// cliConfig holds only TUI-relevant configuration.
type cliConfig struct {
	settings.Source `mapstructure:",squash"`

	InitialTab string `mapstructure:"initial-tab"`
	AltScreen  bool   `mapstructure:"alt-screen"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	v, err := settings.NewViper(configPath)
	if err != nil {
		return cfg, err
	}
	v.SetDefault("initial-tab", model.TabTable.String())
	v.SetDefault("alt-screen", true)

	if err := settings.ReadConfig(v); err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if _, ok := model.ParseTab(cfg.InitialTab); !ok {
		return cfg, fmt.Errorf("invalid initial-tab %q (want table or charts)", cfg.InitialTab)
	}
	return cfg, nil
}
