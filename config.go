// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DefaultRequiredAppVersion is the minimum Cosmos app version, exclusive.
const DefaultRequiredAppVersion = "1.0.0"

// Config holds the settings a Session enforces.
type Config struct {
	// RequiredAppVersion must be strictly exceeded by the installed app.
	RequiredAppVersion string        `mapstructure:"required_app_version"`
	ChainID            string        `mapstructure:"chain_id"`
	PollTimeout        time.Duration `mapstructure:"poll_timeout"`
	InteractionTimeout time.Duration `mapstructure:"interaction_timeout"`
	LogLevel           string        `mapstructure:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		RequiredAppVersion: DefaultRequiredAppVersion,
		PollTimeout:        PollTimeout,
		InteractionTimeout: InteractionTimeout,
		LogLevel:           "info",
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("required_app_version", def.RequiredAppVersion)
	v.SetDefault("chain_id", def.ChainID)
	v.SetDefault("poll_timeout", def.PollTimeout)
	v.SetDefault("interaction_timeout", def.InteractionTimeout)
	v.SetDefault("log_level", def.LogLevel)
}

// LoadConfig reads the optional config file at path and overlays LEDGER_*
// environment variables, e.g. LEDGER_REQUIRED_APP_VERSION.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	SetLogLevel(config.LogLevel)
	return config, nil
}

func (c *Config) Validate() error {
	if _, err := version.NewVersion(c.RequiredAppVersion); err != nil {
		return errors.Wrapf(err, "invalid required app version %q", c.RequiredAppVersion)
	}
	if c.PollTimeout <= 0 {
		return errors.Errorf("poll timeout must be positive, got %s", c.PollTimeout)
	}
	if c.InteractionTimeout <= 0 {
		return errors.Errorf("interaction timeout must be positive, got %s", c.InteractionTimeout)
	}
	return nil
}
