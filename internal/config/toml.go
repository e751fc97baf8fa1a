// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Players PlayersConfig `toml:"players"`
	Board   BoardConfig   `toml:"board"`
	Log     LogConfig     `toml:"log"`
}

// PlayersConfig maps player display names.
type PlayersConfig struct {
	Player1 *string `toml:"player1"`
	Player2 *string `toml:"player2"`
}

// BoardConfig maps board rendering settings.
type BoardConfig struct {
	ShowLowNumbers *bool `toml:"show-low-numbers"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// Template is written by `boomero config` when no file exists yet.
const Template = `# boomero configuration

[players]
# player1 = "Player 1"
# player2 = "Player 2"

[board]
# Render rows 1-9 too. They can be closed but never score.
# show-low-numbers = false

[log]
# One of trace, debug, info, warn, error.
# level = "info"
`

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
