package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/piwi3910/JigCut/internal/model"
)

// HomeEnv overrides the application data directory when set.
const HomeEnv = "JIGCUT_HOME"

// DefaultConfigDir returns the application data directory: $JIGCUT_HOME,
// or ~/.jigcut/ when it is unset.
func DefaultConfigDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".jigcut")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig writes config as indented JSON, creating parent directories.
// The file is replaced through a rename so a crash never leaves it truncated.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// LoadAppConfig reads the config at path. A missing file yields the
// defaults; fields absent from the file keep their default values and
// out-of-range values are reset to them.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	normalizeConfig(&config)
	return config, nil
}

func normalizeConfig(c *model.AppConfig) {
	defaults := model.DefaultAppConfig()
	logger := log.With().Str("module", "project").Logger()

	if c.DefaultPiecesPerWidth < 1 || c.DefaultPiecesPerHeight < 1 {
		logger.Warn().Int("width", c.DefaultPiecesPerWidth).Int("height", c.DefaultPiecesPerHeight).
			Msg("invalid default grid in config, using defaults")
		c.DefaultPiecesPerWidth = defaults.DefaultPiecesPerWidth
		c.DefaultPiecesPerHeight = defaults.DefaultPiecesPerHeight
	}
	if c.DefaultPieceSideSize <= 0 {
		c.DefaultPieceSideSize = defaults.DefaultPieceSideSize
	}
	if c.DefaultActivationFraction <= 0 || c.DefaultActivationFraction > 1 {
		c.DefaultActivationFraction = defaults.DefaultActivationFraction
	}
	if c.DefaultSpreadMargin < 0 {
		c.DefaultSpreadMargin = defaults.DefaultSpreadMargin
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		logger.Warn().Str("level", c.LogLevel).Msg("unknown log level in config, using info")
		c.LogLevel = defaults.LogLevel
	}
	if name := model.GetProfile(c.Cut.GCodeProfile).Name; name != c.Cut.GCodeProfile {
		logger.Warn().Str("profile", c.Cut.GCodeProfile).Str("using", name).Msg("unknown GCode profile in config")
		c.Cut.GCodeProfile = name
	}

	recent := c.RecentPuzzles
	c.RecentPuzzles = []string{}
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i] != "" {
			c.AddRecentPuzzle(recent[i])
		}
	}
}
