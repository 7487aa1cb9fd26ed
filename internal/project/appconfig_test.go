package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/JigCut/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultPieceSideSize = 80.0
	cfg.LogLevel = "debug"
	cfg.Cut.GCodeProfile = "Grbl"
	cfg.RecentPuzzles = []string{"abc", "def"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultPieceSideSize != 80.0 {
		t.Errorf("expected DefaultPieceSideSize=80.0, got %f", loaded.DefaultPieceSideSize)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", loaded.LogLevel)
	}
	if loaded.Cut.GCodeProfile != "Grbl" {
		t.Errorf("expected GCodeProfile=Grbl, got %s", loaded.Cut.GCodeProfile)
	}
	if len(loaded.RecentPuzzles) != 2 {
		t.Errorf("expected 2 recent puzzles, got %d", len(loaded.RecentPuzzles))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultPiecesPerWidth != defaults.DefaultPiecesPerWidth {
		t.Errorf("expected default width %d, got %d", defaults.DefaultPiecesPerWidth, cfg.DefaultPiecesPerWidth)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadAppConfigKeepsDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"default_pieces_per_width":9}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.DefaultPiecesPerWidth != 9 {
		t.Errorf("expected width 9, got %d", cfg.DefaultPiecesPerWidth)
	}
	if cfg.DefaultActivationFraction != model.DefaultActivationFraction {
		t.Errorf("expected default fraction, got %f", cfg.DefaultActivationFraction)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	cfg := model.DefaultAppConfig()
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigNilRecentPuzzles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := []byte(`{"default_piece_side_size":40,"recent_puzzles":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentPuzzles == nil {
		t.Error("RecentPuzzles should not be nil after loading")
	}
}

func TestLoadAppConfigResetsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{
		"default_pieces_per_width": 0,
		"default_piece_side_size": -5,
		"default_activation_fraction": 3,
		"log_level": "loud",
		"cut": {"gcode_profile": "Haas"},
		"recent_puzzles": ["b", "", "a", "b"]
	}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	defaults := model.DefaultAppConfig()
	if cfg.DefaultPiecesPerWidth != defaults.DefaultPiecesPerWidth {
		t.Errorf("expected default width, got %d", cfg.DefaultPiecesPerWidth)
	}
	if cfg.DefaultPieceSideSize != defaults.DefaultPieceSideSize {
		t.Errorf("expected default side size, got %f", cfg.DefaultPieceSideSize)
	}
	if cfg.DefaultActivationFraction != defaults.DefaultActivationFraction {
		t.Errorf("expected default fraction, got %f", cfg.DefaultActivationFraction)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
	if cfg.Cut.GCodeProfile != "Generic" {
		t.Errorf("expected Generic profile, got %s", cfg.Cut.GCodeProfile)
	}
	if len(cfg.RecentPuzzles) != 2 || cfg.RecentPuzzles[0] != "b" || cfg.RecentPuzzles[1] != "a" {
		t.Errorf("expected recent [b a], got %v", cfg.RecentPuzzles)
	}
}

func TestSaveAppConfigLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestDefaultConfigDirHonoursEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	if got := DefaultConfigDir(); got != dir {
		t.Errorf("expected %s, got %s", dir, got)
	}
	if got := DefaultConfigPath(); got != filepath.Join(dir, "config.json") {
		t.Errorf("unexpected config path %s", got)
	}
	if got := DefaultPuzzleDir(); got != filepath.Join(dir, "puzzles") {
		t.Errorf("unexpected puzzle dir %s", got)
	}
}
