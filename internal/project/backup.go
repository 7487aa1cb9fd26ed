package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/JigCut/internal/model"
)

// BackupFormatVersion is written into every backup file.
const BackupFormatVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string              `json:"version"`
	CreatedAt string              `json:"created_at"`
	Config    model.AppConfig     `json:"config"`
	Puzzles   []model.SavedPuzzle `json:"puzzles"`
}

// ExportAllData writes the config and every saved puzzle to a single JSON
// file at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, puzzles []model.SavedPuzzle) error {
	if puzzles == nil {
		puzzles = []model.SavedPuzzle{}
	}
	backup := BackupData{
		Version:   BackupFormatVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Puzzles:   puzzles,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported config and puzzles.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentPuzzles == nil {
		backup.Config.RecentPuzzles = []string{}
	}
	if backup.Puzzles == nil {
		backup.Puzzles = []model.SavedPuzzle{}
	}
	return backup, nil
}

// RestoreBackup writes every puzzle of backup into dir, replacing saved
// puzzles with the same id, and returns how many were written. Puzzles whose
// settings cannot be rebuilt are rejected before anything is written.
func RestoreBackup(dir string, backup BackupData) (int, error) {
	for _, saved := range backup.Puzzles {
		if err := saved.Settings.Validate(); err != nil {
			return 0, fmt.Errorf("backup puzzle %q: %w", saved.Settings.ID, err)
		}
	}
	for i, saved := range backup.Puzzles {
		if saved.Positions == nil {
			saved.Positions = []model.PiecePosition{}
		}
		if err := SavePuzzle(PuzzlePath(dir, saved.Settings.ID), saved); err != nil {
			return i, err
		}
	}
	return len(backup.Puzzles), nil
}
