package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/JigCut/internal/model"
	"github.com/piwi3910/JigCut/internal/puzzle"
)

// PuzzleFileExt is the extension of saved puzzle files.
const PuzzleFileExt = ".jigcut.json"

// ErrUnsupportedVersion is returned for saved puzzles written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported saved puzzle version")

// DefaultPuzzleDir returns the directory holding saved puzzles.
func DefaultPuzzleDir() string {
	return filepath.Join(DefaultConfigDir(), "puzzles")
}

// PuzzlePath returns the file path of the puzzle with the given id in dir.
func PuzzlePath(dir, id string) string {
	return filepath.Join(dir, id+PuzzleFileExt)
}

// SavePuzzle writes a saved puzzle as JSON, creating parent directories.
func SavePuzzle(path string, saved model.SavedPuzzle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create puzzle directory: %w", err)
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal puzzle %q: %w", saved.Settings.ID, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write puzzle file: %w", err)
	}
	return nil
}

// LoadPuzzle reads a saved puzzle and checks it can be rebuilt.
func LoadPuzzle(path string) (model.SavedPuzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SavedPuzzle{}, fmt.Errorf("failed to read puzzle file: %w", err)
	}
	var saved model.SavedPuzzle
	if err := json.Unmarshal(data, &saved); err != nil {
		return model.SavedPuzzle{}, fmt.Errorf("failed to parse puzzle file: %w", err)
	}
	if saved.Version == "" {
		return model.SavedPuzzle{}, fmt.Errorf("invalid puzzle file: missing version field")
	}
	if major(saved.Version) != major(model.SavedPuzzleFormatVersion) {
		return model.SavedPuzzle{}, fmt.Errorf("%w: %s", ErrUnsupportedVersion, saved.Version)
	}
	if err := saved.Settings.Validate(); err != nil {
		return model.SavedPuzzle{}, fmt.Errorf("invalid puzzle settings: %w", err)
	}
	if saved.Positions == nil {
		saved.Positions = []model.PiecePosition{}
	}
	return saved, nil
}

func major(version string) string {
	head, _, _ := strings.Cut(version, ".")
	return head
}

// ListPuzzles returns the saved puzzles found in dir, most recent first.
// A missing directory yields an empty list.
func ListPuzzles(dir string) ([]model.SavedPuzzle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.SavedPuzzle{}, nil
		}
		return nil, err
	}
	puzzles := []model.SavedPuzzle{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), PuzzleFileExt) {
			continue
		}
		saved, err := LoadPuzzle(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		puzzles = append(puzzles, saved)
	}
	sort.SliceStable(puzzles, func(i, j int) bool {
		return puzzles[i].UpdatedAt > puzzles[j].UpdatedAt
	})
	return puzzles, nil
}

// RestorePuzzle rebuilds the puzzle described by saved and replays its
// layout. opts supplies the callbacks and renderer; its grid fields are
// replaced by the saved settings.
func RestorePuzzle(saved model.SavedPuzzle, opts puzzle.Options) (*puzzle.Puzzle, error) {
	base := puzzle.OptionsFromSettings(saved.Settings)
	base.NewRenderer = opts.NewRenderer
	base.GetCustomInitialPiecePosition = opts.GetCustomInitialPiecePosition
	base.OnDirty = opts.OnDirty
	base.OnPieceRelease = opts.OnPieceRelease
	base.OnGroupOfPiecesRelease = opts.OnGroupOfPiecesRelease
	base.OnChangeProgress = opts.OnChangeProgress
	base.Logger = opts.Logger

	pz, err := puzzle.New(base)
	if err != nil {
		return nil, err
	}
	if err := pz.MovePiecesToManualInitialPositions(saved.Positions); err != nil {
		return nil, fmt.Errorf("failed to replay puzzle %q: %w", saved.Settings.ID, err)
	}
	return pz, nil
}
