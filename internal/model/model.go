package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/JigCut/internal/geom"
)

// Defaults for a freshly created puzzle.
const (
	DefaultPiecesPerWidth     = 6
	DefaultPiecesPerHeight    = 5
	DefaultPieceSideSize      = 50.0
	DefaultActivationFraction = 0.2
	SavedPuzzleFormatVersion  = "1.0.0"
)

// PuzzleSettings is the externally tracked puzzle metadata: everything needed
// to rebuild the same grid, shapes and scatter from scratch.
type PuzzleSettings struct {
	ID                                       string    `json:"id"` // Seed of the puzzle PRNG
	NumberOfPiecesPerWidth                   int       `json:"number_of_pieces_per_width"`
	NumberOfPiecesPerHeight                  int       `json:"number_of_pieces_per_height"`
	PieceSideSize                            float64   `json:"piece_side_size"`
	ConnectionActivationAreaSideSizeFraction float64   `json:"connection_activation_area_side_size_fraction"`
	ScatterArea                              geom.Area `json:"scatter_area,omitempty"` // zero = twice the assembled size
}

// NewPuzzleSettings returns default settings with a fresh random id.
func NewPuzzleSettings() PuzzleSettings {
	return PuzzleSettings{
		ID:                                       uuid.New().String(),
		NumberOfPiecesPerWidth:                   DefaultPiecesPerWidth,
		NumberOfPiecesPerHeight:                  DefaultPiecesPerHeight,
		PieceSideSize:                            DefaultPieceSideSize,
		ConnectionActivationAreaSideSizeFraction: DefaultActivationFraction,
	}
}

// Validate checks the settings can produce a puzzle.
func (s PuzzleSettings) Validate() error {
	if s.NumberOfPiecesPerWidth < 1 || s.NumberOfPiecesPerHeight < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", s.NumberOfPiecesPerWidth, s.NumberOfPiecesPerHeight)
	}
	if s.PieceSideSize <= 0 {
		return fmt.Errorf("piece side size must be > 0, got %g", s.PieceSideSize)
	}
	f := s.ConnectionActivationAreaSideSizeFraction
	if f <= 0 || f > 1 {
		return fmt.Errorf("connection activation area fraction must be in (0, 1], got %g", f)
	}
	return nil
}

// PieceCount returns the number of atomic pieces in the grid.
func (s PuzzleSettings) PieceCount() int {
	return s.NumberOfPiecesPerWidth * s.NumberOfPiecesPerHeight
}

// AssembledSize returns the width and height of the finished puzzle.
func (s PuzzleSettings) AssembledSize() (float64, float64) {
	return float64(s.NumberOfPiecesPerWidth) * s.PieceSideSize,
		float64(s.NumberOfPiecesPerHeight) * s.PieceSideSize
}

// PiecePosition is one persisted record: a piece id and its world position.
type PiecePosition struct {
	ID       string     `json:"id"`
	Position geom.Point `json:"position"`
}

// SavedPuzzle ties settings and the last known layout together for save/load.
type SavedPuzzle struct {
	Version              string          `json:"version"`
	UpdatedAt            string          `json:"updated_at"`
	Settings             PuzzleSettings  `json:"settings"`
	Positions            []PiecePosition `json:"positions"`
	CompletenessProgress int             `json:"completeness_progress"`
}

// NewSavedPuzzle snapshots positions for the given settings.
func NewSavedPuzzle(settings PuzzleSettings, positions []PiecePosition, progress int) SavedPuzzle {
	return SavedPuzzle{
		Version:              SavedPuzzleFormatVersion,
		UpdatedAt:            time.Now().UTC().Format(time.RFC3339),
		Settings:             settings,
		Positions:            copyPositions(positions),
		CompletenessProgress: progress,
	}
}

func copyPositions(positions []PiecePosition) []PiecePosition {
	out := make([]PiecePosition, len(positions))
	copy(out, positions)
	return out
}
