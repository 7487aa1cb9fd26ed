package puzzle

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/model"
)

// Options configures a Puzzle.
type Options struct {
	// ID seeds the PRNG. A random id is generated when empty.
	ID string

	NumberOfPiecesPerWidth                   int
	NumberOfPiecesPerHeight                  int
	PieceSideSize                            float64
	ConnectionActivationAreaSideSizeFraction float64

	// ScatterArea bounds random initial placement and the default spread
	// row width. Zero means twice the assembled puzzle in both directions.
	ScatterArea geom.Area

	// NewRenderer, when set, is called once per atomic piece at creation.
	NewRenderer func(*Piece) Renderer

	// GetCustomInitialPiecePosition overrides random placement. It receives
	// the piece's canonical grid point.
	GetCustomInitialPiecePosition func(geom.Point) geom.Point

	OnDirty                func()
	OnPieceRelease         func(model.PiecePosition)
	OnGroupOfPiecesRelease func([]model.PiecePosition)
	OnChangeProgress       func(int)

	Logger *zerolog.Logger
}

// OptionsFromSettings maps persisted settings onto engine options.
func OptionsFromSettings(s model.PuzzleSettings) Options {
	return Options{
		ID:                                       s.ID,
		NumberOfPiecesPerWidth:                   s.NumberOfPiecesPerWidth,
		NumberOfPiecesPerHeight:                  s.NumberOfPiecesPerHeight,
		PieceSideSize:                            s.PieceSideSize,
		ConnectionActivationAreaSideSizeFraction: s.ConnectionActivationAreaSideSizeFraction,
		ScatterArea:                              s.ScatterArea,
	}
}

// Settings returns the persisted form of the options.
func (o Options) Settings() model.PuzzleSettings {
	return model.PuzzleSettings{
		ID:                                       o.ID,
		NumberOfPiecesPerWidth:                   o.NumberOfPiecesPerWidth,
		NumberOfPiecesPerHeight:                  o.NumberOfPiecesPerHeight,
		PieceSideSize:                            o.PieceSideSize,
		ConnectionActivationAreaSideSizeFraction: o.ConnectionActivationAreaSideSizeFraction,
		ScatterArea:                              o.ScatterArea,
	}
}

func (o Options) validate() error {
	if err := o.Settings().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

func (o Options) scatterArea() geom.Area {
	if o.ScatterArea.Width > 0 && o.ScatterArea.Height > 0 {
		return o.ScatterArea
	}
	return geom.Area{
		Width:  2 * float64(o.NumberOfPiecesPerWidth) * o.PieceSideSize,
		Height: 2 * float64(o.NumberOfPiecesPerHeight) * o.PieceSideSize,
	}
}
