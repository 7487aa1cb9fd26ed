package export

import (
	"os"
	"testing"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/puzzle"
)

// assembledPuzzle returns a w x h puzzle whose pieces start at their
// assembled positions but are not connected yet.
func assembledPuzzle(t *testing.T, w, h int, newRenderer func(*puzzle.Piece) puzzle.Renderer) *puzzle.Puzzle {
	t.Helper()
	pz, err := puzzle.New(puzzle.Options{
		ID:                                       "export-seed",
		NumberOfPiecesPerWidth:                   w,
		NumberOfPiecesPerHeight:                  h,
		PieceSideSize:                            50,
		ConnectionActivationAreaSideSizeFraction: 0.2,
		NewRenderer:                              newRenderer,
		GetCustomInitialPiecePosition:            func(c geom.Point) geom.Point { return c },
	})
	if err != nil {
		t.Fatalf("failed to create puzzle: %v", err)
	}
	return pz
}

func assertNonEmptyFile(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file was not created: %v", err)
	}
	if info.Size() < minSize {
		t.Errorf("file seems too small: %d bytes", info.Size())
	}
}
