package gcode

import (
	"math"
	"strings"
	"testing"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/model"
	"github.com/piwi3910/JigCut/internal/puzzle"
	"github.com/piwi3910/JigCut/internal/shape"
)

func newTestOutlines(t *testing.T) []shape.PieceOutline {
	t.Helper()
	pz, err := puzzle.New(puzzle.Options{
		ID:                                       "gcode-seed",
		NumberOfPiecesPerWidth:                   2,
		NumberOfPiecesPerHeight:                  1,
		PieceSideSize:                            50,
		ConnectionActivationAreaSideSizeFraction: 0.2,
		GetCustomInitialPiecePosition:            func(c geom.Point) geom.Point { return c },
	})
	if err != nil {
		t.Fatalf("failed to create puzzle: %v", err)
	}
	return shape.Assembled(pz)
}

func countByType(moves []Move) map[MoveKind]int {
	counts := map[MoveKind]int{}
	for _, m := range moves {
		counts[m.Kind]++
	}
	return counts
}

func TestGenerate_TwoPiecesTwoPasses(t *testing.T) {
	code := New(model.DefaultCutSettings()).Generate("gcode-seed", newTestOutlines(t))
	moves := Parse(code)
	counts := countByType(moves)

	// 2 pieces x 2 passes, each loop is 17 points long.
	if counts[MovePlunge] != 4 {
		t.Errorf("expected 4 plunges, got %d", counts[MovePlunge])
	}
	if counts[MoveFeed] != 4*17 {
		t.Errorf("expected %d feed moves, got %d", 4*17, counts[MoveFeed])
	}
	// One retract per pass plus the initial lift to safe Z.
	if counts[MoveRetract] != 5 {
		t.Errorf("expected 5 retracts, got %d", counts[MoveRetract])
	}
	if counts[MoveRapid] != 7 {
		t.Errorf("expected 7 rapids, got %d", counts[MoveRapid])
	}
}

func TestGenerate_PassDepths(t *testing.T) {
	code := New(model.DefaultCutSettings()).Generate("gcode-seed", newTestOutlines(t))

	var depths []float64
	for _, m := range Parse(code) {
		if m.Kind == MovePlunge {
			depths = append(depths, m.To.Z)
		}
	}
	want := []float64{-1.5, -3, -1.5, -3}
	if len(depths) != len(want) {
		t.Fatalf("expected %d plunges, got %d", len(want), len(depths))
	}
	for i := range want {
		if depths[i] != want[i] {
			t.Errorf("plunge %d: expected Z%.1f, got Z%.3f", i, want[i], depths[i])
		}
	}
}

func TestGenerate_LoopsAreClosed(t *testing.T) {
	outlines := newTestOutlines(t)
	code := New(model.DefaultCutSettings()).Generate("gcode-seed", outlines)
	moves := Parse(code)

	var start Move
	loops := 0
	for i, m := range moves {
		switch m.Kind {
		case MovePlunge:
			start = m
		case MoveRetract:
			if i == 0 || moves[i-1].Kind != MoveFeed {
				continue
			}
			loops++
			last := moves[i-1]
			if last.To.X != start.To.X || last.To.Y != start.To.Y {
				t.Errorf("loop %d ends at (%.3f, %.3f), started at (%.3f, %.3f)",
					loops, last.To.X, last.To.Y, start.To.X, start.To.Y)
			}
		}
	}
	if loops != 4 {
		t.Errorf("expected 4 closed loops, got %d", loops)
	}

	// The second piece starts at its top-left corner.
	if !strings.Contains(code, "G0 X50.000 Y0.000\n") {
		t.Error("expected a rapid move to the second piece's corner")
	}
}

func TestGenerate_SinglePassWhenPassDepthUnset(t *testing.T) {
	settings := model.DefaultCutSettings()
	settings.PassDepth = 0

	moves := Parse(New(settings).Generate("gcode-seed", newTestOutlines(t)))
	if got := countByType(moves)[MovePlunge]; got != 2 {
		t.Errorf("expected 2 plunges, got %d", got)
	}
}

func TestGenerate_Summary(t *testing.T) {
	code := New(model.DefaultCutSettings()).Generate("gcode-seed", newTestOutlines(t))
	s := Summarize(Parse(code))

	// Each piece: three straight sides, one side with a 10mm half-circle tab
	// drawn with 12 segments.
	perimeter := 190 + 12*2*5*math.Sin(math.Pi/24)
	if math.Abs(s.CutLength-4*perimeter) > 0.5 {
		t.Errorf("expected cut length %.2f, got %.2f", 4*perimeter, s.CutLength)
	}
	if s.MaxDepth != 3 {
		t.Errorf("expected max depth 3, got %.3f", s.MaxDepth)
	}
	if s.Pieces != 2 {
		t.Fatalf("expected 2 pieces, got %d", s.Pieces)
	}
	for _, n := range []int{1, 2} {
		if math.Abs(s.PieceCutLength[n]-2*perimeter) > 0.25 {
			t.Errorf("piece %d: expected cut length %.2f, got %.2f", n, 2*perimeter, s.PieceCutLength[n])
		}
	}
}

func TestGenerate_HeaderAndFooter(t *testing.T) {
	code := New(model.DefaultCutSettings()).Generate("gcode-seed", newTestOutlines(t))

	for _, want := range []string{
		"; JigCut GCode, puzzle gcode-seed\n",
		"; Pieces: 2, area: 100.0 x 50.0 mm\n",
		"; Profile: Generic\n",
		"M3 S18000\n",
		"M5\nG0 Z5.000\nG0 X0 Y0\nM2\n",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestGenerate_Mach3Profile(t *testing.T) {
	settings := model.DefaultCutSettings()
	settings.GCodeProfile = "Mach3"
	g := New(settings)

	if g.Profile().Name != "Mach3" {
		t.Fatalf("expected Mach3 profile, got %s", g.Profile().Name)
	}

	code := g.Generate("gcode-seed", newTestOutlines(t))
	if !strings.Contains(code, "( Profile: Mach3)\n") {
		t.Error("expected parenthesised comments")
	}
	if !strings.Contains(code, "G0 X0.0000 Y0.0000\n") {
		t.Error("expected 4 decimal places")
	}
	if !strings.HasSuffix(code, "M30\n") {
		t.Error("expected program to end with M30")
	}
}

func TestGenerate_SkipsDegenerateOutline(t *testing.T) {
	outlines := []shape.PieceOutline{{ID: "x", Outline: geom.Outline{{X: 0, Y: 0}, {X: 1, Y: 0}}}}
	code := New(model.DefaultCutSettings()).Generate("p", outlines)

	if !strings.Contains(code, "WARNING: outline has fewer than 3 points") {
		t.Error("expected warning for degenerate outline")
	}
	if got := countByType(Parse(code))[MovePlunge]; got != 0 {
		t.Errorf("expected no plunge, got %d", got)
	}
}
