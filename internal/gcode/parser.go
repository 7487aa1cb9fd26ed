package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveKind classifies a parsed toolpath move.
type MoveKind int

const (
	MoveRapid   MoveKind = iota // G0 without rising Z
	MoveFeed                    // G1 in the XY plane: cutting
	MovePlunge                  // G1 straight down into the stock
	MoveRetract                 // Z rising, rapid or feed
)

func (k MoveKind) String() string {
	switch k {
	case MoveRapid:
		return "rapid"
	case MoveFeed:
		return "feed"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	}
	return "unknown"
}

// Vec3 is a machine position.
type Vec3 struct {
	X, Y, Z float64
}

// Move is one G0/G1 command with absolute endpoints.
type Move struct {
	Kind     MoveKind
	From     Vec3
	To       Vec3
	FeedRate float64
	// Piece is the number of the last "--- Piece N" comment seen, 0 before any.
	Piece int
}

// Length is the XY distance covered by the move.
func (m Move) Length() float64 {
	return math.Hypot(m.To.X-m.From.X, m.To.Y-m.From.Y)
}

var (
	wordRe  = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)
	pieceRe = regexp.MustCompile(`--- Piece (\d+):`)
)

// Parse reads a program in absolute coordinates and returns its motion
// commands. Comments in either ";" or "( )" form are skipped, except piece
// headers written by Generate, which tag the moves that follow.
func Parse(program string) []Move {
	var moves []Move
	var cur Vec3
	feed := 0.0
	piece := 0

	for _, raw := range strings.Split(program, "\n") {
		code, comment := splitComment(raw)
		if m := pieceRe.FindStringSubmatch(comment); m != nil {
			piece, _ = strconv.Atoi(m[1])
		}

		upper := strings.ToUpper(code)
		fields := strings.Fields(upper)
		if len(fields) == 0 {
			continue
		}
		var rapid bool
		switch fields[0] {
		case "G0", "G00":
			rapid = true
		case "G1", "G01":
		default:
			continue
		}

		next, nextFeed := cur, feed
		for _, w := range wordRe.FindAllStringSubmatch(upper, -1) {
			v, err := strconv.ParseFloat(w[2], 64)
			if err != nil {
				continue
			}
			switch w[1] {
			case "X":
				next.X = v
			case "Y":
				next.Y = v
			case "Z":
				next.Z = v
			case "F":
				nextFeed = v
			}
		}

		moves = append(moves, Move{
			Kind:     classify(rapid, cur, next),
			From:     cur,
			To:       next,
			FeedRate: nextFeed,
			Piece:    piece,
		})
		cur, feed = next, nextFeed
	}
	return moves
}

// splitComment separates the command part of a line from its comment text.
func splitComment(line string) (code, comment string) {
	code = strings.TrimSpace(line)
	if i := strings.Index(code, ";"); i >= 0 {
		code, comment = code[:i], code[i+1:]
	}
	if i := strings.Index(code, "("); i >= 0 {
		if end := strings.LastIndex(code, ")"); end > i {
			comment = code[i+1 : end]
			code = code[:i] + code[end+1:]
		} else {
			comment = code[i+1:]
			code = code[:i]
		}
	}
	return strings.TrimSpace(code), comment
}

func classify(rapid bool, from, to Vec3) MoveKind {
	dz := to.Z - from.Z
	planar := from.X != to.X || from.Y != to.Y

	switch {
	case dz > 0.001 && (rapid || !planar):
		return MoveRetract
	case rapid:
		return MoveRapid
	case dz < -0.001 && !planar:
		return MovePlunge
	default:
		return MoveFeed
	}
}

// Summary aggregates a parsed program.
type Summary struct {
	Rapids    int
	Feeds     int
	Plunges   int
	Retracts  int
	Pieces    int     // distinct piece headers that have cutting moves
	CutLength float64 // XY distance travelled by feed moves, mm
	MaxDepth  float64 // deepest Z reached, as a positive number
	// PieceCutLength is the feed distance per piece number.
	PieceCutLength map[int]float64
}

// Summarize counts moves by kind and measures the cut.
func Summarize(moves []Move) Summary {
	s := Summary{PieceCutLength: map[int]float64{}}
	for _, m := range moves {
		switch m.Kind {
		case MoveRapid:
			s.Rapids++
		case MoveFeed:
			s.Feeds++
			s.CutLength += m.Length()
			s.PieceCutLength[m.Piece] += m.Length()
		case MovePlunge:
			s.Plunges++
		case MoveRetract:
			s.Retracts++
		}
		if -m.To.Z > s.MaxDepth {
			s.MaxDepth = -m.To.Z
		}
	}
	s.Pieces = len(s.PieceCutLength)
	return s
}
