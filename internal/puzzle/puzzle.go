// Package puzzle is the piece-connection engine of a jigsaw puzzle. It builds
// the grid of pieces, answers hit-tests, follows a drag from selection to
// release, and merges pieces and groups that are released close enough to
// their grid neighbours.
//
// The engine is synchronous and not safe for concurrent use: every call is
// expected from a single UI thread.
package puzzle

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/model"
)

// Puzzle owns every piece and group of one puzzle.
type Puzzle struct {
	opts Options
	log  zerolog.Logger
	rng  *rand.Rand

	rootPile     *Pile[*Piece]
	arena        Arena
	neighborGrid map[string]*Piece
	atomic       []*Piece // row-major

	activePiece               *Piece
	totalAvailableConnections int
	completenessProgress      int
	suppressDirty             bool
}

// New generates a puzzle: pieces are created row-major, placed, linked to
// their grid neighbours, and given their edge shapes.
func New(opts Options) (*Puzzle, error) {
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	pz := &Puzzle{
		opts:         opts,
		log:          puzzleLog.With().Str("puzzle", opts.ID).Logger(),
		rng:          newRand(opts.ID),
		rootPile:     &Pile[*Piece]{},
		arena:        Arena{},
		neighborGrid: make(map[string]*Piece, opts.NumberOfPiecesPerWidth*opts.NumberOfPiecesPerHeight),
	}
	if opts.Logger != nil {
		pz.log = opts.Logger.With().Str("puzzle", opts.ID).Logger()
	}

	if err := pz.generate(); err != nil {
		return nil, err
	}
	return pz, nil
}

func gridKey(column, row int) string {
	return fmt.Sprintf("%d:%d", column, row)
}

func (pz *Puzzle) generate() error {
	side := pz.opts.PieceSideSize
	scatter := pz.opts.scatterArea()

	for row := 0; row < pz.opts.NumberOfPiecesPerHeight; row++ {
		for col := 0; col < pz.opts.NumberOfPiecesPerWidth; col++ {
			canonical := geom.Point{X: float64(col) * side, Y: float64(row) * side}
			var at geom.Point
			if pz.opts.GetCustomInitialPiecePosition != nil {
				at = pz.opts.GetCustomInitialPiecePosition(canonical)
			} else {
				at = scatter.RandomPoint(side, side, pz.rng.Float64)
			}

			piece := NewPiece(fmt.Sprintf("%d", len(pz.atomic)), PieceConfig{
				Position:                             at,
				Width:                                side,
				Height:                               side,
				PieceSideSize:                        side,
				ConnectionActivationAreaSideFraction: pz.opts.ConnectionActivationAreaSideSizeFraction,
				Column:                               col,
				Row:                                  row,
			})
			if pz.opts.NewRenderer != nil {
				piece.SetRenderer(pz.opts.NewRenderer(piece))
			}
			if err := pz.arena.Add(piece); err != nil {
				return err
			}
			if err := pz.rootPile.AddPieceOnTheTop(piece); err != nil {
				return err
			}
			pz.neighborGrid[gridKey(col, row)] = piece
			pz.atomic = append(pz.atomic, piece)
		}
	}

	for _, piece := range pz.atomic {
		for _, s := range Sides {
			dc, dr := s.gridStep()
			neighbor, ok := pz.neighborGrid[gridKey(piece.column+dc, piece.row+dr)]
			if !ok {
				continue
			}
			if err := piece.SetNeighbor(s, neighbor.ID()); err != nil {
				return err
			}
			pz.totalAvailableConnections++
		}
	}

	for _, piece := range pz.atomic {
		if err := piece.PrepareConnectionTypes(pz, pz.rng); err != nil {
			return err
		}
	}

	pz.log.Debug().
		Int("pieces", len(pz.atomic)).
		Int("connections", pz.totalAvailableConnections).
		Msg("puzzle generated")
	return nil
}

// PieceByID implements Registry over every piece and group of the puzzle.
func (pz *Puzzle) PieceByID(id string) (*Piece, error) {
	return pz.arena.PieceByID(id)
}

// ID returns the puzzle id, which is also its PRNG seed.
func (pz *Puzzle) ID() string { return pz.opts.ID }

// Settings returns the persisted form of the puzzle configuration.
func (pz *Puzzle) Settings() model.PuzzleSettings { return pz.opts.Settings() }

// GridSize returns the number of columns and rows.
func (pz *Puzzle) GridSize() (int, int) {
	return pz.opts.NumberOfPiecesPerWidth, pz.opts.NumberOfPiecesPerHeight
}

// PieceSideSize returns the side length of an atomic piece.
func (pz *Puzzle) PieceSideSize() float64 { return pz.opts.PieceSideSize }

// ScatterArea is the area used for random placement and spreading.
func (pz *Puzzle) ScatterArea() geom.Area { return pz.opts.scatterArea() }

// ActivePiece returns the piece being dragged, or nil.
func (pz *Puzzle) ActivePiece() *Piece { return pz.activePiece }

// CompletenessProgress returns the percentage of connected grid links.
func (pz *Puzzle) CompletenessProgress() int { return pz.completenessProgress }

// TotalAvailableConnections counts directed neighbour links; each grid edge
// counts twice, once per endpoint.
func (pz *Puzzle) TotalAvailableConnections() int { return pz.totalAvailableConnections }

// Pieces returns the top-level pieces and groups, bottom to top.
func (pz *Puzzle) Pieces() []*Piece { return pz.rootPile.Items() }

// PiecesFromTopToBottom returns the top-level pieces and groups, top first.
func (pz *Puzzle) PiecesFromTopToBottom() []*Piece {
	items := pz.rootPile.Items()
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// ItemIDsInOrder returns the root pile order, bottom to top.
func (pz *Puzzle) ItemIDsInOrder() []string { return pz.rootPile.ItemIDsInOrder() }

// AtomicPieces returns every grid piece in row-major order.
func (pz *Puzzle) AtomicPieces() []*Piece {
	out := make([]*Piece, len(pz.atomic))
	copy(out, pz.atomic)
	return out
}

// PieceAt returns the grid piece at column, row.
func (pz *Puzzle) PieceAt(column, row int) (*Piece, bool) {
	p, ok := pz.neighborGrid[gridKey(column, row)]
	return p, ok
}

// topLevel returns the root pile item containing p: its group or itself.
func (pz *Puzzle) topLevel(p *Piece) (*Piece, error) {
	for p.HasParent() {
		parent, err := pz.PieceByID(p.ParentID())
		if err != nil {
			return nil, err
		}
		p = parent
	}
	return p, nil
}

// FindPieceByPointingInsidePieceBoundaries returns the topmost atomic piece
// under pt, or nil.
func (pz *Puzzle) FindPieceByPointingInsidePieceBoundaries(pt geom.Point) (*Piece, error) {
	var found *Piece
	var lookupErr error
	pz.rootPile.FindFromTopToBottom(func(item *Piece) bool {
		if lookupErr != nil {
			return true
		}
		if !item.IsGroup() {
			ok, err := item.ContainsPoint(pz, pt)
			lookupErr = err
			if ok {
				found = item
			}
			return ok
		}
		member, ok := item.Nested().FindFromTopToBottom(func(m *Piece) bool {
			if lookupErr != nil {
				return true
			}
			in, err := m.ContainsPoint(pz, pt)
			lookupErr = err
			return in
		})
		if ok && lookupErr == nil {
			found = member
		}
		return ok
	})
	if lookupErr != nil {
		return nil, lookupErr
	}
	return found, nil
}

// FindPieceOrGroupOfPiecesByPointingInsidePieceBoundaries is like
// FindPieceByPointingInsidePieceBoundaries but returns the group when the
// hit piece belongs to one.
func (pz *Puzzle) FindPieceOrGroupOfPiecesByPointingInsidePieceBoundaries(pt geom.Point) (*Piece, error) {
	p, err := pz.FindPieceByPointingInsidePieceBoundaries(pt)
	if err != nil || p == nil {
		return nil, err
	}
	return pz.topLevel(p)
}

// Snapshot returns the persisted layout: one record per atomic piece with its
// world position, in root pile order.
func (pz *Puzzle) Snapshot() ([]model.PiecePosition, error) {
	out := make([]model.PiecePosition, 0, len(pz.atomic))
	for _, item := range pz.rootPile.Items() {
		records, err := pz.releaseRecords(item)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	return out, nil
}

// releaseRecords returns the world positions of item, or of every member
// when item is a group.
func (pz *Puzzle) releaseRecords(item *Piece) ([]model.PiecePosition, error) {
	members := []*Piece{item}
	if item.IsGroup() {
		members = item.Nested().Items()
	}
	out := make([]model.PiecePosition, 0, len(members))
	for _, m := range members {
		at, err := m.WorldPosition(pz)
		if err != nil {
			return nil, err
		}
		out = append(out, model.PiecePosition{ID: m.ID(), Position: at})
	}
	return out, nil
}

// Render hands every atomic piece with a renderer its world position,
// bottom of the pile first.
func (pz *Puzzle) Render() error {
	for _, item := range pz.rootPile.Items() {
		members := []*Piece{item}
		if item.IsGroup() {
			members = item.Nested().Items()
		}
		for _, m := range members {
			r := m.Renderer()
			if r == nil {
				continue
			}
			at, err := m.WorldPosition(pz)
			if err != nil {
				return err
			}
			if err := r.Render(m, at); err != nil {
				return fmt.Errorf("render piece %q: %w", m.ID(), err)
			}
		}
	}
	return nil
}

// computeCompletenessProgress recounts connected sides across all pieces.
func (pz *Puzzle) computeCompletenessProgress() int {
	if pz.totalAvailableConnections == 0 {
		return 0
	}
	connected := 0
	for _, p := range pz.atomic {
		connected += p.ConnectedCount()
	}
	return int(math.Round(100 * float64(connected) / float64(pz.totalAvailableConnections)))
}

func (pz *Puzzle) markDirty() {
	if pz.suppressDirty || pz.opts.OnDirty == nil {
		return
	}
	pz.opts.OnDirty()
}
