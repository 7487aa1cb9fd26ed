package puzzle

import (
	"github.com/piwi3910/JigCut/internal/geom"
)

// PlacementFunc returns the new world position of the index-th top-level
// item, counted from the bottom of the pile.
type PlacementFunc func(index int, item *Piece) geom.Point

// spreadClearance is added to half the activation side to get the smallest
// gap that keeps every neighbour outside its activation area.
const spreadClearance = 1.0

// MinSpreadMargin returns the narrowest gap between spread items. Two items
// at least this far apart cannot merge when the layout is replayed.
func (pz *Puzzle) MinSpreadMargin() float64 {
	return pz.opts.ConnectionActivationAreaSideSizeFraction*pz.opts.PieceSideSize/2 + spreadClearance
}

// SpreadPieces lays out every top-level piece and group so that none overlap.
// Without place, items are packed left to right in shelves as wide as the
// scatter area, at least MinSpreadMargin apart. A custom place must keep the
// same gap for a replay of the result to stay unmerged.
func (pz *Puzzle) SpreadPieces(margin float64, place PlacementFunc) error {
	if pz.activePiece != nil {
		if err := pz.UnselectActivePiece(); err != nil {
			return err
		}
	}
	if place == nil {
		margin = max(margin, pz.MinSpreadMargin())
		place = pz.shelfPlacement(margin)
	}

	items := pz.rootPile.Items()
	for i, item := range items {
		item.Position = place(i, item)
	}
	for _, item := range items {
		if err := pz.fireRelease(item); err != nil {
			return err
		}
	}

	pz.log.Debug().Int("items", len(items)).Float64("margin", margin).Msg("pieces spread")
	pz.markDirty()
	return nil
}

func (pz *Puzzle) shelfPlacement(margin float64) PlacementFunc {
	area := pz.opts.scatterArea()
	left := area.X + margin
	right := area.Right() - margin
	x, y := left, area.Y+margin
	shelfHeight := 0.0

	return func(_ int, item *Piece) geom.Point {
		if x > left && x+item.Width() > right {
			x = left
			y += shelfHeight + margin
			shelfHeight = 0
		}
		at := geom.Point{X: x, Y: y}
		x += item.Width() + margin
		if item.Height() > shelfHeight {
			shelfHeight = item.Height()
		}
		return at
	}
}
