// Package engine packs the loose items of a puzzle into a tray so that no
// two of them overlap. It backs the packed spread of the CLI.
package engine

import (
	"sort"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/puzzle"
)

// Size is an item to pack.
type Size struct {
	ID     string
	Width  float64
	Height float64
}

// Placement is the top-left corner chosen for an item, relative to the tray.
type Placement struct {
	ID string
	X  float64
	Y  float64
}

// Result holds one packing run.
type Result struct {
	Placements []Placement
	Unplaced   []Size
	UsedHeight float64 // lowest bottom edge of any placement
}

// Packer fills a Width x Height tray, keeping Margin between items and
// around the tray border.
type Packer struct {
	Width  float64
	Height float64
	Margin float64
}

// orderStrategy controls the order in which items are offered to the packer.
type orderStrategy int

const (
	orderByArea   orderStrategy = iota // Largest area first
	orderByHeight                      // Tallest first
	orderByWidth                       // Widest first
)

// Pack tries every ordering strategy and keeps the run that places the most
// items, then the one using the least tray height.
func (p Packer) Pack(items []Size) Result {
	strategies := []orderStrategy{orderByArea, orderByHeight, orderByWidth}

	var best Result
	bestPlaced := -1
	for _, strat := range strategies {
		res := p.pack(items, strat)
		placed := len(res.Placements)
		if placed > bestPlaced || (placed == bestPlaced && res.UsedHeight < best.UsedHeight) {
			best = res
			bestPlaced = placed
		}
	}
	return best
}

func (p Packer) pack(items []Size, strategy orderStrategy) Result {
	ordered := make([]Size, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch strategy {
		case orderByHeight:
			return a.Height > b.Height
		case orderByWidth:
			return a.Width > b.Width
		default:
			return a.Width*a.Height > b.Width*b.Height
		}
	})

	var res Result
	packer := newRectPacker(p.Width-p.Margin, p.Height-p.Margin, p.Margin)
	for _, it := range ordered {
		ok, x, y := packer.insert(it.Width, it.Height)
		if !ok {
			res.Unplaced = append(res.Unplaced, it)
			continue
		}
		x += p.Margin
		y += p.Margin
		res.Placements = append(res.Placements, Placement{ID: it.ID, X: x, Y: y})
		if y+it.Height > res.UsedHeight {
			res.UsedHeight = y + it.Height
		}
	}
	return res
}

// SpreadPlacement packs the loose items of pz into area, margin apart, and
// returns the matching placement for Puzzle.SpreadPieces. Items that do not
// fit go in a row right below the area. A margin narrower than
// pz.MinSpreadMargin is widened to it.
func SpreadPlacement(pz *puzzle.Puzzle, area geom.Area, margin float64) puzzle.PlacementFunc {
	margin = max(margin, pz.MinSpreadMargin())
	items := pz.Pieces()
	sizes := make([]Size, len(items))
	for i, it := range items {
		sizes[i] = Size{ID: it.ID(), Width: it.Width(), Height: it.Height()}
	}

	res := Packer{Width: area.Width, Height: area.Height, Margin: margin}.Pack(sizes)

	at := make(map[string]geom.Point, len(items))
	for _, pl := range res.Placements {
		at[pl.ID] = geom.Point{X: area.X + pl.X, Y: area.Y + pl.Y}
	}
	x := area.X + margin
	for _, s := range res.Unplaced {
		at[s.ID] = geom.Point{X: x, Y: area.Bottom() + margin}
		x += s.Width + margin
	}

	return func(_ int, item *puzzle.Piece) geom.Point {
		return at[item.ID()]
	}
}

// rectPacker keeps the maximal free rectangles of a tray and splits every
// one that a new placement overlaps.
type rectPacker struct {
	freeRects []rect
	gap       float64
}

type rect struct {
	x, y, w, h float64
}

func newRectPacker(width, height, gap float64) *rectPacker {
	return &rectPacker{
		freeRects: []rect{{0, 0, width, height}},
		gap:       gap,
	}
}

// insert tries to place an item of given dimensions. Returns success and position.
// Uses Best Area Fit (BAF), ties broken by the topmost then leftmost rect.
func (rp *rectPacker) insert(w, h float64) (bool, float64, float64) {
	bestIdx := -1
	bestAreaFit := float64(-1)
	wg := w + rp.gap
	hg := h + rp.gap

	for i, r := range rp.freeRects {
		if wg > r.w+0.001 || hg > r.h+0.001 {
			continue
		}
		areaFit := (r.w * r.h) - (w * h)
		if bestIdx < 0 || areaFit < bestAreaFit-0.001 ||
			(areaFit < bestAreaFit+0.001 && above(r, rp.freeRects[bestIdx])) {
			bestIdx = i
			bestAreaFit = areaFit
		}
	}

	if bestIdx < 0 {
		return false, 0, 0
	}

	chosen := rp.freeRects[bestIdx]
	rp.splitAroundPlacement(rect{x: chosen.x, y: chosen.y, w: wg, h: hg})
	return true, chosen.x, chosen.y
}

func above(a, b rect) bool {
	if a.y != b.y {
		return a.y < b.y
	}
	return a.x < b.x
}

// splitAroundPlacement removes all free rects that overlap with the placed rect
// and generates maximal sub-rects from each overlap. Then prunes contained rects.
func (rp *rectPacker) splitAroundPlacement(placed rect) {
	var newRects []rect

	for _, r := range rp.freeRects {
		if !rectsOverlap(r, placed) {
			newRects = append(newRects, r)
			continue
		}

		// Left strip
		if placed.x > r.x+0.001 {
			newRects = append(newRects, rect{x: r.x, y: r.y, w: placed.x - r.x, h: r.h})
		}
		// Right strip
		if placed.x+placed.w < r.x+r.w-0.001 {
			newRects = append(newRects, rect{
				x: placed.x + placed.w, y: r.y,
				w: (r.x + r.w) - (placed.x + placed.w), h: r.h,
			})
		}
		// Top strip
		if placed.y > r.y+0.001 {
			newRects = append(newRects, rect{x: r.x, y: r.y, w: r.w, h: placed.y - r.y})
		}
		// Bottom strip
		if placed.y+placed.h < r.y+r.h-0.001 {
			newRects = append(newRects, rect{
				x: r.x, y: placed.y + placed.h,
				w: r.w, h: (r.y + r.h) - (placed.y + placed.h),
			})
		}
	}

	rp.freeRects = pruneContained(newRects)
}

// rectsOverlap returns true if two rectangles overlap (not just touch).
func rectsOverlap(a, b rect) bool {
	return a.x < b.x+b.w-0.001 && a.x+a.w > b.x+0.001 &&
		a.y < b.y+b.h-0.001 && a.y+a.h > b.y+0.001
}

// pruneContained removes any rect that is fully contained within another.
// Of two equal rects the first one is kept.
func pruneContained(rects []rect) []rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !containsRect(b, a) {
				continue
			}
			if !containsRect(a, b) || j < i {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// containsRect returns true if outer fully contains inner.
func containsRect(outer, inner rect) bool {
	return outer.x <= inner.x+0.001 && outer.y <= inner.y+0.001 &&
		outer.x+outer.w >= inner.x+inner.w-0.001 &&
		outer.y+outer.h >= inner.y+inner.h-0.001
}
