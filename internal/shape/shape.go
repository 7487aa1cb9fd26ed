// Package shape turns the edge types of a puzzle piece into the closed
// polygon that is drawn on the layout sheet and followed by the cutter.
package shape

import (
	"math"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/puzzle"
)

// TabSegments is the number of straight segments approximating one tab.
const TabSegments = 12

// A tab spans the middle fifth of its edge and is a half circle.
const (
	tabStartFraction = 0.4
	tabEndFraction   = 0.6
)

// PieceOutline is the outline of one piece placed at its assembled position.
type PieceOutline struct {
	ID      string
	Column  int
	Row     int
	Outline geom.Outline
}

// Outline returns the outline of p in its own coordinates, origin at the
// top-left corner, walking clockwise on screen from that corner.
func Outline(p *puzzle.Piece) geom.Outline {
	var types [4]puzzle.ConnectionType
	for i, s := range puzzle.Sides {
		types[i] = p.SideConnectionType(s)
	}
	return ForSides(p.Width(), p.Height(), types)
}

// ForSides builds the outline of a w x h piece whose sides, in the order of
// puzzle.Sides, have the given connection types. A plug bulges outwards, a
// socket inwards, and a straight edge has no tab at all.
func ForSides(w, h float64, types [4]puzzle.ConnectionType) geom.Outline {
	corners := [4]geom.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	normals := [4]geom.PositionDelta{{DY: -1}, {DX: 1}, {DY: 1}, {DX: -1}}

	out := make(geom.Outline, 0, 4+4*(TabSegments+1))
	for i := range puzzle.Sides {
		a, b := corners[i], corners[(i+1)%4]
		out = append(out, a)
		out = append(out, tab(a, b, normals[i], types[i])...)
	}
	return out
}

// tab returns the points of the tab on edge a→b, excluding a and b.
func tab(a, b geom.Point, normal geom.PositionDelta, t puzzle.ConnectionType) []geom.Point {
	var dir float64
	switch t {
	case puzzle.ConnectionPlug:
		dir = 1
	case puzzle.ConnectionSocket:
		dir = -1
	default:
		return nil
	}

	length := a.Distance(b)
	if length == 0 {
		return nil
	}
	ux, uy := (b.X-a.X)/length, (b.Y-a.Y)/length
	mid := (tabStartFraction + tabEndFraction) / 2 * length
	r := (tabEndFraction - tabStartFraction) / 2 * length
	cx, cy := a.X+ux*mid, a.Y+uy*mid

	pts := make([]geom.Point, 0, TabSegments+1)
	for k := 0; k <= TabSegments; k++ {
		theta := math.Pi * float64(k) / TabSegments
		along := -r * math.Cos(theta)
		out := dir * r * math.Sin(theta)
		pts = append(pts, geom.Point{
			X: cx + ux*along + normal.DX*out,
			Y: cy + uy*along + normal.DY*out,
		})
	}
	return pts
}

// Assembled returns the outline of every atomic piece of pz at its canonical
// position, row-major.
func Assembled(pz *puzzle.Puzzle) []PieceOutline {
	pieces := pz.AtomicPieces()
	out := make([]PieceOutline, 0, len(pieces))
	for _, p := range pieces {
		col, row := p.GridCell()
		out = append(out, PieceOutline{
			ID:      p.ID(),
			Column:  col,
			Row:     row,
			Outline: Outline(p).Translate(p.CanonicalPosition()),
		})
	}
	return out
}

// Bounds returns the area covered by all outlines.
func Bounds(outlines []PieceOutline) geom.Area {
	var area geom.Area
	for i, po := range outlines {
		lo, hi := po.Outline.BoundingBox()
		a := geom.AreaFromCorners(lo, hi)
		if i == 0 {
			area = a
			continue
		}
		area = area.Union(a)
	}
	return area
}
