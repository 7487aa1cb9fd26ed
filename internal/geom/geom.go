// Package geom holds the small immutable 2D value types shared by the puzzle
// engine and its exporters.
package geom

import "math"

// Point represents a 2D coordinate, either absolute or relative to a parent.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by d.
func (p Point) Add(d PositionDelta) Point {
	return Point{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Plus returns the component-wise sum of two points.
func (p Point) Plus(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p expressed relative to origin.
func (p Point) Sub(origin Point) Point {
	return Point{X: p.X - origin.X, Y: p.Y - origin.Y}
}

// DeltaTo returns the translation that moves p onto target.
func (p Point) DeltaTo(target Point) PositionDelta {
	return PositionDelta{DX: target.X - p.X, DY: target.Y - p.Y}
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PositionDelta is a translation.
type PositionDelta struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// IsZero reports whether the delta moves nothing.
func (d PositionDelta) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

// Area is an axis-aligned rectangle used for placement and containment.
type Area struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SquareAround returns a square of the given side length centred on c.
func SquareAround(c Point, side float64) Area {
	return Area{X: c.X - side/2, Y: c.Y - side/2, Width: side, Height: side}
}

// AreaFromCorners builds the area spanned by two opposite corners.
func AreaFromCorners(a, b Point) Area {
	x := math.Min(a.X, b.X)
	y := math.Min(a.Y, b.Y)
	return Area{X: x, Y: y, Width: math.Abs(b.X - a.X), Height: math.Abs(b.Y - a.Y)}
}

// Origin returns the top-left corner.
func (a Area) Origin() Point {
	return Point{X: a.X, Y: a.Y}
}

// Right returns the right edge X coordinate.
func (a Area) Right() float64 {
	return a.X + a.Width
}

// Bottom returns the bottom edge Y coordinate.
func (a Area) Bottom() float64 {
	return a.Y + a.Height
}

// Contains reports whether pt lies inside the area, edges included.
func (a Area) Contains(pt Point) bool {
	return pt.X >= a.X && pt.X <= a.Right() &&
		pt.Y >= a.Y && pt.Y <= a.Bottom()
}

// Union returns the smallest area covering both a and b.
func (a Area) Union(b Area) Area {
	x := math.Min(a.X, b.X)
	y := math.Min(a.Y, b.Y)
	return Area{
		X:      x,
		Y:      y,
		Width:  math.Max(a.Right(), b.Right()) - x,
		Height: math.Max(a.Bottom(), b.Bottom()) - y,
	}
}

// RandomPoint picks a point so that an item of the given size placed there
// stays inside the area. next must return values in [0, 1); it is called
// once for X and then once for Y.
func (a Area) RandomPoint(itemWidth, itemHeight float64, next func() float64) Point {
	spanX := math.Max(0, a.Width-itemWidth)
	spanY := math.Max(0, a.Height-itemHeight)
	x := a.X + next()*spanX
	y := a.Y + next()*spanY
	return Point{X: x, Y: y}
}

// Outline represents a closed polygon as a sequence of points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point) {
	if len(o) == 0 {
		return Point{}, Point{}
	}
	min, max = o[0], o[0]
	for _, p := range o[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// Translate shifts all points by the offset of origin.
func (o Outline) Translate(origin Point) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = p.Plus(origin)
	}
	return result
}
