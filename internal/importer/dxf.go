package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/JigCut/internal/geom"
)

// Shape is one closed contour read from a drawing, in drawing coordinates.
type Shape struct {
	Outline geom.Outline
	Area    float64
	Source  string // entity kind the contour came from
}

// OutlineResult holds the closed shapes read back from a DXF drawing.
type OutlineResult struct {
	Shapes   []Shape
	Errors   []string
	Warnings []string
}

// Outlines returns the contours of every shape, in result order.
func (r OutlineResult) Outlines() []geom.Outline {
	out := make([]geom.Outline, len(r.Shapes))
	for i, s := range r.Shapes {
		out[i] = s.Outline
	}
	return out
}

// DXFOptions tunes how curves are flattened and lines joined.
type DXFOptions struct {
	Tolerance   float64 // max endpoint gap, mm, for joining LINE and ARC pieces
	ArcSegments int     // segments per full circle
}

// DefaultDXFOptions returns the options used by ImportDXF.
func DefaultDXFOptions() DXFOptions {
	return DXFOptions{Tolerance: 0.01, ArcSegments: 64}
}

// segment is one straight piece of a contour still to be chained.
type segment struct {
	start geom.Point
	end   geom.Point
}

// ImportDXF reads the closed contours of a DXF drawing with the default options.
func ImportDXF(path string) OutlineResult {
	return ImportDXFWithOptions(path, DefaultDXFOptions())
}

// ImportDXFWithOptions reads closed contours from a DXF file. Each
// LWPOLYLINE or CIRCLE is one contour; LINE and ARC entities are joined end
// to end into contours. Open chains and degenerate shapes are reported as
// warnings. Shapes are returned largest first.
func ImportDXFWithOptions(path string, opts DXFOptions) OutlineResult {
	result := OutlineResult{}
	if opts.ArcSegments < 8 {
		opts.ArcSegments = 8
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}
	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var candidates []Shape
	var loose []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			candidates = append(candidates, Shape{Outline: polylineContour(e, opts.ArcSegments), Source: "LWPOLYLINE"})
		case *entity.Circle:
			c := geom.Point{X: e.Center[0], Y: e.Center[1]}
			pts := arcPoints(c, e.Radius, 0, 2*math.Pi, opts.ArcSegments)
			candidates = append(candidates, Shape{Outline: pts[:len(pts)-1], Source: "CIRCLE"})
		case *entity.Arc:
			loose = append(loose, arcSegments(e, opts.ArcSegments)...)
		case *entity.Line:
			loose = append(loose, segment{
				start: geom.Point{X: e.Start[0], Y: e.Start[1]},
				end:   geom.Point{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	closed, open := chainSegments(loose, opts.Tolerance)
	for _, o := range closed {
		candidates = append(candidates, Shape{Outline: o, Source: "LINE"})
	}
	if open > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Ignored %d open contour(s)", open))
	}

	for _, s := range candidates {
		lo, hi := s.Outline.BoundingBox()
		if len(s.Outline) < 3 || hi.X-lo.X < opts.Tolerance || hi.Y-lo.Y < opts.Tolerance {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate %s (%d points, %.2f x %.2f mm)",
					s.Source, len(s.Outline), hi.X-lo.X, hi.Y-lo.Y))
			continue
		}
		s.Area = OutlineArea(s.Outline)
		result.Shapes = append(result.Shapes, s)
	}

	if len(result.Shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}
	sort.SliceStable(result.Shapes, func(i, j int) bool {
		return result.Shapes[i].Area > result.Shapes[j].Area
	})
	return result
}

// polylineContour flattens a LWPOLYLINE. A non-zero bulge on a vertex turns
// the edge to the next vertex into an arc; the bulge is the tangent of a
// quarter of the arc's included angle, positive counter-clockwise.
func polylineContour(lw *entity.LwPolyline, circleSegments int) geom.Outline {
	n := len(lw.Vertices)
	var out geom.Outline
	for i := 0; i < n; i++ {
		from := geom.Point{X: lw.Vertices[i][0], Y: lw.Vertices[i][1]}
		out = append(out, from)
		if i >= len(lw.Bulges) || math.Abs(lw.Bulges[i]) < 1e-9 {
			continue
		}
		to := geom.Point{X: lw.Vertices[(i+1)%n][0], Y: lw.Vertices[(i+1)%n][1]}
		arc := bulgeArc(from, to, lw.Bulges[i], circleSegments)
		if len(arc) > 2 {
			out = append(out, arc[1:len(arc)-1]...)
		}
	}
	return out
}

// bulgeArc returns the points from p1 to p2 along the arc given by bulge,
// both endpoints included.
func bulgeArc(p1, p2 geom.Point, bulge float64, circleSegments int) geom.Outline {
	chord := p1.Distance(p2)
	if chord < 1e-9 {
		return geom.Outline{p1, p2}
	}
	sweep := 4 * math.Atan(bulge)
	radius := chord / (2 * math.Abs(math.Sin(sweep/2)))

	// The centre lies on the chord bisector, left of p1->p2 for a
	// counter-clockwise arc under a half turn.
	mid := geom.Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
	ux, uy := (p2.X-p1.X)/chord, (p2.Y-p1.Y)/chord
	offset := radius * math.Cos(sweep/2)
	if sweep < 0 {
		offset = -offset
	}
	centre := geom.Point{X: mid.X - uy*offset, Y: mid.Y + ux*offset}

	start := math.Atan2(p1.Y-centre.Y, p1.X-centre.X)
	steps := int(math.Ceil(math.Abs(sweep) / (2 * math.Pi) * float64(circleSegments)))
	pts := arcPoints(centre, radius, start, start+sweep, max(steps, 2))
	pts[0], pts[len(pts)-1] = p1, p2
	return pts
}

// arcSegments flattens an ARC entity. DXF arcs run counter-clockwise from
// the start angle to the end angle, in degrees.
func arcSegments(a *entity.Arc, circleSegments int) []segment {
	from := a.Angle[0] * math.Pi / 180
	to := a.Angle[1] * math.Pi / 180
	if to <= from {
		to += 2 * math.Pi
	}
	steps := int(math.Ceil((to - from) / (2 * math.Pi) * float64(circleSegments)))
	c := geom.Point{X: a.Circle.Center[0], Y: a.Circle.Center[1]}
	pts := arcPoints(c, a.Circle.Radius, from, to, max(steps, 2))

	segs := make([]segment, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		segs = append(segs, segment{start: pts[i-1], end: pts[i]})
	}
	return segs
}

// arcPoints samples steps+1 points from angle from to angle to.
func arcPoints(c geom.Point, r, from, to float64, steps int) geom.Outline {
	pts := make(geom.Outline, steps+1)
	for i := range pts {
		a := from + (to-from)*float64(i)/float64(steps)
		pts[i] = geom.Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

// chainSegments joins segments whose endpoints lie within tolerance. It
// returns the closed contours and the number of chains left open.
func chainSegments(segs []segment, tolerance float64) (closed []geom.Outline, open int) {
	used := make([]bool, len(segs))
	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true
		chain := geom.Outline{segs[first].start, segs[first].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, s := range segs {
				if used[i] {
					continue
				}
				var next geom.Point
				switch {
				case tail.Distance(s.start) <= tolerance:
					next = s.end
				case tail.Distance(s.end) <= tolerance:
					next = s.start
				default:
					continue
				}
				chain = append(chain, next)
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) > 3 && chain[0].Distance(chain[len(chain)-1]) <= tolerance {
			closed = append(closed, chain[:len(chain)-1])
		} else {
			open++
		}
	}
	return closed, open
}

// OutlineArea computes the absolute area of a polygon using the shoelace formula.
func OutlineArea(o geom.Outline) float64 {
	if len(o) < 3 {
		return 0
	}
	var area float64
	for i, p := range o {
		q := o[(i+1)%len(o)]
		area += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(area) / 2
}
