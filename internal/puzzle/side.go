package puzzle

import "github.com/piwi3910/JigCut/internal/geom"

// Side is one of the four edges of a piece.
type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

// Sides lists the sides in canonical order. Every per-side iteration that
// draws from the PRNG or reports connections walks this order.
var Sides = [4]Side{SideTop, SideRight, SideBottom, SideLeft}

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideRight:
		return "right"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Opposite returns the side facing s on the neighbouring piece.
func (s Side) Opposite() Side {
	return (s + 2) % 4
}

// Offset is the translation from a piece's origin to the origin of the
// neighbour sitting on side s.
func (s Side) Offset(width, height float64) geom.PositionDelta {
	switch s {
	case SideTop:
		return geom.PositionDelta{DY: -height}
	case SideRight:
		return geom.PositionDelta{DX: width}
	case SideBottom:
		return geom.PositionDelta{DY: height}
	case SideLeft:
		return geom.PositionDelta{DX: -width}
	default:
		return geom.PositionDelta{}
	}
}

// gridStep returns the column/row step towards the neighbour on side s.
func (s Side) gridStep() (int, int) {
	switch s {
	case SideTop:
		return 0, -1
	case SideRight:
		return 1, 0
	case SideBottom:
		return 0, 1
	case SideLeft:
		return -1, 0
	default:
		return 0, 0
	}
}

// ConnectionType is the shape of a piece edge.
type ConnectionType int

const (
	ConnectionNone   ConnectionType = iota // Grid border, straight edge
	ConnectionPlug                         // Tab sticking out
	ConnectionSocket                       // Blank cut in
)

func (c ConnectionType) String() string {
	switch c {
	case ConnectionPlug:
		return "plug"
	case ConnectionSocket:
		return "socket"
	default:
		return "none"
	}
}

// Complement returns the type that interlocks with c.
func (c ConnectionType) Complement() ConnectionType {
	switch c {
	case ConnectionPlug:
		return ConnectionSocket
	case ConnectionSocket:
		return ConnectionPlug
	default:
		return ConnectionNone
	}
}
