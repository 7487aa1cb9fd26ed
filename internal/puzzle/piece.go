package puzzle

import (
	"fmt"
	"math"

	"github.com/piwi3910/JigCut/internal/geom"
)

// Renderer is an optional capability attached to a piece by the layer that
// draws it. The engine never calls it on its own; Puzzle.Render does.
type Renderer interface {
	Render(piece *Piece, at geom.Point) error
}

// Rand is the slice of *rand.Rand the engine draws from.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// PieceConfig describes an atomic piece at creation time.
type PieceConfig struct {
	Position                             geom.Point
	Width                                float64
	Height                               float64
	PieceSideSize                        float64
	ConnectionActivationAreaSideFraction float64
	Column                               int
	Row                                  int
}

// Piece is either an atomic grid piece or a group owning a nested pile of
// atomic pieces. Position is relative to the parent group, or absolute when
// the piece has none.
type Piece struct {
	Entity
	parentID string
	nested   *Pile[*Piece]

	Position geom.Point
	width    float64
	height   float64

	column, row                          int
	pieceSideSize                        float64
	connectionActivationAreaSideFraction float64

	sidesConnectionType   map[Side]ConnectionType
	notConnectedNeighbors map[Side]string
	connectedNeighbors    map[Side]string

	renderer Renderer
}

// NewPiece creates an atomic piece with no neighbours yet.
func NewPiece(id string, cfg PieceConfig) *Piece {
	return &Piece{
		Entity:                               Entity{id: id},
		Position:                             cfg.Position,
		width:                                cfg.Width,
		height:                               cfg.Height,
		column:                               cfg.Column,
		row:                                  cfg.Row,
		pieceSideSize:                        cfg.PieceSideSize,
		connectionActivationAreaSideFraction: cfg.ConnectionActivationAreaSideFraction,
		sidesConnectionType:                  make(map[Side]ConnectionType, 4),
		notConnectedNeighbors:                make(map[Side]string, 4),
		connectedNeighbors:                   make(map[Side]string, 4),
	}
}

// newGroup creates an empty group piece. Members are added by the caller,
// which must then call RecomputePositionAndSize.
func newGroup(id string, pieceSideSize float64) *Piece {
	p := NewPiece(id, PieceConfig{PieceSideSize: pieceSideSize, Column: -1, Row: -1})
	p.nested = &Pile[*Piece]{}
	return p
}

// Size implements Item.
func (p *Piece) Size() int {
	if p.nested == nil {
		return 1
	}
	return p.nested.Len()
}

func (p *Piece) release() {
	p.parentID = ""
	p.nested = nil
}

func (p *Piece) ParentID() string { return p.parentID }
func (p *Piece) HasParent() bool  { return p.parentID != "" }
func (p *Piece) IsGroup() bool    { return p.nested != nil }
func (p *Piece) Width() float64   { return p.width }
func (p *Piece) Height() float64  { return p.height }

// Nested returns the member pile of a group, nil for an atomic piece.
func (p *Piece) Nested() *Pile[*Piece] {
	return p.nested
}

// GridCell returns the column and row of an atomic piece, -1/-1 for groups.
func (p *Piece) GridCell() (int, int) {
	return p.column, p.row
}

// CanonicalPosition is where the piece sits in the assembled puzzle.
func (p *Piece) CanonicalPosition() geom.Point {
	return geom.Point{X: float64(p.column) * p.pieceSideSize, Y: float64(p.row) * p.pieceSideSize}
}

// Renderer returns the attached renderer, if any.
func (p *Piece) Renderer() Renderer { return p.renderer }

// SetRenderer attaches r to the piece.
func (p *Piece) SetRenderer(r Renderer) { p.renderer = r }

// SideConnectionType returns the edge shape on side s.
func (p *Piece) SideConnectionType(s Side) ConnectionType {
	return p.sidesConnectionType[s]
}

// NotConnectedNeighbors returns a copy of the side → neighbour id map of
// neighbours not yet connected.
func (p *Piece) NotConnectedNeighbors() map[Side]string {
	return copySideMap(p.notConnectedNeighbors)
}

// ConnectedNeighbors returns a copy of the side → neighbour id map of
// connected neighbours.
func (p *Piece) ConnectedNeighbors() map[Side]string {
	return copySideMap(p.connectedNeighbors)
}

// ConnectedCount returns how many sides are connected.
func (p *Piece) ConnectedCount() int {
	return len(p.connectedNeighbors)
}

// NeighborOnSide returns the neighbour id recorded for side s, whether it is
// connected, and whether there is a neighbour at all.
func (p *Piece) NeighborOnSide(s Side) (id string, connected bool, ok bool) {
	if id, ok := p.connectedNeighbors[s]; ok {
		return id, true, true
	}
	id, ok = p.notConnectedNeighbors[s]
	return id, false, ok
}

// SetNeighbor records id as the neighbour on side s. A side keeps its
// neighbour for life.
func (p *Piece) SetNeighbor(s Side, id string) error {
	if existing, _, ok := p.NeighborOnSide(s); ok {
		if existing == id {
			return nil
		}
		return fmt.Errorf("%w: piece %q side %s already bound to %q, not %q",
			ErrNeighborMismatch, p.ID(), s, existing, id)
	}
	p.notConnectedNeighbors[s] = id
	return nil
}

// WorldPosition resolves Position through the parent chain.
func (p *Piece) WorldPosition(reg Registry) (geom.Point, error) {
	if !p.HasParent() {
		return p.Position, nil
	}
	parent, err := reg.PieceByID(p.parentID)
	if err != nil {
		return geom.Point{}, fmt.Errorf("parent of %q: %w", p.ID(), err)
	}
	origin, err := parent.WorldPosition(reg)
	if err != nil {
		return geom.Point{}, err
	}
	return origin.Plus(p.Position), nil
}

// BoundaryCornerPoints returns the inclusive top-left and bottom-right pixel
// corners in world space.
func (p *Piece) BoundaryCornerPoints(reg Registry) (geom.Point, geom.Point, error) {
	tl, err := p.WorldPosition(reg)
	if err != nil {
		return geom.Point{}, geom.Point{}, err
	}
	br := tl.Add(geom.PositionDelta{DX: p.width - 1, DY: p.height - 1})
	return tl, br, nil
}

// ContainsPoint reports whether pt falls inside the piece boundaries.
func (p *Piece) ContainsPoint(reg Registry, pt geom.Point) (bool, error) {
	tl, br, err := p.BoundaryCornerPoints(reg)
	if err != nil {
		return false, err
	}
	return geom.AreaFromCorners(tl, br).Contains(pt), nil
}

// PrepareConnectionTypes assigns an edge shape to every side. A border side
// is straight; a side whose neighbour already has a shape facing it gets the
// complement; any other side draws plug or socket from rng.
func (p *Piece) PrepareConnectionTypes(reg Registry, rng Rand) error {
	for _, s := range Sides {
		id, _, ok := p.NeighborOnSide(s)
		if !ok {
			p.sidesConnectionType[s] = ConnectionNone
			continue
		}
		neighbor, err := reg.PieceByID(id)
		if err != nil {
			return err
		}
		if t, ok := neighbor.sidesConnectionType[s.Opposite()]; ok {
			p.sidesConnectionType[s] = t.Complement()
			continue
		}
		if rng.Intn(2) == 0 {
			p.sidesConnectionType[s] = ConnectionPlug
		} else {
			p.sidesConnectionType[s] = ConnectionSocket
		}
	}
	return nil
}

// Connection is a neighbour currently close enough to snap onto a side.
type Connection struct {
	Piece    *Piece
	Side     Side
	Neighbor *Piece
}

// activationArea is the square around the ideal position of the neighbour on
// side s inside which a release triggers a merge.
func (p *Piece) activationArea(world geom.Point, s Side) geom.Area {
	ideal := world.Add(s.Offset(p.width, p.height))
	return geom.SquareAround(ideal, p.connectionActivationAreaSideFraction*p.pieceSideSize)
}

// AvailableToConnectNeighbors lists the not yet connected neighbours whose
// world position lies inside their side's activation area.
func (p *Piece) AvailableToConnectNeighbors(reg Registry) ([]Connection, error) {
	world, err := p.WorldPosition(reg)
	if err != nil {
		return nil, err
	}
	var out []Connection
	for _, s := range Sides {
		id, ok := p.notConnectedNeighbors[s]
		if !ok {
			continue
		}
		neighbor, err := reg.PieceByID(id)
		if err != nil {
			return nil, err
		}
		at, err := neighbor.WorldPosition(reg)
		if err != nil {
			return nil, err
		}
		if p.activationArea(world, s).Contains(at) {
			out = append(out, Connection{Piece: p, Side: s, Neighbor: neighbor})
		}
	}
	return out, nil
}

// PositionDeltaToMoveOnConnectionPositionOfNeighborPiece returns how far
// other must move to sit exactly on side s of p. It is zero when the two are
// already connected.
func (p *Piece) PositionDeltaToMoveOnConnectionPositionOfNeighborPiece(reg Registry, other *Piece, s Side) (geom.PositionDelta, error) {
	if other == nil {
		return geom.PositionDelta{}, ErrNilPiece
	}
	id, connected, ok := p.NeighborOnSide(s)
	if !ok || id != other.ID() {
		return geom.PositionDelta{}, fmt.Errorf("%w: %q is not on side %s of %q", ErrNeighborMismatch, other.ID(), s, p.ID())
	}
	if connected {
		return geom.PositionDelta{}, nil
	}
	world, err := p.WorldPosition(reg)
	if err != nil {
		return geom.PositionDelta{}, err
	}
	at, err := other.WorldPosition(reg)
	if err != nil {
		return geom.PositionDelta{}, err
	}
	return at.DeltaTo(world.Add(s.Offset(p.width, p.height))), nil
}

// MarkPieceOnSideAsConnected moves the neighbour on side s to the connected
// set. id must be the neighbour recorded for that side.
func (p *Piece) MarkPieceOnSideAsConnected(s Side, id string) error {
	if p.connectedNeighbors[s] == id && id != "" {
		return nil
	}
	recorded, ok := p.notConnectedNeighbors[s]
	if !ok || recorded != id {
		return fmt.Errorf("%w: %q on side %s of %q", ErrNeighborMismatch, id, s, p.ID())
	}
	delete(p.notConnectedNeighbors, s)
	p.connectedNeighbors[s] = id
	return nil
}

// MarkNeighborAsConnected finds the side neighbor is recorded on and marks it
// connected.
func (p *Piece) MarkNeighborAsConnected(neighbor *Piece) error {
	if neighbor == nil {
		return ErrNilPiece
	}
	for _, s := range Sides {
		if id, _, ok := p.NeighborOnSide(s); ok && id == neighbor.ID() {
			return p.MarkPieceOnSideAsConnected(s, id)
		}
	}
	return fmt.Errorf("%w: %q is not a neighbor of %q", ErrNeighborMismatch, neighbor.ID(), p.ID())
}

// RecomputePositionAndSize fits a group around its members: the group moves
// to the top-left corner of their bounding box, takes its size, and every
// member is re-expressed relative to the new origin.
func (p *Piece) RecomputePositionAndSize(reg Registry) error {
	if !p.IsGroup() {
		return fmt.Errorf("%w: %q", ErrNotAGroup, p.ID())
	}
	members := p.nested.Items()
	if len(members) == 0 {
		return fmt.Errorf("%w: %q has no members", ErrNotAGroup, p.ID())
	}

	worlds := make([]geom.Point, len(members))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, m := range members {
		w, err := m.WorldPosition(reg)
		if err != nil {
			return err
		}
		worlds[i] = w
		minX = math.Min(minX, w.X)
		minY = math.Min(minY, w.Y)
		maxX = math.Max(maxX, w.X+m.width)
		maxY = math.Max(maxY, w.Y+m.height)
	}

	origin := geom.Point{X: minX, Y: minY}
	local := origin
	if p.HasParent() {
		parent, err := reg.PieceByID(p.parentID)
		if err != nil {
			return err
		}
		parentWorld, err := parent.WorldPosition(reg)
		if err != nil {
			return err
		}
		local = origin.Sub(parentWorld)
	}

	p.Position = local
	p.width = maxX - minX
	p.height = maxY - minY
	for i, m := range members {
		m.Position = worlds[i].Sub(origin)
	}
	return nil
}

func copySideMap(m map[Side]string) map[Side]string {
	out := make(map[Side]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
