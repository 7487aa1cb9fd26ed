package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/JigCut/internal/geom"
)

func testPiece(id string, at geom.Point, col, row int) *Piece {
	return NewPiece(id, PieceConfig{
		Position:                             at,
		Width:                                50,
		Height:                               50,
		PieceSideSize:                        50,
		ConnectionActivationAreaSideFraction: 0.2,
		Column:                               col,
		Row:                                  row,
	})
}

// pairArena returns a left/right pair of linked pieces.
func pairArena(t *testing.T, left, right geom.Point) (Arena, *Piece, *Piece) {
	t.Helper()
	a := testPiece("0", left, 0, 0)
	b := testPiece("1", right, 1, 0)
	require.NoError(t, a.SetNeighbor(SideRight, "1"))
	require.NoError(t, b.SetNeighbor(SideLeft, "0"))
	arena := Arena{}
	require.NoError(t, arena.Add(a))
	require.NoError(t, arena.Add(b))
	return arena, a, b
}

type fixedRand struct{ ints []int }

func (f *fixedRand) Intn(int) int {
	v := f.ints[0]
	f.ints = f.ints[1:]
	return v
}

func (f *fixedRand) Float64() float64 { return 0 }

func TestWorldPositionComposesThroughParent(t *testing.T) {
	arena := Arena{}
	g := newGroup("g", 50)
	g.Position = geom.Point{X: 100, Y: 40}
	p := testPiece("0", geom.Point{X: 10, Y: 5}, 0, 0)
	require.NoError(t, arena.Add(g))
	require.NoError(t, arena.Add(p))

	world, err := p.WorldPosition(arena)
	require.NoError(t, err)
	assert.Equal(t, p.Position, world)

	p.parentID = "g"
	world, err = p.WorldPosition(arena)
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 110, Y: 45}, world)

	p.parentID = "missing"
	_, err = p.WorldPosition(arena)
	require.ErrorIs(t, err, ErrPieceNotFound)
}

func TestBoundaryCornersAndHitTest(t *testing.T) {
	arena := Arena{}
	p := testPiece("0", geom.Point{X: 10, Y: 10}, 0, 0)
	require.NoError(t, arena.Add(p))

	tl, br, err := p.BoundaryCornerPoints(arena)
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 10, Y: 10}, tl)
	assert.Equal(t, geom.Point{X: 59, Y: 59}, br)

	for _, tc := range []struct {
		pt   geom.Point
		want bool
	}{
		{geom.Point{X: 10, Y: 10}, true},
		{geom.Point{X: 59, Y: 59}, true},
		{geom.Point{X: 60, Y: 30}, false},
		{geom.Point{X: 9, Y: 30}, false},
	} {
		got, err := p.ContainsPoint(arena, tc.pt)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "point %v", tc.pt)
	}
}

func TestSetNeighborKeepsSideForLife(t *testing.T) {
	p := testPiece("0", geom.Point{}, 0, 0)
	require.NoError(t, p.SetNeighbor(SideRight, "1"))
	require.NoError(t, p.SetNeighbor(SideRight, "1"))
	require.ErrorIs(t, p.SetNeighbor(SideRight, "2"), ErrNeighborMismatch)
}

func TestPrepareConnectionTypesComplementsNeighbor(t *testing.T) {
	arena, a, b := pairArena(t, geom.Point{}, geom.Point{X: 50})

	require.NoError(t, a.PrepareConnectionTypes(arena, &fixedRand{ints: []int{0}}))
	require.NoError(t, b.PrepareConnectionTypes(arena, &fixedRand{}))

	assert.Equal(t, ConnectionNone, a.SideConnectionType(SideTop))
	assert.Equal(t, ConnectionPlug, a.SideConnectionType(SideRight))
	assert.Equal(t, ConnectionSocket, b.SideConnectionType(SideLeft))
	assert.Equal(t, ConnectionNone, b.SideConnectionType(SideRight))
}

func TestAvailableToConnectNeighbors(t *testing.T) {
	tests := []struct {
		name  string
		right geom.Point
		want  int
	}{
		{"exact", geom.Point{X: 50}, 1},
		{"edge of area", geom.Point{X: 55, Y: -5}, 1},
		{"just outside", geom.Point{X: 55.5}, 0},
		{"far away", geom.Point{X: 300, Y: 300}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arena, a, b := pairArena(t, geom.Point{}, tt.right)
			conns, err := a.AvailableToConnectNeighbors(arena)
			require.NoError(t, err)
			require.Len(t, conns, tt.want)
			if tt.want == 1 {
				assert.Equal(t, Connection{Piece: a, Side: SideRight, Neighbor: b}, conns[0])
			}
		})
	}
}

func TestPositionDeltaToMoveOnConnectionPosition(t *testing.T) {
	arena, a, b := pairArena(t, geom.Point{}, geom.Point{X: 53, Y: -2})

	d, err := a.PositionDeltaToMoveOnConnectionPositionOfNeighborPiece(arena, b, SideRight)
	require.NoError(t, err)
	assert.Equal(t, geom.PositionDelta{DX: -3, DY: 2}, d)

	_, err = a.PositionDeltaToMoveOnConnectionPositionOfNeighborPiece(arena, b, SideLeft)
	require.ErrorIs(t, err, ErrNeighborMismatch)

	_, err = a.PositionDeltaToMoveOnConnectionPositionOfNeighborPiece(arena, nil, SideRight)
	require.ErrorIs(t, err, ErrNilPiece)
}

func TestSnapDeltaIsZeroOnceConnected(t *testing.T) {
	arena, a, b := pairArena(t, geom.Point{}, geom.Point{X: 53, Y: -2})
	require.NoError(t, a.MarkNeighborAsConnected(b))

	d, err := a.PositionDeltaToMoveOnConnectionPositionOfNeighborPiece(arena, b, SideRight)
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestMarkConnectedMovesBetweenMaps(t *testing.T) {
	_, a, b := pairArena(t, geom.Point{}, geom.Point{X: 50})

	require.ErrorIs(t, a.MarkPieceOnSideAsConnected(SideRight, "7"), ErrNeighborMismatch)
	require.ErrorIs(t, a.MarkPieceOnSideAsConnected(SideTop, "1"), ErrNeighborMismatch)

	require.NoError(t, a.MarkPieceOnSideAsConnected(SideRight, "1"))
	require.NoError(t, a.MarkPieceOnSideAsConnected(SideRight, "1"))
	assert.Empty(t, a.NotConnectedNeighbors())
	assert.Equal(t, map[Side]string{SideRight: "1"}, a.ConnectedNeighbors())
	assert.Equal(t, 1, a.ConnectedCount())

	require.NoError(t, b.MarkNeighborAsConnected(a))
	id, connected, ok := b.NeighborOnSide(SideLeft)
	assert.Equal(t, "0", id)
	assert.True(t, connected)
	assert.True(t, ok)

	stranger := testPiece("9", geom.Point{}, 5, 5)
	require.ErrorIs(t, b.MarkNeighborAsConnected(stranger), ErrNeighborMismatch)
	require.ErrorIs(t, b.MarkNeighborAsConnected(nil), ErrNilPiece)
}

func TestNeighborMapsAreCopies(t *testing.T) {
	_, a, _ := pairArena(t, geom.Point{}, geom.Point{X: 50})
	m := a.NotConnectedNeighbors()
	delete(m, SideRight)
	_, _, ok := a.NeighborOnSide(SideRight)
	assert.True(t, ok)
}

func TestRecomputePositionAndSize(t *testing.T) {
	arena := Arena{}
	g := newGroup("g", 50)
	require.NoError(t, arena.Add(g))

	a := testPiece("0", geom.Point{X: 20, Y: 30}, 0, 0)
	b := testPiece("1", geom.Point{X: 70, Y: 80}, 1, 1)
	for _, p := range []*Piece{a, b} {
		require.NoError(t, arena.Add(p))
		p.parentID = "g"
		require.NoError(t, g.Nested().AddPieceOnTheTop(p))
	}

	require.NoError(t, g.RecomputePositionAndSize(arena))
	assert.Equal(t, geom.Point{X: 20, Y: 30}, g.Position)
	assert.Equal(t, 100.0, g.Width())
	assert.Equal(t, 100.0, g.Height())
	assert.Equal(t, geom.Point{}, a.Position)
	assert.Equal(t, geom.Point{X: 50, Y: 50}, b.Position)
	assert.Equal(t, 2, g.Size())

	world, err := b.WorldPosition(arena)
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 70, Y: 80}, world)

	require.ErrorIs(t, a.RecomputePositionAndSize(arena), ErrNotAGroup)
	require.ErrorIs(t, newGroup("empty", 50).RecomputePositionAndSize(arena), ErrNotAGroup)
}

func TestArenaAdd(t *testing.T) {
	arena := Arena{}
	require.ErrorIs(t, arena.Add(nil), ErrNilPiece)
	require.ErrorIs(t, arena.Add(testPiece("", geom.Point{}, 0, 0)), ErrMissingID)
	require.NoError(t, arena.Add(testPiece("0", geom.Point{}, 0, 0)))
	require.ErrorIs(t, arena.Add(testPiece("0", geom.Point{}, 0, 0)), ErrDuplicateItem)

	_, err := arena.PieceByID("nope")
	require.ErrorIs(t, err, ErrPieceNotFound)
}

func TestSideAndConnectionTypeHelpers(t *testing.T) {
	assert.Equal(t, SideBottom, SideTop.Opposite())
	assert.Equal(t, SideLeft, SideRight.Opposite())
	assert.Equal(t, geom.PositionDelta{DY: -50}, SideTop.Offset(100, 50))
	assert.Equal(t, geom.PositionDelta{DX: 100}, SideRight.Offset(100, 50))
	assert.Equal(t, "left", SideLeft.String())

	assert.Equal(t, ConnectionSocket, ConnectionPlug.Complement())
	assert.Equal(t, ConnectionPlug, ConnectionSocket.Complement())
	assert.Equal(t, ConnectionNone, ConnectionNone.Complement())
}
