package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/puzzle"
)

func squares(n int, side float64) []Size {
	items := make([]Size, n)
	for i := range items {
		items[i] = Size{ID: string(rune('a' + i)), Width: side, Height: side}
	}
	return items
}

// assertSeparated checks that no two placements come closer than gap.
func assertSeparated(t *testing.T, res Result, sizes map[string]Size, gap float64) {
	t.Helper()
	for i, a := range res.Placements {
		for _, b := range res.Placements[i+1:] {
			sa, sb := sizes[a.ID], sizes[b.ID]
			apart := a.X+sa.Width+gap <= b.X+0.001 || b.X+sb.Width+gap <= a.X+0.001 ||
				a.Y+sa.Height+gap <= b.Y+0.001 || b.Y+sb.Height+gap <= a.Y+0.001
			assert.True(t, apart, "%s at %v and %s at %v overlap", a.ID, a, b.ID, b)
		}
	}
}

func byID(items []Size) map[string]Size {
	m := make(map[string]Size, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}

func TestPackFillsTrayExactly(t *testing.T) {
	items := squares(4, 50)
	res := Packer{Width: 100, Height: 100}.Pack(items)

	require.Len(t, res.Placements, 4)
	assert.Empty(t, res.Unplaced)
	assert.InDelta(t, 100, res.UsedHeight, 0.001)
	assertSeparated(t, res, byID(items), 0)

	corners := map[geom.Point]bool{}
	for _, p := range res.Placements {
		corners[geom.Point{X: p.X, Y: p.Y}] = true
	}
	assert.Equal(t, map[geom.Point]bool{
		{X: 0, Y: 0}: true, {X: 50, Y: 0}: true, {X: 0, Y: 50}: true, {X: 50, Y: 50}: true,
	}, corners)
}

func TestPackKeepsMargin(t *testing.T) {
	items := squares(4, 40)
	p := Packer{Width: 110, Height: 110, Margin: 10}
	res := p.Pack(items)

	require.Len(t, res.Placements, 4)
	assertSeparated(t, res, byID(items), 10)
	for _, pl := range res.Placements {
		assert.GreaterOrEqual(t, pl.X, 10.0)
		assert.GreaterOrEqual(t, pl.Y, 10.0)
		assert.LessOrEqual(t, pl.X+40, 100.001)
		assert.LessOrEqual(t, pl.Y+40, 100.001)
	}
}

func TestPackReportsUnplaced(t *testing.T) {
	items := squares(2, 60)
	res := Packer{Width: 100, Height: 100}.Pack(items)

	assert.Len(t, res.Placements, 1)
	require.Len(t, res.Unplaced, 1)
	assert.Equal(t, 60.0, res.Unplaced[0].Width)
}

func TestPackMixedSizes(t *testing.T) {
	items := []Size{
		{ID: "wide", Width: 100, Height: 20},
		{ID: "tall", Width: 20, Height: 80},
		{ID: "s1", Width: 30, Height: 30},
		{ID: "s2", Width: 30, Height: 30},
		{ID: "s3", Width: 30, Height: 30},
	}
	res := Packer{Width: 100, Height: 100}.Pack(items)

	assert.Len(t, res.Placements, 5)
	assertSeparated(t, res, byID(items), 0)
}

func TestPruneContainedKeepsOneOfEqualRects(t *testing.T) {
	got := pruneContained([]rect{{0, 0, 10, 10}, {0, 0, 10, 10}, {2, 2, 3, 3}})
	assert.Equal(t, []rect{{0, 0, 10, 10}}, got)
}

func newPuzzle(t *testing.T, cols, rows int) *puzzle.Puzzle {
	t.Helper()
	pz, err := puzzle.New(puzzle.Options{
		ID:                                       "pack-seed",
		NumberOfPiecesPerWidth:                   cols,
		NumberOfPiecesPerHeight:                  rows,
		PieceSideSize:                            50,
		ConnectionActivationAreaSideSizeFraction: 0.2,
	})
	require.NoError(t, err)
	return pz
}

func TestSpreadPlacementSeparatesPieces(t *testing.T) {
	pz := newPuzzle(t, 3, 1)
	area := geom.Area{Width: 120, Height: 200}

	require.NoError(t, pz.SpreadPieces(5, SpreadPlacement(pz, area, 5)))

	pieces := pz.Pieces()
	require.Len(t, pieces, 3)
	for i, a := range pieces {
		assert.True(t, area.Contains(a.Position), "piece %s at %v", a.ID(), a.Position)
		for _, b := range pieces[i+1:] {
			apart := a.Position.X+a.Width()+5 <= b.Position.X+0.001 ||
				b.Position.X+b.Width()+5 <= a.Position.X+0.001 ||
				a.Position.Y+a.Height()+5 <= b.Position.Y+0.001 ||
				b.Position.Y+b.Height()+5 <= a.Position.Y+0.001
			assert.True(t, apart, "%s and %s overlap", a.ID(), b.ID())
		}
	}
	assert.Equal(t, 0, pz.CompletenessProgress())
}

func TestSpreadPlacementPutsOverflowBelowArea(t *testing.T) {
	pz := newPuzzle(t, 3, 1)
	area := geom.Area{X: 10, Y: 10, Width: 62, Height: 62}

	// A zero margin is widened so that no piece lands in reach of a neighbour.
	require.NoError(t, pz.SpreadPieces(0, SpreadPlacement(pz, area, 0)))
	gap := pz.MinSpreadMargin()
	require.InDelta(t, 6.0, gap, 1e-9)

	var inside, below []*puzzle.Piece
	for _, p := range pz.Pieces() {
		if p.Position.Y == area.Bottom()+gap {
			below = append(below, p)
		} else {
			inside = append(inside, p)
		}
	}
	require.Len(t, inside, 1)
	assert.InDelta(t, 16, inside[0].Position.X, 1e-9)
	assert.InDelta(t, 16, inside[0].Position.Y, 1e-9)
	require.Len(t, below, 2)
	assert.InDelta(t, gap, math.Abs(below[0].Position.X-below[1].Position.X)-50, 1e-9)
	assert.Equal(t, 0, pz.CompletenessProgress())
}
