package puzzle

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/model"
)

// SelectActivePiece starts a drag on p. Any current active piece is released
// first, and the top-level item holding p is raised to the top of the pile.
func (pz *Puzzle) SelectActivePiece(p *Piece) error {
	if p == nil {
		return ErrNilPiece
	}
	if p.ID() == "" {
		return ErrMissingID
	}
	if _, err := pz.PieceByID(p.ID()); err != nil {
		return err
	}
	// The release below may fold a selected group into another one. Its
	// first member survives the fold and leads to the new top-level item.
	anchor := p
	if p.IsGroup() && p.Nested().Len() > 0 {
		anchor = p.Nested().Items()[0]
	}
	if pz.activePiece != nil {
		if err := pz.UnselectActivePiece(); err != nil {
			return err
		}
	}
	if _, err := pz.PieceByID(p.ID()); err != nil {
		p = anchor
	}

	top, err := pz.topLevel(p)
	if err != nil {
		return err
	}
	if err := pz.rootPile.MoveToTop(top); err != nil {
		return err
	}
	pz.activePiece = p
	return nil
}

// MoveActivePiece translates the dragged item by delta. A move without an
// active piece is ignored.
func (pz *Puzzle) MoveActivePiece(delta geom.PositionDelta) error {
	if pz.activePiece == nil {
		pz.log.Warn().
			Float64("dx", delta.DX).
			Float64("dy", delta.DY).
			Msg("move ignored: no active piece")
		return nil
	}
	top, err := pz.topLevel(pz.activePiece)
	if err != nil {
		return err
	}
	top.Position = top.Position.Add(delta)
	return nil
}

// UnselectActivePiece ends the drag. Every neighbour of the released item
// that lies inside its activation area is snapped into place and merged,
// then progress is recomputed and the release callbacks fire.
func (pz *Puzzle) UnselectActivePiece() error {
	released := pz.activePiece
	if released == nil {
		return nil
	}
	pz.activePiece = nil

	top, err := pz.topLevel(released)
	if err != nil {
		return err
	}

	var conns []Connection
	for _, m := range membersOf(top) {
		c, err := m.AvailableToConnectNeighbors(pz)
		if err != nil {
			return err
		}
		conns = append(conns, c...)
	}

	for _, c := range conns {
		if _, connected, _ := c.Piece.NeighborOnSide(c.Side); connected {
			continue
		}
		driver, err := pz.topLevel(c.Piece)
		if err != nil {
			return err
		}
		other, err := pz.topLevel(c.Neighbor)
		if err != nil {
			return err
		}
		if driver != other {
			delta, err := c.Piece.PositionDeltaToMoveOnConnectionPositionOfNeighborPiece(pz, c.Neighbor, c.Side)
			if err != nil {
				return err
			}
			other.Position = other.Position.Add(delta)
			if top, err = pz.merge(driver, other); err != nil {
				return err
			}
		}
		if err := pz.connect(c.Piece, c.Side, c.Neighbor); err != nil {
			return err
		}
	}

	if top.IsGroup() {
		if err := pz.settle(top); err != nil {
			return err
		}
		if err := pz.rootPile.CutItemFromItemIDsInOrder(top); err != nil {
			return err
		}
		if err := pz.rootPile.AddGroupInTheMiddleByGroupSize(top); err != nil {
			return err
		}
	}

	pz.completenessProgress = pz.computeCompletenessProgress()
	pz.log.Debug().
		Str("piece", released.ID()).
		Str("item", top.ID()).
		Int("connections", len(conns)).
		Int("progress", pz.completenessProgress).
		Msg("piece released")

	if err := pz.fireRelease(top); err != nil {
		return err
	}
	if pz.opts.OnChangeProgress != nil {
		pz.opts.OnChangeProgress(pz.completenessProgress)
	}
	pz.markDirty()
	return nil
}

// MovePiecesToManualInitialPositions replays a persisted layout: each record
// is selected, moved onto its position and released, in order. Merges are
// derived again by the releases. OnDirty does not fire during the replay.
func (pz *Puzzle) MovePiecesToManualInitialPositions(positions []model.PiecePosition) error {
	pz.suppressDirty = true
	defer func() { pz.suppressDirty = false }()

	for _, rec := range positions {
		p, err := pz.PieceByID(rec.ID)
		if err != nil {
			return err
		}
		if err := pz.SelectActivePiece(p); err != nil {
			return err
		}
		at, err := p.WorldPosition(pz)
		if err != nil {
			return err
		}
		if err := pz.MoveActivePiece(at.DeltaTo(rec.Position)); err != nil {
			return err
		}
		if err := pz.UnselectActivePiece(); err != nil {
			return err
		}
	}
	return nil
}

func membersOf(item *Piece) []*Piece {
	if item.IsGroup() {
		return item.Nested().Items()
	}
	return []*Piece{item}
}

// connect marks the link between p and neighbor on both ends.
func (pz *Puzzle) connect(p *Piece, s Side, neighbor *Piece) error {
	if err := p.MarkPieceOnSideAsConnected(s, neighbor.ID()); err != nil {
		return err
	}
	return neighbor.MarkPieceOnSideAsConnected(s.Opposite(), p.ID())
}

// merge joins other into driver's item and returns the surviving group.
func (pz *Puzzle) merge(driver, other *Piece) (*Piece, error) {
	switch {
	case !driver.IsGroup() && !other.IsGroup():
		g, err := pz.newGroup()
		if err != nil {
			return nil, err
		}
		if err := pz.absorbPiece(g, driver); err != nil {
			return nil, err
		}
		if err := pz.absorbPiece(g, other); err != nil {
			return nil, err
		}
		if err := pz.rootPile.AddGroupInTheMiddleByGroupSize(g); err != nil {
			return nil, err
		}
		pz.log.Debug().Str("group", g.ID()).Str("a", driver.ID()).Str("b", other.ID()).Msg("pieces grouped")
		return g, nil

	case driver.IsGroup() && !other.IsGroup():
		return driver, pz.absorbPiece(driver, other)

	case !driver.IsGroup() && other.IsGroup():
		return other, pz.absorbPiece(other, driver)

	default:
		return driver, pz.absorbGroup(driver, other)
	}
}

// newGroup registers an empty group. Its id is drawn from the puzzle PRNG so
// a replay of the same layout yields the same ids.
func (pz *Puzzle) newGroup() (*Piece, error) {
	var id string
	for id == "" || pz.arena[id] != nil {
		u, err := uuid.NewRandomFromReader(pz.rng)
		if err != nil {
			return nil, err
		}
		id = u.String()[:8]
	}
	g := newGroup(id, pz.opts.PieceSideSize)
	if err := pz.arena.Add(g); err != nil {
		return nil, err
	}
	return g, nil
}

// absorbPiece moves a top-level atomic piece into group g, keeping its world
// position.
func (pz *Puzzle) absorbPiece(g, p *Piece) error {
	if p.HasParent() {
		return fmt.Errorf("%w: %q belongs to %q", ErrAlreadyGrouped, p.ID(), p.ParentID())
	}
	world := p.Position
	origin, err := g.WorldPosition(pz)
	if err != nil {
		return err
	}
	if pz.rootPile.Has(p.ID()) {
		if err := pz.rootPile.RemoveItem(p); err != nil {
			return err
		}
	}
	p.parentID = g.ID()
	p.Position = world.Sub(origin)
	if err := g.nested.AddPieceOnTheTop(p); err != nil {
		return err
	}
	return g.RecomputePositionAndSize(pz)
}

// absorbGroup moves every member of other into g and drops other.
func (pz *Puzzle) absorbGroup(g, other *Piece) error {
	origin, err := g.WorldPosition(pz)
	if err != nil {
		return err
	}
	for _, m := range other.Nested().Items() {
		world, err := m.WorldPosition(pz)
		if err != nil {
			return err
		}
		if err := other.nested.RemoveItem(m); err != nil {
			return err
		}
		m.parentID = g.ID()
		m.Position = world.Sub(origin)
		if err := g.nested.AddPieceOnTheTop(m); err != nil {
			return err
		}
	}
	if err := pz.rootPile.RemoveItem(other); err != nil {
		return err
	}
	delete(pz.arena, other.ID())
	pz.log.Debug().Str("group", g.ID()).Str("absorbed", other.ID()).Msg("groups merged")
	return g.RecomputePositionAndSize(pz)
}

// settle connects grid neighbours that ended up in the same group and sit
// inside each other's activation area.
func (pz *Puzzle) settle(g *Piece) error {
	for _, m := range g.Nested().Items() {
		world, err := m.WorldPosition(pz)
		if err != nil {
			return err
		}
		for _, s := range Sides {
			id, connected, ok := m.NeighborOnSide(s)
			if !ok || connected || !g.Nested().Has(id) {
				continue
			}
			neighbor, err := pz.PieceByID(id)
			if err != nil {
				return err
			}
			at, err := neighbor.WorldPosition(pz)
			if err != nil {
				return err
			}
			if !m.activationArea(world, s).Contains(at) {
				continue
			}
			if err := pz.connect(m, s, neighbor); err != nil {
				return err
			}
		}
	}
	return nil
}

func (pz *Puzzle) fireRelease(item *Piece) error {
	if pz.opts.OnPieceRelease == nil && pz.opts.OnGroupOfPiecesRelease == nil {
		return nil
	}
	records, err := pz.releaseRecords(item)
	if err != nil {
		return err
	}
	if item.IsGroup() {
		if pz.opts.OnGroupOfPiecesRelease != nil {
			pz.opts.OnGroupOfPiecesRelease(records)
		}
		return nil
	}
	if pz.opts.OnPieceRelease != nil {
		pz.opts.OnPieceRelease(records[0])
	}
	return nil
}
