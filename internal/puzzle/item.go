package puzzle

import "fmt"

// Entity gives an object its unique string id.
type Entity struct {
	id string
}

// ID returns the entity id.
func (e Entity) ID() string {
	return e.id
}

// Item is anything a Pile can hold.
type Item interface {
	ID() string
	// Size is the number of atomic pieces the item stands for.
	Size() int
	// release drops the parent link and nested pile once the item leaves a pile.
	release()
}

// Registry resolves ids to pieces. Lookups that need to walk parent links
// take it as an explicit argument.
type Registry interface {
	PieceByID(id string) (*Piece, error)
}

// Arena is a flat registry of every piece and group keyed by id.
type Arena map[string]*Piece

// PieceByID implements Registry.
func (a Arena) PieceByID(id string) (*Piece, error) {
	p, ok := a[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPieceNotFound, id)
	}
	return p, nil
}

// Add registers p, refusing ids already in use.
func (a Arena) Add(p *Piece) error {
	if p == nil {
		return ErrNilPiece
	}
	if p.ID() == "" {
		return ErrMissingID
	}
	if _, ok := a[p.ID()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateItem, p.ID())
	}
	a[p.ID()] = p
	return nil
}
