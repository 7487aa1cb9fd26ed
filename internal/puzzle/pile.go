package puzzle

import (
	"fmt"
	"slices"
)

// Pile is an ordered collection of items. Order is z-order: index 0 is the
// bottom, the last index is the top. All scans are linear.
type Pile[T Item] struct {
	itemsByID  map[string]T
	orderedIDs []string
}

// NewPile creates a pile holding items, the first one at the bottom.
func NewPile[T Item](items ...T) (*Pile[T], error) {
	p := &Pile[T]{itemsByID: make(map[string]T, len(items))}
	for _, it := range items {
		if err := p.AddPieceOnTheTop(it); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Len returns the number of items in the pile.
func (p *Pile[T]) Len() int {
	return len(p.itemsByID)
}

// Has reports whether an item with that id is in the pile.
func (p *Pile[T]) Has(id string) bool {
	_, ok := p.itemsByID[id]
	return ok
}

// Get returns the item with that id.
func (p *Pile[T]) Get(id string) (T, bool) {
	it, ok := p.itemsByID[id]
	return it, ok
}

// ItemIDsInOrder returns a copy of the ids, bottom to top.
func (p *Pile[T]) ItemIDsInOrder() []string {
	return slices.Clone(p.orderedIDs)
}

// Items returns the items bottom to top.
func (p *Pile[T]) Items() []T {
	out := make([]T, 0, len(p.orderedIDs))
	for _, id := range p.orderedIDs {
		out = append(out, p.itemsByID[id])
	}
	return out
}

// AddPieceOnTheTop puts item above everything else.
func (p *Pile[T]) AddPieceOnTheTop(item T) error {
	id := item.ID()
	if id == "" {
		return ErrMissingID
	}
	if p.Has(id) {
		return fmt.Errorf("%w: %q", ErrDuplicateItem, id)
	}
	p.ensureMap()
	p.itemsByID[id] = item
	p.orderedIDs = append(p.orderedIDs, id)
	return nil
}

// MoveToTop re-appends item so it becomes the topmost one.
func (p *Pile[T]) MoveToTop(item T) error {
	if err := p.CutItemFromItemIDsInOrder(item); err != nil {
		return err
	}
	p.orderedIDs = append(p.orderedIDs, item.ID())
	return nil
}

// AddGroupInTheMiddleByGroupSize inserts item directly above the uppermost
// group at least as large as item, or at the very bottom when there is none.
// Bigger groups therefore stay below smaller ones, the newest of equal size
// sits on top of the older ones, and single pieces stay above every group.
// The item may already be known to the pile as long as it is not ordered,
// which is how a group is re-sorted after CutItemFromItemIDsInOrder.
func (p *Pile[T]) AddGroupInTheMiddleByGroupSize(item T) error {
	id := item.ID()
	if id == "" {
		return ErrMissingID
	}
	if slices.Contains(p.orderedIDs, id) {
		return fmt.Errorf("%w: %q", ErrDuplicateItem, id)
	}
	at := p.indexOfTheUppermostGroupByGroupSize(item.Size()) + 1
	p.ensureMap()
	p.itemsByID[id] = item
	p.orderedIDs = slices.Insert(p.orderedIDs, at, id)
	return nil
}

// indexOfTheUppermostGroupByGroupSize scans from the top and returns the
// index of the first group whose size is >= size, or -1.
func (p *Pile[T]) indexOfTheUppermostGroupByGroupSize(size int) int {
	for i := len(p.orderedIDs) - 1; i >= 0; i-- {
		it := p.itemsByID[p.orderedIDs[i]]
		if it.Size() > 1 && it.Size() >= size {
			return i
		}
	}
	return -1
}

// RemoveItem drops item from the pile and releases its parent link and
// nested pile: the pile no longer owns it.
func (p *Pile[T]) RemoveItem(item T) error {
	id := item.ID()
	if !p.Has(id) {
		return fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	delete(p.itemsByID, id)
	if i := slices.Index(p.orderedIDs, id); i >= 0 {
		p.orderedIDs = slices.Delete(p.orderedIDs, i, i+1)
	}
	item.release()
	return nil
}

// CutItemFromItemIDsInOrder removes item from the order only. The item stays
// known to the pile until it is inserted again.
func (p *Pile[T]) CutItemFromItemIDsInOrder(item T) error {
	id := item.ID()
	i := slices.Index(p.orderedIDs, id)
	if i < 0 || !p.Has(id) {
		return fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	p.orderedIDs = slices.Delete(p.orderedIDs, i, i+1)
	return nil
}

// FindFromBottomToTop returns the lowest item matching fn.
func (p *Pile[T]) FindFromBottomToTop(fn func(T) bool) (T, bool) {
	for _, id := range p.orderedIDs {
		if it := p.itemsByID[id]; fn(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// FindFromTopToBottom returns the highest item matching fn. Hit-testing uses
// it so the most recently raised item wins overlapping queries.
func (p *Pile[T]) FindFromTopToBottom(fn func(T) bool) (T, bool) {
	for i := len(p.orderedIDs) - 1; i >= 0; i-- {
		if it := p.itemsByID[p.orderedIDs[i]]; fn(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// ForEachFromBottomToTop calls fn on every item, bottom first.
func (p *Pile[T]) ForEachFromBottomToTop(fn func(T)) {
	for _, it := range p.Items() {
		fn(it)
	}
}

// ForEachFromTopToBottom calls fn on every item, top first.
func (p *Pile[T]) ForEachFromTopToBottom(fn func(T)) {
	items := p.Items()
	for i := len(items) - 1; i >= 0; i-- {
		fn(items[i])
	}
}

func (p *Pile[T]) ensureMap() {
	if p.itemsByID == nil {
		p.itemsByID = make(map[string]T)
	}
}
