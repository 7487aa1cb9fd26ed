package puzzle

import "errors"

// Contract violations. They are returned as soon as they are detected and
// are never absorbed by the engine.
var (
	ErrNilPiece         = errors.New("puzzle: piece is nil")
	ErrMissingID        = errors.New("puzzle: piece has no id")
	ErrPieceNotFound    = errors.New("puzzle: piece not found")
	ErrDuplicateItem    = errors.New("pile: item already present")
	ErrItemNotFound     = errors.New("pile: item not present")
	ErrNeighborMismatch = errors.New("piece: neighbor does not match the recorded one")
	ErrAlreadyGrouped   = errors.New("piece: piece already belongs to a group")
	ErrNotAGroup        = errors.New("piece: piece is not a group")
	ErrInvalidOptions   = errors.New("puzzle: invalid options")
)
