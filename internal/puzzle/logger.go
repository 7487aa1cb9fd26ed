package puzzle

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// puzzleLog is the default logger of the package, tagged module=puzzle.
var puzzleLog zerolog.Logger = log.With().Str("module", "puzzle").Logger()
