package project

import (
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/piwi3910/JigCut/internal/model"
	"github.com/piwi3910/JigCut/internal/puzzle"
)

// Recorder is the storage side of the engine callbacks. It keeps the last
// known position of every piece, in release order, together with progress
// and a dirty flag, and turns them into a SavedPuzzle on demand.
type Recorder struct {
	settings  model.PuzzleSettings
	positions map[string]model.PiecePosition
	order     []string
	progress  int
	dirty     bool
	log       zerolog.Logger
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		positions: make(map[string]model.PiecePosition),
		log:       log.With().Str("module", "project").Logger(),
	}
}

// Attach chains the recorder into the callbacks of opts. Callbacks already
// set on opts still run, after the recorder.
func (r *Recorder) Attach(opts *puzzle.Options) {
	onDirty := opts.OnDirty
	opts.OnDirty = func() {
		r.dirty = true
		if onDirty != nil {
			onDirty()
		}
	}

	onPiece := opts.OnPieceRelease
	opts.OnPieceRelease = func(p model.PiecePosition) {
		r.record(p)
		if onPiece != nil {
			onPiece(p)
		}
	}

	onGroup := opts.OnGroupOfPiecesRelease
	opts.OnGroupOfPiecesRelease = func(ps []model.PiecePosition) {
		for _, p := range ps {
			r.record(p)
		}
		if onGroup != nil {
			onGroup(ps)
		}
	}

	onProgress := opts.OnChangeProgress
	opts.OnChangeProgress = func(v int) {
		r.progress = v
		if onProgress != nil {
			onProgress(v)
		}
	}
}

// Reset takes the settings and the full current layout from pz and clears
// the dirty flag. Call it right after creating or restoring a puzzle.
func (r *Recorder) Reset(pz *puzzle.Puzzle) error {
	snapshot, err := pz.Snapshot()
	if err != nil {
		return err
	}
	r.settings = pz.Settings()
	r.positions = make(map[string]model.PiecePosition, len(snapshot))
	r.order = r.order[:0]
	for _, p := range snapshot {
		r.record(p)
	}
	r.progress = pz.CompletenessProgress()
	r.dirty = false
	return nil
}

func (r *Recorder) record(p model.PiecePosition) {
	if _, ok := r.positions[p.ID]; ok {
		if i := slices.Index(r.order, p.ID); i >= 0 {
			r.order = slices.Delete(r.order, i, i+1)
		}
	}
	r.positions[p.ID] = p
	r.order = append(r.order, p.ID)
}

// Positions returns the recorded positions, least recently released first.
func (r *Recorder) Positions() []model.PiecePosition {
	out := make([]model.PiecePosition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.positions[id])
	}
	return out
}

// Dirty reports whether the layout changed since the last Reset or Save.
func (r *Recorder) Dirty() bool { return r.dirty }

// Progress returns the last reported completeness percentage.
func (r *Recorder) Progress() int { return r.progress }

// SavedPuzzle returns the recorded state in its persisted form.
func (r *Recorder) SavedPuzzle() model.SavedPuzzle {
	return model.NewSavedPuzzle(r.settings, r.Positions(), r.progress)
}

// Save writes the recorded state to path and clears the dirty flag.
func (r *Recorder) Save(path string) error {
	if err := SavePuzzle(path, r.SavedPuzzle()); err != nil {
		return err
	}
	r.dirty = false
	r.log.Debug().Str("path", path).Str("puzzle", r.settings.ID).Int("progress", r.progress).Msg("puzzle saved")
	return nil
}
