// JigCut: jigsaw puzzle engine with cut and print exports
//
// Creates or restores a puzzle, replays a manual layout, spreads the loose
// pieces and writes the layout PDF, QR piece labels, a DXF drawing, a CNC
// program and a positions table.
//
// Build:
//   go build -o jigcut ./cmd/jigcut
//
// Example:
//   jigcut -cols 8 -rows 6 -side 40 -pdf layout.pdf -gcode cut.nc -profile Grbl

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/piwi3910/JigCut/internal/engine"
	"github.com/piwi3910/JigCut/internal/export"
	"github.com/piwi3910/JigCut/internal/gcode"
	"github.com/piwi3910/JigCut/internal/importer"
	"github.com/piwi3910/JigCut/internal/model"
	"github.com/piwi3910/JigCut/internal/project"
	"github.com/piwi3910/JigCut/internal/puzzle"
	"github.com/piwi3910/JigCut/internal/shape"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("jigcut failed")
	}
}

// options are the parsed command line flags.
type options struct {
	configPath string
	puzzleDir  string
	load       string
	list       bool

	id       string
	cols     int
	rows     int
	side     float64
	fraction float64

	layout string
	spread bool
	pack   bool
	margin float64

	pdf        string
	labels     string
	dxf        string
	dxfSpacing float64
	gcode      string
	profile    string
	xlsx       string
	backup     string
	restore    string

	save     string
	logLevel string
}

func parseFlags(args []string, out io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("jigcut", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&o.configPath, "config", project.DefaultConfigPath(), "application config file")
	fs.StringVar(&o.puzzleDir, "puzzles", project.DefaultPuzzleDir(), "directory of saved puzzles")
	fs.StringVar(&o.load, "load", "", "saved puzzle file to restore")
	fs.BoolVar(&o.list, "list", false, "list saved puzzles and exit")

	fs.StringVar(&o.id, "id", "", "puzzle id, seeds the piece layout (random when empty)")
	fs.IntVar(&o.cols, "cols", 0, "pieces per width (config default when 0)")
	fs.IntVar(&o.rows, "rows", 0, "pieces per height (config default when 0)")
	fs.Float64Var(&o.side, "side", 0, "piece side size in mm (config default when 0)")
	fs.Float64Var(&o.fraction, "fraction", 0, "connection activation area fraction (config default when 0)")

	fs.StringVar(&o.layout, "layout", "", "manual layout to replay (.json, .csv, .xlsx)")
	fs.BoolVar(&o.spread, "spread", false, "spread loose pieces so none overlap")
	fs.BoolVar(&o.pack, "pack", false, "pack loose pieces into the scatter area instead of shelf rows")
	fs.Float64Var(&o.margin, "margin", -1, "spread margin in mm (config default when negative)")

	fs.StringVar(&o.pdf, "pdf", "", "write the layout PDF")
	fs.StringVar(&o.labels, "labels", "", "write the QR piece labels PDF")
	fs.StringVar(&o.dxf, "dxf", "", "write the DXF cut drawing")
	fs.Float64Var(&o.dxfSpacing, "dxf-spacing", 0, "gap in mm between pieces in the DXF drawing")
	fs.StringVar(&o.gcode, "gcode", "", "write the CNC program")
	fs.StringVar(&o.profile, "profile", "", "G-code profile: "+strings.Join(model.GetProfileNames(), ", "))
	fs.StringVar(&o.xlsx, "xlsx", "", "write piece positions as XLSX")
	fs.StringVar(&o.backup, "backup", "", "write config and all saved puzzles to a backup file")
	fs.StringVar(&o.restore, "restore", "", "restore the puzzles of a backup file into the puzzle directory and exit")

	fs.StringVar(&o.save, "save", "", "save the puzzle to this file (default: puzzle directory when auto-save is on)")
	fs.StringVar(&o.logLevel, "log-level", "", "debug|info|warn|error (config default when empty)")

	err := fs.Parse(args)
	return o, err
}

func run(args []string, out io.Writer) error {
	o, err := parseFlags(args, out)
	if err != nil {
		return err
	}

	config, err := project.LoadAppConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setLogLevel(o.logLevel, config.LogLevel)

	if o.list {
		return listPuzzles(out, o.puzzleDir)
	}
	if o.restore != "" {
		return restoreBackup(out, o, config)
	}

	recorder := project.NewRecorder()
	logger := log.With().Str("module", "puzzle").Logger()
	opts := puzzle.Options{Logger: &logger}
	recorder.Attach(&opts)

	pz, err := openPuzzle(o, config, opts)
	if err != nil {
		return err
	}
	if err := recorder.Reset(pz); err != nil {
		return err
	}
	changed := o.load == ""

	if o.layout != "" {
		if err := replayLayout(pz, o.layout); err != nil {
			return err
		}
		changed = true
	}

	if o.spread || o.pack {
		margin := o.margin
		if margin < 0 {
			margin = config.DefaultSpreadMargin
		}
		var place puzzle.PlacementFunc
		if o.pack {
			place = engine.SpreadPlacement(pz, pz.ScatterArea(), margin)
		}
		if err := pz.SpreadPieces(margin, place); err != nil {
			return fmt.Errorf("failed to spread pieces: %w", err)
		}
	}

	cols, rows := pz.GridSize()
	fmt.Fprintf(out, "puzzle %s: %d x %d pieces, %d loose items, progress %d%%\n",
		pz.ID(), cols, rows, len(pz.Pieces()), pz.CompletenessProgress())

	if err := writeExports(o, config, pz, recorder, out); err != nil {
		return err
	}

	savePath := o.save
	if savePath == "" && config.AutoSave && (changed || recorder.Dirty()) {
		savePath = project.PuzzlePath(o.puzzleDir, pz.ID())
	}
	if savePath != "" {
		if err := recorder.Save(savePath); err != nil {
			return err
		}
		fmt.Fprintf(out, "saved %s\n", savePath)
		config.AddRecentPuzzle(pz.ID())
		if err := project.SaveAppConfig(o.configPath, config); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}

	if o.backup != "" {
		puzzles, err := project.ListPuzzles(o.puzzleDir)
		if err != nil {
			return fmt.Errorf("failed to list puzzles: %w", err)
		}
		if err := project.ExportAllData(o.backup, config, puzzles); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		fmt.Fprintf(out, "backup %s: %d puzzles\n", o.backup, len(puzzles))
	}
	return nil
}

func setLogLevel(flagLevel, configLevel string) {
	name := flagLevel
	if name == "" {
		name = configLevel
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// openPuzzle restores the puzzle named by -load or creates a new one from
// the config defaults and flag overrides.
func openPuzzle(o options, config model.AppConfig, opts puzzle.Options) (*puzzle.Puzzle, error) {
	if o.load != "" {
		saved, err := project.LoadPuzzle(o.load)
		if err != nil {
			return nil, err
		}
		pz, err := project.RestorePuzzle(saved, opts)
		if err != nil {
			return nil, err
		}
		log.Info().Str("puzzle", pz.ID()).Str("path", o.load).Msg("puzzle restored")
		return pz, nil
	}

	settings := model.NewPuzzleSettings()
	config.ApplyToSettings(&settings)
	if o.id != "" {
		settings.ID = o.id
	}
	if o.cols > 0 {
		settings.NumberOfPiecesPerWidth = o.cols
	}
	if o.rows > 0 {
		settings.NumberOfPiecesPerHeight = o.rows
	}
	if o.side > 0 {
		settings.PieceSideSize = o.side
	}
	if o.fraction > 0 {
		settings.ConnectionActivationAreaSideSizeFraction = o.fraction
	}

	base := puzzle.OptionsFromSettings(settings)
	base.OnDirty = opts.OnDirty
	base.OnPieceRelease = opts.OnPieceRelease
	base.OnGroupOfPiecesRelease = opts.OnGroupOfPiecesRelease
	base.OnChangeProgress = opts.OnChangeProgress
	base.Logger = opts.Logger

	pz, err := puzzle.New(base)
	if err != nil {
		return nil, err
	}
	log.Info().Str("puzzle", pz.ID()).Int("pieces", settings.PieceCount()).Msg("puzzle created")
	return pz, nil
}

func replayLayout(pz *puzzle.Puzzle, path string) error {
	result := importer.ImportFile(path)
	for _, w := range result.Warnings {
		log.Warn().Str("path", path).Msg(w)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("layout %s: %s", filepath.Base(path), strings.Join(result.Errors, "; "))
	}
	if err := pz.MovePiecesToManualInitialPositions(result.Positions); err != nil {
		return fmt.Errorf("failed to replay layout: %w", err)
	}
	log.Info().Str("path", path).Int("positions", len(result.Positions)).Msg("layout replayed")
	return nil
}

func writeExports(o options, config model.AppConfig, pz *puzzle.Puzzle, recorder *project.Recorder, out io.Writer) error {
	if o.pdf != "" {
		if err := export.ExportLayoutPDF(o.pdf, pz); err != nil {
			return fmt.Errorf("failed to export layout PDF: %w", err)
		}
		fmt.Fprintf(out, "layout %s\n", o.pdf)
	}

	if o.labels != "" {
		if err := export.ExportLabels(o.labels, pz); err != nil {
			return fmt.Errorf("failed to export labels: %w", err)
		}
		fmt.Fprintf(out, "labels %s\n", o.labels)
	}

	outlines := shape.Assembled(pz)
	if o.dxf != "" {
		if err := export.ExportDXF(o.dxf, outlines, o.dxfSpacing); err != nil {
			return err
		}
		if o.dxfSpacing <= 0 {
			fmt.Fprintf(out, "drawing %s\n", o.dxf)
		} else {
			// Spaced pieces share no edges, so every piece reads back as one contour.
			check := importer.ImportDXF(o.dxf)
			for _, w := range check.Warnings {
				log.Warn().Str("file", o.dxf).Msg(w)
			}
			if len(check.Shapes) != len(outlines) {
				return fmt.Errorf("drawing %s reads back %d shapes for %d pieces: %v",
					o.dxf, len(check.Shapes), len(outlines), check.Errors)
			}
			fmt.Fprintf(out, "drawing %s: %d closed shapes\n", o.dxf, len(check.Shapes))
		}
	}

	if o.gcode != "" {
		cut := config.Cut
		if o.profile != "" {
			cut.GCodeProfile = o.profile
		}
		code := gcode.New(cut).Generate(pz.ID(), outlines)
		if err := os.WriteFile(o.gcode, []byte(code), 0644); err != nil {
			return fmt.Errorf("failed to write G-code: %w", err)
		}
		s := gcode.Summarize(gcode.Parse(code))
		fmt.Fprintf(out, "program %s: %d loops, %.0f mm cut\n", o.gcode, s.Plunges, s.CutLength)
	}

	if o.xlsx != "" {
		if err := export.ExportPositionsXLSX(o.xlsx, recorder.Positions()); err != nil {
			return err
		}
		fmt.Fprintf(out, "positions %s\n", o.xlsx)
	}
	return nil
}

// restoreBackup copies the puzzles of a backup into the puzzle directory and
// adds them to the recent list.
func restoreBackup(out io.Writer, o options, config model.AppConfig) error {
	backup, err := project.ImportAllData(o.restore)
	if err != nil {
		return err
	}
	n, err := project.RestoreBackup(o.puzzleDir, backup)
	if err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	for i := len(backup.Puzzles) - 1; i >= 0; i-- {
		config.AddRecentPuzzle(backup.Puzzles[i].Settings.ID)
	}
	if err := project.SaveAppConfig(o.configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(out, "restored %s: %d puzzles\n", o.restore, n)
	return nil
}

func listPuzzles(out io.Writer, dir string) error {
	puzzles, err := project.ListPuzzles(dir)
	if err != nil {
		return err
	}
	if len(puzzles) == 0 {
		fmt.Fprintln(out, "no saved puzzles")
		return nil
	}
	for _, p := range puzzles {
		fmt.Fprintf(out, "%s  %dx%d  %3d%%  %s\n", p.Settings.ID,
			p.Settings.NumberOfPiecesPerWidth, p.Settings.NumberOfPiecesPerHeight,
			p.CompletenessProgress, p.UpdatedAt)
	}
	return nil
}
