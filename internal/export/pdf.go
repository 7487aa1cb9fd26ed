// Package export writes puzzles to files: a PDF of the current layout, a
// sheet of QR-coded piece labels, a DXF cut drawing and an XLSX table of
// piece positions.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/puzzle"
	"github.com/piwi3910/JigCut/internal/shape"
)

// ErrNothingToRender is returned when a layout sheet received no pieces.
var ErrNothingToRender = errors.New("no pieces to render")

// pieceColor represents an RGB color for a drawn piece.
type pieceColor struct {
	R, G, B int
}

var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 10.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// drawnPiece is one Render call kept until the sheet is written.
type drawnPiece struct {
	id      string
	column  int
	row     int
	outline geom.Outline
}

// LayoutSheet is a puzzle.Renderer that collects the outline of every piece
// it is asked to render, in call order, and writes them to a one-page PDF.
// Later pieces are drawn over earlier ones, so rendering the pile bottom to
// top reproduces what the player sees.
type LayoutSheet struct {
	Title string

	// Target, when non-empty, is drawn as a dashed frame: the area the
	// assembled puzzle occupies.
	Target geom.Area

	pieces []drawnPiece
}

// NewLayoutSheet returns an empty sheet.
func NewLayoutSheet(title string) *LayoutSheet {
	return &LayoutSheet{Title: title}
}

// Render records p's outline at world position at.
func (s *LayoutSheet) Render(p *puzzle.Piece, at geom.Point) error {
	if p == nil {
		return puzzle.ErrNilPiece
	}
	col, row := p.GridCell()
	s.pieces = append(s.pieces, drawnPiece{
		id:      p.ID(),
		column:  col,
		row:     row,
		outline: shape.Outline(p).Translate(at),
	})
	return nil
}

// Rendered returns the ids of the recorded pieces in drawing order.
func (s *LayoutSheet) Rendered() []string {
	ids := make([]string, len(s.pieces))
	for i, dp := range s.pieces {
		ids[i] = dp.id
	}
	return ids
}

// Bounds returns the area covered by the recorded outlines and the target.
func (s *LayoutSheet) Bounds() geom.Area {
	area := s.Target
	for i, dp := range s.pieces {
		lo, hi := dp.outline.BoundingBox()
		a := geom.AreaFromCorners(lo, hi)
		if i == 0 && (s.Target.Width == 0 || s.Target.Height == 0) {
			area = a
			continue
		}
		area = area.Union(a)
	}
	return area
}

// Save writes the sheet to path.
func (s *LayoutSheet) Save(path string, stats string) error {
	if len(s.pieces) == 0 {
		return ErrNothingToRender
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(s.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, s.Title, "", 0, "L", false, 0, "")

	if stats != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(marginLeft, marginTop+headerHeight)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")
	}

	bounds := s.Bounds()
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	scale := math.Min(drawWidth/bounds.Width, drawHeight/bounds.Height)

	canvasW := bounds.Width * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2 - bounds.X*scale
	offsetY := drawAreaTop - bounds.Y*scale
	toPage := func(pt geom.Point) fpdf.PointType {
		return fpdf.PointType{X: offsetX + pt.X*scale, Y: offsetY + pt.Y*scale}
	}

	if s.Target.Width > 0 && s.Target.Height > 0 {
		tl := toPage(s.Target.Origin())
		pdf.SetDrawColor(120, 120, 120)
		pdf.SetLineWidth(0.3)
		pdf.SetDashPattern([]float64{2, 1}, 0)
		pdf.Rect(tl.X, tl.Y, s.Target.Width*scale, s.Target.Height*scale, "D")
		pdf.SetDashPattern([]float64{}, 0)
	}

	for _, dp := range s.pieces {
		col := pieceColors[(dp.row+dp.column)%len(pieceColors)]
		pts := make([]fpdf.PointType, len(dp.outline))
		for i, pt := range dp.outline {
			pts[i] = toPage(pt)
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Polygon(pts, "FD")

		lo, hi := dp.outline.BoundingBox()
		pw, ph := (hi.X-lo.X)*scale, (hi.Y-lo.Y)*scale
		if pw > 8 && ph > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			labelW := pdf.GetStringWidth(dp.id)
			centre := toPage(geom.Point{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2})
			pdf.SetXY(centre.X-labelW/2, centre.Y-2)
			pdf.CellFormat(labelW, 4, dp.id, "", 0, "C", false, 0, "")
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by JigCut", "", 0, "C", false, 0, "")

	return pdf.OutputFileAndClose(path)
}

// ExportLayoutPDF draws the current layout of pz: every atomic piece at its
// world position, stacked like the pile, with the assembled area outlined.
func ExportLayoutPDF(path string, pz *puzzle.Puzzle) error {
	if pz == nil {
		return fmt.Errorf("no puzzle to export")
	}

	w, h := pz.Settings().AssembledSize()
	sheet := NewLayoutSheet(fmt.Sprintf("Puzzle %s", pz.ID()))
	sheet.Target = geom.Area{Width: w, Height: h}

	pieces := pz.AtomicPieces()
	previous := make([]puzzle.Renderer, len(pieces))
	for i, p := range pieces {
		previous[i] = p.Renderer()
		p.SetRenderer(sheet)
	}
	defer func() {
		for i, p := range pieces {
			p.SetRenderer(previous[i])
		}
	}()

	if err := pz.Render(); err != nil {
		return fmt.Errorf("failed to render layout: %w", err)
	}

	cols, rows := pz.GridSize()
	stats := fmt.Sprintf("Pieces: %d (%d x %d) | Loose items: %d | Progress: %d%%",
		len(pieces), cols, rows, len(pz.Pieces()), pz.CompletenessProgress())
	return sheet.Save(path, stats)
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
