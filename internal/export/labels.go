package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/JigCut/internal/puzzle"
)

// LabelInfo holds the data encoded into each piece label's QR code.
type LabelInfo struct {
	PuzzleID string `json:"puzzle"`
	PieceID  string `json:"piece"`
	Column   int    `json:"column"`
	Row      int    `json:"row"`
	Top      string `json:"top"`
	Right    string `json:"right"`
	Bottom   string `json:"bottom"`
	Left     string `json:"left"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per atomic piece in
// row-major order. Each label shows the piece id, its grid cell and its edge
// types, and carries a QR code with the same data as JSON.
func ExportLabels(path string, pz *puzzle.Puzzle) error {
	labels := CollectLabelInfos(pz)
	if len(labels) == 0 {
		return fmt.Errorf("no pieces to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for piece %q: %w", label.PieceID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%s", info.PuzzleID, info.PieceID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, "Piece "+info.PieceID, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("Column %d, row %d", info.Column+1, info.Row+1), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	sides := fmt.Sprintf("T %s  R %s  B %s  L %s", info.Top, info.Right, info.Bottom, info.Left)
	pdf.CellFormat(textW, 3, sides, "", 1, "L", false, 0, "")

	// Puzzle id, truncated to fit
	puzzleID := info.PuzzleID
	if pdf.GetStringWidth(puzzleID) > textW {
		for len(puzzleID) > 0 && pdf.GetStringWidth(puzzleID+"...") > textW {
			puzzleID = puzzleID[:len(puzzleID)-1]
		}
		puzzleID += "..."
	}
	pdf.SetXY(textX, y+labelPadding+12.5)
	pdf.CellFormat(textW, 3, puzzleID, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)

	return nil
}

// CollectLabelInfos extracts label information for every atomic piece of pz,
// row-major.
func CollectLabelInfos(pz *puzzle.Puzzle) []LabelInfo {
	if pz == nil {
		return nil
	}
	var labels []LabelInfo
	for _, p := range pz.AtomicPieces() {
		col, row := p.GridCell()
		labels = append(labels, LabelInfo{
			PuzzleID: pz.ID(),
			PieceID:  p.ID(),
			Column:   col,
			Row:      row,
			Top:      p.SideConnectionType(puzzle.SideTop).String(),
			Right:    p.SideConnectionType(puzzle.SideRight).String(),
			Bottom:   p.SideConnectionType(puzzle.SideBottom).String(),
			Left:     p.SideConnectionType(puzzle.SideLeft).String(),
		})
	}
	return labels
}
