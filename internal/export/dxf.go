package export

import (
	"fmt"

	"github.com/yofu/dxf"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/shape"
)

// CutLayer is the DXF layer holding piece outlines.
const CutLayer = "CUT"

// ExportDXF writes every outline as closed chains of LINE entities on the
// CUT layer. spacing moves piece (column, row) by column*spacing to the
// right and row*spacing down; zero keeps the assembled layout, where
// neighbouring pieces share their cut line.
func ExportDXF(path string, outlines []shape.PieceOutline, spacing float64) error {
	if len(outlines) == 0 {
		return fmt.Errorf("no outlines to export")
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(CutLayer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}

	for _, po := range outlines {
		shift := geom.Point{X: float64(po.Column) * spacing, Y: float64(po.Row) * spacing}
		pts := po.Outline.Translate(shift)
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if a == b {
				continue
			}
			if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
				return fmt.Errorf("failed to write outline of piece %q: %w", po.ID, err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}
