package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/JigCut/internal/model"
)

// PositionsSheet is the name of the sheet written by ExportPositionsXLSX.
const PositionsSheet = "Positions"

// ExportPositionsXLSX writes one row per piece with the header ID, X, Y, so
// that the file can be read back as a manual layout.
func ExportPositionsXLSX(path string, positions []model.PiecePosition) error {
	if len(positions) == 0 {
		return fmt.Errorf("no positions to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), PositionsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]interface{}, 0, len(positions)+1)
	rows = append(rows, []interface{}{"ID", "X", "Y"})
	for _, p := range positions {
		rows = append(rows, []interface{}{p.ID, p.Position.X, p.Position.Y})
	}

	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(PositionsSheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetCellStyle(PositionsSheet, "A1", "C1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save XLSX: %w", err)
	}
	return nil
}
