package export

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/importer"
	"github.com/piwi3910/JigCut/internal/model"
)

func TestExportPositionsXLSX_ReadableAsLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.xlsx")
	positions := []model.PiecePosition{
		{ID: "0", Position: geom.Point{X: -50, Y: 0}},
		{ID: "1", Position: geom.Point{X: 12.5, Y: 80}},
	}

	if err := ExportPositionsXLSX(path, positions); err != nil {
		t.Fatalf("ExportPositionsXLSX returned error: %v", err)
	}

	result := importer.ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected import errors: %v", result.Errors)
	}
	if !reflect.DeepEqual(result.Positions, positions) {
		t.Errorf("expected %v, got %v", positions, result.Positions)
	}
}

func TestExportPositionsXLSX_Empty(t *testing.T) {
	if err := ExportPositionsXLSX(filepath.Join(t.TempDir(), "empty.xlsx"), nil); err == nil {
		t.Fatal("expected error for empty positions")
	}
}
