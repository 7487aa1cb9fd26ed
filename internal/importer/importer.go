// Package importer reads manual piece layouts from CSV, Excel and JSON files
// and piece outlines back from DXF cut drawings. Tabular imports support
// automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Positions []model.PiecePosition
	Errors    []string
	Warnings  []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	ID int
	X  int
	Y  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"id": {"id", "piece", "piece id", "piece_id", "name", "label"},
	"x":  {"x", "pos x", "position x", "position_x", "left"},
	"y":  {"y", "pos y", "position y", "position_y", "top"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping id, x, y and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{ID: -1, X: -1, Y: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "id":
					if mapping.ID == -1 {
						mapping.ID = i
					}
				case "x":
					if mapping.X == -1 {
						mapping.X = i
					}
				case "y":
					if mapping.Y == -1 {
						mapping.Y = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{ID: 0, X: 1, Y: 2}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a position from a row. Returns the record or an error message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.PiecePosition, string) {
	id := getCell(row, mapping.ID)
	if id == "" {
		return model.PiecePosition{}, fmt.Sprintf("%s: Missing piece id", rowLabel)
	}

	xStr := getCell(row, mapping.X)
	x, err := strconv.ParseFloat(xStr, 64)
	if err != nil {
		return model.PiecePosition{}, fmt.Sprintf("%s: Invalid x '%s'", rowLabel, xStr)
	}
	yStr := getCell(row, mapping.Y)
	y, err := strconv.ParseFloat(yStr, 64)
	if err != nil {
		return model.PiecePosition{}, fmt.Sprintf("%s: Invalid y '%s'", rowLabel, yStr)
	}

	return model.PiecePosition{ID: id, Position: geom.Point{X: x, Y: y}}, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportFile picks the importer from the file extension: .csv, .xlsx/.xls,
// or .json.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ImportCSV(path)
	case ".xlsx", ".xls":
		return ImportExcel(path)
	case ".json":
		return ImportJSON(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type '%s'", filepath.Ext(path))}}
	}
}

// ImportCSV imports piece positions from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports piece positions from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports piece positions from the first sheet of an Excel file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportJSON imports the persisted layout shape: a JSON array of
// {"id": ..., "position": {"x": ..., "y": ...}} records, or a whole saved
// puzzle whose positions are used.
func ImportJSON(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	var positions []model.PiecePosition
	if trimmed[0] == '{' {
		var saved model.SavedPuzzle
		if err := json.Unmarshal(trimmed, &saved); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse JSON: %v", err))
			return result
		}
		positions = saved.Positions
		result.Warnings = append(result.Warnings, "Using positions of saved puzzle")
	} else if err := json.Unmarshal(trimmed, &positions); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse JSON: %v", err))
		return result
	}

	seen := make(map[string]bool, len(positions))
	for i, p := range positions {
		if msg := checkRecord(p, seen, fmt.Sprintf("Record %d", i+1)); msg != "" {
			result.Errors = append(result.Errors, msg)
			continue
		}
		result.Positions = append(result.Positions, p)
	}
	return result
}

// checkRecord rejects records without an id and ids seen before.
func checkRecord(p model.PiecePosition, seen map[string]bool, label string) string {
	if p.ID == "" {
		return fmt.Sprintf("%s: Missing piece id", label)
	}
	if seen[p.ID] {
		return fmt.Sprintf("%s: Duplicate piece id '%s'", label, p.ID)
	}
	seen[p.ID] = true
	return ""
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.ID == -1 {
			missing = append(missing, "ID")
		}
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			// Unrecognized header: skip it but keep the positional mapping.
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	seen := make(map[string]bool)
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		pos, errMsg := parseRow(row, mapping, rowLabel)
		if errMsg == "" {
			errMsg = checkRecord(pos, seen, rowLabel)
		}
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		result.Positions = append(result.Positions, pos)
	}

	return result
}
