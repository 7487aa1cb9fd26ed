package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/JigCut/internal/geom"
	"github.com/piwi3910/JigCut/internal/model"
)

func testSettings(id string) model.PuzzleSettings {
	s := model.NewPuzzleSettings()
	s.ID = id
	s.NumberOfPiecesPerWidth = 2
	s.NumberOfPiecesPerHeight = 1
	return s
}

func TestSaveAndLoadPuzzle(t *testing.T) {
	path := PuzzlePath(t.TempDir(), "p1")
	saved := model.NewSavedPuzzle(testSettings("p1"), []model.PiecePosition{
		{ID: "0", Position: geom.Point{X: 0, Y: 0}},
		{ID: "1", Position: geom.Point{X: 50, Y: 0}},
	}, 100)

	require.NoError(t, SavePuzzle(path, saved))
	assert.Equal(t, "p1.jigcut.json", filepath.Base(path))

	loaded, err := LoadPuzzle(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadPuzzleRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		return path
	}

	_, err := LoadPuzzle(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = LoadPuzzle(write("garbage.json", "{"))
	assert.Error(t, err)

	_, err = LoadPuzzle(write("noversion.json", `{"settings":{}}`))
	assert.Error(t, err)

	_, err = LoadPuzzle(write("future.json", `{"version":"2.0.0"}`))
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = LoadPuzzle(write("badsettings.json", `{"version":"1.2.0","settings":{"id":"x"}}`))
	assert.Error(t, err)
}

func TestListPuzzlesMostRecentFirst(t *testing.T) {
	dir := t.TempDir()

	older := model.NewSavedPuzzle(testSettings("old"), nil, 0)
	older.UpdatedAt = "2024-01-01T00:00:00Z"
	newer := model.NewSavedPuzzle(testSettings("new"), nil, 50)
	newer.UpdatedAt = "2025-06-01T00:00:00Z"
	require.NoError(t, SavePuzzle(PuzzlePath(dir, "old"), older))
	require.NoError(t, SavePuzzle(PuzzlePath(dir, "new"), newer))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	list, err := ListPuzzles(dir)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Settings.ID)
	assert.Equal(t, "old", list[1].Settings.ID)
	assert.NotNil(t, list[1].Positions)

	empty, err := ListPuzzles(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
