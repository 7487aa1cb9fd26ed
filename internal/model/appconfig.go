package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new puzzles
	DefaultPiecesPerWidth     int     `json:"default_pieces_per_width"`
	DefaultPiecesPerHeight    int     `json:"default_pieces_per_height"`
	DefaultPieceSideSize      float64 `json:"default_piece_side_size"`
	DefaultActivationFraction float64 `json:"default_activation_fraction"`
	DefaultSpreadMargin       float64 `json:"default_spread_margin"`

	// Defaults applied to cut exports
	Cut CutSettings `json:"cut"`

	AutoSave      bool     `json:"auto_save"`
	RecentPuzzles []string `json:"recent_puzzles"`
	LogLevel      string   `json:"log_level"` // zerolog level name
}

// DefaultAppConfig returns an AppConfig populated with the package defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultPiecesPerWidth:     DefaultPiecesPerWidth,
		DefaultPiecesPerHeight:    DefaultPiecesPerHeight,
		DefaultPieceSideSize:      DefaultPieceSideSize,
		DefaultActivationFraction: DefaultActivationFraction,
		DefaultSpreadMargin:       10,
		Cut:                       DefaultCutSettings(),
		AutoSave:                  true,
		RecentPuzzles:             []string{},
		LogLevel:                  "info",
	}
}

// ApplyToSettings copies the configured defaults into puzzle settings.
// It is used when creating a new puzzle so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *PuzzleSettings) {
	s.NumberOfPiecesPerWidth = c.DefaultPiecesPerWidth
	s.NumberOfPiecesPerHeight = c.DefaultPiecesPerHeight
	s.PieceSideSize = c.DefaultPieceSideSize
	s.ConnectionActivationAreaSideSizeFraction = c.DefaultActivationFraction
}

// maxRecentPuzzles bounds the recent list.
const maxRecentPuzzles = 10

// AddRecentPuzzle moves id to the front of the recent list.
func (c *AppConfig) AddRecentPuzzle(id string) {
	list := []string{id}
	for _, existing := range c.RecentPuzzles {
		if existing != id {
			list = append(list, existing)
		}
	}
	if len(list) > maxRecentPuzzles {
		list = list[:maxRecentPuzzles]
	}
	c.RecentPuzzles = list
}
