package model

// CutSettings holds the CNC configuration used to cut a physical puzzle.
type CutSettings struct {
	ToolDiameter float64 `json:"tool_diameter"` // End mill diameter in mm
	FeedRate     float64 `json:"feed_rate"`     // Cutting feed rate mm/min
	PlungeRate   float64 `json:"plunge_rate"`   // Plunge feed rate mm/min
	SpindleSpeed int     `json:"spindle_speed"` // RPM
	SafeZ        float64 `json:"safe_z"`        // Safe retract height mm
	CutDepth     float64 `json:"cut_depth"`     // Total material thickness mm
	PassDepth    float64 `json:"pass_depth"`    // Depth per pass mm

	GCodeProfile string `json:"gcode_profile"`
}

// GCodeProfile defines a post-processor configuration for different CNC controllers.
type GCodeProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	StartCode    []string `json:"start_code"`
	SpindleStart string   `json:"spindle_start"` // e.g. "M3 S%d"
	SpindleStop  string   `json:"spindle_stop"`

	RapidMove string `json:"rapid_move"`
	FeedMove  string `json:"feed_move"`

	EndCode []string `json:"end_code"` // [SafeZ] is replaced by the safe height

	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"` // ")" for parenthesised comments

	DecimalPlaces int `json:"decimal_places"`
}

// Built-in GCode profiles
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// GetProfile returns a GCode profile by name, or the Generic profile if not found.
func GetProfile(name string) GCodeProfile {
	for _, p := range GCodeProfiles {
		if p.Name == name {
			return p
		}
	}
	return GCodeProfiles[len(GCodeProfiles)-1]
}

// GetProfileNames returns a list of all available profile names.
func GetProfileNames() []string {
	names := make([]string, 0, len(GCodeProfiles))
	for _, p := range GCodeProfiles {
		names = append(names, p.Name)
	}
	return names
}

// DefaultCutSettings suits 3mm plywood and a 1mm end mill.
func DefaultCutSettings() CutSettings {
	return CutSettings{
		ToolDiameter: 1.0,
		FeedRate:     600.0,
		PlungeRate:   200.0,
		SpindleSpeed: 18000,
		SafeZ:        5.0,
		CutDepth:     3.0,
		PassDepth:    1.5,
		GCodeProfile: "Generic",
	}
}
