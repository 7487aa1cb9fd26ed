// Package gcode turns puzzle piece outlines into a CNC cut program and
// parses such programs back into moves for verification.
package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/JigCut/internal/model"
	"github.com/piwi3910/JigCut/internal/shape"
)

// Generator produces GCode that cuts puzzle pieces out of a board.
type Generator struct {
	Settings model.CutSettings
	profile  model.GCodeProfile
}

func New(settings model.CutSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.GCodeProfile),
	}
}

// Profile returns the post-processor profile in use.
func (g *Generator) Profile() model.GCodeProfile { return g.profile }

// Generate produces one program cutting every outline, in order. The tool
// centre follows the outline itself: neighbouring pieces share the kerf.
func (g *Generator) Generate(puzzleID string, outlines []shape.PieceOutline) string {
	var b strings.Builder

	g.writeHeader(&b, puzzleID, outlines)

	for i, po := range outlines {
		g.writePiece(&b, po, i+1)
	}

	g.writeFooter(&b)
	return b.String()
}

// passDepths returns the depth of every pass, the last one at CutDepth.
func (g *Generator) passDepths() []float64 {
	if g.Settings.PassDepth <= 0 || g.Settings.PassDepth >= g.Settings.CutDepth {
		return []float64{g.Settings.CutDepth}
	}
	numPasses := int(math.Ceil(g.Settings.CutDepth / g.Settings.PassDepth))
	depths := make([]float64, numPasses)
	for pass := 1; pass <= numPasses; pass++ {
		depths[pass-1] = math.Min(float64(pass)*g.Settings.PassDepth, g.Settings.CutDepth)
	}
	return depths
}

func (g *Generator) writeHeader(b *strings.Builder, puzzleID string, outlines []shape.PieceOutline) {
	p := g.profile
	bounds := shape.Bounds(outlines)

	b.WriteString(g.comment(fmt.Sprintf("JigCut GCode, puzzle %s", puzzleID)))
	b.WriteString(g.comment(fmt.Sprintf("Pieces: %d, area: %.1f x %.1f mm", len(outlines), bounds.Width, bounds.Height)))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %d passes", g.Settings.CutDepth, len(g.passDepths()))))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))

	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}
}

// writePiece cuts one closed outline in as many passes as the depth needs.
func (g *Generator) writePiece(b *strings.Builder, po shape.PieceOutline, pieceNum int) {
	lo, hi := po.Outline.BoundingBox()
	b.WriteString(g.comment(fmt.Sprintf("--- Piece %d: %s, column %d, row %d, %.1f x %.1f ---",
		pieceNum, po.ID, po.Column+1, po.Row+1, hi.X-lo.X, hi.Y-lo.Y)))

	pts := po.Outline
	if len(pts) < 3 {
		b.WriteString(g.comment("WARNING: outline has fewer than 3 points, skipping"))
		return
	}

	depths := g.passDepths()
	for pass, depth := range depths {
		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass+1, len(depths), depth)))

		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove,
			g.format(pts[0].X), g.format(pts[0].Y)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove,
			g.format(-depth), g.format(g.Settings.PlungeRate)))

		for i := 1; i < len(pts); i++ {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
				g.format(pts[i].X), g.format(pts[i].Y),
				g.format(g.Settings.FeedRate)))
		}
		// Close the loop
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
			g.format(pts[0].X), g.format(pts[0].Y),
			g.format(g.Settings.FeedRate)))

		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}

	b.WriteString("\n")
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	return fmt.Sprintf(format, v)
}
