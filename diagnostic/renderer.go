package diagnostic

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Renderer writes diagnostics to a terminal, optionally colorized. The color scheme mirrors the
// teacher's own prettyPrintErrorMessage in nilaway.go (a per-token-class ANSI color: red for the
// level tag, cyan for file paths, bold for the "found/must be" nilability phrases there, here
// generalized to the checker name) -- reimplemented with github.com/fatih/color's color.New
// instead of hand-rolled escape codes.
type Renderer struct {
	Out      io.Writer
	UseColor bool
}

// NewRenderer returns a Renderer writing to out.
func NewRenderer(out io.Writer, useColor bool) *Renderer {
	return &Renderer{Out: out, UseColor: useColor}
}

var (
	levelColors = map[Level]*color.Color{
		LevelNote:    color.New(color.FgBlue),
		LevelRemark:  color.New(color.FgCyan),
		LevelWarning: color.New(color.FgYellow, color.Bold),
		LevelError:   color.New(color.FgRed, color.Bold),
		LevelFatal:   color.New(color.FgHiRed, color.Bold),
	}
	rangeColor   = color.New(color.FgCyan)
	checkerColor = color.New(color.FgMagenta)
)

// Render writes a single diagnostic as "<range>: <level>: <message> [<checker>]", followed by its
// notes and fix-it summaries.
func (r *Renderer) Render(d Diagnostic) {
	levelTag := d.Level.String() + ": "
	rangeTag := d.Range.String() + ": "
	checkerTag := ""
	if d.Checker != "" {
		checkerTag = " [" + d.Checker + "]"
	}

	if r.UseColor {
		rangeTag = rangeColor.Sprint(rangeTag)
		levelTag = levelColors[d.Level].Sprint(levelTag)
		if checkerTag != "" {
			checkerTag = checkerColor.Sprint(checkerTag)
		}
	}
	fmt.Fprintf(r.Out, "%s%s%s%s\n", rangeTag, levelTag, d.Message, checkerTag)

	for _, n := range d.Notes {
		fmt.Fprintf(r.Out, "  %s: note: %s\n", n.Range.String(), n.Message)
	}
	for _, f := range d.FixIts {
		fmt.Fprintf(r.Out, "  fix-it: %s@%d: replace %d byte(s) with %q\n", f.File, f.Offset, f.Length, f.Replacement)
	}
}

// RenderAll renders every diagnostic in ds, in order.
func (r *Renderer) RenderAll(ds []Diagnostic) {
	for _, d := range ds {
		r.Render(d)
	}
}
