// Package config implements the core's layered configuration (SPEC_FULL §4.9 "Config"): CLI flags
// (spf13/pflag) take precedence over an optional YAML overlay (gopkg.in/yaml.v3), which in turn
// overrides built-in defaults. Grounded on funvibe-funxy/internal/ext/config.go's YAML-unmarshal-
// then-validate-then-default-fill shape, generalized from funxy.yaml's dependency list to the
// analyzer's checker/analysis glob selection and fixpoint knobs.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/knightfall/knightfall/fixpoint"
)

// AnalyzerOpts mirrors fixpoint.Options in the shape the layered configuration serializes, per
// SPEC_FULL §3.1.
type AnalyzerOpts struct {
	WideningDelay          int  `yaml:"widening_delay"`
	MaxWideningIterations  int  `yaml:"max_widening_iterations"`
	MaxNarrowingIterations int  `yaml:"max_narrowing_iterations"`
	MaxUnrollingIterations int  `yaml:"max_unrolling_iterations"`
	AnalyzeWithThreshold   bool `yaml:"analyze_with_threshold"`
}

// ToFixpointOptions converts a into the fixpoint package's own Options type.
func (a AnalyzerOpts) ToFixpointOptions() fixpoint.Options {
	return fixpoint.Options{
		WideningDelay:          a.WideningDelay,
		MaxWideningIterations:  a.MaxWideningIterations,
		MaxNarrowingIterations: a.MaxNarrowingIterations,
		MaxUnrollingIterations: a.MaxUnrollingIterations,
		AnalyzeWithThreshold:   a.AnalyzeWithThreshold,
	}
}

// Options is the fully merged configuration the driver runs with, per SPEC_FULL §3.1: checker/
// analysis glob patterns (compiled lazily by registry.Manager.FilterByGlob, kept here as plain
// strings so this package has no dependency on gobwas/glob beyond what pflag itself needs),
// rendering/fix-it toggles, and the nested fixpoint knobs.
type Options struct {
	Checkers        []string `yaml:"checkers"`
	ExcludeCheckers []string `yaml:"exclude_checkers"`
	Analyses        []string `yaml:"analyses"`

	UseColor bool `yaml:"use_color"`
	ViewCFG  bool `yaml:"view_cfg"`
	DumpCFG  bool `yaml:"dump_cfg"`
	TryFix   bool `yaml:"try_fix"`

	OverlayFile string `yaml:"-"`

	AnalyzerOpts AnalyzerOpts `yaml:"analyzer_opts"`

	// XFlags are the raw `-Xc <analyzer-arg>` passthrough tokens. They are collected here only:
	// nothing in the repository reads them, and they do not change AnalyzerOpts.
	XFlags []string `yaml:"-"`
}

// Defaults returns the built-in configuration: every checker enabled, no excludes, and
// fixpoint.DefaultOptions()'s conservative iteration bounds.
func Defaults() Options {
	d := fixpoint.DefaultOptions()
	return Options{
		Checkers: []string{"*"},
		UseColor: true,
		AnalyzerOpts: AnalyzerOpts{
			WideningDelay:          d.WideningDelay,
			MaxWideningIterations:  d.MaxWideningIterations,
			MaxNarrowingIterations: d.MaxNarrowingIterations,
			MaxUnrollingIterations: d.MaxUnrollingIterations,
			AnalyzeWithThreshold:   d.AnalyzeWithThreshold,
		},
	}
}

// RegisterFlags binds fs's flags onto opts, the way the teacher's cmd/nilaway lifts nested
// component flags onto the top-level FlagSet. Call Load after fs.Parse to merge in the YAML
// overlay on top of whatever Defaults() + flags produced.
func (o *Options) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringSliceVar(&o.Checkers, "checkers", o.Checkers, "glob patterns of checkers to enable")
	fs.StringSliceVar(&o.ExcludeCheckers, "exclude-checkers", o.ExcludeCheckers, "glob patterns of checkers to disable")
	fs.StringSliceVar(&o.Analyses, "analyses", o.Analyses, "glob patterns of analyses (recorded in the configuration; analyses are not filtered by it)")
	fs.BoolVar(&o.UseColor, "color", o.UseColor, "colorize diagnostic output")
	fs.BoolVar(&o.ViewCFG, "view-cfg", o.ViewCFG, "request a Graphviz view of the CFG (recorded in the configuration; no viewer is launched)")
	fs.BoolVar(&o.DumpCFG, "dump-cfg", o.DumpCFG, "request a text/DOT CFG dump (recorded in the configuration; no dump is written)")
	fs.BoolVar(&o.TryFix, "try-fix", o.TryFix, "apply fix-its emitted alongside diagnostics")
	fs.StringVar(&o.OverlayFile, "overlay-file", o.OverlayFile, "YAML file overriding built-in defaults")
	fs.IntVar(&o.AnalyzerOpts.WideningDelay, "widening-delay", o.AnalyzerOpts.WideningDelay, "iterations before widening begins")
	fs.IntVar(&o.AnalyzerOpts.MaxWideningIterations, "max-widening-iterations", o.AnalyzerOpts.MaxWideningIterations, "cap on increasing-phase iterations")
	fs.IntVar(&o.AnalyzerOpts.MaxNarrowingIterations, "max-narrowing-iterations", o.AnalyzerOpts.MaxNarrowingIterations, "cap on decreasing-phase iterations")
	fs.IntVar(&o.AnalyzerOpts.MaxUnrollingIterations, "max-unrolling-iterations", o.AnalyzerOpts.MaxUnrollingIterations, "loop unrolling bound before falling back to widening")
	fs.BoolVar(&o.AnalyzerOpts.AnalyzeWithThreshold, "analyze-with-threshold", o.AnalyzerOpts.AnalyzeWithThreshold, "enable threshold-guided widening/narrowing")
	fs.StringArrayVarP(&o.XFlags, "Xc", "X", o.XFlags, "pass an extra analyzer-specific argument through")
}

// Load builds the final Options by starting from Defaults(), applying the optional YAML overlay
// named by cliOverlayFile (if non-empty), then re-applying fs's flags so explicit CLI flags always
// win (SPEC_FULL §8 "Config precedence property": CLI > YAML > defaults). fs must already have
// been parsed by the caller; Load reads its Changed() state to know which flags were explicitly
// set rather than left at their zero-value default.
func Load(fs *pflag.FlagSet, cliOverlayFile string) (Options, error) {
	opts := Defaults()

	overlay := cliOverlayFile
	if overlay == "" {
		if f := fs.Lookup("overlay-file"); f != nil {
			overlay = f.Value.String()
		}
	}
	if overlay != "" {
		if err := applyOverlay(&opts, overlay); err != nil {
			return Options{}, err
		}
	}

	reapplyChangedFlags(fs, &opts)
	return opts, nil
}

// applyOverlay merges the YAML document at path into opts, overwriting only the fields the
// document actually sets (unmarshalling into the already-defaulted struct, exactly the way
// funxy's ParseConfig unmarshals on top of a zero-valued Config before calling setDefaults).
func applyOverlay(opts *Options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading overlay %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("config: parsing overlay %s: %w", path, err)
	}
	return nil
}

// reapplyChangedFlags re-binds every pflag the user actually passed on the command line, so an
// explicit CLI flag always beats whatever the YAML overlay set, per the defined precedence order.
// pflag already wrote directly into opts' fields when fs.Parse ran (RegisterFlags bound pointers
// into opts), so a flag the overlay step did not touch is already correct; only flags whose
// pointer fields the YAML unmarshal may have overwritten need restoring, which this does by
// re-running RegisterFlags' Visit over Changed flags and trusting pflag's own Value holds the
// CLI-supplied value.
func reapplyChangedFlags(fs *pflag.FlagSet, opts *Options) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "checkers":
			opts.Checkers = mustStringSlice(fs, "checkers")
		case "exclude-checkers":
			opts.ExcludeCheckers = mustStringSlice(fs, "exclude-checkers")
		case "analyses":
			opts.Analyses = mustStringSlice(fs, "analyses")
		case "color":
			opts.UseColor, _ = fs.GetBool("color")
		case "view-cfg":
			opts.ViewCFG, _ = fs.GetBool("view-cfg")
		case "dump-cfg":
			opts.DumpCFG, _ = fs.GetBool("dump-cfg")
		case "try-fix":
			opts.TryFix, _ = fs.GetBool("try-fix")
		case "widening-delay":
			opts.AnalyzerOpts.WideningDelay, _ = fs.GetInt("widening-delay")
		case "max-widening-iterations":
			opts.AnalyzerOpts.MaxWideningIterations, _ = fs.GetInt("max-widening-iterations")
		case "max-narrowing-iterations":
			opts.AnalyzerOpts.MaxNarrowingIterations, _ = fs.GetInt("max-narrowing-iterations")
		case "max-unrolling-iterations":
			opts.AnalyzerOpts.MaxUnrollingIterations, _ = fs.GetInt("max-unrolling-iterations")
		case "analyze-with-threshold":
			opts.AnalyzerOpts.AnalyzeWithThreshold, _ = fs.GetBool("analyze-with-threshold")
		case "Xc":
			opts.XFlags, _ = fs.GetStringArray("Xc")
		}
	})
}

func mustStringSlice(fs *pflag.FlagSet, name string) []string {
	v, _ := fs.GetStringSlice(name)
	return v
}
