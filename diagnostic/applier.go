package diagnostic

import (
	"fmt"
	"sort"

	"github.com/knightfall/knightfall/internal/zlog"
	"github.com/knightfall/knightfall/vfs"
)

// Applier rewrites source files in place with the FixIts attached to a set of Diagnostics, the Go
// analogue of DiagnosticReporter::apply_fixes (reporter.hpp): that source collects every
// diagnostic's clang::tooling::Replacements per file and hands them to clang::tooling's
// applyAllReplacements, which rejects overlapping edits; this Applier re-expresses the same
// contract against a plain byte-offset FixIt and vfs.FS, applying edits within a file from the
// highest offset to the lowest so earlier edits' offsets are never invalidated by later ones.
type Applier struct {
	fs  vfs.FS
	log zlog.Logger
}

// NewApplier returns an Applier rewriting files through fs.
func NewApplier(fs vfs.FS) *Applier {
	return &Applier{fs: fs, log: zlog.For("diagnostic.applier")}
}

// Apply rewrites every file touched by diags' FixIts and returns the number of fix-its actually
// applied. A file whose fix-its overlap is left untouched and reported via err, mirroring
// applyAllReplacements' "conflicting replacements" failure rather than silently corrupting the
// file with a best-effort partial application.
func (a *Applier) Apply(diags []Diagnostic) (applied int, err error) {
	byFile := map[string][]FixIt{}
	for _, d := range diags {
		byFile[d.Range.File] = append(byFile[d.Range.File], d.FixIts...)
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		fixes := byFile[file]
		if len(fixes) == 0 {
			continue
		}
		n, applyErr := a.applyToFile(file, fixes)
		applied += n
		if applyErr != nil {
			return applied, applyErr
		}
	}
	return applied, nil
}

func (a *Applier) applyToFile(file string, fixes []FixIt) (int, error) {
	if err := checkNonOverlapping(fixes); err != nil {
		return 0, fmt.Errorf("diagnostic: %s: %w", file, err)
	}

	sort.Slice(fixes, func(i, j int) bool { return fixes[i].Offset > fixes[j].Offset })

	contents, err := a.fs.ReadFile(file)
	if err != nil {
		return 0, fmt.Errorf("diagnostic: reading %s: %w", file, err)
	}

	for _, fx := range fixes {
		if fx.Offset < 0 || fx.Offset+fx.Length > len(contents) {
			return 0, fmt.Errorf("diagnostic: %s: fix-it at offset %d length %d out of bounds", file, fx.Offset, fx.Length)
		}
		out := make([]byte, 0, len(contents)-fx.Length+len(fx.Replacement))
		out = append(out, contents[:fx.Offset]...)
		out = append(out, fx.Replacement...)
		out = append(out, contents[fx.Offset+fx.Length:]...)
		contents = out
	}

	if err := a.fs.WriteFile(file, contents); err != nil {
		return 0, fmt.Errorf("diagnostic: writing %s: %w", file, err)
	}
	a.log.Info().Str("file", file).Int("fixes", len(fixes)).Msg("applied fix-its")
	return len(fixes), nil
}

// checkNonOverlapping reports an error if any two fix-its in fixes touch the same byte range,
// mirroring applyAllReplacements' conflict detection.
func checkNonOverlapping(fixes []FixIt) error {
	sorted := make([]FixIt, len(fixes))
	copy(sorted, fixes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	for i := 1; i < len(sorted); i++ {
		prevEnd := sorted[i-1].Offset + sorted[i-1].Length
		if sorted[i].Offset < prevEnd {
			return fmt.Errorf("overlapping fix-its at offsets %d and %d", sorted[i-1].Offset, sorted[i].Offset)
		}
	}
	return nil
}
