package diagnostic

import (
	"sort"
	"sync"
)

// Sink collects diagnostics from every checker invocation across a translation unit, collapsing
// duplicates (§6: "de-duplicates (key = file-path, offset, diagnostic-name, message)"). A Sink is
// safe for concurrent use since §5 allows the CLI to process independent TUs on separate
// goroutines, each potentially reporting into the same Sink.
type Sink struct {
	mu    sync.Mutex
	seen  map[dedupKey]bool
	diags []Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{seen: map[dedupKey]bool{}}
}

// Add records d, dropping it silently if an equal-keyed diagnostic was already recorded.
func (s *Sink) Add(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := d.key()
	if s.seen[k] {
		return
	}
	s.seen[k] = true
	s.diags = append(s.diags, d)
}

// Diagnostics returns every recorded diagnostic in a deterministic order (by file, then offset,
// then name), required for the "deterministic fixpoint ⇒ byte-identical diagnostics" property
// of §8.
func (s *Sink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Range.File != b.Range.File {
			return a.Range.File < b.Range.File
		}
		if a.Range.Offset != b.Range.Offset {
			return a.Range.Offset < b.Range.Offset
		}
		return a.Name < b.Name
	})
	return out
}

// HasErrors reports whether any recorded diagnostic is at LevelError or LevelFatal. The CLI's
// run command turns this into an error, so the process exits with status 1; the CLI uses no
// other non-zero exit status.
func (s *Sink) HasErrors() bool {
	for _, d := range s.Diagnostics() {
		if d.Level == LevelError || d.Level == LevelFatal {
			return true
		}
	}
	return false
}
