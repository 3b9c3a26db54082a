package registry

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"

	"github.com/knightfall/knightfall/diagnostic"
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/internal/zlog"
)

// descriptor is one row of the literal table that replaces the C++ source's X-macro-generated
// Kind/Name/ID/Desc lookup functions (events.hpp/analyses.hpp, §"literal table of records" design
// note). ID assignment here is just registration order; the core never serializes it across runs.
type descriptor struct {
	kind Kind
	name string
	desc string
}

// analysisDescriptors is the literal table standing in for the C++ source's analyses.def
// X-macro inclusion: every built-in analysis's Kind/Name/Desc in one place.
var analysisDescriptors = []descriptor{
	{KindNumerical, "numerical", "tracks linear-numerical facts over program variables"},
	{KindPointer, "pointer", "tracks pointer/region identity and arithmetic"},
}

// DescribeKind returns the registered description for k, or "" if k is unknown.
func DescribeKind(k Kind) string {
	for _, d := range analysisDescriptors {
		if d.kind == k {
			return d.desc
		}
	}
	return ""
}

// Manager owns every registered Analysis and Checker for a single run (potentially spanning many
// translation units, since analyses/checkers carry no cross-TU state themselves -- each TU's
// blockexec constructs a fresh Context per function). Grounded on
// original_source/include/dfa/checker_manager.hpp's CheckerManager, generalized to also own
// analyses directly (the pack's distillation folds AnalysisManager and CheckerManager into one).
type Manager struct {
	log zlog.Logger

	analyses      map[Kind]Analysis
	checkers      []Checker
	requiredKinds map[Kind]bool

	dispatcher *Dispatcher
	sink       *diagnostic.Sink
}

// NewManager returns an empty Manager reporting into sink.
func NewManager(sink *diagnostic.Sink) *Manager {
	return &Manager{
		log:           zlog.For("registry"),
		analyses:      map[Kind]Analysis{},
		requiredKinds: map[Kind]bool{},
		dispatcher:    NewDispatcher(),
		sink:          sink,
	}
}

// Dispatcher exposes the event dispatcher, e.g. for the resolver to Subscribe built-in analyses to
// the events it raises.
func (m *Manager) Dispatcher() *Dispatcher { return m.dispatcher }

// Sink exposes the diagnostic sink checkers report into, e.g. for a caller recovering a panic at
// the function boundary to report it as a fatal diagnostic (§7 "Analyzer bug").
func (m *Manager) Sink() *diagnostic.Sink { return m.sink }

// RegisterAnalysis adds a to the manager, keyed by its Kind. Registering the same Kind twice
// replaces the previous registration, mirroring enable_checker's "last registration wins" idiom.
func (m *Manager) RegisterAnalysis(a Analysis) {
	m.analyses[a.Kind()] = a
}

// RegisterChecker adds c to the manager and marks every analysis it Requires() as required, per
// add_checker_dependency in checker_manager.hpp.
func (m *Manager) RegisterChecker(c Checker) {
	m.checkers = append(m.checkers, c)
	for _, k := range c.Requires() {
		m.requiredKinds[k] = true
	}
}

// FilterByGlob retains only the checkers whose Name matches one of the include patterns and
// matches none of the exclude patterns (SPEC_FULL §4.9 "checkers/analyses glob matching" and §8's
// "glob matching property"). A nil include list means "include everything". A pattern that fails
// to compile as a glob makes FilterByGlob return an error without changing the checker set.
func (m *Manager) FilterByGlob(include, exclude []string) error {
	inc, err := compileGlobs(include)
	if err != nil {
		return fmt.Errorf("registry: bad include pattern: %w", err)
	}
	exc, err := compileGlobs(exclude)
	if err != nil {
		return fmt.Errorf("registry: bad exclude pattern: %w", err)
	}

	kept := m.checkers[:0]
	for _, c := range m.checkers {
		if len(inc) > 0 && !anyMatch(inc, c.Name()) {
			continue
		}
		if anyMatch(exc, c.Name()) {
			continue
		}
		kept = append(kept, c)
	}
	m.checkers = kept
	return nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func anyMatch(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ResolveDependencies verifies every analysis a checker requires is registered, per
// add_checker_dependency's contract; unmet dependencies are a configuration error, not a fatal
// analysis bug, so the CLI can report them and exit cleanly (§7 "configuration errors").
func (m *Manager) ResolveDependencies() error {
	for _, c := range m.checkers {
		for _, k := range c.Requires() {
			if _, ok := m.analyses[k]; !ok {
				return fmt.Errorf("registry: checker %q requires analysis %q, which is not registered", c.Name(), k)
			}
		}
	}
	return nil
}

// Analyses returns the registered analyses in a deterministic order (by Kind), for callers that
// need to iterate them (e.g. blockexec's per-statement dispatch).
func (m *Manager) Analyses() []Analysis {
	out := make([]Analysis, 0, len(m.analyses))
	for _, a := range m.analyses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out
}

// Checkers returns the registered (post-filter) checkers in registration order.
func (m *Manager) Checkers() []Checker { return m.checkers }

// PreStmt runs every analysis's PreAnalyzeStmt for stmt under ctx, per §4.7's invocation order
// ("pre hooks fire before the resolver evaluates a statement"). blockexec.Engine.Transfer calls
// this once per fixpoint iteration of stmt's enclosing WTO component, so only analyses -- which
// must keep running every iteration to drive the domain to a fixpoint -- are dispatched here.
// Checker hooks are deliberately not invoked from here; see CheckPreStmt/CheckPostStmt.
func (m *Manager) PreStmt(ctx *Context, stmt frontend.Stmt) {
	for _, a := range m.Analyses() {
		a.PreAnalyzeStmt(ctx, stmt)
	}
}

// PostStmt runs every analysis's PostAnalyzeStmt for stmt under ctx, after the resolver has
// produced stmt's symbolic value. Like PreStmt, this fires once per fixpoint iteration, so
// checker dispatch stays out of it.
func (m *Manager) PostStmt(ctx *Context, stmt frontend.Stmt) {
	for _, a := range m.Analyses() {
		a.PostAnalyzeStmt(ctx, stmt)
	}
}

// CheckPreStmt runs every checker's PreCheckStmt for stmt under ctx. Checkers are read-only
// observers of the converged state (§4.7), so this is only ever called once per stmt, during the
// second WTO traversal a caller performs after the fixpoint has converged (§4.4) -- never from
// blockexec.Engine.Transfer's per-iteration path.
func (m *Manager) CheckPreStmt(ctx *Context, stmt frontend.Stmt) {
	for _, c := range m.checkers {
		c.PreCheckStmt(NewCheckerContext(ctx, c.Name(), m.sink), stmt)
	}
}

// CheckPostStmt runs every checker's PostCheckStmt for stmt under ctx. See CheckPreStmt.
func (m *Manager) CheckPostStmt(ctx *Context, stmt frontend.Stmt) {
	for _, c := range m.checkers {
		c.PostCheckStmt(NewCheckerContext(ctx, c.Name(), m.sink), stmt)
	}
}

// BeginFunction runs every analysis's and checker's begin-function hooks, in that order.
func (m *Manager) BeginFunction(ctx *Context) {
	for _, a := range m.Analyses() {
		a.AnalyzeBeginFunction(ctx)
	}
	for _, c := range m.checkers {
		c.CheckBeginFunction(NewCheckerContext(ctx, c.Name(), m.sink))
	}
}

// EndFunction runs every analysis's and checker's end-function hooks, in that order.
func (m *Manager) EndFunction(ctx *Context, exit frontend.Node) {
	for _, a := range m.Analyses() {
		a.AnalyzeEndFunction(ctx, exit)
	}
	for _, c := range m.checkers {
		c.CheckEndFunction(NewCheckerContext(ctx, c.Name(), m.sink), exit)
	}
}

// FilterCondition threads ctx through every registered analysis's FilterCondition, per §4.5/§4.6:
// each analysis narrows the state it cares about (e.g. the numerical analysis folds a linear
// assumption; the pointer analysis folds a region-identity assumption).
func (m *Manager) FilterCondition(ctx *Context, cond frontend.Stmt, isTrueBranch bool) *Context {
	for _, a := range m.Analyses() {
		ctx = a.FilterCondition(ctx, cond, isTrueBranch)
		if ctx.State.IsBottom() {
			break
		}
	}
	return ctx
}
