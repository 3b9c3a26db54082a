package registry

import "github.com/knightfall/knightfall/frontend"

// Kind enumerates the built-in analysis identities. Grounded on
// original_source/analyzer/include/analyzer/core/analysis/analyses.hpp's AnalysisKind enum; the
// X-macro table there (events.def/analyses.def, not shipped with the retrieved source) is
// re-expressed as a plain Go slice of descriptors searched linearly on each lookup (see
// analysisDescriptors in manager.go) instead of textual macro expansion.
type Kind int

const (
	KindInvalid Kind = iota
	KindNumerical        // the built-in linear-numerical domain analysis (C1, always present)
	KindPointer          // the built-in pointer/region tracking analysis (§4.8)
	KindDebugInspection  // the debug/dump/reach inspection checker (checkers/inspect), mirroring CheckerKind::DebugInspection
)

// String renders k the way get_analysis_name renders an AnalysisKind.
func (k Kind) String() string {
	switch k {
	case KindNumerical:
		return "numerical"
	case KindPointer:
		return "pointer"
	case KindDebugInspection:
		return "debug-inspection"
	default:
		return "invalid"
	}
}

// Analysis is the per-statement callback surface an analysis implements, mirroring the C++
// source's CheckerBase/AnalysisBase pre/eval/post/begin/end-function hooks (checker_manager.hpp's
// CheckBeginFunctionCallBack / CheckStmtCallBack family), generalized from the C++ template
// callback wrappers into plain Go interface methods.
type Analysis interface {
	Kind() Kind
	Name() string

	// PreAnalyzeStmt runs before the resolver evaluates stmt.
	PreAnalyzeStmt(ctx *Context, stmt frontend.Stmt)
	// EvalStmt runs the analysis's own evaluation of stmt, after the resolver's translation.
	EvalStmt(ctx *Context, stmt frontend.Stmt)
	// PostAnalyzeStmt runs after stmt (and any dependent analyses) have evaluated.
	PostAnalyzeStmt(ctx *Context, stmt frontend.Stmt)

	// AnalyzeBeginFunction runs once, before the fixpoint begins iterating decl's CFG.
	AnalyzeBeginFunction(ctx *Context)
	// AnalyzeEndFunction runs once, at decl's CFG exit node, after the fixpoint has converged.
	AnalyzeEndFunction(ctx *Context, exit frontend.Node)

	// FilterCondition narrows ctx.State along a branch, per §4.5/§4.6: isTrueBranch selects which
	// arm of cond is being entered.
	FilterCondition(ctx *Context, cond frontend.Stmt, isTrueBranch bool) *Context
}

// BaseAnalysis provides no-op defaults for every Analysis method, so a concrete analysis need only
// override the callbacks it cares about -- the Go analogue of the C++ source's CheckerBase
// providing empty virtual hook bodies.
type BaseAnalysis struct{}

func (BaseAnalysis) PreAnalyzeStmt(*Context, frontend.Stmt)       {}
func (BaseAnalysis) EvalStmt(*Context, frontend.Stmt)             {}
func (BaseAnalysis) PostAnalyzeStmt(*Context, frontend.Stmt)      {}
func (BaseAnalysis) AnalyzeBeginFunction(*Context)                {}
func (BaseAnalysis) AnalyzeEndFunction(*Context, frontend.Node)   {}
func (BaseAnalysis) FilterCondition(ctx *Context, _ frontend.Stmt, _ bool) *Context { return ctx }

// Checker is the per-statement callback surface a checker implements. Checkers observe state
// alongside analyses but may only report diagnostics, never mutate state (§4.7: "checkers are
// read-only observers of the converged/iterated state").
type Checker interface {
	Kind() Kind
	Name() string
	// Requires lists the Analysis kinds this checker depends on; the Manager ensures every
	// required analysis is registered and run before this checker's callbacks fire
	// (add_checker_dependency in checker_manager.hpp).
	Requires() []Kind

	PreCheckStmt(ctx *CheckerContext, stmt frontend.Stmt)
	PostCheckStmt(ctx *CheckerContext, stmt frontend.Stmt)
	CheckBeginFunction(ctx *CheckerContext)
	CheckEndFunction(ctx *CheckerContext, exit frontend.Node)
}

// BaseChecker provides no-op defaults for every Checker method.
type BaseChecker struct{}

func (BaseChecker) Requires() []Kind                                  { return nil }
func (BaseChecker) PreCheckStmt(*CheckerContext, frontend.Stmt)        {}
func (BaseChecker) PostCheckStmt(*CheckerContext, frontend.Stmt)       {}
func (BaseChecker) CheckBeginFunction(*CheckerContext)                 {}
func (BaseChecker) CheckEndFunction(*CheckerContext, frontend.Node)    {}
