// Package inspect implements the core's debug inspection checker, used by the six end-to-end
// test scenarios in SPEC_FULL §8 to observe the analyzer's internal state from source: a call to
// knight_dump_zval(expr) reports expr's current abstract value, and a call to knight_reachable()
// reports whether the state at that program point is feasible. Grounded on
// original_source/analyzer/{include/analyzer/core/checker/debug/inspection.hpp,
// src/core/checker/debug/inspection.cpp}'s InspectionChecker, whose post_check_stmt dispatches on
// the callee name of a CallExpr.
package inspect

import (
	"fmt"
	"math"

	"github.com/knightfall/knightfall/diagnostic"
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/registry"
	"github.com/knightfall/knightfall/resolver"
)

const (
	zvalDumperName       = "knight_dump_zval"
	reachabilityDumperName = "knight_reachable"
)

// Checker implements registry.Checker, reporting a note diagnostic for recognized inspection
// calls; a zval dump call with no argument or a non-integral first argument reports nothing. It
// depends on the numerical analysis (KindNumerical) being registered, mirroring
// add_checker_dependency<InspectionChecker, NumericalAnalysis>.
type Checker struct {
	registry.BaseChecker
}

// New returns an inspection Checker.
func New() *Checker { return &Checker{} }

func (*Checker) Kind() registry.Kind { return registry.KindDebugInspection }
func (*Checker) Name() string        { return "debug-inspection" }
func (*Checker) Requires() []registry.Kind {
	return []registry.Kind{registry.KindNumerical}
}

// PostCheckStmt recognizes calls to the two inspection intrinsics, mirroring
// InspectionChecker::post_check_stmt's dispatch on the callee's identifier.
func (c *Checker) PostCheckStmt(ctx *registry.CheckerContext, stmt frontend.Stmt) {
	call, ok := stmt.(frontend.CallExpr)
	if !ok {
		return
	}
	switch call.Callee() {
	case zvalDumperName:
		c.dumpZVal(ctx, call)
	case reachabilityDumperName:
		c.dumpReachability(ctx, call)
	}
}

// dumpZVal mirrors InspectionChecker::dump_zval: resolve the first argument's symbolic value and
// report its constant value, its domain interval (when it lifts to a numeric.ZVariable), or "T"
// when nothing is known.
func (c *Checker) dumpZVal(ctx *registry.CheckerContext, call frontend.CallExpr) {
	args := call.Args()
	if len(args) == 0 {
		return
	}
	arg := args[0]
	if k := arg.Type().Kind(); k != frontend.TypeInt && k != frontend.TypeEnum && k != frontend.TypeBool {
		return
	}
	rng := diagRange(call)

	sexpr, ok := ctx.State.GetStmtSexpr(arg, ctx.Frame)
	if !ok {
		ctx.Diagnose(diagnostic.LevelNote, "dump-zval", "T", rng)
		return
	}

	if n, ok := resolver.AsZNum(sexpr); ok {
		ctx.Diagnose(diagnostic.LevelNote, "dump-zval", fmt.Sprintf("%d", n), rng)
		return
	}

	zvar, ok := resolver.AsZVariable(sexpr)
	if !ok {
		ctx.Diagnose(diagnostic.LevelNote, "dump-zval", "T", rng)
		return
	}

	iv := ctx.State.NumDomain().Interval(zvar)
	ctx.Diagnose(diagnostic.LevelNote, "dump-zval", formatInterval(iv), rng)
}

// dumpReachability mirrors InspectionChecker::dump_reachability.
func (c *Checker) dumpReachability(ctx *registry.CheckerContext, call frontend.CallExpr) {
	msg := "Reachable"
	if ctx.State.IsBottom() {
		msg = "Unreachable"
	}
	ctx.Diagnose(diagnostic.LevelNote, "dump-reachability", msg, diagRange(call))
}

// diagRange converts call's front-end-reported range into a diagnostic.Range, so every
// inspection-checker diagnostic carries a real source location instead of the zero Range (§6
// "Outputs": "a human message, a source range"), and so two distinct call sites that happen to
// produce the same message don't collide under diagnostic/sink.go's (file, offset, name, message)
// de-dup key.
func diagRange(call frontend.CallExpr) diagnostic.Range {
	r := call.Range()
	return diagnostic.Range{File: r.File, Line: r.Line, Col: r.Col, Offset: r.Offset, Length: r.Length}
}

// formatInterval renders iv the way zitv.dump renders a z_interval in dump_zval: "[lo, hi]" with
// an unbounded end spelled "-oo"/"+oo".
func formatInterval(iv numeric.Interval) string {
	if iv.IsBottom() {
		return "⊥"
	}
	lo, hi := "-oo", "+oo"
	if iv.Lo != math.MinInt64 {
		lo = fmt.Sprintf("%d", iv.Lo)
	}
	if iv.Hi != math.MaxInt64 {
		hi = fmt.Sprintf("%d", iv.Hi)
	}
	return fmt.Sprintf("[%s, %s]", lo, hi)
}
