// Package knightfall implements the top-level analyzer driver that wires the core's eight
// components together for a single function activation, the way nilaway.go coordinates
// go.uber.org/nilaway's accumulation analyzer into one reportable run. Grounded on
// original_source/analyzer/src/core/analysis_manager.cpp's per-function analysis loop
// (construct the WTO-driven fixpoint, seed it with blockexec's Transfer/Edge, then replay
// pre/post states to the checker pipeline once the fixpoint has converged).
package knightfall

import (
	"fmt"

	"github.com/knightfall/knightfall/blockexec"
	"github.com/knightfall/knightfall/diagnostic"
	"github.com/knightfall/knightfall/fixpoint"
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/internal/zlog"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/registry"
	"github.com/knightfall/knightfall/resolver"
	"github.com/knightfall/knightfall/state"
	"github.com/knightfall/knightfall/symbolic"
	"github.com/knightfall/knightfall/wto"
)

// Run analyzes decl's CFG to a fixpoint using mgr's intern pools and rm's registered analyses/
// checkers, reporting diagnostics into rm's sink. It returns the converged exit-node state.
// Every panic raised while executing decl (an "analyzer bug" or "unmodelled construct" per §7's
// error taxonomy) is recovered here and turned into a fatal diagnostic scoped to decl, so that one
// bad function never aborts the rest of a translation unit's analysis.
func Run(mgr *symbolic.Manager, rm *registry.Manager, opts fixpoint.Options, decl frontend.Decl) (result *state.State, err error) {
	log := zlog.For("knightfall").WithFunction(decl.Name())

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("analyzer bug recovered at function boundary")
			rm.Sink().Add(diagnostic.Diagnostic{
				Level:   diagnostic.LevelFatal,
				Checker: "knightfall",
				Name:    "analyzer-bug",
				Message: fmt.Sprintf("internal error analyzing %s: %v", decl.Name(), rec),
			})
			err = fmt.Errorf("knightfall: panic analyzing %s: %v", decl.Name(), rec)
		}
	}()

	cfg := decl.CFG()
	if cfg == nil {
		return nil, fmt.Errorf("knightfall: %s has no body", decl.Name())
	}

	frame := mgr.GetStackFrame(decl, nil, nil)
	res := resolver.New(mgr)
	engine := blockexec.New(mgr, res, rm, frame)

	entryLoc := mgr.GetLocationContext(frame, cfg.Entry(), -1)
	beginCtx := registry.NewContext(mgr, frame, entryLoc, state.New(), rm.Dispatcher())
	rm.BeginFunction(beginCtx)

	fp := fixpoint.New(cfg, state.Bottom(), opts, engine.Transfer, engine.Edge, thresholdOf(frame), nil)
	fp.Run()

	replayCheckers(engine, fp.WTO().Components)

	exitState := fp.Post(cfg.Exit())
	exitLoc := mgr.GetLocationContext(frame, cfg.Exit(), -1)
	endCtx := registry.NewContext(mgr, frame, exitLoc, exitState, rm.Dispatcher())
	rm.EndFunction(endCtx, cfg.Exit())

	return exitState, nil
}

// replayCheckers performs §4.4's "second WTO traversal" over components (the whole function on the
// outermost call), replaying a cycle head's converged checker observations before its body's, by
// walking the WTO's own nesting structure rather than the plain node order cfg.Nodes() provides.
func replayCheckers(engine *blockexec.Engine, components []wto.Component) {
	for _, c := range components {
		switch cc := c.(type) {
		case wto.Vertex:
			engine.ReplayCheckers(cc.Node)
		case wto.Cycle:
			engine.ReplayCheckers(cc.HeadNode)
			replayCheckers(engine, cc.Body)
		}
	}
}

// thresholdOf returns the ThresholdProvider §4.4's "threshold discovery" step uses for frame's
// function: it recognizes a cycle head whose branch condition compares a resolved variable against
// a constant (e.g. a `for`/`while` header's `i < 10`) and harvests that constant as the widening/
// narrowing threshold for that variable, mirroring the classic widening-with-thresholds technique
// the spec's "Threshold discovery" section describes. A head with no such condition, or whose
// operands haven't resolved to a variable/constant pair (e.g. a non-comparison branch, or a
// condition the resolver hasn't modelled), falls back to ordinary widen/narrow.
func thresholdOf(frame *symbolic.StackFrame) fixpoint.ThresholdProvider {
	return func(head frontend.Node, post *state.State) (map[numeric.ZVariable]int64, bool) {
		cond, ok := head.LastCondition()
		if !ok {
			return nil, false
		}
		bin, ok := cond.(frontend.BinaryExpr)
		if !ok || !bin.Opcode().IsComparison() {
			return nil, false
		}
		zvar, n, ok := thresholdOperands(post, frame, bin)
		if !ok {
			return nil, false
		}
		return map[numeric.ZVariable]int64{zvar: n}, true
	}
}

// thresholdOperands extracts a (variable, constant) pair from a comparison's two already-resolved
// operands, whichever side carries which: `i < 10` and `10 > i` must both harvest the same pair.
func thresholdOperands(post *state.State, frame *symbolic.StackFrame, bin frontend.BinaryExpr) (numeric.ZVariable, int64, bool) {
	lhs, ok := post.GetStmtSexpr(bin.LHS(), frame)
	if !ok {
		return 0, 0, false
	}
	rhs, ok := post.GetStmtSexpr(bin.RHS(), frame)
	if !ok {
		return 0, 0, false
	}
	if zvar, ok := resolver.AsZVariable(lhs); ok {
		if n, ok := resolver.AsZNum(rhs); ok {
			return zvar, n, true
		}
	}
	if zvar, ok := resolver.AsZVariable(rhs); ok {
		if n, ok := resolver.AsZNum(lhs); ok {
			return zvar, n, true
		}
	}
	return 0, 0, false
}
