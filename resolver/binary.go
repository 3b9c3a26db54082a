package resolver

import (
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/registry"
	"github.com/knightfall/knightfall/symbolic"
)

// evalBinary implements BinaryOpResolver::resolve / handle_binary_operation: dispatch on the
// result type (pointer vs integral) and, within integral, on whether the operator is an
// assignment.
func (r *Resolver) evalBinary(ctx *registry.Context, bin frontend.BinaryExpr) (symbolic.SymExpr, *registry.Context) {
	typ := bin.Type()
	if typ == nil || !typ.Kind().IsValidForSymExpr() {
		r.log.Debug().Msg("binary operator has no symbolic-expression-valid type")
		return nil, ctx
	}

	if typ.Kind() == frontend.TypePointer {
		return r.evalPointerBinary(ctx, bin)
	}

	if bin.Opcode().IsAssignment() {
		return r.evalAssignBinary(ctx, bin)
	}
	return r.evalNonAssignBinary(ctx, bin)
}

// evalAssignBinary implements handle_assign_binary_operation: resolve the lvalue target's region
// (if it has one) and delegate to assign().
func (r *Resolver) evalAssignBinary(ctx *registry.Context, bin frontend.BinaryExpr) (symbolic.SymExpr, *registry.Context) {
	op := bin.Opcode()
	isDirect := op == frontend.BinaryAssign

	var lhsSexpr symbolic.SymExpr
	if !isDirect {
		v, c := r.Eval(ctx, bin.LHS())
		lhsSexpr, ctx = v, c
	}
	rhsSexpr, ctx2 := r.EvalOrConjure(ctx, bin.RHS(), "assign-rhs")
	if rhsSexpr == nil {
		return nil, ctx2
	}

	region, hasRegion := r.regionOf(ctx2, bin.LHS())
	var target assignTarget
	if hasRegion {
		target = assignTarget{region: region}
	} else {
		target = assignTarget{stmt: bin}
	}

	ctx3 := r.assign(ctx2, target, op, lhsSexpr, rhsSexpr)
	v, _ := ctx3.State.GetStmtSexpr(bin, ctx3.Frame)
	if v == nil && hasRegion {
		if def, ok := ctx3.State.GetRegionDef(region, ctx3.Frame); ok {
			v = def.Value
		}
	}
	return v, ctx3
}

// evalNonAssignBinary implements handle_int_non_assign_binary_operation: build the interned
// BinarySymExpr, conjure a result symbol, and -- when both operands lift to linear terms -- raise
// a LinearNumericalAssignEvent and fold the resulting equality into the numeric domain. The result
// memoized for bin is the conjured symbol when the binary expression's worst-case complexity
// exceeds 1 (i.e. it is not itself a leaf), matching the source's complexity-gated choice between
// storing the raw binary_sexpr and storing its conjured stand-in.
func (r *Resolver) evalNonAssignBinary(ctx *registry.Context, bin frontend.BinaryExpr) (symbolic.SymExpr, *registry.Context) {
	lhsSexpr, ctx2 := r.EvalOrConjure(ctx, bin.LHS(), "binop-lhs")
	rhsSexpr, ctx3 := r.EvalOrConjure(ctx2, bin.RHS(), "binop-rhs")

	binarySexpr := r.mgr.GetBinarySymExpr(lhsSexpr, rhsSexpr, bin.Opcode(), bin.Type())
	conjured := r.mgr.GetSymbolConjured(bin, bin.Type(), ctx3.Frame, "binop-result")
	x, xIsVar := AsZVariable(conjured)

	if xIsVar {
		if lin, ok := r.linearize(bin.Opcode(), false, lhsSexpr, rhsSexpr, binarySexpr); ok {
			ctx3.Raise(registry.LinearNumericalAssignEvent{Target: x, Expr: lin, State: ctx3.State})
			c := numeric.NewZLinearConstraint(numeric.NewZVarExpr(x), lin, numeric.OpEQ)
			ctx3 = ctx3.WithState(ctx3.State.AddZLinearConstraint(c))
		}
	}

	result := binarySexpr
	var out symbolic.SymExpr = binarySexpr
	if result.WorstComplexity() > 1 {
		out = conjured
	}
	return out, ctx3.WithState(ctx3.State.SetStmtSexpr(bin, ctx3.Frame, out))
}
