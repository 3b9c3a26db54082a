package resolver

import (
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/registry"
	"github.com/knightfall/knightfall/state"
	"github.com/knightfall/knightfall/symbolic"
)

// assignTarget is the Go reshaping of assign_resolver.cpp's AssignmentContext union: an
// assignment either writes a named variable's region, or (for a sub-expression with no region of
// its own, e.g. the overall value of a nested `a = b` used as an expression) writes a stmt's own
// sexpr. Exactly one of the two is set, mirroring the knight_assert_msg invariant in
// AssignResolver::resolve ("either stmt or treg should be set").
type assignTarget struct {
	region *symbolic.MemRegion
	stmt   frontend.Stmt
}

// compoundBase maps a compound-assignment opcode to its underlying binary opcode, mirroring
// clang::BinaryOperator::getOpForCompoundAssignment.
func compoundBase(op frontend.BinaryOpcode) frontend.BinaryOpcode {
	switch op {
	case frontend.BinaryAddAssign:
		return frontend.BinaryAdd
	case frontend.BinarySubAssign:
		return frontend.BinarySub
	case frontend.BinaryMulAssign:
		return frontend.BinaryMul
	case frontend.BinaryDivAssign:
		return frontend.BinaryDiv
	default:
		return frontend.BinaryInvalid
	}
}

// assign implements AssignResolver::resolve: compute the assignment's result symbol, dispatch the
// appropriate numerical/pointer event, and write it into target's region (SetRegionDef) or stmt
// sexpr (SetStmtSexpr). lhsSexpr is nil for a direct (non-compound) assignment.
func (r *Resolver) assign(ctx *registry.Context, target assignTarget, op frontend.BinaryOpcode, lhsSexpr, rhsSexpr symbolic.SymExpr) *registry.Context {
	isDirect := op == frontend.BinaryAssign
	typ := rhsSexpr.Type()

	var binarySexpr symbolic.SymExpr
	effectiveOp := op
	if isDirect {
		binarySexpr = rhsSexpr
	} else {
		effectiveOp = compoundBase(op)
		binarySexpr = r.mgr.GetBinarySymExpr(lhsSexpr, rhsSexpr, effectiveOp, typ)
	}

	// resSym is a symbol fresh to this write: for a region target, hash-consed on (region,
	// loc_ctx, external=false) so every distinct write site gets its own value (SymbolManager::
	// get_region_def in the source); for a stmt target, hash-consed on the result statement.
	var resSym symbolic.SymExpr
	if target.region != nil {
		resSym = r.mgr.GetRegionSymVal(target.region, ctx.LocCtx, false)
	} else {
		resSym = r.mgr.GetSymbolConjured(target.stmt, typ, ctx.Frame, "assign-result")
	}

	if typ != nil && typ.Kind() == frontend.TypePointer {
		ctx = r.handlePointerAssign(ctx, resSym, binarySexpr)
	} else if typ != nil && typ.Kind().IsValidForSymExpr() && typ.Kind() != frontend.TypePointer {
		ctx = r.handleIntAssign(ctx, resSym, isDirect, effectiveOp, lhsSexpr, rhsSexpr, binarySexpr)
	}

	if target.region != nil {
		def := state.RegionDef{Value: resSym, LocCtx: ctx.LocCtx}
		return ctx.WithState(ctx.State.SetRegionDef(target.region, ctx.Frame, def))
	}
	return ctx.WithState(ctx.State.SetStmtSexpr(target.stmt, ctx.Frame, resSym))
}

// handleIntAssign implements AssignResolver::handle_int_assign: relate the fresh result variable x
// to whatever linear combination of lhs/rhs it was derived from, and fold that relation into the
// numeric domain via an equality constraint.
func (r *Resolver) handleIntAssign(ctx *registry.Context, resSym symbolic.SymExpr, isDirect bool, op frontend.BinaryOpcode, lhsSexpr, rhsSexpr symbolic.SymExpr, binarySexpr symbolic.SymExpr) *registry.Context {
	x, ok := AsZVariable(resSym)
	if !ok {
		return ctx
	}

	if lin, ok := r.linearize(op, isDirect, lhsSexpr, rhsSexpr, binarySexpr); ok {
		ctx.Raise(registry.LinearNumericalAssignEvent{Target: x, Expr: lin, State: ctx.State})
		c := numeric.NewZLinearConstraint(numeric.NewZVarExpr(x), lin, numeric.OpEQ)
		return ctx.WithState(ctx.State.AddZLinearConstraint(c))
	}
	return ctx
}

// linearize computes, where possible, the linear expression the assignment's right-hand side
// reduces to -- the union of ZVarAssignBinaryVarVar / ZVarAssignBinaryVarNum / ZVarAssignZNum /
// ZVarAssignZVar / ZVarAssignZLinearExpr cases of the source's handle_int_assign /
// handle_int_non_assign_binary_operation, folded into one helper since a ZLinearExpr already
// represents every one of those shapes uniformly. Only BinaryAdd/BinarySub combinations of two
// linear operands are exactly representable; other operators (Mul/Div/Rem) are sound to skip
// (the domain stays conservative rather than recording a false linear fact).
func (r *Resolver) linearize(op frontend.BinaryOpcode, isDirect bool, lhsSexpr, rhsSexpr, binarySexpr symbolic.SymExpr) (numeric.ZLinearExpr, bool) {
	if isDirect {
		return r.exprOf(binarySexpr)
	}
	if op != frontend.BinaryAdd && op != frontend.BinarySub {
		return r.exprOf(binarySexpr)
	}
	lhs, lok := r.exprOf(lhsSexpr)
	rhs, rok := r.exprOf(rhsSexpr)
	if !lok || !rok {
		return r.exprOf(binarySexpr)
	}
	if op == frontend.BinarySub {
		return lhs.Sub(rhs), true
	}
	return lhs.Add(rhs), true
}

// exprOf lifts a SymExpr to a ZLinearExpr when it is exactly a variable or a constant.
func (r *Resolver) exprOf(e symbolic.SymExpr) (numeric.ZLinearExpr, bool) {
	if e == nil {
		return numeric.ZLinearExpr{}, false
	}
	if v, ok := AsZVariable(e); ok {
		return numeric.NewZVarExpr(v), true
	}
	if n, ok := AsZNum(e); ok {
		return numeric.NewZLinearExpr(n), true
	}
	return numeric.ZLinearExpr{}, false
}
