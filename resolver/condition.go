package resolver

import (
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/registry"
	"github.com/knightfall/knightfall/symbolic"
)

// evalConditional implements SymbolResolver::handle_int_cond_op: evaluate both arms as if each
// were independently assigned to the ternary's own result, then join the two resulting states.
// Only integral-typed ternaries are handled precisely, matching the source's
// `type->isIntegralOrEnumerationType()` guard; other result types fall through unresolved.
func (r *Resolver) evalConditional(ctx *registry.Context, cond frontend.ConditionalExpr) (symbolic.SymExpr, *registry.Context) {
	if cond.Type() == nil || cond.Type().Kind() != frontend.TypeInt {
		return nil, ctx
	}

	trueVal, ctxAfterCond := r.EvalOrConjure(ctx, cond.True(), "cond-true")
	falseVal, ctxAfterCond := r.EvalOrConjure(ctxAfterCond, cond.False(), "cond-false")

	trueState := r.assign(ctxAfterCond, assignTarget{stmt: cond}, frontend.BinaryAssign, nil, trueVal)
	falseState := r.assign(ctxAfterCond, assignTarget{stmt: cond}, frontend.BinaryAssign, nil, falseVal)

	joined := trueState.State.Join(falseState.State, ctxAfterCond.LocCtx)
	finalCtx := ctxAfterCond.WithState(joined)
	v, _ := finalCtx.State.GetStmtSexpr(cond, finalCtx.Frame)
	return v, finalCtx
}

// FilterCondition implements SymbolResolver::filter_condition: narrow ctx.State along the branch
// identified by isTrueBranch, raising a LinearNumericalAssumptionEvent when cond lifts to a
// zvar-vs-zero, zvar-vs-zvar, or zvar-vs-znum comparison, or driving the state straight to bottom
// when cond is a constant that contradicts the branch taken.
func (r *Resolver) FilterCondition(ctx *registry.Context, cond frontend.Stmt, isTrueBranch bool) *registry.Context {
	sexpr, ctx2 := r.conditionSexpr(ctx, cond)
	if sexpr == nil {
		return ctx2
	}

	if zv, ok := AsZVariable(sexpr); ok {
		op := numeric.OpNE
		if !isTrueBranch {
			op = numeric.OpEQ
		}
		c := numeric.NewZLinearConstraint(numeric.NewZVarExpr(zv), numeric.NewZLinearExpr(0), op)
		ctx2.Raise(registry.LinearNumericalAssumptionEvent{Constraint: c, State: ctx2.State})
		ctx2 = ctx2.WithState(ctx2.State.AddZLinearConstraint(c))
	} else if n, ok := AsZNum(sexpr); ok {
		contradiction := (n == 0 && isTrueBranch) || (n != 0 && !isTrueBranch)
		if contradiction {
			ctx2 = ctx2.WithState(ctx2.State.SetToBottom())
		}
	} else if bin, ok := sexpr.(*symbolic.BinarySymExpr); ok && bin.Opcode.IsComparison() {
		ctx2 = r.filterComparison(ctx2, bin, isTrueBranch)
	}

	boolAssertion := r.mgr.GetScalarInt(boolVal(isTrueBranch), cond.Type())
	return ctx2.WithState(ctx2.State.SetStmtSexpr(cond, ctx2.Frame, boolAssertion))
}

func boolVal(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// conditionSexpr implements get_condition_sexpr: a top-level comparison condition is lifted to a
// fresh BinarySymExpr over its operands' sexprs (so filterComparison can inspect the operator and
// operands precisely), rather than relying on whatever (possibly already-conjured) sexpr the
// comparison expression itself carries.
func (r *Resolver) conditionSexpr(ctx *registry.Context, cond frontend.Stmt) (symbolic.SymExpr, *registry.Context) {
	if bin, ok := cond.(frontend.BinaryExpr); ok && bin.Opcode().IsComparison() {
		lhs, ctx2 := r.EvalOrConjure(ctx, bin.LHS(), "cond-lhs")
		rhs, ctx3 := r.EvalOrConjure(ctx2, bin.RHS(), "cond-rhs")
		return r.mgr.GetBinarySymExpr(lhs, rhs, bin.Opcode(), bin.Type()), ctx3
	}
	return r.EvalOrConjure(ctx, cond, "cond")
}

// filterComparison implements the `BinarySymExpr` branch of filter_condition: lhs OP rhs, where
// either side may be a ZVariable or a constant.
func (r *Resolver) filterComparison(ctx *registry.Context, bin *symbolic.BinarySymExpr, isTrueBranch bool) *registry.Context {
	op := bin.Opcode
	if !isTrueBranch {
		op = op.Negate()
	}

	lhsVar, lhsIsVar := AsZVariable(bin.LHS)
	rhsVar, rhsIsVar := AsZVariable(bin.RHS)
	lhsNum, lhsIsNum := AsZNum(bin.LHS)
	rhsNum, rhsIsNum := AsZNum(bin.RHS)

	var c numeric.ZLinearConstraint
	switch {
	case lhsIsVar && rhsIsVar:
		c = numeric.NewZLinearConstraint(numeric.NewZVarExpr(lhsVar), numeric.NewZVarExpr(rhsVar), toZOp(op))
	case lhsIsVar && rhsIsNum:
		c = numeric.NewZLinearConstraint(numeric.NewZVarExpr(lhsVar), numeric.NewZLinearExpr(rhsNum), toZOp(op))
	case lhsIsNum && rhsIsVar:
		c = numeric.NewZLinearConstraint(numeric.NewZLinearExpr(lhsNum), numeric.NewZVarExpr(rhsVar), toZOp(op))
	default:
		return ctx
	}

	ctx.Raise(registry.LinearNumericalAssumptionEvent{Constraint: c, State: ctx.State})
	return ctx.WithState(ctx.State.AddZLinearConstraint(c))
}

func toZOp(op frontend.BinaryOpcode) numeric.ZConstraintOp {
	switch op {
	case frontend.BinaryEQ:
		return numeric.OpEQ
	case frontend.BinaryNE:
		return numeric.OpNE
	case frontend.BinaryLT:
		return numeric.OpLT
	case frontend.BinaryLE:
		return numeric.OpLE
	case frontend.BinaryGT:
		return numeric.OpGT
	case frontend.BinaryGE:
		return numeric.OpGE
	default:
		return numeric.OpEQ
	}
}
