package resolver

import (
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/registry"
	"github.com/knightfall/knightfall/symbolic"
)

// evalUnary implements UnaryOpResolver::resolve: every unary operator the core models delegates to
// an equivalent binary-operator evaluation (UnaryOpResolver::handle_int_unary_operation), except
// `&x` which resolves to the operand's region address directly.
func (r *Resolver) evalUnary(ctx *registry.Context, u frontend.UnaryExpr) (symbolic.SymExpr, *registry.Context) {
	typ := u.Type()
	if typ != nil && typ.Kind() == frontend.TypePointer && u.Opcode() == frontend.UnaryAddrOf {
		return r.evalAddrOf(ctx, u)
	}
	if typ == nil || !typ.Kind().IsValidForSymExpr() {
		return nil, ctx
	}

	switch u.Opcode() {
	case frontend.UnaryNot:
		return r.evalUnaryAsBinary(ctx, u, frontend.BinaryEQ, u.Operand())
	case frontend.UnaryPlus:
		return r.evalUnaryAsBinary(ctx, u, frontend.BinaryAdd, u.Operand())
	case frontend.UnaryMinus:
		return r.evalUnaryAsBinary(ctx, u, frontend.BinarySub, u.Operand())
	case frontend.UnaryPreInc, frontend.UnaryPostInc:
		return r.evalCompoundOne(ctx, u, frontend.BinaryAddAssign)
	case frontend.UnaryPreDec, frontend.UnaryPostDec:
		return r.evalCompoundOne(ctx, u, frontend.BinarySubAssign)
	default:
		return nil, ctx
	}
}

// evalUnaryAsBinary folds a `!x`/`+x`/`-x` unary op into the equivalent `0 OP x` binary op, per
// handle_int_unary_operation's BO_LNot/BO_Plus/BO_Minus cases (which all construct a synthetic
// BinaryOperationContext with a literal-zero operand).
func (r *Resolver) evalUnaryAsBinary(ctx *registry.Context, u frontend.UnaryExpr, op frontend.BinaryOpcode, operand frontend.Stmt) (symbolic.SymExpr, *registry.Context) {
	zero := r.mgr.GetScalarInt(0, u.Type())
	operandVal, ctx2 := r.EvalOrConjure(ctx, operand, "unary-operand")

	binarySexpr := r.mgr.GetBinarySymExpr(zero, operandVal, op, u.Type())
	conjured := r.mgr.GetSymbolConjured(u, u.Type(), ctx2.Frame, "unary-result")
	x, xIsVar := AsZVariable(conjured)

	if xIsVar {
		if lin, ok := r.linearize(op, false, zero, operandVal, binarySexpr); ok {
			ctx2.Raise(registry.LinearNumericalAssignEvent{Target: x, Expr: lin, State: ctx2.State})
			c := numeric.NewZLinearConstraint(numeric.NewZVarExpr(x), lin, numeric.OpEQ)
			ctx2 = ctx2.WithState(ctx2.State.AddZLinearConstraint(c))
		}
	}

	out := binarySexpr
	var v symbolic.SymExpr = binarySexpr
	if out.WorstComplexity() > 1 {
		v = conjured
	}
	return v, ctx2.WithState(ctx2.State.SetStmtSexpr(u, ctx2.Frame, v))
}

// evalCompoundOne folds `++x`/`x++`/`--x`/`x--` into the equivalent `x OP= 1` compound assignment,
// per handle_int_unary_operation's BO_PreInc/BO_PostInc/BO_PreDec/BO_PostDec cases. The core does
// not distinguish pre/post semantics on the abstract value (both leave the variable holding the
// post-increment value in the region; a front end wanting the pre-increment expression value would
// need to memoize it before translation, which is outside this resolver's contract).
func (r *Resolver) evalCompoundOne(ctx *registry.Context, u frontend.UnaryExpr, op frontend.BinaryOpcode) (symbolic.SymExpr, *registry.Context) {
	one := r.mgr.GetScalarInt(1, u.Type())
	lhsSexpr, ctx2 := r.EvalOrConjure(ctx, u.Operand(), "incdec-operand")

	region, hasRegion := r.regionOf(ctx2, u.Operand())
	var target assignTarget
	if hasRegion {
		target = assignTarget{region: region}
	} else {
		target = assignTarget{stmt: u}
	}

	ctx3 := r.assign(ctx2, target, op, lhsSexpr, one)
	if hasRegion {
		if def, ok := ctx3.State.GetRegionDef(region, ctx3.Frame); ok {
			return def.Value, ctx3
		}
	}
	v, _ := ctx3.State.GetStmtSexpr(u, ctx3.Frame)
	return v, ctx3
}
