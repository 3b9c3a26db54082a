package resolver

import (
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/registry"
	"github.com/knightfall/knightfall/symbolic"
)

// handlePointerAssign implements AssignResolver::handle_ptr_assign, generalized beyond the
// source's stub (which only asserted `is_direct_assign` and dyn_cast'd binary_sexpr without using
// the result): every pointer-valued assignment is announced via a PointerAssignEvent so checkers
// tracking pointer provenance (e.g. a future use-after-free or null-deref checker) can observe the
// write regardless of whether the assigned value is itself precisely known.
func (r *Resolver) handlePointerAssign(ctx *registry.Context, resSym, binarySexpr symbolic.SymExpr) *registry.Context {
	ctx.Raise(registry.PointerAssignEvent{Target: resSym, State: ctx.State})
	return ctx
}

// evalPointerBinary implements the §4.8 pointer-arithmetic extension to binary_op_resolver.cpp's
// handle_ptr_binary_operation (left as a TODO stub in the retrieved source): ptr+int / int+ptr
// produce a fresh sibling element region, ptr-ptr yields a conjured difference (see
// evalPointerSub), and pointer comparisons resolve via region identity (==/!=) or a conjured
// boolean (ordering).
func (r *Resolver) evalPointerBinary(ctx *registry.Context, bin frontend.BinaryExpr) (symbolic.SymExpr, *registry.Context) {
	if bin.Opcode().IsAssignment() {
		return r.evalAssignBinary(ctx, bin)
	}
	if bin.Opcode().IsComparison() {
		return r.evalPointerComparison(ctx, bin)
	}

	switch bin.Opcode() {
	case frontend.BinaryAdd:
		return r.evalPointerOffset(ctx, bin, bin.LHS(), bin.RHS())
	case frontend.BinarySub:
		return r.evalPointerSub(ctx, bin)
	default:
		r.log.Debug().Msg("unsupported pointer binary operator")
		return nil, ctx
	}
}

// evalPointerOffset implements `p + i` / `i + p`: the result denotes a fresh ElementRegion sibling
// of base's region, keyed on the result statement itself so repeated evaluations of the same
// syntactic expression (within one frame) intern to the same region -- the pointer analogue of the
// numeric domain's "fresh variable per write site" discipline.
func (r *Resolver) evalPointerOffset(ctx *registry.Context, result frontend.BinaryExpr, ptrExpr, intExpr frontend.Stmt) (symbolic.SymExpr, *registry.Context) {
	if ptrExpr.Type() == nil || ptrExpr.Type().Kind() != frontend.TypePointer {
		ptrExpr, intExpr = intExpr, ptrExpr
	}
	baseRegion, ok := r.pointerRegion(ctx, ptrExpr)
	if !ok {
		conj := r.mgr.GetSymbolConjured(result, result.Type(), ctx.Frame, "ptr-offset-unknown-base")
		ctx.Raise(registry.PointerAssignEvent{Target: conj, State: ctx.State})
		return conj, ctx.WithState(ctx.State.SetStmtSexpr(result, ctx.Frame, conj))
	}

	parent := baseRegion
	if baseRegion.RKind == symbolic.RegionElement {
		parent = baseRegion.Parent
	}
	elem := r.mgr.GetRegion(symbolic.RegionElement, parent, result, baseRegion.ValueType)
	addr := r.mgr.GetRegionAddr(elem)
	ctx.Raise(registry.PointerAssignEvent{Target: addr, State: ctx.State})
	return addr, ctx.WithState(ctx.State.SetStmtSexpr(result, ctx.Frame, addr))
}

// evalPointerSub implements `p - q`: when both operands denote sibling ElementRegions of the same
// array, it tries to constrain the result to the linear difference of the statements the two
// regions are keyed on. Element regions made by evalPointerOffset are keyed on the whole `p + i`
// expression, whose value is a RegionAddr with no linear form, so for them that attempt fails;
// the difference is then a fresh conjured value, announced via PointerAssignEvent but not
// constrained.
func (r *Resolver) evalPointerSub(ctx *registry.Context, bin frontend.BinaryExpr) (symbolic.SymExpr, *registry.Context) {
	if bin.RHS().Type() != nil && bin.RHS().Type().Kind() != frontend.TypePointer {
		return r.evalPointerOffset(ctx, bin, bin.LHS(), bin.RHS())
	}

	lhsRegion, lok := r.pointerRegion(ctx, bin.LHS())
	rhsRegion, rok := r.pointerRegion(ctx, bin.RHS())

	conj := r.mgr.GetSymbolConjured(bin, bin.Type(), ctx.Frame, "ptr-diff")
	x, xIsVar := AsZVariable(conj)

	if lok && rok && lhsRegion.RKind == symbolic.RegionElement && rhsRegion.RKind == symbolic.RegionElement && lhsRegion.Parent == rhsRegion.Parent {
		lhsIdx, lIdxOK := lhsRegion.Key.(frontend.Stmt)
		rhsIdx, rIdxOK := rhsRegion.Key.(frontend.Stmt)
		if lIdxOK && rIdxOK && xIsVar {
			lhsVal, ctx2 := r.EvalOrConjure(ctx, lhsIdx, "ptr-diff-lhs-idx")
			rhsVal, ctx3 := r.EvalOrConjure(ctx2, rhsIdx, "ptr-diff-rhs-idx")
			if lin, ok := r.linearDiff(lhsVal, rhsVal); ok {
				ctx3.Raise(registry.LinearNumericalAssignEvent{Target: x, Expr: lin, State: ctx3.State})
				c := numeric.NewZLinearConstraint(numeric.NewZVarExpr(x), lin, numeric.OpEQ)
				ctx3 = ctx3.WithState(ctx3.State.AddZLinearConstraint(c))
				return conj, ctx3.WithState(ctx3.State.SetStmtSexpr(bin, ctx3.Frame, conj))
			}
			ctx = ctx3
		}
	}

	ctx.Raise(registry.PointerAssignEvent{Target: conj, State: ctx.State})
	return conj, ctx.WithState(ctx.State.SetStmtSexpr(bin, ctx.Frame, conj))
}

func (r *Resolver) linearDiff(lhs, rhs symbolic.SymExpr) (numeric.ZLinearExpr, bool) {
	l, lok := r.exprOf(lhs)
	rr, rok := r.exprOf(rhs)
	if !lok || !rok {
		return numeric.ZLinearExpr{}, false
	}
	return l.Sub(rr), true
}

// pointerRegion resolves a pointer-typed expression to the region it currently points at, i.e. the
// region named by its RegionAddr value (through a load) or, for an address-of expression, the
// addressed region directly.
func (r *Resolver) pointerRegion(ctx *registry.Context, expr frontend.Stmt) (*symbolic.MemRegion, bool) {
	val, _ := ctx.State.GetStmtSexpr(expr, ctx.Frame)
	if val == nil {
		var newCtx *registry.Context
		val, newCtx = r.Eval(ctx, expr)
		ctx = newCtx
	}
	if addr, ok := val.(*symbolic.RegionAddr); ok {
		return addr.Region, true
	}
	return nil, false
}

// evalPointerComparison implements the pointer half of filter_condition's BinarySymExpr branch
// generalized to a standalone expression value (not just a branch condition): `==`/`!=` resolve
// exactly via region identity (regions are interned, so pointer equality of *MemRegion is region
// identity); ordering comparisons (`<`,`<=`,`>`,`>=`) are not decidable without a total order over
// regions, so they conjure a fresh boolean and announce the attempt via PointerOrderEvent.
func (r *Resolver) evalPointerComparison(ctx *registry.Context, bin frontend.BinaryExpr) (symbolic.SymExpr, *registry.Context) {
	lhsRegion, lok := r.pointerRegion(ctx, bin.LHS())
	rhsRegion, rok := r.pointerRegion(ctx, bin.RHS())

	if lok && rok && (bin.Opcode() == frontend.BinaryEQ || bin.Opcode() == frontend.BinaryNE) {
		equal := lhsRegion == rhsRegion
		if bin.Opcode() == frontend.BinaryNE {
			equal = !equal
		}
		v := r.mgr.GetScalarInt(boolVal(equal), bin.Type())
		return v, ctx.WithState(ctx.State.SetStmtSexpr(bin, ctx.Frame, v))
	}

	lhsVal, ctx2 := r.EvalOrConjure(ctx, bin.LHS(), "ptr-cmp-lhs")
	rhsVal, ctx3 := r.EvalOrConjure(ctx2, bin.RHS(), "ptr-cmp-rhs")
	conj := r.mgr.GetSymbolConjured(bin, bin.Type(), ctx3.Frame, "ptr-order")
	ctx3.Raise(registry.PointerOrderEvent{LHS: lhsVal, RHS: rhsVal, Op: bin.Opcode(), State: ctx3.State})
	return conj, ctx3.WithState(ctx3.State.SetStmtSexpr(bin, ctx3.Frame, conj))
}
