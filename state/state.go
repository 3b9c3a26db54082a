// Package state implements the core's program-state component (C3): an immutable mapping from
// per-region/per-statement keys to symbolic values, plus the numeric domain (C1), with the
// lattice operators the fixpoint engine (C5) drives. States are not interned: every update
// copies the component maps, and two equal states may be distinct pointers.
package state

import (
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/symbolic"
)

// stmtKey and regionKey are the composite keys for the two symbolic maps (§3: "stmt_sexpr :
// (stmt, frame) → SExpr", "region_def : (region, frame) → RegionDef").
type stmtKey struct {
	stmt  frontend.Stmt
	frame *symbolic.StackFrame
}

type regionKey struct {
	region *symbolic.MemRegion
	frame  *symbolic.StackFrame
}

// RegionDef is the abstract definition currently living in a region: a symbolic value plus the
// location context at which it was written (used by diagnostics to report "last written at").
type RegionDef struct {
	Value  symbolic.SymExpr
	LocCtx *symbolic.LocationContext
}

// State is an immutable program state. All mutator-looking methods (Set*, Join, Widen, ...)
// return a new State and never modify the receiver, per §3 invariant (a).
type State struct {
	bottom bool
	top    bool

	stmtSexpr map[stmtKey]symbolic.SymExpr
	regionDef map[regionKey]RegionDef
	numDom    numeric.Domain

	normalized bool
}

// New returns the initial (top) state: no statements or regions have been assigned a value yet,
// and the numeric domain is unconstrained.
func New() *State {
	return &State{
		stmtSexpr:  map[stmtKey]symbolic.SymExpr{},
		regionDef:  map[regionKey]RegionDef{},
		numDom:     numeric.TopDomain(),
		top:        true,
		normalized: true,
	}
}

// Bottom returns the bottom (infeasible) state.
func Bottom() *State {
	return &State{bottom: true, normalized: true}
}

// IsBottom reports whether s is infeasible. Per §3 invariant (b), this holds exactly when every
// component domain (here, just the numeric domain) is bottom; the symbolic maps carry no
// lattice-bottom concept of their own so they are cleared instead.
func (s *State) IsBottom() bool { return s.bottom }

// IsTop reports whether s carries no information at all.
func (s *State) IsTop() bool {
	if s.bottom {
		return false
	}
	return s.top && len(s.stmtSexpr) == 0 && len(s.regionDef) == 0 && s.numDom.IsTop()
}

// SetToBottom returns the bottom state. Monotone: once bottom, always bottom under further ops.
func (s *State) SetToBottom() *State { return Bottom() }

// SetToTop returns the initial top state.
func (s *State) SetToTop() *State { return New() }

func (s *State) clone() *State {
	stmtSexpr := make(map[stmtKey]symbolic.SymExpr, len(s.stmtSexpr))
	for k, v := range s.stmtSexpr {
		stmtSexpr[k] = v
	}
	regionDef := make(map[regionKey]RegionDef, len(s.regionDef))
	for k, v := range s.regionDef {
		regionDef[k] = v
	}
	return &State{
		stmtSexpr: stmtSexpr,
		regionDef: regionDef,
		numDom:    s.numDom,
	}
}

// GetStmtSexpr returns the memoized symbolic value of stmt at frame, if any.
func (s *State) GetStmtSexpr(stmt frontend.Stmt, frame *symbolic.StackFrame) (symbolic.SymExpr, bool) {
	if s.bottom {
		return nil, false
	}
	v, ok := s.stmtSexpr[stmtKey{stmt, frame}]
	return v, ok
}

// SetStmtSexpr returns a new state memoizing sexpr as the value of stmt at frame.
func (s *State) SetStmtSexpr(stmt frontend.Stmt, frame *symbolic.StackFrame, sexpr symbolic.SymExpr) *State {
	if s.bottom {
		return s
	}
	out := s.clone()
	out.stmtSexpr[stmtKey{stmt, frame}] = sexpr
	return out
}

// GetStmtSexprOrConjured returns the memoized sexpr of expr at locCtx if present, else conjures
// (and memoizes) a fresh symbol of typ attached to expr's frame, returning both the symbol and
// the state reflecting the memoization.
func (s *State) GetStmtSexprOrConjured(mgr *symbolic.Manager, expr frontend.Stmt, locCtx *symbolic.LocationContext, typ frontend.Type, tag string) (symbolic.SymExpr, *State) {
	if v, ok := s.GetStmtSexpr(expr, locCtx.Frame); ok {
		return v, s
	}
	conj := mgr.GetSymbolConjured(expr, typ, locCtx.Frame, tag)
	return conj, s.SetStmtSexpr(expr, locCtx.Frame, conj)
}

// GetRegionDef returns the current abstract definition of region at frame, if any.
func (s *State) GetRegionDef(region *symbolic.MemRegion, frame *symbolic.StackFrame) (RegionDef, bool) {
	if s.bottom {
		return RegionDef{}, false
	}
	v, ok := s.regionDef[regionKey{region, frame}]
	return v, ok
}

// SetRegionDef returns a new state recording def as region's current definition at frame. It is a
// programmer error (fatal assertion, per §4.2) to assign a sexpr whose type disagrees with the
// region's declared value type.
func (s *State) SetRegionDef(region *symbolic.MemRegion, frame *symbolic.StackFrame, def RegionDef) *State {
	if s.bottom {
		return s
	}
	if def.Value != nil && region.ValueType != nil && def.Value.Type() != nil && !def.Value.Type().Equal(region.ValueType) {
		panic("state: assigning sexpr of incompatible type to region " + region.ValueType.String())
	}
	out := s.clone()
	out.regionDef[regionKey{region, frame}] = def
	return out
}

// NumDomain returns the current numeric domain (read-only; use WithNumDomain or AddZLinearConstraint
// to update it).
func (s *State) NumDomain() numeric.Domain {
	if s.bottom {
		return numeric.BottomDomain()
	}
	return s.numDom
}

// WithNumDomain returns a copy of s with its numeric domain replaced by d.
func (s *State) WithNumDomain(d numeric.Domain) *State {
	if s.bottom {
		return s
	}
	if d.IsBottom() {
		return Bottom()
	}
	out := s.clone()
	out.numDom = d
	return out
}

// AddZLinearConstraint folds c into the numeric domain.
func (s *State) AddZLinearConstraint(c numeric.ZLinearConstraint) *State {
	if s.bottom {
		return s
	}
	return s.WithNumDomain(s.numDom.AddConstraint(c))
}
