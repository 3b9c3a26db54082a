package state

import "github.com/knightfall/knightfall/numeric"

// Leq reports whether s ⊑ other. Reflexive and transitive (§8 lattice laws): a state is ⊑ another
// when its numeric domain is ⊑ and every region/stmt binding the other state carries is also
// present (and identical) in s — mirroring the "more information ⇒ lower in the lattice"
// convention used throughout the core (more precise/constrained states are smaller).
func (s *State) Leq(other *State) bool {
	if s.bottom {
		return true
	}
	if other.bottom {
		return false
	}
	if !s.numDom.Leq(other.numDom) {
		return false
	}
	for k, v := range other.regionDef {
		sv, ok := s.regionDef[k]
		if !ok || sv.Value != v.Value {
			return false
		}
	}
	for k, v := range other.stmtSexpr {
		sv, ok := s.stmtSexpr[k]
		if !ok || sv != v {
			return false
		}
	}
	return true
}

// Join computes the least upper bound of s and other: the symbolic maps keep only bindings
// agreeing (by interned identity) on both sides, and the numeric domain joins pointwise. loc_ctx
// identifies the join point and is threaded through so a future extension (e.g. conjuring a fresh
// merge symbol per disagreeing region) has the information to do so; the current implementation
// drops disagreeing bindings, which is always a sound over-approximation.
func (s *State) Join(other *State, _ any) *State {
	if s.bottom {
		return other
	}
	if other.bottom {
		return s
	}
	out := New()
	for k, v := range s.regionDef {
		if ov, ok := other.regionDef[k]; ok && ov.Value == v.Value {
			out.regionDef[k] = v
		}
	}
	for k, v := range s.stmtSexpr {
		if ov, ok := other.stmtSexpr[k]; ok && ov == v {
			out.stmtSexpr[k] = v
		}
	}
	out.numDom = s.numDom.Join(other.numDom)
	out.top = false
	return out
}

// JoinConsecutiveIter is the join variant used for the first few increasing-phase iterations
// (before widening kicks in, per §4.4 step "k < widening_delay + 1"); at this domain it coincides
// with Join, since the interval/linear-constraint domain has no extra "fast join" shortcut.
func (s *State) JoinConsecutiveIter(other *State, locCtx any) *State {
	return s.Join(other, locCtx)
}

// JoinAtLoopHead is the join variant used to merge the "from outside the loop" and "loop-carried"
// contributions at a cycle head before widening (§4.4 step 2d, "front ⊔_loop_head back").
func (s *State) JoinAtLoopHead(other *State) *State {
	return s.Join(other, nil)
}

// Meet computes the greatest lower bound of s and other.
func (s *State) Meet(other *State) *State {
	if s.bottom || other.bottom {
		return Bottom()
	}
	out := New()
	for k, v := range s.regionDef {
		out.regionDef[k] = v
	}
	for k, v := range other.regionDef {
		out.regionDef[k] = v
	}
	for k, v := range s.stmtSexpr {
		out.stmtSexpr[k] = v
	}
	for k, v := range other.stmtSexpr {
		out.stmtSexpr[k] = v
	}
	out.numDom = s.numDom.Meet(other.numDom)
	if out.numDom.IsBottom() {
		return Bottom()
	}
	out.top = false
	return out
}

// Widen applies the enlargement operator with no threshold guidance (§4.4 step 2e, "else:
// widen(next)").
func (s *State) Widen(other *State, _ any) *State {
	if s.bottom {
		return other
	}
	if other.bottom {
		return s
	}
	out := s.Join(other, nil)
	out.numDom = s.numDom.Widen(other.numDom)
	return out
}

// WidenWithThreshold applies the enlargement operator using threshold guidance discovered for the
// enclosing cycle head (§4.4 step 2e, "else if threshold analysis enabled").
func (s *State) WidenWithThreshold(other *State, _ any, thresholds map[numeric.ZVariable]int64) *State {
	if s.bottom {
		return other
	}
	if other.bottom {
		return s
	}
	out := s.Join(other, nil)
	out.numDom = s.numDom.WidenWithThreshold(other.numDom, thresholds)
	return out
}

// Narrow applies the decreasing-phase refinement operator (§4.4 step 3).
func (s *State) Narrow(other *State) *State {
	if other.bottom {
		return Bottom()
	}
	if s.bottom {
		return s
	}
	out := s.Meet(other)
	out.numDom = s.numDom.Narrow(other.numDom)
	if out.numDom.IsBottom() {
		return Bottom()
	}
	return out
}

// NarrowWithThreshold is Narrow guided by the cycle head's recorded widening threshold, per the
// asymmetry preserved in SPEC_FULL §9 (callers must only invoke this when a threshold was
// actually discovered for the relevant head during widening).
func (s *State) NarrowWithThreshold(other *State, thresholds map[numeric.ZVariable]int64) *State {
	if other.bottom {
		return Bottom()
	}
	if s.bottom {
		return s
	}
	out := s.Meet(other)
	out.numDom = s.numDom.NarrowWithThreshold(other.numDom, thresholds)
	if out.numDom.IsBottom() {
		return Bottom()
	}
	return out
}

// Normalize canonicalizes s: the numeric domain is normalized, and is idempotent (§3 invariant d,
// §8 "Normalize idempotence"). Every lattice operator above returns an un-normalized state; the
// fixpoint engine (C5) is responsible for calling Normalize before storing into pre/post maps.
func (s *State) Normalize() *State {
	if s.bottom || s.normalized {
		return s
	}
	out := s.clone()
	out.numDom = s.numDom.Normalize()
	if out.numDom.IsBottom() {
		return Bottom()
	}
	out.top = s.top
	out.normalized = true
	return out
}
