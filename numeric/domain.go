package numeric

import "sort"

// Domain is the reduced product of an integer-interval map and a set of linear-equality/
// inequality constraints over ZVariables, implementing the "integer-interval + linear-constraints
// lattice" named in §1/§3 of the core design. Domain values are immutable: every lattice
// operation returns a new Domain rather than mutating the receiver, matching program state's
// persistence contract (§3 invariant a).
type Domain struct {
	bottom      bool
	intervals   map[ZVariable]Interval
	constraints []ZLinearConstraint
}

// TopDomain returns the unconstrained domain.
func TopDomain() Domain {
	return Domain{intervals: map[ZVariable]Interval{}}
}

// BottomDomain returns the empty (infeasible) domain.
func BottomDomain() Domain {
	return Domain{bottom: true}
}

// IsBottom reports whether d is infeasible.
func (d Domain) IsBottom() bool { return d.bottom }

// IsTop reports whether d carries no constraints at all.
func (d Domain) IsTop() bool {
	if d.bottom {
		return false
	}
	return len(d.intervals) == 0 && len(d.constraints) == 0
}

// Interval returns the current known interval for v (Top if unconstrained, Bottom if d itself is
// bottom).
func (d Domain) Interval(v ZVariable) Interval {
	if d.bottom {
		return Bottom
	}
	if iv, ok := d.intervals[v]; ok {
		return iv
	}
	return Top
}

// WithInterval returns a copy of d with v's interval narrowed by meeting it with iv.
func (d Domain) WithInterval(v ZVariable, iv Interval) Domain {
	if d.bottom {
		return d
	}
	cur := d.Interval(v)
	merged := cur.Meet(iv)
	if merged.IsBottom() {
		return BottomDomain()
	}
	out := d.clone()
	out.intervals[v] = merged
	return out
}

// AddConstraint returns a copy of d with c added to its constraint set, and, when c lifts to a
// tighter interval bound on a single variable (e.g. "x <= 5", "x == 3"), that bound is folded
// into the interval map as well so single-variable queries stay precise without a full solve.
func (d Domain) AddConstraint(c ZLinearConstraint) Domain {
	if d.bottom {
		return d
	}
	out := d.clone()
	out.constraints = append(out.constraints, c)
	if v, ok := (ZLinearExpr{Terms: c.Expr.Terms}).AsSingleVariable(); ok {
		k := -c.Expr.Constant
		var iv Interval
		switch c.Op {
		case OpEQ:
			iv = Single(k)
		case OpNE:
			// x != k removes a single point; intervals can't represent that precisely, so this
			// constraint only lives in the constraint list.
			return out
		case OpLT:
			iv = Interval{Lo: minInt64(), Hi: k - 1}
		case OpLE:
			iv = Interval{Lo: minInt64(), Hi: k}
		case OpGT:
			iv = Interval{Lo: k + 1, Hi: maxInt64()}
		case OpGE:
			iv = Interval{Lo: k, Hi: maxInt64()}
		default:
			return out
		}
		merged := out.Interval(v).Meet(iv)
		if merged.IsBottom() {
			return BottomDomain()
		}
		out.intervals[v] = merged
	}
	return out
}

func minInt64() int64 { return Top.Lo }
func maxInt64() int64 { return Top.Hi }

// Leq reports whether d ⊆ other: every interval in d is contained in other's corresponding
// interval, and every constraint other carries is also (syntactically) present in d — a weaker
// (more-constrained) domain must carry at least the constraints of a stronger one.
func (d Domain) Leq(other Domain) bool {
	if d.bottom {
		return true
	}
	if other.bottom {
		return false
	}
	for v, iv := range other.intervals {
		if !d.Interval(v).Leq(iv) {
			return false
		}
	}
	for _, c := range other.constraints {
		if !d.hasConstraint(c) {
			return false
		}
	}
	return true
}

func (d Domain) hasConstraint(c ZLinearConstraint) bool {
	for _, dc := range d.constraints {
		if constraintsEqual(dc, c) {
			return true
		}
	}
	return false
}

func constraintsEqual(a, b ZLinearConstraint) bool {
	if a.Op != b.Op || a.Expr.Constant != b.Expr.Constant || len(a.Expr.Terms) != len(b.Expr.Terms) {
		return false
	}
	for v, c := range a.Expr.Terms {
		if b.Expr.Terms[v] != c {
			return false
		}
	}
	return true
}

// Join returns the smallest domain containing both d and other: intervals join pointwise, and
// the constraint set keeps only constraints present (syntactically) in both operands, since a
// constraint unique to one side may not hold in the other and dropping it is always sound.
func (d Domain) Join(other Domain) Domain {
	if d.bottom {
		return other
	}
	if other.bottom {
		return d
	}
	out := TopDomain()
	for _, v := range unionVars(d.intervals, other.intervals) {
		out.intervals[v] = d.Interval(v).Join(other.Interval(v))
	}
	for _, c := range d.constraints {
		if other.hasConstraint(c) {
			out.constraints = append(out.constraints, c)
		}
	}
	return out
}

// Meet returns the largest domain contained in both d and other: intervals meet pointwise, and
// constraint sets union (most precise; infeasibility is only discovered through the interval
// projection above, not through a full linear solve).
func (d Domain) Meet(other Domain) Domain {
	if d.bottom || other.bottom {
		return BottomDomain()
	}
	out := d.clone()
	for v, iv := range other.intervals {
		merged := out.Interval(v).Meet(iv)
		if merged.IsBottom() {
			return BottomDomain()
		}
		out.intervals[v] = merged
	}
	for _, c := range other.constraints {
		if !out.hasConstraint(c) {
			out.constraints = append(out.constraints, c)
		}
	}
	return out
}

// Widen applies the fixpoint engine's enlargement operator (§4.4) pointwise over intervals;
// constraints are dropped unless present on both sides (same rule as Join), since a constraint
// discovered only in a later iteration is exactly the kind of fact widening must discard to
// guarantee termination.
func (d Domain) Widen(next Domain) Domain {
	if d.bottom {
		return next
	}
	if next.bottom {
		return d
	}
	out := TopDomain()
	for _, v := range unionVars(d.intervals, next.intervals) {
		out.intervals[v] = d.Interval(v).Widen(next.Interval(v))
	}
	for _, c := range d.constraints {
		if next.hasConstraint(c) {
			out.constraints = append(out.constraints, c)
		}
	}
	return out
}

// WidenWithThreshold is Widen, but consults thresholds (keyed by ZVariable) when jumping a bound
// to infinity would otherwise be required.
func (d Domain) WidenWithThreshold(next Domain, thresholds map[ZVariable]int64) Domain {
	if d.bottom {
		return next
	}
	if next.bottom {
		return d
	}
	out := TopDomain()
	for _, v := range unionVars(d.intervals, next.intervals) {
		if th, ok := thresholds[v]; ok {
			out.intervals[v] = d.Interval(v).WidenWithThreshold(next.Interval(v), th)
		} else {
			out.intervals[v] = d.Interval(v).Widen(next.Interval(v))
		}
	}
	for _, c := range d.constraints {
		if next.hasConstraint(c) {
			out.constraints = append(out.constraints, c)
		}
	}
	return out
}

// Narrow refines d using next (pointwise interval narrowing); the constraint set is refined to
// the union, recovering any constraints next learned that widening had discarded.
func (d Domain) Narrow(next Domain) Domain {
	if next.bottom {
		return BottomDomain()
	}
	if d.bottom {
		return d
	}
	out := d.clone()
	for _, v := range unionVars(d.intervals, next.intervals) {
		out.intervals[v] = out.Interval(v).Narrow(next.Interval(v))
	}
	for _, c := range next.constraints {
		if !out.hasConstraint(c) {
			out.constraints = append(out.constraints, c)
		}
	}
	return out
}

// NarrowWithThreshold is Narrow, but bounds refinement by thresholds (see SPEC_FULL §9: only
// used when a threshold was actually discovered at the matching widening step).
func (d Domain) NarrowWithThreshold(next Domain, thresholds map[ZVariable]int64) Domain {
	if next.bottom {
		return BottomDomain()
	}
	if d.bottom {
		return d
	}
	out := d.clone()
	for _, v := range unionVars(d.intervals, next.intervals) {
		if th, ok := thresholds[v]; ok {
			out.intervals[v] = out.Interval(v).NarrowWithThreshold(next.Interval(v), th)
		} else {
			out.intervals[v] = out.Interval(v).Narrow(next.Interval(v))
		}
	}
	for _, c := range next.constraints {
		if !out.hasConstraint(c) {
			out.constraints = append(out.constraints, c)
		}
	}
	return out
}

// Normalize canonicalizes d: Top-valued interval entries and bottom-implying states are pruned so
// that equal domains compare equal after normalization, and is idempotent (Normalize(Normalize(d))
// == Normalize(d)), as required by §3 invariant (d).
func (d Domain) Normalize() Domain {
	if d.bottom {
		return BottomDomain()
	}
	d = d.clone()
	for v, iv := range d.intervals {
		if iv.IsBottom() {
			return BottomDomain()
		}
		if iv.IsTop() {
			delete(d.intervals, v)
		}
	}
	sort.Slice(d.constraints, func(i, j int) bool {
		return constraintLess(d.constraints[i], d.constraints[j])
	})
	return d
}

func constraintLess(a, b ZLinearConstraint) bool {
	if a.Op != b.Op {
		return a.Op < b.Op
	}
	if a.Expr.Constant != b.Expr.Constant {
		return a.Expr.Constant < b.Expr.Constant
	}
	av, bv := a.Expr.sortedVars(), b.Expr.sortedVars()
	for i := 0; i < len(av) && i < len(bv); i++ {
		if av[i] != bv[i] {
			return av[i] < bv[i]
		}
	}
	return len(av) < len(bv)
}

func (d Domain) clone() Domain {
	intervals := make(map[ZVariable]Interval, len(d.intervals))
	for v, iv := range d.intervals {
		intervals[v] = iv
	}
	constraints := make([]ZLinearConstraint, len(d.constraints))
	copy(constraints, d.constraints)
	return Domain{intervals: intervals, constraints: constraints}
}

func unionVars(a, b map[ZVariable]Interval) []ZVariable {
	seen := make(map[ZVariable]bool, len(a)+len(b))
	var out []ZVariable
	for v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
