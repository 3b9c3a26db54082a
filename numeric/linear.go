// Package numeric implements the core's numeric & linear-constraints lattice (component C1): an
// integer interval domain and a linear-equality domain over ZVariables, combined into a single
// reduced-product NumericDomain used by program state (§3: "numerical_domain").
package numeric

import "cmp"

// ZVariable aliases a conjured-or-region-symbol value viewed as a numerical variable. The
// Manager assigns these; numeric itself treats them as opaque comparable identities so it has no
// dependency on the symbolic package.
type ZVariable uint32

// ZLinearExpr is a linear combination over a set of variables plus a constant: sum(coeff*var) + k.
type ZLinearExpr struct {
	Terms    map[ZVariable]int64
	Constant int64
}

// NewZLinearExpr returns the constant expression k.
func NewZLinearExpr(k int64) ZLinearExpr {
	return ZLinearExpr{Terms: map[ZVariable]int64{}, Constant: k}
}

// NewZVarExpr returns the expression "var".
func NewZVarExpr(v ZVariable) ZLinearExpr {
	return ZLinearExpr{Terms: map[ZVariable]int64{v: 1}, Constant: 0}
}

// Clone returns a deep copy.
func (e ZLinearExpr) Clone() ZLinearExpr {
	terms := make(map[ZVariable]int64, len(e.Terms))
	for k, v := range e.Terms {
		terms[k] = v
	}
	return ZLinearExpr{Terms: terms, Constant: e.Constant}
}

// Add returns e + other.
func (e ZLinearExpr) Add(other ZLinearExpr) ZLinearExpr {
	r := e.Clone()
	for v, c := range other.Terms {
		r.Terms[v] += c
		if r.Terms[v] == 0 {
			delete(r.Terms, v)
		}
	}
	r.Constant += other.Constant
	return r
}

// Sub returns e - other.
func (e ZLinearExpr) Sub(other ZLinearExpr) ZLinearExpr {
	neg := other.Clone()
	neg.Constant = -neg.Constant
	for v := range neg.Terms {
		neg.Terms[v] = -neg.Terms[v]
	}
	return e.Add(neg)
}

// ScaleConst returns e scaled by a compile-time constant k.
func (e ZLinearExpr) ScaleConst(k int64) ZLinearExpr {
	terms := make(map[ZVariable]int64, len(e.Terms))
	for v, c := range e.Terms {
		terms[v] = c * k
	}
	return ZLinearExpr{Terms: terms, Constant: e.Constant * k}
}

// IsConstant reports whether e has no variable terms.
func (e ZLinearExpr) IsConstant() bool { return len(e.Terms) == 0 }

// AsSingleVariable returns (v, true) iff e is exactly "1*v + 0" for some variable v, which is the
// shape resolver.AsZVariable requires.
func (e ZLinearExpr) AsSingleVariable() (ZVariable, bool) {
	if e.Constant != 0 || len(e.Terms) != 1 {
		return 0, false
	}
	for v, c := range e.Terms {
		if c == 1 {
			return v, true
		}
	}
	return 0, false
}

// ZConstraintOp enumerates the relational operators a linear constraint may carry.
type ZConstraintOp int

const (
	OpEQ ZConstraintOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

// Negate returns the logical negation of op.
func (op ZConstraintOp) Negate() ZConstraintOp {
	switch op {
	case OpEQ:
		return OpNE
	case OpNE:
		return OpEQ
	case OpLT:
		return OpGE
	case OpLE:
		return OpGT
	case OpGT:
		return OpLE
	case OpGE:
		return OpLT
	default:
		return OpEQ
	}
}

// ZLinearConstraint is `expr OP 0`, e.g. "x - y + 3 <= 0".
type ZLinearConstraint struct {
	Expr ZLinearExpr
	Op   ZConstraintOp
}

// NewZLinearConstraint builds the constraint lhs OP rhs, normalized to the "expr OP 0" form.
func NewZLinearConstraint(lhs, rhs ZLinearExpr, op ZConstraintOp) ZLinearConstraint {
	return ZLinearConstraint{Expr: lhs.Sub(rhs), Op: op}
}

// Negate returns the logical negation of c.
func (c ZLinearConstraint) Negate() ZLinearConstraint {
	return ZLinearConstraint{Expr: c.Expr, Op: c.Op.Negate()}
}

// sortedVars returns c's variables sorted for deterministic iteration (diagnostics, tests).
func (e ZLinearExpr) sortedVars() []ZVariable {
	vars := make([]ZVariable, 0, len(e.Terms))
	for v := range e.Terms {
		vars = append(vars, v)
	}
	sortSlice(vars)
	return vars
}

func sortSlice(vars []ZVariable) {
	for i := 1; i < len(vars); i++ {
		for j := i; j > 0 && cmp.Less(vars[j], vars[j-1]); j-- {
			vars[j], vars[j-1] = vars[j-1], vars[j]
		}
	}
}
