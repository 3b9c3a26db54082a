// Package symbolic implements the core's symbol & region manager (component C2): hash-consed
// construction of symbolic expressions, memory regions, stack frames, and location contexts.
//
// Every constructor in this package returns a pointer that is unique for a given structural key:
// two calls with equal arguments return the identical pointer. This mirrors the teacher's
// FoldingSet-interning discipline (see original_source/include/dfa/symbol.hpp) reimplemented with
// Go maps keyed on each node's structural profile and holding pointers to heap-allocated nodes,
// instead of LLVM's bump allocator; there is no arena and nodes carry no index.
package symbolic

import "github.com/knightfall/knightfall/frontend"

// Kind enumerates the SymExpr variants (§3 of the core data model).
type Kind int

const (
	KindInvalid Kind = iota
	KindScalarInt
	KindScalarFloat
	KindRegionSymVal
	KindRegionSymExtent
	KindRegionAddr
	KindSymbolConjured
	KindCastSym
	KindUnarySymExpr
	KindBinarySymExpr
)

// IsLeaf reports whether k denotes a leaf SymExpr variant: scalar, conjured, or region-symbol
// value/extent/addr nodes are leaves; cast/unary/binary nodes are never leaves (§3 invariant iv).
func (k Kind) IsLeaf() bool {
	switch k {
	case KindScalarInt, KindScalarFloat, KindRegionSymVal, KindRegionSymExtent, KindRegionAddr, KindSymbolConjured:
		return true
	default:
		return false
	}
}

// SymExpr is the common interface implemented by every interned symbolic-expression node.
type SymExpr interface {
	Kind() Kind
	Type() frontend.Type
	// WorstComplexity is monotone under substructure: a binary node's complexity is at most
	// lhs·rhs, except +/- which take the max of the two operands' complexities (§3 invariant iii).
	WorstComplexity() uint
	IsLeaf() bool
}

// ScalarInt is an integer constant.
type ScalarInt struct {
	Value int64
	Typ   frontend.Type
}

func (s *ScalarInt) Kind() Kind               { return KindScalarInt }
func (s *ScalarInt) Type() frontend.Type      { return s.Typ }
func (s *ScalarInt) WorstComplexity() uint    { return 1 }
func (s *ScalarInt) IsLeaf() bool             { return true }

// ScalarFloat is a floating-point constant.
type ScalarFloat struct {
	Value float64
	Typ   frontend.Type
}

func (s *ScalarFloat) Kind() Kind            { return KindScalarFloat }
func (s *ScalarFloat) Type() frontend.Type   { return s.Typ }
func (s *ScalarFloat) WorstComplexity() uint { return 1 }
func (s *ScalarFloat) IsLeaf() bool          { return true }

// RegionSymVal is the abstract value currently stored in a typed region at a given location
// context.
type RegionSymVal struct {
	ID       uint32
	Region   *MemRegion
	LocCtx   *LocationContext
	External bool
}

func (s *RegionSymVal) Kind() Kind            { return KindRegionSymVal }
func (s *RegionSymVal) Type() frontend.Type   { return s.Region.ValueType }
func (s *RegionSymVal) WorstComplexity() uint { return 1 }
func (s *RegionSymVal) IsLeaf() bool          { return true }

// RegionSymExtent is the (symbolic) size of a region.
type RegionSymExtent struct {
	ID     uint32
	Region *MemRegion
}

func (s *RegionSymExtent) Kind() Kind            { return KindRegionSymExtent }
func (s *RegionSymExtent) Type() frontend.Type   { return nil }
func (s *RegionSymExtent) WorstComplexity() uint { return 1 }
func (s *RegionSymExtent) IsLeaf() bool          { return true }

// RegionAddr is the address value of a typed region.
type RegionAddr struct {
	Region *MemRegion
}

func (s *RegionAddr) Kind() Kind            { return KindRegionAddr }
func (s *RegionAddr) Type() frontend.Type   { return nil }
func (s *RegionAddr) WorstComplexity() uint { return 1 }
func (s *RegionAddr) IsLeaf() bool          { return true }

// SymbolConjured is a fresh unknown created at a statement whose precise value the analysis
// cannot or chooses not to compute.
type SymbolConjured struct {
	ID    uint32
	Stmt  frontend.Stmt
	Typ   frontend.Type
	Frame *StackFrame
	Tag   string
}

func (s *SymbolConjured) Kind() Kind            { return KindSymbolConjured }
func (s *SymbolConjured) Type() frontend.Type   { return s.Typ }
func (s *SymbolConjured) WorstComplexity() uint { return 1 }
func (s *SymbolConjured) IsLeaf() bool          { return true }

// CastSym represents a (possibly lossy) cast of operand from SrcType to DstType.
type CastSym struct {
	Operand           SymExpr
	SrcType, DstType  frontend.Type
}

func (s *CastSym) Kind() Kind            { return KindCastSym }
func (s *CastSym) Type() frontend.Type   { return s.DstType }
func (s *CastSym) WorstComplexity() uint { return s.Operand.WorstComplexity() }
func (s *CastSym) IsLeaf() bool          { return false }

// UnarySymExpr is a unary operator applied to operand.
type UnarySymExpr struct {
	Operand SymExpr
	Opcode  frontend.UnaryOpcode
	Typ     frontend.Type
}

func (s *UnarySymExpr) Kind() Kind            { return KindUnarySymExpr }
func (s *UnarySymExpr) Type() frontend.Type   { return s.Typ }
func (s *UnarySymExpr) WorstComplexity() uint { return s.Operand.WorstComplexity() }
func (s *UnarySymExpr) IsLeaf() bool          { return false }

// BinarySymExpr is a binary operator applied to lhs and rhs.
type BinarySymExpr struct {
	LHS, RHS SymExpr
	Opcode   frontend.BinaryOpcode
	Typ      frontend.Type
}

func (s *BinarySymExpr) Kind() Kind          { return KindBinarySymExpr }
func (s *BinarySymExpr) Type() frontend.Type { return s.Typ }

// WorstComplexity is max(lhs,rhs) for +/-, and a saturating product otherwise (§3 invariant iii).
func (s *BinarySymExpr) WorstComplexity() uint {
	l, r := s.LHS.WorstComplexity(), s.RHS.WorstComplexity()
	switch s.Opcode {
	case frontend.BinaryAdd, frontend.BinarySub:
		if l > r {
			return l
		}
		return r
	default:
		const cap = 1 << 16
		product := l * r
		if product > cap {
			return cap
		}
		return product
	}
}

func (s *BinarySymExpr) IsLeaf() bool { return false }
