package symbolic

import "github.com/knightfall/knightfall/frontend"

// RegionKind enumerates the memory-region kinds the core distinguishes. Front ends may subclass
// further (e.g. distinct field regions per struct layout), but every kind the core itself
// reasons about is listed here, mirroring original_source/include/dfa/region/regions.hpp.
type RegionKind int

const (
	RegionInvalid RegionKind = iota
	RegionStack              // a stack-allocated local variable
	RegionHeap                // a heap-allocated allocation site
	RegionGlobal               // a global/static variable
	RegionField                // a struct/class field, nested under a base region
	RegionElement              // an array element, nested under an array region
	RegionSymbolic             // a region only known to exist symbolically (e.g. *p for unknown p)
)

// parentKinds maps a region kind to the set of kinds that may legally be its parent, per the
// "parent_kind relation" invariant of §3. RegionStack/Heap/Global/Symbolic are roots (nil parent).
var parentKinds = map[RegionKind]map[RegionKind]bool{
	RegionField:   {RegionStack: true, RegionHeap: true, RegionGlobal: true, RegionField: true, RegionElement: true, RegionSymbolic: true},
	RegionElement: {RegionStack: true, RegionHeap: true, RegionGlobal: true, RegionField: true, RegionElement: true, RegionSymbolic: true},
}

// ValidParent reports whether parent may be the direct parent of a region of kind child.
func ValidParent(child, parent RegionKind) bool {
	allowed, ok := parentKinds[child]
	if !ok {
		// root kinds never have a parent.
		return false
	}
	return allowed[parent]
}

// MemRegion is a node in the rose-tree of memory regions. Two MemRegions are the same region iff
// they are pointer-equal, which the Manager guarantees by interning on (Kind, Parent, Key).
type MemRegion struct {
	RKind     RegionKind
	Parent    *MemRegion // nil for roots
	Key       any        // disambiguates siblings: a *types.Var-like handle, a field name, an index expr
	ValueType frontend.Type
}

// IsRoot reports whether this region has no parent.
func (r *MemRegion) IsRoot() bool { return r.Parent == nil }

// regionProfile is the structural key used by Manager to intern MemRegions.
type regionProfile struct {
	kind   RegionKind
	parent *MemRegion
	key    any
}
