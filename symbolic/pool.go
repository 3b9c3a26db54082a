package symbolic

import "github.com/knightfall/knightfall/frontend"

// Manager owns the intern pools for a single translation unit: all SymExpr, MemRegion,
// StackFrame, and LocationContext nodes allocated during the analysis of that TU live here and
// are never shared across TUs (§5: "the intern pools and arenas of C2 are owned by the per-TU
// context"). Manager is not safe for concurrent use from multiple goroutines analyzing the same
// TU; the core's single-threaded-per-TU scheduling model (§5) makes this unnecessary.
type Manager struct {
	scalarInts   map[scalarIntKey]*ScalarInt
	scalarFloats map[scalarFloatKey]*ScalarFloat
	regionVals   map[regionSymValKey]*RegionSymVal
	regionExts   map[*MemRegion]*RegionSymExtent
	regionAddrs  map[*MemRegion]*RegionAddr
	conjured     map[conjuredKey]*SymbolConjured
	casts        map[castKey]*CastSym
	unaries      map[unaryKey]*UnarySymExpr
	binaries     map[binaryKey]*BinarySymExpr

	regions map[regionProfile]*MemRegion
	frames  map[frameProfile]*StackFrame
	locCtxs map[locCtxProfile]*LocationContext

	nextSymbolID uint32
}

// NewManager constructs an empty Manager for a fresh translation unit.
func NewManager() *Manager {
	return &Manager{
		scalarInts:   make(map[scalarIntKey]*ScalarInt),
		scalarFloats: make(map[scalarFloatKey]*ScalarFloat),
		regionVals:   make(map[regionSymValKey]*RegionSymVal),
		regionExts:   make(map[*MemRegion]*RegionSymExtent),
		regionAddrs:  make(map[*MemRegion]*RegionAddr),
		conjured:     make(map[conjuredKey]*SymbolConjured),
		casts:        make(map[castKey]*CastSym),
		unaries:      make(map[unaryKey]*UnarySymExpr),
		binaries:     make(map[binaryKey]*BinarySymExpr),
		regions:      make(map[regionProfile]*MemRegion),
		frames:       make(map[frameProfile]*StackFrame),
		locCtxs:      make(map[locCtxProfile]*LocationContext),
	}
}

type scalarIntKey struct {
	value int64
	typ   frontend.Type
}

// GetScalarInt interns an integer constant.
func (m *Manager) GetScalarInt(value int64, typ frontend.Type) *ScalarInt {
	key := scalarIntKey{value, typ}
	if s, ok := m.scalarInts[key]; ok {
		return s
	}
	s := &ScalarInt{Value: value, Typ: typ}
	m.scalarInts[key] = s
	return s
}

type scalarFloatKey struct {
	value float64
	typ   frontend.Type
}

// GetScalarFloat interns a floating-point constant.
func (m *Manager) GetScalarFloat(value float64, typ frontend.Type) *ScalarFloat {
	key := scalarFloatKey{value, typ}
	if s, ok := m.scalarFloats[key]; ok {
		return s
	}
	s := &ScalarFloat{Value: value, Typ: typ}
	m.scalarFloats[key] = s
	return s
}

type regionSymValKey struct {
	region   *MemRegion
	locCtx   *LocationContext
	external bool
}

// GetRegionSymVal interns the abstract value currently stored in region at locCtx. A fresh
// symbol ID is only assigned on first interning, consistent with "symbol ids are monotonically
// assigned and stable within a compilation unit".
func (m *Manager) GetRegionSymVal(region *MemRegion, locCtx *LocationContext, external bool) *RegionSymVal {
	key := regionSymValKey{region, locCtx, external}
	if s, ok := m.regionVals[key]; ok {
		return s
	}
	s := &RegionSymVal{ID: m.freshID(), Region: region, LocCtx: locCtx, External: external}
	m.regionVals[key] = s
	return s
}

// GetRegionSymExtent interns the symbolic extent (size) of region.
func (m *Manager) GetRegionSymExtent(region *MemRegion) *RegionSymExtent {
	if s, ok := m.regionExts[region]; ok {
		return s
	}
	s := &RegionSymExtent{ID: m.freshID(), Region: region}
	m.regionExts[region] = s
	return s
}

// GetRegionAddr interns the address value of region.
func (m *Manager) GetRegionAddr(region *MemRegion) *RegionAddr {
	if s, ok := m.regionAddrs[region]; ok {
		return s
	}
	s := &RegionAddr{Region: region}
	m.regionAddrs[region] = s
	return s
}

type conjuredKey struct {
	stmt  frontend.Stmt
	typ   frontend.Type
	frame *StackFrame
	tag   string
}

// GetSymbolConjured interns a fresh-unknown symbol attached to stmt at frame, tagged tag. Calling
// this twice with the same (stmt, typ, frame, tag) returns the same conjured symbol: the "fresh"
// unknown is fresh relative to the rest of the state, not relative to repeated requests for the
// same site, matching the source's memoization of conjured symbols per statement.
func (m *Manager) GetSymbolConjured(stmt frontend.Stmt, typ frontend.Type, frame *StackFrame, tag string) *SymbolConjured {
	key := conjuredKey{stmt, typ, frame, tag}
	if s, ok := m.conjured[key]; ok {
		return s
	}
	s := &SymbolConjured{ID: m.freshID(), Stmt: stmt, Typ: typ, Frame: frame, Tag: tag}
	m.conjured[key] = s
	return s
}

type castKey struct {
	operand SymExpr
	src     frontend.Type
	dst     frontend.Type
}

// GetCastSymExpr interns a cast of operand from src to dst.
func (m *Manager) GetCastSymExpr(operand SymExpr, src, dst frontend.Type) *CastSym {
	key := castKey{operand, src, dst}
	if s, ok := m.casts[key]; ok {
		return s
	}
	s := &CastSym{Operand: operand, SrcType: src, DstType: dst}
	m.casts[key] = s
	return s
}

type unaryKey struct {
	operand SymExpr
	op      frontend.UnaryOpcode
	typ     frontend.Type
}

// GetUnarySymExpr interns a unary operator node.
func (m *Manager) GetUnarySymExpr(operand SymExpr, op frontend.UnaryOpcode, typ frontend.Type) *UnarySymExpr {
	key := unaryKey{operand, op, typ}
	if s, ok := m.unaries[key]; ok {
		return s
	}
	s := &UnarySymExpr{Operand: operand, Opcode: op, Typ: typ}
	m.unaries[key] = s
	return s
}

type binaryKey struct {
	lhs, rhs SymExpr
	op       frontend.BinaryOpcode
	typ      frontend.Type
}

// GetBinarySymExpr interns a binary operator node.
func (m *Manager) GetBinarySymExpr(lhs, rhs SymExpr, op frontend.BinaryOpcode, typ frontend.Type) *BinarySymExpr {
	key := binaryKey{lhs, rhs, op, typ}
	if s, ok := m.binaries[key]; ok {
		return s
	}
	s := &BinarySymExpr{LHS: lhs, RHS: rhs, Opcode: op, Typ: typ}
	m.binaries[key] = s
	return s
}

func (m *Manager) freshID() uint32 {
	m.nextSymbolID++
	return m.nextSymbolID
}

// GetRegion interns a MemRegion. parent must already be interned (or nil for a root region).
// key disambiguates siblings under the same parent (e.g. a field name, or an index expression's
// identity for element regions).
func (m *Manager) GetRegion(kind RegionKind, parent *MemRegion, key any, valueType frontend.Type) *MemRegion {
	if parent != nil && !ValidParent(kind, parent.RKind) {
		panic("symbolic: invalid region nesting: " + regionKindName(kind) + " under " + regionKindName(parent.RKind))
	}
	profile := regionProfile{kind: kind, parent: parent, key: key}
	if r, ok := m.regions[profile]; ok {
		return r
	}
	r := &MemRegion{RKind: kind, Parent: parent, Key: key, ValueType: valueType}
	m.regions[profile] = r
	return r
}

func regionKindName(k RegionKind) string {
	switch k {
	case RegionStack:
		return "stack"
	case RegionHeap:
		return "heap"
	case RegionGlobal:
		return "global"
	case RegionField:
		return "field"
	case RegionElement:
		return "element"
	case RegionSymbolic:
		return "symbolic"
	default:
		return "invalid"
	}
}

// GetStackFrame interns a StackFrame activation of decl with the given parent (nil for the top
// frame) and call-site info (nil for the top frame).
func (m *Manager) GetStackFrame(decl frontend.Decl, parent *StackFrame, callSite *CallSiteInfo) *StackFrame {
	var cs CallSiteInfo
	if callSite != nil {
		cs = *callSite
	}
	profile := frameProfile{decl: decl, parent: parent, call: cs}
	if f, ok := m.frames[profile]; ok {
		return f
	}
	f := &StackFrame{Decl: decl, Parent: parent, CallSiteInfo: callSite}
	m.frames[profile] = f
	return f
}

// GetLocationContext interns a LocationContext.
func (m *Manager) GetLocationContext(frame *StackFrame, block frontend.Node, elementIndex int) *LocationContext {
	profile := locCtxProfile{frame: frame, block: block, index: elementIndex}
	if l, ok := m.locCtxs[profile]; ok {
		return l
	}
	l := &LocationContext{Frame: frame, Block: block, ElementIndex: elementIndex}
	m.locCtxs[profile] = l
	return l
}
