// Package frontend defines the interfaces the analyzer core consumes from the (external) C/C++
// parser front end. Nothing in this package parses source: it only fixes the shape of the
// typed AST and CFG the core is handed, so that `wto`, `fixpoint`, `blockexec`, `resolver`, and
// `registry` can be written, tested, and exercised against a fake front end without depending on
// a real C/C++ toolchain.
package frontend

// Type is the minimal surface the core needs from a front end's type system: enough to classify
// a symbolic expression's operand kind and to decide region/type compatibility.
type Type interface {
	// Kind classifies the type for the purposes of symbolic-expression validity (§3 invariant ii
	// of the core design: a sexpr's type must be integral, enumeration, pointer, reference, or
	// float).
	Kind() TypeKind
	// String renders the type for diagnostics.
	String() string
	// Equal reports structural type equality.
	Equal(Type) bool
}

// TypeKind enumerates the type categories the core distinguishes.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeInt
	TypeFloat
	TypeEnum
	TypePointer
	TypeReference
	TypeBool
	TypeRecord // struct/class, not itself a valid sexpr type but needed for region typing
	TypeArray
)

// IsValidForSymExpr reports whether k is one of the type kinds a SymExpr may carry, per the
// symbolic-expression type invariant.
func (k TypeKind) IsValidForSymExpr() bool {
	switch k {
	case TypeInt, TypeFloat, TypeEnum, TypePointer, TypeReference, TypeBool:
		return true
	default:
		return false
	}
}

// Decl identifies a function (or method) declaration the front end can hand the core a CFG for.
type Decl interface {
	// Name is the (possibly mangled) function name, used in diagnostics and conjured-symbol tags.
	Name() string
	// CFG returns the control-flow graph for this declaration's body, or nil if the declaration
	// has no body (e.g. an extern prototype).
	CFG() CFG
}

// Stmt is an opaque statement/expression node from the front end's AST. The core never inspects
// its internal structure directly; it dispatches on Kind and asks the front end for operands via
// the small per-kind accessor interfaces below (UnaryExpr, BinaryExpr, CastExpr, ...).
type Stmt interface {
	// ID is a stable, front-end-assigned identifier used as part of hash-consing keys (region_def
	// and stmt_sexpr maps are keyed in part by Stmt identity).
	ID() uint64
	Kind() StmtKind
	Type() Type
}

// StmtKind enumerates the statement/expression shapes the resolver (C7) dispatches on.
type StmtKind int

const (
	StmtInvalid StmtKind = iota
	StmtIntLiteral
	StmtFloatLiteral
	StmtLoad     // implicit lvalue-to-rvalue conversion
	StmtCast     // explicit or implicit int-to-int / numeric cast
	StmtUnaryOp
	StmtBinaryOp
	StmtConditional // c ? t : f
	StmtDeclStmt    // declaration with optional initializer
	StmtDeclRefExpr // reference to a named variable/region
	StmtAddrOf      // &x
	StmtCall        // function call (used by debug/inspection checkers, e.g. dump(x), reach())
)

// UnaryExpr is implemented by Stmt nodes of kind StmtUnaryOp.
type UnaryExpr interface {
	Stmt
	Opcode() UnaryOpcode
	Operand() Stmt
}

// UnaryOpcode enumerates the unary operators the resolver translates.
type UnaryOpcode int

const (
	UnaryInvalid UnaryOpcode = iota
	UnaryNot                 // !x
	UnaryPlus                // +x
	UnaryMinus               // -x
	UnaryPreInc              // ++x
	UnaryPostInc             // x++
	UnaryPreDec              // --x
	UnaryPostDec             // x--
	UnaryAddrOf              // &x
)

// BinaryExpr is implemented by Stmt nodes of kind StmtBinaryOp.
type BinaryExpr interface {
	Stmt
	Opcode() BinaryOpcode
	LHS() Stmt
	RHS() Stmt
}

// BinaryOpcode enumerates the binary operators the resolver translates.
type BinaryOpcode int

const (
	BinaryInvalid BinaryOpcode = iota
	BinaryAdd
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryRem
	BinaryEQ
	BinaryNE
	BinaryLT
	BinaryLE
	BinaryGT
	BinaryGE
	BinaryAssign
	BinaryAddAssign
	BinarySubAssign
	BinaryMulAssign
	BinaryDivAssign
)

// IsAssignment reports whether op is a direct or compound assignment.
func (op BinaryOpcode) IsAssignment() bool {
	switch op {
	case BinaryAssign, BinaryAddAssign, BinarySubAssign, BinaryMulAssign, BinaryDivAssign:
		return true
	default:
		return false
	}
}

// IsComparison reports whether op is a relational/equality comparison.
func (op BinaryOpcode) IsComparison() bool {
	switch op {
	case BinaryEQ, BinaryNE, BinaryLT, BinaryLE, BinaryGT, BinaryGE:
		return true
	default:
		return false
	}
}

// Negate returns the logical negation of a comparison opcode; used by the branch-condition filter
// to add the false-branch constraint.
func (op BinaryOpcode) Negate() BinaryOpcode {
	switch op {
	case BinaryEQ:
		return BinaryNE
	case BinaryNE:
		return BinaryEQ
	case BinaryLT:
		return BinaryGE
	case BinaryLE:
		return BinaryGT
	case BinaryGT:
		return BinaryLE
	case BinaryGE:
		return BinaryLT
	default:
		return BinaryInvalid
	}
}

// CastExpr is implemented by Stmt nodes of kind StmtCast.
type CastExpr interface {
	Stmt
	Operand() Stmt
	SrcType() Type
	DstType() Type
}

// LoadExpr is implemented by Stmt nodes of kind StmtLoad.
type LoadExpr interface {
	Stmt
	Referenced() Stmt
}

// ConditionalExpr is implemented by Stmt nodes of kind StmtConditional.
type ConditionalExpr interface {
	Stmt
	Cond() Stmt
	True() Stmt
	False() Stmt
}

// DeclStmt is implemented by Stmt nodes of kind StmtDeclStmt.
type DeclStmt interface {
	Stmt
	Var() Stmt // the declared variable's DeclRefExpr-like handle, used as a region key
	Init() (Stmt, bool)
}

// IntLiteral / FloatLiteral expose constant values.
type IntLiteral interface {
	Stmt
	Value() int64
}

type FloatLiteral interface {
	Stmt
	Value() float64
}

// DeclRefExpr is implemented by Stmt nodes of kind StmtDeclRefExpr: a reference to a named
// variable. VarKey is a stable identity for the referenced variable, suitable as a region key
// (region interning disambiguates siblings by structural key, per §4.1 of the core design).
type DeclRefExpr interface {
	Stmt
	VarKey() any
}

// CallExpr is implemented by Stmt nodes of kind StmtCall. The core itself only ever conjures a
// fresh result for a call (inter-procedural analysis is out of scope per §1); CallExpr exists so
// debug/inspection-style checkers (checkers/inspect) can recognize calls to well-known diagnostic
// functions such as dump(...) and reach().
type CallExpr interface {
	Stmt
	Callee() string
	Args() []Stmt
	// Range returns the call's source range, so a checker reporting against a call site (e.g.
	// dump(x)) can give its diagnostic a real location instead of a zero Range (§6 "Outputs").
	Range() Range
}

// Range identifies a half-open source range reported by the front end: a single point when
// Length == 0. Deliberately independent of diagnostic.Range (frontend is the lowest-level
// interface surface and carries no dependency on the diagnostic package); callers convert at the
// point they build a diagnostic.Range.
type Range struct {
	File          string
	Line, Col     int
	Offset, Length int
}

// CFGElementKind enumerates the kinds of elements a CFG node (block) may hold, per §4.5 of the
// core design.
type CFGElementKind int

const (
	ElementInvalid CFGElementKind = iota
	ElementStmt
	ElementScopeBegin
	ElementScopeEnd
	ElementLifetimeEnd
	ElementNewAllocator
	ElementInitializer
	ElementConstructor // unsupported: fatal until implemented
	ElementDestructor   // unsupported: fatal until implemented
	ElementCleanup      // unsupported: fatal until implemented
	ElementLoopExit     // unsupported: fatal until implemented
)

// CFGElement is one element within a Node's element list.
type CFGElement struct {
	Kind CFGElementKind
	Stmt Stmt // valid when Kind == ElementStmt (or one of the reserved extension kinds)
}

// Node is a basic block in the front end's CFG.
type Node interface {
	// ID is a stable per-function node identifier.
	ID() int
	// Elements returns this node's CFG elements in execution order.
	Elements() []CFGElement
	// Successors returns this node's successor nodes in a deterministic, front-end-stable order
	// (the WTO and fixpoint engine require this for reproducibility, per §5).
	Successors() []Node
	// Predecessors returns this node's predecessor nodes.
	Predecessors() []Node
	// LastCondition returns the branch condition guarding the transition out of this node, if the
	// node ends in a two-way branch, along with whether a condition was present.
	LastCondition() (Stmt, bool)
}

// CFG is the control-flow graph for a single function activation.
type CFG interface {
	// Entry returns the unique entry node.
	Entry() Node
	// Exit returns the unique exit node (may equal Entry for a trivial function).
	Exit() Node
	// Nodes returns all nodes in a deterministic, stable order (used only for diagnostics/dumps;
	// traversal order for analysis always goes through Successors()).
	Nodes() []Node
}
