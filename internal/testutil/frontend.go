// Package testutil provides minimal, hand-rolled implementations of the frontend package's
// interfaces, standing in for a real C/C++ parser front end in tests, the same role nilaway's
// annotation/helper_test.go mocks play for go/types-derived interfaces. Exported so every package
// needing a fake Decl/CFG/Stmt can share one implementation instead of redefining it per _test.go.
package testutil

import "github.com/knightfall/knightfall/frontend"

// Type is a minimal frontend.Type.
type Type struct {
	K    frontend.TypeKind
	Name string
}

func (t Type) Kind() frontend.TypeKind { return t.K }
func (t Type) String() string          { return t.Name }
func (t Type) Equal(o frontend.Type) bool {
	ot, ok := o.(Type)
	return ok && ot.K == t.K && ot.Name == t.Name
}

var (
	IntType  = Type{K: frontend.TypeInt, Name: "int"}
	BoolType = Type{K: frontend.TypeBool, Name: "bool"}
	PtrType  = Type{K: frontend.TypePointer, Name: "ptr"}
)

var nextStmtID uint64

// NextID returns a fresh, process-unique Stmt ID, so callers don't need to track a counter
// themselves.
func NextID() uint64 {
	nextStmtID++
	return nextStmtID
}

// Stmt is a generic fake Stmt embeddable by every expression-kind fake below.
type Stmt struct {
	IDVal   uint64
	KindVal frontend.StmtKind
	TypeVal frontend.Type
}

func (s Stmt) ID() uint64            { return s.IDVal }
func (s Stmt) Kind() frontend.StmtKind { return s.KindVal }
func (s Stmt) Type() frontend.Type   { return s.TypeVal }

// NewStmt returns a bare Stmt of kind k and type typ with a fresh ID.
func NewStmt(k frontend.StmtKind, typ frontend.Type) Stmt {
	return Stmt{IDVal: NextID(), KindVal: k, TypeVal: typ}
}

// IntLiteral is a fake frontend.IntLiteral.
type IntLiteral struct {
	Stmt
	Val int64
}

func NewIntLiteral(v int64, typ frontend.Type) *IntLiteral {
	return &IntLiteral{Stmt: NewStmt(frontend.StmtIntLiteral, typ), Val: v}
}
func (l *IntLiteral) Value() int64 { return l.Val }

// DeclRefExpr is a fake frontend.DeclRefExpr.
type DeclRefExpr struct {
	Stmt
	Key any
}

func NewDeclRef(key any, typ frontend.Type) *DeclRefExpr {
	return &DeclRefExpr{Stmt: NewStmt(frontend.StmtDeclRefExpr, typ), Key: key}
}
func (d *DeclRefExpr) VarKey() any { return d.Key }

// UnaryExpr is a fake frontend.UnaryExpr.
type UnaryExpr struct {
	Stmt
	Op          frontend.UnaryOpcode
	OperandStmt frontend.Stmt
}

func NewUnary(op frontend.UnaryOpcode, operand frontend.Stmt, typ frontend.Type) *UnaryExpr {
	return &UnaryExpr{Stmt: NewStmt(frontend.StmtUnaryOp, typ), Op: op, OperandStmt: operand}
}
func (u *UnaryExpr) Opcode() frontend.UnaryOpcode { return u.Op }
func (u *UnaryExpr) Operand() frontend.Stmt       { return u.OperandStmt }

// BinaryExpr is a fake frontend.BinaryExpr.
type BinaryExpr struct {
	Stmt
	Op       frontend.BinaryOpcode
	LHSStmt  frontend.Stmt
	RHSStmt  frontend.Stmt
}

func NewBinary(op frontend.BinaryOpcode, lhs, rhs frontend.Stmt, typ frontend.Type) *BinaryExpr {
	return &BinaryExpr{Stmt: NewStmt(frontend.StmtBinaryOp, typ), Op: op, LHSStmt: lhs, RHSStmt: rhs}
}
func (b *BinaryExpr) Opcode() frontend.BinaryOpcode { return b.Op }
func (b *BinaryExpr) LHS() frontend.Stmt            { return b.LHSStmt }
func (b *BinaryExpr) RHS() frontend.Stmt            { return b.RHSStmt }

// CallExpr is a fake frontend.CallExpr.
type CallExpr struct {
	Stmt
	CalleeName string
	ArgStmts   []frontend.Stmt
	RangeVal   frontend.Range
}

func NewCall(callee string, typ frontend.Type, args ...frontend.Stmt) *CallExpr {
	return &CallExpr{Stmt: NewStmt(frontend.StmtCall, typ), CalleeName: callee, ArgStmts: args}
}

// NewCallAt is NewCall plus an explicit source range, for tests that assert on a diagnostic's
// Range.
func NewCallAt(callee string, typ frontend.Type, rng frontend.Range, args ...frontend.Stmt) *CallExpr {
	c := NewCall(callee, typ, args...)
	c.RangeVal = rng
	return c
}

func (c *CallExpr) Callee() string        { return c.CalleeName }
func (c *CallExpr) Args() []frontend.Stmt { return c.ArgStmts }
func (c *CallExpr) Range() frontend.Range { return c.RangeVal }

// FloatLiteral is a fake frontend.FloatLiteral.
type FloatLiteral struct {
	Stmt
	Val float64
}

func NewFloatLiteral(v float64, typ frontend.Type) *FloatLiteral {
	return &FloatLiteral{Stmt: NewStmt(frontend.StmtFloatLiteral, typ), Val: v}
}
func (l *FloatLiteral) Value() float64 { return l.Val }

// LoadExpr is a fake frontend.LoadExpr: the implicit lvalue-to-rvalue conversion wrapping a
// referenced expression (typically a DeclRefExpr).
type LoadExpr struct {
	Stmt
	Ref frontend.Stmt
}

func NewLoad(ref frontend.Stmt, typ frontend.Type) *LoadExpr {
	return &LoadExpr{Stmt: NewStmt(frontend.StmtLoad, typ), Ref: ref}
}
func (l *LoadExpr) Referenced() frontend.Stmt { return l.Ref }

// CastExpr is a fake frontend.CastExpr.
type CastExpr struct {
	Stmt
	OperandStmt       frontend.Stmt
	SrcTyp, DstTyp    frontend.Type
}

func NewCast(operand frontend.Stmt, srcTyp, dstTyp frontend.Type) *CastExpr {
	return &CastExpr{Stmt: NewStmt(frontend.StmtCast, dstTyp), OperandStmt: operand, SrcTyp: srcTyp, DstTyp: dstTyp}
}
func (c *CastExpr) Operand() frontend.Stmt { return c.OperandStmt }
func (c *CastExpr) SrcType() frontend.Type { return c.SrcTyp }
func (c *CastExpr) DstType() frontend.Type { return c.DstTyp }

// ConditionalExpr is a fake frontend.ConditionalExpr.
type ConditionalExpr struct {
	Stmt
	CondStmt, TrueStmt, FalseStmt frontend.Stmt
}

func NewConditional(cond, trueStmt, falseStmt frontend.Stmt, typ frontend.Type) *ConditionalExpr {
	return &ConditionalExpr{Stmt: NewStmt(frontend.StmtConditional, typ), CondStmt: cond, TrueStmt: trueStmt, FalseStmt: falseStmt}
}
func (c *ConditionalExpr) Cond() frontend.Stmt  { return c.CondStmt }
func (c *ConditionalExpr) True() frontend.Stmt  { return c.TrueStmt }
func (c *ConditionalExpr) False() frontend.Stmt { return c.FalseStmt }

// DeclStmt is a fake frontend.DeclStmt.
type DeclStmt struct {
	Stmt
	VarStmt  frontend.Stmt
	InitStmt frontend.Stmt
	HasInit  bool
}

func NewDeclStmt(v frontend.Stmt, init frontend.Stmt, hasInit bool) *DeclStmt {
	return &DeclStmt{Stmt: NewStmt(frontend.StmtDeclStmt, v.Type()), VarStmt: v, InitStmt: init, HasInit: hasInit}
}
func (d *DeclStmt) Var() frontend.Stmt          { return d.VarStmt }
func (d *DeclStmt) Init() (frontend.Stmt, bool) { return d.InitStmt, d.HasInit }

// Node is a fake frontend.Node with mutable successor/predecessor slices, built up after
// construction (CFGs are usually cyclic, so successors can't always be set at construction time).
type Node struct {
	IDVal     int
	Elems     []frontend.CFGElement
	Succs     []frontend.Node
	Preds     []frontend.Node
	Cond      frontend.Stmt
	HasCond   bool
}

func NewNode(id int) *Node { return &Node{IDVal: id} }

func (n *Node) ID() int                       { return n.IDVal }
func (n *Node) Elements() []frontend.CFGElement { return n.Elems }
func (n *Node) Successors() []frontend.Node   { return n.Succs }
func (n *Node) Predecessors() []frontend.Node { return n.Preds }
func (n *Node) LastCondition() (frontend.Stmt, bool) { return n.Cond, n.HasCond }

// AddStmt appends a statement element to n.
func (n *Node) AddStmt(s frontend.Stmt) { n.Elems = append(n.Elems, frontend.CFGElement{Kind: frontend.ElementStmt, Stmt: s}) }

// LinkTo adds succ as a successor of n and n as a predecessor of succ.
func (n *Node) LinkTo(succ *Node) {
	n.Succs = append(n.Succs, succ)
	succ.Preds = append(succ.Preds, n)
}

// CFG is a fake frontend.CFG.
type CFG struct {
	EntryNode, ExitNode *Node
	AllNodes            []*Node
}

func (c *CFG) Entry() frontend.Node { return c.EntryNode }
func (c *CFG) Exit() frontend.Node  { return c.ExitNode }
func (c *CFG) Nodes() []frontend.Node {
	out := make([]frontend.Node, len(c.AllNodes))
	for i, n := range c.AllNodes {
		out[i] = n
	}
	return out
}

// Decl is a fake frontend.Decl.
type Decl struct {
	NameVal string
	CFGVal  *CFG
}

func (d *Decl) Name() string      { return d.NameVal }
func (d *Decl) CFG() frontend.CFG {
	if d.CFGVal == nil {
		return nil
	}
	return d.CFGVal
}
