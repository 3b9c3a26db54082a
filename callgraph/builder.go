package callgraph

import (
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/internal/zlog"
)

// Builder walks a Decl's CFG recording every call site into a DB, the Go analogue of
// CGBuilder's RecursiveASTVisitor (builder.hpp/builder.cpp): where the C++ source visits
// CallExpr/CXXConstructExpr/FunctionDecl over a whole translation unit's AST, Builder walks the
// CFG this package is actually handed (one function at a time, per frontend.Decl), since the core
// has no standalone AST walker of its own. Builder does not copy a call's frontend.CallExpr
// Range() into the rows it writes, so recorded Line/Col are always zero; only Name/Caller/Callee
// are populated.
type Builder struct {
	db  *DB
	log zlog.Logger
}

// NewBuilder returns a Builder writing into db.
func NewBuilder(db *DB) *Builder {
	return &Builder{db: db, log: zlog.For("callgraph.builder")}
}

// VisitDecl records decl itself as a call-graph node and every call expression reachable from its
// CFG as a call site from decl to the callee, mirroring VisitFunctionDecl + VisitCallExpr.
func (b *Builder) VisitDecl(decl frontend.Decl) error {
	if err := b.db.InsertNode(Node{Name: decl.Name(), MangledName: decl.Name()}); err != nil {
		return err
	}

	cfg := decl.CFG()
	if cfg == nil {
		return nil
	}
	for _, node := range cfg.Nodes() {
		for _, elem := range node.Elements() {
			if elem.Kind != frontend.ElementStmt || elem.Stmt == nil {
				continue
			}
			if err := b.visitStmt(decl.Name(), elem.Stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) visitStmt(caller string, stmt frontend.Stmt) error {
	call, ok := stmt.(frontend.CallExpr)
	if !ok {
		return nil
	}
	b.log.Debug().Str("caller", caller).Str("callee", call.Callee()).Msg("recording call site")
	if err := b.db.InsertCallSite(CallSite{Caller: caller, Callee: call.Callee()}); err != nil {
		return err
	}
	for _, arg := range call.Args() {
		if err := b.visitStmt(caller, arg); err != nil {
			return err
		}
	}
	return nil
}
