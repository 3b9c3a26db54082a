// Package callgraph implements the core's call-graph sidecar database (component "cg" in
// SPEC_FULL §4.9): a small SQLite-backed store of call-graph nodes and call sites, written during
// analysis and queryable afterwards by tooling (e.g. a "who calls this function" query). Grounded
// on original_source/cg/{core/cg.hpp,db/db.hpp,db/db.cpp}'s Database/CallGraphNode/CallSite, swapping
// the C++ source's hand-rolled sqlite3 wrapper for database/sql over modernc.org/sqlite (a pure-Go
// driver, so this package needs no cgo).
package callgraph

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/knightfall/knightfall/internal/zlog"
)

// Node is one function definition recorded in the call graph, mirroring CallGraphNode
// (cg.hpp).
type Node struct {
	Line        int
	Col         int
	Name        string
	MangledName string
	File        string
}

// CallSite is one call expression recorded in the call graph, mirroring CallSite (cg.hpp).
type CallSite struct {
	Line   int
	Col    int
	Caller string
	Callee string
}

// DB is a batching writer and reader over the call-graph sidecar database, mirroring
// knight::cg::Database's buffer-then-flush-in-a-transaction write path (db.cpp
// flush_cg_nodes/flush_callsites).
type DB struct {
	sql *sql.DB
	log zlog.Logger

	batchSize int
	nodes     []Node
	callSites []CallSite
}

// DefaultBatchSize mirrors cg::DefaultWriterElemSize.
const DefaultBatchSize = 512

// Open creates (if absent) and opens the call-graph database at path, creating its tables if
// they do not already exist (mirrors Database::create_table_if_not_exist).
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("callgraph: opening %s: %w", path, err)
	}
	if err := createTables(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &DB{sql: sqlDB, log: zlog.For("callgraph"), batchSize: DefaultBatchSize}, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cg_node (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			line INTEGER, col INTEGER, name TEXT, mangled_name TEXT, file TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS callsite (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			line INTEGER, col INTEGER, caller TEXT, callee TEXT
		)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("callgraph: creating table: %w", err)
		}
	}
	return nil
}

// Close flushes any buffered writes and closes the underlying database connection.
func (db *DB) Close() error {
	if err := db.Flush(); err != nil {
		return err
	}
	return db.sql.Close()
}

// InsertNode buffers n for a later batched write, flushing automatically once the buffer reaches
// batchSize (mirrors Database::insert_cg_node).
func (db *DB) InsertNode(n Node) error {
	db.nodes = append(db.nodes, n)
	if len(db.nodes) >= db.batchSize {
		return db.flushNodes()
	}
	return nil
}

// InsertCallSite buffers cs for a later batched write, flushing automatically once the buffer
// reaches batchSize (mirrors Database::insert_callsite).
func (db *DB) InsertCallSite(cs CallSite) error {
	db.callSites = append(db.callSites, cs)
	if len(db.callSites) >= db.batchSize {
		return db.flushCallSites()
	}
	return nil
}

// Flush writes every buffered node and call site in a single transaction each, mirroring
// flush_cg_nodes/flush_callsites.
func (db *DB) Flush() error {
	if err := db.flushNodes(); err != nil {
		return err
	}
	return db.flushCallSites()
}

func (db *DB) flushNodes() error {
	if len(db.nodes) == 0 {
		return nil
	}
	tx, err := db.sql.Begin()
	if err != nil {
		return fmt.Errorf("callgraph: beginning cg_node transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO cg_node (line, col, name, mangled_name, file) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("callgraph: preparing cg_node insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range db.nodes {
		if _, err := stmt.Exec(n.Line, n.Col, n.Name, n.MangledName, n.File); err != nil {
			tx.Rollback()
			return fmt.Errorf("callgraph: inserting cg_node: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("callgraph: committing cg_node transaction: %w", err)
	}
	db.log.Debug().Int("count", len(db.nodes)).Msg("flushed cg_node batch")
	db.nodes = db.nodes[:0]
	return nil
}

func (db *DB) flushCallSites() error {
	if len(db.callSites) == 0 {
		return nil
	}
	tx, err := db.sql.Begin()
	if err != nil {
		return fmt.Errorf("callgraph: beginning callsite transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO callsite (line, col, caller, callee) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("callgraph: preparing callsite insert: %w", err)
	}
	defer stmt.Close()

	for _, cs := range db.callSites {
		if _, err := stmt.Exec(cs.Line, cs.Col, cs.Caller, cs.Callee); err != nil {
			tx.Rollback()
			return fmt.Errorf("callgraph: inserting callsite: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("callgraph: committing callsite transaction: %w", err)
	}
	db.log.Debug().Int("count", len(db.callSites)).Msg("flushed callsite batch")
	db.callSites = db.callSites[:0]
	return nil
}

// AllNodes returns every call-graph node stored in the database (mirrors
// Database::get_all_cg_nodes).
func (db *DB) AllNodes() ([]Node, error) {
	rows, err := db.sql.Query(`SELECT line, col, name, mangled_name, file FROM cg_node`)
	if err != nil {
		return nil, fmt.Errorf("callgraph: querying cg_node: %w", err)
	}
	defer rows.Close()

	var out []Node
	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.Line, &n.Col, &n.Name, &n.MangledName, &n.File); err != nil {
			return nil, fmt.Errorf("callgraph: scanning cg_node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// AllCallSites returns every call site stored in the database (mirrors
// Database::get_all_callsites).
func (db *DB) AllCallSites() ([]CallSite, error) {
	rows, err := db.sql.Query(`SELECT line, col, caller, callee FROM callsite`)
	if err != nil {
		return nil, fmt.Errorf("callgraph: querying callsite: %w", err)
	}
	defer rows.Close()

	var out []CallSite
	for rows.Next() {
		var cs CallSite
		if err := rows.Scan(&cs.Line, &cs.Col, &cs.Caller, &cs.Callee); err != nil {
			return nil, fmt.Errorf("callgraph: scanning callsite: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// Callers returns every caller name recorded for a call to callee (supports the "who calls this
// function" query the sidecar exists for).
func (db *DB) Callers(callee string) ([]string, error) {
	rows, err := db.sql.Query(`SELECT DISTINCT caller FROM callsite WHERE callee = ? ORDER BY caller`, callee)
	if err != nil {
		return nil, fmt.Errorf("callgraph: querying callers of %s: %w", callee, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var caller string
		if err := rows.Scan(&caller); err != nil {
			return nil, fmt.Errorf("callgraph: scanning caller: %w", err)
		}
		out = append(out, caller)
	}
	return out, rows.Err()
}
