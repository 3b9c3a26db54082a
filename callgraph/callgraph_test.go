package callgraph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndQuery(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	require.NoError(t, db.InsertNode(Node{Line: 10, Col: 1, Name: "main", MangledName: "main", File: "a.c"}))
	require.NoError(t, db.InsertNode(Node{Line: 20, Col: 1, Name: "helper", MangledName: "helper", File: "a.c"}))
	require.NoError(t, db.InsertCallSite(CallSite{Line: 10, Col: 5, Caller: "main", Callee: "helper"}))
	require.NoError(t, db.Flush())

	nodes, err := db.AllNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	sites, err := db.AllCallSites()
	require.NoError(t, err)
	require.Len(t, sites, 1)
	require.Equal(t, "main", sites[0].Caller)
	require.Equal(t, "helper", sites[0].Callee)
}

func TestBatchedFlushOnThreshold(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	db.batchSize = 2

	require.NoError(t, db.InsertNode(Node{Name: "a"}))
	require.Len(t, db.nodes, 1, "first insert stays buffered below batchSize")
	require.NoError(t, db.InsertNode(Node{Name: "b"}))
	require.Empty(t, db.nodes, "buffer must have auto-flushed once batchSize was reached")

	nodes, err := db.AllNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
}

func TestCallers(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	require.NoError(t, db.InsertCallSite(CallSite{Caller: "main", Callee: "helper"}))
	require.NoError(t, db.InsertCallSite(CallSite{Caller: "other", Callee: "helper"}))
	require.NoError(t, db.Flush())

	callers, err := db.Callers("helper")
	require.NoError(t, err)
	require.Equal(t, []string{"main", "other"}, callers)
}
