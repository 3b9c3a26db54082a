// Package vfs defines the virtual filesystem and compilation-database interfaces the CLI driver
// consumes, grounded on original_source/include/util/vfs.hpp's overlay-filesystem design
// (`get_vfs_from_yaml`, `create_base_vfs`) re-expressed as a small Go interface instead of an LLVM
// `vfs::FileSystem` subclass hierarchy, plus an in-memory implementation so the core is runnable
// end-to-end in tests without touching a real disk.
package vfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FS is the minimal filesystem surface the driver and diagnostic.Applier need: read a file's
// bytes, write a replacement back, and stat a path. A real C/C++ front end additionally consumes
// the OS filesystem directly for header search; this interface only covers what this repository's
// own Go code touches.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FS directly against the operating system's filesystem, the production default.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error)      { return os.ReadFile(path) }
func (OSFS) WriteFile(path string, data []byte) error  { return os.WriteFile(path, data, 0o644) }
func (OSFS) Stat(path string) (fs.FileInfo, error)     { return os.Stat(path) }

// MemFS implements FS entirely in memory, used by tests that exercise diagnostic.Applier or the
// driver without touching a real disk (§1: "ships minimal, swappable reference implementations...
// so the core is runnable end-to-end in tests without a real C/C++ front end").
type MemFS struct {
	files map[string][]byte
}

// NewMemFS returns an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{files: map[string][]byte{}}
}

// Put seeds path with contents, overwriting any prior contents.
func (m *MemFS) Put(path string, contents []byte) {
	m.files[path] = contents
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemFS) WriteFile(path string, data []byte) error {
	m.Put(path, data)
	return nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return memFileInfo{name: filepath.Base(path), size: int64(len(data))}, nil
}

type memFileInfo struct {
	name string
	size int64
}

func (i memFileInfo) Name() string       { return i.name }
func (i memFileInfo) Size() int64        { return i.size }
func (i memFileInfo) Mode() fs.FileMode  { return 0o644 }
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return false }
func (i memFileInfo) Sys() any           { return nil }

// CompileCommand is one entry of a compile_commands.json-style compilation database, per
// SPEC_FULL §3.1.
type CompileCommand struct {
	File      string
	Directory string
	Args      []string
}

// CompilationDatabase is an ordered set of compile commands, keyed by file for fast lookup while
// still iterable in a deterministic order.
type CompilationDatabase struct {
	byFile map[string]CompileCommand
	order  []string
}

// NewCompilationDatabase builds a database from cmds, indexed by File. Later entries for the same
// File overwrite earlier ones, matching how compile_commands.json readers treat duplicate entries.
func NewCompilationDatabase(cmds []CompileCommand) *CompilationDatabase {
	db := &CompilationDatabase{byFile: map[string]CompileCommand{}}
	for _, c := range cmds {
		if _, exists := db.byFile[c.File]; !exists {
			db.order = append(db.order, c.File)
		}
		db.byFile[c.File] = c
	}
	return db
}

// Lookup returns the compile command for file, if present.
func (db *CompilationDatabase) Lookup(file string) (CompileCommand, bool) {
	c, ok := db.byFile[file]
	return c, ok
}

// Files returns every file named in the database, in the order first encountered.
func (db *CompilationDatabase) Files() []string {
	out := make([]string, len(db.order))
	copy(out, db.order)
	return out
}

// SortedFiles returns every file named in the database in lexicographic order, for callers that
// need reproducible iteration independent of input order (e.g. concurrent-TU dispatch under §5).
func (db *CompilationDatabase) SortedFiles() []string {
	out := db.Files()
	sort.Strings(out)
	return out
}

// MakeAbsolute mirrors knight::fs::make_absolute: resolves file against the current working
// directory if it is not already absolute. An empty path resolves to the working directory.
func MakeAbsolute(file string) (string, error) {
	if filepath.IsAbs(file) {
		return filepath.Clean(file), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("vfs: cannot resolve working directory: %w", err)
	}
	return filepath.Join(wd, file), nil
}
