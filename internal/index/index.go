// Package index reads a local clone of a crates.io-style registry index.
//
// The index is a directory tree of JSON-lines files, one file per crate, with
// one line per published version. The last line of a file is the most recently
// published version, which is the only one this package surfaces. A
// config.json at the index root describes how download URLs are built.
package index

import (
	"fmt"
	"os"
)

// Record is the highest published version of one crate. It is produced once
// per enumeration and read-only afterwards.
type Record struct {
	Name    string
	Version string

	// Deps holds the effective crate names this version depends on. When the
	// index declares a dependency under a renamed alias, the original crate
	// name from its "package" field is used.
	Deps []string
}

// DependsOn reports whether the record declares a dependency on crate.
func (r Record) DependsOn(crate string) bool {
	for _, dep := range r.Deps {
		if dep == crate {
			return true
		}
	}
	return false
}

// Index is an enumerable on-disk registry index clone.
type Index struct {
	root string
}

// Open validates that root is a directory and returns an Index over it.
func Open(root string) (*Index, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open registry index: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("open registry index: %s is not a directory", root)
	}
	return &Index{root: root}, nil
}

// Root returns the index root directory.
func (ix *Index) Root() string {
	return ix.root
}
