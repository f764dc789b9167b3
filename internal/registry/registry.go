// Package registry locates the local cargo-style registry layout: a base
// directory holding cache/<index-id>/ (downloaded archives), src/<index-id>/
// (extracted crates), and index/<index-id>/ (the index clone).
package registry

import (
	"fmt"
	"os"
	"path/filepath"
)

// Registry is a resolved local registry root plus its index id.
type Registry struct {
	base    string
	indexID string
}

// Resolve locates the registry under $CARGO_HOME (falling back to ~/.cargo)
// and discovers the index id from the first entry of the cache/ listing.
// Failure here is a fatal precondition for a run.
func Resolve() (*Registry, error) {
	base := os.Getenv("CARGO_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".cargo")
	}
	return ResolveAt(filepath.Join(base, "registry"))
}

// ResolveAt resolves a registry rooted at an explicit base directory.
func ResolveAt(base string) (*Registry, error) {
	cacheParent := filepath.Join(base, "cache")
	entries, err := os.ReadDir(cacheParent)
	if err != nil {
		return nil, fmt.Errorf("registry doesn't seem to exist at %s: %w", base, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no registry index found under %s", cacheParent)
	}
	return &Registry{base: base, indexID: entries[0].Name()}, nil
}

// IndexID returns the discovered registry index identifier.
func (r *Registry) IndexID() string {
	return r.indexID
}

// Cache returns the raw archive directory for the discovered index.
func (r *Registry) Cache() string {
	return r.subDir("cache")
}

// Src returns the extracted crate directory for the discovered index.
func (r *Registry) Src() string {
	return r.subDir("src")
}

// Index returns the index clone directory for the discovered index.
func (r *Registry) Index() string {
	return r.subDir("index")
}

func (r *Registry) subDir(kind string) string {
	return filepath.Join(r.base, kind, r.indexID)
}
