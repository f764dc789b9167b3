package registry

import (
	"fmt"
	"os"
)

// Inventory is the set of name-version keys already materialized under the
// src/ directory. Membership is exact string equality; no semantic version
// normalization is applied.
type Inventory map[string]struct{}

// Key derives the inventory key for one crate version.
func Key(name, version string) string {
	return name + "-" + version
}

// ScanInventory builds the inventory from the src directory listing. Entries
// are taken verbatim as keys; only a failure to list the directory itself is
// an error (a fatal precondition for the caller).
func ScanInventory(srcDir string) (Inventory, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("scan local crates at %s: %w", srcDir, err)
	}
	inv := make(Inventory, len(entries))
	for _, e := range entries {
		inv[e.Name()] = struct{}{}
	}
	return inv, nil
}

// Contains reports whether the crate version is already materialized locally.
func (inv Inventory) Contains(name, version string) bool {
	_, ok := inv[Key(name, version)]
	return ok
}
