package index

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Index lines can get long for crates with many versions of metadata; give the
// scanner plenty of headroom.
const maxLineBytes = 8 << 20

var errEmptyCrateFile = errors.New("no version records in crate file")

type versionLine struct {
	Name string           `json:"name"`
	Vers string           `json:"vers"`
	Deps []dependencyLine `json:"deps"`
}

type dependencyLine struct {
	Name string `json:"name"`
	// Package carries the real crate name when the dependency is declared
	// under a renamed alias.
	Package string `json:"package"`
}

func (d dependencyLine) crateName() string {
	if d.Package != "" {
		return d.Package
	}
	return d.Name
}

// Crates enumerates the highest version of every crate in the index, keeping
// only records for which keep returns true (nil keeps everything).
//
// Enumeration fans out over a fixed pool of workers parsing crate files in
// parallel; workers <= 0 selects the available parallelism. Results are merged
// without any ordering guarantee. Files that cannot be read or parsed are
// skipped; only a failed traversal of the index tree itself is an error.
func (ix *Index) Crates(ctx context.Context, workers int, keep func(Record) bool) ([]Record, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	paths := make(chan string)
	var mu sync.Mutex
	var records []Record

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(paths)
		return filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable entries degrade to "absent".
				return nil
			}
			name := d.Name()
			if d.IsDir() {
				if path != ix.root && strings.HasPrefix(name, ".") {
					return fs.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(name, ".") || name == configFileName {
				return nil
			}
			select {
			case paths <- path:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for path := range paths {
				rec, err := readHighestVersion(path)
				if err != nil {
					continue
				}
				if keep != nil && !keep(rec) {
					continue
				}
				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// readHighestVersion parses the last non-empty line of a crate file, which the
// index orders as the most recently published version.
func readHighestVersion(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	var last []byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			last = []byte(line)
		}
	}
	if err := sc.Err(); err != nil {
		return Record{}, err
	}
	if len(last) == 0 {
		return Record{}, errEmptyCrateFile
	}

	var v versionLine
	if err := json.Unmarshal(last, &v); err != nil {
		return Record{}, err
	}
	if v.Name == "" || v.Vers == "" {
		return Record{}, errEmptyCrateFile
	}

	rec := Record{Name: v.Name, Version: v.Vers}
	if len(v.Deps) > 0 {
		rec.Deps = make([]string, 0, len(v.Deps))
		for _, d := range v.Deps {
			rec.Deps = append(rec.Deps, d.crateName())
		}
	}
	return rec, nil
}
