package engine

import (
	"context"

	"cratepull/internal/index"
)

// FindDependents enumerates the index and keeps the crates whose highest
// published version depends on crate. Traversal fans out over workers
// (0 = available parallelism) and the result carries no ordering guarantee;
// downstream filtering is set-based, so none is needed.
func FindDependents(ctx context.Context, ix *index.Index, crate string, workers int) ([]index.Record, error) {
	return ix.Crates(ctx, workers, func(r index.Record) bool {
		return r.DependsOn(crate)
	})
}
