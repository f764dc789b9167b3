package engine

import (
	"cratepull/internal/index"
	"cratepull/internal/registry"
)

// FetchTarget is one crate artifact awaiting download: the resolved URL plus
// its destination file name in the cache. Each target is consumed exactly
// once by the orchestrator.
type FetchTarget struct {
	Name     string
	Version  string
	URL      string
	FileName string
}

// BuildPlan subtracts the local inventory from the dependent records and
// resolves each remaining record to a download URL. Candidates whose URL
// cannot be resolved are dropped from the plan rather than failing the run.
// The plan preserves the input enumeration order.
func BuildPlan(records []index.Record, inv registry.Inventory, dl *index.DownloadConfig) []FetchTarget {
	targets := make([]FetchTarget, 0, len(records))
	for _, rec := range records {
		if inv.Contains(rec.Name, rec.Version) {
			continue
		}
		url, err := dl.DownloadURL(rec.Name, rec.Version)
		if err != nil {
			continue
		}
		targets = append(targets, FetchTarget{
			Name:     rec.Name,
			Version:  rec.Version,
			URL:      url,
			FileName: registry.Key(rec.Name, rec.Version) + ".crate",
		})
	}
	return targets
}
