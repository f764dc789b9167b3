package engine

// Stage identifies the step of the per-crate pipeline at which processing
// stopped.
type Stage string

const (
	StageNetwork    Stage = "network"
	StageFileCreate Stage = "file-create"
	StageFileWrite  Stage = "file-write"
	StageFileOpen   Stage = "file-open"
	StageExtract    Stage = "extract"
)

// Outcome is the tagged result of processing one fetch target: either the
// crate was downloaded and extracted (FileName set) or it failed at a stage
// (Stage and Err set). A failed target is never retried within a run.
type Outcome struct {
	Target   FetchTarget
	FileName string
	Stage    Stage
	Err      error
}

// Failed reports whether the target failed at any stage.
func (o Outcome) Failed() bool {
	return o.Err != nil
}
