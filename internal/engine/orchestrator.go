package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"cratepull/internal/archive"
	"cratepull/internal/dialog"
	"cratepull/internal/fetcher"
)

// Orchestrator downloads and extracts planned targets strictly one at a time,
// with a mandatory delay before every network request. Sequential fetching is
// a policy requirement of the registry's crawling rules, not a performance
// accident, so targets must never be processed concurrently or pipelined.
type Orchestrator struct {
	client   *fetcher.Client
	throttle *fetcher.Throttle
	cacheDir string
	srcDir   string

	// wait is a test seam; nil means throttle.Wait.
	wait func(ctx context.Context) error
	// extract is a test seam; nil means archive.Untar.
	extract func(r io.Reader, dest string) error
	// observe, when set, is called once per completed target (after its
	// outcome is recorded); the engine uses it to advance the progress bar.
	observe func(Outcome)
}

func NewOrchestrator(client *fetcher.Client, throttle *fetcher.Throttle, cacheDir, srcDir string) *Orchestrator {
	return &Orchestrator{
		client:   client,
		throttle: throttle,
		cacheDir: cacheDir,
		srcDir:   srcDir,
	}
}

// Run processes every target in order, isolating per-target failures: one bad
// crate never aborts the run and nothing is retried. Progress is reported
// through dlg one nesting level below it. Run returns all outcomes plus the
// failure count.
func (o *Orchestrator) Run(ctx context.Context, targets []FetchTarget, dlg dialog.Dialog) ([]Outcome, int) {
	outcomes := make([]Outcome, 0, len(targets))
	failures := 0

	for _, t := range targets {
		out := o.fetchOne(ctx, t, dlg)
		if out.Failed() {
			failures++
		}
		outcomes = append(outcomes, out)
		if o.observe != nil {
			o.observe(out)
		}
	}

	return outcomes, failures
}

// fetchOne runs the per-target state machine: throttle, fetch, persist,
// re-open, decompress. Every failure is terminal for this target only.
func (o *Orchestrator) fetchOne(ctx context.Context, t FetchTarget, dlg dialog.Dialog) Outcome {
	if err := o.waitFn()(ctx); err != nil {
		return Outcome{Target: t, Stage: StageNetwork, Err: err}
	}

	crateDlg := dlg.Info("Downloading {}...", dialog.Text(t.URL))

	resp, err := o.client.Get(ctx, t.URL)
	if err != nil {
		crateDlg.Warn("Error downloading file: {}, Err: {}", dialog.Text(t.URL), dialog.Err(err))
		return Outcome{Target: t, Stage: StageNetwork, Err: err}
	}
	defer resp.Body.Close()

	dlPath := filepath.Join(o.cacheDir, t.FileName)
	dlFile, err := os.Create(dlPath)
	if err != nil {
		crateDlg.Warn("Failed creating file: {}, Err: {}", dialog.Path(dlPath), dialog.Err(err))
		return Outcome{Target: t, Stage: StageFileCreate, Err: err}
	}

	if _, err := io.Copy(dlFile, resp.Body); err != nil {
		_ = dlFile.Close()
		crateDlg.Warn("Failed downloading file: {}, Err: {}", dialog.Text(t.FileName), dialog.Err(err))
		return Outcome{Target: t, Stage: StageFileWrite, Err: err}
	}
	if err := dlFile.Close(); err != nil {
		crateDlg.Warn("Failed downloading file: {}, Err: {}", dialog.Text(t.FileName), dialog.Err(err))
		return Outcome{Target: t, Stage: StageFileWrite, Err: err}
	}

	f, err := os.Open(dlPath)
	if err != nil {
		crateDlg.Warn("Failed opening file: {}, Err: {}", dialog.Path(dlPath), dialog.Err(err))
		return Outcome{Target: t, Stage: StageFileOpen, Err: err}
	}
	defer f.Close()

	if err := o.extractFn()(f, o.srcDir); err != nil {
		crateDlg.Warn("Failed extracting file: {}, Err: {}", dialog.Path(dlPath), dialog.Err(err))
		return Outcome{Target: t, Stage: StageExtract, Err: err}
	}

	crateDlg.Success("Downloaded and extracted {}", dialog.Text(t.FileName))
	return Outcome{Target: t, FileName: t.FileName}
}

func (o *Orchestrator) waitFn() func(ctx context.Context) error {
	if o.wait != nil {
		return o.wait
	}
	return o.throttle.Wait
}

func (o *Orchestrator) extractFn() func(r io.Reader, dest string) error {
	if o.extract != nil {
		return o.extract
	}
	return archive.Untar
}
