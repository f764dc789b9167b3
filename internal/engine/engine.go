package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cratepull/internal/config"
	"cratepull/internal/dialog"
	"cratepull/internal/fetcher"
	"cratepull/internal/index"
	"cratepull/internal/registry"

	"github.com/schollz/progressbar/v3"
)

// Exit code contract:
// 0 = run completed; individual crate failures are warned about, not fatal
// 1 = fatal error (registry root, index, inventory, or index config unresolved)
const (
	exitOK    = 0
	exitFatal = 1
)

type Engine struct {
	cfg *config.Config

	// stderr is a test seam for all console output; nil means os.Stderr.
	stderr io.Writer
	// resolveRegistry is a test seam; nil means registry.Resolve.
	resolveRegistry func() (*registry.Registry, error)
	// client is a test seam; nil builds one from the config.
	client *fetcher.Client
}

func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) errW() io.Writer {
	if e.stderr != nil {
		return e.stderr
	}
	return os.Stderr
}

func (e *Engine) fatal(err error) int {
	fmt.Fprintf(e.errW(), "Error: %v\n", err)
	return exitFatal
}

// Run drives the full pipeline: discover dependents in the index, subtract
// the local inventory, then sequentially fetch and extract what is missing.
func (e *Engine) Run(ctx context.Context) int {
	w := e.errW()

	resolve := e.resolveRegistry
	if resolve == nil {
		resolve = registry.Resolve
	}
	reg, err := resolve()
	if err != nil {
		return e.fatal(err)
	}

	ix, err := index.Open(reg.Index())
	if err != nil {
		return e.fatal(err)
	}

	spin := e.startSpinner(fmt.Sprintf("Finding all current crates that use `%s`...", e.cfg.Targeting.Dep))
	dependents, err := FindDependents(ctx, ix, e.cfg.Targeting.Dep, e.cfg.Runtime.Workers)
	spin.stop()
	if err != nil {
		return e.fatal(err)
	}

	dialog.At(w, 1).Info("Found {} crates using {}!", dialog.Count(len(dependents)), dialog.Text(e.cfg.Targeting.Dep))

	scanDlg := dialog.Start(w, "Scanning locally downloaded crates...")
	inv, err := registry.ScanInventory(reg.Src())
	if err != nil {
		return e.fatal(err)
	}
	dlCfg, err := ix.Config()
	if err != nil {
		return e.fatal(err)
	}

	targets := BuildPlan(dependents, inv, dlCfg)
	if len(targets) == 0 {
		scanDlg.Info("No crates to download!")
	} else {
		scanDlg.Info("{} crates to download", dialog.Count(len(targets)))
	}

	if e.cfg.Targeting.DryRun {
		dialog.Start(w, "Finished dry run!")
		return exitOK
	}
	if len(targets) == 0 {
		return exitOK
	}

	client := e.client
	if client == nil {
		client = fetcher.NewClient(e.cfg.Network.UserAgent, fetcher.WithVerbose(e.cfg.Runtime.Verbose, w))
	}
	throttle := fetcher.NewThrottle(e.cfg.Network.Throttle)

	bar := progressbar.NewOptions(len(targets),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	dlDlg := dialog.Start(w, "Downloading crates...")
	orch := NewOrchestrator(client, throttle, reg.Cache(), reg.Src())
	orch.observe = func(Outcome) { _ = bar.Add(1) }

	_, failures := orch.Run(ctx, targets, dlDlg)
	_ = bar.Finish()
	fmt.Fprintln(w)

	if failures != 0 {
		dlDlg.Warn("Failed pulling {} crates", dialog.Count(failures))
	}
	return exitOK
}

// spinner animates an indeterminate progress indicator while the index scan
// runs; enumeration can take a while on a full index clone.
type spinner struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
	w    io.Writer
}

func (e *Engine) startSpinner(msg string) *spinner {
	s := &spinner{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(e.errW()),
			progressbar.OptionSetDescription(msg),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionThrottle(100*time.Millisecond),
		),
		done: make(chan struct{}),
		w:    e.errW(),
	}
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				_ = s.bar.Add(1)
			}
		}
	}()
	return s
}

func (s *spinner) stop() {
	close(s.done)
	_ = s.bar.Finish()
	fmt.Fprintln(s.w)
}
