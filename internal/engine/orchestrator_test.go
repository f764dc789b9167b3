package engine

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"cratepull/internal/dialog"
	"cratepull/internal/fetcher"

	"github.com/fatih/color"
	"github.com/klauspost/compress/gzip"
)

func quietDialog(t *testing.T) dialog.Dialog {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
	return dialog.At(io.Discard, 1)
}

// crateServer serves a valid crate tarball at /good/..., a 500 at /broken/...,
// and non-gzip bytes at /garbage/....
func crateServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		switch {
		case len(r.URL.Path) > len("/good/") && r.URL.Path[:6] == "/good/":
			_, _ = w.Write(testCrate(t, "good-1.0.0"))
		case len(r.URL.Path) > len("/garbage/") && r.URL.Path[:9] == "/garbage/":
			_, _ = w.Write([]byte("not a gzip stream"))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
}

func testCrate(t *testing.T, topDir string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := "[package]\n"
	hdr := &tar.Header{Name: topDir + "/Cargo.toml", Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(content))}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestOrchestrator(t *testing.T, interval time.Duration) (*Orchestrator, string, string) {
	t.Helper()
	cacheDir := t.TempDir()
	srcDir := t.TempDir()
	orch := NewOrchestrator(fetcher.NewClient("cratepull-test"), fetcher.NewThrottle(interval), cacheDir, srcDir)
	return orch, cacheDir, srcDir
}

func TestOrchestratorIsolatesFailures(t *testing.T) {
	srv := crateServer(t, nil)
	defer srv.Close()

	orch, cacheDir, srcDir := newTestOrchestrator(t, 0)
	targets := []FetchTarget{
		{Name: "good", Version: "1.0.0", URL: srv.URL + "/good/1.0.0", FileName: "good-1.0.0.crate"},
		{Name: "broken", Version: "0.1.0", URL: srv.URL + "/broken/0.1.0", FileName: "broken-0.1.0.crate"},
		{Name: "garbage", Version: "0.2.0", URL: srv.URL + "/garbage/0.2.0", FileName: "garbage-0.2.0.crate"},
	}

	outcomes, failures := orch.Run(context.Background(), targets, quietDialog(t))

	if failures != 2 {
		t.Fatalf("failures = %d, want 2", failures)
	}
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}

	if outcomes[0].Failed() {
		t.Fatalf("good target failed: %v", outcomes[0].Err)
	}
	if outcomes[0].FileName != "good-1.0.0.crate" {
		t.Fatalf("good outcome file = %q", outcomes[0].FileName)
	}
	if outcomes[1].Stage != StageNetwork {
		t.Fatalf("broken stage = %s, want network", outcomes[1].Stage)
	}
	if outcomes[2].Stage != StageExtract {
		t.Fatalf("garbage stage = %s, want extract", outcomes[2].Stage)
	}

	// The successful target's artifacts survive the later failures.
	if _, err := os.Stat(filepath.Join(cacheDir, "good-1.0.0.crate")); err != nil {
		t.Fatalf("cached archive missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(srcDir, "good-1.0.0", "Cargo.toml")); err != nil {
		t.Fatalf("extracted crate missing: %v", err)
	}
}

func TestOrchestratorThrottlesBeforeEveryRequest(t *testing.T) {
	var requests atomic.Int64
	srv := crateServer(t, &requests)
	defer srv.Close()

	orch, _, _ := newTestOrchestrator(t, time.Second)
	var requestsAtWait []int64
	orch.wait = func(ctx context.Context) error {
		requestsAtWait = append(requestsAtWait, requests.Load())
		return nil
	}

	targets := []FetchTarget{
		{Name: "good", Version: "1.0.0", URL: srv.URL + "/good/1.0.0", FileName: "good-1.0.0.crate"},
		{Name: "broken", Version: "0.1.0", URL: srv.URL + "/broken/0.1.0", FileName: "broken-0.1.0.crate"},
	}
	orch.Run(context.Background(), targets, quietDialog(t))

	// One wait per target, failures included, and each wait happens before
	// the corresponding request goes out.
	if len(requestsAtWait) != 2 {
		t.Fatalf("throttle waited %d times, want 2", len(requestsAtWait))
	}
	for i, seen := range requestsAtWait {
		if seen != int64(i) {
			t.Fatalf("wait %d observed %d prior requests, want %d", i, seen, i)
		}
	}
}

func TestOrchestratorWaitErrorAbortsTarget(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	orch, _, _ := newTestOrchestrator(t, time.Second)
	orch.wait = func(ctx context.Context) error { return context.Canceled }

	targets := []FetchTarget{
		{Name: "good", Version: "1.0.0", URL: srv.URL + "/good/1.0.0", FileName: "good-1.0.0.crate"},
	}
	outcomes, failures := orch.Run(context.Background(), targets, quietDialog(t))

	if failures != 1 || outcomes[0].Stage != StageNetwork {
		t.Fatalf("outcome = %+v, failures = %d", outcomes[0], failures)
	}
	if requests != 0 {
		t.Fatalf("server saw %d requests, want 0", requests)
	}
}

func TestOrchestratorStageFileCreate(t *testing.T) {
	srv := crateServer(t, nil)
	defer srv.Close()

	orch, _, _ := newTestOrchestrator(t, 0)
	orch.cacheDir = filepath.Join(t.TempDir(), "does", "not", "exist")

	targets := []FetchTarget{
		{Name: "good", Version: "1.0.0", URL: srv.URL + "/good/1.0.0", FileName: "good-1.0.0.crate"},
	}
	outcomes, failures := orch.Run(context.Background(), targets, quietDialog(t))

	if failures != 1 {
		t.Fatalf("failures = %d, want 1", failures)
	}
	if outcomes[0].Stage != StageFileCreate {
		t.Fatalf("stage = %s, want file-create", outcomes[0].Stage)
	}
}

func TestOrchestratorExtractSeam(t *testing.T) {
	srv := crateServer(t, nil)
	defer srv.Close()

	orch, _, _ := newTestOrchestrator(t, 0)
	extractErr := errors.New("simulated extract failure")
	orch.extract = func(r io.Reader, dest string) error { return extractErr }

	targets := []FetchTarget{
		{Name: "good", Version: "1.0.0", URL: srv.URL + "/good/1.0.0", FileName: "good-1.0.0.crate"},
	}
	outcomes, _ := orch.Run(context.Background(), targets, quietDialog(t))

	if outcomes[0].Stage != StageExtract || !errors.Is(outcomes[0].Err, extractErr) {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
}

func TestOrchestratorObserveCallback(t *testing.T) {
	srv := crateServer(t, nil)
	defer srv.Close()

	orch, _, _ := newTestOrchestrator(t, 0)
	var seen []string
	orch.observe = func(o Outcome) { seen = append(seen, o.Target.Name) }

	targets := []FetchTarget{
		{Name: "good", Version: "1.0.0", URL: srv.URL + "/good/1.0.0", FileName: "good-1.0.0.crate"},
		{Name: "broken", Version: "0.1.0", URL: srv.URL + "/broken/0.1.0", FileName: "broken-0.1.0.crate"},
	}
	orch.Run(context.Background(), targets, quietDialog(t))

	if len(seen) != 2 || seen[0] != "good" || seen[1] != "broken" {
		t.Fatalf("observed = %v", seen)
	}
}
