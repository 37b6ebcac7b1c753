package conformance_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cmem/internal/conformance"
	"cmem/internal/layout"
	"cmem/internal/memory"
)

func TestAllSuitesPass(t *testing.T) {
	r := &conformance.Runner{Target: layout.X86_64LinuxGNU()}
	results, err := r.Run(context.Background(), conformance.Suites())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, res := range results {
		if !res.Ok() {
			t.Errorf("suite %s: %d/%d failed (%v)\n%s", res.Suite, res.Failed, res.Ran, res.Err, res.Output)
		}
	}
	ran, failed, bad := conformance.Summarize(results)
	if failed != 0 || bad != 0 {
		t.Fatalf("summary: ran %d, failed %d, bad suites %d", ran, failed, bad)
	}
	if ran == 0 {
		t.Fatal("no assertions ran")
	}
}

func TestParallelRunMatchesSerial(t *testing.T) {
	suites := conformance.Suites()

	serial := &conformance.Runner{Target: layout.X86_64LinuxGNU(), Parallel: 1}
	sres, err := serial.Run(context.Background(), suites)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}

	parallel := &conformance.Runner{Target: layout.X86_64LinuxGNU(), Parallel: 4}
	pres, err := parallel.Run(context.Background(), suites)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if len(sres) != len(pres) {
		t.Fatalf("result count: %d vs %d", len(sres), len(pres))
	}
	for i := range sres {
		if sres[i].Suite != pres[i].Suite || sres[i].Ran != pres[i].Ran || sres[i].Failed != pres[i].Failed {
			t.Errorf("suite %s: serial (%d, %d) vs parallel (%d, %d)",
				sres[i].Suite, sres[i].Ran, sres[i].Failed, pres[i].Ran, pres[i].Failed)
		}
	}
}

func TestObserverSeesEverySuite(t *testing.T) {
	var mu sync.Mutex
	started := map[string]bool{}
	finished := map[string]bool{}

	r := &conformance.Runner{
		Target:   layout.X86_64LinuxGNU(),
		Parallel: 4,
		Observer: func(ev conformance.Event) {
			mu.Lock()
			defer mu.Unlock()
			if ev.Done {
				finished[ev.Suite] = true
			} else {
				started[ev.Suite] = true
			}
		},
	}
	if _, err := r.Run(context.Background(), conformance.Suites()); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, s := range conformance.Suites() {
		if !started[s.Name] || !finished[s.Name] {
			t.Errorf("suite %s: started=%v finished=%v", s.Name, started[s.Name], finished[s.Name])
		}
	}
}

func TestAbortedSuiteReportsFailure(t *testing.T) {
	broken := conformance.Suite{
		Name: "broken",
		Plan: 2,
		Run: func(st *conformance.State) error {
			st.T.Pass("first")
			return errors.New("layout exploded")
		},
	}

	r := &conformance.Runner{Target: layout.X86_64LinuxGNU()}
	results, err := r.Run(context.Background(), []conformance.Suite{broken})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	res := results[0]
	if res.Ok() {
		t.Fatal("aborted suite must not be Ok")
	}
	if res.Failed != 1 || res.Ran != 2 {
		t.Fatalf("tally ran=%d failed=%d, want 2/1", res.Ran, res.Failed)
	}
	if !strings.Contains(res.Output, "not ok 2 - aborted: layout exploded") {
		t.Fatalf("abort missing from tally output:\n%s", res.Output)
	}
}

func TestSnapshotDirWritesImages(t *testing.T) {
	dir := t.TempDir()
	r := &conformance.Runner{Target: layout.X86_64LinuxGNU(), SnapshotDir: dir}
	results, err := r.Run(context.Background(), conformance.Suites())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, res := range results {
		if !res.Ok() {
			t.Fatalf("suite %s: %v\n%s", res.Suite, res.Err, res.Output)
		}
		sp, ok, err := memory.LoadSnapshot(filepath.Join(dir, res.Suite+".mp"), nil)
		if err != nil || !ok {
			t.Fatalf("suite %s: load image: ok=%v err=%v", res.Suite, ok, err)
		}
		if sp.DumpString() == "" {
			t.Errorf("suite %s: restored image has no regions", res.Suite)
		}
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &conformance.Runner{Target: layout.X86_64LinuxGNU()}
	if _, err := r.Run(ctx, conformance.Suites()); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
