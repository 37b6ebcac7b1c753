package conformance

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"cmem/internal/harness"
	"cmem/internal/layout"
)

// Event reports suite progress to an observer. Done=false marks the
// start of a suite, Done=true its completion.
type Event struct {
	Suite  string
	Done   bool
	Failed int
}

// Result is the outcome of one suite run.
type Result struct {
	Suite   string
	Ran     int
	Failed  int
	Output  string
	Err     error
	Elapsed time.Duration
}

// Ok reports whether the suite ran to completion with a clean tally.
func (r Result) Ok() bool { return r.Err == nil && r.Failed == 0 }

// Runner executes conformance suites. Each suite gets its own address
// space, so Parallel > 1 is safe.
type Runner struct {
	Target   layout.Target
	Parallel int
	Color    bool
	Observer func(Event)

	// SnapshotDir, when set, receives one <suite>.mp image of each
	// suite's final address space, loadable with the inspect command.
	SnapshotDir string
}

func (r *Runner) notify(ev Event) {
	if r.Observer != nil {
		r.Observer(ev)
	}
}

// Run executes the suites and returns per-suite results in input order.
// The returned error covers the run machinery only; assertion failures
// live in the results.
func (r *Runner) Run(ctx context.Context, suites []Suite) ([]Result, error) {
	limit := r.Parallel
	if limit < 1 {
		limit = 1
	}
	results := make([]Result, len(suites))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for idx, s := range suites {
		idx, s := idx, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.notify(Event{Suite: s.Name})
			results[idx] = r.runOne(s)
			r.notify(Event{Suite: s.Name, Done: true, Failed: results[idx].Failed})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) runOne(s Suite) Result {
	var buf bytes.Buffer
	t := harness.New(&buf, r.Color)
	t.Plan(s.Plan)
	st := NewState(t, r.Target)

	start := time.Now()
	err := s.Run(st)
	elapsed := time.Since(start)

	if err != nil {
		t.Fail("aborted: %v", err)
		err = fmt.Errorf("suite %s: %w", s.Name, err)
	} else {
		err = t.Done()
	}
	if r.SnapshotDir != "" {
		serr := saveSpaceImage(st, filepath.Join(r.SnapshotDir, s.Name+".mp"))
		if serr != nil && err == nil {
			err = fmt.Errorf("suite %s: snapshot: %w", s.Name, serr)
		}
	}
	ran, failed := t.Counts()
	return Result{
		Suite:   s.Name,
		Ran:     ran,
		Failed:  failed,
		Output:  buf.String(),
		Err:     err,
		Elapsed: elapsed,
	}
}

// saveSpaceImage serializes the suite's address space to path. Snapshots
// capture globals and heap blocks only, so leftover stack frames are
// popped first.
func saveSpaceImage(st *State, path string) error {
	sp := st.Env.Space
	for sp.FrameDepth() > 0 {
		if err := sp.PopFrame(); err != nil {
			return err
		}
	}
	return sp.SaveSnapshot(path)
}

// Summarize folds results into run totals.
func Summarize(results []Result) (ran, failed, badSuites int) {
	for _, res := range results {
		ran += res.Ran
		failed += res.Failed
		if !res.Ok() {
			badSuites++
		}
	}
	return ran, failed, badSuites
}
