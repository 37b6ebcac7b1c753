package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cmem/internal/conformance"
	"cmem/internal/layout"
	"cmem/internal/observ"
)

var (
	runParallel    int
	runUIFlag      string
	runTargetFile  string
	runVerbose     bool
	runSnapshotDir string
)

func init() {
	runCmd.Flags().IntVar(&runParallel, "parallel", runtime.NumCPU(), "max suites running at once")
	runCmd.Flags().StringVar(&runUIFlag, "ui", "auto", "progress UI (auto|on|off)")
	runCmd.Flags().StringVar(&runTargetFile, "target", "", "target description file (TOML)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print per-assertion output for every suite")
	runCmd.Flags().StringVar(&runSnapshotDir, "snapshot-dir", "", "write each suite's final address-space image here")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the conformance suites against the memory model",
	Long:  `Replays the C aggregate and pointer scenarios over a fresh address space per suite and reports the assertion tally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		colorFlag, err := cmd.Flags().GetString("color")
		if err != nil {
			return err
		}
		useColor, err := resolveColor(colorFlag)
		if err != nil {
			return err
		}
		color.NoColor = !useColor

		target := layout.X86_64LinuxGNU()
		if runTargetFile != "" {
			target, err = layout.LoadTarget(runTargetFile)
			if err != nil {
				return err
			}
		}
		mode, err := readUIMode(runUIFlag)
		if err != nil {
			return err
		}

		runner := &conformance.Runner{
			Target:      target,
			Parallel:    runParallel,
			Color:       useColor,
			SnapshotDir: runSnapshotDir,
		}
		suites := conformance.Suites()

		timer := observ.NewTimer()
		span := timer.Begin("suites")
		var results []conformance.Result
		if shouldUseTUI(mode) {
			results, err = runSuitesWithUI(cmd.Context(), "conformance", runner, suites)
		} else {
			results, err = runner.Run(cmd.Context(), suites)
		}
		span.End(fmt.Sprintf("%d suites on %s", len(suites), target.Name))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printResults(out, results, runVerbose)

		ran, failed, bad := conformance.Summarize(results)
		if showTimings, _ := cmd.Flags().GetBool("timings"); showTimings {
			for _, res := range results {
				timer.Observe(res.Suite, res.Elapsed, fmt.Sprintf("%d assertions", res.Ran))
			}
			fmt.Fprint(out, timer.Summary())
		}
		if failed > 0 || bad > 0 {
			return fmt.Errorf("%d of %d assertions failed in %d suites", failed, ran, bad)
		}
		fmt.Fprintf(out, "all %d assertions passed across %d suites\n", ran, len(results))
		return nil
	},
}

func printResults(out io.Writer, results []conformance.Result, verbose bool) {
	passMark := color.New(color.FgGreen).Sprint("PASS")
	failMark := color.New(color.FgRed, color.Bold).Sprint("FAIL")
	for _, res := range results {
		mark := passMark
		if !res.Ok() {
			mark = failMark
		}
		fmt.Fprintf(out, "%s %-24s %3d assertions %8.2f ms\n",
			mark, res.Suite, res.Ran, float64(res.Elapsed.Microseconds())/1000.0)
		if verbose || !res.Ok() {
			fmt.Fprint(out, indent(res.Output))
			if res.Err != nil {
				fmt.Fprintf(out, "  error: %v\n", res.Err)
			}
		}
	}
}

func indent(s string) string {
	if s == "" {
		return s
	}
	var b []byte
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			if i > start {
				b = append(b, ' ', ' ')
				b = append(b, s[start:i]...)
			}
			if i < len(s) {
				b = append(b, '\n')
			}
			start = i + 1
		}
	}
	return string(b)
}
