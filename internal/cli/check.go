package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cardlogic/warsat/internal/scenario"
)

// NewCheckCommand creates the check command, which runs conformance
// scenarios against the encoding.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <scenario.yaml|dir>...",
		Short: "Run conformance scenarios against the theory",
		Long: `Run one or more YAML scenarios: each pins a game situation and
asserts entailments, exclusions, model counts or likelihoods. A failed
check exits with code 1.

Example:
  warsat check ./scenarios
  warsat check ./scenarios/king_beats_queen.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	paths, err := collectScenarioFiles(args)
	if err != nil {
		formatter.Error("failed to locate scenarios", err.Error())
		return WrapExitError(ExitCommandError, "failed to locate scenarios", err)
	}
	if len(paths) == 0 {
		formatter.Error("no scenario files found", nil)
		return NewExitError(ExitCommandError, "no scenario files found")
	}

	failures := 0
	var reports []*scenario.Report
	for _, path := range paths {
		sc, err := scenario.Load(path)
		if err != nil {
			formatter.Error("failed to load scenario", err.Error())
			return WrapExitError(ExitCommandError, "failed to load scenario", err)
		}
		report, err := scenario.Run(sc)
		if err != nil {
			formatter.Error("scenario failed to run", err.Error())
			return WrapExitError(ExitCommandError, "scenario failed to run", err)
		}
		reports = append(reports, report)
		failures += report.Failures()
	}

	if opts.Format == "json" {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			fmt.Fprint(cmd.OutOrStdout(), report.Render())
		}
	}

	if failures > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", failures))
	}
	return nil
}

// collectScenarioFiles expands directories into their .yaml files and
// returns a sorted, deduplicated path list.
func collectScenarioFiles(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.yaml"))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			add(m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
