package cli

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardlogic/warsat/internal/gamespec"
	"github.com/cardlogic/warsat/internal/solve"
	"github.com/cardlogic/warsat/internal/store"
	"github.com/cardlogic/warsat/internal/theory"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Database string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <spec.cue>",
		Short: "Build the theory for a game spec and run its queries",
		Long: `Compile a CUE game spec, encode the rules of War into a boolean
theory, self-check it for consistency, and answer the spec's named
queries.

Example:
  warsat analyze ./specs/default.cue
  warsat analyze --db ./warsat.db ./specs/king_vs_queen.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	spec, err := gamespec.Load(specPath)
	if err != nil {
		formatter.Error("failed to compile spec", err.Error())
		return WrapExitError(ExitCommandError, "failed to compile spec", err)
	}
	slog.Debug("spec compiled", "path", specPath, "queries", len(spec.Queries))

	sess, err := solve.NewSession(spec.Config, spec.Pins)
	if err != nil {
		formatter.Error("failed to build theory", err.Error())
		return WrapExitError(ExitCommandError, "failed to build theory", err)
	}
	size := sess.Theory.Size()
	slog.Info("theory ready", "props", size.Props, "constraints", size.Constraints)

	results, err := sess.Run(spec.Queries)
	if err != nil {
		formatter.Error("query failed", err.Error())
		return WrapExitError(ExitFailure, "query failed", err)
	}

	if opts.Database != "" {
		if err := recordRun(cmd, opts.Database, specPath, spec, size, results); err != nil {
			formatter.Error("failed to record run", err.Error())
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{"size": size, "results": results})
	}
	fmt.Fprint(cmd.OutOrStdout(), RenderResults(size.String(), results))
	return nil
}

func recordRun(cmd *cobra.Command, dbPath, specPath string, spec *gamespec.Spec, size theory.Size, results map[string]solve.Result) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	hash, err := store.SpecHash(specFingerprint(spec))
	if err != nil {
		return err
	}
	run, err := st.RecordRun(cmd.Context(), specPath, hash, size, results)
	if err != nil {
		return err
	}
	slog.Info("run recorded", "run_id", run.ID, "spec_hash", hash[:12])
	return nil
}

// specFingerprint reduces a spec to canonical-JSON-friendly values for
// content addressing.
func specFingerprint(spec *gamespec.Spec) map[string]any {
	pins := make([]any, len(spec.Pins))
	for i, p := range spec.Pins {
		pins[i] = map[string]any{"player": p.Player, "level": p.Level, "rank": p.Rank}
	}
	queries := make([]any, len(spec.Queries))
	for i, q := range spec.Queries {
		queries[i] = map[string]any{"name": q.Name, "kind": q.Kind, "prop": q.Prop, "over": q.Over}
	}
	return map[string]any{
		"player_a":          spec.Config.PlayerA,
		"player_b":          spec.Config.PlayerB,
		"ranks":             spec.Config.Ranks,
		"max_war_depth":     spec.Config.MaxWarDepth,
		"stacked_tolerance": spec.Config.StackedTolerance,
		"pins":              pins,
		"queries":           queries,
	}
}

// RenderResults renders a result map in the fixed text layout, query
// names sorted for determinism.
func RenderResults(sizeLine string, results map[string]solve.Result) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "theory: %s\n", sizeLine)
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res := results[name]
		fmt.Fprintf(&buf, "%s (%s): %s\n", name, res.Query.Kind, renderResult(res))
	}
	return buf.String()
}

func renderResult(res solve.Result) string {
	switch {
	case res.Bool != nil:
		return fmt.Sprintf("%t", *res.Bool)
	case res.NoModel:
		return "no model"
	case res.Model != nil:
		return renderModel(res.Model)
	case res.Count != nil:
		return fmt.Sprintf("%d distinct assignments over %v", res.Count.Total, res.Count.Props)
	case res.Likelihood != nil:
		lk := res.Likelihood
		return fmt.Sprintf("%d/%d (%.4f)", lk.Num, lk.Den, lk.Ratio())
	}
	return "<empty>"
}

func renderModel(m solve.Model) string {
	var trues []string
	for name, val := range m {
		if val {
			trues = append(trues, name)
		}
	}
	sort.Strings(trues)
	return "model with true: " + strings.Join(trues, ", ")
}
