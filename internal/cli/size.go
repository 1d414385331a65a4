package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardlogic/warsat/internal/gamespec"
	"github.com/cardlogic/warsat/internal/solve"
)

// SizeOptions holds flags for the size command.
type SizeOptions struct {
	*RootOptions
	MinProps       int
	MinConstraints int
}

// NewSizeCommand creates the size command: the introspection surface the
// external validation tooling uses to confirm a minimum theory
// complexity.
func NewSizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "size <spec.cue>",
		Short: "Report the theory's proposition and constraint counts",
		Long: `Build the theory for a game spec and report its size. With
--min-props or --min-constraints the command exits with code 1 when the
theory falls below the threshold.

Example:
  warsat size ./specs/default.cue --min-props 50`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSize(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.MinProps, "min-props", 0, "minimum proposition count")
	cmd.Flags().IntVar(&opts.MinConstraints, "min-constraints", 0, "minimum constraint count")

	return cmd
}

func runSize(opts *SizeOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	spec, err := gamespec.Load(specPath)
	if err != nil {
		formatter.Error("failed to compile spec", err.Error())
		return WrapExitError(ExitCommandError, "failed to compile spec", err)
	}
	sess, err := solve.NewSession(spec.Config, spec.Pins)
	if err != nil {
		formatter.Error("failed to build theory", err.Error())
		return WrapExitError(ExitCommandError, "failed to build theory", err)
	}
	size := sess.Theory.Size()

	if opts.Format == "json" {
		if err := formatter.Success(size); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), size.String())
	}

	if size.Props < opts.MinProps {
		return NewExitError(ExitFailure,
			fmt.Sprintf("theory has %d props, below required %d", size.Props, opts.MinProps))
	}
	if size.Constraints < opts.MinConstraints {
		return NewExitError(ExitFailure,
			fmt.Sprintf("theory has %d constraints, below required %d", size.Constraints, opts.MinConstraints))
	}
	return nil
}
