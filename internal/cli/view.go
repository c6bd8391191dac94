package cli

import (
	"github.com/spf13/cobra"

	"qteleport/internal/config"
	"qteleport/internal/sim"
	"qteleport/internal/tui"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
	buildFlags

	Shots int
	Seed  int64
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Inspect the circuit interactively",
		Long: `Open a terminal viewer showing the circuit grid, its OpenQASM and the
latest outcome counts.

Keys:
  arrows/hjkl  move the cursor       tab  switch between grid and QASM
  b            cycle the Bell state  d    toggle the relay direction
  m            toggle barriers       x    toggle Hadamard-basis measurement
  a            open the options menu r    run the simulator
  q            quit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(opts, cmd)
		},
	}

	def := config.Default()
	opts.register(cmd)
	cmd.Flags().IntVar(&opts.Shots, "shots", def.Shots, "shots per run")
	cmd.Flags().Int64Var(&opts.Seed, "seed", def.Seed, "simulator seed")

	return cmd
}

func runView(opts *ViewOptions, cmd *cobra.Command) error {
	logger := opts.logger()

	cfg, topts, err := opts.resolve(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("shots") {
		cfg.Shots = opts.Shots
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid view settings", err)
	}

	simulator, err := sim.NewSimulator(logger, cfg.Seed)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create simulator", err)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	m, err := tui.New(ctx, topts, simulator, cfg.Shots, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build circuit", err)
	}
	if err := tui.Run(ctx, m); err != nil {
		return WrapExitError(ExitFailure, "viewer failed", err)
	}
	return nil
}
