package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qteleport/internal/config"
	"qteleport/internal/teleport"
)

// buildFlags are the composer settings shared by build, run and view.
// A flag only overrides the configuration when it was set explicitly.
type buildFlags struct {
	layout        []int
	qubits        int
	direction     string
	bell          int
	barriers      bool
	hadamardBasis bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().IntSliceVar(&f.layout, "layout", def.Layout, "physical qubit of state-a,state-b,relay-source,relay-ancilla,relay-destination")
	cmd.Flags().IntVar(&f.qubits, "qubits", def.Qubits, "register size (raised to 5 if smaller)")
	cmd.Flags().StringVar(&f.direction, "direction", def.Direction, "relay CX orientation (synthesize|native)")
	cmd.Flags().IntVar(&f.bell, "bell", def.Bell, "Bell state selector 0..3 (phi+, psi+, phi-, psi-)")
	cmd.Flags().BoolVar(&f.barriers, "barriers", def.Barriers, "insert barriers between protocol steps")
	cmd.Flags().BoolVar(&f.hadamardBasis, "hbase", def.HadamardBasis, "measure in the Hadamard basis")
}

func (f *buildFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("layout") {
		cfg.Layout = f.layout
	}
	if changed("qubits") {
		cfg.Qubits = f.qubits
	}
	if changed("direction") {
		cfg.Direction = f.direction
	}
	if changed("bell") {
		cfg.Bell = f.bell
	}
	if changed("barriers") {
		cfg.Barriers = f.barriers
	}
	if changed("hbase") {
		cfg.HadamardBasis = f.hadamardBasis
	}
}

// resolve loads the configuration, applies explicit flags and returns the
// composer options.
func (f *buildFlags) resolve(opts *RootOptions, cmd *cobra.Command) (config.Config, teleport.Options, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return cfg, teleport.Options{}, err
	}
	f.apply(cmd, &cfg)
	topts, err := cfg.Options()
	if err != nil {
		return cfg, teleport.Options{}, WrapExitError(ExitCommandError, "invalid options", err)
	}
	return cfg, topts, nil
}

// compose builds the program and logs a raised register.
func compose(opts *RootOptions, topts teleport.Options) (*teleport.Result, error) {
	res, err := teleport.Compose(topts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build circuit", err)
	}
	if res.RegisterRaised {
		opts.logger().Warn("register raised to minimum",
			zap.Int("requested", topts.NumQubits),
			zap.Int("qubits", res.Program.NumQubits()))
	}
	return res, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
