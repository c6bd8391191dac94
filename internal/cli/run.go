package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qteleport/internal/circuit"
	"qteleport/internal/config"
	"qteleport/internal/results"
	"qteleport/internal/sim"
	"qteleport/internal/teleport"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	buildFlags

	QASMPath  string
	Shots     int
	Seed      int64
	Name      string
	OutputDir string
	Database  string
	NoHistory bool
}

// RunResult is the JSON payload of run.
type RunResult struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Shots    int       `json:"shots"`
	Seed     int64     `json:"seed"`
	Outcomes []Outcome `json:"outcomes"`
	File     string    `json:"file"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the circuit and record outcome counts",
		Long: `Compose the teleportation circuit (or read one with --qasm), run it on
the state-vector simulator and print the outcome counts.

Counts are written to <out-dir>/res_<name>.yaml and the run is appended to
the SQLite history unless --no-history is set. Runs are reproducible for a
fixed --seed.

Example:
  qteleport run --shots 2048 --name phi-plus
  qteleport run --bell 3 --hbase --seed 7
  qteleport run --qasm teleport.qasm --no-history`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, cmd)
		},
	}

	def := config.Default()
	opts.register(cmd)
	cmd.Flags().StringVar(&opts.QASMPath, "qasm", "", "run this OpenQASM file instead of composing")
	cmd.Flags().IntVar(&opts.Shots, "shots", def.Shots, "number of shots")
	cmd.Flags().Int64Var(&opts.Seed, "seed", def.Seed, "simulator seed")
	cmd.Flags().StringVar(&opts.Name, "name", def.Name, "result name, used for res_<name>.yaml")
	cmd.Flags().StringVar(&opts.OutputDir, "out-dir", def.OutputDir, "directory for the counts file")
	cmd.Flags().StringVar(&opts.Database, "db", def.Database, "SQLite run history")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "do not record the run in the history")

	return cmd
}

func (o *RunOptions) applyRun(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("shots") {
		cfg.Shots = o.Shots
	}
	if changed("seed") {
		cfg.Seed = o.Seed
	}
	if changed("name") {
		cfg.Name = o.Name
	}
	if changed("out-dir") {
		cfg.OutputDir = o.OutputDir
	}
	if changed("db") {
		cfg.Database = o.Database
	}
}

func runRun(opts *RunOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	cfg, topts, err := opts.resolve(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	opts.applyRun(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid run settings", err)
	}

	program, err := loadProgram(opts, topts)
	if err != nil {
		return err
	}
	if program.NumQubits() > sim.MaxQubits {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("q[%d] is too wide to simulate (at most %d qubits)", program.NumQubits(), sim.MaxQubits))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	simulator, err := sim.NewSimulator(logger, cfg.Seed)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create simulator", err)
	}
	counts, err := simulator.Execute(ctx, program, cfg.Shots)
	if err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	path, err := results.Save(counts, cfg.Name, cfg.OutputDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to save counts", err)
	}
	formatter.VerboseLog("Saved counts to %s", path)

	result := RunResult{
		Name:     cfg.Name,
		Shots:    cfg.Shots,
		Seed:     cfg.Seed,
		Outcomes: sortedOutcomes(counts),
		File:     path,
	}

	if !opts.NoHistory && cfg.Database != "" {
		id, err := recordRun(ctx, logger, cfg, topts, opts.QASMPath != "", program, counts)
		if err != nil {
			return err
		}
		result.ID = id
		formatter.VerboseLog("Recorded run %s in %s", id, cfg.Database)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	for _, o := range result.Outcomes {
		formatter.Printf("%s %d", o.Bits, o.Count)
	}
	return nil
}

func loadProgram(opts *RunOptions, topts teleport.Options) (*circuit.Program, error) {
	if opts.QASMPath == "" {
		res, err := compose(opts.RootOptions, topts)
		if err != nil {
			return nil, err
		}
		return res.Program, nil
	}

	data, err := os.ReadFile(opts.QASMPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read QASM", err)
	}
	p, err := circuit.ParseQASM(string(data))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse QASM", err)
	}
	return p, nil
}

// recordRun stores the run in the history. A custom program read from QASM
// keeps only its register size; the composer options did not build it.
func recordRun(ctx context.Context, logger *zap.Logger, cfg config.Config, topts teleport.Options, custom bool,
	p *circuit.Program, counts sim.Counts) (string, error) {
	st, err := results.Open(cfg.Database, logger)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", zap.Error(closeErr))
		}
	}()

	if custom {
		topts = teleport.Options{NumQubits: p.NumQubits()}
	}
	run := &results.Run{
		Name:    cfg.Name,
		Custom:  custom,
		Options: topts,
		Shots:   cfg.Shots,
		Seed:    cfg.Seed,
		QASM:    p.ToQASM(),
		Counts:  counts,
	}
	if err := st.SaveRun(ctx, run); err != nil {
		return "", WrapExitError(ExitFailure, "failed to record run", err)
	}
	return run.ID, nil
}

// signalContext cancels on interrupt so a long simulation stops between
// shots.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
