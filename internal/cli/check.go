package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"qteleport/internal/sim"
	"qteleport/internal/teleport"
)

const identityTolerance = 1e-9

// IdentityResult is one synthesizer self-check.
type IdentityResult struct {
	Name string `json:"name"`
	OK   bool   `json:"ok"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the CX synthesizers against plain CX",
		Long: `Compare the unitary of every synthesized CX sequence with the circuit it
stands in for: the reversed-orientation CX with and without its truncated
basis changes, and the CX routed through an ancilla.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ids, err := teleport.Identities()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build identities", err)
	}

	checks := make([]IdentityResult, 0, len(ids))
	failed := 0
	for _, id := range ids {
		ok, err := sim.Equivalent(id.Got, id.Want, identityTolerance)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to compare %s", id.Name), err)
		}
		if !ok {
			failed++
		}
		checks = append(checks, IdentityResult{Name: id.Name, OK: ok})
	}

	if formatter.JSON() {
		if err := formatter.Success(checks); err != nil {
			return err
		}
	} else {
		for _, c := range checks {
			mark := "ok  "
			if !c.OK {
				mark = "FAIL"
			}
			formatter.Printf("%s %s", mark, c.Name)
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d identity check(s) failed", failed))
	}
	return nil
}
