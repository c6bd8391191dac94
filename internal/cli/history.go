package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"qteleport/internal/config"
	"qteleport/internal/results"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	ID       string
}

// RunSummary is one history row.
type RunSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Custom    bool      `json:"custom,omitempty"`
	Layout    []int     `json:"layout"`
	Direction string    `json:"direction"`
	Bell      string    `json:"bell"`
	Shots     int       `json:"shots"`
	Seed      int64     `json:"seed"`
	Outcomes  []Outcome `json:"outcomes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded by "qteleport run", newest first. With --id, print the
stored circuit and counts of a single run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", config.Default().Database, "SQLite run history")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show a single run")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	dbPath := opts.Database
	if !cmd.Flags().Changed("db") && opts.ConfigPath != "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return err
		}
		dbPath = cfg.Database
	}

	st, err := results.Open(dbPath, opts.logger())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.ID != "" {
		run, err := st.GetRun(cmd.Context(), opts.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load run", err)
		}
		if formatter.JSON() {
			return formatter.Success(struct {
				RunSummary
				QASM string `json:"qasm"`
			}{summarize(run), run.QASM})
		}
		s := summarize(run)
		formatter.Printf("%s  %s  %s  layout=%v direction=%s bell=%s shots=%d seed=%d",
			s.ID, s.CreatedAt.Format(time.RFC3339), s.Name, s.Layout, s.Direction, s.Bell, s.Shots, s.Seed)
		for _, o := range s.Outcomes {
			formatter.Printf("%s %d", o.Bits, o.Count)
		}
		fmt.Fprint(formatter.Writer, "\n"+run.QASM)
		return nil
	}

	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, summarize(run))
	}
	if formatter.JSON() {
		return formatter.Success(summaries)
	}
	if len(summaries) == 0 {
		formatter.Printf("No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tNAME\tBELL\tDIRECTION\tSHOTS\tTOP")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.CreatedAt.Format(time.RFC3339), s.Name, s.Bell, s.Direction, s.Shots, topOutcome(s.Outcomes))
	}
	return tw.Flush()
}

func summarize(run *results.Run) RunSummary {
	s := RunSummary{
		ID:        run.ID,
		Name:      run.Name,
		CreatedAt: run.CreatedAt,
		Custom:    run.Custom,
		Layout:    run.Options.Positions,
		Direction: run.Options.Direction.String(),
		Bell:      run.Options.Bell.String(),
		Shots:     run.Shots,
		Seed:      run.Seed,
		Outcomes:  sortedOutcomes(run.Counts),
	}
	if run.Custom {
		s.Layout = nil
		s.Direction = "-"
		s.Bell = "custom"
	}
	return s
}

// topOutcome returns the most frequent outcome, the lowest bitstring on ties.
func topOutcome(outcomes []Outcome) string {
	best := -1
	for i, o := range outcomes {
		if best < 0 || o.Count > outcomes[best].Count {
			best = i
		}
	}
	if best < 0 {
		return "-"
	}
	return fmt.Sprintf("%s (%d)", outcomes[best].Bits, outcomes[best].Count)
}
