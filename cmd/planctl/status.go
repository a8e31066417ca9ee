package main

import (
	"fmt"
	"strings"

	"weddingplan/internal/scheduler"

	"github.com/spf13/cobra"
)

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show progress, deadlines and budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := opts.open()
			if err != nil {
				return err
			}
			defer e.close()

			d, err := e.planner.Dashboard(ctx, e.session)
			if err != nil {
				return err
			}
			settings, err := e.planner.Settings(ctx, e.session)
			if err != nil {
				return err
			}
			lang := settings.Language
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Device %s\n", opts.device)
			fmt.Fprintln(out, strings.Repeat("=", 40))
			if d.MarriageDate != nil {
				fmt.Fprintf(out, "  Marriage:  %s (%d days)\n", scheduler.FormatDate(*d.MarriageDate, lang), *d.DaysUntil)
			} else {
				fmt.Fprintln(out, "  Marriage:  not set")
			}
			fmt.Fprintf(out, "  Phase:     %s\n", d.CurrentPhase.Label(lang))
			fmt.Fprintf(out, "  Progress:  %d%% (%d/%d tasks)\n", d.OverallProgress, d.CompletedTasks, d.TotalTasks)
			fmt.Fprintf(out, "  Overdue:   %d\n", len(d.Overdue))
			fmt.Fprintf(out, "  Upcoming:  %d\n", len(d.Upcoming))
			for _, t := range d.Overdue {
				fmt.Fprintf(out, "    ! %s (%s)\n", t.Name, t.CalculatedDeadline)
			}
			fmt.Fprintf(out, "  Budget:    %s spent of %s\n",
				scheduler.FormatCurrency(float64(d.Actual)), scheduler.FormatCurrency(float64(settings.TotalBudget)))
			return nil
		},
	}
}
