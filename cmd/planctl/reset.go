package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "reset [tasks|prenup|settings|all]",
		Short:     "Restore collections to their initial state",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"tasks", "prenup", "settings", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "all"
			if len(args) == 1 {
				what = args[0]
			}
			ctx := cmd.Context()
			e, err := opts.open()
			if err != nil {
				return err
			}
			defer e.close()

			out := cmd.OutOrStdout()
			// Settings first so re-seeded tasks use the default anchors.
			if what == "settings" || what == "all" {
				if _, err := e.planner.ResetSettings(ctx, e.session); err != nil {
					return err
				}
				fmt.Fprintln(out, "Settings reset")
			}
			if what == "tasks" || what == "all" {
				tasks, err := e.planner.ResetTasks(ctx, e.session)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Tasks reset (%d)\n", len(tasks))
			}
			if what == "prenup" || what == "all" {
				items, err := e.planner.ResetPrenup(ctx, e.session)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Prenup checklist reset (%d)\n", len(items))
			}
			return nil
		},
	}
}
