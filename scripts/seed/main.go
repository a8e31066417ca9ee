// Seed expands the template catalog for one user and writes it to the
// remote Postgres store. Run from project root:
//
//	go run ./scripts/seed --user alice --marriage 2027-04-29
package main

import (
	"fmt"
	"os"
	"time"

	"weddingplan/internal/config"
	"weddingplan/internal/database"
	"weddingplan/internal/dates"
	"weddingplan/internal/models"
	"weddingplan/internal/repository"
	"weddingplan/internal/templates"

	"github.com/spf13/cobra"
)

func main() {
	var (
		user     string
		marriage string
		ceremony string
		lang     string
	)
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Write a fresh plan for a user to Postgres",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Get()
			if !cfg.RemoteConfigured() {
				return fmt.Errorf("DATABASE_URL not set")
			}

			settings := models.DefaultSettings()
			settings.Language = models.Language(lang)
			if !settings.Language.Valid() {
				return fmt.Errorf("unknown language %q", lang)
			}
			for _, d := range []struct {
				in  string
				out **dates.Date
			}{{marriage, &settings.MarriageDate}, {ceremony, &settings.CeremonyDate}} {
				if d.in == "" {
					continue
				}
				parsed, err := dates.Parse(d.in)
				if err != nil {
					return err
				}
				*d.out = &parsed
			}

			catalog, err := templates.Default()
			if err != nil {
				return err
			}
			db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.EnsureSchema(ctx, db); err != nil {
				return fmt.Errorf("schema: %w", err)
			}
			repo := repository.New(db)

			start := time.Now()
			exp := templates.Expander{}
			tasks := exp.ExpandTasks(catalog.Tasks, settings.Language, templates.AnchorsFrom(settings))
			for i, t := range tasks {
				if err := repo.UpsertTask(ctx, user, t); err != nil {
					return fmt.Errorf("insert task %s: %w", t.TaskID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\rInserted %d / %d tasks", i+1, len(tasks))
			}
			fmt.Fprintln(cmd.OutOrStdout())
			for _, it := range exp.ExpandPrenup(catalog.Prenup, settings.Language) {
				if err := repo.UpsertPrenupItem(ctx, user, it); err != nil {
					return fmt.Errorf("insert prenup item %s: %w", it.ID, err)
				}
			}
			if err := repo.SaveSettings(ctx, user, settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: plan for %s in %v\n", user, time.Since(start))
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "seed-user", "User id to seed")
	cmd.Flags().StringVar(&marriage, "marriage", "", "Marriage date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ceremony, "ceremony", "", "Ceremony date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&lang, "lang", string(models.LangJA), "Language (ja|en)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
