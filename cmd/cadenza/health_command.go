package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cadenza/internal/catalog"
	"cadenza/internal/config"
	"cadenza/internal/services/llm"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var checkLLM bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show catalog health and optionally ping the classification endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total: %d\nPending: %d\nTagging: %d\nTagged: %d\nReview: %d\nFailed: %d\n",
					health.Total,
					health.Pending,
					health.Tagging,
					health.Tagged,
					health.Review,
					health.Failed,
				)

				if !checkLLM {
					return nil
				}
				client := llm.NewClient(llm.Config{
					APIKey:         cfg.LLM.APIKey,
					BaseURL:        cfg.LLM.BaseURL,
					Model:          cfg.LLM.Model,
					Referer:        cfg.LLM.Referer,
					Title:          cfg.LLM.Title,
					TimeoutSeconds: cfg.LLM.TimeoutSeconds,
				})
				if err := client.HealthCheck(cmd.Context()); err != nil {
					return fmt.Errorf("classification endpoint: %w", err)
				}
				fmt.Fprintln(out, "Classification endpoint reachable")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&checkLLM, "llm", false, "Also ping the classification endpoint")
	return cmd
}
