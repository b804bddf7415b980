package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"cadenza/internal/catalog"
	"cadenza/internal/classify"
	"cadenza/internal/config"
	"cadenza/internal/enforce"
	"cadenza/internal/images"
	"cadenza/internal/logging"
	"cadenza/internal/notifications"
	"cadenza/internal/pipeline"
	"cadenza/internal/services"
	"cadenza/internal/services/llm"
	"cadenza/internal/taxonomy"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process all pending catalog items through the tagging pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				lockPath := filepath.Join(cfg.Paths.DataDir, "cadenza.lock")
				lock := flock.New(lockPath)
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire run lock: %w", err)
				}
				if !ok {
					return errors.New("another cadenza run is already in progress")
				}
				defer lock.Unlock()

				if cfg.LLM.APIKey == "" {
					return services.Wrap(services.ErrConfiguration, "", "",
						"llm api_key is not configured (set it in config.toml or export OPENROUTER_API_KEY)", nil)
				}

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("initialize logging: %w", err)
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				client := llm.NewClient(llm.Config{
					APIKey:         cfg.LLM.APIKey,
					BaseURL:        cfg.LLM.BaseURL,
					Model:          cfg.LLM.Model,
					Referer:        cfg.LLM.Referer,
					Title:          cfg.LLM.Title,
					TimeoutSeconds: cfg.LLM.TimeoutSeconds,
				})
				tax := taxonomy.Default()
				fetcher := images.NewFetcher(logger,
					images.WithTimeout(time.Duration(cfg.Pipeline.ImageTimeoutSeconds)*time.Second))
				tagger := classify.NewTagger(client, tax, logger)
				enforcer := enforce.New(tagger, fetcher, tax, logger)
				notifier := notifications.NewService(cfg)

				orch := pipeline.New(cfg, store, tagger, enforcer, fetcher, tax, notifier, logger)
				summary, err := orch.Run(runCtx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						fmt.Fprintln(cmd.OutOrStdout(), "Run interrupted")
					}
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Processed %d items in %s\n", summary.Processed, summary.Duration.Round(time.Second))
				fmt.Fprintf(out, "  tagged:  %d\n", summary.Tagged)
				fmt.Fprintf(out, "  review:  %d\n", summary.Review)
				fmt.Fprintf(out, "  failed:  %d\n", summary.Failed)
				return nil
			})
		},
	}
}
