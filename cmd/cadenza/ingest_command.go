package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cadenza/internal/catalog"
	"cadenza/internal/config"
)

// ingestRecord mirrors the external catalog export shape.
type ingestRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Synopsis    string   `json:"synopsis"`
	Performers  string   `json:"performers"`
	Producer    string   `json:"producer"`
	IntroImages []string `json:"intro_images"`
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.json>",
		Short: "Load catalog records from a JSON export into the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			var records []ingestRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse %s: expected a JSON array of records: %w", path, err)
			}

			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				added, skipped := 0, 0
				for i, record := range records {
					if record.Title == "" {
						return fmt.Errorf("record %d has no title", i)
					}
					_, inserted, err := store.Add(cmd.Context(), catalog.NewItem{
						ExternalID:  record.ID,
						Title:       record.Title,
						Synopsis:    record.Synopsis,
						Performers:  record.Performers,
						Producer:    record.Producer,
						IntroImages: record.IntroImages,
					})
					if err != nil {
						return fmt.Errorf("ingest record %d: %w", i, err)
					}
					if inserted {
						added++
					} else {
						skipped++
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d records (%d already present)\n", added, skipped)
				return nil
			})
		},
	}
}
