package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	addBrandFlag(enrichCmd)
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Labels stored mentions of a brand with sentiment, topic and urgency",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := context.Background()

		app, err := newApp(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer app.Close()

		enriched, err := app.watcher.Enrich(ctx, brand)
		if err != nil {
			log.Fatalf("enrich failed: %v", err)
		}
		logDiagnostics(app.recorder)
		fmt.Printf("Enriched %d mentions for %s\n", enriched, brand)
	},
}
