package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	addBrandFlag(ingestCmd)
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetches new mentions of a brand from every configured source",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := context.Background()

		app, err := newApp(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer app.Close()

		added, err := app.watcher.Fetch(ctx, brand)
		if err != nil {
			log.Fatalf("fetch failed: %v", err)
		}
		logDiagnostics(app.recorder)
		fmt.Printf("Added %d new mentions for %s\n", added, brand)
	},
}
