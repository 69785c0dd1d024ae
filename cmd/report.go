package cmd

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/truemediaorg/brandwatch/delivery"
)

var (
	reportFormat  string
	reportArchive bool
	reportEmail   bool
)

func init() {
	addBrandFlag(reportCmd)
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "output format: text, yaml or json")
	reportCmd.Flags().BoolVar(&reportArchive, "archive", false, "upload the report to Azure Blob Storage")
	reportCmd.Flags().BoolVar(&reportEmail, "email", false, "e-mail the report to the configured recipients")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarizes the stored mentions of a brand",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := context.Background()

		format, err := delivery.ParseFormat(reportFormat)
		if err != nil {
			log.Fatal(err)
		}

		app, err := newApp(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer app.Close()

		mentions, err := app.watcher.Mentions(ctx, brand)
		if err != nil {
			log.Fatalf("query failed: %v", err)
		}
		summaries, err := app.watcher.Summarize(ctx, brand)
		if err != nil {
			log.Fatalf("summarize failed: %v", err)
		}
		report := delivery.NewReport(brand, mentions, summaries, time.Now())

		body, err := delivery.Render(report, format)
		if err != nil {
			log.Fatal(err)
		}
		os.Stdout.Write(body)

		if reportArchive {
			archive, err := delivery.NewBlobArchive(cfg.Archive.AccountURL, cfg.Archive.Container)
			if err != nil {
				log.Fatalf("archive unavailable: %v", err)
			}
			if _, err := archive.Store(ctx, report, format, body); err != nil {
				log.Errorf("archive failed: %v", err)
			}
		}
		if reportEmail {
			if !cfg.Mail.Enabled() {
				log.Fatal("smtp host and report recipients are required for --email")
			}
			mailer := delivery.NewMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.Recipients)
			if err := mailer.Send(report); err != nil {
				log.Errorf("email failed: %v", err)
			}
		}
		logDiagnostics(app.recorder)
	},
}
