package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/truemediaorg/brandwatch/service"
	"golang.org/x/sync/errgroup"
)

func init() {
	rootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Runs ingest and enrich for the configured brands on a schedule",
	Long: `Runs ingest and enrich for the configured brands on a schedule, and serves
a healthcheck plus a POST /trigger/{brand} endpoint for out-of-schedule runs`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if len(cfg.Brands) == 0 {
			log.Fatal("no brands configured")
		}

		/*
			Graceful shutdown is possible with errgroup + signal.NotifyContext
			NotifyContext returns a context that will close on OS signals to terminate the process
			errgroup uses that context, and also closes it in case a goroutine errors out
		*/
		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer done()
		g, gCtx := errgroup.WithContext(ctx)

		app, err := newApp(gCtx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer app.Close()

		scheduler := service.NewScheduler(cfg.Schedule, cfg.Brands, func(ctx context.Context, brand string) error {
			defer app.recorder.Reset()
			_, err := app.watcher.Run(ctx, brand)
			logDiagnostics(app.recorder)
			return err
		})
		if err := scheduler.Start(gCtx); err != nil {
			log.Fatalf("invalid schedule %q: %v", cfg.Schedule, err)
		}

		healthchecker := service.NewHealthchecker(cfg.HealthcheckPort, scheduler)

		// For deployed instances, provide a basic healthcheck endpoint to show it's online
		g.Go(func() error {
			if err := healthchecker.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		// ...and shut everything down if the process needs to terminate
		g.Go(func() error {
			<-gCtx.Done()
			defer log.Info("exiting scheduler and healthchecker")
			scheduler.Stop()
			return healthchecker.Server.Shutdown(context.Background())
		})

		err = g.Wait()
		if err != nil {
			log.Errorf("caught error: %v", err)
		}
	},
}
