package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Transcribe queued audio answers and submit them to their interviews",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateStore(); err != nil {
			return err
		}
		if err := cfg.ValidateProviders(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, err := buildDeps(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := startWorkers(ctx, d); err != nil {
			return err
		}
		log.WithField("workers", cfg.WorkerCount).Info("audio workers started")
		<-ctx.Done()
		return nil
	},
}
