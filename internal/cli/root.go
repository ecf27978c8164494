package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yoockh/interviewpilot/config"
	"github.com/yoockh/interviewpilot/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "interviewpilot",
	Short: "AI mock interview server",
	Long: `interviewpilot runs mock HR and technical interviews: an interviewer asks
up to a fixed number of questions, the candidate answers by text or audio, and
the finished transcript is scored against the key topics of the interview type.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(practiceCmd)
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat), nil
}
