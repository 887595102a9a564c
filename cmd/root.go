package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/bryan-buckman/newsdigest/internal/config"
	"github.com/bryan-buckman/newsdigest/internal/logger"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagTopic  string

	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "newsdigest",
	Short: "Daily LLM-ranked digest of a Reddit community",
	Long: "newsdigest fetches the newest posts of a subreddit, keeps the last day's worth, " +
		"asks a language model for the most significant ones and publishes the ranked digest.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagTopic, "topic", "", "community to digest (overrides forum.topic)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	c, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagTopic != "" {
		c.Forum.Topic = flagTopic
	}
	cfg = c

	closer, err := logger.Init(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logCloser = closer
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// version needs no config
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsdigest %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
