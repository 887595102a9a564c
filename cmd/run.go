package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bryan-buckman/newsdigest/internal/model"
	"github.com/bryan-buckman/newsdigest/internal/render"
	"github.com/spf13/cobra"
)

var flagQuiet bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and publish the digest",
	Long: "Fetches, filters, enriches, summarizes and publishes one digest. " +
		"The exit status reflects the outcome: 0 published or nothing recent, " +
		"2 fetch failed, 3 summarization failed, 4 publish failed.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := runOnce(cmd)
		if err != nil {
			return err
		}
		if code != 0 {
			if logCloser != nil {
				logCloser.Close()
			}
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "do not print the digest")
}

func runOnce(cmd *cobra.Command) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub, closeStore, err := openPublisher(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer closeStore()

	runner, err := newRunner(cfg, pub)
	if err != nil {
		return 0, err
	}

	res := runner.Run(ctx)
	out := cmd.OutOrStdout()
	if !flagQuiet && res.Outcome == model.OutcomeDone {
		render.Digest(out, fmt.Sprintf("r/%s -> %s", cfg.Forum.Topic, pub.Target()), res.Digest, 80)
	}
	fmt.Fprintf(out, "%s (%s)\n", res.Outcome.Message(), res.Outcome)
	return res.Outcome.ExitCode(), nil
}
