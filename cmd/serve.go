package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bryan-buckman/newsdigest/internal/config"
	"github.com/bryan-buckman/newsdigest/internal/pipeline"
	"github.com/bryan-buckman/newsdigest/internal/server"
	"github.com/spf13/cobra"
)

var (
	flagAddr       string
	flagNoSchedule bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reader API and run the pipeline on a schedule",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&flagNoSchedule, "no-schedule", false, "disable the background poller")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, closeStore, err := buildServer(ctx, cfg, !flagNoSchedule)
	if err != nil {
		return err
	}
	defer closeStore()

	addr := cfg.Server.Addr
	if flagAddr != "" {
		addr = flagAddr
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(addr) }()

	select {
	case err = <-errc:
	case <-ctx.Done():
		slog.Info("shutting down")
	}
	srv.Stop()
	return err
}

// buildServer wires the reader API over the configured store. The returned
// close func is always non-nil when err is nil.
func buildServer(ctx context.Context, c *config.Config, schedule bool) (*server.Server, func(), error) {
	pub, closeStore, err := openPublisher(ctx, c)
	if err != nil {
		return nil, nil, err
	}

	runner, err := newRunner(c, pub)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	var poller *pipeline.Poller
	if schedule {
		poller = pipeline.NewPoller(runner, c.ScheduleInterval(), c.Schedule.RunOnStart)
		slog.Info("poller enabled", "interval", poller.Interval(), "run_on_start", c.Schedule.RunOnStart)
	}

	srv := server.New(server.Options{
		Runner:          runner,
		Reader:          pub,
		Poller:          poller,
		Topic:           c.Forum.Topic,
		RefreshCooldown: c.RefreshCooldown(),
	})
	return srv, closeStore, nil
}
