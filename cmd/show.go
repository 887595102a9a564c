package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/bryan-buckman/newsdigest/internal/model"
	"github.com/bryan-buckman/newsdigest/internal/publish"
	"github.com/bryan-buckman/newsdigest/internal/render"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [YYYY-MM-DD]",
	Short: "Print the latest digest, or the one published on a given day",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pub, closeStore, err := openPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		var (
			digest  model.Digest
			heading = fmt.Sprintf("r/%s latest", cfg.Forum.Topic)
		)
		if len(args) == 1 {
			heading = fmt.Sprintf("r/%s %s", cfg.Forum.Topic, args[0])
			digest, err = pub.ForDate(ctx, args[0])
			if errors.Is(err, publish.ErrNotFound) {
				return fmt.Errorf("no digest published on %s", args[0])
			}
		} else {
			digest, err = pub.Latest(ctx)
		}
		if err != nil {
			return err
		}
		return render.Digest(cmd.OutOrStdout(), heading, digest, 80)
	},
}
