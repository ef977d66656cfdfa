package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kareempogba0/B-Laban/internal/messaging"
)

// RepairOptions holds flags for the repair-reviews command.
type RepairOptions struct {
	*RootOptions
	Follow  bool
	GroupID string
}

// NewRepairReviewsCommand creates the repair-reviews command.
func NewRepairReviewsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RepairOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repair-reviews",
		Short: "Bring per-product review mirrors back in line",
		Long: `Scan every review and rewrite missing or stale per-product mirrors.

With --follow the command keeps running afterwards and repairs the reviews
announced on the reviews.mirror_failed topic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return repairReviews(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.Follow, "follow", false, "keep consuming reviews.mirror_failed after the scan")
	cmd.Flags().StringVar(&opts.GroupID, "group", "review-mirror-repair", "consumer group for --follow")

	return cmd
}

func repairReviews(parent context.Context, opts *RepairOptions, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	reviews := a.reviewService()
	report, err := reviews.RepairAll(ctx)
	if err != nil {
		return err
	}
	if err := printJSON(out, report); err != nil {
		return err
	}

	if !opts.Follow {
		return nil
	}
	if len(opts.Config.KafkaBrokers) == 0 {
		return fmt.Errorf("--follow needs KAFKA_BROKERS")
	}
	slog.Info("Following review mirror failures", "topic", messaging.TopicReviewMirrorFailed, "group_id", opts.GroupID)
	a.subscriber.Consume(ctx, messaging.TopicReviewMirrorFailed, opts.GroupID, reviews.HandleMirrorFailed)
	return nil
}

// NewMigrateWishlistsCommand creates the migrate-wishlists command.
func NewMigrateWishlistsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-wishlists",
		Short: "Move wishlists from wishlists/{uid}/items to users/{uid}/wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, rootOpts.Config)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.migrator == nil {
				return fmt.Errorf("store backend %q has no legacy wishlists to migrate", rootOpts.Config.StoreBackend)
			}
			report, err := a.migrator.MigrateLegacy(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
