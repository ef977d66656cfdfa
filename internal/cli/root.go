package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kareempogba0/B-Laban/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// NewRootCommand creates the root command of the storefront service.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "blaban",
		Short: "B-Laban storefront session service",
		Long:  "Backend for the B-Laban dairy storefront: sessions, cart, wishlist sync, reviews, checkout and profiles.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.Verbose {
				cfg.LogLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
			opts.Config = cfg
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRepairReviewsCommand(opts))
	cmd.AddCommand(NewMigrateWishlistsCommand(opts))

	return cmd
}
