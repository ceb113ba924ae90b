package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/zigchain/dex-analytics/cmd/flags"
	"github.com/zigchain/dex-analytics/internal/pricing"
	"github.com/zigchain/dex-analytics/internal/publisher"
)

var flagTokenIds *flags.TokenIds

// publishCmd publishes a fresh summary for an explicit list of tokens and
// exits, bypassing the dirty-event rate limit. Useful for backfills.
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish summaries for the given token ids once",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		engine := pricing.New(database, slog.Default())

		var opts []publisher.Option
		if summaryCache != nil {
			opts = append(opts, publisher.WithCache(summaryCache))
		}
		pub := publisher.New(
			natsConnection,
			engine,
			slog.Default(),
			*flagPrefixName,
			0,
			prometheus.NewRegistry(),
			opts...,
		)

		var errs []error
		for _, tokenID := range *flagTokenIds.Value {
			if ctx.Err() != nil {
				break
			}
			if err := pub.PublishSummary(ctx, tokenID); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)

	const TOKEN_IDS = "TOKEN_IDS"

	f := publishCmd.Flags()
	flagTokenIds = f.VarPF(flags.NewTokenIds(os.Getenv(TOKEN_IDS)), "token-ids", "", "A list of token ids to publish summaries for").Value.(*flags.TokenIds)
}
