package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zigchain/dex-analytics/internal/pricing"
	"github.com/zigchain/dex-analytics/internal/publisher"
)

var (
	flagMinPublishInterval *time.Duration
	flagMetricsAddr        *string
	flagMaxParallel        *int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		engine := pricing.New(database, slog.Default(), pricing.WithMaxParallel(*flagMaxParallel))

		var opts []publisher.Option
		if summaryCache != nil {
			opts = append(opts, publisher.WithCache(summaryCache))
		}
		pub := publisher.New(
			natsConnection,
			engine,
			slog.Default(),
			*flagPrefixName,
			*flagMinPublishInterval,
			prometheus.DefaultRegisterer,
			opts...,
		)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: *flagMetricsAddr, Handler: mux}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return pub.Start(ctx)
		})
		g.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			log.Println("Publisher stopped with cause: ", err.Error())
		} else {
			log.Println("Shutdown")
		}
	},
}

func init() {
	rootCmd.AddCommand(startCmd)

	const (
		MIN_PUBLISH_INTERVAL = "MIN_PUBLISH_INTERVAL"
		METRICS_ADDR         = "METRICS_ADDR"
		MAX_PARALLEL         = "MAX_PARALLEL"
	)

	setDefault(METRICS_ADDR, ":2112")

	f := startCmd.Flags()
	flagMetricsAddr = f.String("metrics-addr", os.Getenv(METRICS_ADDR), "Listen address for the Prometheus /metrics endpoint")

	envInterval := os.Getenv(MIN_PUBLISH_INTERVAL)
	minInterval := time.Second * 5
	if envInterval != "" {
		var err error
		minInterval, err = time.ParseDuration(envInterval)
		if err != nil {
			minInterval = time.Second * 5
			slog.Warn("Invalid format for MIN_PUBLISH_INTERVAL environment variable.", "error", err, "default", minInterval)
		}
	}
	flagMinPublishInterval = f.Duration("min-publish-interval", minInterval, "Minimum interval between summary publishes per token")

	maxParallel := pricing.DefaultMaxParallel
	if envParallel := os.Getenv(MAX_PARALLEL); envParallel != "" {
		n, err := strconv.Atoi(envParallel)
		if err != nil || n <= 0 {
			slog.Warn("Bad max parallel format, switching to default", "error", err, "max", maxParallel)
		} else {
			maxParallel = n
		}
	}
	flagMaxParallel = f.Int("max-parallel", maxParallel, "Maximum concurrent summary builds")
}
