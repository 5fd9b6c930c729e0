package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nainya/metawrite/internal/config"
	"github.com/nainya/metawrite/internal/logger"
	"github.com/nainya/metawrite/internal/metrics"
	"github.com/nainya/metawrite/pkg/metafield"
	"github.com/nainya/metawrite/pkg/shopify"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "metawrite",
		Short: "Safe metafield writes against the Shopify Admin API",
		Long: `metawrite resolves the target type of a product metafield, coerces the
input value into the string encoding the Admin API requires, and submits the
write, surfacing field-level user errors the platform reports.`,
	}

	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newWriter builds a writer from configuration; shared by write and batch.
func newWriter() (*metafield.Writer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewLogger(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})
	m := metrics.NewMetrics()

	client, err := shopify.NewClient(shopify.Config{
		ShopDomain:  cfg.Shop.Domain,
		AccessToken: cfg.Shop.AccessToken,
		APIVersion:  cfg.Shop.APIVersion,
		Limiter:     shopify.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst),
		Logger:      log,
		Metrics:     m,
	})
	if err != nil {
		return nil, err
	}

	return metafield.NewWriter(client, metafield.WithLogger(log), metafield.WithMetrics(m)), nil
}
