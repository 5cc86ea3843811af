package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/text/currency"

	"github.com/noah-isme/theater-billing/internal/config"
	"github.com/noah-isme/theater-billing/internal/obs"
	"github.com/noah-isme/theater-billing/internal/statement"
	"github.com/noah-isme/theater-billing/internal/theater"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := obs.NewLoggerTo(os.Stderr, cfg.LogFormat)
	renderer := statement.Renderer{Rules: cfg.Pricing, Format: statement.USD, Currency: currency.USD}
	if err := newRootCmd(renderer, logger).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	invoicesPath string
	playsPath    string
	customer     string
}

func newRootCmd(renderer statement.Renderer, logger zerolog.Logger) *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "statement",
		Short:         "Render customer statements for theater invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), opts, renderer, logger)
		},
	}
	cmd.Flags().StringVar(&opts.invoicesPath, "invoices", "data/invoices.json", "path to the invoices JSON array")
	cmd.Flags().StringVar(&opts.playsPath, "plays", "data/plays.json", "path to the plays JSON object")
	cmd.Flags().StringVar(&opts.customer, "customer", "", "only render invoices for this customer")
	return cmd
}

func run(out io.Writer, opts options, renderer statement.Renderer, logger zerolog.Logger) error {
	invoices, err := readInvoices(opts.invoicesPath)
	if err != nil {
		logger.Error().Err(err).Str("file", opts.invoicesPath).Msg("read invoices")
		return err
	}
	plays, err := readPlays(opts.playsPath)
	if err != nil {
		logger.Error().Err(err).Str("file", opts.playsPath).Msg("read plays")
		return err
	}

	failed := 0
	rendered := 0
	for _, inv := range invoices {
		if opts.customer != "" && inv.Customer != opts.customer {
			continue
		}
		text, err := renderer.Render(inv, plays)
		if err != nil {
			failed++
			logger.Error().Err(err).Str("customer", inv.Customer).Msg("render statement")
			continue
		}
		if rendered > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, text)
		rendered++
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, failed+rendered)
	}
	return nil
}

func readInvoices(path string) ([]theater.Invoice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return theater.DecodeInvoices(f)
}

func readPlays(path string) (theater.Plays, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return theater.DecodePlays(f)
}
