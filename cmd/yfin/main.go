// yfin fetches Yahoo Finance market data from the command line.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gramistella/yfin/internal/config"
	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/history"
	"github.com/gramistella/yfin/pkg/models"
	"github.com/gramistella/yfin/pkg/quote"
	"github.com/gramistella/yfin/pkg/stream"
	"github.com/gramistella/yfin/pkg/ticker"
	"github.com/gramistella/yfin/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and client, built in PersistentPreRunE.
var (
	cfg *config.Config
	cli *client.Client
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "yfin",
	Short: "Yahoo Finance market data from the command line",
	Long: `yfin fetches quotes, historical bars, option chains, profiles, news,
and live price streams from Yahoo Finance.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		opts, err := cfg.ClientOptions()
		if err != nil {
			return err
		}
		cli = client.New(opts...)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().Bool("json", false, "emit raw JSON instead of formatted output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(isinCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(infoCmd)
}

// emitJSON prints v as indented JSON when --json is set and returns true.
func emitJSON(cmd *cobra.Command, v any) bool {
	if asJSON, _ := cmd.Flags().GetBool("json"); !asJSON {
		return false
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
	return true
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("yfin %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote [symbols...]",
	Short: "Fetch current quote snapshots",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quotes, err := quote.Fetch(cmd.Context(), cli, args, client.CallOpts{})
		if err != nil {
			return err
		}
		if emitJSON(cmd, quotes) {
			return nil
		}
		for _, q := range quotes {
			fmt.Printf("%-10s %s", q.Symbol, q.Name())
			if q.Price != nil {
				fmt.Printf("  %s", utils.FormatMoney(*q.Price))
			}
			if q.DayVolume != nil {
				fmt.Printf("  vol %s", utils.FormatCount(*q.DayVolume))
			}
			fmt.Println()
		}
		return nil
	},
}

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history [symbol]",
	Short: "Fetch historical OHLCV bars",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := historyParams(cmd)
		if err != nil {
			return err
		}
		resp, err := ticker.New(cli, args[0]).History(cmd.Context(), params)
		if err != nil {
			return err
		}
		if emitJSON(cmd, resp) {
			return nil
		}
		for _, c := range resp.Candles {
			fmt.Printf("%s  O %9.2f  H %9.2f  L %9.2f  C %9.2f",
				utils.FormatDate(c.Ts, resp.Meta.Timezone), c.Open, c.High, c.Low, c.Close)
			if c.Volume != nil {
				fmt.Printf("  V %s", utils.FormatCount(*c.Volume))
			}
			fmt.Println()
		}
		for _, a := range resp.Actions {
			fmt.Printf("%s  %s", utils.FormatDate(a.Ts, resp.Meta.Timezone), a.Kind)
			if a.Kind == models.ActionSplit {
				fmt.Printf(" %g:%g", a.Numerator, a.Denominator)
			} else {
				fmt.Printf(" %.4f", a.Amount)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, downloadCmd} {
		c.Flags().String("range", "1y", "lookback range (1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max)")
		c.Flags().String("interval", "1d", "bar interval (1m 2m 5m 15m 30m 60m 90m 1h 1d 5d 1wk 1mo 3mo)")
		c.Flags().Int64("start", 0, "period start (unix seconds, overrides --range with --end)")
		c.Flags().Int64("end", 0, "period end (unix seconds)")
		c.Flags().Bool("prepost", false, "include pre/post market bars")
		c.Flags().Bool("no-adjust", false, "disable split/dividend auto-adjustment")
		c.Flags().Bool("keepna", false, "keep bars with missing values as NaN")
	}
	downloadCmd.Flags().Bool("back-adjust", false, "restore raw closes after adjusting O/H/L")
	downloadCmd.Flags().Bool("repair", false, "repair 100x unit-mixup spikes")
	downloadCmd.Flags().Bool("round", false, "round OHLC to 2 decimals")
}

func historyParams(cmd *cobra.Command) (models.HistoryParams, error) {
	params := models.DefaultHistoryParams()

	rngTok, _ := cmd.Flags().GetString("range")
	rng, err := models.ParseRange(rngTok)
	if err != nil {
		return params, err
	}
	params.Range = rng

	ivTok, _ := cmd.Flags().GetString("interval")
	iv, err := models.ParseInterval(ivTok)
	if err != nil {
		return params, err
	}
	params.Interval = iv

	start, _ := cmd.Flags().GetInt64("start")
	end, _ := cmd.Flags().GetInt64("end")
	if start != 0 || end != 0 {
		params.Range = ""
		params.Period = &models.Period{Start: start, End: end}
	}

	params.IncludePrePost, _ = cmd.Flags().GetBool("prepost")
	if noAdjust, _ := cmd.Flags().GetBool("no-adjust"); noAdjust {
		params.AutoAdjust = false
	}
	params.KeepNA, _ = cmd.Flags().GetBool("keepna")
	return params, nil
}

// --- Download Command ---

var downloadCmd = &cobra.Command{
	Use:   "download [symbols...]",
	Short: "Download history for many symbols concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hp, err := historyParams(cmd)
		if err != nil {
			return err
		}
		params := models.DownloadParams{History: hp}
		params.BackAdjust, _ = cmd.Flags().GetBool("back-adjust")
		params.Repair, _ = cmd.Flags().GetBool("repair")
		params.Rounding, _ = cmd.Flags().GetBool("round")

		provider := history.NewProvider(cli, client.CallOpts{})
		res, err := history.Download(cmd.Context(), provider, args, params, cfg.Download.Concurrency)
		if err != nil {
			return err
		}
		if emitJSON(cmd, res) {
			return nil
		}
		for symbol, candles := range res.Series {
			fmt.Printf("%s: %d bars", symbol, len(candles))
			if len(candles) > 0 {
				last := candles[len(candles)-1]
				fmt.Printf(", last close %.2f", last.Close)
			}
			fmt.Println()
		}
		return nil
	},
}

// --- Options Command ---

var optionsCmd = &cobra.Command{
	Use:   "options [symbol]",
	Short: "Fetch the option chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expiration, _ := cmd.Flags().GetInt64("date")
		chain, err := ticker.New(cli, args[0]).Options(cmd.Context(), expiration)
		if err != nil {
			return err
		}
		if emitJSON(cmd, chain) {
			return nil
		}
		fmt.Printf("%s  expiry %s  (%d expirations available)\n",
			chain.Symbol, utils.FormatDate(chain.Expiration, ""), len(chain.ExpirationDates))
		fmt.Printf("%d calls / %d puts\n", len(chain.Calls), len(chain.Puts))
		for _, leg := range [][]models.OptionContract{chain.Calls, chain.Puts} {
			for _, oc := range leg {
				fmt.Printf("  %-24s strike %s", oc.ContractSymbol, utils.FormatMoney(oc.Strike))
				if oc.LastPrice != nil {
					fmt.Printf("  last %s", utils.FormatMoney(*oc.LastPrice))
				}
				fmt.Println()
			}
		}
		return nil
	},
}

func init() {
	optionsCmd.Flags().Int64("date", 0, "expiration date (unix seconds, 0 = nearest)")
}

// --- Profile Command ---

var profileCmd = &cobra.Command{
	Use:   "profile [symbol]",
	Short: "Load the company or fund profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := ticker.New(cli, args[0]).Profile(cmd.Context())
		if err != nil {
			return err
		}
		if emitJSON(cmd, p) {
			return nil
		}
		switch v := p.(type) {
		case *models.CompanyProfile:
			fmt.Printf("%s\n", v.Name())
			fmt.Printf("  sector:   %s\n", v.Sector)
			fmt.Printf("  industry: %s\n", v.Industry)
			fmt.Printf("  country:  %s\n", v.Address.Country)
			fmt.Printf("  website:  %s\n", v.Website)
		case *models.FundProfile:
			fmt.Printf("%s (%s)\n", v.Name(), v.Kind)
			fmt.Printf("  family: %s\n", v.Family)
		}
		return nil
	},
}

// --- ISIN Command ---

var isinCmd = &cobra.Command{
	Use:   "isin [symbol]",
	Short: "Resolve a symbol to its ISIN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := ticker.New(cli, args[0]).ISIN(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(code)
		return nil
	},
}

// --- Search Command ---

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for symbols",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		results, err := quote.Search(cmd.Context(), cli, strings.Join(args, " "), limit, client.CallOpts{})
		if err != nil {
			return err
		}
		if emitJSON(cmd, results) {
			return nil
		}
		for _, r := range results {
			fmt.Printf("%-10s %-9s %-8s %s\n", r.Symbol, r.QuoteType, r.Exchange, r.Name)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("limit", 10, "max results")
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [symbol]",
	Short: "Fetch recent news for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		items, err := ticker.New(cli, args[0]).News(cmd.Context(), count)
		if err != nil {
			return err
		}
		if emitJSON(cmd, items) {
			return nil
		}
		for _, item := range items {
			fmt.Printf("%s  %s\n", item.PublishedAt.Format("2006-01-02 15:04"), item.Title)
			if item.Link != "" {
				fmt.Printf("    %s\n", item.Link)
			}
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("count", 10, "max articles")
}

// --- Stream Command ---

var streamCmd = &cobra.Command{
	Use:   "stream [symbols...]",
	Short: "Stream live price updates (Ctrl-C to stop)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		method := stream.WebSocketWithFallback
		if cfg.Stream.ForcePolling {
			method = stream.Polling
		}
		diffOnly, _ := cmd.Flags().GetBool("diff")

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		h, updates, err := stream.Start(ctx, cli, stream.Config{
			Symbols:  args,
			Method:   method,
			Interval: time.Duration(cfg.Stream.PollIntervalSec) * time.Second,
			DiffOnly: diffOnly,
		})
		if err != nil {
			return err
		}
		defer h.Stop()

		for {
			select {
			case upd, ok := <-updates:
				if !ok {
					return nil
				}
				if upd.LastPrice != nil {
					fmt.Printf("%s  %-10s %12.4f %s\n",
						time.Unix(upd.Ts, 0).UTC().Format("15:04:05"),
						upd.Symbol, *upd.LastPrice, upd.Currency)
				}
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func init() {
	streamCmd.Flags().Bool("diff", true, "only emit updates when the price changes")
}

// --- Info Command ---

var infoCmd = &cobra.Command{
	Use:   "info [symbol]",
	Short: "Fetch the composite info record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := ticker.New(cli, args[0]).Info(cmd.Context())
		if err != nil {
			return err
		}
		if emitJSON(cmd, info) {
			return nil
		}
		fmt.Printf("%s: %s\n", info.Symbol, info.Profile.Name())
		if info.Quote != nil && info.Quote.Price != nil {
			fmt.Printf("  price: %s\n", utils.FormatMoney(*info.Quote.Price))
		}
		if pt := info.PriceTarget; pt != nil && pt.Mean != nil {
			fmt.Printf("  target (mean): %.2f\n", *pt.Mean)
		}
		if rec := info.Recommendations; rec != nil {
			fmt.Printf("  analysts: %d strong buy / %d buy / %d hold / %d sell\n",
				rec.StrongBuy, rec.Buy, rec.Hold, rec.Sell+rec.StrongSell)
		}
		if esg := info.Esg; esg != nil && esg.TotalEsg != nil {
			fmt.Printf("  esg: %.1f\n", *esg.TotalEsg)
		}
		return nil
	},
}
