package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	robinhood "github.com/fm407/go-robinhood"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List brokerage accounts",
	RunE:  runAccounts,
}

var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL...",
	Short: "Show quotes for one or more symbols",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuote,
}

var historicalsCmd = &cobra.Command{
	Use:   "historicals SYMBOL",
	Short: "Show price history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoricals,
}

var fundamentalsCmd = &cobra.Command{
	Use:   "fundamentals SYMBOL",
	Short: "Show fundamentals",
	Args:  cobra.ExactArgs(1),
	RunE:  runFundamentals,
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List open positions",
	RunE:  runPositions,
}

var watchlistsCmd = &cobra.Command{
	Use:   "watchlists",
	Short: "List watchlists",
	RunE:  runWatchlists,
}

var newsCmd = &cobra.Command{
	Use:   "news SYMBOL",
	Short: "Show news for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runNews,
}

func init() {
	rootCmd.AddCommand(accountsCmd, quoteCmd, historicalsCmd, fundamentalsCmd, positionsCmd, watchlistsCmd, newsCmd)

	historicalsCmd.Flags().String("interval", "day", "bar interval: 5minute, 10minute, hour, day, week")
	historicalsCmd.Flags().String("span", "year", "span: day, week, month, 3month, year, 5year")
	positionsCmd.Flags().Bool("all", false, "include closed positions")
}

func runAccounts(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	raw, err := client.ListAccounts(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput() {
		return printJSON(raw)
	}

	page, err := robinhood.Decode[robinhood.AccountPage](raw, nil)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(page.Results))
	for _, a := range page.Results {
		rows = append(rows, []string{
			a.AccountNumber,
			a.Type,
			a.Cash.StringFixed(2),
			a.BuyingPower.StringFixed(2),
			strconv.FormatBool(a.Deactivated),
		})
	}
	printTable([]string{"Account", "Type", "Cash", "Buying Power", "Deactivated"}, rows)
	return nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	symbols := make([]string, len(args))
	for i, s := range args {
		symbols[i] = strings.ToUpper(s)
	}
	raw, err := client.Quotes(cmd.Context(), symbols...)
	if err != nil {
		return err
	}
	if jsonOutput() {
		return printJSON(raw)
	}

	page, err := robinhood.Decode[robinhood.QuotePage](raw, nil)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(page.Results))
	for _, q := range page.Results {
		rows = append(rows, []string{
			q.Symbol,
			q.BidPrice.StringFixed(2),
			q.AskPrice.StringFixed(2),
			q.LastTradePrice.StringFixed(2),
			q.PreviousClose.StringFixed(2),
		})
	}
	printTable([]string{"Symbol", "Bid", "Ask", "Last", "Prev Close"}, rows)
	return nil
}

func runHistoricals(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	interval, _ := cmd.Flags().GetString("interval")
	span, _ := cmd.Flags().GetString("span")

	raw, err := client.Historicals(cmd.Context(), strings.ToUpper(args[0]), interval, span)
	if err != nil {
		return err
	}
	if jsonOutput() {
		return printJSON(raw)
	}

	h, err := robinhood.Decode[robinhood.Historicals](raw, nil)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(h.Historicals))
	for _, bar := range h.Historicals {
		rows = append(rows, []string{
			bar.BeginsAt.Format("2006-01-02 15:04"),
			bar.OpenPrice.StringFixed(2),
			bar.HighPrice.StringFixed(2),
			bar.LowPrice.StringFixed(2),
			bar.ClosePrice.StringFixed(2),
			strconv.FormatInt(bar.Volume, 10),
		})
	}
	printTable([]string{"Begins", "Open", "High", "Low", "Close", "Volume"}, rows)
	return nil
}

func runFundamentals(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	raw, err := client.Fundamentals(cmd.Context(), strings.ToUpper(args[0]))
	if err != nil {
		return err
	}
	if jsonOutput() {
		return printJSON(raw)
	}

	page, err := robinhood.Decode[robinhood.FundamentalsPage](raw, nil)
	if err != nil {
		return err
	}
	if len(page.Results) == 0 {
		return fmt.Errorf("no fundamentals for %s", args[0])
	}
	f := page.Results[0]
	printKeyValue([][]string{
		{"Open", f.Open.StringFixed(2)},
		{"High", f.High.StringFixed(2)},
		{"Low", f.Low.StringFixed(2)},
		{"52w High", f.High52Weeks.StringFixed(2)},
		{"52w Low", f.Low52Weeks.StringFixed(2)},
		{"Volume", f.Volume.String()},
		{"Market Cap", f.MarketCap.StringFixed(0)},
		{"P/E", f.PERatio.StringFixed(2)},
		{"Dividend Yield", f.DividendYield.StringFixed(2)},
	})
	return nil
}

func runPositions(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")

	var raw []byte
	if all {
		raw, err = client.Positions(cmd.Context())
	} else {
		raw, err = client.NonzeroPositions(cmd.Context())
	}
	if err != nil {
		return err
	}
	if jsonOutput() {
		return printJSON(raw)
	}

	page, err := robinhood.Decode[robinhood.PositionPage](raw, nil)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(page.Results))
	for _, p := range page.Results {
		symbol := p.Instrument
		if inst, err := robinhood.Decode[robinhood.Instrument](client.Get(cmd.Context(), p.Instrument)); err == nil && inst.Symbol != "" {
			symbol = inst.Symbol
		}
		rows = append(rows, []string{
			symbol,
			p.Quantity.String(),
			p.AverageBuyPrice.StringFixed(2),
		})
	}
	printTable([]string{"Symbol", "Quantity", "Avg Price"}, rows)
	return nil
}

func runWatchlists(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	raw, err := client.Watchlists(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(raw)
}

func runNews(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	raw, err := client.News(cmd.Context(), strings.ToUpper(args[0]))
	if err != nil {
		return err
	}
	return printJSON(raw)
}
