package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	robinhood "github.com/fm407/go-robinhood"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List recent orders",
	RunE:  runOrders,
}

var orderCmd = &cobra.Command{
	Use:   "order ID",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrder,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel ID",
	Short: "Cancel an open order",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

var buyCmd = &cobra.Command{
	Use:   "buy SYMBOL QUANTITY",
	Short: "Place a buy order",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrade(robinhood.Buy),
}

var sellCmd = &cobra.Command{
	Use:   "sell SYMBOL QUANTITY",
	Short: "Place a sell order",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrade(robinhood.Sell),
}

func init() {
	rootCmd.AddCommand(ordersCmd, orderCmd, cancelCmd, buyCmd, sellCmd)

	ordersCmd.Flags().Duration("since", 7*24*time.Hour, "only orders updated within this window")

	for _, c := range []*cobra.Command{buyCmd, sellCmd} {
		c.Flags().String("price", "", "limit price (market orders default to the last trade price)")
		c.Flags().String("stop", "", "stop price")
		c.Flags().String("type", "market", "order type: market, limit")
		c.Flags().String("tif", "gfd", "time in force: gfd, gtc")
	}
}

func runOrders(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	since, _ := cmd.Flags().GetDuration("since")

	raw, err := client.ListOrders(cmd.Context(), robinhood.OrderFilter{UpdatedAt: time.Now().Add(-since)})
	if err != nil {
		return err
	}
	if jsonOutput() {
		return printJSON(raw)
	}

	page, err := robinhood.Decode[robinhood.OrderPage](raw, nil)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(page.Results))
	for _, o := range page.Results {
		rows = append(rows, []string{
			o.ID,
			string(o.Side),
			o.Type,
			o.State,
			o.Quantity.String(),
			o.Price.StringFixed(2),
			o.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	printTable([]string{"ID", "Side", "Type", "State", "Quantity", "Price", "Created"}, rows)
	return nil
}

func runOrder(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	raw, err := client.GetOrder(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(raw)
}

func runCancel(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	if _, err := client.CancelOrder(cmd.Context(), args[0]); err != nil {
		return err
	}
	printSuccess("Cancel requested for " + args[0])
	return nil
}

func runTrade(side robinhood.Side) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		symbol := strings.ToUpper(args[0])
		qty, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q: %w", args[1], err)
		}
		price, err := decimalFlag(cmd, "price")
		if err != nil {
			return err
		}
		stop, err := decimalFlag(cmd, "stop")
		if err != nil {
			return err
		}
		orderType, _ := cmd.Flags().GetString("type")
		tif, _ := cmd.Flags().GetString("tif")

		client, err := newClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		instruments, err := robinhood.Decode[robinhood.InstrumentPage](client.Instruments(ctx, symbol))
		if err != nil {
			return err
		}
		if len(instruments.Results) == 0 {
			return fmt.Errorf("unknown symbol %s", symbol)
		}

		if price.IsZero() {
			quotes, err := robinhood.Decode[robinhood.QuotePage](client.Quotes(ctx, symbol))
			if err != nil {
				return err
			}
			if len(quotes.Results) == 0 {
				return fmt.Errorf("no quote for %s", symbol)
			}
			price = quotes.Results[0].LastTradePrice
		}

		raw, err := client.PlaceOrder(ctx, robinhood.OrderSpec{
			InstrumentURL: instruments.Results[0].URL,
			Symbol:        symbol,
			Side:          side,
			Quantity:      qty,
			BidPrice:      price,
			StopPrice:     stop,
			TimeInForce:   tif,
			Type:          orderType,
		})
		if err != nil {
			return err
		}
		order, err := robinhood.Decode[robinhood.Order](raw, nil)
		if err != nil {
			return err
		}
		printSuccess(fmt.Sprintf("%s %s %s placed (%s)", side, qty, symbol, order.State))
		return nil
	}
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, s, err)
	}
	return d, nil
}
