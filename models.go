package robinhood

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Decode turns a pass-through response body into T. It is shaped to wrap a
// call directly: Decode[QuotePage](c.Quotes(ctx, "AAPL")).
func Decode[T any](raw json.RawMessage, err error) (T, error) {
	var v T
	if err != nil {
		return v, err
	}
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, ErrTransport.WithMessage("failed to decode response").WithError(err)
	}
	return v, nil
}

// Page is the paginated list envelope used by most endpoints.
type Page[T any] struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type AccountPage = Page[Account]

type Account struct {
	URL                 string          `json:"url"`
	AccountNumber       string          `json:"account_number"`
	Type                string          `json:"type"`
	Cash                decimal.Decimal `json:"cash"`
	BuyingPower         decimal.Decimal `json:"buying_power"`
	CashHeldForOrders   decimal.Decimal `json:"cash_held_for_orders"`
	UnclearedDeposits   decimal.Decimal `json:"uncleared_deposits"`
	Deactivated         bool            `json:"deactivated"`
	WithdrawalHalted    bool            `json:"withdrawal_halted"`
	OnlyPositionClosing bool            `json:"only_position_closing_trades"`
	Positions           string          `json:"positions"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type QuotePage = Page[Quote]

type Quote struct {
	Symbol                      string          `json:"symbol"`
	AskPrice                    decimal.Decimal `json:"ask_price"`
	AskSize                     int64           `json:"ask_size"`
	BidPrice                    decimal.Decimal `json:"bid_price"`
	BidSize                     int64           `json:"bid_size"`
	LastTradePrice              decimal.Decimal `json:"last_trade_price"`
	LastExtendedHoursTradePrice decimal.Decimal `json:"last_extended_hours_trade_price"`
	PreviousClose               decimal.Decimal `json:"previous_close"`
	TradingHalted               bool            `json:"trading_halted"`
	Instrument                  string          `json:"instrument"`
	UpdatedAt                   time.Time       `json:"updated_at"`
}

type OrderPage = Page[Order]

type Order struct {
	ID                 string          `json:"id"`
	URL                string          `json:"url"`
	RefID              string          `json:"ref_id"`
	Account            string          `json:"account"`
	Instrument         string          `json:"instrument"`
	Side               Side            `json:"side"`
	Type               string          `json:"type"`
	TimeInForce        string          `json:"time_in_force"`
	Trigger            string          `json:"trigger"`
	State              string          `json:"state"`
	Price              decimal.Decimal `json:"price"`
	StopPrice          decimal.Decimal `json:"stop_price"`
	AveragePrice       decimal.Decimal `json:"average_price"`
	Quantity           decimal.Decimal `json:"quantity"`
	CumulativeQuantity decimal.Decimal `json:"cumulative_quantity"`

	// Cancel is the cancel URL, null once the order can no longer be canceled.
	Cancel    *string   `json:"cancel"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PositionPage = Page[Position]

type Position struct {
	URL             string          `json:"url"`
	Account         string          `json:"account"`
	Instrument      string          `json:"instrument"`
	Quantity        decimal.Decimal `json:"quantity"`
	AverageBuyPrice decimal.Decimal `json:"average_buy_price"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type InstrumentPage = Page[Instrument]

type Instrument struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Quote    string `json:"quote"`
	Splits   string `json:"splits"`
	Tradable bool   `json:"tradeable"`
	State    string `json:"state"`
}

type FundamentalsPage = Page[Fundamentals]

type Fundamentals struct {
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Volume        decimal.Decimal `json:"volume"`
	AverageVolume decimal.Decimal `json:"average_volume"`
	High52Weeks   decimal.Decimal `json:"high_52_weeks"`
	Low52Weeks    decimal.Decimal `json:"low_52_weeks"`
	MarketCap     decimal.Decimal `json:"market_cap"`
	PERatio       decimal.Decimal `json:"pe_ratio"`
	DividendYield decimal.Decimal `json:"dividend_yield"`
	Description   string          `json:"description"`
}

// Historicals is the body of the historicals endpoint.
type Historicals struct {
	Symbol      string       `json:"symbol"`
	Interval    string       `json:"interval"`
	Span        string       `json:"span"`
	Bounds      string       `json:"bounds"`
	Historicals []Historical `json:"historicals"`
}

// Historical is one bar.
type Historical struct {
	BeginsAt     time.Time       `json:"begins_at"`
	OpenPrice    decimal.Decimal `json:"open_price"`
	ClosePrice   decimal.Decimal `json:"close_price"`
	HighPrice    decimal.Decimal `json:"high_price"`
	LowPrice     decimal.Decimal `json:"low_price"`
	Volume       int64           `json:"volume"`
	Session      string          `json:"session"`
	Interpolated bool            `json:"interpolated"`
}
