package robinhood

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account and profile

// ListAccounts returns the accounts page for the authorized user.
func (c *Client) ListAccounts(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointAccounts, nil, nil, nil)
}

func (c *Client) InvestmentProfile(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointInvestmentProfile, nil, nil, nil)
}

func (c *Client) User(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointUser, nil, nil, nil)
}

func (c *Client) UserBasicInfo(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointUserBasicInfo, nil, nil, nil)
}

func (c *Client) UserAdditionalInfo(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointUserAdditionalInfo, nil, nil, nil)
}

func (c *Client) UserEmployment(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointUserEmployment, nil, nil, nil)
}

func (c *Client) UserInvestmentProfile(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointUserInvestmentProfile, nil, nil, nil)
}

func (c *Client) Applications(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointApplications, nil, nil, nil)
}

func (c *Client) Documents(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointEDocuments, nil, nil, nil)
}

func (c *Client) DocumentRequests(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointDocumentRequests, nil, nil, nil)
}

func (c *Client) Notifications(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointNotifications, nil, nil, nil)
}

func (c *Client) NotificationDevices(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointNotificationsDevices, nil, nil, nil)
}

func (c *Client) MarginUpgrades(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointMarginUpgrade, nil, nil, nil)
}

// RequestPasswordReset asks for a reset email. It needs no authorization.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (json.RawMessage, error) {
	method, u, err := c.url(EndpointPasswordReset, nil)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, &Request{Method: method, URL: u, Form: url.Values{"email": {email}}}, true)
}

// Banking

func (c *Client) ACHIAVAuth(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointACHIAVAuth, nil, nil, nil)
}

func (c *Client) ACHRelationships(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointACHRelationships, nil, nil, nil)
}

func (c *Client) ACHTransfers(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointACHTransfers, nil, nil, nil)
}

func (c *Client) ACHDepositSchedules(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointACHDepositSchedules, nil, nil, nil)
}

// Orders

// OrderFilter narrows ListOrders.
type OrderFilter struct {
	// UpdatedAt keeps orders updated at or after this time.
	UpdatedAt  time.Time
	Instrument string
	Cursor     string

	// Extra is sent as is, e.g. state=filled.
	Extra url.Values
}

func (f OrderFilter) query() url.Values {
	q := url.Values{}
	if !f.UpdatedAt.IsZero() {
		q.Set("updated_at[gte]", f.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if f.Instrument != "" {
		q.Set("instrument", f.Instrument)
	}
	if f.Cursor != "" {
		q.Set("cursor", f.Cursor)
	}
	for k, vs := range f.Extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return q
}

// GetOrder retrieves one order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	return c.call(ctx, EndpointOrders, nil, url.Values{"id": {orderID}}, nil)
}

// ListOrders retrieves the user's orders.
func (c *Client) ListOrders(ctx context.Context, filter OrderFilter) (json.RawMessage, error) {
	return c.call(ctx, EndpointOrders, nil, filter.query(), nil)
}

// CancelOrder cancels one order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	return c.call(ctx, EndpointCancelOrder, map[string]string{"order_id": orderID}, nil, nil)
}

// Side is "buy" or "sell".
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderSpec describes an order for PlaceOrder. Zero TimeInForce, Trigger and
// Type default to "gfd", "immediate" and "market". A zero StopPrice is not sent.
type OrderSpec struct {
	InstrumentURL string
	Symbol        string
	Side          Side
	Quantity      decimal.Decimal
	BidPrice      decimal.Decimal
	StopPrice     decimal.Decimal
	TimeInForce   string
	Trigger       string
	Type          string
	// RefID makes the submission idempotent; one is generated when empty.
	RefID string
}

func (s OrderSpec) form(account string) (url.Values, error) {
	if s.Side != Buy && s.Side != Sell {
		return nil, fmt.Errorf("side must be 'buy' or 'sell'")
	}
	if !s.Quantity.IsPositive() {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if s.InstrumentURL == "" || s.Symbol == "" {
		return nil, fmt.Errorf("instrument url and symbol are required")
	}

	form := url.Values{
		"account":       {account},
		"instrument":    {s.InstrumentURL},
		"symbol":        {s.Symbol},
		"side":          {string(s.Side)},
		"quantity":      {s.Quantity.String()},
		"time_in_force": {orDefault(s.TimeInForce, "gfd")},
		"trigger":       {orDefault(s.Trigger, "immediate")},
		"type":          {orDefault(s.Type, "market")},
		"ref_id":        {orDefault(s.RefID, uuid.NewString())},
	}
	if !s.BidPrice.IsZero() {
		form.Set("price", s.BidPrice.String())
	}
	if !s.StopPrice.IsZero() {
		form.Set("stop_price", s.StopPrice.String())
	}
	return form, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// PlaceOrder submits an order against the authorized account. Unlike the other
// calls it waits for the whole handshake, since it needs the account reference.
func (c *Client) PlaceOrder(ctx context.Context, spec OrderSpec) (json.RawMessage, error) {
	a := c.authorization()
	if a == nil {
		return nil, ErrAuthRequired
	}
	if _, err := a.Wait(ctx); err != nil {
		return nil, err
	}
	form, err := spec.form(a.account)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, EndpointPlaceOrder, nil, nil, form)
}

// Market data

// Historicals returns price history for symbol, e.g. interval "5minute" over span "week".
func (c *Client) Historicals(ctx context.Context, symbol, interval, span string) (json.RawMessage, error) {
	return c.call(ctx, EndpointHistoricals, map[string]string{
		"symbol":   symbol,
		"interval": interval,
		"span":     span,
	}, nil, nil)
}

// Quotes returns quotes for one or more symbols.
func (c *Client) Quotes(ctx context.Context, symbols ...string) (json.RawMessage, error) {
	return c.call(ctx, EndpointQuotes, nil, url.Values{"symbols": {strings.Join(symbols, ",")}}, nil)
}

func (c *Client) Fundamentals(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.call(ctx, EndpointFundamentals, nil, url.Values{"symbols": {symbol}}, nil)
}

func (c *Client) Instruments(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.call(ctx, EndpointInstruments, nil, url.Values{"symbols": {symbol}}, nil)
}

// Splits lists stock splits of the instrument with the given id.
func (c *Client) Splits(ctx context.Context, instrument string) (json.RawMessage, error) {
	return c.call(ctx, EndpointSplits, map[string]string{"instrument": instrument}, nil, nil)
}

func (c *Client) News(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.call(ctx, EndpointNews, map[string]string{"symbol": symbol}, nil, nil)
}

func (c *Client) Markets(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointMarkets, nil, nil, nil)
}

func (c *Client) SP500Up(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointSP500Up, nil, nil, nil)
}

func (c *Client) SP500Down(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointSP500Down, nil, nil, nil)
}

// Portfolio

func (c *Client) Dividends(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointDividends, nil, nil, nil)
}

func (c *Client) Positions(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointPositions, nil, nil, nil)
}

// NonzeroPositions is Positions without closed positions.
func (c *Client) NonzeroPositions(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointPositions, nil, url.Values{"nonzero": {"true"}}, nil)
}

func (c *Client) Watchlists(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointWatchlists, nil, nil, nil)
}

func (c *Client) CreateWatchlist(ctx context.Context, name string) (json.RawMessage, error) {
	return c.call(ctx, EndpointCreateWatchlist, nil, nil, url.Values{"name": {name}})
}

// Get fetches an absolute API URL, such as the "next" link of a page or an
// instrument URL embedded in an order.
func (c *Client) Get(ctx context.Context, rawURL string) (json.RawMessage, error) {
	return c.do(ctx, &Request{Method: "GET", URL: rawURL}, false)
}
