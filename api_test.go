package robinhood

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func authorizedClient(t *testing.T) (*Client, *fakeTransport) {
	t.Helper()
	ft := authorizedFake("T1")
	c := newTestClient(t, ft, &Credentials{Username: "u", Password: "p"})
	if _, err := c.Authorize(context.Background(), Credentials{}); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	return c, ft
}

func TestCancelOrder(t *testing.T) {
	c, ft := authorizedClient(t)

	if _, err := c.CancelOrder(context.Background(), "123"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	r := ft.last()
	if r.Method != "POST" {
		t.Errorf("method = %s, want POST", r.Method)
	}
	if r.URL != testHost+"orders/123/cancel/" {
		t.Errorf("url = %s, want %sorders/123/cancel/", r.URL, testHost)
	}
}

func TestRequestShapes(t *testing.T) {
	ctx := context.Background()
	since := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		call      func(c *Client) (json.RawMessage, error)
		method    string
		url       string
		queryKey  string
		queryWant string
	}{
		{
			name:      "get order",
			call:      func(c *Client) (json.RawMessage, error) { return c.GetOrder(ctx, "abc") },
			method:    "GET",
			url:       testHost + "orders/",
			queryKey:  "id",
			queryWant: "abc",
		},
		{
			name:      "list orders since",
			call:      func(c *Client) (json.RawMessage, error) { return c.ListOrders(ctx, OrderFilter{UpdatedAt: since}) },
			method:    "GET",
			url:       testHost + "orders/",
			queryKey:  "updated_at[gte]",
			queryWant: "2024-03-01T09:30:00Z",
		},
		{
			name:      "quotes for many symbols",
			call:      func(c *Client) (json.RawMessage, error) { return c.Quotes(ctx, "AAPL", "MSFT") },
			method:    "GET",
			url:       testHost + "quotes/",
			queryKey:  "symbols",
			queryWant: "AAPL,MSFT",
		},
		{
			name:      "fundamentals",
			call:      func(c *Client) (json.RawMessage, error) { return c.Fundamentals(ctx, "TSLA") },
			method:    "GET",
			url:       testHost + "fundamentals/",
			queryKey:  "symbols",
			queryWant: "TSLA",
		},
		{
			name:      "nonzero positions",
			call:      func(c *Client) (json.RawMessage, error) { return c.NonzeroPositions(ctx) },
			method:    "GET",
			url:       testHost + "positions/",
			queryKey:  "nonzero",
			queryWant: "true",
		},
		{
			name:   "historicals",
			call:   func(c *Client) (json.RawMessage, error) { return c.Historicals(ctx, "AAPL", "5minute", "week") },
			method: "GET",
			url:    testHost + "quotes/historicals/AAPL/?interval=5minute&span=week",
		},
		{
			name:   "news",
			call:   func(c *Client) (json.RawMessage, error) { return c.News(ctx, "AAPL") },
			method: "GET",
			url:    testHost + "midlands/news/AAPL/",
		},
		{
			name:   "splits",
			call:   func(c *Client) (json.RawMessage, error) { return c.Splits(ctx, "450dfc6d") },
			method: "GET",
			url:    testHost + "instruments/450dfc6d/splits/",
		},
		{
			name:   "sp500 movers up",
			call:   func(c *Client) (json.RawMessage, error) { return c.SP500Up(ctx) },
			method: "GET",
			url:    testHost + "midlands/movers/sp500/?direction=up",
		},
		{
			name:   "logout",
			call:   func(c *Client) (json.RawMessage, error) { return c.Logout(ctx) },
			method: "POST",
			url:    testHost + "api-token-logout/",
		},
		{
			name:   "absolute url",
			call:   func(c *Client) (json.RawMessage, error) { return c.Get(ctx, "https://api.test/orders/?cursor=xyz") },
			method: "GET",
			url:    "https://api.test/orders/?cursor=xyz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ft := authorizedClient(t)
			if _, err := tt.call(c); err != nil {
				t.Fatalf("call: %v", err)
			}
			r := ft.last()
			if r.Method != tt.method {
				t.Errorf("method = %s, want %s", r.Method, tt.method)
			}
			if r.URL != tt.url {
				t.Errorf("url = %s, want %s", r.URL, tt.url)
			}
			if tt.queryKey != "" && r.Query.Get(tt.queryKey) != tt.queryWant {
				t.Errorf("query %s = %q, want %q", tt.queryKey, r.Query.Get(tt.queryKey), tt.queryWant)
			}
			if !r.JSON || !r.Gzip {
				t.Errorf("JSON = %v, Gzip = %v, want both true", r.JSON, r.Gzip)
			}
			if got := r.Header.Get("Authorization"); got != "Token T1" {
				t.Errorf("Authorization = %q, want %q", got, "Token T1")
			}
		})
	}
}

func TestListOrders_ExtraFilters(t *testing.T) {
	c, ft := authorizedClient(t)

	filter := OrderFilter{
		Instrument: "https://api.test/instruments/450dfc6d/",
		Extra:      url.Values{"state": {"filled"}},
	}
	if _, err := c.ListOrders(context.Background(), filter); err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	q := ft.last().Query
	if q.Get("state") != "filled" || q.Get("instrument") != filter.Instrument {
		t.Errorf("query = %v, want state and instrument", q)
	}
}

func TestSplits_MissingInstrument(t *testing.T) {
	c, ft := authorizedClient(t)
	before := ft.total()

	_, err := c.Splits(context.Background(), "")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	if ft.total() != before {
		t.Errorf("sent %d requests for an invalid call", ft.total()-before)
	}
}

func TestCreateWatchlist(t *testing.T) {
	c, ft := authorizedClient(t)

	if _, err := c.CreateWatchlist(context.Background(), "Tech"); err != nil {
		t.Fatalf("CreateWatchlist: %v", err)
	}
	r := ft.last()
	if r.Method != "POST" || r.Form.Get("name") != "Tech" {
		t.Errorf("request = %s %v, want POST name=Tech", r.Method, r.Form)
	}
}

func TestRequestPasswordReset_SkipsGate(t *testing.T) {
	ft := newFakeTransport()
	c := newTestClient(t, ft, nil)

	if _, err := c.RequestPasswordReset(context.Background(), "me@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	r := ft.last()
	if r.URL != testHost+"password_reset/request/" || r.Form.Get("email") != "me@example.com" {
		t.Errorf("request = %s %v", r.URL, r.Form)
	}
}

func TestPlaceOrder(t *testing.T) {
	c, ft := authorizedClient(t)

	_, err := c.PlaceOrder(context.Background(), OrderSpec{
		InstrumentURL: "https://api.test/instruments/450dfc6d/",
		Symbol:        "AAPL",
		Side:          Buy,
		Quantity:      decimal.NewFromInt(3),
		BidPrice:      decimal.RequireFromString("187.25"),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	r := ft.last()
	if r.Method != "POST" || r.URL != testHost+"orders/" {
		t.Fatalf("request = %s %s, want POST %sorders/", r.Method, r.URL, testHost)
	}
	want := map[string]string{
		"account":       "acct/1/",
		"instrument":    "https://api.test/instruments/450dfc6d/",
		"symbol":        "AAPL",
		"side":          "buy",
		"quantity":      "3",
		"price":         "187.25",
		"time_in_force": "gfd",
		"trigger":       "immediate",
		"type":          "market",
	}
	for k, v := range want {
		if got := r.Form.Get(k); got != v {
			t.Errorf("form %s = %q, want %q", k, got, v)
		}
	}
	if r.Form.Get("ref_id") == "" {
		t.Error("ref_id should be generated")
	}
	if _, ok := r.Form["stop_price"]; ok {
		t.Error("stop_price should be omitted when zero")
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	c, ft := authorizedClient(t)
	calls := ft.total()

	tests := []struct {
		name string
		spec OrderSpec
	}{
		{"invalid side", OrderSpec{InstrumentURL: "i", Symbol: "AAPL", Side: "hold", Quantity: decimal.NewFromInt(1)}},
		{"zero quantity", OrderSpec{InstrumentURL: "i", Symbol: "AAPL", Side: Sell}},
		{"missing instrument", OrderSpec{Symbol: "AAPL", Side: Sell, Quantity: decimal.NewFromInt(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.PlaceOrder(context.Background(), tt.spec); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if ft.total() != calls {
		t.Errorf("invalid orders reached the transport")
	}
}

func TestPlaceOrder_AccountPending(t *testing.T) {
	ft := authorizedFake("T1")
	ft.respond("accounts/", `{"results":[]}`)
	c := newTestClient(t, ft, &Credentials{Token: "T1"})

	_, err := c.PlaceOrder(context.Background(), OrderSpec{
		InstrumentURL: "i",
		Symbol:        "AAPL",
		Side:          Buy,
		Quantity:      decimal.NewFromInt(1),
	})
	if !errors.Is(err, ErrAccountPending) {
		t.Fatalf("err = %v, want ErrAccountPending", err)
	}
	if n := ft.count("orders/"); n != 0 {
		t.Errorf("order calls = %d, want 0", n)
	}
}

func TestDecode(t *testing.T) {
	raw := json.RawMessage(`{
		"next": null,
		"results": [{
			"symbol": "AAPL",
			"ask_price": "187.3100",
			"ask_size": 200,
			"bid_price": "187.2900",
			"last_trade_price": "187.3000",
			"previous_close": null,
			"trading_halted": false,
			"updated_at": "2024-03-01T20:59:59Z"
		}]
	}`)

	page, err := Decode[QuotePage](raw, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(page.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(page.Results))
	}
	q := page.Results[0]
	if q.Symbol != "AAPL" || q.AskSize != 200 {
		t.Errorf("quote = %+v", q)
	}
	if !q.LastTradePrice.Equal(decimal.RequireFromString("187.30")) {
		t.Errorf("LastTradePrice = %s, want 187.30", q.LastTradePrice)
	}
	if page.Next != nil {
		t.Errorf("Next = %v, want nil", *page.Next)
	}

	if _, err := Decode[QuotePage](nil, ErrAuthRequired); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("err = %v, want the call's error", err)
	}
	if _, err := Decode[QuotePage](json.RawMessage(`{"results":"x"}`), nil); !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}
