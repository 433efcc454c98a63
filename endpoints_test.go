package robinhood

import (
	"errors"
	"strings"
	"testing"
)

func TestRoutes_Complete(t *testing.T) {
	for e, r := range Routes {
		if r.Method != "GET" && r.Method != "POST" {
			t.Errorf("%s: method %q", e, r.Method)
		}
		if r.Path == "" || strings.HasPrefix(r.Path, "/") {
			t.Errorf("%s: path %q should be relative to the host", e, r.Path)
		}
		if strings.Count(r.Path, "{{") != strings.Count(r.Path, "}}") {
			t.Errorf("%s: unbalanced placeholders in %q", e, r.Path)
		}
	}
}

func TestRoute_URL(t *testing.T) {
	tests := []struct {
		name   string
		route  Route
		host   string
		params map[string]string
		want   string
	}{
		{
			name:   "path placeholder",
			route:  Routes[EndpointCancelOrder],
			host:   DefaultHost,
			params: map[string]string{"order_id": "123"},
			want:   "https://api.robinhood.com/orders/123/cancel/",
		},
		{
			name:   "host without trailing slash",
			route:  Routes[EndpointAccounts],
			host:   "https://api.test",
			want:   "https://api.test/accounts/",
		},
		{
			name:  "path and query placeholders",
			route: Routes[EndpointHistoricals],
			host:  DefaultHost,
			params: map[string]string{
				"symbol":   "BRK.B",
				"interval": "day",
				"span":     "5year",
			},
			want: "https://api.robinhood.com/quotes/historicals/BRK.B/?interval=day&span=5year",
		},
		{
			name:   "escapes values",
			route:  Route{"GET", "x/{{a}}/?q={{b}}"},
			host:   DefaultHost,
			params: map[string]string{"a": "a/b", "b": "c&d"},
			want:   "https://api.robinhood.com/x/a%2Fb/?q=c%26d",
		},
		{
			name:   "unknown params ignored",
			route:  Routes[EndpointNews],
			host:   DefaultHost,
			params: map[string]string{"symbol": "AAPL", "other": "x"},
			want:   "https://api.robinhood.com/midlands/news/AAPL/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.route.URL(tt.host, tt.params)
			if err != nil {
				t.Fatalf("URL: %v", err)
			}
			if got != tt.want {
				t.Errorf("URL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRoute_URLMissingParams(t *testing.T) {
	tests := []struct {
		name   string
		route  Route
		params map[string]string
	}{
		{"missing", Routes[EndpointSplits], nil},
		{"empty", Routes[EndpointSplits], map[string]string{"instrument": ""}},
		{"one of several", Routes[EndpointHistoricals], map[string]string{"symbol": "AAPL", "interval": "day"}},
		{"unterminated", Route{"GET", "x/{{a/"}, map[string]string{"a": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.route.URL(DefaultHost, tt.params)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("URL() = %q, %v, want ErrInvalidRequest", u, err)
			}
		})
	}
}
