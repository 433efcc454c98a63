package robinhood

import (
	"net/url"
	"strings"
)

// DefaultHost is the base URL of the private API.
const DefaultHost = "https://api.robinhood.com/"

// Endpoint names a logical operation in the route table.
type Endpoint string

const (
	EndpointLogin                 Endpoint = "login"
	EndpointLogout                Endpoint = "logout"
	EndpointInvestmentProfile     Endpoint = "investment_profile"
	EndpointAccounts              Endpoint = "accounts"
	EndpointACHIAVAuth            Endpoint = "ach_iav_auth"
	EndpointACHRelationships      Endpoint = "ach_relationships"
	EndpointACHTransfers          Endpoint = "ach_transfers"
	EndpointACHDepositSchedules   Endpoint = "ach_deposit_schedules"
	EndpointApplications          Endpoint = "applications"
	EndpointDividends             Endpoint = "dividends"
	EndpointEDocuments            Endpoint = "edocuments"
	EndpointInstruments           Endpoint = "instruments"
	EndpointSplits                Endpoint = "splits"
	EndpointMarginUpgrade         Endpoint = "margin_upgrade"
	EndpointMarkets               Endpoint = "markets"
	EndpointNotifications         Endpoint = "notifications"
	EndpointNotificationsDevices  Endpoint = "notifications_devices"
	EndpointOrders                Endpoint = "orders"
	EndpointPlaceOrder            Endpoint = "place_order"
	EndpointCancelOrder           Endpoint = "cancel_order"
	EndpointPasswordReset         Endpoint = "password_reset"
	EndpointQuotes                Endpoint = "quotes"
	EndpointHistoricals           Endpoint = "historicals"
	EndpointDocumentRequests      Endpoint = "document_requests"
	EndpointUser                  Endpoint = "user"
	EndpointUserAdditionalInfo    Endpoint = "user_additional_info"
	EndpointUserBasicInfo         Endpoint = "user_basic_info"
	EndpointUserEmployment        Endpoint = "user_employment"
	EndpointUserInvestmentProfile Endpoint = "user_investment_profile"
	EndpointWatchlists            Endpoint = "watchlists"
	EndpointCreateWatchlist       Endpoint = "create_watchlist"
	EndpointPositions             Endpoint = "positions"
	EndpointFundamentals          Endpoint = "fundamentals"
	EndpointSP500Up               Endpoint = "sp500_up"
	EndpointSP500Down             Endpoint = "sp500_down"
	EndpointNews                  Endpoint = "news"
)

// Route is a verb plus a path template relative to the host. Placeholders
// are written {{name}}.
type Route struct {
	Method string
	Path   string
}

// Routes is the endpoint table.
var Routes = map[Endpoint]Route{
	EndpointLogin:                 {"POST", "api-token-auth/"},
	EndpointLogout:                {"POST", "api-token-logout/"},
	EndpointInvestmentProfile:     {"GET", "user/investment_profile/"},
	EndpointAccounts:              {"GET", "accounts/"},
	EndpointACHIAVAuth:            {"GET", "ach/iav/auth/"},
	EndpointACHRelationships:      {"GET", "ach/relationships/"},
	EndpointACHTransfers:          {"GET", "ach/transfers/"},
	EndpointACHDepositSchedules:   {"GET", "ach/deposit_schedules/"},
	EndpointApplications:          {"GET", "applications/"},
	EndpointDividends:             {"GET", "dividends/"},
	EndpointEDocuments:            {"GET", "documents/"},
	EndpointInstruments:           {"GET", "instruments/"},
	EndpointSplits:                {"GET", "instruments/{{instrument}}/splits/"},
	EndpointMarginUpgrade:         {"GET", "margin/upgrades/"},
	EndpointMarkets:               {"GET", "markets/"},
	EndpointNotifications:         {"GET", "notifications/"},
	EndpointNotificationsDevices:  {"GET", "notifications/devices/"},
	EndpointOrders:                {"GET", "orders/"},
	EndpointPlaceOrder:            {"POST", "orders/"},
	EndpointCancelOrder:           {"POST", "orders/{{order_id}}/cancel/"},
	EndpointPasswordReset:         {"POST", "password_reset/request/"},
	EndpointQuotes:                {"GET", "quotes/"},
	EndpointHistoricals:           {"GET", "quotes/historicals/{{symbol}}/?interval={{interval}}&span={{span}}"},
	EndpointDocumentRequests:      {"GET", "upload/document_requests/"},
	EndpointUser:                  {"GET", "user/"},
	EndpointUserAdditionalInfo:    {"GET", "user/additional_info/"},
	EndpointUserBasicInfo:         {"GET", "user/basic_info/"},
	EndpointUserEmployment:        {"GET", "user/employment/"},
	EndpointUserInvestmentProfile: {"GET", "user/investment_profile/"},
	EndpointWatchlists:            {"GET", "watchlists/"},
	EndpointCreateWatchlist:       {"POST", "watchlists/"},
	EndpointPositions:             {"GET", "positions/"},
	EndpointFundamentals:          {"GET", "fundamentals/"},
	EndpointSP500Up:               {"GET", "midlands/movers/sp500/?direction=up"},
	EndpointSP500Down:             {"GET", "midlands/movers/sp500/?direction=down"},
	EndpointNews:                  {"GET", "midlands/news/{{symbol}}/"},
}

// URL joins host and the route path, substituting each {{name}} with the
// escaped value from params. Every placeholder needs a non-empty value;
// params the path does not name are ignored.
func (r Route) URL(host string, params map[string]string) (string, error) {
	path := r.Path
	from := 0
	for {
		i := strings.Index(path[from:], "{{")
		if i < 0 {
			break
		}
		start := from + i
		j := strings.Index(path[start:], "}}")
		if j < 0 {
			return "", ErrInvalidRequest.WithMessage("unterminated placeholder in " + r.Path)
		}
		end := start + j
		name := path[start+2 : end]
		value := params[name]
		if value == "" {
			return "", ErrInvalidRequest.WithMessage("missing path parameter " + name)
		}

		escaped := url.PathEscape(value)
		if q := strings.Index(path, "?"); q >= 0 && start > q {
			escaped = url.QueryEscape(value)
		}
		path = path[:start] + escaped + path[end+2:]
		from = start + len(escaped)
	}
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}
	return host + path, nil
}
