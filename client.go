package robinhood

import (
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// DefaultAuthScheme prefixes the token in the Authorization header.
	DefaultAuthScheme = "Token"
	APIVersion        = "1.152.0"
	UserAgent         = "Robinhood/5.32.0 (com.robinhood.release.Robinhood; build:3814; iOS 10.3.3)"
)

// Credentials authorize a client. Supply either Token, or Username and
// Password (optionally with TOTPSecret for accounts with two-factor login).
type Credentials struct {
	Username   string
	Password   string
	TOTPSecret string
	Token      string
}

func (c *Credentials) validate() error {
	if c == nil {
		return ErrConfiguration
	}
	hasToken := c.Token != ""
	hasLogin := c.Username != "" || c.Password != ""
	switch {
	case hasToken && hasLogin:
		return ErrConfiguration.WithMessage("supply a token or a username and password, not both")
	case hasToken:
		return nil
	case c.Username == "" || c.Password == "":
		return ErrConfiguration
	}
	return nil
}

// Config configures a Client. The zero value talks to DefaultHost over
// net/http and stays Unauthenticated until Authorize is called.
type Config struct {
	Host       string
	Transport  Transport
	HTTPClient *http.Client

	// AuthScheme defaults to DefaultAuthScheme. Browser-captured tokens use "Bearer".
	AuthScheme string

	// Headers are added to the default headers sent with every request.
	Headers map[string]string
	Debug   bool
	Logger  *zerolog.Logger

	// Credentials, when set, start authorization inside NewClient.
	Credentials *Credentials
}

// Client represents the Robinhood API client
type Client struct {
	host       string
	transport  Transport
	authScheme string
	headers    http.Header
	logger     zerolog.Logger

	mu   sync.Mutex
	auth *Authorization
}

// NewClient creates a new Robinhood API client. When cfg.Credentials is set
// the authorization handshake is started in the background before NewClient
// returns; an invalid credential set fails with ErrConfiguration.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	c := &Client{
		host:       cfg.Host,
		transport:  cfg.Transport,
		authScheme: cfg.AuthScheme,
		headers:    defaultHeaders(),
	}
	if c.host == "" {
		c.host = DefaultHost
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(cfg.HTTPClient)
	}
	if c.authScheme == "" {
		c.authScheme = DefaultAuthScheme
	}
	for k, v := range cfg.Headers {
		c.headers.Set(k, v)
	}

	switch {
	case cfg.Logger != nil:
		c.logger = *cfg.Logger
	case cfg.Debug:
		c.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().
			Timestamp().
			Str("component", "robinhood").
			Logger()
	default:
		c.logger = zerolog.Nop()
	}

	if cfg.Credentials != nil {
		if _, err := c.BeginAuthorization(*cfg.Credentials); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func defaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("Accept", "*/*")
	h.Set("Accept-Encoding", "gzip, deflate")
	h.Set("Accept-Language", "en;q=1, fr;q=0.9, de;q=0.8, ja;q=0.7, nl;q=0.6, it;q=0.5")
	h.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	h.Set("Connection", "keep-alive")
	h.Set("X-Robinhood-API-Version", APIVersion)
	h.Set("User-Agent", UserAgent)
	return h
}

// Host returns the base URL requests are sent to.
func (c *Client) Host() string {
	return c.host
}

func (c *Client) url(e Endpoint, params map[string]string) (string, string, error) {
	r := Routes[e]
	u, err := r.URL(c.host, params)
	return r.Method, u, err
}
