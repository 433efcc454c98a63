package robinhood

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pquerna/otp/totp"
)

// AuthState is the lifecycle of a client's single authorization attempt.
type AuthState int

const (
	Unauthenticated AuthState = iota
	Authorizing
	Authorized
	Failed
)

func (s AuthState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authorizing:
		return "authorizing"
	case Authorized:
		return "authorized"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("AuthState(%d)", int(s))
}

// Authorization is the shared outcome of a client's handshake. It completes
// in two phases: headers are installed once a token is known, and the whole
// handshake is done once the account reference is resolved.
type Authorization struct {
	headerReady chan struct{}
	done        chan struct{}

	// set before headerReady is closed, read-only afterwards
	headers   http.Header
	headerErr error

	// set before done is closed, read-only afterwards
	token   string
	account string
	err     error
}

func newAuthorization() *Authorization {
	return &Authorization{
		headerReady: make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Done is closed when the handshake has finished, successfully or not.
func (a *Authorization) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the handshake finishes and returns its token. ctx only
// bounds this caller's wait; the handshake itself keeps running.
func (a *Authorization) Wait(ctx context.Context) (string, error) {
	select {
	case <-a.done:
		return a.token, a.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *Authorization) waitHeaders(ctx context.Context) (http.Header, error) {
	select {
	case <-a.headerReady:
		return a.headers, a.headerErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *Authorization) installHeaders(h http.Header) {
	a.headers = h
	close(a.headerReady)
}

func (a *Authorization) finish(token, account string, err error) {
	select {
	case <-a.headerReady:
	default:
		a.headerErr = err
		close(a.headerReady)
	}
	if err == nil {
		a.token = token
		a.account = account
	}
	a.err = err
	close(a.done)
}

// BeginAuthorization starts the client's handshake with creds. Only the first
// call on a client starts one; every later call, concurrent or not, returns the
// same Authorization and ignores its creds. Invalid creds fail with
// ErrConfiguration and leave the client Unauthenticated.
func (c *Client) BeginAuthorization(creds Credentials) (*Authorization, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.auth != nil {
		return c.auth, nil
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}
	if creds.TOTPSecret != "" {
		if _, err := totp.GenerateCode(creds.TOTPSecret, time.Now()); err != nil {
			return nil, ErrConfiguration.WithMessage("invalid totp secret").WithError(err)
		}
	}

	a := newAuthorization()
	c.auth = a
	go c.handshake(a, creds)
	return a, nil
}

// Authorize begins authorization if needed and waits for its outcome.
func (c *Client) Authorize(ctx context.Context, creds Credentials) (string, error) {
	a, err := c.BeginAuthorization(creds)
	if err != nil {
		return "", err
	}
	return a.Wait(ctx)
}

// State reports where the client's authorization stands.
func (c *Client) State() AuthState {
	a := c.authorization()
	if a == nil {
		return Unauthenticated
	}
	select {
	case <-a.done:
		if a.err != nil {
			return Failed
		}
		return Authorized
	default:
		return Authorizing
	}
}

// AccountURL returns the account reference resolved during authorization.
func (c *Client) AccountURL() (string, bool) {
	a := c.authorization()
	if a == nil {
		return "", false
	}
	select {
	case <-a.done:
		return a.account, a.err == nil
	default:
		return "", false
	}
}

func (c *Client) authorization() *Authorization {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth
}

// handshake runs detached from any caller: there is no cancellation, so a
// Transport call that never returns leaves the client Authorizing.
func (c *Client) handshake(a *Authorization, creds Credentials) {
	ctx := context.Background()
	log := c.logger.With().Str("username", creds.Username).Logger()

	token := creds.Token
	if token == "" {
		log.Debug().Msg("token requested")
		var (
			resp *LoginResponse
			err  error
		)
		if creds.TOTPSecret != "" {
			var code string
			code, err = totp.GenerateCode(creds.TOTPSecret, time.Now())
			if err == nil {
				resp, err = c.LoginMFA(ctx, creds.Username, creds.Password, code)
			}
		} else {
			resp, err = c.Login(ctx, creds.Username, creds.Password)
		}
		if err != nil {
			log.Error().Err(err).Msg("login failed")
			a.finish("", "", err)
			return
		}
		token = resp.Token
	}

	headers := c.headers.Clone()
	headers.Set("Authorization", c.authScheme+" "+token)
	a.installHeaders(headers)
	log.Debug().Msg("token installed")

	raw, err := c.ListAccounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("account lookup failed")
		a.finish("", "", err)
		return
	}
	account, ok := firstAccountURL(raw)
	if !ok {
		log.Warn().Msg("account pending")
		a.finish("", "", ErrAccountPending)
		return
	}
	log.Debug().Str("account", account).Msg("account resolved")
	a.finish(token, account, nil)
}

// firstAccountURL picks the first account reference out of an accounts page.
// ok is false when the page has no results or is not a results page at all,
// which is how the API answers valid credentials whose brokerage account has
// not been approved yet.
func firstAccountURL(raw json.RawMessage) (string, bool) {
	var page struct {
		Results []struct {
			URL string `json:"url"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return "", false
	}
	if len(page.Results) == 0 || page.Results[0].URL == "" {
		return "", false
	}
	return page.Results[0].URL, true
}

// LoginResponse is the body of the token endpoint.
type LoginResponse struct {
	Token       string `json:"token"`
	MFARequired bool   `json:"mfa_required"`
	MFAType     string `json:"mfa_type"`
}

// Login exchanges a username and password for a token. It bypasses the
// authorization gate and does not change the client's authorization state.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	return c.login(ctx, url.Values{
		"username": {username},
		"password": {password},
	})
}

// LoginMFA is Login for accounts with two-factor login enabled.
func (c *Client) LoginMFA(ctx context.Context, username, password, mfaCode string) (*LoginResponse, error) {
	return c.login(ctx, url.Values{
		"username": {username},
		"password": {password},
		"mfa_code": {mfaCode},
	})
}

func (c *Client) login(ctx context.Context, form url.Values) (*LoginResponse, error) {
	method, u, err := c.url(EndpointLogin, nil)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, &Request{Method: method, URL: u, Form: form}, true)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && (e.Status == http.StatusBadRequest || e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden) {
			return nil, ErrLogin.WithError(err)
		}
		return nil, err
	}

	var resp LoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, ErrLogin.WithMessage("unreadable token response").WithError(err)
	}
	if resp.Token == "" {
		if resp.MFARequired {
			return nil, ErrLogin.WithMessage("mfa code required")
		}
		return nil, ErrLogin.WithMessage("no token in response")
	}
	return &resp, nil
}

// Logout expires the client's token on the server. The client keeps its
// authorization state; construct a new client to log in again.
func (c *Client) Logout(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, EndpointLogout, nil, nil, nil)
}
