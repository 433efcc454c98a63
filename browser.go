package robinhood

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
)

// WebLoginURL is the login page driven by BrowserLogin.
const WebLoginURL = "https://robinhood.com/login"

// BrowserLoginOptions configures BrowserLogin.
type BrowserLoginOptions struct {
	Username   string
	Password   string
	TOTPSecret string
	Headless   bool
	// Timeout bounds the wait for the token, 60s when zero.
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// BrowserLogin signs in through the web app with Playwright and returns the
// bearer token the app sends to the API. Use it as Credentials{Token: ...}
// with Config.AuthScheme set to "Bearer", for accounts where the token
// endpoint insists on a device challenge.
func BrowserLogin(ctx context.Context, opts BrowserLoginOptions) (string, error) {
	if opts.Username == "" || opts.Password == "" {
		return "", ErrConfiguration
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	pw, err := playwright.Run()
	if err != nil {
		return "", fmt.Errorf("failed to start Playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-automation",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create context: %w", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}

	tokens := make(chan string, 1)
	err = page.Route(regexp.MustCompile(`api\.robinhood\.com`), func(route playwright.Route) {
		all, _ := route.Request().AllHeaders()
		if auth := all["authorization"]; strings.HasPrefix(auth, "Bearer ") {
			select {
			case tokens <- strings.TrimPrefix(auth, "Bearer "):
			default:
			}
		}
		_ = route.Continue()
	})
	if err != nil {
		return "", fmt.Errorf("failed to set route: %w", err)
	}

	log.Debug().Msg("navigating to login page")
	if _, err = page.Goto(WebLoginURL, playwright.PageGotoOptions{Timeout: playwright.Float(60000)}); err != nil {
		return "", fmt.Errorf("failed to navigate to login page: %w", err)
	}

	userSel := `input[name="username"]`
	passSel := `input[name="password"]`
	if _, err = page.WaitForSelector(userSel, playwright.PageWaitForSelectorOptions{Timeout: playwright.Float(30000)}); err != nil {
		return "", fmt.Errorf("failed to wait for login form: %w", err)
	}

	log.Debug().Msg("entering credentials")
	if err = page.Locator(userSel).Fill(opts.Username); err != nil {
		return "", fmt.Errorf("failed to fill username: %w", err)
	}
	if err = page.Locator(passSel).Fill(opts.Password); err != nil {
		return "", fmt.Errorf("failed to fill password: %w", err)
	}
	if err = page.Locator(passSel).Press("Enter"); err != nil {
		return "", fmt.Errorf("failed to submit login: %w", err)
	}

	if opts.TOTPSecret != "" {
		code, err := totp.GenerateCode(opts.TOTPSecret, time.Now())
		if err != nil {
			return "", fmt.Errorf("failed to generate TOTP code: %w", err)
		}
		codeSel := `input[autocomplete="one-time-code"]`
		if _, err = page.WaitForSelector(codeSel, playwright.PageWaitForSelectorOptions{Timeout: playwright.Float(30000)}); err != nil {
			return "", fmt.Errorf("failed to wait for mfa prompt: %w", err)
		}
		if err = page.Locator(codeSel).Fill(code); err != nil {
			return "", fmt.Errorf("failed to fill mfa code: %w", err)
		}
		if err = page.Locator(codeSel).Press("Enter"); err != nil {
			return "", fmt.Errorf("failed to submit mfa code: %w", err)
		}
	}

	log.Debug().Msg("waiting for token capture")
	select {
	case token := <-tokens:
		log.Debug().Msg("captured bearer token")
		return token, nil
	case <-time.After(opts.Timeout):
		return "", fmt.Errorf("timed out waiting for authorization header")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
