package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	robinhood "github.com/fm407/go-robinhood"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save a token",
	Long: `Log in with a username and password and save the token to ~/.robinhood/auth.json.

The password is read from ROBINHOOD_PASSWORD or prompted for. Accounts with
two-factor login need ROBINHOOD_TOTP_SECRET. Use --browser to log in through
the web app instead of the token endpoint.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Expire the saved token and forget it",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authorization status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)

	loginCmd.Flags().Bool("browser", false, "log in through the web app with a browser")
	loginCmd.Flags().Bool("headless", false, "hide the browser window with --browser")
}

func runLogin(cmd *cobra.Command, args []string) error {
	username := viper.GetString("username")
	if username == "" {
		fmt.Print("Username: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password := viper.GetString("password")
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = string(raw)
	}
	totpSecret := viper.GetString("totp_secret")

	ctx := cmd.Context()
	creds := robinhood.Credentials{Username: username, Password: password, TOTPSecret: totpSecret}
	scheme := viper.GetString("auth_scheme")

	if browser, _ := cmd.Flags().GetBool("browser"); browser {
		headless, _ := cmd.Flags().GetBool("headless")
		token, err := robinhood.BrowserLogin(ctx, robinhood.BrowserLoginOptions{
			Username:   username,
			Password:   password,
			TOTPSecret: totpSecret,
			Headless:   headless,
			Logger:     logger(),
		})
		if err != nil {
			return fmt.Errorf("browser login: %w", err)
		}
		creds = robinhood.Credentials{Token: token}
		scheme = "Bearer"
	}

	client, err := robinhood.NewClient(&robinhood.Config{
		Host:        viper.GetString("host"),
		AuthScheme:  scheme,
		Logger:      logger(),
		Credentials: &creds,
	})
	if err != nil {
		return err
	}
	token, err := client.Authorize(ctx, creds)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	account, _ := client.AccountURL()

	if err := saveAuth(&storedAuth{
		Token:     token,
		Scheme:    scheme,
		Username:  username,
		Account:   account,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	printSuccess("Logged in as " + username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	stored, err := loadAuth()
	if err != nil {
		return err
	}
	if stored == nil {
		printSuccess("Not logged in")
		return nil
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	if _, err := client.Logout(cmd.Context()); err != nil {
		printError("expiring token: " + err.Error())
	}
	if err := clearAuth(); err != nil {
		return err
	}
	printSuccess("Logged out")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	_, authErr := client.Authorize(cmd.Context(), robinhood.Credentials{})
	account, _ := client.AccountURL()

	pairs := [][]string{
		{"State", client.State().String()},
		{"Host", client.Host()},
		{"Account", account},
	}
	if stored, _ := loadAuth(); stored != nil {
		pairs = append(pairs,
			[]string{"Username", stored.Username},
			[]string{"Saved", stored.CreatedAt.Format(time.RFC1123)},
		)
	}
	if authErr != nil {
		pairs = append(pairs, []string{"Error", authErr.Error()})
	}
	printKeyValue(pairs)
	return nil
}
