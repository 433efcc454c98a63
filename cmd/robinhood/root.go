package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	robinhood "github.com/fm407/go-robinhood"
)

var (
	cfgFile string

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

var rootCmd = &cobra.Command{
	Use:   "robinhood",
	Short: "Command line access to a Robinhood brokerage account",
	Long: `Query accounts, quotes and orders from your terminal.

Credentials come from flags, ROBINHOOD_* environment variables, a .env file,
~/.robinhood/config.yaml, or the token saved by "robinhood login".

Get started:
  robinhood login           Log in and save a token
  robinhood accounts        List your accounts
  robinhood quote AAPL      Show a quote`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ~/.robinhood/config.yaml)")
	flags.StringP("format", "f", "table", "output format: table, json")
	flags.String("host", robinhood.DefaultHost, "API base URL")
	flags.String("token", "", "API token (skips login)")
	flags.String("username", "", "account username")
	flags.Bool("debug", false, "log requests to stderr")

	for _, name := range []string{"format", "host", "token", "username", "debug"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := configDir(); err == nil {
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetDefault("auth_scheme", robinhood.DefaultAuthScheme)
	viper.SetEnvPrefix("ROBINHOOD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			printError("reading config: " + err.Error())
		}
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".robinhood"), nil
}

func logger() *zerolog.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("debug") {
		level = zerolog.DebugLevel
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return &l
}

// newClient builds a client authorized from, in order: an explicit token, the
// saved login, or a username and password.
func newClient() (*robinhood.Client, error) {
	creds, scheme, err := resolveCredentials()
	if err != nil {
		return nil, err
	}
	return robinhood.NewClient(&robinhood.Config{
		Host:        viper.GetString("host"),
		AuthScheme:  scheme,
		Logger:      logger(),
		Credentials: creds,
	})
}

func resolveCredentials() (*robinhood.Credentials, string, error) {
	if token := viper.GetString("token"); token != "" {
		return &robinhood.Credentials{Token: token}, viper.GetString("auth_scheme"), nil
	}

	stored, err := loadAuth()
	if err != nil {
		return nil, "", fmt.Errorf("reading saved login: %w", err)
	}
	if stored != nil {
		return &robinhood.Credentials{Token: stored.Token}, stored.Scheme, nil
	}

	username, password := viper.GetString("username"), viper.GetString("password")
	if username != "" && password != "" {
		return &robinhood.Credentials{
			Username:   username,
			Password:   password,
			TOTPSecret: viper.GetString("totp_secret"),
		}, viper.GetString("auth_scheme"), nil
	}
	return nil, "", fmt.Errorf("not logged in: run 'robinhood login' or set ROBINHOOD_TOKEN")
}

func jsonOutput() bool {
	return viper.GetString("format") == "json"
}

func printJSON(raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printTable(headers []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("│")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.AppendBulk(rows)
	table.Render()
}

func printKeyValue(pairs [][]string) {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		fmt.Printf("%s  %s\n", mutedStyle.Render(fmt.Sprintf("%-*s", width, p[0])), p[1])
	}
}

func printSuccess(msg string) {
	fmt.Println(successStyle.Render("✓ ") + msg)
}

func printError(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ ")+msg)
}
