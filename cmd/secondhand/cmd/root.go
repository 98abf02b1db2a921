// Package cmd implements the secondhand CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/Yuyang-Ding1102/SecondHandPlatform/internal/api/client"
	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/config"
	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/listings"
	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/notify"
	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/session"
	"github.com/Yuyang-Ding1102/SecondHandPlatform/pkg/logger"
)

var (
	cfgFile string
	cfg     = config.Default()
	log     *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "secondhand",
		Short: "CLI client for the SecondHandPlatform marketplace",
		Long: "secondhand is a command-line client for the SecondHandPlatform API.\n" +
			"It lets a seller log in and view, edit, and delete their own\n" +
			"listings from the terminal.",
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.secondhand.yaml)")
	rootCmd.PersistentFlags().
		String("server", "", "API server URL (overrides the config file)")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		Bool("yes", false, "answer yes to every confirmation prompt")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))
	cobra.CheckErr(viper.BindPFlag("yes", rootCmd.PersistentFlags().Lookup("yes")))

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(listingsCmd())
	rootCmd.AddCommand(versionCmd())
}

// initConfig layers configuration: the YAML file sets the base, then
// SECONDHAND_* environment variables and flags override it via viper.
func initConfig() {
	viper.SetEnvPrefix("SECONDHAND")
	viper.AutomaticEnv()

	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		path = home + "/.secondhand.yaml"
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		cobra.CheckErr(err)
		cfg = loaded
		fmt.Fprintln(os.Stderr, "Using config file:", path)
	}

	log = logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

func serverURL() string {
	if s := viper.GetString("server"); s != "" {
		return s
	}
	return cfg.API.BaseURL
}

func tokenStore() *session.Store {
	store, err := session.NewStore()
	cobra.CheckErr(err)
	return store
}

func newClient() *apiclient.Client {
	return apiclient.New(
		serverURL(),
		tokenStore(),
		apiclient.WithRateLimit(cfg.API.RateLimit.PerSecond, cfg.API.RateLimit.Burst),
	)
}

func newManager(n notify.Notifier) *listings.Manager {
	return listings.NewManager(
		newClient(),
		tokenStore(),
		n,
		listings.WithLogger(log),
		listings.WithPageSize(cfg.Listings.PageSize),
		listings.WithTimeout(cfg.API.Timeout),
	)
}

func terminalNotifier() *notify.Terminal {
	term := notify.NewTerminal(os.Stdin, os.Stderr)
	term.AssumeYes = viper.GetBool("yes")
	return term
}
