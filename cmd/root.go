package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/go-audiofilters/cmd/catalog"
	"github.com/tphakala/go-audiofilters/cmd/play"
	"github.com/tphakala/go-audiofilters/cmd/process"
	"github.com/tphakala/go-audiofilters/cmd/serve"
	"github.com/tphakala/go-audiofilters/cmd/tune"
	"github.com/tphakala/go-audiofilters/cmd/validate"
	"github.com/tphakala/go-audiofilters/internal/app"
	"github.com/tphakala/go-audiofilters/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *app.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "audiofilters",
		Short:         "Audio filter bundle: catalog, settings and processing",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	viper.SetEnvPrefix(conf.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := setupFlags(rootCmd, settings); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		catalog.Command(),
		validate.Command(settings),
		process.Command(settings),
		serve.Command(settings),
		tune.Command(settings),
		play.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags set on the command line win over environment variables.
		syncViper(settings)
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *app.Settings) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&settings.ConfigPath, "config", "c", viper.GetString("config"), "Settings file (default: "+conf.ConfigFileName+" in the user config directory)")
	flags.BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	flags.StringVar(&settings.LogFile, "log-file", viper.GetString("log-file"), "Write JSON logs to this file")
	flags.StringVar(&settings.SentryDSN, "sentry-dsn", viper.GetString("sentry-dsn"), "Report errors to this Sentry DSN")
	flags.BoolVar(&settings.EnvOverrides, "env-overrides", viper.GetBool("env-overrides"), "Let "+conf.EnvPrefix+"_* variables override stored filter settings")

	if err := viper.BindPFlags(flags); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// syncViper copies the merged flag and environment values into settings.
func syncViper(settings *app.Settings) {
	settings.ConfigPath = viper.GetString("config")
	settings.Debug = viper.GetBool("debug")
	settings.LogFile = viper.GetString("log-file")
	settings.SentryDSN = viper.GetString("sentry-dsn")
	settings.EnvOverrides = viper.GetBool("env-overrides")
}
