// Package cmd implements the themectl commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codr1/mailthemes/internal/rpcclient"
)

const (
	defaultServer = "http://localhost:8080"
	envPrefix     = "THEMECTL"
)

// app carries the resolved settings shared by every command.
type app struct {
	v       *viper.Viper
	cfgFile string
}

// Execute runs the root command against os.Args.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "themectl",
		Short: "Manage mail client color themes",
		Long: `themectl creates, edits and shares mail client color themes through the
themes API, and applies them to a local preview profile.

Settings come from $HOME/.themectl.yaml and THEMECTL_* environment variables.
Flags given on the command line take precedence over both.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.initConfig(cmd); err != nil {
				return err
			}
			a.initLogging()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.themectl.yaml)")
	flags.String("server", defaultServer, "themes API base URL")
	flags.String("token", "", "bearer token for user procedures")
	flags.String("profile", "", "preview profile directory (default is $HOME/.themectl/profile)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newThemesCmd(a),
		newMarketplaceCmd(a),
		newConnectionsCmd(a),
		newApplyCmd(a),
		newDefaultCmd(a),
		newResetCmd(a),
		newStatusCmd(a),
		newColorCmd(),
	)
	return root
}

func (a *app) initConfig(cmd *cobra.Command) error {
	a.v.SetDefault("server", defaultServer)
	a.v.SetDefault("log_level", "warn")
	a.v.SetDefault("timeout", 15*time.Second)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".themectl")
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// Flags override env and config only when set explicitly.
	for _, name := range []string{"server", "token", "profile", "log-level"} {
		flag := cmd.Flags().Lookup(name)
		if flag != nil && flag.Changed {
			a.v.Set(strings.ReplaceAll(name, "-", "_"), flag.Value.String())
		}
	}
	return nil
}

func (a *app) initLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(a.v.GetString("log_level")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func (a *app) client() *rpcclient.Client {
	opts := []rpcclient.Option{}
	if token := a.v.GetString("token"); token != "" {
		opts = append(opts, rpcclient.WithToken(token))
	}
	return rpcclient.New(a.v.GetString("server"), opts...)
}

func (a *app) profileDir() (string, error) {
	if dir := a.v.GetString("profile"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".themectl", "profile"), nil
}

func (a *app) timeout() time.Duration {
	if d := a.v.GetDuration("timeout"); d > 0 {
		return d
	}
	return 15 * time.Second
}
