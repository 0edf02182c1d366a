// Package commands implements the orbctl command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	orb "github.com/modelrelay/orb-go"
)

// cli holds the state shared by every command of one invocation.
type cli struct {
	configPath string
	apiKey     string
	baseURL    string
	strict     bool
	logLevel   string
	output     string

	getenv  func(string) string
	options []orb.Option

	client *orb.Client
	logger zerolog.Logger
}

// Execute runs orbctl with the process arguments.
func Execute() error {
	root := newRootCmd(os.Getenv)
	return root.ExecuteContext(context.Background())
}

func newRootCmd(getenv func(string) string, extra ...orb.Option) *cobra.Command {
	c := &cli{getenv: getenv, options: extra}
	root := &cobra.Command{
		Use:          "orbctl",
		Short:        "Operate on Orb customers, credits and subscriptions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", defaultConfigPath(), "config file")
	flags.StringVar(&c.apiKey, "api-key", "", "Orb API key (default $ORB_API_KEY)")
	flags.StringVar(&c.baseURL, "base-url", "", "Orb API base URL")
	flags.BoolVar(&c.strict, "strict", false, "fail on responses that break the API contract")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVarP(&c.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(
		c.customersCmd(),
		c.creditsCmd(),
		c.ledgerCmd(),
		c.topUpsCmd(),
		c.migrationsCmd(),
		c.subscriptionsCmd(),
	)
	return root
}

// init resolves configuration (file, then environment, then flags) and
// builds the client.
func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	cfg.applyEnv(c.getenv)

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = c.apiKey
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = c.baseURL
	}
	if flags.Changed("strict") {
		cfg.Strict = c.strict
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	switch c.output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.output)
	}

	c.logger, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	opts, err := cfg.clientOptions()
	if err != nil {
		return err
	}
	opts = append(opts,
		orb.WithTelemetry(orb.ZerologHooks(c.logger)),
		orb.WithUserAgent("orbctl/"+orb.Version),
	)
	opts = append(opts, c.options...)
	c.client, err = orb.NewClient(opts...)
	return err
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl := zerolog.WarnLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}
