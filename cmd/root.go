package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/parkctl/config"
	"github.com/s0up4200/parkctl/filter"
	"github.com/s0up4200/parkctl/parking"
)

// skipConfig marks commands that run without a config file or client
const skipConfig = "skip-config"

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	client   parking.API
	compiler *filter.Compiler

	// Command flags
	filterExpr string
	preset     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "parkctl",
	Short: "Manage parking permit reservations and favorite plates",
	Long: `parkctl is a CLI for a municipal parking-permit account. It shows the
permit balance and today's paid zone hours, books and ends visitor
reservations, and manages saved license plates.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(zoneCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reservationsCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// initializeApp initializes the configuration and client
func initializeApp(cmd *cobra.Command, args []string) error {
	if _, ok := cmd.Annotations[skipConfig]; ok {
		return nil
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	client, err = parking.New(cfg.Parking.ClientConfig(), parking.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create parking client: %w", err)
	}

	compiler = filter.NewCompiler(filter.WithCache(16))

	logger.Debug().
		Str("base_url", cfg.Parking.BaseURL).
		Str("user_agent", parking.UserAgent()).
		Msg("Client initialized")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; no colour codes when stderr is redirected
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// errorHint returns an extra line of advice for errors users can act on
func errorHint(err error) string {
	var rl *parking.RateLimitError
	switch {
	case errors.As(err, &rl):
		if rl.RetryAfter != nil {
			return fmt.Sprintf("The parking service is rate limiting requests. Try again in %d seconds.", *rl.RetryAfter)
		}
		return "The parking service is rate limiting requests. Try again later."
	case errors.Is(err, parking.ErrAuth):
		return "Check parking.username and parking.password in your config."
	case errors.Is(err, parking.ErrConnection):
		return "Check parking.base_url and your network connection."
	}
	return ""
}

// getFilterProgram compiles the filter to apply to a list command, or
// returns nil when none was requested.
func getFilterProgram() (*filter.Program, error) {
	// Priority: command line filter > preset > default
	expr := filterExpr
	if expr == "" && preset != "" {
		p, ok := cfg.Filter.Preset(preset)
		if !ok {
			return nil, fmt.Errorf("preset '%s' not found in config", preset)
		}
		expr = p
	}
	if expr == "" {
		expr = cfg.Filter.Default
	}
	if expr == "" {
		return nil, nil
	}

	program, err := compiler.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	logger.Debug().Str("filter", program.Expression()).Msg("Applying filter")
	return program, nil
}

// formatTime renders API times in the local zone for display
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
