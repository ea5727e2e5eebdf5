// mcp-abap-adt is a read-only MCP server for SAP ABAP Development Tools (ADT)
// with where-used resolution.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/vibingsteamer/mcp-abap-adt/internal/mcp"
	"github.com/vibingsteamer/mcp-abap-adt/pkg/adt"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var cfg = &mcp.Config{}

var rootCmd = &cobra.Command{
	Use:   "mcp-abap-adt",
	Short: "Read-only MCP server for SAP ABAP Development Tools (ADT)",
	Long: `mcp-abap-adt is a Model Context Protocol (MCP) server that gives AI assistants
read access to an SAP system through ABAP Development Tools (ADT): source code,
dictionary objects, table contents, packages, search and where-used lists.

Examples:
  # Using environment variables
  SAP_URL=https://host:44300 SAP_USER=user SAP_PASSWORD=pass mcp-abap-adt

  # Using command-line flags
  mcp-abap-adt --url https://host:44300 --user admin --password secret

  # Using .env file
  mcp-abap-adt  # reads from .env in current directory

  # Using cookie authentication
  mcp-abap-adt --url https://host:44300 --cookie-string "session=abc123; token=xyz"
  mcp-abap-adt --url https://host:44300 --cookie-file cookies.txt

  # Expose Prometheus metrics next to the stdio server
  mcp-abap-adt --metrics-addr 127.0.0.1:9464`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
	RunE:          runServer,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// stringFlag defines a string CLI flag
type stringFlag struct {
	name, shorthand, defaultValue, description string
}

// boolFlag defines a bool CLI flag
type boolFlag struct {
	name, shorthand, description string
	defaultValue                 bool
}

var stringFlags = []stringFlag{
	{"url", "", "", "SAP system URL (e.g., https://host:44300)"},
	{"service", "", "", "SAP system URL (alias for --url)"},
	{"user", "u", "", "SAP username"},
	{"password", "p", "", "SAP password"},
	{"pass", "", "", "SAP password (alias for --password)"},
	{"client", "", "001", "SAP client number"},
	{"language", "", "EN", "SAP language"},
	{"cookie-file", "", "", "Path to cookie file in Netscape format"},
	{"cookie-string", "", "", "Cookie string (key1=val1; key2=val2)"},
	{"markers-file", "", "", "YAML file overriding the where-used hit markers"},
	{"metrics-addr", "", "", "Serve Prometheus metrics on this address (e.g., 127.0.0.1:9464)"},
}

var boolFlags = []boolFlag{
	{"insecure", "", "Skip TLS certificate verification", false},
	{"verbose", "v", "Enable debug logging to stderr", false},
}

func init() {
	// Load .env file if it exists (ignore error - file is optional)
	_ = godotenv.Load()

	flags := rootCmd.PersistentFlags()
	for _, f := range stringFlags {
		if f.shorthand != "" {
			flags.StringP(f.name, f.shorthand, f.defaultValue, f.description)
		} else {
			flags.String(f.name, f.defaultValue, f.description)
		}
		_ = viper.BindPFlag(f.name, flags.Lookup(f.name))
	}
	for _, f := range boolFlags {
		if f.shorthand != "" {
			flags.BoolP(f.name, f.shorthand, f.defaultValue, f.description)
		} else {
			flags.Bool(f.name, f.defaultValue, f.description)
		}
		_ = viper.BindPFlag(f.name, flags.Lookup(f.name))
	}
	flags.Duration("timeout", 30*time.Second, "HTTP timeout for ADT requests")
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))

	// Set up environment variable mapping
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SAP")
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := prepareConfig(cmd); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	cfg.Logger = logger
	logStartupInfo(logger)

	var (
		registry  *metricsRegistry
		metricsLn net.Listener
	)
	if metricsAddr := viper.GetString("metrics-addr"); metricsAddr != "" {
		registry, err = newMetricsRegistry()
		if err != nil {
			return err
		}
		metricsLn, err = listenMetrics(metricsAddr)
		if err != nil {
			return err
		}
		cfg.Metrics = registry.whereUsed
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		if metricsLn != nil {
			_ = metricsLn.Close()
		}
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// stdin closing ends the session and stops the metrics listener
		defer cancel()
		return server.ServeStdio()
	})
	if registry != nil {
		g.Go(func() error {
			return serveMetrics(gctx, metricsLn, registry, logger)
		})
	}
	return g.Wait()
}

// prepareConfig resolves flags, environment and cookies into cfg.
func prepareConfig(cmd *cobra.Command) error {
	resolveConfig(cmd)
	if err := validateConfig(); err != nil {
		return err
	}
	return processCookieAuth(cmd)
}

// newLogger builds a JSON logger on stderr; stdout carries the MCP protocol.
func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named("mcp-abap-adt"), nil
}

// logStartupInfo outputs startup information at debug level
func logStartupInfo(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("version", Version),
		zap.String("url", cfg.BaseURL),
		zap.String("client", cfg.Client),
		zap.String("language", cfg.Language),
		zap.Duration("timeout", cfg.Timeout),
	}
	if cfg.Username != "" {
		fields = append(fields, zap.String("auth", "basic"), zap.String("user", cfg.Username))
	} else if len(cfg.Cookies) > 0 {
		fields = append(fields, zap.String("auth", "cookie"), zap.Int("cookies", len(cfg.Cookies)))
	}
	if cfg.MarkersFile != "" {
		fields = append(fields, zap.String("markersFile", cfg.MarkersFile))
	}
	logger.Debug("starting", fields...)
}

func resolveConfig(cmd *cobra.Command) {
	hasCookieAuth := detectCookieAuth(cmd)

	// URL: flag > SAP_URL > SAP_SERVICE_URL
	cfg.BaseURL = getFirstNonEmpty("URL", "SERVICE", "SERVICE_URL")

	// Username/Password: skip if cookie auth is present
	if !hasCookieAuth {
		if cfg.Username == "" {
			cfg.Username = getFirstNonEmpty("USER", "USERNAME")
		}
		if cfg.Password == "" {
			cfg.Password = getFirstNonEmpty("PASSWORD", "PASS")
		}
	}

	resolveString(cmd, "client", "CLIENT", &cfg.Client)
	resolveString(cmd, "language", "LANGUAGE", &cfg.Language)
	resolveString(cmd, "markers-file", "MARKERS_FILE", &cfg.MarkersFile)
	resolveBool(cmd, "insecure", "INSECURE", &cfg.InsecureSkipVerify)
	resolveBool(cmd, "verbose", "VERBOSE", &cfg.Verbose)
	cfg.Timeout = viper.GetDuration("timeout")
}

// detectCookieAuth checks if cookie authentication is requested
func detectCookieAuth(cmd *cobra.Command) bool {
	cookieAuthViaCLI := cmd.Flags().Changed("cookie-file") || cmd.Flags().Changed("cookie-string")
	cookieAuthViaEnv := viper.GetString("COOKIE_FILE") != "" || viper.GetString("COOKIE_STRING") != ""
	return cookieAuthViaCLI || cookieAuthViaEnv
}

// Helper functions for config resolution

func getFirstNonEmpty(keys ...string) string {
	for _, key := range keys {
		if v := viper.GetString(key); v != "" {
			return v
		}
	}
	return ""
}

func resolveBool(cmd *cobra.Command, flag, envKey string, target *bool) {
	if !cmd.Flags().Changed(flag) {
		*target = viper.GetBool(envKey)
	} else {
		*target, _ = cmd.Flags().GetBool(flag)
	}
}

func resolveString(cmd *cobra.Command, flag, envKey string, target *string) {
	if !cmd.Flags().Changed(flag) {
		if v := viper.GetString(envKey); v != "" {
			*target = v
		}
	} else {
		*target, _ = cmd.Flags().GetString(flag)
	}
}

func validateConfig() error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("SAP URL is required. Use --url flag or SAP_URL environment variable")
	}
	return nil
}

func processCookieAuth(cmd *cobra.Command) error {
	cookieFile := getStringFlag(cmd, "cookie-file", "COOKIE_FILE")
	cookieString := getStringFlag(cmd, "cookie-string", "COOKIE_STRING")

	if err := checkAuthMethods(cfg.Username != "" && cfg.Password != "", cookieFile, cookieString); err != nil {
		return err
	}

	if cookieFile != "" {
		cookies, err := loadCookieFile(cookieFile)
		if err != nil {
			return err
		}
		cfg.Cookies = cookies
	}

	if cookieString != "" {
		cookies := adt.ParseCookieString(cookieString)
		if len(cookies) == 0 {
			return fmt.Errorf("failed to parse cookie string")
		}
		cfg.Cookies = cookies
	}

	return nil
}

// checkAuthMethods requires exactly one authentication method.
func checkAuthMethods(basicAuth bool, cookieFile, cookieString string) error {
	authMethods := 0
	if basicAuth {
		authMethods++
	}
	if cookieFile != "" {
		authMethods++
	}
	if cookieString != "" {
		authMethods++
	}

	if authMethods > 1 {
		return fmt.Errorf("only one authentication method can be used at a time (basic auth, cookie-file, or cookie-string)")
	}
	if authMethods == 0 {
		return fmt.Errorf("authentication required. Use --user/--password, --cookie-file, or --cookie-string")
	}
	return nil
}

func getStringFlag(cmd *cobra.Command, flag, envKey string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return viper.GetString(envKey)
}

func loadCookieFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("cookie file not found: %s", path)
	}

	cookies, err := adt.LoadCookiesFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies from file: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies found in file: %s", path)
	}

	return cookies, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
