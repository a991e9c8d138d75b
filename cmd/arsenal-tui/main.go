package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/facebookfortune84/agentic-workforce/internal/config"
	"github.com/facebookfortune84/agentic-workforce/internal/controller"
	"github.com/facebookfortune84/agentic-workforce/internal/logbuf"
	"github.com/facebookfortune84/agentic-workforce/internal/logging"
	"github.com/facebookfortune84/agentic-workforce/internal/metrics"
	"github.com/facebookfortune84/agentic-workforce/internal/registry"
)

// Version is set at build time with -ldflags.
var Version = "dev"

const (
	defaultTimeoutSeconds  = 30
	metricsShutdownTimeout = 5 * time.Second
)

type appConfig struct {
	configPath  string
	envFile     string
	url         string
	apiKey      string
	timeout     time.Duration
	policy      string
	logLevel    string
	logFormat   string
	logFile     string
	metricsAddr string
	altScreen   bool
}

// app wires the core components around one live endpoint and one log.
type app struct {
	cfg     appConfig
	live    *config.Live
	log     *logbuf.Buffer
	client  *registry.Client
	sync    *controller.Sync
	sub     *controller.Submission
	metrics *metrics.Recorder
	logger  zerolog.Logger
}

func newApp(cfg appConfig, ep registry.Endpoint, logger zerolog.Logger) (*app, error) {
	recorder := metrics.New()
	live := config.NewLive(ep)
	buf := logbuf.New(logbuf.DefaultCapacity, logbuf.WithLogger(logger.With().Str("stream", "diagnostic").Logger()))
	client := registry.New(registry.WithTimeout(cfg.timeout), registry.WithLogger(logger))
	opts := []controller.Option{
		controller.WithRecorder(recorder),
		controller.WithLogger(logger),
		controller.WithPolicy(parsePolicy(cfg.policy)),
	}
	syncer, err := controller.NewSync(client, live, buf, opts...)
	if err != nil {
		return nil, err
	}
	sub, err := controller.NewSubmission(client, live, syncer, buf, opts...)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		live:    live,
		log:     buf,
		client:  client,
		sync:    syncer,
		sub:     sub,
		metrics: recorder,
		logger:  logger,
	}, nil
}

func parsePolicy(raw string) controller.Policy {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "latest-issued", "latest":
		return controller.LatestIssued
	default:
		return controller.LastCompleted
	}
}

func defaultConfig() appConfig {
	return appConfig{
		configPath:  config.EnvOr("ARSENAL_CONFIG", config.DefaultPath()),
		envFile:     config.EnvOr("ARSENAL_ENV_FILE", ".env"),
		timeout:     config.EnvOrSeconds("ARSENAL_HTTP_TIMEOUT", defaultTimeoutSeconds*time.Second),
		policy:      config.EnvOr("ARSENAL_SYNC_POLICY", controller.LastCompleted.String()),
		logLevel:    config.EnvOr("ARSENAL_LOG_LEVEL", "info"),
		logFormat:   config.EnvOr("ARSENAL_LOG_FORMAT", "auto"),
		logFile:     config.EnvOr("ARSENAL_LOG_FILE", ""),
		metricsAddr: config.EnvOr("ARSENAL_METRICS_ADDR", ""),
		altScreen:   config.EnvOrBool("ARSENAL_TUI_ALT_SCREEN", true),
	}
}

func newRootCmd() *cobra.Command {
	cfg := defaultConfig()
	timeoutSeconds := int(cfg.timeout / time.Second)

	root := &cobra.Command{
		Use:           "arsenal-tui",
		Short:         "Capability registry manager for a remote agent fleet",
		Long:          "arsenal-tui synchronizes the capability roster exposed by a remote agent fleet, drafts new capabilities with the fleet's AI forge, and injects hand-written ones.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.timeout = time.Duration(clampInt(timeoutSeconds, 1, 600)) * time.Second
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.configPath, "config", cfg.configPath, "YAML file holding the persisted endpoint (url, api_key)")
	flags.StringVar(&cfg.envFile, "env-file", cfg.envFile, "dotenv file consulted for ARSENAL_URL / ARSENAL_API_KEY")
	flags.StringVar(&cfg.url, "url", "", "Registry base URL (overrides persisted configuration)")
	flags.StringVar(&cfg.apiKey, "api-key", "", "Registry API key (overrides persisted configuration)")
	flags.IntVar(&timeoutSeconds, "timeout", timeoutSeconds, "Per-request HTTP timeout seconds")
	flags.StringVar(&cfg.policy, "sync-policy", cfg.policy, "Overlapping sync resolution (last-completed|latest-issued)")
	flags.StringVar(&cfg.logLevel, "log-level", cfg.logLevel, "Log level (debug|info|warn|error|disabled)")
	flags.StringVar(&cfg.logFormat, "log-format", cfg.logFormat, "Log format for headless commands (auto|json|console)")
	flags.StringVar(&cfg.logFile, "log-file", cfg.logFile, "Log file path (TUI defaults to the user cache dir)")
	flags.StringVar(&cfg.metricsAddr, "metrics-addr", cfg.metricsAddr, "Serve Prometheus metrics on this address when set")
	root.Flags().BoolVar(&cfg.altScreen, "alt-screen", cfg.altScreen, "Use alternate screen buffer")

	root.AddCommand(
		newSyncCmd(&cfg),
		newForgeCmd(&cfg),
		newInjectCmd(&cfg),
		newCategoriesCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "arsenal-tui %s\n", Version)
		},
	}
}

// bootstrap resolves configuration, logging and metrics for one command.
func bootstrap(ctx context.Context, cfg appConfig, interactive bool) (*app, func(), error) {
	logCfg := logging.Config{
		Format:    cfg.logFormat,
		Level:     cfg.logLevel,
		Component: "arsenal",
		FilePath:  cfg.logFile,
	}
	if interactive && strings.TrimSpace(logCfg.FilePath) == "" {
		logCfg.FilePath = logging.DefaultFilePath()
	}
	logger, closer, err := logging.Init(logCfg)
	if err != nil {
		return nil, nil, err
	}

	ep, err := config.Load(config.Options{
		FilePath: cfg.configPath,
		EnvFile:  cfg.envFile,
		URL:      cfg.url,
		APIKey:   cfg.apiKey,
	})
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	logger.Info().Str("url", ep.BaseURL).Str("policy", parsePolicy(cfg.policy).String()).Msg("endpoint resolved")

	a, err := newApp(cfg, ep, logger)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	if strings.TrimSpace(cfg.metricsAddr) != "" {
		startMetricsServer(ctx, cfg.metricsAddr, a.metrics.Handler(), logger)
	}
	cleanup := func() {
		cancel()
		closer.Close()
	}
	return a, cleanup, nil
}

func startMetricsServer(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Err(err).Msg("Failed to shut down metrics server cleanly")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("Metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Err(err).Msg("Metrics server stopped unexpectedly")
		}
	}()
}

func runTUI(ctx context.Context, cfg appConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, cleanup, err := bootstrap(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []tea.ProgramOption{tea.WithMouseCellMotion(), tea.WithContext(ctx)}
	if cfg.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	m := newModel(a)
	m.ctx = ctx
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("arsenal-tui fatal error: %w", err)
	}
	return nil
}

// printLog writes the diagnostic log the way the TUI monitor shows it.
func printLog(out io.Writer, buf *logbuf.Buffer) {
	for _, entry := range buf.Snapshot() {
		fmt.Fprintf(out, "[%02d] %s\n", entry.Sequence, entry.String())
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
