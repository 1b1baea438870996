package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/streamyardchat/config"
	"sjsage522/streamyardchat/internal/browser"
	"sjsage522/streamyardchat/internal/scraper"
	"sjsage522/streamyardchat/internal/session"
	"sjsage522/streamyardchat/logger"
	"sjsage522/streamyardchat/pkg/errors"
	"sjsage522/streamyardchat/services/exporter"
	"sjsage522/streamyardchat/services/publisher"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	cfg := config.LoadConfig()
	if err := newRootCommand(cfg).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCommand binds command-line flags over the environment configuration
func newRootCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streamyardchat",
		Short: "Collect StreamYard live chat messages into a spreadsheet",
		Long: `streamyardchat opens the StreamYard studio in a browser, waits for you to
log in, and records every new chat message until you press Ctrl+C. The
collected messages are then written to an Excel workbook (and optionally CSV).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.URL, "url", cfg.URL, "studio URL to open")
	flags.StringVar(&cfg.ContainerSelector, "container", cfg.ContainerSelector, "CSS selector of the chat container")
	flags.StringVar(&cfg.MessageSelector, "each", cfg.MessageSelector, "CSS selector of a single chat message")
	flags.StringVar(&cfg.NicknameSelector, "nickname", cfg.NicknameSelector, "CSS selector of the author inside a message")
	flags.StringVar(&cfg.TextSelector, "text", cfg.TextSelector, "CSS selector of the text inside a message")
	flags.BoolVar(&cfg.IncludeMessageTime, "message-time", cfg.IncludeMessageTime, "add a Message Time column")
	flags.BoolVar(&cfg.WriteCSV, "csv", cfg.WriteCSV, "also write a CSV next to the workbook")
	flags.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "workbook path")
	flags.DurationVar(&cfg.PollInterval, "interval", cfg.PollInterval, "delay between chat polls")
	flags.DurationVar(&cfg.ReadyTimeout, "ready-timeout", cfg.ReadyTimeout, "wait per chat readiness selector")
	flags.StringVar(&cfg.ExtractMode, "extract-mode", cfg.ExtractMode, "extraction mode: script or document")
	flags.StringVar(&cfg.BrowserControlURL, "control-url", cfg.BrowserControlURL, "attach to a running browser (DevTools URL or port)")
	flags.StringVar(&cfg.BrowserBin, "browser-bin", cfg.BrowserBin, "browser executable to launch")
	flags.StringVar(&cfg.BrowserUserDataDir, "user-data-dir", cfg.BrowserUserDataDir, "browser profile directory, keeps the login between runs")
	flags.BoolVar(&cfg.BrowserHeadless, "headless", cfg.BrowserHeadless, "run the browser without a window")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "publish accepted messages to this Redis")

	return cmd
}

// run validates cfg and executes one session until interrupted
func run(parent context.Context, cfg *config.Config) error {
	if logger.Default == nil {
		logger.Init()
	}
	log := logger.Default

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	extractor, err := scraper.NewExtractor(cfg.ExtractMode)
	if err != nil {
		err = errors.NewConfiguration("select extractor", err)
		log.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go watchSignals(ctx, cancel, sigChan, log)

	services := initializeServices(parent, cfg)
	defer services.Cleanup()

	controller := session.NewController(
		session.Options{
			URL: cfg.URL,
			Selectors: scraper.Resolve(
				cfg.ContainerSelector,
				cfg.MessageSelector,
				cfg.NicknameSelector,
				cfg.TextSelector,
			),
			PollInterval:       cfg.PollInterval,
			ReadyTimeout:       cfg.ReadyTimeout,
			IncludeMessageTime: cfg.IncludeMessageTime,
			OutputPath:         cfg.OutputPath,
			WriteCSV:           cfg.WriteCSV,
		},
		session.Dependencies{
			Launch: func(ctx context.Context) (browser.Page, error) {
				return browser.Launch(ctx, browser.Options{
					ControlURL:  cfg.BrowserControlURL,
					Bin:         cfg.BrowserBin,
					UserDataDir: cfg.BrowserUserDataDir,
					Headless:    cfg.BrowserHeadless,
				})
			},
			Extractor:   extractor,
			Spreadsheet: exporter.NewXLSXExporter(),
			CSV:         exporter.NewCSVExporter(),
			Publisher:   services.Publisher,
		},
	)

	log.Info().
		Str("environment", cfg.Environment).
		Str("session_id", controller.ID()).
		Str("url", cfg.URL).
		Str("output", cfg.OutputPath).
		Msg("Starting chat session")

	result, err := controller.Run(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Int("collected", len(result.Records)).
			Msg("Chat session failed")
		return err
	}

	log.Info().
		Int("messages", len(result.Records)).
		Strs("files", result.Files).
		Msg("Chat session finished")
	return nil
}

// stopSignals unregisters a signal channel
var stopSignals = signal.Stop

// watchSignals cancels the run on the first signal and then unregisters
// sigChan, so a second interrupt terminates the process.
func watchSignals(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal, log *logger.Logger) {
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal, press Ctrl+C again to force quit")
		cancel()
		stopSignals(sigChan)
	case <-ctx.Done():
	}
}

// Services holds the optional services of a run
type Services struct {
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices connects the live publisher when Redis is configured.
// An unreachable Redis only disables publishing.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}
	if cfg.RedisAddr == "" {
		return services
	}

	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamMaxLength,
		cfg.RedisPublishTimeout,
	)
	if err := redisPublisher.Ping(); err != nil {
		logger.ForPublisher().Warn().
			Err(err).
			Str("addr", cfg.RedisAddr).
			Msg("Redis is unreachable, live publishing disabled")
		redisPublisher.Close()
		return services
	}
	services.Publisher = redisPublisher

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return services
}
