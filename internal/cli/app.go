package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/allowlist"
	"github.com/brandon/mail-admin/internal/api"
	"github.com/brandon/mail-admin/internal/auth"
	"github.com/brandon/mail-admin/internal/cache"
	"github.com/brandon/mail-admin/internal/config"
	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/internal/notify"
)

// app holds the components a command works with
type app struct {
	config    *config.Config
	logger    *logrus.Logger
	cache     *cache.Cache
	store     *cache.Store
	tokens    *auth.StoreTokenSource
	http      *http.Client
	client    *api.Client
	validator *allowlist.Validator
	resolver  *media.Resolver
	manager   *email.Manager
	logFile   *os.File
}

// appOptions tune wiring per command
type appOptions struct {
	// logOutput receives logs; nil means stderr
	logOutput io.Writer
	// useLogFile sends logs to LOG_FILE when it is set
	useLogFile bool
	// notifier receives manager notifications in addition to the log
	notifier notify.Notifier
}

func newApp(opts appOptions) (*app, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{config: cfg}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)
	if opts.logOutput != nil {
		logger.SetOutput(opts.logOutput)
	}
	if opts.useLogFile && cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		logger.SetOutput(f)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	a.logger = logger

	a.cache, err = cache.NewCache(cfg.CachePath, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	a.store = cache.NewStore(a.cache, logger)

	// An AUTH_TOKEN setting wins over the token saved by login
	a.tokens = auth.NewStoreTokenSource(a.store, logger)
	tokens := auth.Chain{auth.StaticToken(cfg.AuthToken), a.tokens}

	a.http = api.NewHTTPClient(api.DefaultClientConfig(cfg.RequestTimeout))
	a.client = api.NewClient(cfg.APIBaseURL, tokens, a.http, logger)
	a.validator = allowlist.NewValidator(a.client, cfg.AllowedDomainType, cfg.DomainCacheTTL, logger)
	a.resolver = media.NewResolver(cfg.ResolvedMediaBaseURL())

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if opts.notifier != nil {
		notifier = notify.Multi{opts.notifier, notifier}
	}
	a.manager = email.NewManager(cfg, a.client, a.validator, a.store, notifier, logger)

	logger.WithFields(logrus.Fields{
		"api":         cfg.APIBaseURL,
		"media":       a.resolver.BaseURL(),
		"environment": cfg.Environment,
		"cache":       cfg.CachePath,
	}).Debug("Initialized application")

	return a, nil
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil && a.logger != nil {
			a.logger.WithError(err).Warn("Failed to close cache")
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}
