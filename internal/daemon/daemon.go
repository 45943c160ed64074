package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"podopt/internal/auphonic"
	"podopt/internal/catalog"
	"podopt/internal/config"
	"podopt/internal/httpapi"
	"podopt/internal/logging"
	"podopt/internal/notifications"
	"podopt/internal/optimize"
	"podopt/internal/storage"
	"podopt/internal/webhook"
)

// Daemon coordinates the API server, the optimization workers and the
// credit checker, and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *catalog.Store
	notifier   notifications.Service
	dispatcher *optimize.Dispatcher
	quota      *optimize.QuotaChecker
	server     *httpapi.Server

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex
	running   atomic.Bool
	cancel    context.CancelFunc
	quotaDone chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	Dispatcher   optimize.Stats
	DatabasePath string
	LockFilePath string
}

// New wires the daemon's services from configuration.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	client, err := auphonic.New(auphonic.Config{
		BaseURL: cfg.Auphonic.BaseURL,
		Token:   cfg.Auphonic.Token,
		Timeout: cfg.AuphonicTimeout(),
	})
	if err != nil {
		return nil, err
	}

	hub := notifications.NewHub()
	notifier := notifications.Fanout(hub, notifications.NewService(cfg))
	disks := storage.NewDisks(cfg)

	orchestrator := optimize.NewOrchestrator(client, store, disks, notifier, cfg.WebhookURL(), logger)
	dispatcher := optimize.NewDispatcher(orchestrator, store, notifier, logger, cfg.Optimization.Workers, cfg.Optimization.QueueSize)
	quota := optimize.NewQuotaChecker(client, cfg.Auphonic.LowCreditThreshold, cfg.QuotaCheckInterval(), logger)
	handler := webhook.NewHandler(client, store, disks, notifier, quota, logger)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Episodes:   store,
		Dispatcher: dispatcher,
		Webhook:    handler,
		Events:     hub,
		Quota:      quota,
		Settings:   func() (auphonic.Settings, error) { return optimize.DefaultSettings(cfg) },
	}, httpapi.Options{APIToken: cfg.Server.APIToken, Logger: logger})

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      store,
		notifier:   notifier,
		dispatcher: dispatcher,
		quota:      quota,
		server:     httpapi.NewServer(cfg.Server.Bind, router, logger),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches workers, the credit checker
// and the API server.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another podopt daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.dispatcher.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start dispatcher: %w", err)
	}
	if err := d.server.Start(runCtx); err != nil {
		d.dispatcher.Stop()
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	d.quotaDone = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		d.quota.Run(runCtx)
	}(d.quotaDone)
	d.quota.Trigger()

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("podopt daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.Addr()),
		logging.String("webhook_url", d.cfg.WebhookURL()),
	)
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	d.server.Stop()
	d.dispatcher.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.quotaDone != nil {
		<-d.quotaDone
		d.quotaDone = nil
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if the next start is refused"),
		)
	}
	d.running.Store(false)
	d.logger.Info("podopt daemon stopped")
}

// Close stops the daemon and releases the catalog.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the API listen address while running.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Address:      d.server.Addr(),
		Dispatcher:   d.dispatcher.Stats(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
}

// TestNotification sends a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
