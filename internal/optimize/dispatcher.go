package optimize

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"podopt/internal/auphonic"
	"podopt/internal/catalog"
	"podopt/internal/logging"
	"podopt/internal/notifications"
	"podopt/internal/services"
)

var (
	// ErrQueueFull is returned when the dispatcher backlog is at capacity.
	ErrQueueFull = errors.New("optimization queue is full")
	// ErrDispatcherStopped is returned after Stop or before Start.
	ErrDispatcherStopped = errors.New("optimization dispatcher is not running")
)

// Runner executes one optimization.
type Runner interface {
	Run(ctx context.Context, episode *catalog.Episode, settings auphonic.Settings) error
}

// EpisodeLoader reloads episodes when a queued task is picked up.
type EpisodeLoader interface {
	GetEpisode(ctx context.Context, id int64) (*catalog.Episode, error)
}

// Stats is a point-in-time view of the dispatcher.
type Stats struct {
	Depth    int  `json:"depth"`
	Active   int  `json:"active"`
	Capacity int  `json:"capacity"`
	Workers  int  `json:"workers"`
	Running  bool `json:"running"`
}

type task struct {
	episodeID int64
	settings  auphonic.Settings
	requestID string
}

// Dispatcher runs optimizations on a fixed pool of workers fed by a bounded
// queue. Submit never waits for the remote sequence.
type Dispatcher struct {
	runner   Runner
	store    EpisodeLoader
	notifier notifications.Service
	logger   *slog.Logger
	workers  int

	mu      sync.Mutex
	tasks   chan task
	pending map[int64]struct{}
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	active  atomic.Int32
}

// NewDispatcher builds a stopped dispatcher; call Start to launch workers.
func NewDispatcher(runner Runner, store EpisodeLoader, notifier notifications.Service, logger *slog.Logger, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &Dispatcher{
		runner:   runner,
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "dispatcher"),
		workers:  workers,
		tasks:    make(chan task, queueSize),
		pending:  make(map[int64]struct{}),
	}
}

// Start launches the worker pool. Workers stop when ctx is cancelled or
// Stop is called.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return errors.New("dispatcher already running")
	}
	workerCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(workerCtx)
	}
	d.logger.Info("dispatcher started", logging.Int("workers", d.workers), logging.Int("queue_size", cap(d.tasks)))
	return nil
}

// Stop cancels in-flight work and waits for workers to exit. Queued tasks
// that were not picked up are dropped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	cancel()
	d.wg.Wait()

	d.mu.Lock()
	dropped := 0
	for {
		select {
		case t := <-d.tasks:
			delete(d.pending, t.episodeID)
			dropped++
			continue
		default:
		}
		break
	}
	d.mu.Unlock()
	d.logger.Info("dispatcher stopped", logging.Int("dropped", dropped))
}

// Submit enqueues an optimization and returns immediately. An episode that
// is already queued is rejected with ErrOptimizationInFlight.
func (d *Dispatcher) Submit(ctx context.Context, episodeID int64, settings auphonic.Settings) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return ErrDispatcherStopped
	}
	if _, queued := d.pending[episodeID]; queued {
		return ErrOptimizationInFlight
	}
	requestID, _ := services.RequestIDFromContext(ctx)
	select {
	case d.tasks <- task{episodeID: episodeID, settings: settings, requestID: requestID}:
		d.pending[episodeID] = struct{}{}
	default:
		return ErrQueueFull
	}
	logging.WithContext(services.WithEpisodeID(ctx, episodeID), d.logger).Info("optimization queued",
		logging.Int("depth", len(d.tasks)),
	)
	return nil
}

// Stats reports queue depth and worker activity.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		Depth:    len(d.tasks),
		Active:   int(d.active.Load()),
		Capacity: cap(d.tasks),
		Workers:  d.workers,
		Running:  d.running,
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-d.tasks:
			d.mu.Lock()
			delete(d.pending, t.episodeID)
			d.mu.Unlock()
			d.active.Add(1)
			d.execute(ctx, t)
			d.active.Add(-1)
		}
	}
}

func (d *Dispatcher) execute(ctx context.Context, t task) {
	ctx = services.WithEpisodeID(ctx, t.episodeID)
	ctx = services.WithRequestID(ctx, t.requestID)
	logger := logging.WithContext(ctx, d.logger)

	episode, err := d.store.GetEpisode(ctx, t.episodeID)
	if err == nil && episode == nil {
		err = services.Wrap(services.ErrNotFound, "dispatcher", "load episode", "episode no longer exists", nil)
	}
	if err == nil {
		err = d.runner.Run(ctx, episode, t.settings)
	}
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		logging.WarnWithContext(logger, "optimization interrupted by shutdown", "optimization_interrupted",
			logging.Error(err),
			logging.String(logging.FieldImpact, "episode keeps its previous status"),
			logging.String(logging.FieldErrorHint, "trigger the optimization again after restart"),
		)
		return
	}
	logging.ErrorWithContext(logger, "optimization failed", "optimization_failed",
		logging.Error(err),
		logging.String("error_kind", services.Kind(err)),
	)
	if notifyErr := d.notifier.NotifyError(context.WithoutCancel(ctx), err, "audio optimization"); notifyErr != nil {
		logging.WarnWithContext(logger, "error notification failed", "notification_failed", logging.Error(notifyErr))
	}
}
