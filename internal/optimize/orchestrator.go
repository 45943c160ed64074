package optimize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"podopt/internal/auphonic"
	"podopt/internal/catalog"
	"podopt/internal/logging"
	"podopt/internal/notifications"
	"podopt/internal/services"
	"podopt/internal/storage"
)

// ErrOptimizationInFlight rejects a trigger while a production is running.
var ErrOptimizationInFlight = errors.New("optimization already in flight")

const cleanupTimeout = 30 * time.Second

// RemoteClient is the Auphonic surface the orchestrator sequences.
type RemoteClient interface {
	CreateJob(ctx context.Context, title, artist, callbackURL string) (string, error)
	UploadSource(ctx context.Context, jobID string, r io.Reader, filename string) error
	Configure(ctx context.Context, jobID string, settings auphonic.Settings) error
	Start(ctx context.Context, jobID string) error
	DeleteJob(ctx context.Context, jobID string) error
}

// EpisodeStore is the persistence the orchestrator needs.
type EpisodeStore interface {
	GetEpisode(ctx context.Context, id int64) (*catalog.Episode, error)
	MarkStarted(ctx context.Context, id int64, auphonicID string) error
}

// Orchestrator submits an episode to Auphonic: create, upload, configure,
// start. Only a successful start touches the episode record.
type Orchestrator struct {
	client      RemoteClient
	store       EpisodeStore
	disks       storage.Disks
	notifier    notifications.Service
	callbackURL string
	logger      *slog.Logger
}

// NewOrchestrator wires an orchestrator. callbackURL is the webhook URL
// Auphonic posts completion to.
func NewOrchestrator(client RemoteClient, store EpisodeStore, disks storage.Disks, notifier notifications.Service, callbackURL string, logger *slog.Logger) *Orchestrator {
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &Orchestrator{
		client:      client,
		store:       store,
		disks:       disks,
		notifier:    notifier,
		callbackURL: callbackURL,
		logger:      logging.NewComponentLogger(logger, "optimizer"),
	}
}

// CheckSubmittable rejects episodes whose production is still running.
func CheckSubmittable(episode *catalog.Episode) error {
	if episode == nil {
		return services.Wrap(services.ErrNotFound, "optimizer", "submit", "episode not found", nil)
	}
	if episode.AuphonicStatus.InFlight() {
		return fmt.Errorf("episode %d (production %s): %w", episode.ID, episode.AuphonicID, ErrOptimizationInFlight)
	}
	return nil
}

// Run performs the full submission. Any failing step aborts the sequence
// and is returned unchanged; a production created before the failure is
// deleted best-effort.
func (o *Orchestrator) Run(ctx context.Context, episode *catalog.Episode, settings auphonic.Settings) error {
	if episode == nil {
		return services.Wrap(services.ErrNotFound, "optimizer", "run", "episode not found", nil)
	}
	ctx = services.WithEpisodeID(ctx, episode.ID)
	logger := logging.WithContext(ctx, o.logger)

	if err := settings.Validate(); err != nil {
		logger.Error("optimization settings rejected", logging.Error(err))
		return err
	}

	disk := o.disks.For(episode.PrivateShow)
	source, err := disk.Open(episode.AudioFile)
	if err != nil {
		logger.Error("source audio unavailable", logging.String("disk", disk.Name()), logging.String("audio_file", episode.AudioFile), logging.Error(err))
		return err
	}
	defer source.Close()

	jobID, err := o.client.CreateJob(ctx, episode.Title, episode.PodcastTitle, o.callbackURL)
	if err != nil {
		logger.Error("create production failed", logging.Error(err))
		return err
	}
	ctx = services.WithProductionID(ctx, jobID)
	logger = logging.WithContext(ctx, o.logger)
	logger.Info("production created")

	if err := o.client.UploadSource(ctx, jobID, source, path.Base(episode.AudioFile)); err != nil {
		logger.Error("upload failed", logging.Error(err))
		o.discard(ctx, logger, jobID)
		return err
	}
	if err := o.client.Configure(ctx, jobID, settings); err != nil {
		logger.Error("configure failed", logging.Error(err))
		o.discard(ctx, logger, jobID)
		return err
	}
	if err := o.client.Start(ctx, jobID); err != nil {
		logger.Error("start failed", logging.Error(err))
		o.discard(ctx, logger, jobID)
		return err
	}

	if err := o.store.MarkStarted(ctx, episode.ID, jobID); err != nil {
		logger.Error("persist started status failed", logging.Error(err))
		o.discard(ctx, logger, jobID)
		return err
	}

	started := *episode
	started.AuphonicID = jobID
	started.AuphonicStatus = catalog.StatusStarted
	if err := o.notifier.NotifyStatusChanged(ctx, notifications.StatusEvent(&started)); err != nil {
		logging.WarnWithContext(logger, "status notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "subscribers miss the started event"),
		)
	}
	logger.Info("optimization started",
		logging.String("output_format", settings.OutputFormat()),
		logging.Int("bitrate", settings.Bitrate()),
	)
	return nil
}

func (o *Orchestrator) discard(ctx context.Context, logger *slog.Logger, jobID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := o.client.DeleteJob(cleanupCtx, jobID); err != nil {
		logging.WarnWithContext(logger, "orphaned production not deleted", "production_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "an unused production remains in the Auphonic account"),
			logging.String(logging.FieldErrorHint, "delete it from the Auphonic dashboard"),
		)
	}
}
