package webhook

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"podopt/internal/auphonic"
	"podopt/internal/catalog"
	"podopt/internal/logging"
	"podopt/internal/notifications"
	"podopt/internal/services"
	"podopt/internal/storage"
)

// Callback is the payload Auphonic posts when a production finishes.
type Callback struct {
	UUID         string
	Status       int
	StatusString string
}

// Failed reports whether the callback describes a failed production.
func (c Callback) Failed() bool {
	return strings.EqualFold(strings.TrimSpace(c.StatusString), "error") || c.Status == auphonic.ProductionStatusError
}

// RemoteClient is the Auphonic surface needed to collect a finished production.
type RemoteClient interface {
	GetProduction(ctx context.Context, jobID string) (*auphonic.Production, error)
	Download(ctx context.Context, url string) (io.ReadCloser, error)
	DeleteJob(ctx context.Context, jobID string) error
}

// EpisodeStore resolves and updates the episode a production belongs to.
type EpisodeStore interface {
	FindByAuphonicID(ctx context.Context, auphonicID string) (*catalog.Episode, error)
	UpdateStatus(ctx context.Context, id int64, status catalog.Status) error
	CompleteOptimization(ctx context.Context, id int64, audioFile string) error
}

// QuotaTrigger schedules an asynchronous credit check.
type QuotaTrigger interface {
	Trigger()
}

// Handler applies completion callbacks to the catalog.
type Handler struct {
	client   RemoteClient
	store    EpisodeStore
	disks    storage.Disks
	notifier notifications.Service
	quota    QuotaTrigger
	logger   *slog.Logger
}

// NewHandler wires a webhook handler. quota may be nil.
func NewHandler(client RemoteClient, store EpisodeStore, disks storage.Disks, notifier notifications.Service, quota QuotaTrigger, logger *slog.Logger) *Handler {
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &Handler{
		client:   client,
		store:    store,
		disks:    disks,
		notifier: notifier,
		quota:    quota,
		logger:   logging.NewComponentLogger(logger, "webhook"),
	}
}

// Handle resolves the episode for cb.UUID and applies the outcome. Callbacks
// for an episode that is no longer STARTED are ignored and return nil. A failed
// production marks the episode FAILED and returns
// *auphonic.RemoteOptimizationFailedError. A successful one replaces the
// episode's audio with the optimized result and marks it COMPLETED. Remote
// job deletion after success is fire-and-forget: its failure is logged and
// never returned.
func (h *Handler) Handle(ctx context.Context, cb Callback) error {
	ctx = services.WithProductionID(ctx, cb.UUID)
	logger := logging.WithContext(ctx, h.logger)

	episode, err := h.store.FindByAuphonicID(ctx, cb.UUID)
	if err != nil {
		logger.Error("episode lookup failed", logging.Error(err))
		return err
	}
	if episode == nil {
		logging.WarnWithContext(logger, "callback for unknown production", "webhook_unknown_production",
			logging.Int("status", cb.Status),
			logging.String("status_string", cb.StatusString),
			logging.String(logging.FieldImpact, "callback ignored"),
			logging.String(logging.FieldErrorHint, "the episode may have been re-optimized or removed"),
		)
		return &auphonic.MediaItemNotFoundError{JobID: cb.UUID}
	}
	ctx = services.WithEpisodeID(ctx, episode.ID)
	logger = logging.WithContext(ctx, h.logger)

	if episode.AuphonicStatus != catalog.StatusStarted {
		logging.WarnWithContext(logger, "callback for settled production ignored", "webhook_duplicate_callback",
			logging.String("episode_status", episode.AuphonicStatus.String()),
			logging.Int("status", cb.Status),
			logging.String("status_string", cb.StatusString),
			logging.String(logging.FieldImpact, "episode left unchanged"),
		)
		return nil
	}

	if cb.Failed() {
		return h.fail(ctx, logger, episode, cb)
	}
	return h.complete(ctx, logger, episode)
}

func (h *Handler) fail(ctx context.Context, logger *slog.Logger, episode *catalog.Episode, cb Callback) error {
	if err := h.store.UpdateStatus(ctx, episode.ID, catalog.StatusFailed); err != nil {
		logger.Error("persist failed status failed", logging.Error(err))
		return err
	}
	episode.AuphonicStatus = catalog.StatusFailed
	h.notify(ctx, logger, episode)
	logging.ErrorWithContext(logger, "Auphonic reported a failed production", "optimization_remote_failed",
		logging.Int("status", cb.Status),
		logging.String("status_string", cb.StatusString),
		logging.String(logging.FieldErrorHint, "inspect the production in the Auphonic dashboard"),
	)
	return &auphonic.RemoteOptimizationFailedError{JobID: cb.UUID}
}

func (h *Handler) complete(ctx context.Context, logger *slog.Logger, episode *catalog.Episode) error {
	jobID := episode.AuphonicID
	production, err := h.client.GetProduction(ctx, jobID)
	if err != nil {
		logger.Error("fetch production failed", logging.Error(err))
		return err
	}
	if len(production.OutputFiles) == 0 {
		err := services.Wrap(services.ErrExternalTool, "webhook", "collect result", "production has no output files", nil)
		logger.Error("production has no result", logging.Error(err))
		return err
	}
	output := production.OutputFiles[0]
	format := output.Format
	if format == "" {
		format = output.Ending
	}

	body, err := h.client.Download(ctx, output.DownloadURL)
	if err != nil {
		logger.Error("download result failed", logging.Error(err))
		return err
	}
	defer body.Close()

	disk := h.disks.For(episode.PrivateShow)
	source := episode.AudioFile
	target := storage.OptimizedPath(source, format)
	written, err := disk.Put(target, body)
	if err != nil {
		logger.Error("store result failed", logging.String("target", target), logging.Error(err))
		return err
	}

	if err := h.store.CompleteOptimization(ctx, episode.ID, target); err != nil {
		logger.Error("persist completed status failed", logging.Error(err))
		return err
	}
	episode.AudioFile = target
	episode.AuphonicStatus = catalog.StatusCompleted

	if source != target {
		if err := disk.Delete(source); err != nil {
			logging.WarnWithContext(logger, "superseded audio not removed", "source_cleanup_failed",
				logging.String("audio_file", source),
				logging.Error(err),
				logging.String(logging.FieldImpact, "the original upload keeps using disk space"),
				logging.String(logging.FieldErrorHint, "remove the file manually"),
			)
		}
	}

	h.notify(ctx, logger, episode)
	logger.Info("optimization completed",
		logging.String("audio_file", target),
		logging.String("disk", disk.Name()),
		logging.Int64("bytes", written.Size),
		logging.String("sha256", written.SHA256),
	)

	h.discardRemote(ctx, logger, jobID)
	if h.quota != nil {
		h.quota.Trigger()
	}
	return nil
}

func (h *Handler) notify(ctx context.Context, logger *slog.Logger, episode *catalog.Episode) {
	if err := h.notifier.NotifyStatusChanged(ctx, notifications.StatusEvent(episode)); err != nil {
		logging.WarnWithContext(logger, "status notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "subscribers miss this status change"),
		)
	}
}

func (h *Handler) discardRemote(ctx context.Context, logger *slog.Logger, jobID string) {
	if err := h.client.DeleteJob(context.WithoutCancel(ctx), jobID); err != nil {
		logging.WarnWithContext(logger, "remote production not deleted", "production_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the finished production stays in the Auphonic account"),
			logging.String(logging.FieldErrorHint, "delete it from the Auphonic dashboard"),
		)
	}
}
