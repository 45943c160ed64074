package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"podopt/internal/auphonic"
	"podopt/internal/catalog"
	"podopt/internal/logging"
	"podopt/internal/notifications"
	"podopt/internal/optimize"
	"podopt/internal/webhook"
)

// EpisodeReader loads episodes for the trigger and read routes.
type EpisodeReader interface {
	GetEpisode(ctx context.Context, id int64) (*catalog.Episode, error)
	StatusCounts(ctx context.Context) (map[catalog.Status]int, error)
}

// Submitter queues optimizations.
type Submitter interface {
	Submit(ctx context.Context, episodeID int64, settings auphonic.Settings) error
	Stats() optimize.Stats
}

// CallbackHandler applies Auphonic completion callbacks.
type CallbackHandler interface {
	Handle(ctx context.Context, cb webhook.Callback) error
}

// EventSource feeds the per-episode event stream.
type EventSource interface {
	Subscribe(episodeID int64) (<-chan notifications.Event, func())
}

// QuotaReporter exposes the most recent credit check.
type QuotaReporter interface {
	Last() (optimize.Quota, bool)
}

// Dependencies are the collaborators behind the routes. Quota may be nil.
type Dependencies struct {
	Episodes   EpisodeReader
	Dispatcher Submitter
	Webhook    CallbackHandler
	Events     EventSource
	Quota      QuotaReporter
	// Settings builds the bundle used by the optimize trigger.
	Settings func() (auphonic.Settings, error)
}

// Options tune the router.
type Options struct {
	// APIToken protects the episode routes. Empty disables authentication.
	APIToken string
	// Heartbeat is the interval between keep-alive events on SSE streams.
	Heartbeat time.Duration
	Logger    *slog.Logger
}

const defaultHeartbeat = 25 * time.Second

type handlers struct {
	deps      Dependencies
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewRouter builds the gin engine serving the webhook, trigger, episode,
// event stream and status routes.
func NewRouter(deps Dependencies, opts Options) *gin.Engine {
	logger := logging.NewComponentLogger(opts.Logger, "httpapi")
	heartbeat := opts.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	h := &handlers{deps: deps, heartbeat: heartbeat, logger: logger}

	r := gin.New()
	r.Use(requestID(), recovery(logger), requestLogger(logger))

	api := r.Group("/api")
	api.GET("/status", h.status)
	api.POST("/auphonic", h.auphonicCallback)

	episodes := api.Group("/episodes", bearerAuth(opts.APIToken))
	{
		episodes.GET("/:id", h.getEpisode)
		episodes.POST("/:id/optimize-audio", h.optimizeAudio)
		episodes.GET("/:id/events", h.streamEvents)
	}

	r.NoRoute(func(c *gin.Context) {
		writeError(c, 404, "route not found", "not_found")
	})
	return r
}
