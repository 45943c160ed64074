package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"podopt/internal/catalog"
	"podopt/internal/config"
)

const userAgent = "podopt/0.1.0"

// EventStatusUpdated names the episode status broadcast.
const EventStatusUpdated = "auphonic.status.updated"

// Event describes one episode status transition.
type Event struct {
	Name         string         `json:"event"`
	EpisodeID    int64          `json:"episode_id"`
	EpisodeTitle string         `json:"episode_title"`
	PodcastTitle string         `json:"podcast_title"`
	Status       catalog.Status `json:"-"`
	StatusLabel  string         `json:"status"`
	AuphonicID   string         `json:"auphonic_id,omitempty"`
	AudioFile    string         `json:"audio_file"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// StatusEvent snapshots an episode after a status change.
func StatusEvent(episode *catalog.Episode) Event {
	return Event{
		Name:         EventStatusUpdated,
		EpisodeID:    episode.ID,
		EpisodeTitle: episode.Title,
		PodcastTitle: episode.PodcastTitle,
		Status:       episode.AuphonicStatus,
		StatusLabel:  episode.AuphonicStatus.String(),
		AuphonicID:   episode.AuphonicID,
		AudioFile:    episode.AudioFile,
		OccurredAt:   time.Now().UTC(),
	}
}

// Service is the notification surface used by the optimization workflow.
type Service interface {
	NotifyStatusChanged(ctx context.Context, event Event) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Noop returns a Service that discards everything.
func Noop() Service { return noopService{} }

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

var titleCaser = cases.Title(language.English)

// StatusTitle renders a status for people, e.g. "Completed".
func StatusTitle(status catalog.Status) string {
	return titleCaser.String(status.String())
}

func (n *ntfyService) NotifyStatusChanged(ctx context.Context, event Event) error {
	label := StatusTitle(event.Status)
	message := fmt.Sprintf("%s: %s", event.PodcastTitle, event.EpisodeTitle)
	if event.Status == catalog.StatusCompleted && event.AudioFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, event.AudioFile)
	}
	data := payload{
		title:   "podopt - Optimization " + label,
		message: message,
		tags:    []string{"podopt", "auphonic", event.Status.String()},
	}
	if event.Status == catalog.StatusFailed {
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "podopt - Error",
		message:  builder.String(),
		tags:     []string{"podopt", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "podopt - Test",
		message:  "Notification system test",
		tags:     []string{"podopt", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Fanout delivers to every service and joins their errors.
func Fanout(targets ...Service) Service {
	filtered := make(fanout, 0, len(targets))
	for _, target := range targets {
		if target != nil {
			filtered = append(filtered, target)
		}
	}
	return filtered
}

type fanout []Service

func (f fanout) NotifyStatusChanged(ctx context.Context, event Event) error {
	var errs []error
	for _, target := range f {
		errs = append(errs, target.NotifyStatusChanged(ctx, event))
	}
	return errors.Join(errs...)
}

func (f fanout) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var errs []error
	for _, target := range f {
		errs = append(errs, target.NotifyError(ctx, err, contextLabel))
	}
	return errors.Join(errs...)
}

func (f fanout) TestNotification(ctx context.Context) error {
	var errs []error
	for _, target := range f {
		errs = append(errs, target.TestNotification(ctx))
	}
	return errors.Join(errs...)
}

type noopService struct{}

func (noopService) NotifyStatusChanged(context.Context, Event) error   { return nil }
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
