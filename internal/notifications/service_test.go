package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"podopt/internal/catalog"
	"podopt/internal/config"
	"podopt/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyStatusChanged(context.Background(), notifications.Event{EpisodeID: 1}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "completed",
			send: func(s notifications.Service) error {
				return s.NotifyStatusChanged(context.Background(), notifications.Event{
					EpisodeID: 7, EpisodeTitle: "Pilot", PodcastTitle: "Night Shift",
					Status: catalog.StatusCompleted, AudioFile: "2024/pilot-optimized.mp3",
				})
			},
			expectTitle:   "podopt - Optimization Completed",
			expectMessage: "Night Shift: Pilot\nFile: 2024/pilot-optimized.mp3",
			expectTags:    "podopt,auphonic,completed",
		},
		{
			name: "failed",
			send: func(s notifications.Service) error {
				return s.NotifyStatusChanged(context.Background(), notifications.Event{
					EpisodeID: 7, EpisodeTitle: "Pilot", PodcastTitle: "Night Shift", Status: catalog.StatusFailed,
				})
			},
			expectTitle:    "podopt - Optimization Failed",
			expectMessage:  "Night Shift: Pilot",
			expectTags:     "podopt,auphonic,failed",
			expectPriority: "high",
		},
		{
			name: "error",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), errors.New("upload rejected"), "episode 7")
			},
			expectTitle:    "podopt - Error",
			expectMessage:  "Error with episode 7: upload rejected",
			expectTags:     "podopt,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, _ := io.ReadAll(r.Body)
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			if err := tc.send(notifications.NewService(&cfg)); err != nil {
				t.Fatalf("send returned error: %v", err)
			}
			if captured.title != tc.expectTitle {
				t.Fatalf("title = %q, want %q", captured.title, tc.expectTitle)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("body = %q, want %q", captured.body, tc.expectMessage)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("tags = %q, want %q", captured.tags, tc.expectTags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("priority = %q, want %q", captured.priority, tc.expectPriority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic closed", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	err := notifications.NewService(&cfg).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

type failing struct{ notifications.Service }

func (failing) NotifyStatusChanged(context.Context, notifications.Event) error {
	return errors.New("offline")
}

func TestFanoutDeliversToAllTargets(t *testing.T) {
	hub := notifications.NewHub()
	events, cancel := hub.Subscribe(3)
	defer cancel()

	svc := notifications.Fanout(failing{notifications.Noop()}, hub, nil)
	err := svc.NotifyStatusChanged(context.Background(), notifications.Event{EpisodeID: 3, Status: catalog.StatusStarted})
	if err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("expected joined error, got %v", err)
	}
	select {
	case ev := <-events:
		if ev.Status != catalog.StatusStarted {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected hub to receive the event despite the other target failing")
	}
}

func TestHubRoutesByEpisodeAndUnsubscribes(t *testing.T) {
	hub := notifications.NewHub()
	first, cancelFirst := hub.Subscribe(1)
	other, cancelOther := hub.Subscribe(2)
	defer cancelOther()

	_ = hub.NotifyStatusChanged(context.Background(), notifications.Event{EpisodeID: 1, Status: catalog.StatusCompleted})

	select {
	case ev := <-first:
		if ev.EpisodeID != 1 {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected event for episode 1")
	}
	select {
	case ev := <-other:
		t.Fatalf("episode 2 subscriber received %+v", ev)
	default:
	}

	cancelFirst()
	cancelFirst()
	if n := hub.Subscribers(1); n != 0 {
		t.Fatalf("expected no subscribers after cancel, got %d", n)
	}
	if _, ok := <-first; ok {
		t.Fatal("expected channel closed after cancel")
	}
}

func TestStatusEventSnapshotsEpisode(t *testing.T) {
	ev := notifications.StatusEvent(&catalog.Episode{
		ID: 9, Title: "Ep", PodcastTitle: "Show", AuphonicID: "abc",
		AuphonicStatus: catalog.StatusStarted, AudioFile: "a.wav",
	})
	if ev.Name != notifications.EventStatusUpdated || ev.StatusLabel != "started" || ev.AuphonicID != "abc" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if notifications.StatusTitle(catalog.StatusCompleted) != "Completed" {
		t.Fatalf("unexpected title %q", notifications.StatusTitle(catalog.StatusCompleted))
	}
}
