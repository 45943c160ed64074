package httpapi_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"podopt/internal/catalog"
	"podopt/internal/notifications"
	"podopt/internal/testsupport"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// readEvent collects lines until the blank line terminating one SSE event.
func readEvent(t *testing.T, reader *bufio.Reader) string {
	t.Helper()
	type result struct {
		event string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		var b strings.Builder
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				done <- result{b.String(), err}
				return
			}
			if strings.TrimSpace(line) == "" {
				if b.Len() > 0 {
					done <- result{b.String(), nil}
					return
				}
				continue
			}
			b.WriteString(line)
		}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("read event: %v (partial %q)", r.err, r.event)
		}
		return r.event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestEventStreamSendsSnapshotThenUpdates(t *testing.T) {
	env := newAPIEnv(t, nil)
	episode := testsupport.SeedEpisode(t, env.cfg, env.store, testsupport.EpisodeSeed{Title: "Pilot"})

	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/episodes/"+itoa(episode.ID)+"/events", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	authed(req)
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("stream request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	snapshot := readEvent(t, reader)
	if !strings.Contains(snapshot, notifications.EventStatusUpdated) || !strings.Contains(snapshot, `"status":"unset"`) {
		t.Fatalf("unexpected snapshot %q", snapshot)
	}

	completed := *episode
	completed.AuphonicStatus = catalog.StatusCompleted
	completed.AudioFile = "dir/show-optimized.mp3"
	if err := env.hub.NotifyStatusChanged(context.Background(), notifications.StatusEvent(&completed)); err != nil {
		t.Fatalf("NotifyStatusChanged: %v", err)
	}

	update := readEvent(t, reader)
	if !strings.Contains(update, `"status":"completed"`) || !strings.Contains(update, "show-optimized.mp3") {
		t.Fatalf("unexpected update %q", update)
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for env.hub.Subscribers(episode.ID) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected subscription released after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEventStreamRequiresAuthAndKnownEpisode(t *testing.T) {
	env := newAPIEnv(t, nil)
	episode := testsupport.SeedEpisode(t, env.cfg, env.store, testsupport.EpisodeSeed{})

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/episodes/"+itoa(episode.ID)+"/events", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/episodes/999/events", nil)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
