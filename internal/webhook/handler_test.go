package webhook_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"podopt/internal/auphonic"
	"podopt/internal/catalog"
	"podopt/internal/config"
	"podopt/internal/logging"
	"podopt/internal/services"
	"podopt/internal/storage"
	"podopt/internal/testsupport"
	"podopt/internal/webhook"
)

type countingTrigger struct{ n atomic.Int32 }

func (c *countingTrigger) Trigger() { c.n.Add(1) }

type webhookEnv struct {
	cfg      *config.Config
	store    *catalog.Store
	fake     *testsupport.FakeAuphonic
	notifier *testsupport.RecordingNotifier
	quota    *countingTrigger
	handler  *webhook.Handler
}

func newWebhookEnv(t *testing.T) *webhookEnv {
	t.Helper()
	fake := testsupport.NewFakeAuphonic(t)
	cfg := testsupport.NewConfig(t, testsupport.WithAuphonicBaseURL(fake.URL()))
	store := testsupport.MustOpenStore(t, cfg)
	client, err := auphonic.New(auphonic.Config{BaseURL: fake.URL(), Token: fake.Token, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("auphonic.New: %v", err)
	}
	notifier := &testsupport.RecordingNotifier{}
	quota := &countingTrigger{}
	handler := webhook.NewHandler(client, store, storage.NewDisks(cfg), notifier, quota, logging.NewNop())
	return &webhookEnv{cfg: cfg, store: store, fake: fake, notifier: notifier, quota: quota, handler: handler}
}

func (env *webhookEnv) startedEpisode(t *testing.T, seed testsupport.EpisodeSeed) *catalog.Episode {
	t.Helper()
	episode := testsupport.SeedEpisode(t, env.cfg, env.store, seed)
	if err := env.store.MarkStarted(context.Background(), episode.ID, env.fake.ProductionID); err != nil {
		t.Fatalf("MarkStarted: %v", err)
	}
	return testsupport.MustGetEpisode(t, env.store, episode.ID)
}

func TestCallbackFailed(t *testing.T) {
	cases := []struct {
		cb   webhook.Callback
		want bool
	}{
		{webhook.Callback{Status: 3, StatusString: "Done"}, false},
		{webhook.Callback{Status: 3, StatusString: "Error"}, true},
		{webhook.Callback{Status: 3, StatusString: " error "}, true},
		{webhook.Callback{Status: 2, StatusString: ""}, true},
		{webhook.Callback{Status: 9, StatusString: "Incomplete"}, false},
	}
	for _, tc := range cases {
		if got := tc.cb.Failed(); got != tc.want {
			t.Fatalf("%+v: Failed() = %v, want %v", tc.cb, got, tc.want)
		}
	}
}

func TestHandleErrorStatusMarksFailed(t *testing.T) {
	env := newWebhookEnv(t)
	episode := env.startedEpisode(t, testsupport.EpisodeSeed{})

	err := env.handler.Handle(context.Background(), webhook.Callback{UUID: "prod-123", Status: 2, StatusString: "Error"})

	var remoteErr *auphonic.RemoteOptimizationFailedError
	if !errors.As(err, &remoteErr) || remoteErr.JobID != "prod-123" {
		t.Fatalf("expected RemoteOptimizationFailedError, got %v", err)
	}
	stored := testsupport.MustGetEpisode(t, env.store, episode.ID)
	if stored.AuphonicStatus != catalog.StatusFailed || stored.AudioFile != "dir/show.wav" {
		t.Fatalf("unexpected episode after failure %+v", stored)
	}
	if events := env.notifier.Events(); len(events) != 1 || events[0].Status != catalog.StatusFailed {
		t.Fatalf("expected one FAILED notification, got %+v", events)
	}
	if n := len(env.fake.Requests()); n != 0 {
		t.Fatalf("expected no remote calls on the error branch, got %v", env.fake.Sequence())
	}
	if env.quota.n.Load() != 0 {
		t.Fatal("expected no quota check on failure")
	}
}

func TestHandleSuccessStoresOptimizedAudio(t *testing.T) {
	for _, private := range []bool{false, true} {
		name := "public"
		if private {
			name = "private"
		}
		t.Run(name, func(t *testing.T) {
			env := newWebhookEnv(t)
			episode := env.startedEpisode(t, testsupport.EpisodeSeed{PrivateShow: private})

			if err := env.handler.Handle(context.Background(), webhook.Callback{UUID: "prod-123", Status: 3, StatusString: "Done"}); err != nil {
				t.Fatalf("Handle: %v", err)
			}

			stored := testsupport.MustGetEpisode(t, env.store, episode.ID)
			if stored.AudioFile != "dir/show-optimized.mp3" || stored.AuphonicStatus != catalog.StatusCompleted {
				t.Fatalf("unexpected episode %+v", stored)
			}

			root := env.cfg.Paths.PublicDir
			if private {
				root = env.cfg.Paths.PrivateDir
			}
			content, err := os.ReadFile(filepath.Join(root, "dir", "show-optimized.mp3"))
			if err != nil {
				t.Fatalf("read optimized file: %v", err)
			}
			if string(content) != env.fake.OutputBody {
				t.Fatalf("unexpected optimized content %q", content)
			}
			if _, err := os.Stat(filepath.Join(root, "dir", "show.wav")); !errors.Is(err, os.ErrNotExist) {
				t.Fatalf("expected original removed, stat err %v", err)
			}

			if events := env.notifier.Events(); len(events) != 1 || events[0].Status != catalog.StatusCompleted {
				t.Fatalf("expected one COMPLETED notification, got %+v", events)
			}
			if env.fake.Calls(http.MethodDelete, "/production/prod-123.json") != 1 {
				t.Fatal("expected remote production deletion")
			}
			if env.quota.n.Load() != 1 {
				t.Fatal("expected quota check to be scheduled")
			}
		})
	}
}

func TestHandleSuccessIgnoresRemoteDeleteFailure(t *testing.T) {
	env := newWebhookEnv(t)
	episode := env.startedEpisode(t, testsupport.EpisodeSeed{})
	env.fake.Fail(http.MethodDelete, "/production/prod-123.json", http.StatusInternalServerError, "nope")

	if err := env.handler.Handle(context.Background(), webhook.Callback{UUID: "prod-123", Status: 3, StatusString: "Done"}); err != nil {
		t.Fatalf("expected success despite delete failure, got %v", err)
	}
	if env.fake.Calls(http.MethodDelete, "/production/prod-123.json") != 1 {
		t.Fatal("expected deletion to be attempted")
	}
	stored := testsupport.MustGetEpisode(t, env.store, episode.ID)
	if stored.AuphonicStatus != catalog.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", stored.AuphonicStatus)
	}
	if len(env.notifier.Events()) != 1 {
		t.Fatal("expected exactly one notification")
	}
}

func TestHandleIgnoresCallbacksAfterSettlement(t *testing.T) {
	cases := []struct {
		name  string
		first webhook.Callback
		want  catalog.Status
	}{
		{"completed", webhook.Callback{UUID: "prod-123", Status: 3, StatusString: "Done"}, catalog.StatusCompleted},
		{"failed", webhook.Callback{UUID: "prod-123", Status: 2, StatusString: "Error"}, catalog.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newWebhookEnv(t)
			episode := env.startedEpisode(t, testsupport.EpisodeSeed{})
			ctx := context.Background()
			_ = env.handler.Handle(ctx, tc.first)
			settled := testsupport.MustGetEpisode(t, env.store, episode.ID)
			requests := len(env.fake.Requests())

			for _, repeat := range []webhook.Callback{
				{UUID: "prod-123", Status: 2, StatusString: "Error"},
				{UUID: "prod-123", Status: 3, StatusString: "Done"},
			} {
				if err := env.handler.Handle(ctx, repeat); err != nil {
					t.Fatalf("repeated callback %+v: %v", repeat, err)
				}
			}

			stored := testsupport.MustGetEpisode(t, env.store, episode.ID)
			if stored.AuphonicStatus != tc.want || stored.AudioFile != settled.AudioFile {
				t.Fatalf("expected episode unchanged at %s, got %+v", tc.want, stored)
			}
			if len(env.notifier.Events()) != 1 {
				t.Fatalf("expected only the first notification, got %+v", env.notifier.Events())
			}
			if len(env.fake.Requests()) != requests {
				t.Fatalf("expected no remote calls for repeats, got %v", env.fake.Sequence())
			}
		})
	}
}

func TestHandleUnknownProduction(t *testing.T) {
	env := newWebhookEnv(t)
	episode := env.startedEpisode(t, testsupport.EpisodeSeed{})

	err := env.handler.Handle(context.Background(), webhook.Callback{UUID: "unknown", Status: 3, StatusString: "Done"})

	var notFound *auphonic.MediaItemNotFoundError
	if !errors.As(err, &notFound) || notFound.JobID != "unknown" {
		t.Fatalf("expected MediaItemNotFoundError, got %v", err)
	}
	if services.Kind(err) != services.KindNotFound {
		t.Fatalf("expected not_found kind, got %q", services.Kind(err))
	}
	stored := testsupport.MustGetEpisode(t, env.store, episode.ID)
	if stored.AuphonicStatus != catalog.StatusStarted || stored.AudioFile != "dir/show.wav" {
		t.Fatalf("expected no mutation, got %+v", stored)
	}
	if len(env.notifier.Events()) != 0 || len(env.fake.Requests()) != 0 {
		t.Fatal("expected no notification and no remote calls")
	}
}

func TestHandleProductionWithoutOutputs(t *testing.T) {
	env := newWebhookEnv(t)
	episode := env.startedEpisode(t, testsupport.EpisodeSeed{})
	env.fake.SetNoOutputFiles(true)

	err := env.handler.Handle(context.Background(), webhook.Callback{UUID: "prod-123", Status: 3, StatusString: "Done"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	stored := testsupport.MustGetEpisode(t, env.store, episode.ID)
	if stored.AuphonicStatus != catalog.StatusStarted {
		t.Fatalf("expected status unchanged, got %s", stored.AuphonicStatus)
	}
	if len(env.notifier.Events()) != 0 {
		t.Fatal("expected no notification")
	}
}
