package catalog_test

import (
	"context"
	"errors"
	"testing"

	"podopt/internal/catalog"
	"podopt/internal/services"
	"podopt/internal/testsupport"
)

func TestCreateAndFetchEpisodes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	public, err := store.CreatePodcast(ctx, "  Daily Show  ", false)
	if err != nil {
		t.Fatalf("CreatePodcast: %v", err)
	}
	private, err := store.CreatePodcast(ctx, "Members Only", true)
	if err != nil {
		t.Fatalf("CreatePodcast: %v", err)
	}
	if public.Title != "Daily Show" || public.PrivateShow || !private.PrivateShow {
		t.Fatalf("unexpected podcasts %+v %+v", public, private)
	}

	first, err := store.CreateEpisode(ctx, public.ID, "One", "daily/one.wav")
	if err != nil {
		t.Fatalf("CreateEpisode: %v", err)
	}
	second, err := store.CreateEpisode(ctx, private.ID, "Two", "members/two.wav")
	if err != nil {
		t.Fatalf("CreateEpisode: %v", err)
	}
	if first.PodcastTitle != "Daily Show" || first.Disk() != "public" || first.AuphonicStatus != catalog.StatusUnset {
		t.Fatalf("unexpected first episode %+v", first)
	}
	if second.Disk() != "private" || !second.PrivateShow {
		t.Fatalf("unexpected second episode %+v", second)
	}

	all, err := store.ListEpisodes(ctx, 0)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListEpisodes(0) = %d, %v", len(all), err)
	}
	filtered, err := store.ListEpisodes(ctx, private.ID)
	if err != nil || len(filtered) != 1 || filtered[0].ID != second.ID {
		t.Fatalf("ListEpisodes(private) = %+v, %v", filtered, err)
	}

	missing, err := store.GetEpisode(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing episode, got %+v %v", missing, err)
	}
}

func TestCreateValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.CreatePodcast(ctx, " ", false); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := store.CreateEpisode(ctx, 1, "Title", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := store.CreateEpisode(ctx, 42, "Title", "a.wav"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing podcast, got %v", err)
	}
}

func TestOptimizationTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	episode := testsupport.SeedEpisode(t, cfg, store, testsupport.EpisodeSeed{})

	if err := store.MarkStarted(ctx, episode.ID, ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank production, got %v", err)
	}
	if err := store.MarkStarted(ctx, episode.ID, "prod-1"); err != nil {
		t.Fatalf("MarkStarted: %v", err)
	}
	started := testsupport.MustGetEpisode(t, store, episode.ID)
	if started.AuphonicStatus != catalog.StatusStarted || started.AuphonicID != "prod-1" {
		t.Fatalf("unexpected started episode %+v", started)
	}

	found, err := store.FindByAuphonicID(ctx, "prod-1")
	if err != nil || found == nil || found.ID != episode.ID {
		t.Fatalf("FindByAuphonicID = %+v, %v", found, err)
	}
	if none, err := store.FindByAuphonicID(ctx, "other"); err != nil || none != nil {
		t.Fatalf("expected nil for unknown production, got %+v %v", none, err)
	}

	if err := store.CompleteOptimization(ctx, episode.ID, "dir/show-optimized.mp3"); err != nil {
		t.Fatalf("CompleteOptimization: %v", err)
	}
	completed := testsupport.MustGetEpisode(t, store, episode.ID)
	if completed.AuphonicStatus != catalog.StatusCompleted || completed.AudioFile != "dir/show-optimized.mp3" || completed.AuphonicID != "prod-1" {
		t.Fatalf("unexpected completed episode %+v", completed)
	}

	if err := store.UpdateStatus(ctx, episode.ID, catalog.StatusFailed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got := testsupport.MustGetEpisode(t, store, episode.ID).AuphonicStatus; got != catalog.StatusFailed {
		t.Fatalf("status = %v, want failed", got)
	}

	if err := store.ResetOptimization(ctx, episode.ID); err != nil {
		t.Fatalf("ResetOptimization: %v", err)
	}
	reset := testsupport.MustGetEpisode(t, store, episode.ID)
	if reset.AuphonicStatus != catalog.StatusUnset || reset.AuphonicID != "" {
		t.Fatalf("unexpected reset episode %+v", reset)
	}

	if err := store.UpdateStatus(ctx, 999, catalog.StatusFailed); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing episode, got %v", err)
	}
}

func TestStatusCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.SeedEpisode(t, cfg, store, testsupport.EpisodeSeed{Title: "A"})
	testsupport.SeedEpisode(t, cfg, store, testsupport.EpisodeSeed{Title: "B", AudioFile: "b.wav"})
	if err := store.MarkStarted(ctx, a.ID, "prod-a"); err != nil {
		t.Fatalf("MarkStarted: %v", err)
	}

	counts, err := store.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts: %v", err)
	}
	if counts[catalog.StatusStarted] != 1 || counts[catalog.StatusUnset] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    catalog.Status
		wantErr bool
	}{
		{"", catalog.StatusUnset, false},
		{"Started", catalog.StatusStarted, false},
		{" completed ", catalog.StatusCompleted, false},
		{"failed", catalog.StatusFailed, false},
		{"queued", catalog.StatusQueued, false},
		{"bogus", catalog.StatusUnset, true},
	}
	for _, tt := range tests {
		got, err := catalog.ParseStatus(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, %v; want %v (err %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
		if reparsed, _ := catalog.ParseStatus(got.String()); !tt.wantErr && reparsed != got {
			t.Errorf("ParseStatus(%v.String()) = %v", got, reparsed)
		}
	}
	if !catalog.StatusQueued.InFlight() || !catalog.StatusStarted.InFlight() || catalog.StatusFailed.InFlight() {
		t.Fatal("unexpected InFlight classification")
	}
}
