package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"podopt/internal/catalog"
	"podopt/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// EpisodeSeed describes an episode plus its source audio to create.
type EpisodeSeed struct {
	PodcastTitle string
	PrivateShow  bool
	Title        string
	AudioFile    string
	Content      string
}

// SeedEpisode creates a podcast, an episode and the episode's audio file on
// the disk its visibility selects.
func SeedEpisode(t testing.TB, cfg *config.Config, store *catalog.Store, seed EpisodeSeed) *catalog.Episode {
	t.Helper()

	if seed.PodcastTitle == "" {
		seed.PodcastTitle = "Test Podcast"
	}
	if seed.Title == "" {
		seed.Title = "Test Episode"
	}
	if seed.AudioFile == "" {
		seed.AudioFile = "dir/show.wav"
	}
	if seed.Content == "" {
		seed.Content = "RIFF-source-audio"
	}

	ctx := context.Background()
	podcast, err := store.CreatePodcast(ctx, seed.PodcastTitle, seed.PrivateShow)
	if err != nil {
		t.Fatalf("CreatePodcast: %v", err)
	}
	episode, err := store.CreateEpisode(ctx, podcast.ID, seed.Title, seed.AudioFile)
	if err != nil {
		t.Fatalf("CreateEpisode: %v", err)
	}

	root := cfg.Paths.PublicDir
	if seed.PrivateShow {
		root = cfg.Paths.PrivateDir
	}
	target := filepath.Join(root, filepath.FromSlash(seed.AudioFile))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", target, err)
	}
	if err := os.WriteFile(target, []byte(seed.Content), 0o644); err != nil {
		t.Fatalf("write %s: %v", target, err)
	}
	return episode
}

// MustGetEpisode reloads an episode and fails the test when it is missing.
func MustGetEpisode(t testing.TB, store *catalog.Store, id int64) *catalog.Episode {
	t.Helper()
	episode, err := store.GetEpisode(context.Background(), id)
	if err != nil {
		t.Fatalf("GetEpisode(%d): %v", id, err)
	}
	if episode == nil {
		t.Fatalf("episode %d not found", id)
	}
	return episode
}
