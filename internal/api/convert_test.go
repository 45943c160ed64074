package api

import (
	"testing"
	"time"

	"podopt/internal/catalog"
)

func TestFromEpisodeMapsStatusAndDisk(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	episode := &catalog.Episode{
		ID:             9,
		PodcastID:      2,
		PodcastTitle:   "Night Shift",
		PrivateShow:    true,
		Title:          "Pilot",
		AudioFile:      "dir/show-optimized.mp3",
		AuphonicID:     "prod-123",
		AuphonicStatus: catalog.StatusCompleted,
		CreatedAt:      created,
	}
	dto := FromEpisode(episode)
	if dto.Status != "completed" || dto.Disk != "private" || dto.AuphonicID != "prod-123" {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if dto.CreatedAt != "2026-03-01T11:00:00.000Z" {
		t.Fatalf("unexpected createdAt %q", dto.CreatedAt)
	}
	if dto.UpdatedAt != "" {
		t.Fatalf("expected empty updatedAt, got %q", dto.UpdatedAt)
	}
}

func TestFromEpisodeUnsetStatus(t *testing.T) {
	dto := FromEpisode(&catalog.Episode{ID: 1, AudioFile: "a.wav"})
	if dto.Status != "unset" || dto.Disk != "public" {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if got := FromEpisode(nil); got.ID != 0 {
		t.Fatalf("expected zero dto for nil, got %+v", got)
	}
}

func TestFromStatusCounts(t *testing.T) {
	counts := FromStatusCounts(map[catalog.Status]int{catalog.StatusStarted: 2, catalog.StatusUnset: 5})
	if counts["started"] != 2 || counts["unset"] != 5 || len(counts) != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
	if FromStatusCounts(nil) != nil {
		t.Fatal("expected nil for empty counts")
	}
}
