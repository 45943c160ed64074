package api

import (
	"podopt/internal/catalog"
	"podopt/internal/optimize"
)

// FromEpisode converts a catalog episode to its API representation.
func FromEpisode(episode *catalog.Episode) Episode {
	if episode == nil {
		return Episode{}
	}
	dto := Episode{
		ID:           episode.ID,
		PodcastID:    episode.PodcastID,
		PodcastTitle: episode.PodcastTitle,
		Title:        episode.Title,
		AudioFile:    episode.AudioFile,
		Disk:         episode.Disk(),
		Status:       episode.AuphonicStatus.String(),
		AuphonicID:   episode.AuphonicID,
	}
	if !episode.CreatedAt.IsZero() {
		dto.CreatedAt = episode.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !episode.UpdatedAt.IsZero() {
		dto.UpdatedAt = episode.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromEpisodes converts a slice of catalog episodes into API DTOs.
func FromEpisodes(episodes []*catalog.Episode) []Episode {
	out := make([]Episode, 0, len(episodes))
	for _, episode := range episodes {
		out = append(out, FromEpisode(episode))
	}
	return out
}

// FromPodcast converts a catalog podcast.
func FromPodcast(podcast *catalog.Podcast) Podcast {
	if podcast == nil {
		return Podcast{}
	}
	dto := Podcast{ID: podcast.ID, Title: podcast.Title, PrivateShow: podcast.PrivateShow}
	if !podcast.CreatedAt.IsZero() {
		dto.CreatedAt = podcast.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromDispatcherStats converts dispatcher counters.
func FromDispatcherStats(stats optimize.Stats) DispatcherStatus {
	return DispatcherStatus{
		Running:  stats.Running,
		Workers:  stats.Workers,
		Active:   stats.Active,
		Depth:    stats.Depth,
		Capacity: stats.Capacity,
	}
}

// FromQuota converts a credit check result.
func FromQuota(quota optimize.Quota) *QuotaStatus {
	return &QuotaStatus{
		Credits:   quota.Credits,
		Threshold: quota.Threshold,
		Low:       quota.Low,
		CheckedAt: quota.CheckedAt.UTC().Format(dateTimeFormat),
	}
}

// FromStatusCounts keys catalog status counts by their lowercase label.
func FromStatusCounts(counts map[catalog.Status]int) map[string]int {
	if len(counts) == 0 {
		return nil
	}
	out := make(map[string]int, len(counts))
	for status, n := range counts {
		out[status.String()] = n
	}
	return out
}
