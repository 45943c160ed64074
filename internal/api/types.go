package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Episode describes an episode in a transport-friendly format.
type Episode struct {
	ID           int64  `json:"id"`
	PodcastID    int64  `json:"podcastId"`
	PodcastTitle string `json:"podcastTitle"`
	Title        string `json:"title"`
	AudioFile    string `json:"audioFile"`
	Disk         string `json:"disk"`
	Status       string `json:"status"`
	AuphonicID   string `json:"auphonicId,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// Podcast describes a show.
type Podcast struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PrivateShow bool   `json:"privateShow"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// DispatcherStatus mirrors the optimization worker pool.
type DispatcherStatus struct {
	Running  bool `json:"running"`
	Workers  int  `json:"workers"`
	Active   int  `json:"active"`
	Depth    int  `json:"depth"`
	Capacity int  `json:"capacity"`
}

// QuotaStatus is the most recent Auphonic credit check.
type QuotaStatus struct {
	Credits   float64 `json:"credits"`
	Threshold float64 `json:"threshold"`
	Low       bool    `json:"low"`
	CheckedAt string  `json:"checkedAt"`
}

// ServiceStatus aggregates daemon runtime information for API consumers.
type ServiceStatus struct {
	Status       string           `json:"status"`
	Dispatcher   DispatcherStatus `json:"dispatcher"`
	StatusCounts map[string]int   `json:"statusCounts,omitempty"`
	Quota        *QuotaStatus     `json:"quota,omitempty"`
}

// EpisodeResponse wraps a single episode.
type EpisodeResponse struct {
	Episode Episode `json:"episode"`
}

// EpisodeListResponse wraps a collection of episodes.
type EpisodeListResponse struct {
	Episodes []Episode `json:"episodes"`
}

// MessageResponse carries a human-readable acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
