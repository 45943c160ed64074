package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Status mirrors the Auphonic processing state onto an episode. The zero
// value means no optimization was ever started and is stored as NULL.
type Status int

const (
	StatusUnset     Status = 0
	StatusStarted   Status = 1
	StatusCompleted Status = 2
	StatusFailed    Status = 3
	StatusQueued    Status = 4
)

// String returns the lowercase status name, or "unset".
func (s Status) String() string {
	switch s {
	case StatusUnset:
		return "unset"
	case StatusStarted:
		return "started"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusQueued:
		return "queued"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// InFlight reports whether a production is running for the episode.
func (s Status) InFlight() bool {
	return s == StatusStarted || s == StatusQueued
}

// ParseStatus converts a status name back into a Status.
func ParseStatus(value string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "unset", "none":
		return StatusUnset, nil
	case "started":
		return StatusStarted, nil
	case "completed":
		return StatusCompleted, nil
	case "failed":
		return StatusFailed, nil
	case "queued":
		return StatusQueued, nil
	default:
		return StatusUnset, fmt.Errorf("unknown status %q", value)
	}
}

// Podcast is a show owning episodes. PrivateShow selects the private storage disk.
type Podcast struct {
	ID          int64
	Title       string
	PrivateShow bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Episode is the audio record submitted for optimization. AudioFile is
// relative to the storage disk of its podcast.
type Episode struct {
	ID             int64
	PodcastID      int64
	PodcastTitle   string
	PrivateShow    bool
	Title          string
	AudioFile      string
	AuphonicID     string
	AuphonicStatus Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Disk names the storage disk holding the episode's audio.
func (e *Episode) Disk() string {
	if e.PrivateShow {
		return "private"
	}
	return "public"
}
