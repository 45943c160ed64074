package catalog

import (
	"database/sql"
	"errors"
	"time"
)

const episodeColumns = `e.id, e.podcast_id, p.title, p.private_show, e.title, e.audio_file,
    e.auphonic_id, e.auphonic_status, e.created_at, e.updated_at`

const episodeFrom = ` FROM episodes e JOIN podcasts p ON p.id = e.podcast_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(scanner rowScanner) (*Episode, error) {
	var (
		episode     Episode
		privateShow int64
		auphonicID  sql.NullString
		status      sql.NullInt64
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&episode.ID,
		&episode.PodcastID,
		&episode.PodcastTitle,
		&privateShow,
		&episode.Title,
		&episode.AudioFile,
		&auphonicID,
		&status,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	episode.PrivateShow = privateShow != 0
	episode.AuphonicID = auphonicID.String
	if status.Valid {
		episode.AuphonicStatus = Status(status.Int64)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		episode.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		episode.UpdatedAt = updated
	}
	return &episode, nil
}

func scanPodcast(scanner rowScanner) (*Podcast, error) {
	var (
		podcast     Podcast
		privateShow int64
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(&podcast.ID, &podcast.Title, &privateShow, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	podcast.PrivateShow = privateShow != 0
	if created, err := parseTimeString(createdRaw.String); err == nil {
		podcast.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		podcast.UpdatedAt = updated
	}
	return &podcast, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableStatus(status Status) any {
	if status == StatusUnset {
		return nil
	}
	return int(status)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func timestampNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
