package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"podopt/internal/services"
)

// CreatePodcast inserts a podcast.
func (s *Store) CreatePodcast(ctx context.Context, title string, privateShow bool) (*Podcast, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "create podcast", "title required", nil)
	}
	timestamp := timestampNow()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO podcasts (title, private_show, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		title, boolToInt(privateShow), timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert podcast: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetPodcast(ctx, id)
}

// GetPodcast fetches a podcast by identifier. It returns nil, nil when absent.
func (s *Store) GetPodcast(ctx context.Context, id int64) (*Podcast, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, private_show, created_at, updated_at FROM podcasts WHERE id = ?`, id)
	podcast, err := scanPodcast(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get podcast: %w", err)
	}
	return podcast, nil
}

// ListPodcasts returns all podcasts ordered by identifier.
func (s *Store) ListPodcasts(ctx context.Context) ([]*Podcast, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, private_show, created_at, updated_at FROM podcasts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}
	defer rows.Close()

	var podcasts []*Podcast
	for rows.Next() {
		podcast, err := scanPodcast(rows)
		if err != nil {
			return nil, fmt.Errorf("scan podcast: %w", err)
		}
		podcasts = append(podcasts, podcast)
	}
	return podcasts, rows.Err()
}

// CreateEpisode inserts an episode whose audio lives at audioFile on the
// podcast's storage disk.
func (s *Store) CreateEpisode(ctx context.Context, podcastID int64, title, audioFile string) (*Episode, error) {
	title = strings.TrimSpace(title)
	audioFile = strings.TrimSpace(audioFile)
	if title == "" || audioFile == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "create episode", "title and audio file required", nil)
	}
	podcast, err := s.GetPodcast(ctx, podcastID)
	if err != nil {
		return nil, err
	}
	if podcast == nil {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "create episode", fmt.Sprintf("podcast %d not found", podcastID), nil)
	}

	timestamp := timestampNow()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO episodes (podcast_id, title, audio_file, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		podcastID, title, audioFile, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert episode: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetEpisode(ctx, id)
}

// GetEpisode fetches an episode by identifier. It returns nil, nil when absent.
func (s *Store) GetEpisode(ctx context.Context, id int64) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+episodeColumns+episodeFrom+` WHERE e.id = ?`, id)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return episode, nil
}

// FindByAuphonicID returns the episode referencing a production, or nil, nil.
func (s *Store) FindByAuphonicID(ctx context.Context, auphonicID string) (*Episode, error) {
	if strings.TrimSpace(auphonicID) == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+episodeColumns+episodeFrom+` WHERE e.auphonic_id = ? ORDER BY e.id LIMIT 1`, auphonicID)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by auphonic id: %w", err)
	}
	return episode, nil
}

// ListEpisodes returns episodes ordered by identifier. A podcastID of zero
// lists every podcast.
func (s *Store) ListEpisodes(ctx context.Context, podcastID int64) ([]*Episode, error) {
	query := `SELECT ` + episodeColumns + episodeFrom
	var args []any
	if podcastID > 0 {
		query += ` WHERE e.podcast_id = ?`
		args = append(args, podcastID)
	}
	query += ` ORDER BY e.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, episode)
	}
	return episodes, rows.Err()
}

// StatusCounts returns the number of episodes per processing status.
func (s *Store) StatusCounts(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(auphonic_status, 0), COUNT(1) FROM episodes GROUP BY COALESCE(auphonic_status, 0)`)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status int64
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}
