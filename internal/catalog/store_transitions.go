package catalog

import (
	"context"
	"fmt"
	"strings"

	"podopt/internal/services"
)

// MarkStarted records the production ID and STARTED status in one update.
func (s *Store) MarkStarted(ctx context.Context, id int64, auphonicID string) error {
	if strings.TrimSpace(auphonicID) == "" {
		return services.Wrap(services.ErrValidation, "catalog", "mark started", "auphonic id required", nil)
	}
	return s.updateEpisode(ctx, id, "mark started",
		`UPDATE episodes SET auphonic_id = ?, auphonic_status = ?, updated_at = ? WHERE id = ?`,
		auphonicID, int(StatusStarted), timestampNow(), id,
	)
}

// UpdateStatus sets the processing status. StatusUnset clears it.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status Status) error {
	return s.updateEpisode(ctx, id, "update status",
		`UPDATE episodes SET auphonic_status = ?, updated_at = ? WHERE id = ?`,
		nullableStatus(status), timestampNow(), id,
	)
}

// CompleteOptimization swaps in the optimized audio file and marks the
// episode COMPLETED in one update.
func (s *Store) CompleteOptimization(ctx context.Context, id int64, audioFile string) error {
	if strings.TrimSpace(audioFile) == "" {
		return services.Wrap(services.ErrValidation, "catalog", "complete optimization", "audio file required", nil)
	}
	return s.updateEpisode(ctx, id, "complete optimization",
		`UPDATE episodes SET audio_file = ?, auphonic_status = ?, updated_at = ? WHERE id = ?`,
		audioFile, int(StatusCompleted), timestampNow(), id,
	)
}

// ResetOptimization clears the production reference and status so the
// episode can be submitted again.
func (s *Store) ResetOptimization(ctx context.Context, id int64) error {
	return s.updateEpisode(ctx, id, "reset optimization",
		`UPDATE episodes SET auphonic_id = ?, auphonic_status = ?, updated_at = ? WHERE id = ?`,
		nullableString(""), nullableStatus(StatusUnset), timestampNow(), id,
	)
}

func (s *Store) updateEpisode(ctx context.Context, id int64, operation, query string, args ...any) error {
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "catalog", operation, fmt.Sprintf("episode %d not found", id), nil)
	}
	return nil
}
