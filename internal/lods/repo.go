package lods

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no score exists for a stay.
var ErrNotFound = errors.New("score not found")

// ScoreRepository persists and reads computed scores.
type ScoreRepository interface {
	// ReplaceAll atomically replaces the score table contents with the given
	// run's results and records the run itself.
	ReplaceAll(ctx context.Context, run *Run, scores []Score) error

	// List returns scores ordered by stay id, with the total row count.
	List(ctx context.Context, limit, offset int) ([]Score, int, error)

	// GetByStayID returns the score for one stay, or ErrNotFound.
	GetByStayID(ctx context.Context, stayID int64) (*Score, error)

	// ListRuns returns recorded runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
