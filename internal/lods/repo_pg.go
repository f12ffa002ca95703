package lods

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type scoreRepoPG struct {
	pool *pgxpool.Pool
}

// NewScoreRepo creates a Postgres-backed ScoreRepository.
func NewScoreRepo(pool *pgxpool.Pool) ScoreRepository {
	return &scoreRepoPG{pool: pool}
}

const scoreColumns = `icustay_id, lods, neurologic, cardiovascular, renal, pulmonary, hematologic, hepatic`

func (r *scoreRepoPG) ReplaceAll(ctx context.Context, run *Run, scores []Score) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO lods_run (id, started_at, finished_at, stay_count)
		VALUES ($1, $2, $3, $4)`,
		run.ID, run.StartedAt, run.FinishedAt, run.StayCount,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM lods_score`); err != nil {
		return fmt.Errorf("clear previous scores: %w", err)
	}

	for i := range scores {
		s := &scores[i]
		if _, err := tx.Exec(ctx, `
			INSERT INTO lods_score (
				icustay_id, run_id, lods,
				neurologic, cardiovascular, renal, pulmonary, hematologic, hepatic
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.ICUStayID, run.ID, s.Total,
			s.Neurologic, s.Cardiovascular, s.Renal, s.Pulmonary, s.Hematologic, s.Hepatic,
		); err != nil {
			return fmt.Errorf("insert score for stay %d: %w", s.ICUStayID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *scoreRepoPG) List(ctx context.Context, limit, offset int) ([]Score, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lods_score`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count scores: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+scoreColumns+` FROM lods_score ORDER BY icustay_id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var scores []Score
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, 0, err
		}
		scores = append(scores, *s)
	}
	return scores, total, rows.Err()
}

func (r *scoreRepoPG) GetByStayID(ctx context.Context, stayID int64) (*Score, error) {
	s, err := scanScore(r.pool.QueryRow(ctx,
		`SELECT `+scoreColumns+` FROM lods_score WHERE icustay_id = $1`, stayID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *scoreRepoPG) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, started_at, finished_at, stay_count
		FROM lods_run ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.StayCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanScore(row pgx.Row) (*Score, error) {
	var s Score
	err := row.Scan(
		&s.ICUStayID, &s.Total,
		&s.Neurologic, &s.Cardiovascular, &s.Renal,
		&s.Pulmonary, &s.Hematologic, &s.Hepatic,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
