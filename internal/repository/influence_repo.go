package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// InfluenceRepo persists scored results. Results are value objects: Put is
// an atomic upsert and last-writer-wins.
type InfluenceRepo struct {
	pool *pgxpool.Pool
}

func NewInfluenceRepo(pool *pgxpool.Pool) *InfluenceRepo {
	return &InfluenceRepo{pool: pool}
}

// EnsureSchema creates the creators table if it does not exist. The full
// result is stored as JSONB; overall_score and updated_at are lifted into
// columns for the top-N query and freshness checks.
func (r *InfluenceRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS creators (
			channel_id    TEXT PRIMARY KEY,
			overall_score INTEGER NOT NULL,
			payload       JSONB NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure creators schema: %w", err)
	}
	return nil
}

// Get returns the stored result for a channel, or (nil, nil) when absent.
func (r *InfluenceRepo) Get(ctx context.Context, channelID string) (*model.InfluenceResult, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM creators WHERE channel_id = $1`, channelID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result model.InfluenceResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode stored result %s: %w", channelID, err)
	}
	return &result, nil
}

// Put upserts a result keyed by channel ID.
func (r *InfluenceRepo) Put(ctx context.Context, result *model.InfluenceResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", result.ChannelID, err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO creators (channel_id, overall_score, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id) DO UPDATE
		SET overall_score = EXCLUDED.overall_score,
		    payload       = EXCLUDED.payload,
		    updated_at    = EXCLUDED.updated_at`,
		result.ChannelID, result.OverallScore, payload, result.UpdatedAt)
	return err
}

// TopByScore returns up to limit results ordered by overall score
// descending.
func (r *InfluenceRepo) TopByScore(ctx context.Context, limit int) ([]model.InfluenceResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT payload FROM creators
		ORDER BY overall_score DESC, updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.InfluenceResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var result model.InfluenceResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("decode stored result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// StaleBefore returns channel IDs whose results were last updated before
// the cutoff, oldest first. Used by the refresh worker.
func (r *InfluenceRepo) StaleBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT channel_id FROM creators
		WHERE updated_at <= $1
		ORDER BY updated_at ASC
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
