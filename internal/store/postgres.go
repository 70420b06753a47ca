package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// --- Position records ---

// RecentSnapshots returns up to limit of the most recent position records,
// ordered by timestamp ascending. Numeric columns come back as text.
func (s *Store) RecentSnapshots(ctx context.Context, limit int) ([]position.Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, timestamp, position_address,
			whirlpool_price::text, token_a_amount::text, token_b_amount::text,
			token_a_fees::text, token_b_fees::text
		FROM (
			SELECT * FROM position_records
			ORDER BY timestamp DESC, id DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC, id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query position records: %w", err)
	}
	defer rows.Close()

	snaps := make([]position.Snapshot, 0, limit)
	for rows.Next() {
		var p position.Snapshot
		if err := rows.Scan(&p.ID, &p.Timestamp, &p.PositionAddress,
			&p.WhirlpoolPrice, &p.TokenAAmount, &p.TokenBAmount,
			&p.TokenAFees, &p.TokenBFees); err != nil {
			return nil, fmt.Errorf("scan position record: %w", err)
		}
		snaps = append(snaps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position records: %w", err)
	}
	return snaps, nil
}

// InsertSnapshot stores a position record and returns its assigned id.
// A zero Timestamp means now.
func (s *Store) InsertSnapshot(ctx context.Context, p *position.Snapshot) (int64, error) {
	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO position_records
			(timestamp, position_address, whirlpool_price, token_a_amount, token_b_amount, token_a_fees, token_b_fees)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7::numeric)
		RETURNING id`,
		ts, p.PositionAddress, p.WhirlpoolPrice, p.TokenAAmount, p.TokenBAmount, p.TokenAFees, p.TokenBFees).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert position record: %w", err)
	}
	return id, nil
}

// CountSnapshots returns the number of stored records for a position.
func (s *Store) CountSnapshots(ctx context.Context, positionAddress string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM position_records WHERE position_address = $1`, positionAddress).Scan(&count)
	return count, err
}
