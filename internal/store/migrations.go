package store

import "context"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS position_records (
    id BIGSERIAL PRIMARY KEY,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
    position_address TEXT NOT NULL,
    whirlpool_price NUMERIC NOT NULL,
    token_a_amount NUMERIC NOT NULL,
    token_b_amount NUMERIC NOT NULL,
    token_a_fees NUMERIC NOT NULL DEFAULT 0,
    token_b_fees NUMERIC NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS position_records_timestamp_idx
    ON position_records (timestamp DESC);

CREATE INDEX IF NOT EXISTS position_records_position_idx
    ON position_records (position_address, timestamp);
`

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migrationSQL)
	return err
}
