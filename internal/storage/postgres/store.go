package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flashArb/internal/model"
)

// Store provides Postgres persistence for opportunity and settlement records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutOpportunityBatch inserts or updates opportunity evaluations, keyed by
// block and pair so a re-run of the same range overwrites rather than
// duplicates.
func (s *Store) PutOpportunityBatch(opps []model.Opportunity) error {
	return s.UpsertOpportunities(context.Background(), opps)
}

// UpsertOpportunities inserts or updates opportunity evaluations.
func (s *Store) UpsertOpportunities(ctx context.Context, opps []model.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, opp := range opps {
		batch.Queue(`
			INSERT INTO opportunities (
				chain_id, block_number, primary_pair, secondary_pair,
				probe_amount, received, required, surplus, profitable, observed_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
			ON CONFLICT (chain_id, block_number, primary_pair, secondary_pair)
			DO UPDATE SET
				probe_amount = EXCLUDED.probe_amount,
				received = EXCLUDED.received,
				required = EXCLUDED.required,
				surplus = EXCLUDED.surplus,
				profitable = EXCLUDED.profitable,
				observed_at = EXCLUDED.observed_at,
				updated_at = now()
		`,
			int64(opp.ChainID),
			int64(opp.BlockNumber),
			opp.PrimaryPair,
			opp.SecondaryPair,
			opp.ProbeAmount,
			opp.Received,
			opp.Required,
			opp.Surplus,
			opp.Profitable,
			opp.ObservedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range opps {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutSettlement appends one settlement attempt record.
func (s *Store) PutSettlement(rec model.SettlementRecord) error {
	return s.InsertSettlement(context.Background(), rec)
}

// InsertSettlement appends one settlement attempt record.
func (s *Store) InsertSettlement(ctx context.Context, rec model.SettlementRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settlements (
			pair, initiator, direction, borrowed, received, required, surplus,
			status, reason, observed_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
	`,
		rec.Pair,
		rec.Initiator,
		rec.Direction,
		rec.Borrowed,
		rec.Received,
		rec.Required,
		rec.Surplus,
		rec.Status,
		rec.Reason,
		rec.ObservedAt,
	)
	return err
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM watch_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO watch_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, block)
	return err
}
