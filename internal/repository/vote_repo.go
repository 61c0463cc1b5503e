package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VoteRepo struct {
	pool *pgxpool.Pool
	timeouts
}

func NewVoteRepo(pool *pgxpool.Pool, timeout time.Duration) *VoteRepo {
	return &VoteRepo{pool: pool, timeouts: timeouts{d: timeout}}
}

// Insert records that voterID liked complaintID. The (complaint_id,
// voter_id) primary key makes this the single point where duplicate votes
// are rejected: a second insert for the same pair returns ErrDuplicate no
// matter how the calls interleave. A vote for a missing complaint returns
// ErrMissingParent.
func (r *VoteRepo) Insert(ctx context.Context, complaintID, voterID string) error {
	ctx, cancel := r.with(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO votes (complaint_id, voter_id) VALUES ($1, $2)`,
		complaintID, voterID)
	if err != nil {
		return fmt.Errorf("insert vote: %w", classify(err))
	}
	return nil
}

// Count returns the number of votes recorded against a complaint.
func (r *VoteRepo) Count(ctx context.Context, complaintID string) (int, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM votes WHERE complaint_id = $1`, complaintID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", classify(err))
	}
	return n, nil
}
