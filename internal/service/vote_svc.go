package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Fraol-12/WhisperBox/internal/apperr"
	"github.com/Fraol-12/WhisperBox/internal/repository"
)

type VoteService struct {
	ledger     VoteLedger
	complaints ComplaintStore
	logger     zerolog.Logger
}

func NewVoteService(ledger VoteLedger, complaints ComplaintStore, logger zerolog.Logger) *VoteService {
	return &VoteService{ledger: ledger, complaints: complaints, logger: logger}
}

// Like records one vote by voterID and returns the complaint's new like
// count.
//
// The ledger insert and the counter increment are separate writes. If the
// insert succeeds and the increment fails, the vote stays recorded and the
// counter lags by one; the gap is logged and reported as
// apperr.ErrLikeCountFailed rather than compensated.
func (s *VoteService) Like(ctx context.Context, complaintID, voterID string) (int, error) {
	if _, err := uuid.Parse(complaintID); err != nil {
		return 0, apperr.ErrComplaintNotFound
	}
	if voterID == "" {
		return 0, apperr.Validation("MISSING_VOTER", "A voter identity is required")
	}

	if err := s.ledger.Insert(ctx, complaintID, voterID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return 0, apperr.ErrDuplicateVote
		case errors.Is(err, repository.ErrMissingParent), errors.Is(err, repository.ErrNotFound):
			return 0, apperr.ErrComplaintNotFound
		default:
			return 0, storeError(err)
		}
	}

	likes, err := s.complaints.IncrementLikes(ctx, complaintID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperr.ErrComplaintNotFound
		}
		evt := s.logger.Error().Err(err).Str("complaint_id", complaintID)
		if n, cerr := s.ledger.Count(ctx, complaintID); cerr == nil {
			evt = evt.Int("ledger_votes", n)
		}
		evt.Msg("vote recorded but like counter not incremented")
		return 0, apperr.ErrLikeCountFailed.Wrap(err)
	}
	return likes, nil
}
