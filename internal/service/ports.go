package service

import (
	"context"

	"github.com/Fraol-12/WhisperBox/internal/model"
)

// ComplaintStore is the persistence the complaint and vote services need.
// Implementations return repository.ErrNotFound for unknown ids and
// a repository.ConstraintError naming db.ConstraintTicketID when an insert
// reuses a ticket id.
type ComplaintStore interface {
	TicketExists(ctx context.Context, ticketID string) (bool, error)
	Insert(ctx context.Context, c *model.Complaint) error
	FindByID(ctx context.Context, id string) (*model.Complaint, error)
	ListByDepartment(ctx context.Context, q model.ListQuery) ([]model.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Complaint, error)
	UpdateReply(ctx context.Context, id, reply string) (*model.Complaint, error)
	IncrementLikes(ctx context.Context, id string) (int, error)
	Stats(ctx context.Context, department model.Department) (*model.DepartmentStats, error)
}

// VoteLedger records (complaint, voter) pairs under a uniqueness
// constraint. Insert returns repository.ErrDuplicate for a repeated pair and
// repository.ErrMissingParent for an unknown complaint.
type VoteLedger interface {
	Insert(ctx context.Context, complaintID, voterID string) error
	Count(ctx context.Context, complaintID string) (int, error)
}

// AdminStore looks up administrators by normalized email.
type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
}

// TicketGenerator mints candidate ticket ids.
type TicketGenerator interface {
	Generate() (string, error)
}
