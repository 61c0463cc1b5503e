package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Fraol-12/WhisperBox/internal/apperr"
	"github.com/Fraol-12/WhisperBox/internal/db"
	"github.com/Fraol-12/WhisperBox/internal/model"
	"github.com/Fraol-12/WhisperBox/internal/notify"
	"github.com/Fraol-12/WhisperBox/internal/repository"
)

const (
	// MaxTicketAttempts caps the generate/check/insert loop. With 2^32
	// possible ids a second attempt is already rare.
	MaxTicketAttempts = 8
	MaxMessageLen     = 5000
	MaxReplyLen       = 5000
)

type ComplaintService struct {
	store    ComplaintStore
	tickets  TicketGenerator
	notifier *notify.Dispatcher
	logger   zerolog.Logger
}

func NewComplaintService(store ComplaintStore, tickets TicketGenerator, notifier *notify.Dispatcher, logger zerolog.Logger) *ComplaintService {
	return &ComplaintService{store: store, tickets: tickets, notifier: notifier, logger: logger}
}

// Create validates and stores a new complaint under a freshly minted ticket
// id, then queues a notification. The existence check only filters
// collisions early; the store's unique constraint decides, and a collision
// reported by Insert sends the loop round again.
func (s *ComplaintService) Create(ctx context.Context, department, message string, photos []string) (*model.Complaint, error) {
	message = strings.TrimSpace(message)
	if strings.TrimSpace(department) == "" || message == "" {
		return nil, apperr.Validation("MISSING_FIELDS", "Department and message are required")
	}
	dept, ok := model.ParseDepartment(department)
	if !ok {
		return nil, apperr.Validation("INVALID_DEPARTMENT", "Invalid department")
	}
	if utf8.RuneCountInString(message) > MaxMessageLen {
		return nil, apperr.Validation("MESSAGE_TOO_LONG", "Message must be at most 5000 characters")
	}
	if len(photos) > model.MaxPhotos {
		return nil, apperr.Validation("TOO_MANY_PHOTOS", "At most 4 photos are allowed")
	}

	for attempt := 1; attempt <= MaxTicketAttempts; attempt++ {
		ticketID, err := s.tickets.Generate()
		if err != nil {
			return nil, apperr.Persistence("Failed to generate ticket id", err)
		}

		exists, err := s.store.TicketExists(ctx, ticketID)
		if err != nil {
			return nil, storeError(err)
		}
		if exists {
			s.logger.Warn().Str("ticket_id", ticketID).Int("attempt", attempt).Msg("ticket id collision on pre-check")
			continue
		}

		c := &model.Complaint{
			Department: dept,
			Message:    message,
			Photos:     append([]string{}, photos...),
			TicketID:   ticketID,
		}
		err = s.store.Insert(ctx, c)
		if errors.Is(err, repository.ErrDuplicate) && repository.ViolatedConstraint(err) == db.ConstraintTicketID {
			s.logger.Warn().Str("ticket_id", ticketID).Int("attempt", attempt).Msg("ticket id collision on insert")
			continue
		}
		if err != nil {
			return nil, storeError(err)
		}

		if s.notifier != nil {
			s.notifier.Dispatch(notify.Notification{TicketID: c.TicketID, Department: c.Department})
		}
		return c, nil
	}

	s.logger.Error().Int("attempts", MaxTicketAttempts).Msg("ticket id allocation exhausted")
	return nil, apperr.ErrTicketUnavailable
}

// List returns a department's complaints for the public board.
func (s *ComplaintService) List(ctx context.Context, department, sortBy, search string) ([]model.Complaint, error) {
	dept, ok := model.ParseDepartment(department)
	if !ok {
		return nil, apperr.Validation("INVALID_DEPARTMENT", "Invalid department")
	}
	return s.list(ctx, dept, sortBy, search)
}

// ListForAdmin returns the complaints of the admin's own department.
func (s *ComplaintService) ListForAdmin(ctx context.Context, p model.Principal, sortBy, search string) ([]model.Complaint, error) {
	return s.list(ctx, p.Department, sortBy, search)
}

func (s *ComplaintService) list(ctx context.Context, dept model.Department, sortBy, search string) ([]model.Complaint, error) {
	if sortBy != model.SortByDate {
		sortBy = model.SortByLikes
	}
	complaints, err := s.store.ListByDepartment(ctx, model.ListQuery{
		Department: dept,
		SortBy:     sortBy,
		Search:     strings.TrimSpace(search),
	})
	if err != nil {
		return nil, storeError(err)
	}
	return complaints, nil
}

// UpdateStatus moves a complaint to any of the three statuses. Only an
// admin of the complaint's department may do so.
func (s *ComplaintService) UpdateStatus(ctx context.Context, p model.Principal, id, status string) (*model.Complaint, error) {
	st, ok := model.ParseStatus(status)
	if !ok {
		return nil, apperr.Validation("INVALID_STATUS", "Invalid status")
	}
	if err := s.authorizeFor(ctx, p, id); err != nil {
		return nil, err
	}
	c, err := s.store.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, complaintError(err)
	}
	s.logger.Info().Str("ticket_id", c.TicketID).Str("status", string(st)).Str("admin_id", p.AdminID).Msg("status updated")
	return c, nil
}

// SetReply overwrites the admin reply on a complaint of the admin's
// department.
func (s *ComplaintService) SetReply(ctx context.Context, p model.Principal, id, reply string) (*model.Complaint, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, apperr.Validation("MISSING_FIELDS", "Reply is required")
	}
	if utf8.RuneCountInString(reply) > MaxReplyLen {
		return nil, apperr.Validation("REPLY_TOO_LONG", "Reply must be at most 5000 characters")
	}
	if err := s.authorizeFor(ctx, p, id); err != nil {
		return nil, err
	}
	c, err := s.store.UpdateReply(ctx, id, reply)
	if err != nil {
		return nil, complaintError(err)
	}
	s.logger.Info().Str("ticket_id", c.TicketID).Str("admin_id", p.AdminID).Msg("reply set")
	return c, nil
}

// Stats aggregates the admin's department.
func (s *ComplaintService) Stats(ctx context.Context, p model.Principal) (*model.DepartmentStats, error) {
	stats, err := s.store.Stats(ctx, p.Department)
	if err != nil {
		return nil, storeError(err)
	}
	return stats, nil
}

// authorizeFor loads the complaint and rejects requests from other
// departments. Cross-department access is always an error, never silently
// scoped.
func (s *ComplaintService) authorizeFor(ctx context.Context, p model.Principal, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.ErrComplaintNotFound
	}
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return complaintError(err)
	}
	if c.Department != p.Department {
		s.logger.Warn().
			Str("admin_id", p.AdminID).
			Str("admin_department", string(p.Department)).
			Str("complaint_department", string(c.Department)).
			Msg("cross-department access rejected")
		return apperr.ErrAccessDenied
	}
	return nil
}

// complaintError maps a missing row to NotFound and everything else to a
// persistence failure.
func complaintError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrComplaintNotFound
	}
	return storeError(err)
}

func storeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Persistence("Database timed out", err)
	}
	return apperr.Persistence("Database error", err)
}
