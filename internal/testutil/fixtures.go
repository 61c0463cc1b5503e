package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Fraol-12/WhisperBox/internal/auth"
	"github.com/Fraol-12/WhisperBox/internal/model"
)

// DefaultPassword is the password given to fixture admins.
const DefaultPassword = "admin123"

// SeedAdmin stores an admin for dept with a bcrypt-hashed DefaultPassword.
func SeedAdmin(t *testing.T, m *MemStore, dept model.Department, email string) *model.Admin {
	t.Helper()
	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := &model.Admin{
		Name:         string(dept) + " Admin",
		Department:   dept,
		Email:        email,
		PasswordHash: hash,
	}
	if err := m.Admins().Upsert(context.Background(), admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}

// CreateComplaint inserts a complaint directly, bypassing the service.
func CreateComplaint(t *testing.T, m *MemStore, dept model.Department, message, ticketID string) *model.Complaint {
	t.Helper()
	c := &model.Complaint{Department: dept, Message: message, TicketID: ticketID}
	if err := m.Insert(context.Background(), c); err != nil {
		t.Fatalf("create complaint: %v", err)
	}
	return c
}

// SequenceTickets replays a fixed list of ticket ids, then fails.
type SequenceTickets struct {
	mu  sync.Mutex
	ids []string
}

func NewSequenceTickets(ids ...string) *SequenceTickets {
	return &SequenceTickets{ids: ids}
}

func (s *SequenceTickets) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ids) == 0 {
		return "", errors.New("sequence exhausted")
	}
	id := s.ids[0]
	s.ids = s.ids[1:]
	return id, nil
}

// Remaining returns how many ids have not been handed out.
func (s *SequenceTickets) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
