// Package testutil provides an in-memory store with the same uniqueness
// guarantees as the Postgres schema, plus fixtures for service and handler
// tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Fraol-12/WhisperBox/internal/db"
	"github.com/Fraol-12/WhisperBox/internal/model"
	"github.com/Fraol-12/WhisperBox/internal/repository"
)

type voteKey struct {
	complaintID string
	voterID     string
}

// MemStore implements the complaint, vote and admin stores. A single mutex
// plays the role of the database's constraint checks.
type MemStore struct {
	mu         sync.Mutex
	complaints map[string]*model.Complaint
	tickets    map[string]string
	votes      map[voteKey]time.Time
	admins     map[string]*model.Admin

	// Now stamps CreatedAt. Defaults to time.Now.
	Now func() time.Time

	// Failure injection. A non-nil error is returned by the named call.
	InsertErr    error
	IncrementErr error
	VoteErr      error
	ListErr      error
}

func NewMemStore() *MemStore {
	return &MemStore{
		complaints: make(map[string]*model.Complaint),
		tickets:    make(map[string]string),
		votes:      make(map[voteKey]time.Time),
		admins:     make(map[string]*model.Admin),
		Now:        time.Now,
	}
}

func clone(c *model.Complaint) *model.Complaint {
	cp := *c
	cp.Photos = append([]string{}, c.Photos...)
	return &cp
}

func (m *MemStore) TicketExists(_ context.Context, ticketID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tickets[ticketID]
	return ok, nil
}

func (m *MemStore) Insert(_ context.Context, c *model.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	if _, taken := m.tickets[c.TicketID]; taken {
		return &repository.ConstraintError{Constraint: db.ConstraintTicketID, Err: repository.ErrDuplicate}
	}

	stored := clone(c)
	stored.ID = uuid.NewString()
	stored.Likes = 0
	stored.Status = model.StatusPending
	stored.Reply = ""
	stored.CreatedAt = m.Now().UTC()
	if stored.Photos == nil {
		stored.Photos = []string{}
	}
	m.complaints[stored.ID] = stored
	m.tickets[stored.TicketID] = stored.ID
	*c = *clone(stored)
	return nil
}

func (m *MemStore) FindByID(_ context.Context, id string) (*model.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(c), nil
}

func (m *MemStore) ListByDepartment(_ context.Context, q model.ListQuery) ([]model.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := []model.Complaint{}
	for _, c := range m.complaints {
		if c.Department != q.Department {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Message), search) {
			continue
		}
		out = append(out, *clone(c))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.SortBy != model.SortByDate && a.Likes != b.Likes {
			return a.Likes > b.Likes
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (m *MemStore) UpdateStatus(_ context.Context, id string, status model.Status) (*model.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Status = status
	return clone(c), nil
}

func (m *MemStore) UpdateReply(_ context.Context, id, reply string) (*model.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Reply = reply
	return clone(c), nil
}

func (m *MemStore) IncrementLikes(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IncrementErr != nil {
		return 0, m.IncrementErr
	}
	c, ok := m.complaints[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	c.Likes++
	return c.Likes, nil
}

func (m *MemStore) Stats(_ context.Context, department model.Department) (*model.DepartmentStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &model.DepartmentStats{StatusDistribution: make(map[model.Status]int)}
	for _, c := range m.complaints {
		if c.Department != department {
			continue
		}
		stats.StatusDistribution[c.Status]++
		stats.TotalComplaints++
		stats.TotalLikes += c.Likes
	}
	return stats, nil
}

// VoteLedger returns a view of m implementing the vote ledger, whose Insert
// would otherwise clash with the complaint Insert.
func (m *MemStore) VoteLedger() *MemVotes {
	return &MemVotes{m: m}
}

type MemVotes struct {
	m *MemStore
}

func (v *MemVotes) Insert(_ context.Context, complaintID, voterID string) error {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.VoteErr != nil {
		return m.VoteErr
	}
	if _, ok := m.complaints[complaintID]; !ok {
		return &repository.ConstraintError{Constraint: db.ConstraintVoteParent, Err: repository.ErrMissingParent}
	}
	k := voteKey{complaintID: complaintID, voterID: voterID}
	if _, dup := m.votes[k]; dup {
		return &repository.ConstraintError{Constraint: db.ConstraintVotePair, Err: repository.ErrDuplicate}
	}
	m.votes[k] = m.Now()
	return nil
}

func (v *MemVotes) Count(_ context.Context, complaintID string) (int, error) {
	return v.m.VoteCount(complaintID), nil
}

// VoteCount returns the number of ledger entries for a complaint.
func (m *MemStore) VoteCount(complaintID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.votes {
		if k.complaintID == complaintID {
			n++
		}
	}
	return n
}

// Admins returns a view of m implementing the admin store.
func (m *MemStore) Admins() *MemAdmins {
	return &MemAdmins{m: m}
}

type MemAdmins struct {
	m *MemStore
}

func (a *MemAdmins) FindByEmail(_ context.Context, email string) (*model.Admin, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	admin, ok := a.m.admins[model.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *admin
	return &cp, nil
}

func (a *MemAdmins) Upsert(_ context.Context, admin *model.Admin) error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	key := model.NormalizeEmail(admin.Email)
	if existing, ok := a.m.admins[key]; ok {
		if existing.Department != admin.Department {
			return &repository.ConstraintError{Constraint: db.ConstraintAdminEmail, Err: repository.ErrDuplicate}
		}
		admin.ID = existing.ID
		admin.CreatedAt = existing.CreatedAt
	} else {
		admin.ID = uuid.NewString()
		admin.CreatedAt = a.m.Now()
	}
	admin.Email = key
	cp := *admin
	a.m.admins[key] = &cp
	return nil
}
