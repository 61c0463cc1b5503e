package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fraol-12/WhisperBox/internal/model"
)

type ComplaintRepo struct {
	pool *pgxpool.Pool
	timeouts
}

func NewComplaintRepo(pool *pgxpool.Pool, timeout time.Duration) *ComplaintRepo {
	return &ComplaintRepo{pool: pool, timeouts: timeouts{d: timeout}}
}

const complaintColumns = `id::text, department, message, photos, likes, status, ticket_id, reply, created_at`

func scanComplaint(row pgx.Row) (*model.Complaint, error) {
	var c model.Complaint
	var department, status string
	err := row.Scan(
		&c.ID, &department, &c.Message, &c.Photos, &c.Likes,
		&status, &c.TicketID, &c.Reply, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Department = model.Department(department)
	c.Status = model.Status(status)
	if c.Photos == nil {
		c.Photos = []string{}
	}
	return &c, nil
}

// TicketExists reports whether a complaint already carries ticketID.
func (r *ComplaintRepo) TicketExists(ctx context.Context, ticketID string) (bool, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM complaints WHERE ticket_id = $1)`, ticketID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ticket id: %w", classify(err))
	}
	return exists, nil
}

// Insert stores c and fills in the store-assigned ID, Likes, Status, Reply
// and CreatedAt. A ticket id collision surfaces as ErrDuplicate.
func (r *ComplaintRepo) Insert(ctx context.Context, c *model.Complaint) error {
	ctx, cancel := r.with(ctx)
	defer cancel()

	photos := c.Photos
	if photos == nil {
		photos = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO complaints (department, message, photos, ticket_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+complaintColumns,
		string(c.Department), c.Message, photos, c.TicketID)

	stored, err := scanComplaint(row)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", classify(err))
	}
	*c = *stored
	return nil
}

// FindByID returns one complaint by id.
func (r *ComplaintRepo) FindByID(ctx context.Context, id string) (*model.Complaint, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	c, err := scanComplaint(r.pool.QueryRow(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("find complaint: %w", classify(err))
	}
	return c, nil
}

// orderClause returns a total order so listings are deterministic.
func orderClause(sortBy string) string {
	if sortBy == model.SortByDate {
		return `ORDER BY created_at DESC, id DESC`
	}
	return `ORDER BY likes DESC, created_at DESC, id DESC`
}

// ListByDepartment returns the department's complaints, optionally filtered
// by a case-insensitive substring of the message.
func (r *ComplaintRepo) ListByDepartment(ctx context.Context, q model.ListQuery) ([]model.Complaint, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	query := `
		SELECT ` + complaintColumns + `
		FROM complaints
		WHERE department = $1
		  AND ($2 = '' OR strpos(lower(message), lower($2)) > 0)
		` + orderClause(q.SortBy)

	rows, err := r.pool.Query(ctx, query, string(q.Department), strings.TrimSpace(q.Search))
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", classify(err))
	}
	defer rows.Close()

	complaints := []model.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list complaints: %w", classify(err))
	}
	return complaints, nil
}

// UpdateStatus sets the status and returns the updated row.
func (r *ComplaintRepo) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Complaint, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	c, err := scanComplaint(r.pool.QueryRow(ctx, `
		UPDATE complaints SET status = $2 WHERE id = $1
		RETURNING `+complaintColumns, id, string(status)))
	if err != nil {
		return nil, fmt.Errorf("update status: %w", classify(err))
	}
	return c, nil
}

// UpdateReply overwrites the admin reply and returns the updated row.
func (r *ComplaintRepo) UpdateReply(ctx context.Context, id, reply string) (*model.Complaint, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	c, err := scanComplaint(r.pool.QueryRow(ctx, `
		UPDATE complaints SET reply = $2 WHERE id = $1
		RETURNING `+complaintColumns, id, reply))
	if err != nil {
		return nil, fmt.Errorf("update reply: %w", classify(err))
	}
	return c, nil
}

// IncrementLikes bumps the counter in a single statement so concurrent
// callers never lose updates.
func (r *ComplaintRepo) IncrementLikes(ctx context.Context, id string) (int, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	var likes int
	err := r.pool.QueryRow(ctx, `
		UPDATE complaints SET likes = likes + 1 WHERE id = $1
		RETURNING likes`, id).Scan(&likes)
	if err != nil {
		return 0, fmt.Errorf("increment likes: %w", classify(err))
	}
	return likes, nil
}

// Stats aggregates complaint counts per status and the like total for a
// department.
func (r *ComplaintRepo) Stats(ctx context.Context, department model.Department) (*model.DepartmentStats, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(likes), 0)
		FROM complaints
		WHERE department = $1
		GROUP BY status`, string(department))
	if err != nil {
		return nil, fmt.Errorf("complaint stats: %w", classify(err))
	}
	defer rows.Close()

	stats := &model.DepartmentStats{StatusDistribution: make(map[model.Status]int)}
	for rows.Next() {
		var status string
		var count, likes int
		if err := rows.Scan(&status, &count, &likes); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.StatusDistribution[model.Status(status)] = count
		stats.TotalComplaints += count
		stats.TotalLikes += likes
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("complaint stats: %w", classify(err))
	}
	return stats, nil
}
