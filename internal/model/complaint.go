package model

import (
	"strings"
	"time"
)

// Department is one of the fixed campus departments complaints are filed against.
type Department string

const (
	DepartmentCafe      Department = "Cafe"
	DepartmentIT        Department = "IT"
	DepartmentLibrary   Department = "Library"
	DepartmentDorm      Department = "Dorm"
	DepartmentRegistrar Department = "Registrar"
)

// Departments lists every valid department in display order.
var Departments = []Department{
	DepartmentCafe,
	DepartmentIT,
	DepartmentLibrary,
	DepartmentDorm,
	DepartmentRegistrar,
}

// ParseDepartment returns the canonical department for s. The accented
// spelling "Café" used by older clients maps to Cafe.
func ParseDepartment(s string) (Department, bool) {
	s = strings.TrimSpace(s)
	if s == "Café" {
		return DepartmentCafe, true
	}
	for _, d := range Departments {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// Status is the triage state of a complaint.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

// ParseStatus accepts the three status values, plus "InProgress" as an
// alias of "In Progress".
func ParseStatus(s string) (Status, bool) {
	switch strings.TrimSpace(s) {
	case string(StatusPending):
		return StatusPending, true
	case string(StatusInProgress), "InProgress":
		return StatusInProgress, true
	case string(StatusResolved):
		return StatusResolved, true
	}
	return "", false
}

// Sort orders for department listings.
const (
	SortByLikes = "likes"
	SortByDate  = "date"
)

// MaxPhotos is the most attachments a single complaint may carry.
const MaxPhotos = 4

// Complaint is a single filed complaint.
type Complaint struct {
	ID         string     `json:"id"`
	Department Department `json:"department"`
	Message    string     `json:"message"`
	Photos     []string   `json:"photos"`
	Likes      int        `json:"likes"`
	Status     Status     `json:"status"`
	TicketID   string     `json:"ticketId"`
	Reply      string     `json:"reply"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ListQuery selects and orders complaints of one department.
type ListQuery struct {
	Department Department
	SortBy     string
	Search     string
}

// DepartmentStats is the aggregate view shown on the admin dashboard.
type DepartmentStats struct {
	StatusDistribution map[Status]int `json:"statusDistribution"`
	TotalComplaints    int            `json:"totalComplaints"`
	TotalLikes         int            `json:"totalLikes"`
}

// ComplaintRequest is the JSON form of a complaint submission. Multipart
// submissions carry the same fields as form values.
type ComplaintRequest struct {
	Department string `json:"department" form:"department"`
	Message    string `json:"message" form:"message"`
}

// ComplaintCreatedResponse is returned by POST /api/complaints.
type ComplaintCreatedResponse struct {
	Message   string     `json:"message"`
	TicketID  string     `json:"ticketId"`
	Complaint *Complaint `json:"complaint"`
}

// StatusRequest is the body of PUT /api/admin/complaints/:id/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// ReplyRequest is the body of PUT /api/admin/complaints/:id/reply.
type ReplyRequest struct {
	Reply string `json:"reply"`
}

// ComplaintUpdatedResponse is returned by the admin mutation endpoints.
type ComplaintUpdatedResponse struct {
	Message   string     `json:"message"`
	Complaint *Complaint `json:"complaint"`
}
