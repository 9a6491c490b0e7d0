package timesheet

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// WeeklyHoursCap is the approved hours a user may log in one week before new
// entries need an administrator's approval.
const WeeklyHoursCap = 70.0

// User.Password only holds a plaintext password from data written before
// hashing; it is replaced by PasswordHash on the user's next login.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Password     string    `json:"password,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Entry keeps copies of the user and project names as they were at creation.
type Entry struct {
	ID          string     `json:"id"`
	UserEmail   string     `json:"userEmail"`
	UserName    string     `json:"userName"`
	ProjectID   string     `json:"projectId"`
	ProjectName string     `json:"projectName,omitempty"`
	Week        string     `json:"week"`
	Hours       float64    `json:"hours"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ApprovedBy  *string    `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	RejectedBy  *string    `json:"rejectedBy,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`
}

// Snapshot is the whole aggregate as it is written to the key-value store.
type Snapshot struct {
	Users    map[string]User    `json:"users"`
	Projects map[string]Project `json:"projects"`
	Entries  map[string]Entry   `json:"entries"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:    make(map[string]User),
		Projects: make(map[string]Project),
		Entries:  make(map[string]Entry),
	}
}

// PublicUser is a User without its credentials.
type PublicUser struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
