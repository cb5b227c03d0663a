package models

import "time"

// UserRole represents the available roles for scope-based access control.
type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleHead         UserRole = "head"
	RoleTeacher      UserRole = "teacher"
	RoleOfficeMember UserRole = "office_member"
)

// User represents an application user stored in the users table.
// Head users carry a contiguous grade band (e.g. "3-4") and a single
// track; both are empty for every other role.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	GradeBand    string     `db:"grade_band" json:"grade_band,omitempty"`
	Track        CourseType `db:"track" json:"track,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserScope is the access scope derived from a user's role assignment.
// GradeBand and Track are empty when the role is unrestricted.
type UserScope struct {
	UserID    string     `json:"user_id"`
	Role      UserRole   `json:"role"`
	GradeBand string     `json:"grade_band,omitempty"`
	Track     CourseType `json:"track,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
