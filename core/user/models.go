package user

import "time"

// Roles
const (
	RoleTeacher         = "teacher"
	RoleAdministrator   = "administrator"
	RoleDistrictOfficer = "district_officer"

	// DefaultRole is assigned on the first external-auth callback.
	DefaultRole = RoleTeacher
)

var AllRoles = []string{RoleTeacher, RoleAdministrator, RoleDistrictOfficer}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID            string    `json:"id" bson:"id"`
	Email         string    `json:"email" bson:"email"`
	Name          string    `json:"name" bson:"name"`
	Role          string    `json:"role" bson:"role"`
	SchoolID      string    `json:"school_id,omitempty" bson:"school_id,omitempty"`
	DistrictID    string    `json:"district_id,omitempty" bson:"district_id,omitempty"`
	SessionTokens []string  `json:"-" bson:"session_tokens"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"` // UTC
	LastLogin     time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
}

func (u *User) IsTeacher() bool         { return u.Role == RoleTeacher }
func (u *User) IsAdministrator() bool   { return u.Role == RoleAdministrator }
func (u *User) IsDistrictOfficer() bool { return u.Role == RoleDistrictOfficer }

// SchoolOrDefault returns the user's school, falling back to the fixed
// default school identifier when the user has none.
func (u *User) SchoolOrDefault(def string) string {
	if u.SchoolID != "" {
		return u.SchoolID
	}
	return def
}

func (u *User) HasSessionToken(token string) bool {
	for _, t := range u.SessionTokens {
		if t == token {
			return true
		}
	}
	return false
}
