package types

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin         Role = "admin"
	RolePartner       Role = "partner"
	RoleManager       Role = "manager"
	RoleSeniorAuditor Role = "senior_auditor"
	RoleJuniorAuditor Role = "junior_auditor"
)

var Roles = []Role{RoleAdmin, RolePartner, RoleManager, RoleSeniorAuditor, RoleJuniorAuditor}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	Role         Role      `db:"role" json:"role"`
	Department   *string   `db:"department" json:"department,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn"`
}
