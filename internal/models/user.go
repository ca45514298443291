package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role tiers, ascending. Trusted authors skip the moderation queue.
const (
	RoleUser       = "user"
	RoleTrusted    = "trusted"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

var roleRanks = map[string]int{
	RoleUser:       0,
	RoleTrusted:    1,
	RoleModerator:  2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// RoleRank returns the numeric tier of a role. Unknown roles rank below user.
func RoleRank(role string) int {
	if r, ok := roleRanks[role]; ok {
		return r
	}
	return -1
}

// RoleAtLeast reports whether role meets or exceeds min.
func RoleAtLeast(role, min string) bool {
	return RoleRank(role) >= RoleRank(min)
}

type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Name      string         `gorm:"size:100" json:"name"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
