package domain

import (
	"fmt"
	"strings"
)

// Role access level. Higher rank includes every permission of the lower ones.
type Role string

const (
	RoleDoorUser  Role = "door-user"
	RoleAdmin     Role = "admin"
	RoleMainAdmin Role = "main-admin"
)

// Rank door-user=0, admin=1, main-admin=2; unknown roles rank below door-user.
func (r Role) Rank() int {
	switch r {
	case RoleDoorUser:
		return 0
	case RoleAdmin:
		return 1
	case RoleMainAdmin:
		return 2
	default:
		return -1
	}
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= 0 && r.Rank() >= min.Rank()
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// ParseRole accepts the canonical names plus the legacy spellings used by older clients.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "door-user", "door_user", "doorusers", "dooruser", "user":
		return RoleDoorUser, nil
	case "admin":
		return RoleAdmin, nil
	case "main-admin", "main_admin", "mainadmin":
		return RoleMainAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User an account allowed to use the tracker.
type User struct {
	ID           string `db:"user_id" json:"_id"`
	Username     string `db:"username" json:"username"`
	PasswordHash []byte `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role"`
	Door         string `db:"door" json:"door,omitempty"` // door-users only, optional
}

// CanUseDoor reports whether u may register at or read the recent list of door.
// Admins and unassigned door-users are not restricted.
func (u *User) CanUseDoor(door string) bool {
	if u == nil || u.Role.AtLeast(RoleAdmin) || u.Door == "" {
		return true
	}
	return strings.TrimSpace(door) == u.Door
}
