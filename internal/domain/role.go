package domain

import "time"

// Role enumerates the account hierarchy, lowest authority first.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleOwner     Role = "owner"
)

// DefaultRole applies to any user without a ledger record.
const DefaultRole = RoleUser

// RoleOrder lists roles from lowest to highest rank.
var RoleOrder = []Role{RoleUser, RoleModerator, RoleAdmin, RoleDeveloper, RoleOwner}

var roleRank = map[Role]int{
	RoleUser:      0,
	RoleModerator: 1,
	RoleAdmin:     2,
	RoleDeveloper: 3,
	RoleOwner:     4,
}

// Rank returns the numeric position of the role in the hierarchy.
// Unknown values rank as the default role.
func (r Role) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return roleRank[DefaultRole]
}

// Valid reports whether the value is a recognized role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role ranks at or above the given role.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// CanActOn reports whether the actor strictly outranks the target. Role
// assignment requires this for both the granted role and the target's
// current role, so nobody can touch a rank at or above their own.
func CanActOn(actor, target Role) bool {
	return actor.Rank() > target.Rank()
}

// NormalizeRole maps arbitrary stored values onto a recognized role,
// falling back to the default rank.
func NormalizeRole(value string) Role {
	role := Role(value)
	if role.Valid() {
		return role
	}
	return DefaultRole
}

// RoleRecord is one ledger entry. At most one exists per user; absence
// implies the default role. Records are never deleted.
type RoleRecord struct {
	ID         string
	UserID     string
	Role       Role
	AssignedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
