package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants for user authorization.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

var ValidRoles = []string{RoleUser, RoleModerator, RoleAdmin}

// Role ranks, ordered by privilege. Superusers rank as admins.
const (
	RankUser = iota
	RankModerator
	RankAdmin
)

func RoleRank(role string) int {
	switch role {
	case RoleAdmin:
		return RankAdmin
	case RoleModerator:
		return RankModerator
	default:
		return RankUser
	}
}

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email            string             `bson:"email" json:"email"`
	Username         string             `bson:"username" json:"username"`
	FirstName        string             `bson:"firstName,omitempty" json:"first_name,omitempty"`
	LastName         string             `bson:"lastName,omitempty" json:"last_name,omitempty"`
	Bio              string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Role             string             `bson:"role" json:"role"`
	IsSuperuser      bool               `bson:"isSuperuser,omitempty" json:"-"`
	ConfirmationCode string             `bson:"confirmationCode,omitempty" json:"-"` // bcrypt hash
	CreatedAt        time.Time          `bson:"createdAt" json:"created_at"`
}

func (u *User) Rank() int {
	if u.IsSuperuser {
		return RankAdmin
	}
	return RoleRank(u.Role)
}

// HasRank reports whether the user holds at least the given rank.
func (u *User) HasRank(min int) bool {
	return u.Rank() >= min
}

func (u *User) IsAdmin() bool {
	return u.HasRank(RankAdmin)
}

func (u *User) IsModerator() bool {
	return u.HasRank(RankModerator)
}
