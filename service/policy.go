package service

import (
	"github.com/mishastik78/yamdb-final/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fixed denial messages. Policy failures never say which field or check
// failed beyond these.
const (
	MsgAdminsOnly = "admins only."
	MsgDenied     = "you do not have permission to perform this action."
)

// CanManageUsers gates the user-administration resource: list, create,
// update and delete of arbitrary users.
func CanManageUsers(actor *models.User) bool {
	return actor != nil && actor.IsAdmin()
}

// CanWriteCatalog gates create/update/delete of categories, genres and
// titles. Reads stay public.
func CanWriteCatalog(actor *models.User) bool {
	return actor != nil && actor.IsAdmin()
}

// CanModifyAuthored gates update/delete of an existing review or comment:
// the author themselves, or anyone of moderator rank and above. Creation is
// not gated by this rule.
func CanModifyAuthored(actor *models.User, authorID primitive.ObjectID) bool {
	if actor == nil {
		return false
	}
	return actor.ID == authorID || actor.IsModerator()
}
