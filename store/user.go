package store

import (
	"context"
	"errors"

	"github.com/mishastik78/yamdb-final/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail reports a violation of the unique email index: another
// insert for the same address won the race.
var ErrDuplicateEmail = errors.New("duplicate user email")

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := db.Users().InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, ErrDuplicateEmail
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := db.Users().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserFields holds the client-writable profile fields for a partial update.
// Nil pointers leave the stored value untouched.
type UserFields struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

func (db *DB) UpdateUser(ctx context.Context, id primitive.ObjectID, fields UserFields) error {
	updates := bson.M{}
	if fields.Email != nil {
		updates["email"] = *fields.Email
	}
	if fields.Username != nil {
		updates["username"] = *fields.Username
	}
	if fields.FirstName != nil {
		updates["firstName"] = *fields.FirstName
	}
	if fields.LastName != nil {
		updates["lastName"] = *fields.LastName
	}
	if fields.Bio != nil {
		updates["bio"] = *fields.Bio
	}
	if fields.Role != nil {
		updates["role"] = *fields.Role
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	return err
}

func (db *DB) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Users().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// SetConfirmationCode stores the bcrypt hash of a freshly issued code,
// overwriting any previous one.
func (db *DB) SetConfirmationCode(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"confirmationCode": hash}})
	return err
}

func (db *DB) ClearConfirmationCode(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$unset": bson.M{"confirmationCode": ""}})
	return err
}

// UsernamesByIDs resolves author ids to usernames for list responses.
func (db *DB) UsernamesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	cur, err := db.Users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
