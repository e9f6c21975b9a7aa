package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shikshaconnect/shiksha/core/user"
)

type userRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *mongo.Database) *userRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.coll.InsertOne(ctx, usr); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.coll.FindOne(ctx, bson.M{"email": email}).Decode(&usr)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	return usr, nil
}

func (repo *userRepository) GetUserBySessionToken(ctx context.Context, token string) (user.User, error) {
	var usr user.User
	err := repo.coll.FindOne(ctx, bson.M{"session_tokens": token}).Decode(&usr)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by session token")
	}
	return usr, nil
}

func (repo *userRepository) AddSessionToken(ctx context.Context, email, token string, lastLogin time.Time) error {
	res, err := repo.coll.UpdateOne(
		ctx,
		bson.M{"email": email},
		bson.M{
			"$addToSet": bson.M{"session_tokens": token},
			"$set":      bson.M{"last_login": lastLogin},
		},
	)
	if err != nil {
		return errors.Wrap(err, "adding session token")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) RemoveSessionToken(ctx context.Context, id, token string) error {
	res, err := repo.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$pull": bson.M{"session_tokens": token}},
	)
	if err != nil {
		return errors.Wrap(err, "removing session token")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	var orig user.User
	err := repo.coll.FindOne(ctx, bson.M{"email": usr.Email}).Decode(&orig)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return repo.CreateUser(ctx, usr)
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}

	_, err = repo.coll.UpdateOne(
		ctx,
		bson.M{"email": usr.Email},
		bson.M{"$set": bson.M{
			"name":        usr.Name,
			"role":        usr.Role,
			"school_id":   usr.SchoolID,
			"district_id": usr.DistrictID,
		}},
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	orig.Name = usr.Name
	orig.Role = usr.Role
	orig.SchoolID = usr.SchoolID
	orig.DistrictID = usr.DistrictID
	return orig, nil
}
