package inmemdb

import (
	"context"
	"time"

	"github.com/shikshaconnect/shiksha/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserBySessionToken(_ context.Context, token string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.query() {
		if usr.HasSessionToken(token) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) AddSessionToken(_ context.Context, email, token string, lastLogin time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, usr := range repo.db.table {
		if usr.Email == email {
			if !usr.HasSessionToken(token) {
				usr.SessionTokens = append(usr.SessionTokens, token)
			}
			usr.LastLogin = lastLogin
			return nil
		}
	}
	return user.ErrNotFound
}

func (repo *userRepository) RemoveSessionToken(_ context.Context, id, token string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.ErrNotFound
	}
	tokens := usr.SessionTokens[:0]
	for _, t := range usr.SessionTokens {
		if t != token {
			tokens = append(tokens, t)
		}
	}
	usr.SessionTokens = tokens
	return nil
}

func (repo *userRepository) UpdateOrCreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, orig := range repo.db.table {
		if orig.Email == usr.Email {
			orig.Name = usr.Name
			orig.Role = usr.Role
			orig.SchoolID = usr.SchoolID
			orig.DistrictID = usr.DistrictID
			return *orig, nil
		}
	}
	repo.db.table[usr.ID] = &usr
	return usr, nil
}
