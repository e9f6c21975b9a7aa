package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core"
)

var (
	ErrNotFound = errors.New("user not found")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserBySessionToken(ctx context.Context, token string) (User, error)
		// AddSessionToken appends a token to the user's session set and stamps lastLogin.
		AddSessionToken(ctx context.Context, email, token string, lastLogin time.Time) error
		// RemoveSessionToken removes a token from the user's session set; a missing
		// token is a no-op.
		RemoveSessionToken(ctx context.Context, id, token string) error
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

// GetBySessionToken resolves the caller identity for an opaque session token.
func (svc *Service) GetBySessionToken(ctx context.Context, token string) (User, error) {
	return svc.repo.GetUserBySessionToken(ctx, token)
}

// StartSession records an external-auth callback: the first callback for an
// email creates the user with the default role; later callbacks append the
// session token (idempotently) and stamp LastLogin. Users are never hard-deleted.
func (svc *Service) StartSession(ctx context.Context, data core.SessionData) (User, error) {
	email := core.CleanString(data.Email, true /* lower */)

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return User{}, errors.Wrap(err, "finding user by email")
		}
		now := time.Now().UTC()
		usr = User{
			ID:            uuid.New().String(),
			Email:         email,
			Name:          core.CleanString(data.Name),
			Role:          DefaultRole,
			SessionTokens: []string{data.SessionToken},
			CreatedAt:     now,
			LastLogin:     now,
		}
		return svc.repo.CreateUser(ctx, usr)
	}

	if !usr.HasSessionToken(data.SessionToken) {
		now := time.Now().UTC()
		if err = svc.repo.AddSessionToken(ctx, email, data.SessionToken, now); err != nil {
			return User{}, errors.Wrap(err, "adding session token")
		}
		usr.SessionTokens = append(usr.SessionTokens, data.SessionToken)
		usr.LastLogin = now
	}
	return usr, nil
}

// EndSession invalidates a single session token.
func (svc *Service) EndSession(ctx context.Context, id, token string) error {
	return svc.repo.RemoveSessionToken(ctx, id, token)
}

// UpdateOrCreate assigns role/school/district; used by the admin CLI.
func (svc *Service) UpdateOrCreate(ctx context.Context, usr User) (User, error) {
	usr.Email = core.CleanString(usr.Email, true /* lower */)
	usr.Name = core.CleanString(usr.Name)
	if usr.Role == "" {
		usr.Role = DefaultRole
	}
	if !IsValidRole(usr.Role) {
		return User{}, core.NewValidationError(
			errors.New("invalid role"),
			core.FieldError{Field: "role", Error: "must be one of: teacher, administrator, district_officer"},
		)
	}
	if usr.ID == "" {
		usr.ID = uuid.New().String()
		usr.CreatedAt = time.Now().UTC()
	}
	return svc.repo.UpdateOrCreateUser(ctx, usr)
}
