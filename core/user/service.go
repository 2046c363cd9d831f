package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/opel-edu/dashboard/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	errCredentialsRequired = "Email and password are required"
)

type (
	// Repository is the read-only user directory.
	Repository interface {
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate returns the user matching email and password.
// Email is matched exactly after trimming whitespace; the password is never trimmed.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	email = core.CleanString(email)
	if email == "" || pwd == "" {
		var flds []core.FieldError
		if email == "" {
			flds = append(flds, core.FieldError{Field: "email", Error: "this field is required"})
		}
		if pwd == "" {
			flds = append(flds, core.FieldError{Field: "password", Error: "this field is required"})
		}
		return User{}, core.NewValidationMessage(errCredentialsRequired, flds...)
	}

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "looking up user")
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email))
}
