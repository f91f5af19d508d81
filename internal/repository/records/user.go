package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/bayoubeans/coffee-orders/internal/recordstore"
	"github.com/bayoubeans/coffee-orders/internal/repository"
)

const (
	fieldUserName = "userName"
	fieldPassword = "password"
)

type UserRepo struct {
	store recordstore.Store
}

func NewUserRepo(store recordstore.Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) FetchByName(ctx context.Context, userName string) (*repository.User, error) {
	rec, err := r.store.Get(ctx, recordstore.UsersCollection, userName)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userName, err)
	}

	return &repository.User{
		UserName: rec[fieldUserName],
		Password: rec[fieldPassword],
	}, nil
}

// CreateUser stores a credential record. Used by the startup admin seed; the
// stored secret is whatever the configured verifier expects (plaintext or a
// bcrypt hash).
func (r *UserRepo) CreateUser(ctx context.Context, userName, password string) error {
	rec := recordstore.Record{
		fieldUserName: userName,
		fieldPassword: password,
	}
	if err := r.store.Put(ctx, recordstore.UsersCollection, userName, rec); err != nil {
		return fmt.Errorf("failed to create user %s: %w", userName, err)
	}
	return nil
}
