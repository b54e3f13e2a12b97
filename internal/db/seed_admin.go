package db

import (
	"context"
	"errors"

	"github.com/geocoder89/userhub/internal/domain/user"
)

type AdminSeedStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, name, email, passwordHash string, role user.Role) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// EnsureAdminUser creates the bootstrap admin if it does not exist yet.
// It never touches an existing record. Returns true when a user was created.
func EnsureAdminUser(ctx context.Context, store AdminSeedStore, hasher PasswordHasher, seed AdminSeed) (bool, error) {
	if seed.Email == "" || seed.Password == "" {
		return false, nil
	}

	// check if the user exists

	_, err := store.GetByEmail(ctx, seed.Email)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := hasher.Hash(seed.Password)

	if err != nil {
		return false, err
	}

	name := seed.Name
	if name == "" {
		name = "Administrator"
	}

	_, err = store.Create(ctx, name, seed.Email, hash, user.RoleAdmin)

	// lost a race with another instance seeding the same admin
	if errors.Is(err, user.ErrEmailTaken) {
		return false, nil
	}

	return err == nil, err
}
