package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/geocoder89/userhub/internal/db"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a real database: TEST_DB_DSN=postgres://... go test ./...
func setupUsersRepo(t *testing.T) *UsersRepo {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping postgres integration tests")
	}

	require.NoError(t, db.Migrate(dsn, "up"))

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	reset := func() {
		_, err := pool.Exec(context.Background(), `TRUNCATE users RESTART IDENTITY`)
		require.NoError(t, err)
	}
	reset()
	t.Cleanup(reset)

	return NewUsersRepo(pool, observability.NewProm(prometheus.NewRegistry()))
}

func TestUsersRepo_CreateGetDuplicate(t *testing.T) {
	r := setupUsersRepo(t)
	ctx := context.Background()

	u, err := r.Create(ctx, "A", "a@x.com", "hash", user.RoleUser)
	require.NoError(t, err)

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, user.RoleUser, got.Role)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.Create(ctx, "B", "a@x.com", "hash", user.RoleAdmin)
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = r.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = r.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_ListUpdateDelete(t *testing.T) {
	r := setupUsersRepo(t)
	ctx := context.Background()

	ids := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		u, err := r.Create(ctx, fmt.Sprintf("u%d", i), fmt.Sprintf("u%d@x.com", i), "h", user.RoleUser)
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	p, err := r.List(ctx, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Total)
	require.Len(t, p.Items, 2)
	assert.Equal(t, ids[5], p.Items[0].ID)
	assert.Equal(t, ids[6], p.Items[1].ID)

	p, err = r.List(ctx, 9, 5)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)

	// a page whose offset overflows int is still just past the end
	p, err = r.List(ctx, 3689348814741910324, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Total)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)

	name := "renamed"
	admin := user.RoleAdmin
	u, err := r.Update(ctx, ids[0], user.Patch{Name: &name, Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, "renamed", u.Name)
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.Equal(t, "u0@x.com", u.Email)

	taken := "u1@x.com"
	_, err = r.Update(ctx, ids[0], user.Patch{Email: &taken})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = r.Update(ctx, uuid.NewString(), user.Patch{Name: &name})
	assert.ErrorIs(t, err, user.ErrNotFound)

	require.NoError(t, r.Delete(ctx, ids[0]))
	assert.ErrorIs(t, r.Delete(ctx, ids[0]), user.ErrNotFound)
}
