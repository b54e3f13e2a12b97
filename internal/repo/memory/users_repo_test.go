package memory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	u, err := r.Create(ctx, "A", "a@x.com", "hash", user.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, byID)

	byEmail, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = r.GetByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, user.ErrNotFound, "email lookup is case-sensitive")

	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	_, err := r.Create(ctx, "A", "a@x.com", "h1", user.RoleUser)
	require.NoError(t, err)

	_, err = r.Create(ctx, "B", "a@x.com", "h2", user.RoleAdmin)
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestUsersRepo_CreateRejectsUnknownRole(t *testing.T) {
	_, err := NewUsersRepo().Create(context.Background(), "A", "a@x.com", "h", user.Role("root"))
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestUsersRepo_ListPagesInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	for i := 0; i < 12; i++ {
		_, err := r.Create(ctx, fmt.Sprintf("u%02d", i), fmt.Sprintf("u%02d@x.com", i), "h", user.RoleUser)
		require.NoError(t, err)
	}

	tests := []struct {
		page      int
		wantNames []string
	}{
		{page: 1, wantNames: []string{"u00", "u01", "u02", "u03", "u04"}},
		{page: 0, wantNames: []string{"u00", "u01", "u02", "u03", "u04"}},
		{page: -4, wantNames: []string{"u00", "u01", "u02", "u03", "u04"}},
		{page: 3, wantNames: []string{"u10", "u11"}},
		{page: 4, wantNames: []string{}},
		{page: 3689348814741910324, wantNames: []string{}},
		{page: math.MaxInt, wantNames: []string{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			p, err := r.List(ctx, tt.page, 5)
			require.NoError(t, err)
			assert.Equal(t, 12, p.Total)

			names := make([]string, 0, len(p.Items))
			for _, u := range p.Items {
				names = append(names, u.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestUsersRepo_Update(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	a, err := r.Create(ctx, "A", "a@x.com", "h", user.RoleUser)
	require.NoError(t, err)
	_, err = r.Create(ctx, "B", "b@x.com", "h", user.RoleUser)
	require.NoError(t, err)

	taken := "b@x.com"
	_, err = r.Update(ctx, a.ID, user.Patch{Email: &taken})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	newEmail := "a2@x.com"
	admin := user.RoleAdmin
	updated, err := r.Update(ctx, a.ID, user.Patch{Email: &newEmail, Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, "a2@x.com", updated.Email)
	assert.Equal(t, user.RoleAdmin, updated.Role)
	assert.Equal(t, "A", updated.Name)

	_, err = r.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, user.ErrNotFound, "old email should be released")

	_, err = r.Create(ctx, "C", "a@x.com", "h", user.RoleUser)
	assert.NoError(t, err)

	_, err = r.Update(ctx, "missing", user.Patch{Email: &newEmail})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	a, err := r.Create(ctx, "A", "a@x.com", "h", user.RoleUser)
	require.NoError(t, err)
	b, err := r.Create(ctx, "B", "b@x.com", "h", user.RoleUser)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, a.ID))
	assert.ErrorIs(t, r.Delete(ctx, a.ID), user.ErrNotFound)

	_, err = r.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)

	p, err := r.List(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, b.ID, p.Items[0].ID)
}

func TestUsersRepo_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create(ctx, "A", "same@x.com", "h", user.RoleUser); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
