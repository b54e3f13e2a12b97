package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo keeps users in process memory. Order of the ids slice is
// insertion order and drives List.
type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User // {"id": user}
	byEmail map[string]string    // {"email": id}
	ids     []string
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string, role user.Role) (user.User, error) {
	if !role.Valid() {
		return user.User{}, user.ErrInvalidRole
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.items[u.ID] = u
	r.byEmail[email] = u.ID
	r.ids = append(r.ids, u.ID)

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.items[id], nil
}

func (r *UsersRepo) List(ctx context.Context, page, pageSize int) (user.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.ids)
	offset := user.Offset(page, pageSize)

	out := make([]user.User, 0, pageSize)
	if offset < 0 || offset >= total {
		return user.Page{Items: out, Total: total}, nil
	}

	for i := offset; i < total && len(out) < pageSize; i++ {
		out = append(out, r.items[r.ids[i]])
	}

	return user.Page{Items: out, Total: total}, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	oldEmail := u.Email
	if patch.Email != nil && *patch.Email != oldEmail {
		if _, taken := r.byEmail[*patch.Email]; taken {
			return user.User{}, user.ErrEmailTaken
		}
	}

	if err := patch.Apply(&u, time.Now().UTC()); err != nil {
		return user.User{}, err
	}

	if u.Email != oldEmail {
		delete(r.byEmail, oldEmail)
		r.byEmail[u.Email] = id
	}
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)
	delete(r.byEmail, u.Email)

	for i, v := range r.ids {
		if v == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}

	return nil
}

// Ping always succeeds; it lets the memory store back readiness checks.
func (r *UsersRepo) Ping(ctx context.Context) error {
	return nil
}
