package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

type UsersRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

// NewUsersRepo wires the repo; metrics may be nil.
func NewUsersRepo(pool *pgxpool.Pool, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, metrics: metrics}
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

	err := r.metrics.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.CreatedAt, u.UpdatedAt,
		)
		return mapWriteErr(err)
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	// ids are uuids; anything else cannot exist and would only provoke a cast error
	if uuid.Validate(id) != nil {
		return user.User{}, user.ErrNotFound
	}

	var u user.User

	err := r.metrics.ObserveDB("users.get_by_id", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
		), &u)
	})

	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.metrics.ObserveDB("users.get_by_email", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
		), &u)
	})

	return u, err
}

func (r *UsersRepo) List(ctx context.Context, page, pageSize int) (user.Page, error) {
	out := user.Page{Items: make([]user.User, 0, pageSize)}

	err := r.metrics.ObserveDB("users.list", func() error {
		err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&out.Total)
		if err != nil {
			return err
		}

		offset := user.Offset(page, pageSize)
		if offset >= out.Total {
			return nil
		}

		// seq is an identity column, so this is insertion order
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+`
			FROM users
			ORDER BY seq ASC
			LIMIT $1 OFFSET $2`,
			pageSize, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u user.User
			if err := scanUser(rows, &u); err != nil {
				return err
			}
			out.Items = append(out.Items, u)
		}

		return rows.Err()
	})

	if err != nil {
		return user.Page{}, err
	}

	return out, nil
}

// Update applies the patch inside a transaction holding the row lock, so
// concurrent writers to the same user serialize (last write wins).
func (r *UsersRepo) Update(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	if uuid.Validate(id) != nil {
		return user.User{}, user.ErrNotFound
	}

	var u user.User

	err := r.metrics.ObserveDB("users.update", func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		err = scanUser(tx.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id,
		), &u)
		if err != nil {
			return err
		}

		err = patch.Apply(&u, time.Now().UTC())
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE users
			SET email = $2,
				password_hash = $3,
				name = $4,
				role = $5,
				updated_at = $6
			WHERE id = $1`,
			u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.UpdatedAt,
		)
		if err != nil {
			return mapWriteErr(err)
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return user.ErrNotFound
	}

	return r.metrics.ObserveDB("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanUser(row pgx.Row, u *user.User) error {
	var role string

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}

		return err
	}

	u.Role = user.Role(role)
	return nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return user.ErrEmailTaken
	}
	return err
}
