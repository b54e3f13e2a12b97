package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/geocoder89/userhub/internal/actorctx"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_StampsActor(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	ctx := actorctx.WithActor(context.Background(), actorctx.Actor{UserID: "u-1", Role: user.RoleAdmin})
	log.InfoContext(ctx, "profile_updated")
	log.DebugContext(ctx, "dropped at info level")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))

	assert.Equal(t, "profile_updated", rec["msg"])
	assert.Equal(t, "u-1", rec["actor_id"])
	assert.Equal(t, "userhub", rec["service"])
}

func TestObserveDB(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	require.NoError(t, p.ObserveDB("users.get", func() error { return nil }))
	assert.ErrorIs(t, p.ObserveDB("users.get", func() error { return user.ErrNotFound }), user.ErrNotFound)

	unique := &pgconn.PgError{Code: "23505"}
	assert.Error(t, p.ObserveDB("users.create", func() error { return unique }))
	assert.Error(t, p.ObserveDB("users.create", func() error { return errors.New("dial tcp: connection refused") }))

	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "connection")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.DbErrorsTotal), "not-found must not count as a db error")
}

func TestNilPromIsSafe(t *testing.T) {
	var p *Prom

	called := false
	require.NoError(t, p.ObserveDB("users.get", func() error { called = true; return nil }))
	assert.True(t, called)

	p.ObserveAuth("login", "ok")
}

func TestObserveAuth(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.ObserveAuth("login", "invalid_credentials")
	p.ObserveAuth("login", "invalid_credentials")
	p.ObserveAuth("signup", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.AuthAttempts.WithLabelValues("login", "invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.AuthAttempts.WithLabelValues("signup", "ok")))
}

func TestInitTracerDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
