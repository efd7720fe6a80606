package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/portfoliohub/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5432"
	cfg.Database.User = "hub"
	cfg.Database.Password = "pw"
	cfg.Database.DBName = "portfolios"
	cfg.Database.MaxOpenConns = 12
	cfg.Database.MaxIdleConns = 3
	cfg.Database.ConnMaxLifetime = "30m"
	return cfg
}

func TestNewPoolConfig(t *testing.T) {
	pc, err := newPoolConfig(testConfig())
	require.NoError(t, err)

	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, 30*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, healthCheckPeriod, pc.HealthCheckPeriod)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, "portfolios", pc.ConnConfig.Database)
}

func TestNewPoolConfig_MinNeverExceedsMax(t *testing.T) {
	cfg := testConfig()
	cfg.Database.MaxOpenConns = 2
	cfg.Database.MaxIdleConns = 5

	pc, err := newPoolConfig(cfg)
	require.NoError(t, err)
	assert.LessOrEqual(t, pc.MinConns, pc.MaxConns)
}

func TestNewPoolConfig_BadLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.Database.ConnMaxLifetime = "a while"

	_, err := newPoolConfig(cfg)
	assert.Error(t, err)
}

// fakeTx records how a transaction ended. Only Commit and Rollback are used.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit(context.Context) error { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rolledBack = true; return nil }

type fakeBeginner struct{ tx *fakeTx }

func (b fakeBeginner) Begin(context.Context) (pgx.Tx, error) { return b.tx, nil }

func TestWithTransaction(t *testing.T) {
	tx := &fakeTx{}
	err := WithTransaction(context.Background(), fakeBeginner{tx}, func(ctx context.Context, _ pgx.Tx) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	tx = &fakeTx{}
	boom := errors.New("boom")
	err = WithTransaction(context.Background(), fakeBeginner{tx}, func(context.Context, pgx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	tx := &fakeTx{}
	assert.Panics(t, func() {
		_ = WithTransaction(context.Background(), fakeBeginner{tx}, func(context.Context, pgx.Tx) error {
			panic("bad")
		})
	})
	assert.True(t, tx.rolledBack)
}
