package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/config"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "file.db?mode=ro", sqliteDSN("file.db?mode=ro"))
	assert.Equal(t, "clinic.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("clinic.db"))
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"}, nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrate_CreatesTables(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(db, zap.NewNop()))

	for _, table := range []string{"patients", "doctors", "appointments", "activity_log"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("appointments", "idx_appointments_doctor_date"))

	require.NoError(t, Migrate(db, zap.NewNop()), "migrations are idempotent")
}

func TestInstrument_ObservesQueries(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(db, zap.NewNop()))

	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "q"}, []string{"operation", "table"})
	require.NoError(t, Instrument(db, hist))

	var n int64
	require.NoError(t, db.Table("patients").Count(&n).Error)

	assert.Equal(t, 1, testutil.CollectAndCount(hist))
}

func TestZapLogger_SlowQueryWarns(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core), 10*time.Millisecond)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "slow query", entry.Message)
}

func TestZapLogger_IgnoresRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core), time.Hour)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT", 0 }, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT", 0 }, errors.New("disk I/O error"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "query failed", logs.All()[0].Message)
}

func TestZapLogger_SilentMode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core), time.Millisecond).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT", 0 }, errors.New("boom"))
	assert.Zero(t, logs.Len())
}
