package orm

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskflow/config"
	"taskflow/logutils"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormLoggerLevels(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := &gormLogger{log: base, level: logger.Warn, slowThreshold: time.Second}
	ctx := context.Background()
	stmt := func() (string, int64) { return "INSERT INTO tasks", 0 }

	l.Trace(ctx, time.Now(), stmt, errors.New("FOREIGN KEY constraint failed"))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "INSERT INTO tasks", hook.LastEntry().Data["sql"])

	hook.Reset()
	l.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), stmt, nil)
	assert.Empty(t, hook.Entries, "fast and not-found statements stay quiet at warn")

	l.Trace(ctx, time.Now().Add(-2*time.Second), stmt, nil)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	hook.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), stmt, errors.New("boom"))
	assert.Empty(t, hook.Entries)
}

func TestOpenLogsFailedStatementsAsErrors(t *testing.T) {
	hook := test.NewLocal(logutils.Log)
	t.Cleanup(hook.Reset)

	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = MemoryDSN
	db, err := Open(cfg)
	require.NoError(t, err)

	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "sql failed", entry.Message)
}
