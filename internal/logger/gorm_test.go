package logger_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/logger"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// captureLogs points the global logger at a buffer for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func query() (string, int64) { return "SELECT * FROM orders", 0 }

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("record not found is not logged", func(t *testing.T) {
		buf := captureLogs(t)
		logger.NewGormLogger(time.Second).Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
		assert.Empty(t, buf.String())
	})

	t.Run("driver error is logged with the statement", func(t *testing.T) {
		buf := captureLogs(t)
		logger.NewGormLogger(time.Second).Trace(ctx, time.Now(), query, errors.New("connection reset"))
		assert.Contains(t, buf.String(), `"level":"error"`)
		assert.Contains(t, buf.String(), "connection reset")
		assert.Contains(t, buf.String(), "SELECT * FROM orders")
	})

	t.Run("slow query is a warning", func(t *testing.T) {
		buf := captureLogs(t)
		logger.NewGormLogger(time.Millisecond).Trace(ctx, time.Now().Add(-time.Second), query, nil)
		assert.Contains(t, buf.String(), `"level":"warn"`)
	})

	t.Run("fast query is quiet at warn level", func(t *testing.T) {
		buf := captureLogs(t)
		logger.NewGormLogger(time.Second).Trace(ctx, time.Now(), query, nil)
		assert.Empty(t, buf.String())
	})

	t.Run("info mode logs every statement", func(t *testing.T) {
		buf := captureLogs(t)
		logger.NewGormLogger(time.Second).LogMode(gormlogger.Info).Trace(ctx, time.Now(), query, nil)
		assert.Contains(t, buf.String(), `"level":"debug"`)
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		buf := captureLogs(t)
		logger.NewGormLogger(time.Second).LogMode(gormlogger.Silent).Trace(ctx, time.Now(), query, errors.New("boom"))
		assert.Empty(t, buf.String())
	})
}
