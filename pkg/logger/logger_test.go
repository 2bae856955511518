package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func capture(t *testing.T, env string) *bytes.Buffer {
	t.Helper()
	prev := Log
	t.Cleanup(func() { Log = prev })
	var buf bytes.Buffer
	setup(&buf, env)
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func TestSetLevel(t *testing.T) {
	buf := capture(t, "production")

	Debug("hidden")
	require.NoError(t, SetLevel("debug"))
	Debug("shown")
	require.NoError(t, SetLevel("WARN"))
	Info("hidden too")
	Warn("warned")

	logged := lines(t, buf)
	require.Len(t, logged, 2)
	assert.Equal(t, "shown", logged[0]["msg"])
	assert.Equal(t, "warned", logged[1]["msg"])

	assert.Error(t, SetLevel("verbose"))
}

func TestFromContext(t *testing.T) {
	buf := capture(t, "production")

	assert.Same(t, Log, FromContext(context.Background()))

	ctx := NewContext(context.Background(), Log.With("request_id", "req-1"))
	FromContext(ctx).Info("scoped")

	logged := lines(t, buf)
	require.Len(t, logged, 1)
	assert.Equal(t, "req-1", logged[0]["request_id"])
}

func TestGormLogger_Trace(t *testing.T) {
	buf := capture(t, "production")
	ctx := NewContext(context.Background(), Log.With("request_id", "req-2"))
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl := NewGormLogger(gormlogger.Warn, 100*time.Millisecond)

	gl.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	gl.Trace(ctx, time.Now(), sql, nil)
	assert.Empty(t, buf.String())

	gl.Trace(ctx, time.Now(), sql, errors.New("connection reset"))
	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)

	logged := lines(t, buf)
	require.Len(t, logged, 2)
	assert.Equal(t, "SQL error", logged[0]["msg"])
	assert.Equal(t, "connection reset", logged[0]["error"])
	assert.Equal(t, "req-2", logged[0]["request_id"])
	assert.Equal(t, "Slow SQL", logged[1]["msg"])
	assert.Equal(t, "SELECT 1", logged[1]["sql"])

	buf.Reset()
	gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Empty(t, buf.String())
}
