package log

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tilepan/internal/pubsub"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2025, 12, 6, 10, 45, 0, 0, time.UTC)

	got := Format(ts, LevelWarn, CatViewport, "reset", "x", 500, "y", 12.5)
	require.Equal(t, "2025-12-06T10:45:00 [WARN] [viewport] reset x=500 y=12.5", got)

	got = Format(ts, LevelDebug, CatDrag, "odd", "orphan")
	require.Equal(t, "2025-12-06T10:45:00 [DEBUG] [drag] odd orphan=<missing>", got)
}

func TestWriter_AndMinLevel(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf, 10)
	defer cleanup()

	Debug(CatGrid, "first")
	SetMinLevel(LevelWarn)
	Info(CatGrid, "filtered")
	ErrorErr(CatCatalog, "open failed", errors.New("no such file"))

	out := buf.String()
	require.Contains(t, out, "[DEBUG] [grid] first")
	require.NotContains(t, out, "filtered")
	require.Contains(t, out, "[ERROR] [catalog] open failed error=no such file")
}

func TestSetEnabled(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf, 10)
	defer cleanup()

	SetEnabled(false)
	Warn(CatUI, "hidden")
	SetEnabled(true)
	Warn(CatUI, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestRecentLogs_RingBuffer(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf, 3)
	defer cleanup()

	for _, msg := range []string{"a", "b", "c", "d"} {
		Info(CatContent, msg)
	}

	recent := GetRecentLogs()
	require.Len(t, recent, 3)
	require.True(t, strings.HasSuffix(recent[0], " b"))
	require.True(t, strings.HasSuffix(recent[2], " d"))

	ClearBuffer()
	require.Empty(t, GetRecentLogs())
}

func TestUninitialised(t *testing.T) {
	install(nil)
	Debug(CatGrid, "dropped")
	require.Nil(t, GetRecentLogs())
	require.Nil(t, NewListener(context.Background()))
	ClearBuffer()
}

func TestListener(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf, 10)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewListener(ctx)
	require.NotNil(t, l)

	Info(CatWatcher, "changed", "path", "tiles.yaml")

	ev, ok := l.Listen()().(pubsub.Event[string])
	require.True(t, ok)
	require.Equal(t, pubsub.LoggedEvent, ev.Type)
	require.Contains(t, ev.Payload, "path=tiles.yaml")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, LevelWarn, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestEnabledFromEnv(t *testing.T) {
	t.Setenv(EnvDebug, "1")
	require.True(t, EnabledFromEnv())
	t.Setenv(EnvDebug, "0")
	require.False(t, EnabledFromEnv())
	t.Setenv(EnvDebug, "")
	require.False(t, EnabledFromEnv())
}

func TestParse(t *testing.T) {
	ts := time.Date(2025, 12, 6, 10, 45, 0, 0, time.UTC)

	level, cat, ok := Parse(Format(ts, LevelError, CatCatalog, "open failed [x]", "path", "a.db"))
	require.True(t, ok)
	require.Equal(t, LevelError, level)
	require.Equal(t, CatCatalog, cat)

	_, _, ok = Parse("plain text")
	require.False(t, ok)
	_, _, ok = Parse("2025-12-06T10:45:00 [LOUD] [drag] x")
	require.False(t, ok)
}
