package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chat/internal/config"
	"support-chat/internal/history"
	"support-chat/internal/storage"
)

func TestOpenStore_Memory(t *testing.T) {
	a := &app{cfg: &config.Config{StorageBackend: config.StorageMemory}, log: zerolog.Nop()}

	store, err := a.openStore(context.Background())
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &history.Manager{}, store)

	ctx := context.Background()
	require.NoError(t, store.PutTranscript(ctx, "s1", "\nUser: hi\nBot: hello"))
	assert.Equal(t, "\nUser: hi\nBot: hello", store.GetTranscript(ctx, "s1"))
}

func TestOpenStore_PostgresWithoutURL(t *testing.T) {
	a := &app{cfg: &config.Config{StorageBackend: config.StoragePostgres}, log: zerolog.Nop()}

	_, err := a.openStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLogDailyReport(t *testing.T) {
	rec, err := storage.NewFileRecorder(filepath.Join(t.TempDir(), "logs", "log.jsonl"))
	require.NoError(t, err)

	day := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	events := []storage.Event{
		{Timestamp: day.Add(-time.Hour), SessionID: "s1", UserMessage: "hi", AssistantResponse: "hello"},
		{Timestamp: day, SessionID: "s2", UserMessage: "refund", AssistantResponse: "a human will help", Escalated: true},
		{Timestamp: day.Add(-24 * time.Hour), SessionID: "s3", UserMessage: "yesterday", AssistantResponse: "ok"},
	}
	for _, ev := range events {
		require.NoError(t, rec.AppendInteraction(ev))
	}

	var buf bytes.Buffer
	a := &app{cfg: &config.Config{}, log: zerolog.New(&buf)}
	require.NoError(t, a.logDailyReport(rec, day))

	out := buf.String()
	assert.Contains(t, out, `"date":"2026-10-14"`)
	assert.Contains(t, out, `"messages":2`)
	assert.Contains(t, out, `"sessions":2`)
	assert.Contains(t, out, `"escalations":1`)
	assert.Contains(t, out, "Support chat usage for 2026-10-14")
}

func TestLogDailyReport_LoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	rec, err := storage.NewFileRecorder(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	a := &app{cfg: &config.Config{}, log: zerolog.Nop()}
	assert.Error(t, a.logDailyReport(rec, time.Now().UTC()))
}
