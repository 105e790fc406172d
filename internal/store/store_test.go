package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitoPalumboPodcast/Invalsi/ent"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if !assert.NoError(t, err, "PRAGMA %s", tt.pragma) {
			continue
		}
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"kv", "llm_request_events", "session_events", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.KVRepo().Set(ctx, "k", "v1"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.KVRepo().Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestKVRepo(t *testing.T) {
	s := openTestStore(t)
	kv := s.KVRepo()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "invalsi_history", "[]"))
	require.NoError(t, kv.Set(ctx, "invalsi_history", `[{"id":"x"}]`))

	v, ok, err := kv.Get(ctx, "invalsi_history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"x"}]`, v, "last write wins")
}

func TestAppendEvent_Sequence(t *testing.T) {
	s := openTestStore(t)
	repo := &eventRepo{client: s.Client()}
	ctx := context.Background()

	last, err := repo.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)

	var seqs []int64
	for i := 0; i < 5; i++ {
		err := repo.appendEvent(ctx, func(_ *ent.Tx, seq int64) error {
			seqs = append(seqs, seq)
			return nil
		})
		require.NoError(t, err, "append %d", i)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, seqs)

	// A failed insert gives its number back.
	boom := errors.New("boom")
	err = repo.appendEvent(ctx, func(*ent.Tx, int64) error { return boom })
	assert.ErrorIs(t, err, boom)

	last, err = repo.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), last)
}

func TestAppendEvent_RejectsInvalidRow(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	// An empty session id fails ent validation inside the transaction.
	err := repo.AppendSessionEvent(ctx, SessionEventData{Action: SessionActionStart})
	require.Error(t, err)

	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Action: SessionActionStart}))
	got, err := repo.QuerySessionEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].Sequence)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "question-gen", InputTokens: 100, OutputTokens: 400, LatencyMs: 900, Success: true, RequestBody: "[user]\nciao", ResponseBody: `{"questions":[]}`},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "custom-text", InputTokens: 300, OutputTokens: 200, LatencyMs: 1100, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "question-gen", LatencyMs: 100, Success: false, ErrorMessage: "rate limit"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "gpt-4o-mini", all[0].Model, "newest first")
	assert.False(t, all[0].Success)
	assert.Equal(t, "rate limit", all[0].ErrorMessage)

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	gen, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen"})
	require.NoError(t, err)
	assert.Len(t, gen, 2)

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: all[2].Sequence})
	require.NoError(t, err)
	assert.Len(t, after, 2)

	first, err := repo.GetLLMEvent(ctx, all[2].ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "[user]\nciao", first.RequestBody)
	assert.Equal(t, `{"questions":[]}`, first.ResponseBody)
	assert.WithinDuration(t, time.Now(), first.Timestamp, time.Minute)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m1", Purpose: "a", InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m1", Purpose: "b", InputTokens: 5, OutputTokens: 5, LatencyMs: 300, Success: true}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m2", Purpose: "a", InputTokens: 1, OutputTokens: 2, LatencyMs: 200, Success: true}))

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	assert.Equal(t, []PurposeUsage{
		{Purpose: "a", Calls: 2, InputTokens: 11, OutputTokens: 22, AvgLatencyMs: 150},
		{Purpose: "b", Calls: 1, InputTokens: 5, OutputTokens: 5, AvgLatencyMs: 300},
	}, byPurpose)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ModelUsage{
		{Model: "m1", Calls: 2, InputTokens: 15, OutputTokens: 25},
		{Model: "m2", Calls: 1, InputTokens: 1, OutputTokens: 2},
	}, byModel)
}

func TestSessionEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{
		SessionID: "s1", Action: SessionActionStart, Subject: "Matematica",
		Grade: "Seconda Superiore (Grado 10)", Mode: "simulazione", Questions: 10,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m", Success: true}))
	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{
		SessionID: "s1", Action: SessionActionFinish, Subject: "Matematica", Questions: 10,
		CorrectAnswers: 7, DurationSecs: 600,
	}))

	got, err := repo.QuerySessionEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, SessionActionFinish, got[0].Action)
	assert.Equal(t, 7, got[0].CorrectAnswers)
	assert.Equal(t, SessionActionStart, got[1].Action)
	// The LLM event in between consumed a shared sequence number.
	assert.Equal(t, got[1].Sequence+2, got[0].Sequence)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("env override", func(t *testing.T) {
		p := filepath.Join(dir, "custom", "x.db")
		t.Setenv("INVALSI_DB", p)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.DirExists(t, filepath.Join(dir, "custom"))
	})

	t.Run("xdg data home", func(t *testing.T) {
		t.Setenv("INVALSI_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "invalsi", "invalsi.db"), got)
	})
}
