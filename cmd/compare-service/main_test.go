package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config {
	t.Helper()
	dir := t.TempDir()
	return config{
		uploadDir:        filepath.Join(dir, "uploads"),
		maxUploadBytes:   1 << 20,
		modelProvider:    "anthropic",
		modelMaxTokens:   100,
		modelTimeout:     time.Second,
		anthropicBaseURL: "http://127.0.0.1:1",
		notionBaseURL:    "http://127.0.0.1:1",
		notionPageSize:   100,
		notionTimeout:    time.Second,
		historyDBPath:    filepath.Join(dir, "data", "history.db"),
		queueName:        "default",
		concurrency:      1,
	}
}

func TestNewAppState_WithoutCredentials(t *testing.T) {
	cfg := testConfig(t)
	st, err := newAppState(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()

	assert.Nil(t, st.comparator)
	assert.Nil(t, st.tasks)
	assert.NotNil(t, st.history)
	assert.Nil(t, st.redis)
	assert.Nil(t, st.asynqCli)
	assert.DirExists(t, filepath.Join(cfg.uploadDir, groupMonday))
	assert.DirExists(t, filepath.Join(cfg.uploadDir, groupFriday))

	report := st.credentialReport()
	assert.False(t, report.ClientInitialized)
	assert.False(t, report.TaskSourceInitialized)
	assert.True(t, report.HistoryEnabled)
	assert.False(t, report.JobsEnabled)
}

func TestNewAppState_BuildsClients(t *testing.T) {
	cfg := testConfig(t)
	cfg.anthropicAPIKey = "k"
	cfg.notionToken = "t"
	cfg.notionDatabaseID = "db"
	cfg.historyDBPath = ""

	st, err := newAppState(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()
	assert.IsType(t, &anthropicClient{}, st.comparator)
	assert.IsType(t, &notionClient{}, st.tasks)
	assert.Nil(t, st.history)

	cfg.modelProvider = "gemini"
	cfg.geminiAPIKey = "g"
	st2, err := newAppState(context.Background(), cfg)
	require.NoError(t, err)
	defer st2.Close()
	assert.IsType(t, &geminiClient{}, st2.comparator)
}

func TestNewAppState_UnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.redisAddr = "127.0.0.1:1"
	_, err := newAppState(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRunWorker_RequiresRedis(t *testing.T) {
	st := &appState{cfg: testConfig(t)}
	assert.Error(t, runWorker(context.Background(), st))
}

func TestCheckCommand(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	t.Setenv("UPLOAD_FOLDER", filepath.Join(dir, "uploads"))
	t.Setenv("HISTORY_DB_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-check-secret")
	prev := logger
	t.Cleanup(func() { logger = prev })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", "--env-file", ""})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var report map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, true, report["anthropic_key_exists"])
	assert.Equal(t, true, report["client_initialized"])
	assert.Equal(t, false, report["notion_token_exists"])
	assert.NotContains(t, out.String(), "sk-ant")
}

func TestRootCommand_UnknownMode(t *testing.T) {
	rootCmd.SetArgs([]string{"--mode", "sideways"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		runMode = modeAPI
	})
	assert.Error(t, rootCmd.Execute())
}
