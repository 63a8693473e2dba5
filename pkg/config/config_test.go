package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.InDelta(t, 0.7, cfg.LLM.Options.Temperature, 1e-9)
	assert.Equal(t, 16384, cfg.LLM.Options.NumCtx)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 3, cfg.RAG.Retrieval.TopK)
	assert.Equal(t, EmbedderHash, cfg.RAG.Embedder)
	assert.InDelta(t, 0.25, cfg.RAG.Retrieval.Threshold, 1e-9)
	assert.Equal(t, time.Minute, cfg.Notify.Scheduler.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Notify.Scheduler.Dwell)
	assert.Equal(t, 100, cfg.Notify.Retention)
	assert.Equal(t, 5, cfg.Assistant.Window)
	assert.False(t, cfg.MQTT.Enabled)
}

func TestLoad_EnvAndLegacyNames(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HOMECARE_LLM_PROVIDER", "openai")
	t.Setenv("MODEL_NAME", "llama3")
	t.Setenv("DATABASE_PATH", "/tmp/x.db")
	t.Setenv("USE_COMPACT_PROMPT", "true")
	t.Setenv("HOMECARE_NOTIFY_DWELL", "10m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.True(t, cfg.Assistant.CompactPrompt)
	assert.Equal(t, 10*time.Minute, cfg.Notify.Scheduler.Dwell)
}

func TestLoad_ThresholdFollowsEmbedder(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HOMECARE_RAG_EMBEDDER", "llm")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cfg.RAG.Retrieval.Threshold, 1e-9)

	t.Setenv("HOMECARE_RAG_THRESHOLD", "0.4")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, cfg.RAG.Retrieval.Threshold, 1e-9)
}

func TestLoad_PrefixedBeatsLegacy(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MODEL_NAME", "legacy")
	t.Setenv("HOMECARE_LLM_MODEL", "current")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "current", cfg.LLM.Model)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homecare.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
llm:
  model: mistral
  retry:
    max_attempts: 5
    initial_interval: 250ms
rag:
  embedder: llm
  top_k: 5
notify:
  interval: 30s
mqtt:
  enabled: true
  broker: tcp://broker:1883
state:
  restore_devices: true
`), 0600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.LLM.Retry.InitialInterval)
	assert.Equal(t, EmbedderLLM, cfg.RAG.Embedder)
	assert.Equal(t, 5, cfg.RAG.Retrieval.TopK)
	assert.Equal(t, 30*time.Second, cfg.Notify.Scheduler.Interval)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.True(t, cfg.State.RestoreDevices)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HOMECARE_LLM_PROVIDER", "claude")
	t.Setenv("HOMECARE_RAG_THRESHOLD", "1.5")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
	assert.Contains(t, err.Error(), "rag.threshold")
}
