package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_HOST", "redis.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "host: ${TEST_HOST}", "host: redis.internal"},
		{"set variable ignores default", "host: ${TEST_HOST:fallback}", "host: redis.internal"},
		{"unset with default", "host: ${TEST_UNSET_VAR:localhost}", "host: localhost"},
		{"unset with empty default", "password: ${TEST_UNSET_VAR:}", "password: "},
		{"unset without default keeps placeholder", "host: ${TEST_UNSET_VAR}", "host: ${TEST_UNSET_VAR}"},
		{"multiple placeholders", "${TEST_HOST}:${TEST_UNSET_PORT:6379}", "redis.internal:6379"},
		{"no placeholder", "plain value", "plain value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}

func validConfig() *Config {
	cfg := &Config{}
	cfg.LLM.DefaultProvider = "openai"
	cfg.LLM.Providers = map[string]ProviderConfig{
		"openai": {APIKey: "sk-test", Model: "gpt-4o-mini", Timeout: 30 * time.Second},
	}
	cfg.Embedding.APIKey = "sk-test"
	cfg.Embedding.Endpoint = "https://api.openai.com/v1"
	cfg.Ingest.ChunkSize = 1000
	cfg.Ingest.ChunkOverlap = 200
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateMissingProviderKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Providers["openai"] = ProviderConfig{Model: "gpt-4o-mini"}
	require.Error(t, cfg.Validate())
}

func TestValidateUnknownDefaultProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.DefaultProvider = "missing"
	require.Error(t, cfg.Validate())
}

func TestValidateMissingEmbeddingKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""
	require.Error(t, cfg.Validate())
}

func TestValidateOverlapNotSmallerThanChunk(t *testing.T) {
	cfg := validConfig()
	cfg.Ingest.ChunkOverlap = 1000
	require.Error(t, cfg.Validate())
}
