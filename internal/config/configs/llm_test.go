package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRoutesDefaults(t *testing.T) {
	cfg := LLM{OpenAIModel: "gpt-4o-mini", OllamaModel: "llama3", Timeout: 30 * time.Second}

	routes, err := cfg.LoadRoutes()
	require.NoError(t, err)

	for _, class := range []string{"conversation", "parsing", "generation", "forecast-assist"} {
		route, ok := routes[class]
		require.True(t, ok, "missing route for %s", class)
		assert.NotEmpty(t, route.Backends)
		assert.Equal(t, 30*time.Second, route.Timeout, "route inherits the global timeout")
	}
	assert.Equal(t, []string{"ollama", "openai"}, routes["forecast-assist"].Backends)
}

func TestLoadRoutesFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	raw := `
parsing:
  backends: [ollama]
  model: mistral
  temperature: 0.2
  max_tokens: 256
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg := LLM{OpenAIModel: "gpt-4o-mini", OllamaModel: "llama3", Timeout: 30 * time.Second, RoutesFile: path}
	routes, err := cfg.LoadRoutes()
	require.NoError(t, err)

	parsing := routes["parsing"]
	assert.Equal(t, []string{"ollama"}, parsing.Backends)
	assert.Equal(t, "mistral", parsing.Model)
	assert.Equal(t, 5*time.Second, parsing.Timeout)

	// Untouched classes keep their defaults.
	assert.Equal(t, []string{"openai", "ollama"}, routes["conversation"].Backends)
}

func TestLoadRoutesMissingFile(t *testing.T) {
	cfg := LLM{RoutesFile: "/does/not/exist.yaml", Timeout: time.Second}
	_, err := cfg.LoadRoutes()
	assert.Error(t, err)
}
