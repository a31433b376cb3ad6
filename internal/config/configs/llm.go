package configs

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LLM configures the completion backends behind the model gateway.
// Backend credentials come from the environment; the class routing
// table may additionally be overridden by a YAML file.
type LLM struct {
	// RoutesFile optionally points at a YAML file mapping model classes
	// to backend routes. When empty, compiled-in defaults are used.
	RoutesFile string `env:"ROUTES_FILE"`

	OpenAIKey   string `env:"OPENAI_KEY"`
	OpenAIBase  string `env:"OPENAI_BASE_URL"`
	OpenAIModel string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	OllamaURL   string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel string `env:"OLLAMA_MODEL" envDefault:"llama3"`

	// Timeout bounds a single backend call unless the route overrides it.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Route describes how one model class is served: the ordered backends
// to try (primary first, at most one fallback is used), the model name
// and the default call parameters.
type Route struct {
	Backends    []string      `yaml:"backends"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// UnmarshalYAML decodes a route, accepting human-readable durations
// like "5s" for the timeout.
func (r *Route) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Backends    []string `yaml:"backends"`
		Model       string   `yaml:"model"`
		Temperature float64  `yaml:"temperature"`
		MaxTokens   int      `yaml:"max_tokens"`
		Timeout     string   `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	r.Backends = raw.Backends
	r.Model = raw.Model
	r.Temperature = raw.Temperature
	r.MaxTokens = raw.MaxTokens
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("parse route timeout: %w", err)
		}
		r.Timeout = d
	}
	return nil
}

// Routes maps a model class tag to its route. Loaded once at startup
// and treated as immutable thereafter.
type Routes map[string]Route

// LoadRoutes returns the routing table: the YAML file when configured,
// compiled-in defaults otherwise. Routes missing a timeout inherit the
// global one.
func (c LLM) LoadRoutes() (Routes, error) {
	routes := c.defaultRoutes()
	if c.RoutesFile != "" {
		raw, err := os.ReadFile(c.RoutesFile)
		if err != nil {
			return nil, fmt.Errorf("read llm routes file: %w", err)
		}
		loaded := Routes{}
		if err = yaml.Unmarshal(raw, &loaded); err != nil {
			return nil, fmt.Errorf("parse llm routes file: %w", err)
		}
		for class, route := range loaded {
			routes[class] = route
		}
	}
	for class, route := range routes {
		if route.Timeout <= 0 {
			route.Timeout = c.Timeout
			routes[class] = route
		}
	}
	return routes, nil
}

func (c LLM) defaultRoutes() Routes {
	remoteFirst := []string{"openai", "ollama"}
	localFirst := []string{"ollama", "openai"}
	return Routes{
		"conversation":    {Backends: remoteFirst, Model: c.OpenAIModel, Temperature: 0.7, MaxTokens: 300},
		"parsing":         {Backends: remoteFirst, Model: c.OpenAIModel, Temperature: 0.1, MaxTokens: 400},
		"generation":      {Backends: remoteFirst, Model: c.OpenAIModel, Temperature: 0.4, MaxTokens: 600},
		"forecast-assist": {Backends: localFirst, Model: c.OllamaModel, Temperature: 0.2, MaxTokens: 300},
	}
}
