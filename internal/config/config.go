// Package config holds the oca configuration: the model registry, the
// Ollama endpoint, project scan settings, and filesystem paths. Settings
// live in ~/.oca/config.yaml and may be overridden through OCA_* environment
// variables.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all oca configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Model registry
	Models ModelsConfig `yaml:"models"`

	// Ollama endpoint
	Ollama OllamaConfig `yaml:"ollama"`

	// Project scanning
	Project ProjectConfig `yaml:"project"`

	// Filesystem locations
	Paths PathsConfig `yaml:"paths"`

	// Conversation history
	History HistoryConfig `yaml:"history"`

	// Analysis backend
	Backend BackendConfig `yaml:"backend"`
}

// BackendConfig selects the analysis backend. With Command empty the
// built-in engine runs in-process; otherwise the named command is executed
// with the dispatch argument vector and its exit code is passed through.
type BackendConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// ModelsConfig configures the available models and the default.
type ModelsConfig struct {
	Default   string        `yaml:"default"`
	Available []ModelConfig `yaml:"available"`
}

// ModelConfig configures a single model.
type ModelConfig struct {
	Name         string  `yaml:"name"`
	SystemPrompt string  `yaml:"system_prompt,omitempty"`
	Temperature  float64 `yaml:"temperature,omitempty"`
	MaxTokens    int     `yaml:"max_tokens,omitempty"`
}

// OllamaConfig configures the local inference daemon.
type OllamaConfig struct {
	Host    string `yaml:"host"`
	Timeout string `yaml:"timeout"`
}

// ProjectConfig configures project scanning.
type ProjectConfig struct {
	IgnoredDirectories []string `yaml:"ignored_directories"`
	CodeExtensions     []string `yaml:"code_extensions"`
}

// PathsConfig configures filesystem locations.
type PathsConfig struct {
	// BaseDir is the directory whose subfolders are addressable with
	// --repo. Empty means the parent of the current working directory.
	BaseDir      string `yaml:"base_dir"`
	HistoryDir   string `yaml:"history_dir"`
	DatabasePath string `yaml:"database_path"`
}

// HistoryConfig configures conversation persistence.
type HistoryConfig struct {
	SaveByDefault bool `yaml:"save_by_default"`
}

// envOverrides maps OCA_* environment variables onto config fields.
type envOverrides struct {
	OllamaHost string `env:"OCA_OLLAMA_HOST"`
	Model      string `env:"OCA_MODEL"`
	BaseDir    string `env:"OCA_BASE_DIR"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Name:    "oca",
		Version: "1.0.0",
		Models: ModelsConfig{
			Default: "codellama",
			Available: []ModelConfig{
				{
					Name:         "codellama",
					SystemPrompt: "You are an expert programming assistant. Answer concisely and show code where it helps.",
					Temperature:  0.7,
					MaxTokens:    4000,
				},
				{
					Name:         "llama3",
					SystemPrompt: "You are a helpful software engineering assistant.",
					Temperature:  0.7,
					MaxTokens:    4000,
				},
			},
		},
		Ollama: OllamaConfig{
			Host:    "http://localhost:11434",
			Timeout: "120s",
		},
		Project: ProjectConfig{
			IgnoredDirectories: []string{".git", "node_modules", "__pycache__", ".venv", "venv", "dist", "build", ".idea", ".vscode"},
			CodeExtensions:     []string{".go", ".py", ".js", ".ts", ".c", ".cpp", ".h", ".md", ".txt", ".json", ".yaml", ".yml"},
		},
		Paths: PathsConfig{
			HistoryDir:   filepath.Join(home, ".oca", "history"),
			DatabasePath: filepath.Join(home, ".oca", "history.db"),
		},
	}
}

// DefaultPath returns the default config file location, honoring OCA_CONFIG.
func DefaultPath() string {
	if p := os.Getenv("OCA_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".oca", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies OCA_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	var env envOverrides
	if err := envconfig.Process(context.Background(), &env); err != nil {
		return
	}
	if env.OllamaHost != "" {
		c.Ollama.Host = env.OllamaHost
	}
	if env.Model != "" {
		c.Models.Default = env.Model
	}
	if env.BaseDir != "" {
		c.Paths.BaseDir = env.BaseDir
	}
}

// ResolveBaseDir returns the configured base directory, falling back to the
// parent of the current working directory.
func (c *Config) ResolveBaseDir() (string, error) {
	if c.Paths.BaseDir != "" {
		return c.Paths.BaseDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determining working directory: %w", err)
	}
	return filepath.Dir(wd), nil
}

// OllamaTimeout returns the Ollama request timeout as a duration.
func (c *Config) OllamaTimeout() time.Duration {
	d, err := time.ParseDuration(c.Ollama.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// Model returns the configuration for a named model, or false when the name
// is not registered.
func (c *Config) Model(name string) (ModelConfig, bool) {
	for _, m := range c.Models.Available {
		if m.Name == name {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Models.Default == "" {
		return fmt.Errorf("no default model configured")
	}
	if _, ok := c.Model(c.Models.Default); !ok {
		return fmt.Errorf("default model %q is not in the available list", c.Models.Default)
	}
	if c.Ollama.Host == "" {
		return fmt.Errorf("ollama host not configured")
	}
	return nil
}
