package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"oca/internal/config"
)

// Manager layers the configured model registry over the raw client: it
// tracks the current model and applies its system prompt and sampling
// settings to every query.
type Manager struct {
	client  *Client
	models  map[string]config.ModelConfig
	current string
	log     *zap.Logger
}

// NewManager builds a Manager from the configuration.
func NewManager(cfg *config.Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	models := make(map[string]config.ModelConfig, len(cfg.Models.Available))
	for _, m := range cfg.Models.Available {
		models[m.Name] = m
	}
	return &Manager{
		client:  NewClient(cfg.Ollama.Host, cfg.OllamaTimeout()),
		models:  models,
		current: cfg.Models.Default,
		log:     log,
	}
}

// CurrentModel returns the name of the model in use.
func (m *Manager) CurrentModel() string { return m.current }

// SetModel switches the current model. Only registered models are accepted.
func (m *Manager) SetModel(name string) bool {
	if _, ok := m.models[name]; !ok {
		return false
	}
	m.current = name
	return true
}

// UseModel switches to a model even when it is not registered; an
// unregistered model runs without a system prompt or sampling overrides.
func (m *Manager) UseModel(name string) {
	if _, ok := m.models[name]; !ok {
		m.log.Warn("model not in configured registry, using without presets", zap.String("model", name))
	}
	m.current = name
}

// AvailableModels lists the registered model names.
func (m *Manager) AvailableModels() []string {
	names := make([]string, 0, len(m.models))
	for name := range m.models {
		names = append(names, name)
	}
	return names
}

// QueryOptions override the current model's settings for one query.
type QueryOptions struct {
	SystemPrompt string
	Temperature  float64
}

// Query sends a prompt to the current model and returns the trimmed
// response text.
func (m *Manager) Query(ctx context.Context, prompt string, opts *QueryOptions) (string, error) {
	mc := m.models[m.current]
	system := mc.SystemPrompt
	temp := mc.Temperature
	if opts != nil {
		if opts.SystemPrompt != "" {
			system = opts.SystemPrompt
		}
		if opts.Temperature > 0 {
			temp = opts.Temperature
		}
	}

	m.log.Debug("querying model",
		zap.String("model", m.current),
		zap.Int("prompt_len", len(prompt)))

	out, err := m.client.Generate(ctx, GenerateRequest{
		Model:       m.current,
		Prompt:      prompt,
		System:      system,
		Temperature: temp,
		MaxTokens:   mc.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", m.current, err)
	}
	return strings.TrimSpace(out), nil
}

// QueryWithContext sends a prompt together with supporting context text.
func (m *Manager) QueryWithContext(ctx context.Context, prompt, contextText string) (string, error) {
	formatted := fmt.Sprintf(`Context information:
%s

User request:
%s

Please provide a helpful response based on the context above.
`, contextText, prompt)
	return m.Query(ctx, formatted, nil)
}

// VerifyModels checks the registry against the models Ollama has pulled and
// returns the names of any that are missing. A daemon that cannot be
// reached is reported as an error; missing models are a warning, never a
// failure.
func (m *Manager) VerifyModels(ctx context.Context) ([]string, error) {
	installed, err := m.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing ollama models: %w", err)
	}

	have := make(map[string]bool, len(installed))
	for _, mi := range installed {
		// Tags come back as name:tag; register the base name too.
		have[mi.Name] = true
		if base, _, found := strings.Cut(mi.Name, ":"); found {
			have[base] = true
		}
	}

	var missing []string
	for name := range m.models {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		m.log.Warn("configured models not installed in ollama", zap.Strings("missing", missing))
	}
	return missing, nil
}
