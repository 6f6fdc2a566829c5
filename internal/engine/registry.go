package engine

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/georepute/visibility-cli/internal/config"
	"github.com/georepute/visibility-cli/pkg/anthropic"
	"github.com/georepute/visibility-cli/pkg/gemini"
	"github.com/georepute/visibility-cli/pkg/openaichat"
)

// Registry manages the configured answer engines for a run.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Engine),
	}
}

// NewRegistryFromConfig builds a registry containing every engine whose
// credential is present in the configuration. Engines without a key are
// left out of the available set for the run.
func NewRegistryFromConfig(cfg config.EnginesConfig) *Registry {
	r := NewRegistry()

	if cfg.OpenAI.Key != "" {
		client := openaichat.NewClient(cfg.OpenAI.Key,
			openaichat.WithBaseURL(cfg.OpenAI.BaseURL),
			openaichat.WithModel(cfg.OpenAI.Model))
		r.Register(NewChatEngine(KeyOpenAI, client))
	}
	if cfg.Perplexity.Key != "" {
		client := openaichat.NewClient(cfg.Perplexity.Key,
			openaichat.WithBaseURL(cfg.Perplexity.BaseURL),
			openaichat.WithModel(cfg.Perplexity.Model))
		r.Register(NewChatEngine(KeyPerplexity, client))
	}
	if cfg.DeepSeek.Key != "" {
		client := openaichat.NewClient(cfg.DeepSeek.Key,
			openaichat.WithBaseURL(cfg.DeepSeek.BaseURL),
			openaichat.WithModel(cfg.DeepSeek.Model))
		r.Register(NewChatEngine(KeyDeepSeek, client))
	}
	if cfg.Anthropic.Key != "" {
		r.Register(NewAnthropicEngine(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model))
	}
	if cfg.Gemini.Key != "" {
		client := gemini.NewClient(cfg.Gemini.Key,
			gemini.WithBaseURL(cfg.Gemini.BaseURL),
			gemini.WithModel(cfg.Gemini.Model))
		r.Register(NewGeminiEngine(client))
	}

	zap.L().Info("engine registry built", zap.Strings("engines", r.Keys()))
	return r
}

// Register adds an engine to the registry.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.Key()] = e
}

// Get returns an engine by key, or nil if not configured.
func (r *Registry) Get(key string) Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.engines[key]
}

// Available returns all configured engines sorted by key. The stable order
// keeps fan-out and report content deterministic for a given configuration.
func (r *Registry) Available() []Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Engine, 0, len(r.engines))
	for _, e := range r.engines {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Keys returns the sorted keys of all configured engines.
func (r *Registry) Keys() []string {
	engines := r.Available()
	keys := make([]string, len(engines))
	for i, e := range engines {
		keys[i] = e.Key()
	}
	return keys
}

// Len reports how many engines are configured.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}
