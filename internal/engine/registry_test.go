package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georepute/visibility-cli/internal/config"
)

type namedEngine struct{ key string }

func (e namedEngine) Key() string { return e.key }

func (e namedEngine) Complete(context.Context, string) (*Completion, error) {
	return &Completion{}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Get(KeyOpenAI))

	r.Register(namedEngine{key: KeyOpenAI})
	assert.Equal(t, 1, r.Len())
	require.NotNil(t, r.Get(KeyOpenAI))
	assert.Equal(t, KeyOpenAI, r.Get(KeyOpenAI).Key())
}

func TestRegistryAvailableSortedByKey(t *testing.T) {
	r := NewRegistry()
	for _, key := range []string{KeyPerplexity, KeyAnthropic, KeyOpenAI, KeyGemini, KeyDeepSeek} {
		r.Register(namedEngine{key: key})
	}

	assert.Equal(t, []string{KeyAnthropic, KeyDeepSeek, KeyGemini, KeyOpenAI, KeyPerplexity}, r.Keys())

	engines := r.Available()
	require.Len(t, engines, 5)
	assert.Equal(t, KeyAnthropic, engines[0].Key())
	assert.Equal(t, KeyPerplexity, engines[4].Key())
}

func TestNewRegistryFromConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.EnginesConfig
		want []string
	}{
		{
			name: "no credentials",
			cfg:  config.EnginesConfig{},
			want: []string{},
		},
		{
			name: "subset of panel",
			cfg: config.EnginesConfig{
				OpenAI: config.EngineConfig{Key: "sk-1", BaseURL: "https://api.openai.com/v1", Model: "gpt-4o"},
				Gemini: config.EngineConfig{Key: "g-1", Model: "gemini-2.0-flash"},
			},
			want: []string{KeyGemini, KeyOpenAI},
		},
		{
			name: "full panel",
			cfg: config.EnginesConfig{
				OpenAI:     config.EngineConfig{Key: "sk-1"},
				Anthropic:  config.EngineConfig{Key: "sk-2", Model: "claude-sonnet-4-5-20250929"},
				Perplexity: config.EngineConfig{Key: "pplx-1"},
				Gemini:     config.EngineConfig{Key: "g-1"},
				DeepSeek:   config.EngineConfig{Key: "ds-1"},
			},
			want: []string{KeyAnthropic, KeyDeepSeek, KeyGemini, KeyOpenAI, KeyPerplexity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistryFromConfig(tt.cfg)
			assert.Equal(t, tt.want, r.Keys())
		})
	}
}
