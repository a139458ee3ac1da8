package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, OpenAI, p)

	_, err = ParseProvider("cohere")
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestParseModelType(t *testing.T) {
	for _, in := range []string{"fine-tuned", "finetuned", "Fine_Tuned"} {
		mt, err := ParseModelType(in)
		require.NoError(t, err, in)
		assert.Equal(t, FineTuned, mt)
	}
	_, err := ParseModelType("chat")
	assert.Error(t, err)
}

func TestDefaultModel(t *testing.T) {
	cases := []struct {
		provider Provider
		mt       ModelType
		want     string
	}{
		{OpenAI, Base, "gpt-3.5-turbo-instruct"},
		{OpenAI, Instruct, "gpt-3.5-turbo"},
		{Anthropic, Instruct, "claude-3-sonnet-20240229"},
		{HuggingFace, FineTuned, "codellama/CodeLlama-7b-Python-hf"},
		{Gemini, Instruct, "gemini-1.5-flash"},
	}
	for _, tc := range cases {
		got, err := DefaultModel(tc.provider, tc.mt)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestDefaultModelMissingType(t *testing.T) {
	_, err := DefaultModel(Anthropic, Base)
	assert.True(t, errors.Is(err, ErrNoModel))
	assert.EqualError(t, err, "no available model for type: base")
}

func TestContextWindow(t *testing.T) {
	assert.Equal(t, 16384, ContextWindow(OpenAI, "gpt-3.5-turbo-16k"))
	assert.Equal(t, 128000, ContextWindow(OpenAI, "gpt-4o-2024-08-06"), "longest prefix wins")
	assert.Equal(t, 4096, ContextWindow(OpenAI, "unknown-model"))
	assert.Equal(t, 100000, ContextWindow(Anthropic, "claude-instant-1.2"))
	assert.Equal(t, 200000, ContextWindow(Anthropic, "claude-next"))
	assert.Equal(t, 8192, ContextWindow(HuggingFace, "openchat/openchat-3.5-1210"))
	assert.Equal(t, 4096, ContextWindow(HuggingFace, "gpt2"))
}

func TestCharacteristicsFallback(t *testing.T) {
	c := CharacteristicsFor(Anthropic, "claude-3-opus-20240229")
	assert.Equal(t, "Outstanding", c.InstructionFollowing)

	fb := CharacteristicsFor(HuggingFace, "openchat/openchat-3.5-1210")
	assert.Equal(t, "Free (self-hosted)", fb.CostPer1KTokens)
	assert.Equal(t, 8192, fb.ContextWindow)
}

func TestDescribeAndSupportedTypes(t *testing.T) {
	info := Describe(Anthropic)
	assert.Equal(t, "Anthropic", info.Name)
	assert.NotContains(t, info.Defaults, Base)
	assert.Len(t, info.Models[Instruct], 7)

	assert.Equal(t, []ModelType{Instruct}, SupportedTypes(Gemini))
	assert.Equal(t, ModelTypes, SupportedTypes(HuggingFace))
}

func TestTypeOf(t *testing.T) {
	mt, ok := TypeOf(OpenAI, "text-davinci-003")
	assert.True(t, ok)
	assert.Equal(t, Base, mt)

	_, ok = TypeOf(OpenAI, "nope")
	assert.False(t, ok)
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "HUGGINGFACE_API_KEY", HuggingFace.EnvVar())
	assert.Equal(t, "GOOGLE_API_KEY", Gemini.EnvVar())
}
