package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/Tiliavir/clicktime-assistant/internal/config"
	"github.com/Tiliavir/clicktime-assistant/internal/llm"
)

func TestGeminiComplete(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "k1", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"[]"}]}}]}`)
	}))
	defer srv.Close()

	g, err := llm.NewGemini("k1", "gemini-2.5-flash", srv.URL, srv.Client())
	require.NoError(t, err)

	out, err := g.Complete(context.Background(), "hello", 0.2)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	contents := gotBody["contents"].([]any)
	part := contents[0].(map[string]any)["parts"].([]any)[0].(map[string]any)
	assert.Equal(t, "hello", part["text"])
	assert.Equal(t, 0.2, gotBody["generationConfig"].(map[string]any)["temperature"])
}

func TestGeminiStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, "quota")
	}))
	defer srv.Close()

	g, err := llm.NewGemini("k1", "m", srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), "p", 0.2)
	var se *llm.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, "quota", se.Body)
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	g, err := llm.NewGemini("k1", "m", srv.URL, srv.Client())
	require.NoError(t, err)
	_, err = g.Complete(context.Background(), "p", 0.2)
	assert.Error(t, err)
}

// stubModel records the prompt and call options it receives.
type stubModel struct {
	reply       string
	err         error
	prompt      string
	temperature float64
}

func (s *stubModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	s.temperature = opts.Temperature
	if len(msgs) > 0 && len(msgs[0].Parts) > 0 {
		if tc, ok := msgs[0].Parts[0].(llms.TextContent); ok {
			s.prompt = tc.Text
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s.reply}}}, nil
}

func (s *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s, prompt, options...)
}

func TestChainComplete(t *testing.T) {
	m := &stubModel{reply: `[{"jobID":"J1","taskID":"T1","hours":8}]`}
	c := llm.NewChain(m, "stub")

	out, err := c.Complete(context.Background(), "suggest", 0.2)
	require.NoError(t, err)
	assert.Equal(t, m.reply, out)
	assert.Equal(t, "suggest", m.prompt)
	assert.InDelta(t, 0.2, m.temperature, 1e-9)
}

func TestChainWrapsError(t *testing.T) {
	boom := errors.New("boom")
	c := llm.NewChain(&stubModel{err: boom}, "stub")
	_, err := c.Complete(context.Background(), "p", 0.2)
	assert.ErrorIs(t, err, boom)
}

func TestNew(t *testing.T) {
	_, err := llm.New(config.LLMConfig{Provider: "gemini"}, nil)
	assert.ErrorIs(t, err, llm.ErrNoAPIKey)

	_, err = llm.New(config.LLMConfig{Provider: "openai"}, nil)
	assert.ErrorIs(t, err, llm.ErrNoAPIKey)

	_, err = llm.New(config.LLMConfig{Provider: "palm", APIKey: "k"}, nil)
	assert.ErrorContains(t, err, "unsupported LLM provider")

	c, err := llm.New(config.LLMConfig{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &llm.Gemini{}, c)

	c, err = llm.New(config.LLMConfig{Provider: "ollama", BaseURL: "http://127.0.0.1:11434"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &llm.Chain{}, c)
}
