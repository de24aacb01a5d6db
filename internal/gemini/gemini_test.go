package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateResponse(text, finishReason string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content":      map[string]any{"parts": []map[string]any{{"text": text}}},
				"finishReason": finishReason,
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     120,
			"candidatesTokenCount": 45,
			"totalTokenCount":      165,
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", zerolog.Nop(), WithBaseURL(srv.URL+"/"))
}

func TestGenerateParsesCompletion(t *testing.T) {
	var captured payload
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(candidateResponse(`{"a": 1}`, "STOP"))
	})

	comp, err := client.Generate(context.Background(), Request{
		System:          "rispondi in JSON",
		Prompt:          "genera il piano",
		Temperature:     0.4,
		MaxOutputTokens: 2048,
		JSONOnly:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"a": 1}`, comp.Text)
	assert.Equal(t, "STOP", comp.FinishReason)
	assert.False(t, comp.Truncated())
	assert.Equal(t, 120, comp.Usage.PromptTokens)
	assert.Equal(t, 45, comp.Usage.CandidateTokens)
	assert.Equal(t, 165, comp.Usage.TotalTokens)

	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "genera il piano", captured.Contents[0].Parts[0].Text)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "rispondi in JSON", captured.SystemInstruction.Parts[0].Text)
	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, 2048, captured.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, jsonMimeType, captured.GenerationConfig.ResponseMimeType)
}

func TestGenerateSurfacesTruncation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse(`{"partial`, FinishMaxTokens))
	})

	comp, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.True(t, comp.Truncated())
}

func TestGenerateConcatenatesParts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{"parts": []map[string]any{
						{"text": `{"a":`}, {"text": ` 1}`},
					}},
					"finishReason": "STOP",
				},
			},
		})
	})

	comp, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, comp.Text)
}

func TestGenerateRetriesNon200(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(candidateResponse("ok after retry bla", "STOP"))
	})

	comp, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok after retry bla", comp.Text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-200")
	assert.Equal(t, int32(maxTransportRetries), calls.Load())
}

func TestGenerateNoCandidatesIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateMissingAPIKey(t *testing.T) {
	client := NewClient("", zerolog.Nop())
	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestGenerateCanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Generate(ctx, Request{Prompt: "p"})
	assert.ErrorIs(t, err, context.Canceled)
}
