// Package gemini is a thin client for the Gemini generateContent REST API.
// The planner treats the model as an unreliable black box: the only
// guaranteed contract is that a call eventually returns some text or a
// finish signal, so the Completion surfaces both.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/"
	defaultModel   = "gemini-2.0-flash"

	maxTransportRetries = 3
	initialBackoff      = 1 * time.Second
	requestTimeout      = 30 * time.Second

	jsonMimeType = "application/json"
)

// FinishMaxTokens is the finish reason the API reports when generation was
// cut off at the output-length limit.
const FinishMaxTokens = "MAX_TOKENS"

// Request is one text-completion invocation.
type Request struct {
	System          string
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
	// JSONOnly asks the model for an application/json response. A hint,
	// not a guarantee: the planner still repairs the output.
	JSONOnly bool
}

// Usage carries the token counters the API reports per call.
type Usage struct {
	PromptTokens    int
	CandidateTokens int
	TotalTokens     int
}

// Completion is the text plus the finish/truncation signal for one call.
type Completion struct {
	Text         string
	FinishReason string
	Usage        Usage
}

// Truncated reports whether the output was cut off at the length limit.
func (c Completion) Truncated() bool {
	return c.FinishReason == FinishMaxTokens
}

// Model is the surface the planner depends on, so tests can substitute a
// canned implementation for the network client.
type Model interface {
	Generate(ctx context.Context, req Request) (Completion, error)
}

// --- Wire structs for the generateContent endpoint ---

type payload struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Client calls the Gemini API over plain HTTP. Safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests to point at a
// local httptest server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel selects a model other than the default.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// NewClient builds a Client for the given API key.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Generate sends one completion request, retrying transport and non-200
// failures with exponential backoff. A response with no candidate text is
// an error; a truncated response is not, the caller inspects
// Completion.FinishReason and decides.
func (c *Client) Generate(ctx context.Context, req Request) (Completion, error) {
	if c.apiKey == "" {
		return Completion{}, fmt.Errorf("gemini: API key is not configured")
	}

	body := payload{
		Contents: []content{
			{Parts: []part{{Text: req.Prompt}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}
	if req.JSONOnly {
		body.GenerationConfig.ResponseMimeType = jsonMimeType
	}

	payloadBytes, err := json.Marshal(body)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var lastErr error
	for attempt := 0; attempt < maxTransportRetries; attempt++ {
		if attempt > 0 {
			backoff := initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return Completion{}, ctx.Err()
			}
		}

		comp, err := c.doRequest(ctx, url, payloadBytes)
		if err == nil {
			return comp, nil
		}
		lastErr = err
		c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("Gemini call failed")

		if ctx.Err() != nil {
			return Completion{}, ctx.Err()
		}
	}

	return Completion{}, fmt.Errorf("gemini: all %d attempts failed: %w", maxTransportRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string, payloadBytes []byte) (Completion, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return Completion{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Completion{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return Completion{}, fmt.Errorf("non-200 status %s: %s", resp.Status, string(errBody))
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Completion{}, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Candidates) == 0 {
		return Completion{}, fmt.Errorf("no candidates in response")
	}

	cand := apiResp.Candidates[0]
	var text string
	for _, p := range cand.Content.Parts {
		text += p.Text
	}

	return Completion{
		Text:         text,
		FinishReason: cand.FinishReason,
		Usage: Usage{
			PromptTokens:    apiResp.UsageMetadata.PromptTokenCount,
			CandidateTokens: apiResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:     apiResp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
