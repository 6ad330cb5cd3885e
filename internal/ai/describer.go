package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"
)

// ErrEmptyResponse indicates the model returned no usable text.
var ErrEmptyResponse = errors.New("model returned no text")

// Describer produces a short event description from basic event facts.
type Describer interface {
	Describe(ctx context.Context, title, category, location string) (string, error)
}

// GeminiDescriber calls the hosted Gemini generateContent endpoint.
type GeminiDescriber struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Option customizes a GeminiDescriber.
type Option func(*GeminiDescriber)

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(d *GeminiDescriber) {
		if model != "" {
			d.model = model
		}
	}
}

// WithBaseURL points the client at a different API host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(d *GeminiDescriber) {
		if baseURL != "" {
			d.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *GeminiDescriber) {
		if client != nil {
			d.client = client
		}
	}
}

func NewGeminiDescriber(apiKey string, opts ...Option) *GeminiDescriber {
	d := &GeminiDescriber{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Describe asks the model for a short, action-oriented event description.
func (d *GeminiDescriber) Describe(ctx context.Context, title, category, location string) (string, error) {
	prompt := fmt.Sprintf(`Write a compelling, short (max 50 words) description for a waste management or environmental event.
Event Title: %s
Category: %s
Location: %s
Tone: Inspiring and Action-oriented.
Output: Just the description text.`, title, category, location)

	body, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		d.baseURL, url.PathEscape(d.model), url.QueryEscape(d.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("model error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("model returned status %d", resp.StatusCode)
	}

	for _, candidate := range parsed.Candidates {
		for _, p := range candidate.Content.Parts {
			if text := strings.TrimSpace(p.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrEmptyResponse
}
