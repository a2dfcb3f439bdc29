// Package gemini talks to the hosted text-generation model and turns its
// free-form answers into usage insights and content categories.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash"

var (
	// ErrNotConfigured is returned by every call when no API key was supplied.
	ErrNotConfigured = errors.New("gemini: no API key configured")
	ErrEmptyResponse = errors.New("gemini: empty response")
)

// TextGenerator sends a prompt and returns the model's text answer.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewClient returns a Client for model. With an empty apiKey the client is
// created anyway and every Generate call fails with ErrNotConfigured.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{model: model, timeout: timeout}
	if apiKey == "" {
		return c, nil
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini.NewClient: %w", err)
	}
	c.client = gc
	return c, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", ErrNotConfigured
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini.Generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
