// Package vision wraps the Gemini API behind the pipeline's Analyzer
// interface. One client serves both pipeline stages: multimodal calls for
// image analysis and text-only calls for enrichment.
package vision

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/prodmap/prodmap/pkg/errors"
	"github.com/prodmap/prodmap/pkg/pipeline"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 2 * time.Minute

// Config holds the Gemini client settings.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the Gemini API. Safe for concurrent use.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a Gemini-backed analyzer.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &errors.ConfigError{
			Component: "vision",
			Message:   "GEMINI_API_KEY not set",
			Err:       errors.ErrAPIKeyRequired,
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.WrapCollaborator("vision", "init", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{client: client, model: model, timeout: timeout}, nil
}

// Generate implements pipeline.Analyzer. The prompt goes out as one user
// turn, with the image attached inline when present.
func (c *Client) Generate(ctx context.Context, req pipeline.Request) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Bytes, req.Image.MIME))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewCollaboratorError("vision", "generate",
				"model call timed out", errors.ErrTimeout)
		}
		return "", errors.WrapCollaborator("vision", "generate", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.NewCollaboratorError("vision", "generate",
			"model returned no text", nil)
	}
	return text, nil
}
