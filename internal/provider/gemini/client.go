// Package gemini implements the provider.Client contract on top of the
// official google.golang.org/genai SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/mtext/internal/provider"
)

var _ provider.Client = (*Client)(nil)

// Config for the Gemini client.
type Config struct {
	APIKey      string
	Model       string // e.g., "gemini-2.0-flash"
	Temperature float32
}

type Client struct {
	cfg  Config
	genc *genai.Client
	log  *slog.Logger
}

// Document extraction wants every page back, so all safety categories are
// turned off, matching the generation settings used for the other providers.
var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = provider.Specs[provider.Gemini].DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	genc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{cfg: cfg, genc: genc, log: logger}, nil
}

func (c *Client) Name() provider.ID { return provider.Gemini }
func (c *Client) Model() string     { return c.cfg.Model }

// ExtractText sends one page image plus the prompt and returns the model's text.
func (c *Client) ExtractText(ctx context.Context, req provider.Request) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("gemini.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"image_bytes", len(req.Image),
		"mime", req.MIMEType,
	)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(req.Prompt),
			genai.NewPartFromBytes(req.Image, req.MIMEType),
		}, genai.RoleUser),
	}
	resp, err := c.genc.Models.GenerateContent(ctx, c.cfg.Model, contents, &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(c.cfg.Temperature),
		SafetySettings: safetySettings,
	})
	if err != nil {
		c.log.Error("gemini.extract.api_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty gemini response")
	}

	c.log.Info("gemini.extract.ok",
		"req_id", rid,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
