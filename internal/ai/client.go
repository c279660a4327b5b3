package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Default model choices for the two provider endpoints.
const (
	DefaultTextModel  = "gpt-4.1-2025-04-14"
	DefaultImageModel = "black-forest-labs/FLUX.1-schnell"

	textTimeout  = 60 * time.Second
	imageTimeout = 120 * time.Second
)

// Config holds the provider endpoints. Text and image generation run
// against separate OpenAI-compatible APIs, each with its own key. Either
// may be left unconfigured, which disables that capability.
type Config struct {
	TextAPIKey   string
	TextBaseURL  string
	TextModel    string
	ImageAPIKey  string
	ImageBaseURL string
	ImageModel   string
}

// Client generates text and images through OpenAI-compatible providers.
type Client struct {
	text       *openai.Client
	image      *openai.Client
	textModel  string
	imageModel string
	logger     *zap.Logger
}

// NewClient builds a generation client from endpoint configuration.
// Missing keys disable the corresponding capability instead of failing.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	c := &Client{
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		logger:     logger,
	}
	if c.textModel == "" {
		c.textModel = DefaultTextModel
	}
	if c.imageModel == "" {
		c.imageModel = DefaultImageModel
	}

	if cfg.TextAPIKey != "" {
		conf := openai.DefaultConfig(cfg.TextAPIKey)
		if cfg.TextBaseURL != "" {
			conf.BaseURL = cfg.TextBaseURL
		}
		c.text = openai.NewClientWithConfig(conf)
		logger.Info("text generation enabled", zap.String("model", c.textModel))
	} else {
		logger.Warn("text generation disabled: no API key configured")
	}

	if cfg.ImageAPIKey != "" {
		conf := openai.DefaultConfig(cfg.ImageAPIKey)
		if cfg.ImageBaseURL != "" {
			conf.BaseURL = cfg.ImageBaseURL
		}
		c.image = openai.NewClientWithConfig(conf)
		logger.Info("image generation enabled", zap.String("model", c.imageModel))
	} else {
		logger.Warn("image generation disabled: no API key configured")
	}

	return c
}

// TextAvailable reports whether the text endpoint is configured.
func (c *Client) TextAvailable() bool { return c.text != nil }

// ImageAvailable reports whether the image endpoint is configured.
func (c *Client) ImageAvailable() bool { return c.image != nil }

// GenerateText runs one chat completion against the text provider.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.text == nil {
		return "", fmt.Errorf("text generation is not available")
	}

	ctx, cancel := context.WithTimeout(ctx, textTimeout)
	defer cancel()

	resp, err := c.text.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("text provider returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage renders one image and returns its URL. The URL is handed
// straight to Telegram so the bot never downloads the file itself.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.image == nil {
		return "", fmt.Errorf("image generation is not available")
	}

	ctx, cancel := context.WithTimeout(ctx, imageTimeout)
	defer cancel()

	resp, err := c.image.CreateImage(ctx, openai.ImageRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("image provider returned no image data")
	}
	return resp.Data[0].URL, nil
}
