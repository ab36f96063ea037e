package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiClient implements Comparator using Google's Generative AI SDK.
type geminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// newGeminiClient builds the SDK client once. baseURL is only set in tests.
func newGeminiClient(ctx context.Context, apiKey, model string, maxTokens int, timeout time.Duration, baseURL string) (*geminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &geminiClient{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

func (c *geminiClient) Name() string { return "gemini" }

// geminiParts converts message blocks to SDK parts: text stays text, images
// become inline data.
func geminiParts(blocks []contentBlock) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(blocks))
	for i, b := range blocks {
		switch b.Type {
		case "text":
			parts = append(parts, genai.NewPartFromText(b.Text))
		case "image":
			if b.Source == nil {
				return nil, fmt.Errorf("block %d: image without source", i)
			}
			data := b.raw
			if data == nil {
				decoded, err := base64.StdEncoding.DecodeString(b.Source.Data)
				if err != nil {
					return nil, fmt.Errorf("block %d: decode image: %w", i, err)
				}
				data = decoded
			}
			parts = append(parts, genai.NewPartFromBytes(data, b.Source.MediaType))
		default:
			return nil, fmt.Errorf("block %d: unsupported type %q", i, b.Type)
		}
	}
	return parts, nil
}

func (c *geminiClient) Compare(ctx context.Context, blocks []contentBlock) (string, error) {
	parts, err := geminiParts(blocks)
	if err != nil {
		return "", err
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			return part.Text, nil
		}
	}
	return "", errors.New("no text content returned")
}
