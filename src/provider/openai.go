package provider

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"snapask/src/config"
)

type openAIProvider struct {
	client *openai.Client
	model  string
}

func newOpenAI(cfg config.VendorConfig) *openAIProvider {
	return &openAIProvider{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

// newOpenAIWithBaseURL points the client at an alternate endpoint. Used by
// tests to capture the wire shape.
func newOpenAIWithBaseURL(cfg config.VendorConfig, baseURL string) *openAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL
	return &openAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (p *openAIProvider) Name() string { return "openai" }

// Answer builds a single multi-part user message: the instruction text
// first, then every accumulated image as an inline base64 PNG data URL.
func (p *openAIProvider) Answer(ctx context.Context, prompt string, images [][]byte) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(images)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: prompt,
	})
	for _, img := range images {
		dataURL := fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(img))
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: dataURL,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return resp.Choices[0].Message.Content, nil
}
