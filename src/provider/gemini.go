package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"snapask/src/config"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini generateContent wire structures
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiAPIError   `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type geminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func newGemini(cfg config.VendorConfig) *geminiProvider {
	return &geminiProvider{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: geminiBaseURL,
		// No client timeout: the dispatch call runs to completion or
		// failure with no time bound.
		client: &http.Client{},
	}
}

func (p *geminiProvider) Name() string { return "gemini" }

// Answer builds one content whose parts are the instruction text followed by
// every accumulated image as inline base64 PNG data with an explicit MIME
// type, then extracts the text of the first candidate.
func (p *geminiProvider) Answer(ctx context.Context, prompt string, images [][]byte) (string, error) {
	parts := make([]geminiPart, 0, len(images)+1)
	parts = append(parts, geminiPart{Text: prompt})
	for _, img := range images {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MIMEType: "image/png",
				Data:     base64.StdEncoding.EncodeToString(img),
			},
		})
	}

	request := geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	var response geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("gemini API error %d (%s): %s", response.Error.Code, response.Error.Status, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}
	if len(response.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", fmt.Errorf("empty answer in gemini response")
	}
	return answer, nil
}
