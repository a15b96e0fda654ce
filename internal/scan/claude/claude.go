package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/scan"
)

const defaultAPIURL = "https://api.anthropic.com/v1/messages"

// anthropicVersion is the Anthropic Messages API version header value.
const anthropicVersion = "2023-06-01"

// request types mirror the Anthropic Messages API structure.
type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string  `json:"role"`
	Content []block `json:"content"`
}

type block struct {
	Type   string  `json:"type"`
	Text   string  `json:"text,omitempty"`
	Source *source `json:"source,omitempty"`
}

type source struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// LabelScanner reads medicine labels with the Anthropic Messages API.
type LabelScanner struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

func NewLabelScanner(apiKey, model string) *LabelScanner {
	return &LabelScanner{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
		baseURL: defaultAPIURL,
	}
}

// buildMessages constructs the API payload for one label photo.
func buildMessages(imageData []byte, mimeType string) []message {
	return []message{{
		Role: "user",
		Content: []block{
			{
				Type: "image",
				Source: &source{
					Type:      "base64",
					MediaType: normaliseMIME(mimeType),
					Data:      base64.StdEncoding.EncodeToString(imageData),
				},
			},
			{Type: "text", Text: scan.LabelPrompt},
		},
	}}
}

func (s *LabelScanner) Scan(ctx context.Context, r io.Reader, mimeType string) (*scan.Result, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	body := request{
		Model: s.model,
		// A single label line is tiny; 256 tokens leaves headroom for
		// verbose models.
		MaxTokens: 256,
		Messages:  buildMessages(imageData, mimeType),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close claude response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("claude returned status %d: %s", resp.StatusCode, errBody)
	}

	var respBody response
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var responseText string
	for _, blk := range respBody.Content {
		if blk.Type == "text" {
			responseText = blk.Text
			break
		}
	}

	return &scan.Result{
		Label:       scan.ParseResponse(responseText),
		RawResponse: responseText,
	}, nil
}

// normaliseMIME maps unknown image MIME types to image/jpeg, which the API
// accepts for most camera output.
func normaliseMIME(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png", "image/gif", "image/webp", "image/jpeg":
		return strings.ToLower(mimeType)
	default:
		return "image/jpeg"
	}
}
