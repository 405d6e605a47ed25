package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultGeminiBaseURL is the public Generative Language API endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiConfig configures the Gemini HTTP client.
type GeminiConfig struct {
	BaseURL string        // defaults to DefaultGeminiBaseURL
	Model   string        // e.g. "gemini-pro"
	APIKey  string        // sent via the x-goog-api-key header
	Timeout time.Duration // per-request timeout; defaults to 60s
}

// Gemini is a Completer backed by the Google Generative Language API.
// Authentication uses the x-goog-api-key request header.
type Gemini struct {
	cfg    GeminiConfig
	client *http.Client
	log    zerolog.Logger
}

// NewGemini creates a Gemini client from cfg.
func NewGemini(cfg GeminiConfig, log zerolog.Logger) *Gemini {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Gemini{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Complete sends prompt to the generateContent endpoint and returns the
// text of the first candidate.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.Model)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("backend: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend: call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readGeminiError(resp.Body)
		g.log.Warn().Int("status", resp.StatusCode).Str("detail", msg).Msg("gemini request failed")
		return "", fmt.Errorf("backend: gemini status %d: %s", resp.StatusCode, msg)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("backend: decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("backend: gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// readGeminiError extracts the error message from a non-2xx response body.
// Bodies that don't match the documented error shape are returned verbatim,
// truncated to keep log lines sane.
func readGeminiError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error body"
	}
	var e geminiErrorResponse
	if json.Unmarshal(data, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(data))
}
