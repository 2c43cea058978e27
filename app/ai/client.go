package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/airightslab/monitor/app/content"
)

// SummaryUnavailable is the deterministic marker stored when the
// enrichment capability cannot produce a summary.
const SummaryUnavailable = "(AI summary unavailable.)"

// DefaultRelevance is stored when the model returns a non-numeric
// relevance reply or the call fails outright.
const DefaultRelevance = 0.5

// maxPromptChars bounds the text sent to the model per call.
const maxPromptChars = 8000

// Enricher is the AI capability consumed by the pipeline. Every
// operation degrades to a documented fallback instead of returning an
// error: the pipeline treats enrichment as best-effort.
type Enricher interface {
	Summarize(ctx context.Context, text string) string
	Categorize(ctx context.Context, text string) content.Category
	ScoreRelevance(ctx context.Context, text string) float64
	Transcribe(ctx context.Context, audioURL string) string
}

var _ Enricher = (*Client)(nil)

// Client provides access to an OpenAI-compatible endpoint for
// summarization, categorization, relevance scoring and transcription.
type Client struct {
	client       *openai.Client
	chatModel    string
	whisperModel string
	httpClient   *http.Client
	enabled      bool
}

// Config holds configuration for creating an enrichment client.
type Config struct {
	APIKey       string // Empty disables enrichment; all operations fall back
	BaseURL      string // Optional OpenAI-compatible endpoint
	ChatModel    string
	WhisperModel string
}

// NewClient creates a new enrichment client. An empty API key yields a
// client whose operations return fallbacks without network calls.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	c := &Client{
		chatModel:    cfg.ChatModel,
		whisperModel: cfg.WhisperModel,
		httpClient:   httpClient,
		enabled:      cfg.APIKey != "",
	}

	if !c.enabled {
		slog.Warn("Enrichment disabled: no API key configured, operations will return fallbacks")
		return c
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	c.client = openai.NewClientWithConfig(clientConfig)

	return c
}

// Summarize produces a short summary of the given text. On any
// failure it returns the SummaryUnavailable marker, never an error.
func (c *Client) Summarize(ctx context.Context, text string) string {
	if !c.enabled {
		return SummaryUnavailable
	}

	reply, err := c.chat(ctx,
		"You are a helpful assistant that summarizes articles about AI and human rights. Summarize the following text in 1-2 sentences.",
		text, 150, 0.3)
	if err != nil {
		slog.Error("Summary generation failed, using fallback", "error", err)
		return SummaryUnavailable
	}

	if reply == "" {
		return SummaryUnavailable
	}

	return reply
}

// Categorize labels the given text as Risk-focused or
// Opportunity-focused. Failures and unrecognized replies degrade to
// CategoryUncategorized, never an error and never an empty category.
func (c *Client) Categorize(ctx context.Context, text string) content.Category {
	if !c.enabled {
		return content.CategoryUncategorized
	}

	prompt := fmt.Sprintf(
		"You are an expert in AI and human rights. Categorize the following article as either '%s' or '%s'. Respond with only one of these two options.",
		content.CategoryRisk, content.CategoryOpportunity)

	reply, err := c.chat(ctx, prompt, text, 10, 0.0)
	if err != nil {
		slog.Error("Categorization failed, using fallback", "error", err)
		return content.CategoryUncategorized
	}

	switch content.Category(strings.TrimSpace(reply)) {
	case content.CategoryRisk:
		return content.CategoryRisk
	case content.CategoryOpportunity:
		return content.CategoryOpportunity
	}

	slog.Warn("Unrecognized category reply, using fallback", "reply", reply)
	return content.CategoryUncategorized
}

// ScoreRelevance rates how relevant the text is to AI and human
// rights on a 0..1 scale. Numeric replies are clamped into [0,1];
// non-numeric replies and failures yield DefaultRelevance.
func (c *Client) ScoreRelevance(ctx context.Context, text string) float64 {
	if !c.enabled {
		return DefaultRelevance
	}

	reply, err := c.chat(ctx,
		"Rate the relevance of the following text to the topic of AI and human rights on a scale from 0.0 to 1.0. Respond with only the number.",
		text, 10, 0.0)
	if err != nil {
		slog.Error("Relevance scoring failed, using fallback", "error", err)
		return DefaultRelevance
	}

	return ParseRelevance(reply)
}

// Transcribe downloads the audio at audioURL and transcribes it. The
// temporary audio file is removed on all exit paths. An empty result
// means the caller should skip the item.
func (c *Client) Transcribe(ctx context.Context, audioURL string) string {
	if !c.enabled {
		return ""
	}

	audioPath, err := c.downloadAudio(ctx, audioURL)
	if err != nil {
		slog.Error("Audio download failed, skipping transcription", "url", audioURL, "error", err)
		return ""
	}
	defer os.Remove(audioPath)

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.whisperModel,
		FilePath: audioPath,
	})
	if err != nil {
		slog.Error("Transcription failed, skipping item", "url", audioURL, "error", err)
		return ""
	}

	return strings.TrimSpace(resp.Text)
}

// chat issues a single chat completion with a system prompt and the
// (length-bounded) text as the user message.
func (c *Client) chat(ctx context.Context, systemPrompt, text string, maxTokens int, temperature float32) (string, error) {
	text = truncatePrompt(text)

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	slog.Debug("Enrichment call completed",
		"model", c.chatModel,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed", time.Since(start))

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// downloadAudio fetches the enclosure into a temporary file and
// returns its path. The caller owns removal.
func (c *Client) downloadAudio(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	ext := path.Ext(audioURL)
	if ext == "" || len(ext) > 5 {
		ext = ".mp3"
	}

	tmpFile, err := os.CreateTemp("", "episode-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to close audio file: %w", err)
	}

	return tmpFile.Name(), nil
}

// truncatePrompt bounds the text sent per call, backing off to a rune
// boundary so the model never receives a split UTF-8 sequence.
func truncatePrompt(s string) string {
	if len(s) <= maxPromptChars {
		return s
	}
	cut := maxPromptChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ParseRelevance converts a model reply into a score in [0,1].
// Numeric replies are clamped; anything else maps to DefaultRelevance.
func ParseRelevance(reply string) float64 {
	trimmed := strings.TrimSpace(reply)
	trimmed = strings.TrimSuffix(trimmed, ".")

	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		// Some models answer "Relevance: 0.8"; take the last field
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			return DefaultRelevance
		}
		score, err = strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return DefaultRelevance
		}
	}

	return Clamp01(score)
}

// Clamp01 clamps v into [0.0, 1.0].
func Clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
