package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	sdk "github.com/sashabaranov/go-openai"

	"explainer/internal/captions"
	"explainer/internal/textutil"
)

const (
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// Config captures the runtime settings required to talk to the provider.
type Config struct {
	APIKey             string
	BaseURL            string
	ChatModel          string
	TTSModel           string
	TranscriptionModel string
	// TimeoutSeconds bounds each HTTP exchange, body included. Zero waits indefinitely.
	TimeoutSeconds int
	RetryAttempts  int
}

// Client wraps the go-openai SDK with retry handling.
type Client struct {
	cfg Config
	api *sdk.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
	httpClient       *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a provider client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	client := &Client{
		cfg:              cfg,
		retryMaxAttempts: cfg.RetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{}
		if cfg.TimeoutSeconds > 0 {
			client.httpClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
	}

	sdkConfig := sdk.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdkConfig.BaseURL = cfg.BaseURL
	}
	sdkConfig.HTTPClient = client.httpClient
	client.api = sdk.NewClientWithConfig(sdkConfig)
	return client
}

// Completer issues chat completions at a fixed sampling temperature.
type Completer struct {
	client      *Client
	temperature float32
}

// Completer returns a chat completer bound to the given temperature.
func (c *Client) Completer(temperature float64) Completer {
	return Completer{client: c, temperature: float32(temperature)}
}

// Complete sends a system + user prompt pair and returns the response text.
func (m Completer) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.client.Complete(ctx, systemPrompt, userPrompt, m.temperature)
}

type emptyContentError struct {
	FinishReason string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("chat completion: empty content (finish_reason=%q)", e.FinishReason)
}

// Complete sends a chat completion request and returns the first non-empty choice.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("chat completion: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("chat completion: api key required")
	}
	messages := make([]sdk.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, sdk.ChatCompletionMessage{Role: sdk.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, sdk.ChatCompletionMessage{Role: sdk.ChatMessageRoleUser, Content: userPrompt})
	request := sdk.ChatCompletionRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		Temperature: temperature,
	}

	var content string
	err := c.withRetry(ctx, "chat completion", func() error {
		resp, err := c.api.CreateChatCompletion(ctx, request)
		if err != nil {
			return err
		}
		var finish string
		for _, choice := range resp.Choices {
			if finish == "" {
				finish = string(choice.FinishReason)
			}
			if text := strings.TrimSpace(choice.Message.Content); text != "" {
				content = text
				return nil
			}
		}
		return &emptyContentError{FinishReason: finish}
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// Speak synthesizes text as MP3 audio. The caller closes the returned stream.
func (c *Client) Speak(ctx context.Context, text, voice, instructions string) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("speech: input text required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("speech: api key required")
	}
	request := sdk.CreateSpeechRequest{
		Model:          sdk.SpeechModel(c.cfg.TTSModel),
		Input:          text,
		Voice:          sdk.SpeechVoice(voice),
		Instructions:   instructions,
		ResponseFormat: sdk.SpeechResponseFormatMp3,
	}

	var stream io.ReadCloser
	err := c.withRetry(ctx, "speech", func() error {
		resp, err := c.api.CreateSpeech(ctx, request)
		if err != nil {
			return err
		}
		stream = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Transcribe uploads an audio file and returns its segment-level transcript.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string) ([]captions.Segment, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, errors.New("transcription: audio path required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("transcription: api key required")
	}
	request := sdk.AudioRequest{
		Model:    c.cfg.TranscriptionModel,
		FilePath: audioPath,
		Language: language,
		Format:   sdk.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []sdk.TranscriptionTimestampGranularity{
			sdk.TranscriptionTimestampGranularitySegment,
		},
	}

	var segments []captions.Segment
	err := c.withRetry(ctx, "transcription", func() error {
		resp, err := c.api.CreateTranscription(ctx, request)
		if err != nil {
			return err
		}
		segments = make([]captions.Segment, 0, len(resp.Segments))
		for _, seg := range resp.Segments {
			segments = append(segments, captions.Segment{
				Start: seg.Start,
				End:   seg.End,
				Text:  strings.TrimSpace(seg.Text),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func (c *Client) withRetry(ctx context.Context, op string, call func() error) error {
	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			break
		}
		if err := c.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if attempts > 1 {
		return fmt.Errorf("%s: failed after %d attempts: %s: %w", op, attempts, textutil.Snippet(lastErr.Error(), 200), lastErr)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var empty *emptyContentError
	if errors.As(err, &empty) {
		return c.backoffDelay(attempt), true
	}

	if status := httpStatus(err); status != 0 {
		if retryableStatus(status) {
			return c.backoffDelay(attempt), true
		}
		return 0, false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func httpStatus(err error) int {
	var apiErr *sdk.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *sdk.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func retryableStatus(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= http.StatusInternalServerError
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if c.retryMaxDelay > 0 && delay >= c.retryMaxDelay {
			return c.retryMaxDelay
		}
	}
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
