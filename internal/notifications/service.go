package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"explainer/internal/config"
)

const userAgent = "explainer/0.1"

// RunSummary describes a successful run.
type RunSummary struct {
	RunID      string
	OutputPath string
	Language   string
	Elapsed    time.Duration
}

// RunFailure describes a run that stopped at a stage.
type RunFailure struct {
	RunID   string
	Stage   string
	Kind    string
	Message string
}

// Service is the notification surface used by the pipeline and CLI.
type Service interface {
	NotifyRunCompleted(ctx context.Context, run RunSummary) error
	NotifyRunFailed(ctx context.Context, run RunFailure) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed Service, or a no-op when the topic is empty.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc delivers anything.
func Enabled(svc Service) bool {
	if svc == nil {
		return false
	}
	_, noop := svc.(noopService)
	return !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, run RunSummary) error {
	name := filepath.Base(strings.TrimSpace(run.OutputPath))
	message := fmt.Sprintf("🎬 Video ready: %s", name)
	if run.Elapsed > 0 {
		message += fmt.Sprintf(" (%s)", run.Elapsed.Round(time.Second))
	}
	tags := []string{"explainer", "run", "completed"}
	if lang := strings.TrimSpace(run.Language); lang != "" {
		tags = append(tags, lang)
	}
	return n.send(ctx, payload{
		title:   "Explainer - Video Ready",
		message: message,
		tags:    tags,
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, run RunFailure) error {
	var b strings.Builder
	b.WriteString("❌ Run ")
	b.WriteString(shortID(run.RunID))
	b.WriteString(" failed")
	if stage := strings.TrimSpace(run.Stage); stage != "" {
		b.WriteString(" at ")
		b.WriteString(stage)
	}
	if kind := strings.TrimSpace(run.Kind); kind != "" {
		b.WriteString(" (")
		b.WriteString(kind)
		b.WriteString(")")
	}
	if msg := strings.TrimSpace(run.Message); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return n.send(ctx, payload{
		title:    "Explainer - Run Failed",
		message:  b.String(),
		tags:     []string{"explainer", "run", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Explainer - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"explainer", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunSummary) error { return nil }
func (noopService) NotifyRunFailed(context.Context, RunFailure) error    { return nil }
func (noopService) TestNotification(context.Context) error              { return nil }
