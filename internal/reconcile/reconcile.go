package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"explainer/internal/captions"
	"explainer/internal/fileutil"
	"explainer/internal/logging"
	"explainer/internal/script"
	"explainer/internal/services"
	"explainer/internal/textutil"
)

const stageName = "reconcile"

// Corrector rewrites text from a system and user prompt.
type Corrector interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options controls post-processing.
type Options struct {
	// Centered upper-cases the corrected captions for full-frame display.
	Centered bool
	// EnforceStructure rejects responses whose indices or time codes differ
	// from the draft, or that do not parse as captions.
	EnforceStructure bool
}

// Correction is the reconciled caption track.
type Correction struct {
	// Text is the post-processed response, written to disk as-is.
	Text string
	// Track is Text parsed; empty when Text is not valid SRT.
	Track captions.Track
	// Drift lists structural differences from the draft.
	Drift []string
	// ParseErr is set when Text could not be parsed.
	ParseErr error
}

// Write persists the corrected caption text.
func (c Correction) Write(path string) error {
	text := strings.TrimRight(c.Text, "\n") + "\n\n"
	if err := fileutil.WriteFileAtomic(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write corrected captions: %w", err)
	}
	return nil
}

// Reconciler repairs transcription noise in a draft track.
type Reconciler struct {
	corrector Corrector
	opts      Options
	logger    *slog.Logger
}

// NewReconciler constructs a Reconciler.
func NewReconciler(corrector Corrector, opts Options, logger *slog.Logger) *Reconciler {
	return &Reconciler{corrector: corrector, opts: opts, logger: logging.NewComponentLogger(logger, stageName)}
}

// Reconcile corrects draft against s and returns the replacement track.
// The draft is not modified.
func (r *Reconciler) Reconcile(ctx context.Context, draft captions.Track, s script.Script) (Correction, error) {
	if draft.Empty() {
		return Correction{}, services.Wrap(services.ErrReconciliation, stageName, "prepare", "draft caption track is empty", nil)
	}
	if r.corrector == nil {
		return Correction{}, services.Wrap(services.ErrReconciliation, stageName, "correct", "no text corrector configured", nil)
	}
	logger := logging.WithContext(ctx, r.logger)
	profile := s.Language.Profile()
	systemPrompt, userPrompt := buildPrompts(profile.Code, s.Text, draft.String())

	raw, err := r.corrector.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return Correction{}, services.Wrap(services.ErrReconciliation, stageName, "correct", "caption correction failed", err)
	}
	text := textutil.StripCodeFence(raw)
	if text == "" {
		return Correction{}, services.Wrap(services.ErrReconciliation, stageName, "correct", "caption correction returned empty content", nil)
	}
	if r.opts.Centered {
		text = cases.Upper(profile.Code.Tag()).String(text)
	}

	correction := Correction{Text: text}
	correction.Track, correction.ParseErr = captions.Parse(text)
	if correction.ParseErr != nil {
		correction.Drift = []string{"response is not valid caption text: " + correction.ParseErr.Error()}
	} else {
		correction.Drift = captions.StructureDrift(draft, correction.Track)
	}

	if len(correction.Drift) > 0 {
		if r.opts.EnforceStructure {
			return Correction{}, services.Wrap(services.ErrReconciliation, stageName, "verify",
				fmt.Sprintf("corrected captions changed structure (%s)", summarizeDrift(correction.Drift)), nil)
		}
		logging.WarnWithContext(logger, "corrected captions drifted from draft structure", "caption_structure_drift",
			logging.Int("drift_count", len(correction.Drift)),
			logging.String("drift", summarizeDrift(correction.Drift)),
			logging.String(logging.FieldImpact, "captions may be mistimed against the narration"),
			logging.String(logging.FieldErrorHint, "set reconcile.enforce_structure = true to fail instead"),
		)
	}

	attrs := []logging.Attr{
		logging.Int("chunks", correction.Track.Len()),
		logging.Bool("centered", r.opts.Centered),
	}
	if correction.ParseErr == nil {
		attrs = append(attrs,
			logging.Float64("draft_similarity", round3(textutil.TextSimilarity(draft.Text(), s.Text))),
			logging.Float64("corrected_similarity", round3(textutil.TextSimilarity(correction.Track.Text(), s.Text))),
		)
	}
	logger.Info("captions reconciled", logging.Args(attrs...)...)
	return correction, nil
}

func summarizeDrift(drift []string) string {
	const limit = 3
	if len(drift) <= limit {
		return strings.Join(drift, "; ")
	}
	return strings.Join(drift[:limit], "; ") + fmt.Sprintf("; and %d more", len(drift)-limit)
}

func round3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}
