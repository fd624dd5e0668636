package generation

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"deckforge/internal/artifacts"
	"deckforge/internal/deck"
	"deckforge/internal/integrity"
	"deckforge/internal/logging"
	"deckforge/internal/render"
	"deckforge/internal/services"
	"deckforge/internal/textutil"
)

// Mode selects what a run regenerates.
type Mode string

const (
	// ModeFull renders the card with freshly generated artwork.
	ModeFull Mode = "full"
	// ModeCardOnly re-renders the card frame, reusing known artwork or a
	// placeholder when none exists.
	ModeCardOnly Mode = "card_only"
	// ModeNewArt re-renders the card and forces new artwork.
	ModeNewArt Mode = "new_art"
	// ModeCustomImage composites the card around a user-supplied image.
	ModeCustomImage Mode = "custom_image"
)

// State is the worker lifecycle: idle -> running <-> paused -> idle.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Request is one generation run: an ordered card queue plus mode settings.
type Request struct {
	RunID   string
	CardIDs []int64
	Mode    Mode
	// CustomImage overrides the card's stored custom image path in
	// ModeCustomImage.
	CustomImage string
}

// Result is the per-card conclusion event payload.
type Result struct {
	CardID      int64
	Success     bool
	Message     string
	ArtworkPath string
	CardPath    string
}

// Report summarizes a finished run.
type Report struct {
	RunID      string
	Started    time.Time
	Finished   time.Time
	Results    []Result
	Dispatched int
	// Halted is set when the fail-fast policy stopped the queue; the
	// remaining cards were never dispatched and stay pending.
	Halted     bool
	HaltReason string
	Stopped    bool
}

// Events receives the worker's observable surface. Implementations must be
// fast; they are invoked synchronously from the worker goroutine.
type Events interface {
	Progress(cardID int64, status deck.Status)
	Completed(result Result)
}

type nopEvents struct{}

func (nopEvents) Progress(int64, deck.Status) {}
func (nopEvents) Completed(Result)            {}

// FailurePolicy decides whether the queue continues past a hard per-card
// failure. Fail-fast is the default: a systemic problem such as a missing
// model checkpoint would repeat deterministically for every remaining card.
type FailurePolicy interface {
	Continue(err error) bool
}

// FailFast halts the queue at the first hard failure.
type FailFast struct{}

func (FailFast) Continue(error) bool { return false }

// ContinueOnError keeps dispatching after per-card failures.
type ContinueOnError struct{}

func (ContinueOnError) Continue(error) bool { return true }

// Worker owns the sequential generation queue. Exactly one renderer process
// is in flight at any time; cards are dispatched in exact enqueue order.
type Worker struct {
	store    *deck.Store
	paths    deck.Paths
	builder  render.Builder
	runner   render.Runner
	resolver artifacts.Resolver
	events   Events
	policy   FailurePolicy
	logger   *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	state   State
	paused  bool
	stopped bool
	done    chan struct{}
	report  Report
}

// WorkerConfig bundles the worker's collaborators.
type WorkerConfig struct {
	Store    *deck.Store
	Paths    deck.Paths
	Builder  render.Builder
	Runner   render.Runner
	Resolver artifacts.Resolver
	Events   Events
	Policy   FailurePolicy
	Logger   *slog.Logger
}

// NewWorker constructs an idle worker.
func NewWorker(cfg WorkerConfig) *Worker {
	if cfg.Events == nil {
		cfg.Events = nopEvents{}
	}
	if cfg.Policy == nil {
		cfg.Policy = FailFast{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	w := &Worker{
		store:    cfg.Store,
		paths:    cfg.Paths,
		builder:  cfg.Builder,
		runner:   cfg.Runner,
		resolver: cfg.Resolver,
		events:   cfg.Events,
		policy:   cfg.Policy,
		logger:   cfg.Logger,
		state:    StateIdle,
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// State reports the current worker state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Start begins processing the request on a background goroutine. It rejects
// a second run while one is active; the queue is copied so later mutation of
// the request does not affect the run.
func (w *Worker) Start(ctx context.Context, req Request) error {
	w.mu.Lock()
	if w.state != StateIdle {
		w.mu.Unlock()
		return services.Wrap(services.ErrValidation, "worker", "start", "a generation run is already active", nil)
	}
	if len(req.CardIDs) == 0 {
		w.mu.Unlock()
		return services.Wrap(services.ErrValidation, "worker", "start", "empty card queue", nil)
	}
	queue := append([]int64(nil), req.CardIDs...)
	w.state = StateRunning
	w.paused = false
	w.stopped = false
	w.done = make(chan struct{})
	w.report = Report{RunID: req.RunID, Started: time.Now()}
	w.mu.Unlock()

	go w.run(ctx, req, queue)
	return nil
}

// Wait blocks until the active run finishes and returns its report.
func (w *Worker) Wait() Report {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.report
}

// Pause suspends dispatch at the next card boundary. The in-flight renderer
// invocation always finishes.
func (w *Worker) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateRunning {
		w.paused = true
		w.state = StatePaused
	}
}

// Resume continues a paused run.
func (w *Worker) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.paused {
		w.paused = false
		if w.state == StatePaused {
			w.state = StateRunning
		}
		w.cond.Broadcast()
	}
}

// Stop ends the run after the current invocation. Cards not yet dispatched
// keep their pending status; finished cards keep their results.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	w.cond.Broadcast()
}

func (w *Worker) run(ctx context.Context, req Request, queue []int64) {
	defer func() {
		w.mu.Lock()
		w.report.Finished = time.Now()
		w.state = StateIdle
		close(w.done)
		w.mu.Unlock()
	}()

	logger := w.logger.With(logging.String(logging.FieldRunID, req.RunID), logging.String(logging.FieldMode, string(req.Mode)))
	logger.Info("generation run started", logging.Int("cards", len(queue)))

	for _, cardID := range queue {
		if !w.awaitDispatch(ctx) {
			w.mu.Lock()
			w.report.Stopped = true
			w.mu.Unlock()
			logger.Info("generation run stopped before queue end")
			return
		}

		result, err := w.processCard(ctx, req, cardID, logger)
		if result != nil {
			w.mu.Lock()
			w.report.Results = append(w.report.Results, *result)
			w.report.Dispatched++
			w.mu.Unlock()
			w.events.Completed(*result)
		}
		if err != nil {
			// Hard per-card failures consult the policy; infrastructure
			// errors (store, cancellation) always end the run.
			if services.IsHardFailure(err) && w.policy.Continue(err) {
				continue
			}
			w.mu.Lock()
			w.report.Halted = true
			w.report.HaltReason = err.Error()
			w.mu.Unlock()
			logger.Error("generation run halted", logging.Error(err))
			return
		}
	}
	logger.Info("generation run finished")
}

// awaitDispatch blocks while paused and reports whether the next card may be
// dispatched.
func (w *Worker) awaitDispatch(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.paused && !w.stopped {
		w.cond.Wait()
	}
	if w.stopped || ctx.Err() != nil {
		return false
	}
	return true
}

func (w *Worker) processCard(ctx context.Context, req Request, cardID int64, logger *slog.Logger) (*Result, error) {
	card, err := w.store.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		// Deck edits can renumber IDs between enqueue and dispatch.
		logger.Warn("card vanished before dispatch", logging.Int64(logging.FieldCardID, cardID))
		return nil, nil
	}

	cardLogger := logger.With(
		logging.Int64(logging.FieldCardID, card.ID),
		logging.String(logging.FieldCardName, card.Name),
	)

	if err := w.store.MarkGenerating(ctx, card.ID); err != nil {
		return nil, err
	}
	w.events.Progress(card.ID, deck.StatusGenerating)
	cardLogger.Info("generating card")

	opts, optWarnings := w.buildOptions(req, card)
	for _, warning := range optWarnings {
		cardLogger.Warn(warning)
	}

	cmd, buildWarnings := w.builder.Build(card, opts)
	for _, warning := range buildWarnings {
		cardLogger.Warn(warning)
	}

	if _, err := w.runner.Run(ctx, cmd); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return w.fail(ctx, card, err, cardLogger), err
	}

	cardPath, artworkPath, err := w.collectArtifacts(card, req.Mode, cardLogger)
	if err != nil {
		return w.fail(ctx, card, err, cardLogger), err
	}

	if err := w.store.MarkCompleted(ctx, card.ID, artworkPath, cardPath); err != nil {
		return nil, err
	}
	cardLogger.Info("card completed", logging.String("card_path", cardPath))
	return &Result{
		CardID:      card.ID,
		Success:     true,
		Message:     "card generated successfully",
		ArtworkPath: artworkPath,
		CardPath:    cardPath,
	}, nil
}

// buildOptions maps the run mode onto renderer flags for one card.
func (w *Worker) buildOptions(req Request, card *deck.Card) (render.Options, []string) {
	opts := render.Options{
		RenderedDir: w.paths.RenderedDir,
		ArtworkDir:  w.paths.ArtworkDir,
	}
	var warnings []string
	switch req.Mode {
	case ModeCardOnly:
		if card.ImagePath != "" && fileExists(card.ImagePath) {
			opts.CustomImage = card.ImagePath
		} else {
			opts.SkipImage = true
			warnings = append(warnings, "no existing artwork for card-only regeneration, using placeholder")
		}
	case ModeCustomImage:
		custom := req.CustomImage
		if custom == "" {
			custom = card.CustomImagePath
		}
		opts.CustomImage = custom
	}
	return opts, warnings
}

// collectArtifacts resolves, validates and relocates the renderer output for
// one card. A clean exit code does not guarantee a usable artifact.
func (w *Worker) collectArtifacts(card *deck.Card, mode Mode, logger *slog.Logger) (string, string, error) {
	safeName := textutil.SafeFileName(card.Name)

	primary, err := artifacts.TakeSnapshot(w.paths.RenderedDir, ".png")
	if err != nil {
		return "", "", services.Wrap(services.ErrArtifact, "artifacts", "snapshot", "list rendered cards", err)
	}
	fallback, err := artifacts.TakeSnapshot(w.paths.ArtworkDir, ".png", ".jpg", ".jpeg")
	if err != nil {
		return "", "", services.Wrap(services.ErrArtifact, "artifacts", "snapshot", "list artwork", err)
	}

	entry, ok := w.resolver.Resolve(primary, fallback, artifacts.Request{
		SafeName: safeName,
		Ext:      ".png",
		Ref:      time.Now(),
	})
	if !ok {
		return "", "", services.Wrap(services.ErrArtifact, "artifacts", "resolve", "no output file found", nil)
	}

	if card.IsCreature() && (card.Power == nil || card.Toughness == nil) {
		// Known corruption cause; surfaced regardless of brightness.
		logger.Error("creature card is missing power or toughness values")
	}

	report, warnings, err := integrity.CheckFile(entry.Path)
	if err != nil {
		return "", "", err
	}
	for _, warning := range warnings {
		logger.Warn(warning, logging.Float64("brightness", report.Overall))
	}

	cardPath := entry.Path
	if mode != ModeCustomImage {
		final := w.paths.RenderedCardPath(card.Name)
		relocated, err := artifacts.Relocate(entry, final)
		if err != nil {
			logger.Warn("could not relocate card file", logging.Error(err))
		}
		cardPath = relocated
	}

	artworkPath := ""
	if art, ok := artifacts.ResolveArtwork(fallback, safeName, textutil.SimpleName(card.Name), ".jpg", ".jpeg", ".png"); ok {
		artworkPath = art.Path
	} else if art, ok := artifacts.CompanionArt(primary, safeName); ok {
		artworkPath = art.Path
	}
	return cardPath, artworkPath, nil
}

func (w *Worker) fail(ctx context.Context, card *deck.Card, cause error, logger *slog.Logger) *Result {
	message := cause.Error()
	if err := w.store.MarkFailed(ctx, card.ID, message); err != nil {
		logger.Error("could not persist failure", logging.Error(err))
	}
	logger.Error("card failed", logging.Error(cause))
	return &Result{CardID: card.ID, Success: false, Message: message}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
