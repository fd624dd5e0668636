package generation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"deckforge/internal/artifacts"
	"deckforge/internal/config"
	"deckforge/internal/deck"
	"deckforge/internal/logging"
	"deckforge/internal/render"
	"deckforge/internal/services"
)

// lockFileName guards a deck directory against concurrent generation runs
// from separate processes.
const lockFileName = ".deckforge.lock"

// ArtDescriber produces an art prompt for a card. The implementation lives
// outside the pipeline; typically an LLM client supplied by the caller.
type ArtDescriber interface {
	Describe(ctx context.Context, card *deck.Card) (string, error)
}

// Controller is the public pipeline facade: it validates requests, guards
// against concurrent runs, drives the worker, and aggregates statistics.
type Controller struct {
	cfg    *config.Config
	store  *deck.Store
	paths  deck.Paths
	runner render.Runner
	events Events
	policy FailurePolicy
	logger *slog.Logger

	mu     sync.Mutex
	worker *Worker
}

// ControllerOption customizes controller construction.
type ControllerOption func(*Controller)

// WithRunner replaces the default renderer runner.
func WithRunner(runner render.Runner) ControllerOption {
	return func(c *Controller) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// WithEvents registers the consumer of progress and completion events.
func WithEvents(events Events) ControllerOption {
	return func(c *Controller) {
		if events != nil {
			c.events = events
		}
	}
}

// WithPolicy overrides the failure policy derived from configuration.
func WithPolicy(policy FailurePolicy) ControllerOption {
	return func(c *Controller) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// WithControllerLogger sets the logger for the controller and its workers.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController wires a controller over an open deck store.
func NewController(cfg *config.Config, store *deck.Store, opts ...ControllerOption) *Controller {
	c := &Controller{
		cfg:    cfg,
		store:  store,
		paths:  store.Paths(),
		events: nopEvents{},
		logger: logging.NewNop(),
	}
	if cfg.Generation.ContinueOnError {
		c.policy = ContinueOnError{}
	} else {
		c.policy = FailFast{}
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		c.runner = render.NewCLI(
			render.WithTimeout(time.Duration(cfg.Renderer.TimeoutSeconds)*time.Second),
			render.WithLogger(c.logger),
		)
	}
	return c
}

// Active reports whether a run is in flight.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worker != nil && c.worker.State() != StateIdle
}

// Pause suspends the active run at the next card boundary.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.worker != nil {
		c.worker.Pause()
	}
}

// Resume continues a paused run.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.worker != nil {
		c.worker.Resume()
	}
}

// Stop ends the active run after the in-flight card.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.worker != nil {
		c.worker.Stop()
	}
}

// Validate checks a card list before any process starts. It aggregates every
// problem instead of stopping at the first, and mutates nothing.
func (c *Controller) Validate(cards []*deck.Card, mode Mode) error {
	var problems []string
	for _, card := range cards {
		if strings.TrimSpace(card.Name) == "" {
			problems = append(problems, fmt.Sprintf("card %d has no name", card.ID))
		}
		if strings.TrimSpace(card.TypeLine) == "" {
			problems = append(problems, fmt.Sprintf("card %d (%s) has no type line", card.ID, card.Name))
		}
		if limit := c.cfg.Generation.MaxRulesTextLength; limit > 0 && len(card.RulesText) > limit {
			problems = append(problems, fmt.Sprintf("card %d (%s) rules text exceeds %d characters", card.ID, card.Name, limit))
		}
		if requiresArtDescription(mode) && !card.HasArtDescription() && card.CustomImagePath == "" {
			problems = append(problems, fmt.Sprintf("card %d (%s) has no art description", card.ID, card.Name))
		}
	}
	if len(problems) > 0 {
		return services.Wrap(services.ErrValidation, "controller", "validate", strings.Join(problems, "; "), nil)
	}
	return nil
}

// requiresArtDescription reports whether the mode generates new artwork and
// therefore needs a prompt to feed the renderer.
func requiresArtDescription(mode Mode) bool {
	return mode == ModeFull || mode == ModeNewArt
}

// GenerateMissing runs every pending card in ID order.
func (c *Controller) GenerateMissing(ctx context.Context) (Report, error) {
	cards, err := c.store.ListByStatus(ctx, deck.StatusPending)
	if err != nil {
		return Report{}, err
	}
	return c.run(ctx, cardIDs(cards), ModeFull, "")
}

// RetryFailed resets failed cards to pending and regenerates them.
func (c *Controller) RetryFailed(ctx context.Context) (Report, error) {
	cards, err := c.store.ListByStatus(ctx, deck.StatusFailed)
	if err != nil {
		return Report{}, err
	}
	ids := cardIDs(cards)
	if len(ids) == 0 {
		return Report{}, services.Wrap(services.ErrValidation, "controller", "retry", "no failed cards to retry", nil)
	}
	if err := c.store.ResetToPending(ctx, ids...); err != nil {
		return Report{}, err
	}
	return c.run(ctx, ids, ModeFull, "")
}

// RegenerateSelected force-resets the given cards regardless of status and
// regenerates them in the requested mode.
func (c *Controller) RegenerateSelected(ctx context.Context, ids []int64, mode Mode) (Report, error) {
	if len(ids) == 0 {
		return Report{}, services.Wrap(services.ErrValidation, "controller", "regenerate", "no cards selected", nil)
	}
	if err := c.store.ResetToPending(ctx, ids...); err != nil {
		return Report{}, err
	}
	return c.run(ctx, ids, mode, "")
}

// UseCustomImage records a user-supplied artwork file on the card and
// regenerates it around that image.
func (c *Controller) UseCustomImage(ctx context.Context, id int64, imagePath string) (Report, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return Report{}, services.Wrap(services.ErrValidation, "controller", "custom-image", "custom image not readable: "+imagePath, err)
	}
	card, err := c.store.GetByID(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if card == nil {
		return Report{}, services.Wrap(services.ErrNotFound, "controller", "custom-image", fmt.Sprintf("card %d not found", id), nil)
	}
	card.CustomImagePath = imagePath
	card.Status = deck.StatusPending
	if err := c.store.Update(ctx, card); err != nil {
		return Report{}, err
	}
	return c.run(ctx, []int64{id}, ModeCustomImage, imagePath)
}

// GenerateArtDescriptions fills in the art prompt for every card missing
// one. No renderer process is involved.
func (c *Controller) GenerateArtDescriptions(ctx context.Context, describer ArtDescriber) (int, error) {
	if describer == nil {
		return 0, services.Wrap(services.ErrValidation, "controller", "describe", "no art describer supplied", nil)
	}
	cards, err := c.store.List(ctx)
	if err != nil {
		return 0, err
	}
	described := 0
	for _, card := range cards {
		if card.HasArtDescription() {
			continue
		}
		description, err := describer.Describe(ctx, card)
		if err != nil {
			return described, err
		}
		card.ArtDescription = description
		if err := c.store.Update(ctx, card); err != nil {
			return described, err
		}
		described++
		c.logger.Info("art description added",
			logging.Int64(logging.FieldCardID, card.ID),
			logging.String(logging.FieldCardName, card.Name))
	}
	return described, nil
}

// DeleteGenerated removes the rendered artifacts of the given cards and
// resets them to pending.
func (c *Controller) DeleteGenerated(ctx context.Context, ids []int64) error {
	if c.Active() {
		return services.Wrap(services.ErrValidation, "controller", "delete", "a generation run is active", nil)
	}
	for _, id := range ids {
		card, err := c.store.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if card == nil {
			continue
		}
		for _, path := range []string{card.CardPath, card.ImagePath, c.paths.RenderedCardPath(card.Name)} {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return services.Wrap(services.ErrConfiguration, "controller", "delete", "remove "+path, err)
			}
		}
		if err := c.store.ClearArtifacts(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Statistics aggregates current per-status counts with the outcome of the
// last run report, if any.
func (c *Controller) Statistics(ctx context.Context, report *Report) (Statistics, error) {
	counts, err := c.store.Counts(ctx)
	if err != nil {
		return Statistics{}, err
	}
	return BuildStatistics(counts, report), nil
}

// run validates the selected cards, takes the deck lock, and drives a worker
// to completion. It is synchronous; pause and stop act through the
// controller from other goroutines.
func (c *Controller) run(ctx context.Context, ids []int64, mode Mode, customImage string) (Report, error) {
	if len(ids) == 0 {
		return Report{}, services.Wrap(services.ErrValidation, "controller", "run", "no cards to generate", nil)
	}

	cards := make([]*deck.Card, 0, len(ids))
	for _, id := range ids {
		card, err := c.store.GetByID(ctx, id)
		if err != nil {
			return Report{}, err
		}
		if card == nil {
			return Report{}, services.Wrap(services.ErrNotFound, "controller", "run", fmt.Sprintf("card %d not found", id), nil)
		}
		cards = append(cards, card)
	}
	if err := c.Validate(cards, mode); err != nil {
		return Report{}, err
	}

	if err := c.paths.EnsureDirectories(); err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "controller", "run", "prepare deck directories", err)
	}

	deckLock := flock.New(filepath.Join(c.paths.Root, lockFileName))
	locked, err := deckLock.TryLock()
	if err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "controller", "run", "acquire deck lock", err)
	}
	if !locked {
		return Report{}, services.Wrap(services.ErrValidation, "controller", "run", "another process is generating into this deck", nil)
	}
	defer func() {
		_ = deckLock.Unlock()
	}()

	worker := NewWorker(WorkerConfig{
		Store: c.store,
		Paths: c.paths,
		Builder: render.Builder{
			Binary:    c.cfg.Renderer.Binary,
			ExtraArgs: c.cfg.Renderer.ExtraArgs,
			Model:     c.cfg.Renderer.Model,
			Style:     c.cfg.Renderer.Style,
		},
		Runner:   c.runner,
		Resolver: artifacts.Resolver{Window: time.Duration(c.cfg.Generation.ArtifactWindowSeconds) * time.Second},
		Events:   c.events,
		Policy:   c.policy,
		Logger:   c.logger,
	})

	c.mu.Lock()
	if c.worker != nil && c.worker.State() != StateIdle {
		c.mu.Unlock()
		return Report{}, services.Wrap(services.ErrValidation, "controller", "run", "a generation run is already active", nil)
	}
	c.worker = worker
	c.mu.Unlock()

	req := Request{
		RunID:       uuid.NewString(),
		CardIDs:     ids,
		Mode:        mode,
		CustomImage: customImage,
	}
	if err := worker.Start(ctx, req); err != nil {
		return Report{}, err
	}
	report := worker.Wait()
	if report.Halted {
		c.logger.Error("generation stopped", logging.String("reason", report.HaltReason))
	}
	return report, nil
}

func cardIDs(cards []*deck.Card) []int64 {
	ids := make([]int64, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}
	return ids
}
