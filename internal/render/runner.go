package render

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"deckforge/internal/logging"
	"deckforge/internal/services"
)

var commandContext = exec.CommandContext

// Result captures the observable outcome of one renderer invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes renderer commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Option configures the CLI runner.
type Option func(*CLI)

// WithTimeout bounds each invocation. Zero disables the deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		c.timeout = timeout
	}
}

// WithLogger routes classified renderer output through the given logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// CLI runs the renderer as an external process, capturing stdout and stderr
// in full. Output is relayed line-by-line at classified severities after the
// process exits.
type CLI struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewCLI constructs a runner using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Run executes cmd and waits for it to exit. A deadline overrun maps to a
// timeout error; a non-zero exit maps to a renderer error carrying the tail
// of stderr. The captured output is returned in both cases so callers can
// persist diagnostics.
func (c *CLI) Run(ctx context.Context, cmd Command) (Result, error) {
	if strings.TrimSpace(cmd.Binary) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "renderer", "run", "renderer binary not configured", nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	proc := commandContext(runCtx, cmd.Binary, cmd.Args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	c.logger.Debug("launching renderer", logging.String("command", cmd.Display()))

	runErr := proc.Run()
	result := Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if proc.ProcessState != nil {
		result.ExitCode = proc.ProcessState.ExitCode()
	}
	c.relayOutput(result)

	if runErr == nil {
		return result, nil
	}

	if ctxErr := runCtx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return result, services.Wrap(services.ErrTimeout, "renderer", "run", "renderer exceeded timeout of "+c.timeout.String(), nil)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return result, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return result, services.Wrap(services.ErrRenderer, "renderer", "run", exitMessage(result), nil)
	}
	return result, services.Wrap(services.ErrRenderer, "renderer", "run", "start renderer", runErr)
}

func (c *CLI) relayOutput(result Result) {
	for _, line := range splitLines(result.Stdout) {
		severity := Classify(line)
		c.logger.Log(context.Background(), severity.Level(), line,
			logging.String("stream", "stdout"),
			logging.String("severity", string(severity)))
	}
	for _, line := range splitLines(result.Stderr) {
		c.logger.Log(context.Background(), slog.LevelError, line,
			logging.String("stream", "stderr"))
	}
}

func splitLines(output string) []string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return nil
	}
	raw := strings.Split(trimmed, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func exitMessage(result Result) string {
	message := "renderer exited with code " + strconv.Itoa(result.ExitCode)
	if tail := outputTail(result.Stderr, 3); tail != "" {
		message += ": " + tail
	}
	return message
}

// outputTail joins the last n non-empty lines so failure messages stay short.
func outputTail(output string, n int) string {
	lines := splitLines(output)
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "; ")
}

var _ Runner = (*CLI)(nil)
