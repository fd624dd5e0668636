package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"deckforge/internal/services"
)

func stubRenderer(t *testing.T, mode string) *[]string {
	t.Helper()

	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "RENDERER_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &capturedArgs
}

func TestRunRequiresBinary(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Run(context.Background(), Command{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunCapturesOutputOnSuccess(t *testing.T) {
	captured := stubRenderer(t, "success")

	cli := NewCLI()
	result, err := cli.Run(context.Background(), Command{Binary: "generate-card", Args: []string{"--name", "Opt"}})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d", result.ExitCode)
	}
	if !strings.Contains(result.Stdout, "SUCCESS") {
		t.Fatalf("stdout = %q", result.Stdout)
	}
	if len(*captured) == 0 {
		t.Fatal("expected command arguments to be captured")
	}
}

func TestRunNonZeroExitIsRendererError(t *testing.T) {
	stubRenderer(t, "failure")

	cli := NewCLI()
	result, err := cli.Run(context.Background(), Command{Binary: "generate-card"})
	if !errors.Is(err, services.ErrRenderer) {
		t.Fatalf("expected renderer error, got %v", err)
	}
	if !services.IsHardFailure(err) {
		t.Fatalf("expected hard failure classification for %v", err)
	}
	if result.ExitCode != 2 {
		t.Fatalf("exit code = %d", result.ExitCode)
	}
	if !strings.Contains(err.Error(), "model checkpoint not found") {
		t.Fatalf("expected stderr tail in message, got %q", err.Error())
	}
}

func TestRunTimeout(t *testing.T) {
	stubRenderer(t, "hang")

	cli := NewCLI(WithTimeout(100 * time.Millisecond))
	_, err := cli.Run(context.Background(), Command{Binary: "generate-card"})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !services.IsHardFailure(err) {
		t.Fatalf("expected hard failure classification for %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("RENDERER_HELPER_MODE") {
	case "success":
		fmt.Println("Generating artwork")
		fmt.Println("SUCCESS: card saved")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "model checkpoint not found")
		os.Exit(2)
	case "hang":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
