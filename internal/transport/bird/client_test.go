package bird

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeBird writes an executable shell script standing in for the CLI.
func fakeBird(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "bird")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake bird: %v", err)
	}
	return path
}

func TestSearch_PassesArguments(t *testing.T) {
	bin := fakeBird(t, `printf '%s|' "$@"`)
	c := New(bin, nil)

	out, err := c.Search(context.Background(), "htmx since:2026-01-01", 30, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(out); got != "search|htmx since:2026-01-01|-n|30|--json|" {
		t.Errorf("unexpected args: %q", got)
	}
}

func TestSearch_NonZeroExit(t *testing.T) {
	bin := fakeBird(t, "echo '  rate limited  ' >&2\nexit 2\n")
	c := New(bin, nil)

	_, err := c.Search(context.Background(), "q", 10, 5*time.Second)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if err.Error() != "rate limited" || exitErr.Code != 2 {
		t.Errorf("unexpected error %q code %d", err.Error(), exitErr.Code)
	}
}

func TestSearch_NonZeroExitWithoutStderr(t *testing.T) {
	bin := fakeBird(t, "exit 1\n")
	_, err := New(bin, nil).Search(context.Background(), "q", 10, 5*time.Second)
	if err == nil || err.Error() != "bird search failed" {
		t.Errorf("expected generic failure, got %v", err)
	}
}

func TestSearch_Timeout(t *testing.T) {
	bin := fakeBird(t, "sleep 5\n")
	_, err := New(bin, nil).Search(context.Background(), "q", 10, 100*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestStatus_Authenticated(t *testing.T) {
	bin := fakeBird(t, `if [ "$1" = "whoami" ]; then printf 'alice\nextra\n'; fi`)
	st := New(bin, nil).Status(context.Background())
	if !st.Installed || !st.Authenticated || st.Username != "alice" {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestStatus_NotLoggedIn(t *testing.T) {
	bin := fakeBird(t, "echo 'not logged in' >&2\nexit 1\n")
	st := New(bin, nil).Status(context.Background())
	if !st.Installed || st.Authenticated {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestStatus_NotInstalled(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing-bird"), nil).Status(context.Background())
	if st.Installed || st.Authenticated {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestExitError_Message(t *testing.T) {
	if !strings.Contains((&ExitError{Stderr: "boom"}).Error(), "boom") {
		t.Error("stderr must be the message")
	}
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()
	if err := New(filepath.Join(t.TempDir(), "missing-bird"), nil).HealthCheck(ctx); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled, got %v", err)
	}
	if err := New(fakeBird(t, "exit 1\n"), nil).HealthCheck(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if err := New(fakeBird(t, "echo alice\n"), nil).HealthCheck(ctx); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
}
