// Package bird runs the bird CLI, a logged-in X client.
package bird

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/metrics"
)

// DefaultBinary is looked up on PATH.
const DefaultBinary = "bird"

const whoamiTimeout = 10 * time.Second

var (
	// ErrTimeout is returned when a search exceeds its deadline.
	ErrTimeout = errors.New("search timed out")
	// ErrNotInstalled is returned by HealthCheck when the binary is not on PATH.
	ErrNotInstalled = errors.New("bird not installed")
	// ErrNotAuthenticated is returned by HealthCheck when whoami reports no user.
	ErrNotAuthenticated = errors.New("bird not authenticated")
)

// ExitError is a non-zero exit. Error returns the trimmed stderr.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return "bird search failed"
	}
	return e.Stderr
}

// Status describes the local CLI.
type Status struct {
	Installed     bool   `json:"installed"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	CanInstall    bool   `json:"can_install"`
}

// Client invokes the CLI binary.
type Client struct {
	binary string
	logger *zap.Logger
}

// New creates a Client. An empty binary uses DefaultBinary.
func New(binary string, logger *zap.Logger) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{binary: binary, logger: logger}
}

// Search runs `bird search <query> -n <count> --json` and returns stdout.
func (c *Client) Search(ctx context.Context, query string, count int, timeout time.Duration) ([]byte, error) {
	start := time.Now()
	out, err := c.run(ctx, timeout, "search", query, "-n", strconv.Itoa(count), "--json")

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ProviderRequestsTotal.WithLabelValues("bird", "cli", status).Inc()
	metrics.ProviderRequestDuration.WithLabelValues("bird", "cli").Observe(time.Since(start).Seconds())
	return out, err
}

// Status probes installation and login via `bird whoami`.
func (c *Client) Status(ctx context.Context) Status {
	var st Status
	_, npmErr := exec.LookPath("npm")
	st.CanInstall = npmErr == nil

	if _, err := exec.LookPath(c.binary); err != nil {
		return st
	}
	st.Installed = true

	out, err := c.run(ctx, whoamiTimeout, "whoami")
	if err != nil {
		c.logger.Debug("bird whoami failed", zap.Error(err))
		return st
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line = strings.TrimSpace(line); line != "" {
		st.Authenticated = true
		st.Username = line
	}
	return st
}

// HealthCheck fails unless the CLI is installed and logged in.
func (c *Client) HealthCheck(ctx context.Context) error {
	st := c.Status(ctx)
	switch {
	case !st.Installed:
		return ErrNotInstalled
	case !st.Authenticated:
		return ErrNotAuthenticated
	}
	return nil
}

func (c *Client) run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// don't wait on grandchildren holding the pipes after a kill
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, ErrTimeout
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return nil, err
	}
	return bytes.TrimSpace(stdout.Bytes()), nil
}
