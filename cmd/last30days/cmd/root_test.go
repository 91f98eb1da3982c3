package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkaiera/last30days-skill/internal/config"
	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/usecase/report"
)

// isolate keeps the command away from the developer's keys, .env and config files.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "")
	t.Setenv(config.ConfigDirEnv, "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("XAI_API_KEY", "")
	t.Setenv("LAST30DAYS_CACHE_DRIVER", "")
	t.Setenv("LAST30DAYS_CACHE_PATH", t.TempDir()+"/models.json")
	t.Setenv("LAST30DAYS_BIRD_BIN", "bird-not-installed-for-tests")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_MockJSON(t *testing.T) {
	// Given: no keys and the bundled fixtures
	isolate(t)

	// When: running a mock research pass with JSON output
	stdout, _, err := execute(t, "--mock", "--emit", "json", "claude", "code", "skills")

	// Then: the report covers both providers with the mock catalog's models
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, "claude code skills", rep.Topic)
	assert.Equal(t, "both", rep.Mode)
	assert.Equal(t, "gpt-5.2", rep.OpenAIModelUsed)
	assert.Equal(t, "grok-4-1-fast", rep.XAIModelUsed)
	assert.NotEmpty(t, rep.Reddit)
	assert.Empty(t, rep.RedditError)
	assert.Empty(t, rep.XError)
	assert.False(t, rep.WebNeeded)
}

func TestRootCmd_MockEnrichesFromThreadFixture(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "--mock", "--emit", "json", "claude code skills")

	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	require.NotEmpty(t, rep.Reddit)
	for _, it := range rep.Reddit {
		require.NotNil(t, it.Engagement, "thread %s", it.URL)
		assert.NotEmpty(t, it.TopComments, "thread %s", it.URL)
	}
}

func TestRootCmd_MockCompact(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "--mock", "--quick", "claude code skills")

	require.NoError(t, err)
	assert.Contains(t, stdout, "## Research Results: claude code skills")
	assert.Contains(t, stdout, "**Mode:** both")
	assert.Contains(t, stdout, "**OpenAI Model:** gpt-5.2")
	assert.NotContains(t, stdout, "WEBSEARCH REQUIRED")
}

func TestRootCmd_MockWebOnly(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "--mock", "--sources", "web", "--days", "7", "claude code skills")

	require.NoError(t, err)
	assert.Contains(t, stdout, "WEB SEARCH MODE")
	assert.Contains(t, stdout, "### WEBSEARCH REQUIRED ###")
	assert.Contains(t, stdout, "from the last 7 days")
}

func TestRootCmd_QuickAndDeepConflict(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--quick", "--deep", "claude code skills")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflictingDepth)
	assert.Equal(t, 2, ExitCode(err))
}

func TestRootCmd_MissingTopic(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--mock")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyTopic)
}

func TestRootCmd_InvalidDays(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--mock", "--days", "45", "claude code skills")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidDays)
}

func TestRootCmd_UnknownEmit(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--mock", "--emit", "md", "claude code skills")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown --emit")
	assert.Equal(t, 1, ExitCode(err))
}

func TestRootCmd_UnknownSources(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--sources", "tiktok", "claude code skills")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidSources)
}

func TestRootCmd_Version(t *testing.T) {
	stdout, _, err := execute(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "last30days version")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "status")
}

func TestRootCmd_DepthHelpMatchesTargets(t *testing.T) {
	cmd := NewRootCmd()

	assert.Contains(t, cmd.Flags().Lookup("quick").Usage, "(15-25 Reddit, 8-12 X)")
	assert.Contains(t, cmd.Flags().Lookup("deep").Usage, "(70-100 Reddit, 40-60 X)")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{domain.ErrEmptyTopic, 2},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidSources), 2},
		{domain.ErrInvalidDays, 2},
		{errors.New("boom"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}
