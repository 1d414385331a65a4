package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	plain := NewExitError(ExitFailure, "3 check(s) failed")
	assert.Equal(t, "3 check(s) failed", plain.Error())
	assert.NoError(t, plain.Unwrap())

	cause := errors.New("no such file")
	wrapped := WrapExitError(ExitCommandError, "failed to compile spec", cause)
	assert.Equal(t, "failed to compile spec: no such file", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil is failure by default", errors.New("plain"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "boom"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner")), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestOutputFormatterText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("all good"))
	assert.Equal(t, "all good\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Error("bad spec", "details here"))
	assert.Equal(t, "Error: bad spec\n", buf.String(), "details hidden without verbose")

	buf.Reset()
	f.Verbose = true
	require.NoError(t, f.Error("bad spec", "details here"))
	assert.Contains(t, buf.String(), "Details: details here")
}

func TestOutputFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]any{"total": 3}))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	buf.Reset()
	require.NoError(t, f.Error("query failed", nil))
	resp = CLIResponse{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "query failed", resp.Error.Message)
}
