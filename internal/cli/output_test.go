package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(RatioResult{Ratio: 0.5})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeFutureRewrite, "rewriting the future is not allowed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E006", resp.Error.Code)
	assert.Equal(t, "rewriting the future is not allowed", resp.Error.Message)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(ExportResult{Path: "week.csv", Count: 4})
	require.NoError(t, err)
	assert.Equal(t, "Exported 4 intervals to week.csv\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E003", "append failed", "disk full")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E003]: append failed")
	assert.Contains(t, buf.String(), "Details: disk full")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("sampled %s", "work")
	assert.Empty(t, out.String())
	assert.Equal(t, "sampled work\n", errOut.String())

	formatter.Verbose = false
	formatter.VerboseLog("dropped")
	assert.Equal(t, "sampled work\n", errOut.String())
}

func TestExitError(t *testing.T) {
	inner := assert.AnError
	err := WrapExitError(ExitFailure, "open log", inner)

	assert.Equal(t, "open log: "+inner.Error(), err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "bad flags", NewExitError(ExitCommandError, "bad flags").Error())
}
