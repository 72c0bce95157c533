package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemString(t *testing.T) {
	testCases := []struct {
		name     string
		problem  Problem
		expected string
	}{
		{
			name:     "missing source",
			problem:  Problem{Kind: MissingSourceDirectory, Path: "/src/img"},
			expected: "missing source directory /src/img",
		},
		{
			name:     "unreadable templates with cause",
			problem:  Problem{Kind: UnreadableTemplatesDirectory, Path: "/src/pages", Cause: fs.ErrPermission},
			expected: "unreadable templates directory /src/pages (permission denied)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.problem.String())
		})
	}
}

func TestConfigurationErrorBatchesMissingDirectories(t *testing.T) {
	err := MissingSourceDirectories("/src/static", "/src/icons")

	msg := err.Error()
	assert.Contains(t, msg, "[ERR_CONFIG_INVALID]")
	assert.Contains(t, msg, "missing source directories: /src/icons, /src/static")
	assert.Equal(t, []string{"/src/icons", "/src/static"}, err.Missing())
}

func TestConfigurationErrorSingleMissing(t *testing.T) {
	err := MissingSourceDirectories("/src/img")
	assert.Contains(t, err.Error(), "missing source directory: /src/img")
}

func TestConfigurationErrorUnwrap(t *testing.T) {
	err := UnreadableTemplates("/src/pages", fs.ErrNotExist)

	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, HasProblem(err, UnreadableTemplatesDirectory))
	assert.False(t, HasProblem(err, MissingSourceDirectory))
}

func TestConfigurationErrorIs(t *testing.T) {
	err := MissingSourceDirectories("/a")
	wrapped := fmt.Errorf("derive: %w", err)

	assert.True(t, errors.Is(wrapped, NewConfigurationError()))
	assert.True(t, IsConfigurationError(wrapped))
	assert.False(t, IsConfigurationError(errors.New("plain")))
}

func TestConfigurationErrorWithContext(t *testing.T) {
	err := NewConfigurationError().WithContext("mode", "production")
	assert.Equal(t, "production", err.Context["mode"])
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.HasErrors())
	assert.NoError(t, c.Err())

	require.NoError(t, c.AddError(nil))
	require.NoError(t, c.AddError(MissingSourceDirectories("/a", "/b")))
	require.NoError(t, c.AddError(UnreadableTemplates("/pages", fs.ErrNotExist)))
	c.Add(Problem{Kind: MissingSourceDirectory, Path: "/c"})

	other := errors.New("boom")
	assert.Equal(t, other, c.AddError(other))

	err := c.Err()
	require.Error(t, err)

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Problems, 4)
	assert.Equal(t, []string{"/a", "/b", "/c"}, ce.Missing())
	assert.Contains(t, err.Error(), "unreadable templates directory /pages")
}
