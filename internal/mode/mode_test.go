package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected Mode
	}{
		{name: "development", value: "development", expected: Development},
		{name: "development with whitespace", value: " development\n", expected: Development},
		{name: "production", value: "production", expected: Production},
		{name: "empty defaults to production", value: "", expected: Production},
		{name: "unknown value is production", value: "staging", expected: Production},
		{name: "case sensitive", value: "Development", expected: Production},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.value))
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "development", Development.String())
	assert.Equal(t, "production", Production.String())
	assert.True(t, Development.IsDevelopment())
	assert.False(t, Production.IsDevelopment())

	var zero Mode
	assert.Equal(t, Production, zero)
}

func TestModeText(t *testing.T) {
	text, err := Development.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "development", string(text))

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("development")))
	assert.Equal(t, Development, m)

	require.NoError(t, m.UnmarshalText([]byte("test")))
	assert.Equal(t, Production, m)
}
