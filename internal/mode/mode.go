// Package mode defines the build mode that drives every derived build
// option.
package mode

import "strings"

// Mode is the build mode for a single process.
type Mode int

const (
	// Production is the zero value so an unset mode behaves like a
	// production build.
	Production Mode = iota
	Development
)

// DefaultEnvVar is the environment variable the mode is read from when the
// project layout does not name another one.
const DefaultEnvVar = "NODE_ENV"

// Parse maps the environment signal to a Mode. Only the exact value
// "development" selects Development; anything else, including the empty
// string, is Production.
func Parse(value string) Mode {
	if strings.TrimSpace(value) == "development" {
		return Development
	}
	return Production
}

// IsDevelopment reports whether m is Development.
func (m Mode) IsDevelopment() bool {
	return m == Development
}

// String returns the bundler-facing name of the mode.
func (m Mode) String() string {
	if m == Development {
		return "development"
	}
	return "production"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	*m = Parse(string(text))
	return nil
}
