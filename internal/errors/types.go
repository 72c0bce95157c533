// Package errors defines the structured error type returned when a build
// configuration cannot be derived.
//
// Configuration derivation never recovers locally. Every problem found
// during one derivation (missing copy sources, an unreadable templates
// directory) is collected into a single ConfigurationError so the user can
// fix all of them before re-running the build.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const ErrorTypeConfig ErrorType = "config"

// Common error codes.
const (
	ErrCodeConfigInvalid = "ERR_CONFIG_INVALID"
)

// ProblemKind identifies one sub-case of a ConfigurationError.
type ProblemKind string

const (
	// MissingSourceDirectory is reported for an asset copy source that does
	// not exist or is not a directory.
	MissingSourceDirectory ProblemKind = "missing_source_directory"
	// UnreadableTemplatesDirectory is reported when the page templates
	// directory cannot be listed.
	UnreadableTemplatesDirectory ProblemKind = "unreadable_templates_directory"
)

// Problem is one issue found while deriving a configuration.
type Problem struct {
	Kind  ProblemKind
	Path  string
	Cause error
}

// String returns a short description of the problem.
func (p Problem) String() string {
	var s string
	switch p.Kind {
	case MissingSourceDirectory:
		s = "missing source directory " + p.Path
	case UnreadableTemplatesDirectory:
		s = "unreadable templates directory " + p.Path
	default:
		s = string(p.Kind) + " " + p.Path
	}
	if p.Cause != nil {
		s += fmt.Sprintf(" (%v)", p.Cause)
	}
	return s
}

// ConfigurationError is the only error kind produced by configuration
// derivation. It carries every problem found, not just the first.
type ConfigurationError struct {
	Type     ErrorType
	Code     string
	Message  string
	Problems []Problem
	Context  map[string]interface{}
}

// NewConfigurationError creates a configuration error holding problems.
func NewConfigurationError(problems ...Problem) *ConfigurationError {
	return &ConfigurationError{
		Type:     ErrorTypeConfig,
		Code:     ErrCodeConfigInvalid,
		Message:  "build configuration could not be derived",
		Problems: problems,
	}
}

// MissingSourceDirectories creates a configuration error naming every
// missing copy source.
func MissingSourceDirectories(paths ...string) *ConfigurationError {
	problems := make([]Problem, 0, len(paths))
	for _, p := range paths {
		problems = append(problems, Problem{Kind: MissingSourceDirectory, Path: p})
	}
	return NewConfigurationError(problems...)
}

// UnreadableTemplates creates a configuration error for a templates
// directory that could not be listed.
func UnreadableTemplates(path string, cause error) *ConfigurationError {
	return NewConfigurationError(Problem{
		Kind:  UnreadableTemplatesDirectory,
		Path:  path,
		Cause: cause,
	})
}

// Error implements the error interface. All missing source directories are
// batched into one clause.
func (e *ConfigurationError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	parts = append(parts, e.Message)
	result := strings.Join(parts, " ")

	var clauses []string
	if missing := e.Missing(); len(missing) > 0 {
		label := "missing source directory"
		if len(missing) > 1 {
			label = "missing source directories"
		}
		clauses = append(clauses, label+": "+strings.Join(missing, ", "))
	}
	for _, p := range e.Problems {
		if p.Kind != MissingSourceDirectory {
			clauses = append(clauses, p.String())
		}
	}
	if len(clauses) > 0 {
		result += ": " + strings.Join(clauses, "; ")
	}

	return result
}

// Unwrap returns the underlying causes of the individual problems.
func (e *ConfigurationError) Unwrap() []error {
	var causes []error
	for _, p := range e.Problems {
		if p.Cause != nil {
			causes = append(causes, p.Cause)
		}
	}
	return causes
}

// Is implements error comparison.
func (e *ConfigurationError) Is(target error) bool {
	var t *ConfigurationError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ConfigurationError) WithContext(key string, value interface{}) *ConfigurationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// Missing returns the sorted paths of all missing source directories.
func (e *ConfigurationError) Missing() []string {
	var paths []string
	for _, p := range e.Problems {
		if p.Kind == MissingSourceDirectory {
			paths = append(paths, p.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// IsConfigurationError checks if an error is a configuration error.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// HasProblem checks if err is a configuration error containing a problem
// of the given kind.
func HasProblem(err error, kind ProblemKind) bool {
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		return false
	}
	for _, p := range ce.Problems {
		if p.Kind == kind {
			return true
		}
	}
	return false
}
