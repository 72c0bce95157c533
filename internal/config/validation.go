package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ValidationError represents a configuration validation issue with
// suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of layout validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

// ValidateLayout checks the layout against the filesystem for problems the
// derivation itself does not treat as fatal. The clean plugin empties the
// output directory, so an output directory that overlaps the project
// sources is an error.
func ValidateLayout(config *Config, fsys afero.Fs) *ValidationResult {
	result := &ValidationResult{Valid: true}
	layout := config.Layout()

	outputDir := layout.OutputDir()
	contextDir := layout.ContextDir()

	if within(outputDir, config.Root) {
		result.addError("output", config.Output, "output directory contains the project root",
			"Use a dedicated build directory such as 'dist'")
	}
	if within(outputDir, contextDir) || within(contextDir, outputDir) {
		result.addError("output", config.Output, "output directory overlaps the source context "+contextDir,
			"Keep sources and build output in separate directories")
	}

	files := map[string]string{
		"entry":          layout.EntryPath(),
		"index":          layout.IndexPath(),
		"postcss_config": layout.PostCSSPath(),
	}
	for _, field := range []string{"entry", "index", "postcss_config"} {
		path := files[field]
		ok, err := afero.Exists(fsys, path)
		if err != nil || !ok {
			result.addWarning(field, path, "file does not exist")
		}
	}

	seen := make(map[string]string)
	for _, spec := range config.Copy {
		to := filepath.Clean(spec.To)
		if prev, ok := seen[to]; ok {
			result.addWarning("copy", spec.To,
				fmt.Sprintf("'%s' and '%s' share a destination", prev, spec.From),
				"Files with the same name are overwritten by the later rule")
			continue
		}
		seen[to] = spec.From
	}

	if config.DevServer.Port < 1024 {
		result.addWarning("dev_server.port", config.DevServer.Port, "port below 1024 may require elevated privileges")
	}

	return result
}

// within reports whether path is parent or lies inside it.
func within(parent, path string) bool {
	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
