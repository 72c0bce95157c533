//go:build property
// +build property

package derive

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"

	"github.com/conneroisu/bundlecfg/internal/mode"
)

// TestOutputFilenameProperties tests naming policy properties
func TestOutputFilenameProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	modes := gen.OneConstOf(mode.Development, mode.Production)

	// Property: same inputs always produce the same pattern
	properties.Property("deterministic", prop.ForAll(
		func(ext string, m mode.Mode) bool {
			return OutputFilename(ext, m) == OutputFilename(ext, m)
		},
		gen.AlphaString(),
		modes,
	))

	// Property: only production names carry the hash placeholder
	properties.Property("placeholder only in production", prop.ForAll(
		func(ext string) bool {
			dev := OutputFilename(ext, mode.Development)
			prod := OutputFilename(ext, mode.Production)
			return !strings.Contains(dev, HashPlaceholder) && strings.Contains(prod, HashPlaceholder)
		},
		gen.AlphaString(),
	))

	// Property: extension is kept verbatim as the suffix
	properties.Property("extension suffix", prop.ForAll(
		func(ext string, m mode.Mode) bool {
			return strings.HasSuffix(OutputFilename(ext, m), "."+ext)
		},
		gen.AlphaString(),
		modes,
	))

	properties.TestingRun(t)
}

// TestToolOptionsProperties tests tool option profile properties
func TestToolOptionsProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	modes := gen.OneConstOf(mode.Development, mode.Production)

	// Property: minify is on exactly in production
	properties.Property("minify iff production", prop.ForAll(
		func(m mode.Mode) bool {
			return ToolOptions(m).Minify == !m.IsDevelopment()
		},
		modes,
	))

	// Property: source maps and hot reload follow development
	properties.Property("development switches", prop.ForAll(
		func(m mode.Mode) bool {
			opts := ToolOptions(m)
			return opts.SourceMaps == m.IsDevelopment() && opts.HotReload == m.IsDevelopment()
		},
		modes,
	))

	// Property: every mode gets the default dev server port
	properties.Property("default port", prop.ForAll(
		func(m mode.Mode) bool {
			return ToolOptions(m).DevServerPort == DefaultDevServerPort
		},
		modes,
	))

	properties.TestingRun(t)
}

// TestDiscoverPageTemplatesProperties tests template discovery properties
func TestDiscoverPageTemplatesProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: one page per template file, none for other files
	properties.Property("page count matches template count", prop.ForAll(
		func(templates, others []string) bool {
			memfs := afero.NewMemMapFs()
			_ = memfs.MkdirAll("/pages", 0o755)

			unique := make(map[string]bool)
			for i, name := range templates {
				file := fmt.Sprintf("%s%d.tpl", name, i)
				unique[file] = true
				_ = afero.WriteFile(memfs, filepath.Join("/pages", file), nil, 0o644)
			}
			for i, name := range others {
				_ = afero.WriteFile(memfs, filepath.Join("/pages", fmt.Sprintf("%s%d.txt", name, i)), nil, 0o644)
			}

			pages, err := DiscoverPageTemplates(NewFileSystem(memfs), "/pages", PageOptions{})
			if err != nil || len(pages) != len(unique) {
				return false
			}
			for _, p := range pages {
				if !strings.HasSuffix(p.Filename, ".html") {
					return false
				}
				if !unique[strings.TrimSuffix(p.Filename, ".html")+".tpl"] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.AlphaString()),
		gen.SliceOfN(5, gen.AlphaString()),
	))

	properties.TestingRun(t)
}
