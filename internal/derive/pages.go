package derive

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/bundlecfg/internal/errors"
)

// Default template and document extensions.
const (
	DefaultTemplateExtension = ".tpl"
	DefaultOutputExtension   = ".html"
)

// PageDescriptor describes one page the html plugin renders.
type PageDescriptor struct {
	Template string `json:"template" yaml:"template"`
	Filename string `json:"filename" yaml:"filename"`
	Title    string `json:"title" yaml:"title"`
}

// PageOptions controls how template files map to pages.
type PageOptions struct {
	Extension       string
	OutputExtension string
}

func (o PageOptions) withDefaults() PageOptions {
	if o.Extension == "" {
		o.Extension = DefaultTemplateExtension
	}
	if o.OutputExtension == "" {
		o.OutputExtension = DefaultOutputExtension
	}
	return o
}

// DiscoverPageTemplates lists dir and returns one descriptor per regular
// file ending in the template extension, in listing order. A file named
// just the extension is skipped. A directory with no matching files yields
// an empty slice. A missing or unreadable directory is an UnreadableTemplatesDirectory configuration error.
func DiscoverPageTemplates(fsys FileSystem, dir string, opts PageOptions) ([]PageDescriptor, error) {
	opts = opts.withDefaults()

	entries, err := fsys.ListDir(dir)
	if err != nil {
		return nil, errors.UnreadableTemplates(dir, err)
	}

	pages := make([]PageDescriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), opts.Extension) {
			continue
		}
		// A bare ".tpl" would produce a page with no name.
		if strings.TrimSuffix(entry.Name(), opts.Extension) == "" {
			continue
		}
		pages = append(pages, NewPageDescriptor(filepath.Join(dir, entry.Name()), opts))
	}

	return pages, nil
}

// NewPageDescriptor builds the descriptor for a single template path.
func NewPageDescriptor(template string, opts PageOptions) PageDescriptor {
	opts = opts.withDefaults()
	base := strings.TrimSuffix(filepath.Base(template), opts.Extension)

	return PageDescriptor{
		Template: template,
		Filename: base + opts.OutputExtension,
		Title:    PageTitle(base),
	}
}

var titleReplacer = strings.NewReplacer("-", " ", "_", " ", ".", " ")

// PageTitle derives a human readable title from a template base name,
// e.g. "about-us" becomes "About Us".
func PageTitle(base string) string {
	words := strings.Fields(titleReplacer.Replace(base))
	return cases.Title(language.English).String(strings.Join(words, " "))
}
