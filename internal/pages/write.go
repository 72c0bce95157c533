package pages

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/conneroisu/bundlecfg/internal/derive"
)

// WritePage renders page from its template on fsys and writes the result
// under outDir. It returns the path written.
func WritePage(fsys afero.Fs, page derive.PageDescriptor, outDir string, data Data, opts Options) (string, error) {
	src, err := afero.ReadFile(fsys, page.Template)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}

	if data.Title == "" {
		data.Title = page.Title
	}

	out, err := Render(filepath.Base(page.Template), src, data, opts)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(outDir, page.Filename)
	if err := fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if err := afero.WriteFile(fsys, dest, out, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	return dest, nil
}
