package derive

import (
	"strings"

	"github.com/conneroisu/bundlecfg/internal/mode"
)

// HashPlaceholder is substituted by the bundler with a digest of the
// output contents.
const HashPlaceholder = "[hash]"

// BundleName is the base name of every bundle output.
const BundleName = "bundle"

// OutputFilename returns the filename pattern for a bundle output with the
// given extension. Development names are stable; production names embed
// the content-hash placeholder. The extension is used verbatim.
func OutputFilename(ext string, m mode.Mode) string {
	if m.IsDevelopment() {
		return BundleName + "." + ext
	}
	return BundleName + "." + HashPlaceholder + "." + ext
}

// EntryName returns the filename pattern without its extension, which is
// the form bundlers take for entry naming.
func EntryName(m mode.Mode) string {
	return strings.TrimSuffix(OutputFilename("js", m), ".js")
}
