package derive

import (
	"path/filepath"

	"github.com/conneroisu/bundlecfg/internal/errors"
)

// CopySpec is a configured copy rule before resolution. From is relative to
// the source base, To to the destination base; absolute paths are kept.
type CopySpec struct {
	From string `json:"from" yaml:"from" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`
}

// BaseDirs are the roots copy specs are resolved against.
type BaseDirs struct {
	Source      string
	Destination string
}

// AssetCopyRule copies the contents of From into To. Several rules may
// share a destination: icons and images are both flattened into the
// output image directory. Later rules overwrite files of earlier rules.
type AssetCopyRule struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// DefaultCopySpecs are the asset directories of a standard project.
func DefaultCopySpecs() []CopySpec {
	return []CopySpec{
		{From: "img", To: "img"},
		{From: "icons", To: "img"},
		{From: "static", To: "."},
	}
}

// AssetCopyRules resolves specs against bases and checks that every source
// directory exists. When any are missing the returned error names all of
// them.
func AssetCopyRules(fsys FileSystem, bases BaseDirs, specs []CopySpec) ([]AssetCopyRule, error) {
	rules := make([]AssetCopyRule, 0, len(specs))
	var missing []string

	for _, spec := range specs {
		rule := AssetCopyRule{
			From: resolve(bases.Source, spec.From),
			To:   resolve(bases.Destination, spec.To),
		}

		ok, err := fsys.DirExists(rule.From)
		if err != nil || !ok {
			missing = append(missing, rule.From)
			continue
		}
		rules = append(rules, rule)
	}

	if len(missing) > 0 {
		return nil, errors.MissingSourceDirectories(missing...)
	}

	return rules, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
