package bundler

import (
	"encoding/json"
	"path/filepath"
)

// BuildMetadata is the subset of esbuild's metafile the host reads.
type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
}

type ImportInfo struct {
	Path string `json:"path"`
}

func parseMetadata(metafile string) (*BuildMetadata, error) {
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(metafile), &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

// EntryAssets returns the script and stylesheet outputs built for the entry
// point, both relative to the working directory. entryPoint is also
// relative to the working directory, using forward slashes.
func (m *BuildMetadata) EntryAssets(entryPoint string) (script, style string, ok bool) {
	for outputPath, info := range m.Outputs {
		if info.EntryPoint == entryPoint && filepath.Ext(outputPath) == ".js" {
			return outputPath, info.CSSBundle, true
		}
	}
	return "", "", false
}
