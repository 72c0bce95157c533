package derive

import "github.com/conneroisu/bundlecfg/internal/mode"

// DefaultDevServerPort is the port the development server listens on.
const DefaultDevServerPort = 3000

// ToolOptionSet is the per-mode options bag shared by every tool in the
// pipeline.
type ToolOptionSet struct {
	SourceMaps    bool `json:"sourceMaps" yaml:"sourceMaps"`
	Minify        bool `json:"minify" yaml:"minify"`
	HotReload     bool `json:"hotReload" yaml:"hotReload"`
	DevServerPort int  `json:"devServerPort" yaml:"devServerPort"`
}

// DevOptions is the option set for development builds.
func DevOptions() ToolOptionSet {
	return ToolOptionSet{
		SourceMaps:    true,
		Minify:        false,
		HotReload:     true,
		DevServerPort: DefaultDevServerPort,
	}
}

// ProdOptions is the option set for production builds.
func ProdOptions() ToolOptionSet {
	return ToolOptionSet{
		SourceMaps:    false,
		Minify:        true,
		HotReload:     false,
		DevServerPort: DefaultDevServerPort,
	}
}

// ToolOptions selects the option set for m.
func ToolOptions(m mode.Mode) ToolOptionSet {
	if m.IsDevelopment() {
		return DevOptions()
	}
	return ProdOptions()
}

// DevTool returns the source-map style name for the option set, empty when
// source maps are off.
func (o ToolOptionSet) DevTool() string {
	if o.SourceMaps {
		return "source-map"
	}
	return ""
}
