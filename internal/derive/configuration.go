package derive

import (
	"path/filepath"

	"github.com/conneroisu/bundlecfg/internal/errors"
	"github.com/conneroisu/bundlecfg/internal/mode"
)

// Layout is the on-disk shape of a project. Relative Context and Output
// resolve against Root; Entry, Index and TemplatesDir against Context;
// PostCSSConfig against Root.
type Layout struct {
	Root              string
	Context           string
	Output            string
	Entry             string
	Index             string
	TemplatesDir      string
	TemplateExtension string
	OutputExtension   string
	PostCSSConfig     string
	DevServerPort     int
	Copy              []CopySpec
}

// DefaultLayout returns the standard project layout rooted at root.
func DefaultLayout(root string) Layout {
	return Layout{
		Root:              root,
		Context:           "src",
		Output:            "dist",
		Entry:             "index.js",
		Index:             "index.html",
		TemplatesDir:      "pages",
		TemplateExtension: DefaultTemplateExtension,
		OutputExtension:   DefaultOutputExtension,
		PostCSSConfig:     "src/js/postcss.config.js",
		DevServerPort:     DefaultDevServerPort,
		Copy:              DefaultCopySpecs(),
	}
}

// ContextDir is the absolute source directory.
func (l Layout) ContextDir() string { return resolve(l.Root, l.Context) }

// OutputDir is the absolute output directory.
func (l Layout) OutputDir() string { return resolve(l.Root, l.Output) }

// TemplatesPath is the absolute page templates directory.
func (l Layout) TemplatesPath() string { return resolve(l.ContextDir(), l.TemplatesDir) }

// EntryPath is the absolute script entry point.
func (l Layout) EntryPath() string { return resolve(l.ContextDir(), l.Entry) }

// IndexPath is the absolute index document template.
func (l Layout) IndexPath() string { return resolve(l.ContextDir(), l.Index) }

// PostCSSPath is the absolute PostCSS config file.
func (l Layout) PostCSSPath() string { return resolve(l.Root, l.PostCSSConfig) }

// CopySources are the absolute source directories of the copy specs.
func (l Layout) CopySources() []string {
	sources := make([]string, 0, len(l.Copy))
	for _, spec := range l.Copy {
		sources = append(sources, resolve(l.ContextDir(), spec.From))
	}
	return sources
}

// Output describes where bundles are written.
type Output struct {
	Dir         string `json:"dir" yaml:"dir"`
	Filename    string `json:"filename" yaml:"filename"`
	CSSFilename string `json:"cssFilename" yaml:"cssFilename"`
}

// DevServer configures the development server.
type DevServer struct {
	Port int  `json:"port" yaml:"port"`
	Hot  bool `json:"hot" yaml:"hot"`
}

// Configuration is the complete derived build configuration. It is built
// once and never modified.
type Configuration struct {
	Mode      mode.Mode          `json:"mode" yaml:"mode"`
	Root      string             `json:"root" yaml:"root"`
	Context   string             `json:"context" yaml:"context"`
	Entry     string             `json:"entry" yaml:"entry"`
	Output    Output             `json:"output" yaml:"output"`
	DevTool   string             `json:"devtool" yaml:"devtool"`
	DevServer DevServer          `json:"devServer" yaml:"devServer"`
	Options   ToolOptionSet      `json:"options" yaml:"options"`
	HTML      HTMLOptions        `json:"html" yaml:"html"`
	Index     PageDescriptor     `json:"index" yaml:"index"`
	Pages     []PageDescriptor   `json:"pages" yaml:"pages"`
	CopyRules []AssetCopyRule    `json:"copy" yaml:"copy"`
	Rules     []TransformRule    `json:"rules" yaml:"rules"`
	Plugins   []PluginInvocation `json:"plugins" yaml:"plugins"`
}

// BuildConfiguration derives the complete configuration for m from layout.
// Template discovery and copy validation both run; their problems are
// reported together in one error.
func BuildConfiguration(m mode.Mode, layout Layout, fsys FileSystem) (*Configuration, error) {
	contextDir := layout.ContextDir()
	outputDir := layout.OutputDir()

	opts := ToolOptions(m)
	if layout.DevServerPort != 0 {
		opts.DevServerPort = layout.DevServerPort
	}

	pageOpts := PageOptions{
		Extension:       layout.TemplateExtension,
		OutputExtension: layout.OutputExtension,
	}

	collector := errors.NewCollector()

	pages, err := DiscoverPageTemplates(fsys, layout.TemplatesPath(), pageOpts)
	if err := collector.AddError(err); err != nil {
		return nil, err
	}

	copyRules, err := AssetCopyRules(fsys, BaseDirs{Source: contextDir, Destination: outputDir}, layout.Copy)
	if err := collector.AddError(err); err != nil {
		return nil, err
	}

	if err := collector.Err(); err != nil {
		return nil, err
	}

	index := PageDescriptor{
		Template: layout.IndexPath(),
		Filename: filepath.Base(layout.Index),
		Title:    PageTitle(trimExt(filepath.Base(layout.Index))),
	}
	html := HTMLOptionsFor(opts)
	cssFilename := OutputFilename("css", m)

	return &Configuration{
		Mode:    m,
		Root:    layout.Root,
		Context: contextDir,
		Entry:   layout.EntryPath(),
		Output: Output{
			Dir:         outputDir,
			Filename:    OutputFilename("js", m),
			CSSFilename: cssFilename,
		},
		DevTool: opts.DevTool(),
		DevServer: DevServer{
			Port: opts.DevServerPort,
			Hot:  opts.HotReload,
		},
		Options:   opts,
		HTML:      html,
		Index:     index,
		Pages:     pages,
		CopyRules: copyRules,
		Rules: DefaultRules(RuleOptions{
			SourceMaps:        opts.SourceMaps,
			PostCSSConfig:     layout.PostCSSPath(),
			TemplateExtension: pageOpts.withDefaults().Extension,
		}),
		Plugins: Plugins(cssFilename, copyRules, html, index, pages),
	}, nil
}

// AllPages returns the index document followed by the discovered pages.
func (c *Configuration) AllPages() []PageDescriptor {
	pages := make([]PageDescriptor, 0, len(c.Pages)+1)
	pages = append(pages, c.Index)
	return append(pages, c.Pages...)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
