package derive

// Plugin names, in invocation order.
const (
	PluginCSSExtract = "css-extract"
	PluginClean      = "clean"
	PluginCopy       = "copy"
	PluginHTML       = "html"
)

// PluginInvocation is one post-processing plugin with its options bag.
type PluginInvocation struct {
	Name    string                 `json:"name" yaml:"name"`
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}

// HTMLMinify mirrors the html plugin's minify switches.
type HTMLMinify struct {
	RemoveComments     bool `json:"removeComments" yaml:"removeComments"`
	CollapseWhitespace bool `json:"collapseWhitespace" yaml:"collapseWhitespace"`
}

// HTMLOptions apply to the index document and to every generated page.
type HTMLOptions struct {
	Hash   bool       `json:"hash" yaml:"hash"`
	Minify HTMLMinify `json:"minify" yaml:"minify"`
}

// HTMLOptionsFor derives the html plugin options from a tool option set.
func HTMLOptionsFor(opts ToolOptionSet) HTMLOptions {
	return HTMLOptions{
		Hash: false,
		Minify: HTMLMinify{
			RemoveComments:     opts.Minify,
			CollapseWhitespace: opts.Minify,
		},
	}
}

// Plugins returns the ordered plugin invocations: css extraction, output
// cleaning, asset copying, the index document and then one html
// invocation per page.
func Plugins(cssFilename string, copyRules []AssetCopyRule, html HTMLOptions, index PageDescriptor, pages []PageDescriptor) []PluginInvocation {
	patterns := make([]map[string]interface{}, 0, len(copyRules))
	for _, r := range copyRules {
		patterns = append(patterns, map[string]interface{}{"from": r.From, "to": r.To})
	}

	plugins := []PluginInvocation{
		{Name: PluginCSSExtract, Options: map[string]interface{}{"filename": cssFilename}},
		{Name: PluginClean},
		{Name: PluginCopy, Options: map[string]interface{}{"patterns": patterns}},
		{Name: PluginHTML, Options: map[string]interface{}{
			"template": index.Template,
			"hash":     html.Hash,
			"minify": map[string]interface{}{
				"removeComments":     html.Minify.RemoveComments,
				"collapseWhitespace": html.Minify.CollapseWhitespace,
			},
		}},
	}

	for _, p := range pages {
		plugins = append(plugins, PluginInvocation{
			Name: PluginHTML,
			Options: map[string]interface{}{
				"template": p.Template,
				"filename": "./" + p.Filename,
				"title":    p.Title,
			},
		})
	}

	return plugins
}
