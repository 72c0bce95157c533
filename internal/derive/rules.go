package derive

import (
	"regexp"
	"strings"
)

// Rule identifiers, in dispatch order.
const (
	RuleSass      = "styles-sass"
	RuleScripts   = "scripts"
	RuleCSS       = "styles-css"
	RuleImages    = "images"
	RuleFonts     = "fonts"
	RuleTemplates = "templates"
)

// LoaderUse is one loader applied by a rule, with its options bag.
type LoaderUse struct {
	Loader  string                 `json:"loader" yaml:"loader"`
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}

// TransformRule maps files matching Test (and not Exclude) to a loader
// chain. Extensions lists the file extensions Test can match, for bundlers
// that dispatch on extension instead of pattern.
type TransformRule struct {
	ID         string      `json:"id" yaml:"id"`
	Test       string      `json:"test" yaml:"test"`
	Exclude    string      `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Extensions []string    `json:"extensions" yaml:"extensions"`
	Use        []LoaderUse `json:"use" yaml:"use"`

	test    *regexp.Regexp
	exclude *regexp.Regexp
}

// Matches reports whether path is handled by the rule.
func (r TransformRule) Matches(path string) bool {
	if r.test == nil {
		r.compile()
	}
	if !r.test.MatchString(path) {
		return false
	}
	return r.exclude == nil || !r.exclude.MatchString(path)
}

func (r *TransformRule) compile() {
	r.test = regexp.MustCompile(r.Test)
	if r.Exclude != "" {
		r.exclude = regexp.MustCompile(r.Exclude)
	}
}

// RuleOptions feeds the per-mode values into the rule table.
type RuleOptions struct {
	SourceMaps        bool
	PostCSSConfig     string
	TemplateExtension string
}

// DefaultRules returns the ordered rule table. Order is significant: see
// MatchRule.
func DefaultRules(opts RuleOptions) []TransformRule {
	ext := opts.TemplateExtension
	if ext == "" {
		ext = DefaultTemplateExtension
	}

	sourceMap := map[string]interface{}{"sourceMap": opts.SourceMaps}
	postcss := LoaderUse{
		Loader: "postcss-loader",
		Options: map[string]interface{}{
			"sourceMap": opts.SourceMaps,
			"config":    map[string]interface{}{"path": opts.PostCSSConfig},
		},
	}
	fileLoader := LoaderUse{
		Loader:  "file-loader",
		Options: map[string]interface{}{"name": "[name].[ext]"},
	}

	rules := []TransformRule{
		{
			ID:         RuleSass,
			Test:       `(?i)\.s[ac]ss$`,
			Extensions: []string{".sass", ".scss"},
			Use: []LoaderUse{
				{Loader: "style-loader"},
				{Loader: "css-extract-loader"},
				{Loader: "css-loader", Options: sourceMap},
				postcss,
				{Loader: "sass-loader", Options: sourceMap},
			},
		},
		{
			ID:         RuleScripts,
			Test:       `\.m?js$`,
			Exclude:    `(node_modules|bower_components)`,
			Extensions: []string{".js", ".mjs"},
			Use: []LoaderUse{
				{Loader: "babel-loader", Options: map[string]interface{}{
					"presets": []string{"@babel/preset-env"},
				}},
			},
		},
		{
			ID:         RuleCSS,
			Test:       `\.css$`,
			Extensions: []string{".css"},
			Use: []LoaderUse{
				{Loader: "style-loader"},
				{Loader: "css-extract-loader"},
				{Loader: "css-loader", Options: sourceMap},
				postcss,
			},
		},
		{
			ID:         RuleImages,
			Test:       `\.(png|jpg|gif|svg)$`,
			Extensions: []string{".png", ".jpg", ".gif", ".svg"},
			Use:        []LoaderUse{fileLoader},
		},
		{
			ID:         RuleFonts,
			Test:       `\.(woff(2)?|ttf|eot|svg)(\?v=\d+\.\d+\.\d+)?$`,
			Extensions: []string{".woff", ".woff2", ".ttf", ".eot", ".svg"},
			Use:        []LoaderUse{fileLoader},
		},
		{
			ID:         RuleTemplates,
			Test:       regexp.QuoteMeta(ext) + `$`,
			Extensions: []string{ext},
			Use:        []LoaderUse{{Loader: "template-loader"}},
		},
	}

	for i := range rules {
		rules[i].compile()
	}
	return rules
}

// MatchRule returns the first rule in rules that matches path. Rules are
// tried strictly in slice order; a file matched by several rules (".svg"
// is both an image and a font) belongs to the earliest one.
func MatchRule(rules []TransformRule, path string) (TransformRule, bool) {
	for _, r := range rules {
		if r.Matches(path) {
			return r, true
		}
	}
	return TransformRule{}, false
}

// RuleForExtension is MatchRule keyed by a bare extension such as ".svg".
func RuleForExtension(rules []TransformRule, ext string) (TransformRule, bool) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return MatchRule(rules, "file"+ext)
}
