package derive

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/bundlecfg/internal/errors"
	"github.com/conneroisu/bundlecfg/internal/mode"
)

const root = "/project"

// newProject creates the standard layout in memory with the given page
// templates.
func newProject(t *testing.T, templates ...string) afero.Fs {
	t.Helper()

	memfs := afero.NewMemMapFs()
	for _, dir := range []string{"src/pages", "src/img", "src/icons", "src/static"} {
		require.NoError(t, memfs.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, afero.WriteFile(memfs, filepath.Join(root, "src/index.html"), []byte("<html></html>"), 0o644))
	for _, name := range templates {
		require.NoError(t, afero.WriteFile(memfs, filepath.Join(root, "src/pages", name), []byte("<h1>{{.Title}}</h1>"), 0o644))
	}
	return memfs
}

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		ext      string
		mode     mode.Mode
		expected string
	}{
		{"js", mode.Development, "bundle.js"},
		{"css", mode.Development, "bundle.css"},
		{"js", mode.Production, "bundle.[hash].js"},
		{"css", mode.Production, "bundle.[hash].css"},
		{"weird.ext", mode.Production, "bundle.[hash].weird.ext"},
		{"", mode.Development, "bundle."},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.expected, OutputFilename(tt.ext, tt.mode))
			assert.Equal(t, OutputFilename(tt.ext, tt.mode), OutputFilename(tt.ext, tt.mode))
		})
	}
}

func TestOutputFilenamePlaceholder(t *testing.T) {
	for _, ext := range []string{"js", "css", "map", "svg", "woff2"} {
		assert.NotContains(t, OutputFilename(ext, mode.Development), HashPlaceholder)
		assert.Contains(t, OutputFilename(ext, mode.Production), HashPlaceholder)
	}
}

func TestEntryName(t *testing.T) {
	assert.Equal(t, "bundle", EntryName(mode.Development))
	assert.Equal(t, "bundle.[hash]", EntryName(mode.Production))
}

func TestToolOptions(t *testing.T) {
	dev := ToolOptions(mode.Development)
	prod := ToolOptions(mode.Production)

	assert.False(t, dev.Minify)
	assert.True(t, prod.Minify)
	assert.True(t, dev.SourceMaps)
	assert.False(t, prod.SourceMaps)
	assert.True(t, dev.HotReload)
	assert.False(t, prod.HotReload)
	assert.Equal(t, 3000, dev.DevServerPort)
	assert.Equal(t, 3000, prod.DevServerPort)
	assert.NotEqual(t, dev, prod)

	assert.Equal(t, "source-map", dev.DevTool())
	assert.Empty(t, prod.DevTool())
}

func TestDiscoverPageTemplates(t *testing.T) {
	t.Run("filters by extension", func(t *testing.T) {
		fsys := NewFileSystem(newProject(t, "a.tpl", "b.tpl", "c.txt"))

		pages, err := DiscoverPageTemplates(fsys, "/project/src/pages", PageOptions{})
		require.NoError(t, err)
		require.Len(t, pages, 2)

		filenames := []string{pages[0].Filename, pages[1].Filename}
		assert.ElementsMatch(t, []string{"a.html", "b.html"}, filenames)
		for _, p := range pages {
			assert.Equal(t, "/project/src/pages/"+strings.TrimSuffix(p.Filename, ".html")+".tpl", p.Template)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		fsys := NewFileSystem(newProject(t))

		pages, err := DiscoverPageTemplates(fsys, "/project/src/pages", PageOptions{})
		require.NoError(t, err)
		assert.NotNil(t, pages)
		assert.Empty(t, pages)
	})

	t.Run("skips directories", func(t *testing.T) {
		memfs := newProject(t, "home.tpl")
		require.NoError(t, memfs.MkdirAll("/project/src/pages/partials.tpl", 0o755))

		pages, err := DiscoverPageTemplates(NewFileSystem(memfs), "/project/src/pages", PageOptions{})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, "home.html", pages[0].Filename)
	})

	t.Run("missing directory", func(t *testing.T) {
		fsys := NewFileSystem(afero.NewMemMapFs())

		pages, err := DiscoverPageTemplates(fsys, "/nowhere", PageOptions{})
		require.Error(t, err)
		assert.Nil(t, pages)
		assert.True(t, errors.HasProblem(err, errors.UnreadableTemplatesDirectory))
		assert.Contains(t, err.Error(), "/nowhere")
	})

	t.Run("custom extensions", func(t *testing.T) {
		fsys := NewFileSystem(newProject(t, "index.pug", "other.tpl"))

		pages, err := DiscoverPageTemplates(fsys, "/project/src/pages", PageOptions{
			Extension:       ".pug",
			OutputExtension: ".htm",
		})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, "index.htm", pages[0].Filename)
	})
}

type fileInfo struct {
	name string
	dir  bool
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return 0 }
func (f fileInfo) Mode() fs.FileMode  { return 0o644 }
func (f fileInfo) ModTime() time.Time { return time.Time{} }
func (f fileInfo) IsDir() bool        { return f.dir }
func (f fileInfo) Sys() interface{}   { return nil }

// staticFS returns a fixed listing in the given order.
type staticFS struct {
	entries []string
	dirs    map[string]bool
	listErr error
}

func (s staticFS) ListDir(string) ([]fs.FileInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	infos := make([]fs.FileInfo, 0, len(s.entries))
	for _, name := range s.entries {
		infos = append(infos, fileInfo{name: name})
	}
	return infos, nil
}

func (s staticFS) DirExists(dir string) (bool, error) {
	return s.dirs[dir], nil
}

func TestDiscoverPageTemplatesListingOrder(t *testing.T) {
	fsys := staticFS{entries: []string{"b.tpl", "c.txt", "a.tpl"}}

	pages, err := DiscoverPageTemplates(fsys, "/pages", PageOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "b.html", pages[0].Filename)
	assert.Equal(t, "a.html", pages[1].Filename)
}

func TestDiscoverPageTemplatesSkipsBareExtension(t *testing.T) {
	fsys := NewFileSystem(newProject(t, ".tpl", "home.tpl"))

	pages, err := DiscoverPageTemplates(fsys, "/project/src/pages", PageOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "home.html", pages[0].Filename)
}

func TestDiscoverPageTemplatesUnreadable(t *testing.T) {
	fsys := staticFS{listErr: fs.ErrPermission}

	_, err := DiscoverPageTemplates(fsys, "/pages", PageOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Home", PageTitle("home"))
	assert.Equal(t, "About Us", PageTitle("about-us"))
	assert.Equal(t, "Contact Form", PageTitle("contact_form"))
	assert.Equal(t, "", PageTitle(""))
}

func TestAssetCopyRules(t *testing.T) {
	bases := BaseDirs{Source: "/project/src", Destination: "/project/dist"}

	t.Run("all present", func(t *testing.T) {
		fsys := NewFileSystem(newProject(t))

		rules, err := AssetCopyRules(fsys, bases, DefaultCopySpecs())
		require.NoError(t, err)
		assert.Equal(t, []AssetCopyRule{
			{From: "/project/src/img", To: "/project/dist/img"},
			{From: "/project/src/icons", To: "/project/dist/img"},
			{From: "/project/src/static", To: "/project/dist"},
		}, rules)
	})

	t.Run("one missing one present", func(t *testing.T) {
		memfs := afero.NewMemMapFs()
		require.NoError(t, memfs.MkdirAll("/project/src/img", 0o755))

		_, err := AssetCopyRules(NewFileSystem(memfs), bases, []CopySpec{
			{From: "img", To: "img"},
			{From: "icons", To: "img"},
		})
		require.Error(t, err)

		var ce *errors.ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, []string{"/project/src/icons"}, ce.Missing())
		assert.NotContains(t, err.Error(), "/project/src/img")
	})

	t.Run("reports every missing directory", func(t *testing.T) {
		fsys := NewFileSystem(afero.NewMemMapFs())

		_, err := AssetCopyRules(fsys, bases, DefaultCopySpecs())
		var ce *errors.ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, []string{"/project/src/icons", "/project/src/img", "/project/src/static"}, ce.Missing())
	})

	t.Run("file is not a directory", func(t *testing.T) {
		memfs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(memfs, "/project/src/img", []byte("x"), 0o644))

		_, err := AssetCopyRules(NewFileSystem(memfs), bases, []CopySpec{{From: "img", To: "img"}})
		assert.True(t, errors.HasProblem(err, errors.MissingSourceDirectory))
	})

	t.Run("absolute paths kept", func(t *testing.T) {
		fsys := staticFS{dirs: map[string]bool{"/assets": true}}

		rules, err := AssetCopyRules(fsys, bases, []CopySpec{{From: "/assets", To: "/out/assets"}})
		require.NoError(t, err)
		assert.Equal(t, []AssetCopyRule{{From: "/assets", To: "/out/assets"}}, rules)
	})

	t.Run("shared destination allowed", func(t *testing.T) {
		fsys := NewFileSystem(newProject(t))

		rules, err := AssetCopyRules(fsys, bases, DefaultCopySpecs())
		require.NoError(t, err)
		assert.Equal(t, rules[0].To, rules[1].To)
	})
}

func TestMatchRule(t *testing.T) {
	rules := DefaultRules(RuleOptions{TemplateExtension: ".tpl"})

	tests := []struct {
		path     string
		expected string
		ok       bool
	}{
		{"styles/main.scss", RuleSass, true},
		{"styles/main.SASS", RuleSass, true},
		{"app/index.js", RuleScripts, true},
		{"app/module.mjs", RuleScripts, true},
		{"node_modules/lib/index.js", "", false},
		{"styles/reset.css", RuleCSS, true},
		{"img/logo.png", RuleImages, true},
		{"img/logo.svg", RuleImages, true},
		{"fonts/roboto.woff2", RuleFonts, true},
		{"fonts/roboto.ttf?v=1.2.3", RuleFonts, true},
		{"pages/home.tpl", RuleTemplates, true},
		{"README.md", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rule, ok := MatchRule(rules, tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, rule.ID)
		})
	}
}

func TestMatchRuleFirstWins(t *testing.T) {
	rules := DefaultRules(RuleOptions{})
	fonts, ok := MatchRule(rules[4:], "icon.svg")
	require.True(t, ok)
	assert.Equal(t, RuleFonts, fonts.ID)

	first, ok := RuleForExtension(rules, "svg")
	require.True(t, ok)
	assert.Equal(t, RuleImages, first.ID)
}

func TestMatchRuleUncompiled(t *testing.T) {
	rules := []TransformRule{{ID: "txt", Test: `\.txt$`}}
	rule, ok := MatchRule(rules, "notes.txt")
	require.True(t, ok)
	assert.Equal(t, "txt", rule.ID)
}

func TestDefaultRulesSourceMaps(t *testing.T) {
	rules := DefaultRules(RuleOptions{SourceMaps: true, PostCSSConfig: "/project/src/js/postcss.config.js"})

	sass, ok := RuleForExtension(rules, ".scss")
	require.True(t, ok)
	require.Len(t, sass.Use, 5)
	assert.Equal(t, "css-loader", sass.Use[2].Loader)
	assert.Equal(t, true, sass.Use[2].Options["sourceMap"])
	assert.Equal(t, map[string]interface{}{"path": "/project/src/js/postcss.config.js"}, sass.Use[3].Options["config"])
}

func TestLayoutPaths(t *testing.T) {
	layout := DefaultLayout("/project")
	assert.Equal(t, "/project/src/index.js", layout.EntryPath())
	assert.Equal(t, "/project/src/index.html", layout.IndexPath())
	assert.Equal(t, "/project/src/js/postcss.config.js", layout.PostCSSPath())
	assert.Equal(t, []string{"/project/src/img", "/project/src/icons", "/project/src/static"}, layout.CopySources())

	layout.Entry = "/shared/app.js"
	layout.Index = "/shared//index.html"
	layout.PostCSSConfig = "/etc/postcss.config.js"
	assert.Equal(t, "/shared/app.js", layout.EntryPath())
	assert.Equal(t, "/shared/index.html", layout.IndexPath())
	assert.Equal(t, "/etc/postcss.config.js", layout.PostCSSPath())
}

func TestBuildConfigurationProduction(t *testing.T) {
	fsys := NewFileSystem(newProject(t, "home.tpl", "about.tpl"))

	cfg, err := BuildConfiguration(mode.Production, DefaultLayout(root), fsys)
	require.NoError(t, err)

	require.Len(t, cfg.Pages, 2)
	filenames := []string{cfg.Pages[0].Filename, cfg.Pages[1].Filename}
	assert.ElementsMatch(t, []string{"home.html", "about.html"}, filenames)

	assert.Regexp(t, `^bundle\.\[[^\]]+\]\.js$`, cfg.Output.Filename)
	assert.Equal(t, "bundle.[hash].css", cfg.Output.CSSFilename)
	assert.Equal(t, "/project/dist", cfg.Output.Dir)
	assert.Equal(t, "/project/src/index.js", cfg.Entry)
	assert.Equal(t, "/project/src", cfg.Context)
	assert.Empty(t, cfg.DevTool)
	assert.Equal(t, DevServer{Port: 3000, Hot: false}, cfg.DevServer)
	assert.True(t, cfg.HTML.Minify.RemoveComments)
	assert.True(t, cfg.HTML.Minify.CollapseWhitespace)
	assert.False(t, cfg.HTML.Hash)
	assert.Equal(t, "/project/src/index.html", cfg.Index.Template)
	assert.Equal(t, "index.html", cfg.Index.Filename)
	assert.Len(t, cfg.CopyRules, 3)
	assert.Len(t, cfg.Rules, 6)

	// css-extract, clean, copy, index, then the pages.
	require.Len(t, cfg.Plugins, 6)
	assert.Equal(t, PluginCSSExtract, cfg.Plugins[0].Name)
	assert.Equal(t, "bundle.[hash].css", cfg.Plugins[0].Options["filename"])
	assert.Equal(t, PluginClean, cfg.Plugins[1].Name)
	assert.Equal(t, PluginCopy, cfg.Plugins[2].Name)
	assert.Equal(t, PluginHTML, cfg.Plugins[3].Name)
	assert.Equal(t, "/project/src/index.html", cfg.Plugins[3].Options["template"])
	for _, p := range cfg.Plugins[4:] {
		assert.Equal(t, PluginHTML, p.Name)
		assert.True(t, strings.HasPrefix(p.Options["filename"].(string), "./"))
	}

	assert.Len(t, cfg.AllPages(), 3)
}

func TestBuildConfigurationDevelopment(t *testing.T) {
	fsys := NewFileSystem(newProject(t, "home.tpl"))

	cfg, err := BuildConfiguration(mode.Development, DefaultLayout(root), fsys)
	require.NoError(t, err)

	assert.Equal(t, "bundle.js", cfg.Output.Filename)
	assert.Equal(t, "bundle.css", cfg.Output.CSSFilename)
	assert.Equal(t, "source-map", cfg.DevTool)
	assert.Equal(t, DevServer{Port: 3000, Hot: true}, cfg.DevServer)
	assert.False(t, cfg.HTML.Minify.RemoveComments)
}

func TestBuildConfigurationPortOverride(t *testing.T) {
	layout := DefaultLayout(root)
	layout.DevServerPort = 8080

	cfg, err := BuildConfiguration(mode.Development, layout, NewFileSystem(newProject(t)))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.DevServer.Port)
	assert.Equal(t, 8080, cfg.Options.DevServerPort)
}

func TestBuildConfigurationReportsEveryProblem(t *testing.T) {
	memfs := afero.NewMemMapFs()
	require.NoError(t, memfs.MkdirAll("/project/src/img", 0o755))

	cfg, err := BuildConfiguration(mode.Production, DefaultLayout(root), NewFileSystem(memfs))
	require.Error(t, err)
	assert.Nil(t, cfg)

	var ce *errors.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"/project/src/icons", "/project/src/static"}, ce.Missing())
	assert.True(t, errors.HasProblem(err, errors.UnreadableTemplatesDirectory))
}

func TestPlugins(t *testing.T) {
	index := PageDescriptor{Template: "/project/src/index.html", Filename: "index.html", Title: "Index"}
	pages := []PageDescriptor{
		{Template: "/project/src/pages/home.tpl", Filename: "home.html", Title: "Home"},
		{Template: "/project/src/pages/about-us.tpl", Filename: "about-us.html", Title: "About Us"},
	}
	copyRules := []AssetCopyRule{{From: "/project/src/img", To: "/project/dist/img"}}
	html := HTMLOptionsFor(ProdOptions())

	plugins := Plugins("bundle.[hash].css", copyRules, html, index, pages)

	var names []string
	for _, p := range plugins {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{PluginCSSExtract, PluginClean, PluginCopy, PluginHTML, PluginHTML, PluginHTML}, names)

	assert.Equal(t, "bundle.[hash].css", plugins[0].Options["filename"])
	assert.Equal(t, false, plugins[3].Options["hash"])
	assert.Equal(t, map[string]interface{}{"removeComments": true, "collapseWhitespace": true}, plugins[3].Options["minify"])
	assert.Equal(t, "./home.html", plugins[4].Options["filename"])
	assert.Equal(t, "About Us", plugins[5].Options["title"])
}
