package bundler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"

	"github.com/conneroisu/bundlecfg/internal/derive"
	"github.com/conneroisu/bundlecfg/internal/pages"
)

// CleanDir removes everything inside dir, keeping dir itself. A missing
// directory is not an error.
func CleanDir(fsys afero.Fs, dir string) error {
	entries, err := afero.ReadDir(fsys, dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := fsys.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// CopyAssets applies the copy rules in order, recreating each source tree
// under its destination. Rules sharing a destination are merged and later
// rules overwrite files of earlier ones.
func CopyAssets(fsys afero.Fs, rules []derive.AssetCopyRule) (int, error) {
	copied := 0
	for _, rule := range rules {
		err := afero.Walk(fsys, rule.From, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(rule.From, path)
			if err != nil {
				return err
			}
			dest := filepath.Join(rule.To, rel)
			if info.IsDir() {
				return fsys.MkdirAll(dest, 0o755)
			}
			if err := copyFile(fsys, path, dest, info.Mode()); err != nil {
				return err
			}
			copied++
			return nil
		})
		if err != nil {
			return copied, fmt.Errorf("copying %s to %s: %w", rule.From, rule.To, err)
		}
	}
	return copied, nil
}

func copyFile(fsys afero.Fs, src, dest string, mode os.FileMode) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// WritePages renders every page with references to the entry's built
// assets. Asset paths in meta are relative to the configuration root.
func WritePages(fsys afero.Fs, cfg *derive.Configuration, meta *BuildMetadata, liveReload bool) ([]string, error) {
	var data pages.Data
	data.Mode = cfg.Mode.String()

	if meta != nil {
		entry, err := filepath.Rel(cfg.Root, cfg.Entry)
		if err != nil {
			return nil, err
		}
		script, style, ok := meta.EntryAssets(filepath.ToSlash(entry))
		if ok {
			for _, asset := range []string{script, style} {
				if asset == "" {
					continue
				}
				href, err := filepath.Rel(cfg.Output.Dir, filepath.Join(cfg.Root, filepath.FromSlash(asset)))
				if err != nil {
					return nil, err
				}
				href = filepath.ToSlash(href)
				if filepath.Ext(asset) == ".css" {
					data.Styles = append(data.Styles, href)
				} else {
					data.Scripts = append(data.Scripts, href)
				}
			}
		}
	}

	opts := pages.Options{Minify: cfg.HTML.Minify, LiveReload: liveReload}

	var written []string
	for _, page := range cfg.AllPages() {
		pageData := data
		pageData.Title = ""
		dest, err := pages.WritePage(fsys, page, cfg.Output.Dir, pageData, opts)
		if err != nil {
			return written, fmt.Errorf("page %s: %w", page.Filename, err)
		}
		written = append(written, dest)
	}
	return written, nil
}

func hasPlugin(cfg *derive.Configuration, name string) bool {
	for _, p := range cfg.Plugins {
		if p.Name == name {
			return true
		}
	}
	return false
}

// plugins builds the esbuild plugins for the invocations listed in the
// configuration. css-extract needs no plugin: esbuild emits the entry's
// stylesheet itself under the same entry name.
func (b *Bundler) plugins(ctx context.Context) []api.Plugin {
	var plugins []api.Plugin

	if hasPlugin(b.cfg, derive.PluginClean) {
		plugins = append(plugins, api.Plugin{
			Name: derive.PluginClean,
			Setup: func(pb api.PluginBuild) {
				pb.OnStart(func() (api.OnStartResult, error) {
					if err := CleanDir(b.fs, b.cfg.Output.Dir); err != nil {
						return api.OnStartResult{Errors: []api.Message{{Text: err.Error()}}}, nil
					}
					b.logger.Debug(ctx, "Cleaned output directory", "dir", b.cfg.Output.Dir)
					return api.OnStartResult{}, nil
				})
			},
		})
	}

	if hasPlugin(b.cfg, derive.PluginCopy) {
		plugins = append(plugins, api.Plugin{
			Name: derive.PluginCopy,
			Setup: func(pb api.PluginBuild) {
				pb.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
					if len(result.Errors) > 0 {
						return api.OnEndResult{}, nil
					}
					n, err := CopyAssets(b.fs, b.cfg.CopyRules)
					if err != nil {
						return api.OnEndResult{Errors: []api.Message{{Text: err.Error()}}}, nil
					}
					b.logger.Info(ctx, "Copied assets", "files", n)
					return api.OnEndResult{}, nil
				})
			},
		})
	}

	if hasPlugin(b.cfg, derive.PluginHTML) {
		plugins = append(plugins, api.Plugin{
			Name: derive.PluginHTML,
			Setup: func(pb api.PluginBuild) {
				pb.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
					if len(result.Errors) > 0 {
						return api.OnEndResult{}, nil
					}
					meta, err := parseMetadata(result.Metafile)
					if err != nil {
						return api.OnEndResult{Errors: []api.Message{{Text: "reading metafile: " + err.Error()}}}, nil
					}
					written, err := WritePages(b.fs, b.cfg, meta, b.liveReload)
					if err != nil {
						return api.OnEndResult{Errors: []api.Message{{Text: err.Error()}}}, nil
					}
					for _, path := range written {
						b.logger.Info(ctx, "Built page", "file", path)
					}
					return api.OnEndResult{}, nil
				})
			},
		})
	}

	return plugins
}
