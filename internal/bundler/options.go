package bundler

import (
	"github.com/evanw/esbuild/pkg/api"

	"github.com/conneroisu/bundlecfg/internal/derive"
)

// nativeLoaders maps rule ids to the esbuild loader implementing them.
// Rules without an entry either need an external loader (sass) or are
// served by a host plugin (templates).
var nativeLoaders = map[string]api.Loader{
	derive.RuleScripts: api.LoaderJS,
	derive.RuleCSS:     api.LoaderCSS,
	derive.RuleImages:  api.LoaderFile,
	derive.RuleFonts:   api.LoaderFile,
}

// Loaders converts the ordered rule table into esbuild's extension map. An
// extension claimed by several rules keeps the loader of the first one. It
// also returns the ids of rules esbuild cannot run.
func Loaders(rules []derive.TransformRule) (map[string]api.Loader, []string) {
	loaders := make(map[string]api.Loader)
	var unsupported []string

	for _, rule := range rules {
		loader, ok := nativeLoaders[rule.ID]
		if !ok {
			if rule.ID != derive.RuleTemplates {
				unsupported = append(unsupported, rule.ID)
			}
			continue
		}
		for _, ext := range rule.Extensions {
			if _, claimed := loaders[ext]; !claimed {
				loaders[ext] = loader
			}
		}
	}

	return loaders, unsupported
}

// BuildOptions translates a derived configuration into esbuild options,
// without plugins.
func BuildOptions(cfg *derive.Configuration) api.BuildOptions {
	loaders, _ := Loaders(cfg.Rules)

	return api.BuildOptions{
		EntryPoints:       []string{cfg.Entry},
		AbsWorkingDir:     cfg.Root,
		Outdir:            cfg.Output.Dir,
		EntryNames:        derive.EntryName(cfg.Mode),
		AssetNames:        "[name]",
		Bundle:            true,
		Write:             true,
		Metafile:          true,
		Target:            api.ES2015,
		Loader:            loaders,
		MinifyWhitespace:  cfg.Options.Minify,
		MinifyIdentifiers: cfg.Options.Minify,
		MinifySyntax:      cfg.Options.Minify,
		Sourcemap:         cond(cfg.Options.SourceMaps, api.SourceMapLinked, api.SourceMapNone),
		LogLevel:          api.LogLevelSilent,
	}
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
