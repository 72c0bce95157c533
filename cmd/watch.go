package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/bundlecfg/internal/bundler"
	"github.com/conneroisu/bundlecfg/internal/derive"
	"github.com/conneroisu/bundlecfg/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever the sources change",
	Long: `Build once, then watch the source directory and rebuild on every
change without serving.

Each rebuild re-runs the whole derivation, so adding or removing a page
template changes the set of pages produced. A failed derivation or build
is logged and watching continues.

Examples:
  bundlecfg watch
  bundlecfg watch --debounce 1s`,
	Aliases: []string{"w"},
	RunE:    runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Delay after the last change before rebuilding")
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	layout := p.config.Layout()

	rebuild := func(ctx context.Context) error {
		derived, err := p.deriveConfiguration(cmd)
		if err != nil {
			return err
		}
		_, err = bundler.New(derived, bundler.WithLogger(p.logger)).Build(ctx)
		return err
	}

	if err := rebuild(ctx); err != nil {
		p.logger.Error(ctx, err, "Initial build failed, waiting for changes")
	}

	fileWatcher, err := watcher.NewFileWatcher(watchDebounce, p.logger)
	if err != nil {
		return err
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.NoOutputFilter(layout.OutputDir()))
	fileWatcher.AddFilter(watcher.NoHiddenFilter(layout.Root))
	fileWatcher.AddFilter(watchFilter(layout))
	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		for _, event := range events {
			p.logger.Debug(ctx, "File changed", "path", event.Path, "type", event.Type.String())
		}
		p.logger.Info(ctx, "Rebuilding", "changes", len(events))
		return rebuild(ctx)
	})

	if err := fileWatcher.AddRecursive(layout.ContextDir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", layout.ContextDir(), err)
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return err
	}

	p.logger.Info(ctx, "Watching for changes", "dir", layout.ContextDir())
	<-ctx.Done()
	return nil
}

// watchFilter accepts files a rebuild reads. Those are files with an
// extension the rule table or the layout's own files use, plus anything
// under a copy source directory.
func watchFilter(layout derive.Layout) watcher.FileFilter {
	return watcher.AnyFilter(
		watcher.ExtensionFilter(watchExtensions(layout)...),
		watcher.WithinFilter(layout.CopySources()...),
	)
}

func watchExtensions(layout derive.Layout) []string {
	seen := make(map[string]bool)
	var exts []string
	add := func(ext string) {
		if ext != "" && !seen[ext] {
			seen[ext] = true
			exts = append(exts, ext)
		}
	}

	for _, rule := range derive.DefaultRules(derive.RuleOptions{TemplateExtension: layout.TemplateExtension}) {
		for _, ext := range rule.Extensions {
			add(ext)
		}
	}
	add(filepath.Ext(layout.Entry))
	add(filepath.Ext(layout.Index))
	add(filepath.Ext(layout.PostCSSConfig))
	return exts
}
