// Package bundler hands a derived configuration to esbuild. It translates
// the configuration into esbuild build options and supplies the clean,
// copy and html plugins the configuration lists.
package bundler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"

	"github.com/conneroisu/bundlecfg/internal/derive"
	"github.com/conneroisu/bundlecfg/internal/logging"
)

// ErrBuildFailed is returned when esbuild reports errors.
var ErrBuildFailed = errors.New("esbuild failed with errors")

// Bundler runs esbuild for one derived configuration.
type Bundler struct {
	cfg        *derive.Configuration
	fs         afero.Fs
	logger     logging.Logger
	liveReload bool
}

// Option configures a Bundler.
type Option func(*Bundler)

// WithFs sets the filesystem the plugins read and write. esbuild itself
// always uses the local disk.
func WithFs(fsys afero.Fs) Option {
	return func(b *Bundler) { b.fs = fsys }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(b *Bundler) { b.logger = logger }
}

// New creates a bundler for cfg.
func New(cfg *derive.Configuration, opts ...Option) *Bundler {
	b := &Bundler{
		cfg:    cfg,
		fs:     afero.NewOsFs(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("bundler")
	return b
}

// Result summarizes a finished build.
type Result struct {
	Outputs  []string
	Warnings []string
}

// Options returns the esbuild options including the host plugins.
func (b *Bundler) Options(ctx context.Context) api.BuildOptions {
	opts := BuildOptions(b.cfg)
	opts.Plugins = b.plugins(ctx)
	return opts
}

func (b *Bundler) warnUnsupported(ctx context.Context) {
	_, unsupported := Loaders(b.cfg.Rules)
	for _, id := range unsupported {
		b.logger.Warn(ctx, nil, "Rule has no esbuild loader, files it matches will fail to import", "rule", id)
	}
}

// Build runs a single esbuild build.
func (b *Bundler) Build(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.warnUnsupported(ctx)
	b.logger.Info(ctx, "Building", "entry", b.cfg.Entry, "mode", b.cfg.Mode.String())

	b.liveReload = false
	result := api.Build(b.Options(ctx))

	return b.report(ctx, result)
}

func (b *Bundler) report(ctx context.Context, result api.BuildResult) (*Result, error) {
	res := &Result{}

	for _, msg := range result.Warnings {
		b.logger.Warn(ctx, nil, msg.Text, "location", location(msg))
		res.Warnings = append(res.Warnings, msg.Text)
	}

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			b.logger.Error(ctx, nil, msg.Text, "location", location(msg))
		}
		return nil, fmt.Errorf("%w: %s", ErrBuildFailed, result.Errors[0].Text)
	}

	if result.Metafile != "" {
		meta, err := parseMetadata(result.Metafile)
		if err != nil {
			return nil, fmt.Errorf("reading metafile: %w", err)
		}
		for path := range meta.Outputs {
			res.Outputs = append(res.Outputs, filepath.Join(b.cfg.Root, filepath.FromSlash(path)))
		}
		sort.Strings(res.Outputs)
	}

	for _, file := range res.Outputs {
		b.logger.Info(ctx, "Built file", "file", file)
	}

	return res, nil
}

func location(msg api.Message) string {
	if msg.Location == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", msg.Location.File, msg.Location.Line, msg.Location.Column)
}

// Serve watches the sources and serves the output directory on the
// configured dev server port until ctx is done. With hot reload on, pages
// reload themselves after each rebuild.
func (b *Bundler) Serve(ctx context.Context) error {
	port := b.cfg.DevServer.Port
	if port < 1 || port > 65535 {
		return fmt.Errorf("dev server port %d is not in valid range 1-65535", port)
	}

	b.warnUnsupported(ctx)
	b.liveReload = b.cfg.DevServer.Hot

	buildCtx, ctxErr := api.Context(b.Options(ctx))
	if ctxErr != nil {
		for _, msg := range ctxErr.Errors {
			b.logger.Error(ctx, nil, msg.Text, "location", location(msg))
		}
		return fmt.Errorf("creating esbuild context: %w", ErrBuildFailed)
	}
	defer buildCtx.Dispose()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("starting watch: %w", err)
	}

	serveOpts := api.ServeOptions{Servedir: b.cfg.Output.Dir}
	setPort(&serveOpts.Port, port)

	served, err := buildCtx.Serve(serveOpts)
	if err != nil {
		return fmt.Errorf("starting dev server: %w", err)
	}

	b.logger.Info(ctx, "Dev server listening",
		"port", served.Port,
		"dir", b.cfg.Output.Dir,
		"hot", b.cfg.DevServer.Hot)

	<-ctx.Done()
	b.logger.Info(ctx, "Dev server stopping")
	return nil
}

// setPort assigns a range-checked port to esbuild's port field, whose
// integer type differs between esbuild releases.
func setPort[T ~int | ~uint16](dst *T, port int) {
	*dst = T(port)
}
