package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"svgsprite/cache"
	"svgsprite/state"
)

// pipeline is everything build and watch subcommands share.
type pipeline struct {
	src, dst string
	builder  *Builder
	cache    *cache.Cache
	log      *zap.Logger
}

func (p *pipeline) close() error {
	return p.cache.Close()
}

// preparePipeline processes command line and configuration and creates
// builder.
func preparePipeline(ctx context.Context, cmd *cli.Command, log *zap.Logger) (*pipeline, error) {
	env := state.EnvFromContext(ctx)

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return nil, errors.New("no input source has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return nil, err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Overwrite = cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	p := &pipeline{src: src, dst: dst, log: log}
	if env.Cfg.Cache.Enable {
		if p.cache, err = cache.Open(env.Cfg.Cache.Path, env.Log); err != nil {
			// cache is an optimization, build works without it
			log.Warn("Compile cache is not available", zap.Error(err))
		}
	}

	p.builder, err = New(&env.Cfg.Sprite, dst, log,
		WithCache(p.cache), WithOverwrite(env.Overwrite), WithReport(env.Rpt))
	if err != nil {
		return nil, multierr.Append(err, p.close())
	}
	return p, nil
}

// build performs complete build: collects sources, compiles them and writes
// spritesheet and stubs.
func (p *pipeline) build(ctx context.Context) error {
	env := state.EnvFromContext(ctx)

	docs, err := Collect(ctx, p.src, &env.Cfg.Sprite, env.CodePage, p.builder.Produced, p.log)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		p.log.Warn("No source documents found", zap.String("source", p.src))
	}

	if err := p.builder.Add(ctx, docs...); err != nil {
		return err
	}
	if _, err := p.builder.Flush(); err != nil {
		return err
	}
	if err := p.builder.WriteStubs(); err != nil {
		return fmt.Errorf("unable to write stubs: %w", err)
	}
	if failures := p.builder.Failures(); failures != nil {
		p.log.Warn("Some documents were skipped", zap.Int("count", len(multierr.Errors(failures))), zap.Error(failures))
	}
	p.builder.storeDump()
	return nil
}

// Run is the "build" subcommand.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	p, err := preparePipeline(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, p.close())
	}()

	log.Info("Processing starting", zap.String("source", p.src), zap.String("destination", p.dst), zap.Stringer("mode", env.Cfg.Sprite.Mode))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return p.build(ctx)
}

// RunWatch is the "watch" subcommand: initial build followed by incremental
// rebuilds on source changes, optionally serving results over HTTP.
func RunWatch(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	p, err := preparePipeline(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, p.close())
	}()

	fi, err := os.Stat(p.src)
	if err != nil {
		return fmt.Errorf("unable to access source: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("only directories could be watched (%s)", p.src)
	}

	log.Info("Initial build", zap.String("source", p.src), zap.String("destination", p.dst))
	if err := p.build(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var serveErr chan error
	if addr := cmd.String("listen"); len(addr) > 0 {
		serveErr = make(chan error, 1)
		go func() {
			serveErr <- Serve(ctx, addr, p.builder.Handler(), env.Log.Named("serve"))
			// watching makes no sense without server which failed
			cancel()
		}()
	}

	w := &Watcher{
		Root:     p.src,
		Debounce: env.Cfg.Watch.Debounce,
		Builder:  p.builder,
		Config:   &env.Cfg.Sprite,
		Log:      env.Log.Named("watch"),
	}
	err = w.Run(ctx)
	if serveErr != nil {
		cancel()
		err = multierr.Append(err, <-serveErr)
	}
	return err
}
