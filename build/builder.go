// Package build drives spritesheet generation. It collects source documents,
// compiles them (through optional cache) into symbols, records them in the
// spritesheet and writes out the sheet together with per-document stubs.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"svgsprite/cache"
	"svgsprite/common"
	"svgsprite/config"
	"svgsprite/sprite"
	"svgsprite/symbol"
)

// Option configures Builder.
type Option func(*Builder)

// WithCache makes builder consult compile cache before compiling documents.
func WithCache(c *cache.Cache) Option {
	return func(b *Builder) {
		b.cache = c
	}
}

// WithOverwrite allows builder to replace existing output files.
func WithOverwrite(overwrite bool) Option {
	return func(b *Builder) {
		b.overwrite = overwrite
	}
}

// WithReport makes builder store produced outputs in the debug report.
func WithReport(rpt *config.Report) Option {
	return func(b *Builder) {
		b.rpt = rpt
	}
}

// Builder owns spritesheet of a single build pipeline. It is safe for
// concurrent use: watcher and development server share it.
type Builder struct {
	mu sync.Mutex

	cfg       *config.SpriteConfig
	dst       string
	opts      symbol.Options
	overwrite bool
	cache     *cache.Cache
	rpt       *config.Report
	log       *zap.Logger

	sheet    *sprite.Sheet
	docs     map[string]Document // without data
	owners   map[string]string   // symbol id -> document id
	written  map[string]bool
	asset    string
	assetPat string // glob matching any asset name template could produce
	flushed  bool
	failures error

	stubTmpl  *template.Template
	assetTmpl *template.Template
	metrics   *Metrics
}

// New creates builder writing its outputs to dst directory.
func New(cfg *config.SpriteConfig, dst string, log *zap.Logger, options ...Option) (*Builder, error) {
	if abs, err := filepath.Abs(dst); err == nil {
		dst = abs
	}
	b := &Builder{
		cfg:     cfg,
		dst:     dst,
		opts:    resolveOptions(cfg),
		log:     log,
		sheet:   sprite.New(),
		docs:    make(map[string]Document),
		owners:  make(map[string]string),
		written: make(map[string]bool),
	}
	for _, o := range options {
		o(b)
	}

	var err error
	if cfg.Stubs.Enable {
		if b.stubTmpl, err = parseTemplate(config.StubTemplateFieldName, cfg.Stubs.Template); err != nil {
			return nil, err
		}
	}
	if cfg.Mode == common.OutputModeAsset {
		if b.assetTmpl, err = parseTemplate(config.AssetNameTemplateFieldName, cfg.AssetNameTemplate); err != nil {
			return nil, err
		}
		values := assetValues(cfg.Output, nil)
		values.Hash = "*"
		if pat, err := expandTemplate(b.assetTmpl, values); err == nil {
			b.assetPat = pat
		}
	}

	b.metrics = newMetrics(
		func() float64 {
			b.mu.Lock()
			defer b.mu.Unlock()
			return float64(b.sheet.Builds())
		},
		func() float64 {
			b.mu.Lock()
			defer b.mu.Unlock()
			return float64(b.sheet.Len())
		})
	return b, nil
}

// resolveOptions turns configuration into compiler options. When overrides
// are present options are computed per document: first override with pattern
// matching document id wins, its clean list replaces global one and its
// attributes are added on top of global ones.
func resolveOptions(cfg *config.SpriteConfig) symbol.Options {
	opts := symbol.Options{
		CleanSymbols: symbol.Static(cfg.CleanSymbols),
		SymbolAttrs:  symbol.Static(cfg.SymbolAttrs),
		Dimensions:   cfg.Dimensions,
	}
	if len(cfg.Overrides) == 0 {
		return opts
	}

	opts.CleanSymbols = symbol.PerDocument(func(docID string) []string {
		if o := matchOverride(cfg.Overrides, docID); o != nil && o.CleanSymbols != nil {
			return o.CleanSymbols
		}
		return cfg.CleanSymbols
	})
	opts.SymbolAttrs = symbol.PerDocument(func(docID string) map[string]string {
		o := matchOverride(cfg.Overrides, docID)
		if o == nil || len(o.SymbolAttrs) == 0 {
			return cfg.SymbolAttrs
		}
		attrs := make(map[string]string, len(cfg.SymbolAttrs)+len(o.SymbolAttrs))
		for k, v := range cfg.SymbolAttrs {
			attrs[k] = v
		}
		for k, v := range o.SymbolAttrs {
			attrs[k] = v
		}
		return attrs
	})
	return opts
}

func matchOverride(overrides []config.OverrideConfig, docID string) *config.OverrideConfig {
	for i := range overrides {
		// patterns are validated when configuration is loaded
		if ok, _ := doublestar.Match(overrides[i].Match, docID); ok {
			return &overrides[i]
		}
	}
	return nil
}

// Metrics returns pipeline metrics.
func (b *Builder) Metrics() *Metrics {
	return b.metrics
}

// Failures returns aggregated errors of documents skipped so far.
func (b *Builder) Failures() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// compile produces symbol for the document, consulting cache when available.
func (b *Builder) compile(doc Document) (*symbol.Result, error) {
	var fp string
	if b.cache != nil {
		fp = cache.Fingerprint(doc.Data, doc.Name,
			b.opts.CleanSymbols.Resolve(doc.ID), b.opts.SymbolAttrs.Resolve(doc.ID), b.opts.Dimensions)
		if res, ok := b.cache.Get(doc.ID, fp); ok {
			b.metrics.cacheHits.Inc()
			b.log.Debug("Symbol taken from cache", zap.String("doc", doc.ID))
			return res, nil
		}
	}

	res, err := symbol.Compile(b.opts, doc.ID, doc.Name, doc.Data)
	if err != nil {
		b.metrics.failed.Inc()
		return nil, err
	}
	b.metrics.compiled.Inc()
	if b.cache != nil {
		b.cache.Put(doc.ID, fp, res)
	}
	return res, nil
}

// Add compiles documents and records them in the spritesheet. Depending on
// error policy first failure either stops processing and is returned, or is
// logged and remembered (see Failures) while processing continues.
func (b *Builder) Add(ctx context.Context, docs ...Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.record(doc); err != nil {
			if b.cfg.OnError == common.ErrorPolicyAbort {
				return err
			}
			b.log.Error("Skipping document", zap.String("doc", doc.ID), zap.Error(err))
			b.failures = multierr.Append(b.failures, err)
		}
	}
	return nil
}

// Update compiles and records single document regardless of error policy.
// On failure previously recorded symbol (if any) is kept.
func (b *Builder) Update(doc Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record(doc)
}

func (b *Builder) record(doc Document) error {
	res, err := b.compile(doc)
	if err != nil {
		return fmt.Errorf("unable to compile %s: %w", doc.Origin, err)
	}

	if owner, ok := b.owners[res.Symbol.ID]; ok && owner != doc.ID {
		b.log.Warn("Symbol identifier is not unique",
			zap.String("id", res.Symbol.ID), zap.String("doc", doc.ID), zap.String("other", owner))
	}
	if prev, ok := b.sheet.Symbol(doc.ID); ok && prev.ID != res.Symbol.ID && b.owners[prev.ID] == doc.ID {
		delete(b.owners, prev.ID)
	}
	b.owners[res.Symbol.ID] = doc.ID

	b.sheet.RecordResult(doc.ID, res)
	doc.Data = nil
	b.docs[doc.ID] = doc
	b.log.Debug("Symbol recorded", zap.String("doc", doc.ID), zap.String("id", res.Symbol.ID), zap.Bool("defs", res.HasDefs))
	return nil
}

// Remove forgets document, drops its cache entry and deletes its stub. It
// reports whether document was known.
func (b *Builder) Remove(docID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remove(docID)
}

// RemoveTree forgets all documents under slash separated directory prefix
// and returns how many were removed.
func (b *Builder) RemoveTree(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	prefix = strings.TrimSuffix(prefix, "/") + "/"
	removed := 0
	for _, id := range b.documentIDs() {
		if strings.HasPrefix(id, prefix) && b.remove(id) {
			removed++
		}
	}
	return removed
}

func (b *Builder) remove(docID string) bool {
	sym, ok := b.sheet.Symbol(docID)
	if !ok {
		return false
	}
	b.sheet.Forget(docID)
	b.cache.Forget(docID)
	delete(b.docs, docID)
	if b.owners[sym.ID] == docID {
		delete(b.owners, sym.ID)
	}
	if b.cfg.Stubs.Enable {
		name := b.stubFile(docID)
		if b.written[name] {
			if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
				b.log.Warn("Unable to remove stub", zap.String("file", name), zap.Error(err))
			}
			delete(b.written, name)
		}
	}
	b.log.Debug("Document removed", zap.String("doc", docID))
	return true
}

// Produced reports whether file is (or could be) written by this builder:
// any file it has written so far, spritesheet output and, in asset mode,
// every name asset template expands to. Such files are never sources.
func (b *Builder) Produced(name string) bool {
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.written[name] {
		return true
	}
	if b.cfg.Mode != common.OutputModeAsset {
		return name == filepath.Join(b.dst, b.cfg.Output)
	}
	if filepath.Dir(name) != b.dst {
		return false
	}
	base := filepath.Base(name)
	if base == b.asset {
		return true
	}
	matched, err := doublestar.Match(b.assetPat, base)
	return err == nil && matched
}

// documentIDs returns known document identifiers in natural order.
func (b *Builder) documentIDs() []string {
	ids := make([]string, 0, len(b.docs))
	for id := range b.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return natural.Less(ids[i], ids[j])
	})
	return ids
}

// prepareOutput checks if output file could be written. Files produced by
// this builder are always replaced.
func (b *Builder) prepareOutput(name string) error {
	if b.written[name] {
		return nil
	}
	if _, err := os.Stat(name); err == nil {
		if !b.overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		b.log.Warn("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func (b *Builder) writeOutput(name string, data []byte) error {
	if err := b.prepareOutput(name); err != nil {
		return err
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	b.written[name] = true
	return nil
}

// assetWriter stores spritesheet as an asset in destination directory.
type assetWriter struct {
	b *Builder
}

func (w assetWriter) EmitAsset(name string, data []byte) (string, error) {
	b := w.b
	full := filepath.Join(b.dst, name)
	if err := b.writeOutput(full, data); err != nil {
		return "", err
	}
	if len(b.asset) != 0 && b.asset != name {
		// content changed, previous asset is obsolete
		old := filepath.Join(b.dst, b.asset)
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			b.log.Warn("Unable to remove obsolete asset", zap.String("file", old), zap.Error(err))
		}
		delete(b.written, old)
	}
	b.asset = name
	b.rpt.Store("result/"+name, full)
	return assetURL(b.cfg.PublicPath, name), nil
}

// Flush writes spritesheet out. Nothing is written when spritesheet did not
// change since previous flush.
func (b *Builder) Flush() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.flushed && !b.sheet.Dirty() {
		return b.sheet.Render(), nil
	}

	var (
		out string
		err error
	)
	switch b.cfg.Mode {
	case common.OutputModeAsset:
		var name string
		if name, err = expandTemplate(b.assetTmpl, assetValues(b.cfg.Output, []byte(b.sheet.Render()))); err != nil {
			return "", err
		}
		out, err = b.sheet.FlushAsset(assetWriter{b}, config.SafeFileName(name, filepath.Base(b.cfg.Output)))
	default:
		full := filepath.Join(b.dst, b.cfg.Output)
		out, err = b.sheet.Flush(sprite.SinkFunc(func(markup string) error {
			if err := b.writeOutput(full, []byte(markup)); err != nil {
				return err
			}
			b.rpt.Store("result/"+filepath.Base(full), full)
			return nil
		}))
	}
	if err != nil {
		return "", err
	}

	b.flushed = true
	b.metrics.flushes.Inc()
	b.log.Info("Spritesheet written", zap.Int("symbols", b.sheet.Len()), zap.String("name", b.sheetName()))
	return out, nil
}

// sheetName is file name under which spritesheet is currently available.
func (b *Builder) sheetName() string {
	if b.cfg.Mode == common.OutputModeAsset {
		return b.asset
	}
	return filepath.Base(b.cfg.Output)
}

// Sheet returns current spritesheet file name and content.
func (b *Builder) Sheet() (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sheetName(), b.sheet.Render()
}

func (b *Builder) stubDir() string {
	return filepath.Join(b.dst, b.cfg.Stubs.Dir)
}

func (b *Builder) stubFile(docID string) string {
	return filepath.Join(b.stubDir(), filepath.FromSlash(stubPath(docID, b.cfg.Stubs.Extension)))
}

// renderStub expands stub template for the document.
func (b *Builder) renderStub(docID string) ([]byte, error) {
	sym, ok := b.sheet.Symbol(docID)
	if !ok {
		return nil, fmt.Errorf("unknown document: %s", docID)
	}
	values := StubValues{
		ID:     sym.ID,
		Name:   b.docs[docID].Name,
		Source: docID,
	}
	if b.cfg.Mode == common.OutputModeAsset {
		// available only after spritesheet was emitted
		values.URL, _ = b.sheet.ResolveURL(sprite.URLToken)
	}
	out, err := expandTemplate(b.stubTmpl, values)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// WriteStubs writes stub files for listed documents, or for all documents
// when none are listed. Failures are aggregated.
func (b *Builder) WriteStubs(docIDs ...string) error {
	if !b.cfg.Stubs.Enable {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(docIDs) == 0 || b.cfg.Mode == common.OutputModeAsset {
		// in asset mode spritesheet location changes with its content
		docIDs = b.documentIDs()
	}

	var errs error
	for _, id := range docIDs {
		data, err := b.renderStub(id)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := b.writeOutput(b.stubFile(id), data); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unable to write stub for %s: %w", id, err))
		}
	}
	if len(docIDs) > 0 {
		b.rpt.Store("result/stubs", b.stubDir())
	}
	return errs
}

// Stub returns stub content by its slash separated path relative to stub
// directory.
func (b *Builder) Stub(rel string) ([]byte, bool) {
	if !b.cfg.Stubs.Enable {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id := range b.docs {
		if stubPath(id, b.cfg.Stubs.Extension) == rel {
			data, err := b.renderStub(id)
			if err != nil {
				b.log.Warn("Unable to render stub", zap.String("doc", id), zap.Error(err))
				return nil, false
			}
			return data, true
		}
	}
	return nil, false
}
