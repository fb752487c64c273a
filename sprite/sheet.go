// Package sprite accumulates compiled symbols and their definitions during a
// build and serializes them into a single spritesheet document.
package sprite

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"svgsprite/symbol"
)

// URLToken is well-known token which could be used to ask for final
// spritesheet location after it was emitted as an asset.
const URLToken = "__svg_spritesheet_url__"

const (
	sheetOpen  = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">`
	sheetClose = `</svg>`
)

// Sink receives serialized spritesheet.
type Sink interface {
	Emit(markup string) error
}

// SinkFunc is adapter to allow use of ordinary functions as Sink.
type SinkFunc func(markup string) error

func (f SinkFunc) Emit(markup string) error {
	return f(markup)
}

// AssetEmitter stores spritesheet as named build asset. It returns location
// (URL) under which the asset will be available.
type AssetEmitter interface {
	EmitAsset(name string, data []byte) (string, error)
}

// Sheet is spritesheet state for a single build. It is not safe for
// concurrent use.
type Sheet struct {
	symbols *orderedmap.OrderedMap[string, symbol.Symbol]
	defs    *orderedmap.OrderedMap[string, string]

	dirty  bool
	output string
	builds int

	ref string
	url string
}

// New returns empty spritesheet.
func New() *Sheet {
	return &Sheet{
		symbols: orderedmap.New[string, symbol.Symbol](),
		defs:    orderedmap.New[string, string](),
	}
}

// Record stores (or overwrites) compilation result of document docID.
// Documents keep position of their first recording.
func (s *Sheet) Record(docID string, sym symbol.Symbol, defs string, hasDefs bool) {
	s.symbols.Set(docID, sym)
	if hasDefs {
		s.defs.Set(docID, defs)
	} else {
		// stale definitions from previous compilation
		s.defs.Delete(docID)
	}
	s.dirty = true
}

// RecordResult is a shortcut for Record.
func (s *Sheet) RecordResult(docID string, res *symbol.Result) {
	s.Record(docID, res.Symbol, res.Defs, res.HasDefs)
}

// Forget removes everything recorded for docID.
func (s *Sheet) Forget(docID string) bool {
	_, present := s.symbols.Delete(docID)
	s.defs.Delete(docID)
	if present {
		s.dirty = true
	}
	return present
}

// Len returns number of symbols in the sheet.
func (s *Sheet) Len() int {
	return s.symbols.Len()
}

// Symbol returns symbol recorded for docID.
func (s *Sheet) Symbol(docID string) (symbol.Symbol, bool) {
	return s.symbols.Get(docID)
}

// Dirty reports whether sheet changed since last rendering.
func (s *Sheet) Dirty() bool {
	return s.dirty
}

// Builds returns how many times spritesheet was actually serialized.
func (s *Sheet) Builds() int {
	return s.builds
}

// Render returns serialized spritesheet, rebuilding it only if something was
// recorded since previous call.
func (s *Sheet) Render() string {
	if !s.dirty && s.builds > 0 {
		return s.output
	}

	var defs, symbols []string
	for pair := s.defs.Oldest(); pair != nil; pair = pair.Next() {
		defs = append(defs, pair.Value)
	}
	for pair := s.symbols.Oldest(); pair != nil; pair = pair.Next() {
		symbols = append(symbols, pair.Value.Code)
	}

	var sb strings.Builder
	sb.WriteString(sheetOpen)
	sb.WriteString("\n<defs>\n")
	sb.WriteString(strings.Join(defs, "\n"))
	sb.WriteString("\n</defs>\n")
	sb.WriteString(strings.Join(symbols, "\n"))
	sb.WriteString("\n")
	sb.WriteString(sheetClose)

	s.output = CollapseWhitespace(sb.String())
	s.dirty = false
	s.builds++
	return s.output
}

// Flush renders spritesheet and hands it to sink.
func (s *Sheet) Flush(sink Sink) (string, error) {
	out := s.Render()
	if err := sink.Emit(out); err != nil {
		return out, fmt.Errorf("unable to emit spritesheet: %w", err)
	}
	return out, nil
}

// FlushAsset renders spritesheet and emits it as asset under name. Opaque
// asset reference is minted on first emission and kept for the sheet
// lifetime, location reported by emitter is remembered for ResolveURL.
func (s *Sheet) FlushAsset(emitter AssetEmitter, name string) (string, error) {
	out := s.Render()
	url, err := emitter.EmitAsset(name, []byte(out))
	if err != nil {
		return out, fmt.Errorf("unable to emit spritesheet asset %q: %w", name, err)
	}
	if len(s.ref) == 0 {
		id, err := uuid.NewV7()
		if err != nil {
			return out, fmt.Errorf("unable to mint spritesheet reference: %w", err)
		}
		s.ref = id.String()
	}
	s.url = url
	return out, nil
}

// Reference returns opaque asset reference or empty string if spritesheet was
// never emitted as an asset.
func (s *Sheet) Reference() string {
	return s.ref
}

// ResolveURL answers location queries for well-known URLToken (or asset
// reference itself). It only succeeds after spritesheet was emitted as asset.
func (s *Sheet) ResolveURL(token string) (string, bool) {
	if len(s.ref) == 0 {
		return "", false
	}
	if token != URLToken && token != s.ref {
		return "", false
	}
	return s.url, true
}
