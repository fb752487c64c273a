// Package symbol turns standalone SVG documents into <symbol> definitions
// suitable for a combined spritesheet. Definitions (<defs>) are returned
// separately since they have to be attached to the spritesheet globally, their
// identifiers are moved into symbol scope.
package symbol

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Prefix starts every symbol identifier. Documents with the same name get the
// same identifier, callers have to keep names unique.
const Prefix = "__svg__spritesheet__"

// ErrMalformed is returned when source is not well-formed XML or has no <svg>
// element in it.
var ErrMalformed = errors.New("malformed svg document")

// Symbol is compiled document.
type Symbol struct {
	ID   string
	Code string
}

// Result of a single document compilation. Defs is only meaningful when
// HasDefs is set.
type Result struct {
	Symbol  Symbol
	Defs    string
	HasDefs bool
}

// ID returns symbol identifier for document display name.
func ID(name string) string {
	return Prefix + name
}

type attr struct {
	key, value string
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `"`, "&quot;", "\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;")

// Compile parses markup of document docID and produces symbol named after
// name. Only malformed input results in error.
func Compile(opts Options, docID, name string, markup []byte) (*Result, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: true,
		PreserveCData: true,
	}
	if err := doc.ReadFromBytes(markup); err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrMalformed, docID, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		root = doc.FindElement("//svg")
	}
	if root == nil {
		return nil, fmt.Errorf("%w (%s): no svg element", ErrMalformed, docID)
	}

	// Authors rarely clean their sources, these are not needed in symbol.
	for _, t := range slices.Clone(root.Child) {
		switch tok := t.(type) {
		case *etree.Comment:
			root.RemoveChild(tok)
		case *etree.Element:
			if tok.Tag == "title" || tok.Tag == "desc" {
				root.RemoveChild(tok)
			}
		}
	}

	dropSVGPrefix(root)

	res := &Result{Symbol: Symbol{ID: ID(name)}}

	// Definitions are moved out, otherwise they would be present twice.
	var defs bytes.Buffer
	for _, el := range root.FindElements(".//defs") {
		if nestedDefs(el, root) {
			continue
		}
		// namespaces declared on root stay behind, definitions carry their own
		for _, c := range el.ChildElements() {
			decls, err := outerNamespaces(root, c)
			if err != nil {
				return nil, fmt.Errorf("%w (%s): %w", ErrMalformed, docID, err)
			}
			for _, d := range decls {
				c.CreateAttr(d.key, d.value)
			}
		}
		writeInner(&defs, el, &doc.WriteSettings)
		el.Parent().RemoveChild(el)
		res.HasDefs = true
	}

	clean := opts.CleanSymbols.Resolve(docID)
	if len(clean) > 0 {
		for _, el := range root.FindElements(".//*") {
			for _, key := range clean {
				el.RemoveAttr(key)
			}
		}
	}

	decls, err := outerNamespaces(root, root.ChildElements()...)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrMalformed, docID, err)
	}

	var body bytes.Buffer
	writeInner(&body, root, &doc.WriteSettings)
	code := body.String()

	if res.HasDefs {
		var renames []Rename
		res.Defs, renames = ScopeIDs(defs.String(), res.Symbol.ID)
		code = RewriteRefs(code, renames)
	}

	attrs := append(shellAttrs(root, res.Symbol.ID, opts.Dimensions.WithSize(), clean, opts.SymbolAttrs.Resolve(docID)), decls...)

	var sb strings.Builder
	sb.WriteString("<symbol")
	for _, a := range attrs {
		sb.WriteString(" " + a.key + `="` + attrEscaper.Replace(a.value) + `"`)
	}
	sb.WriteString(">")
	sb.WriteString(code)
	sb.WriteString("</symbol>")
	res.Symbol.Code = sb.String()

	return res, nil
}

// shellAttrs prepares attributes of <symbol> element in output order.
func shellAttrs(root *etree.Element, id string, withSize bool, clean []string, extra map[string]string) []attr {
	attrs := []attr{{key: "id", value: id}}

	keys := []string{"viewBox"}
	if withSize {
		keys = []string{"width", "height", "viewBox"}
	}
	for _, k := range keys {
		if slices.Contains(clean, k) {
			continue
		}
		// absent attributes are not invented
		if a := root.SelectAttr(k); a != nil {
			attrs = append(attrs, attr{key: k, value: a.Value})
		}
	}

	names := make([]string, 0, len(extra))
	for k := range extra {
		if k == "id" || len(k) == 0 {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		i := slices.IndexFunc(attrs, func(a attr) bool { return a.key == k })
		if i >= 0 {
			attrs[i].value = extra[k]
			continue
		}
		attrs = append(attrs, attr{key: k, value: extra[k]})
	}
	return attrs
}

// writeInner serializes children of el.
func writeInner(buf *bytes.Buffer, el *etree.Element, ws *etree.WriteSettings) {
	for _, t := range el.Child {
		t.WriteTo(buf, ws)
	}
}

func nestedDefs(el, root *etree.Element) bool {
	for p := el.Parent(); p != nil && p != root; p = p.Parent() {
		if p.Tag == "defs" {
			return true
		}
	}
	return false
}
