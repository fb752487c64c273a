package symbol

import (
	"fmt"

	"github.com/beevik/etree"
)

const (
	svgNS   = "http://www.w3.org/2000/svg"
	xlinkNS = "http://www.w3.org/1999/xlink"
)

// dropSVGPrefix turns prefixed SVG elements (<svg:path/>) into plain ones,
// spritesheet declares SVG namespace as default.
func dropSVGPrefix(root *etree.Element) {
	els := append([]*etree.Element{root}, root.FindElements(".//*")...)
	plain := make([]*etree.Element, 0, len(els))
	for _, el := range els {
		if el.Space == "" {
			continue
		}
		if uri, _ := resolvePrefix(el, root, el.Space); uri == svgNS {
			plain = append(plain, el)
		}
	}
	// resolved first, prefixes are looked up through ancestors
	for _, el := range plain {
		el.Space = ""
	}
}

// resolvePrefix finds namespace declared for prefix in scope of el. Outer is
// set when declaration belongs to root or its ancestors, such declarations do
// not travel with subtrees of root.
func resolvePrefix(el, root *etree.Element, prefix string) (uri string, outer bool) {
	for p := el; p != nil; p = p.Parent() {
		outer = outer || p == root
		for _, a := range p.Attr {
			if a.Space == "xmlns" && a.Key == prefix {
				return a.Value, outer
			}
		}
	}
	return "", false
}

// outerNamespaces returns declarations for prefixes used inside els which are
// declared on root or above it. Spritesheet declares xlink itself. Prefix
// without any declaration makes document malformed.
func outerNamespaces(root *etree.Element, els ...*etree.Element) ([]attr, error) {
	var (
		decls []attr
		seen  = make(map[string]bool)
	)
	use := func(el *etree.Element, prefix string) error {
		if prefix == "" || prefix == "xml" || prefix == "xmlns" {
			return nil
		}
		uri, outer := resolvePrefix(el, root, prefix)
		switch {
		case uri == "":
			return fmt.Errorf("undeclared namespace prefix %q in <%s>", prefix, el.FullTag())
		case !outer || seen[prefix]:
			return nil
		case prefix == "xlink" && uri == xlinkNS:
			return nil
		}
		seen[prefix] = true
		decls = append(decls, attr{key: "xmlns:" + prefix, value: uri})
		return nil
	}

	for _, top := range els {
		for _, el := range append([]*etree.Element{top}, top.FindElements(".//*")...) {
			if err := use(el, el.Space); err != nil {
				return nil, err
			}
			for _, a := range el.Attr {
				if a.Space == "xmlns" {
					continue
				}
				if err := use(el, a.Space); err != nil {
					return nil, err
				}
			}
		}
	}
	return decls, nil
}
