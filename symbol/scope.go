package symbol

import (
	"regexp"
	"strings"
)

// Rename describes single identifier moved into symbol scope.
type Rename struct {
	Old string
	New string
}

// idAttrRe matches id attributes as produced by serializer: preceded by
// whitespace and double quoted. Names like data-id are not matched.
var idAttrRe = regexp.MustCompile(`(\s)id="([^"]*)"`)

// ScopedID returns identifier old moved under scope.
func ScopedID(scope, old string) string {
	return scope + "_" + old
}

// ScopeIDs rewrites every id attribute found in serialized fragment so its
// value is prefixed by scope. Renames are returned in order of appearance.
// This is purely textual, nothing is resolved or validated.
func ScopeIDs(fragment, scope string) (string, []Rename) {
	var renames []Rename
	out := idAttrRe.ReplaceAllStringFunc(fragment, func(match string) string {
		sub := idAttrRe.FindStringSubmatch(match)
		r := Rename{Old: sub[2], New: ScopedID(scope, sub[2])}
		renames = append(renames, r)
		return sub[1] + `id="` + r.New + `"`
	})
	return out, renames
}

// RewriteRefs replaces url(#old) references in markup with url(#new) for
// every rename. Replacement is done in a single pass so renamed references
// are never renamed again. References without matching rename are left as is.
func RewriteRefs(markup string, renames []Rename) string {
	if len(renames) == 0 {
		return markup
	}
	pairs := make([]string, 0, len(renames)*2)
	for _, r := range renames {
		pairs = append(pairs, "url(#"+r.Old+")", "url(#"+r.New+")")
	}
	return strings.NewReplacer(pairs...).Replace(markup)
}
