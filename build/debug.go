package build

import (
	"svgsprite/utils/debug"
)

// Dump returns human readable state of the spritesheet for debug report.
func (b *Builder) Dump() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dump()
}

func (b *Builder) dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "spritesheet")
	tw.Field(1, "mode", b.cfg.Mode)
	tw.Field(1, "name", b.sheetName())
	tw.Field(1, "symbols", b.sheet.Len())
	tw.Field(1, "builds", b.sheet.Builds())
	tw.Field(1, "dirty", b.sheet.Dirty())
	if ref := b.sheet.Reference(); len(ref) > 0 {
		url, _ := b.sheet.ResolveURL(ref)
		tw.Field(1, "reference", ref)
		tw.Field(1, "url", url)
	}
	for _, id := range b.documentIDs() {
		doc := b.docs[id]
		sym, _ := b.sheet.Symbol(id)
		tw.Line(1, "document %q", id)
		tw.Text(2, "name", doc.Name)
		tw.Text(2, "origin", doc.Origin)
		tw.Text(2, "symbol", sym.ID)
		tw.Text(2, "code", sym.Code)
	}
	return tw.String()
}

// storeDump puts snapshot of the current state into debug report.
func (b *Builder) storeDump() {
	if b.rpt == nil {
		return
	}
	b.rpt.StoreData("state/sheet.txt", []byte(b.Dump()))
}
