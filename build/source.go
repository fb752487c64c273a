package build

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"svgsprite/archive"
	"svgsprite/config"
)

// Document is a single source collected for the build.
type Document struct {
	// ID is slash separated path relative to the source root (path inside
	// archive for archived sources). It identifies document in spritesheet.
	ID string
	// Name is display name which becomes part of symbol identifier.
	Name string
	// Origin describes where document was found, for diagnostics only.
	Origin string
	Data   []byte
}

// documentName returns display name for document id: file stem, optionally
// transliterated.
func documentName(id string, transliterate bool) string {
	base := path.Base(id)
	name := strings.TrimSuffix(base, path.Ext(base))
	if transliterate {
		name = slug.Make(name)
	}
	return name
}

// sortDocuments puts documents in natural order of their identifiers, so
// repeated builds produce identical spritesheets.
func sortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return natural.Less(docs[i].ID, docs[j].ID)
	})
}

type collector struct {
	cfg  *config.SpriteConfig
	cp   encoding.Encoding
	skip func(path string) bool
	log  *zap.Logger
	docs []Document
}

func (c *collector) skipped(path string) bool {
	if c.skip == nil || !c.skip(path) {
		return false
	}
	c.log.Debug("Skipping file, it is build output", zap.String("file", path))
	return true
}

func (c *collector) add(id, origin string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read source (%s): %w", origin, err)
	}
	c.docs = append(c.docs, Document{
		ID:     id,
		Name:   documentName(id, c.cfg.TransliterateNames),
		Origin: origin,
		Data:   data,
	})
	return nil
}

// Collect finds all eligible documents under src, which could be a single
// file, a directory, an archive or a path inside archive. Files for which
// skip returns true (builder outputs) are never collected. Documents are
// returned in deterministic order.
func Collect(ctx context.Context, src string, cfg *config.SpriteConfig, cp encoding.Encoding, skip func(path string) bool, log *zap.Logger) ([]Document, error) {
	c := &collector{cfg: cfg, cp: cp, skip: skip, log: log}
	if err := c.process(ctx, src); err != nil {
		return nil, err
	}
	sortDocuments(c.docs)
	return c.docs, nil
}

// process determines the input type (directory, archive, or single file) and
// collects accordingly.
func (c *collector) process(ctx context.Context, src string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := c.processDir(ctx, head); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := archive.IsArchive(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := c.processArchive(ctx, head, filepath.ToSlash(tail), ""); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if len(tail) != 0 || !c.cfg.HasExtension(filepath.Ext(head)) {
			return fmt.Errorf("input was not recognized as svg source (%s)", head)
		}
		if c.skipped(head) {
			return fmt.Errorf("input is build output (%s)", head)
		}
		file, err := os.Open(head)
		if err != nil {
			return fmt.Errorf("unable to open source: %w", err)
		}
		defer file.Close()
		if err := c.add(filepath.Base(head), head, file); err != nil {
			return err
		}
		break
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding eligible files and archives.
// Symbolic links are not followed.
func (c *collector) processDir(ctx context.Context, dir string) (err error) {
	count := len(c.docs)
	defer func() {
		if err == nil && count == len(c.docs) {
			c.log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			c.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() || c.skipped(path) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		isArchive, err := archive.IsArchive(path)
		if err != nil {
			c.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			if err := c.processArchive(ctx, path, "", strings.TrimSuffix(rel, filepath.Ext(rel))); err != nil {
				c.log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		if !c.cfg.HasExtension(filepath.Ext(path)) {
			c.log.Debug("Skipping file, extension is not eligible", zap.String("file", path))
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			c.log.Error("Unable to read file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		if err := c.add(rel, path, file); err != nil {
			c.log.Error("Unable to read file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
}

// processArchive walks all files inside archive, finds eligible files under
// "pathIn" and collects them. Document identifiers are prefixed with
// "pathOut" when archive itself was found inside directory.
func (c *collector) processArchive(ctx context.Context, arc, pathIn, pathOut string) (err error) {
	count := len(c.docs)
	defer func() {
		if err == nil && count == len(c.docs) {
			c.log.Debug("Nothing to process", zap.String("archive", arc))
		}
	}()

	return archive.Walk(arc, pathIn, c.cp, func(arc, name string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !c.cfg.HasExtension(path.Ext(name)) {
			c.log.Debug("Skipping file, extension is not eligible", zap.String("archive", arc), zap.String("file", name))
			return nil
		}

		r, err := f.Open()
		if err != nil {
			c.log.Error("Unable to read file in archive",
				zap.String("archive", arc), zap.String("file", name), zap.Error(err))
			return nil
		}
		defer r.Close()

		id := path.Join(pathOut, name)
		if err := c.add(id, arc+"::"+name, r); err != nil {
			c.log.Error("Unable to read file in archive",
				zap.String("archive", arc), zap.String("file", name), zap.Error(err))
		}
		return nil
	})
}
