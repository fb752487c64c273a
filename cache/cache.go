// Package cache keeps compiled symbols between builds in SQLite database, so
// unchanged documents do not have to be compiled again. Cache is optional:
// all methods could be called on nil Cache and every failure is only logged.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"sync"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"svgsprite/common"
	"svgsprite/symbol"
)

// formatVersion must be incremented whenever compiled symbol format changes,
// it invalidates all previously stored entries.
const formatVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS symbols (
	doc_id      TEXT PRIMARY KEY NOT NULL,
	fingerprint TEXT NOT NULL,
	symbol_id   TEXT NOT NULL,
	code        TEXT NOT NULL,
	defs        TEXT NOT NULL,
	has_defs    INTEGER NOT NULL
);
`

// Cache is persistent storage of compilation results keyed by document id.
type Cache struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
}

// Open opens (creating if necessary) cache database.
func Open(path string, log *zap.Logger) (*Cache, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache (%s): %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare cache schema (%s): %w", path, err)
	}
	return &Cache{conn: conn, log: log.Named("cache")}, nil
}

// Close releases database.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// Get returns stored result for docID when it was compiled from input with
// the same fingerprint.
func (c *Cache) Get(docID, fingerprint string) (*symbol.Result, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		res   *symbol.Result
		found bool
	)
	err := sqlitex.Execute(c.conn, `SELECT symbol_id, code, defs, has_defs FROM symbols WHERE doc_id = ? AND fingerprint = ?`,
		&sqlitex.ExecOptions{
			Args: []any{docID, fingerprint},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				res = &symbol.Result{
					Symbol:  symbol.Symbol{ID: stmt.ColumnText(0), Code: stmt.ColumnText(1)},
					Defs:    stmt.ColumnText(2),
					HasDefs: stmt.ColumnInt64(3) != 0,
				}
				return nil
			}})
	if err != nil {
		c.log.Warn("Unable to read from cache", zap.String("doc", docID), zap.Error(err))
		return nil, false
	}
	return res, found
}

// Put stores compilation result for docID.
func (c *Cache) Put(docID, fingerprint string, res *symbol.Result) {
	if c == nil || res == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var hasDefs int64
	if res.HasDefs {
		hasDefs = 1
	}
	err := sqlitex.Execute(c.conn,
		`INSERT OR REPLACE INTO symbols (doc_id, fingerprint, symbol_id, code, defs, has_defs) VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{docID, fingerprint, res.Symbol.ID, res.Symbol.Code, res.Defs, hasDefs}})
	if err != nil {
		c.log.Warn("Unable to write to cache", zap.String("doc", docID), zap.Error(err))
	}
}

// Forget removes entry for docID.
func (c *Cache) Forget(docID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := sqlitex.Execute(c.conn, `DELETE FROM symbols WHERE doc_id = ?`,
		&sqlitex.ExecOptions{Args: []any{docID}}); err != nil {
		c.log.Warn("Unable to remove from cache", zap.String("doc", docID), zap.Error(err))
	}
}

// count returns number of stored entries.
func (c *Cache) count() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	if err := sqlitex.Execute(c.conn, `SELECT count(*) FROM symbols`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		}}); err != nil {
		c.log.Warn("Unable to count cache entries", zap.Error(err))
	}
	return n
}

// Fingerprint identifies compilation input: source markup, symbol name and
// every option which affects produced symbol.
func Fingerprint(markup []byte, name string, clean []string, attrs map[string]string, dims common.Dimensions) string {
	h := sha256.New()
	fmt.Fprintf(h, "v%d\n", formatVersion)
	writeField(h, "name", []byte(name))
	writeField(h, "markup", markup)

	clean = append([]string(nil), clean...)
	sort.Strings(clean)
	for _, c := range clean {
		writeField(h, "clean", []byte(c))
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(h, "attr", []byte(k))
		writeField(h, "value", []byte(attrs[k]))
	}
	writeField(h, "dimensions", []byte(dims.String()))
	return hex.EncodeToString(h.Sum(nil))
}

// writeField makes field boundaries unambiguous.
func writeField(h hash.Hash, label string, data []byte) {
	fmt.Fprintf(h, "%s:%d:", label, len(data))
	h.Write(data)
}
