// Package fragcache stores generated fragments in a SQLite database keyed by
// a hash of the graph, options and light API they were generated from.
package fragcache

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/soypat/ogsfrag"
	"github.com/soypat/ogsfrag/glbuild"
	"github.com/soypat/ogsfrag/shadergen"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("fragcache")

// ErrNotFound is returned by [Cache.Get] when no fragment is stored under a key.
var ErrNotFound = errors.New("fragment not found")

// Cache is a SQLite backed fragment cache. It is safe for concurrent use.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path. Use ":memory:" for a
// cache that lives as long as the Cache.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a distinct database.
		db.SetMaxOpenConns(1)
	}
	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS fragments (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	log.Debugf("opened fragment cache %s", path)
	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

var keyEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("fragcache: failed to create CBOR enc mode: %v", err))
	}
	keyEncMode = em
}

// Key returns the cache key of the fragment named name generated from the
// graph encoded as graphData (see [mxgraph.MarshalGraph]) with opts, the given
// light API and FIS sample count. A sample count of 0 or less stands for
// [ogsfrag.DefaultFISSamples] and the count is ignored unless opts select
// [shadergen.SpecularEnvironmentFIS].
func Key(name string, graphData []byte, opts shadergen.Options, api ogsfrag.LightAPI, fisSamples int) (string, error) {
	optData, err := keyEncMode.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("encoding options: %w", err)
	}
	switch {
	case opts.HwSpecularEnvironmentMethod != shadergen.SpecularEnvironmentFIS:
		fisSamples = 0
	case fisSamples <= 0:
		fisSamples = ogsfrag.DefaultFISSamples
	}
	// Lengths are hashed since Hash zero pads partial words.
	var header [40]byte
	binary.LittleEndian.PutUint64(header[0:], uint64(api))
	binary.LittleEndian.PutUint64(header[8:], uint64(fisSamples))
	binary.LittleEndian.PutUint64(header[16:], uint64(len(name)))
	binary.LittleEndian.PutUint64(header[24:], uint64(len(graphData)))
	binary.LittleEndian.PutUint64(header[32:], uint64(len(optData)))
	h := glbuild.Hash(header[:], 0)
	h = glbuild.Hash([]byte(name), h)
	h = glbuild.Hash(graphData, h)
	h = glbuild.Hash(optData, h)
	return strconv.FormatUint(h, 16), nil
}

// Get returns the fragment stored under key, or [ErrNotFound].
func (c *Cache) Get(key string) (*ogsfrag.Fragment, error) {
	var data []byte
	err := c.db.QueryRow("SELECT data FROM fragments WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying fragment: %w", err)
	}
	frag, err := ogsfrag.UnmarshalFragment(data)
	if err != nil {
		return nil, err
	}
	log.Debugf("cache hit %s: %s", key, frag.Name)
	return frag, nil
}

// Put stores frag under key, replacing any fragment stored under key.
func (c *Cache) Put(key string, frag *ogsfrag.Fragment) error {
	data, err := ogsfrag.MarshalFragment(frag)
	if err != nil {
		return fmt.Errorf("encoding fragment: %w", err)
	}
	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO fragments (key, name, data) VALUES (?, ?, ?)",
		key, frag.Name, data,
	)
	if err != nil {
		return fmt.Errorf("saving fragment: %w", err)
	}
	log.Debugf("cached %s: %s", key, frag.Name)
	return nil
}

// Delete removes the fragment stored under key. Deleting a missing key is not an error.
func (c *Cache) Delete(key string) error {
	_, err := c.db.Exec("DELETE FROM fragments WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting fragment: %w", err)
	}
	return nil
}

// Len returns the number of cached fragments.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM fragments").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting fragments: %w", err)
	}
	return n, nil
}
