package cache

import (
	"context"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// entryExt marks cache entry files so a sweep never touches foreign files
// that end up in the cache directory.
const entryExt = ".entry"

// headerLen is the size of the expiry header on each entry file.
const headerLen = 8

// FileCache stores entries on disk for CLI usage. Keys carry a class prefix
// ("tree:", "layout:", "artifact:"), and each class gets its own
// subdirectory so trees, layouts, and rendered artifacts can be inspected
// or wiped independently.
//
// An entry file is the payload prefixed with an 8-byte big-endian unix-nano
// expiry (zero means no expiry). The payload is stored verbatim: rendered
// SVG and PNG artifacts stay byte-identical on disk.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Get retrieves a value. Expired or corrupt entries are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(raw) < headerLen {
		_ = os.Remove(path)
		return nil, false, nil
	}

	if expired(raw, time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return raw[headerLen:], true, nil
}

// Set stores a value with the given TTL. The entry is written to a
// temporary file and renamed into place, so readers never observe a
// half-written payload.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	raw := make([]byte, headerLen+len(data))
	if ttl != 0 {
		binary.BigEndian.PutUint64(raw, uint64(time.Now().Add(ttl).UnixNano()))
	}
	copy(raw[headerLen:], data)

	tmp, err := os.CreateTemp(filepath.Dir(path), "*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a value. Deleting an absent key is a no-op.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close sweeps expired entries so abandoned caches do not grow across CLI
// invocations. Sweep failures are ignored: a leftover entry only costs
// disk space.
func (c *FileCache) Close() error {
	now := time.Now()
	_ = filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, entryExt) {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if len(raw) < headerLen || expired(raw, now) {
			_ = os.Remove(path)
		}
		return nil
	})
	return nil
}

// expired reports whether an entry's header holds a passed deadline.
func expired(raw []byte, now time.Time) bool {
	deadline := int64(binary.BigEndian.Uint64(raw))
	return deadline != 0 && now.UnixNano() > deadline
}

// path maps a key to <dir>/<class>/<digest>.entry. The class is the key's
// prefix up to the first colon; the file name hashes the full key so scoped
// keys with unusual characters stay filesystem-safe.
func (c *FileCache) path(key string) string {
	class := "misc"
	if i := strings.IndexByte(key, ':'); i > 0 && !strings.ContainsAny(key[:i], `/\`) {
		class = key[:i]
	}
	return filepath.Join(c.dir, class, Hash([]byte(key))+entryExt)
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
