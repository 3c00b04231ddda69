package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/docsift/docsift/internal/extract"
)

// KeyVersion prefixes every fingerprint. Bump it whenever the hash layout
// changes so a persisted cache from an older layout invalidates cleanly
// instead of serving stale results.
const KeyVersion = "v1"

// KeyFrom derives the cache fingerprint for a request: a stable sha256 over
// the key version, format identifier, source identity, and the serialized
// extraction config. Byte sources hash their content; file sources hash
// path, size, and mtime so large files are not read twice.
func KeyFrom(req extract.Request) (string, error) {
	h := sha256.New()
	writeField(h, KeyVersion)
	writeField(h, req.Format)
	if req.Path != "" {
		fi, err := os.Stat(req.Path)
		if err != nil {
			return "", fmt.Errorf("stat source: %w", err)
		}
		writeField(h, fmt.Sprintf("file:%s|%d|%d", req.Path, fi.Size(), fi.ModTime().UnixNano()))
	} else {
		h.Write(req.Data)
		h.Write([]byte{0})
	}
	// json.Marshal of a struct emits fields in declaration order, which
	// keeps the config serialization deterministic across runs.
	cfg, err := json.Marshal(req.Config)
	if err != nil {
		return "", fmt.Errorf("serialize config: %w", err)
	}
	h.Write(cfg)
	return KeyVersion + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

func writeField(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
	_, _ = w.Write([]byte{0})
}
