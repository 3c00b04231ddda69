package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docsift/docsift/internal/extract"
)

func TestKeyFrom_StableForIdenticalRequests(t *testing.T) {
	req := extract.Request{
		Data:   []byte("hello world"),
		Format: "text/plain",
		Config: extract.Config{OCRLanguage: "eng", MaxContentBytes: 100},
	}
	a, err := KeyFrom(req)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	b, err := KeyFrom(req)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if a != b {
		t.Fatalf("identical requests produced different keys: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, KeyVersion+":") {
		t.Fatalf("key missing version prefix: %s", a)
	}
}

func TestKeyFrom_ConfigChangesKey(t *testing.T) {
	base := extract.Request{Data: []byte("same bytes"), Format: "text/plain"}
	a, err := KeyFrom(base)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	changed := base
	changed.Config.OCRLanguage = "deu"
	b, err := KeyFrom(changed)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if a == b {
		t.Fatal("differing config must change the fingerprint")
	}
}

func TestKeyFrom_FormatChangesKey(t *testing.T) {
	a, _ := KeyFrom(extract.Request{Data: []byte("x"), Format: "text/plain"})
	b, _ := KeyFrom(extract.Request{Data: []byte("x"), Format: "text/html"})
	if a == b {
		t.Fatal("differing format must change the fingerprint")
	}
}

func TestKeyFrom_FileIdentity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	req := extract.Request{Path: path, Format: "text/plain"}
	a, err := KeyFrom(req)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	b, err := KeyFrom(req)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if a != b {
		t.Fatal("unchanged file must keep its fingerprint")
	}
	// Rewriting with a different mtime must change the key.
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	c, err := KeyFrom(req)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if a == c {
		t.Fatal("modified file must change the fingerprint")
	}
}

func TestKeyFrom_MissingFile(t *testing.T) {
	_, err := KeyFrom(extract.Request{Path: "/nonexistent/doc.txt", Format: "text/plain"})
	if err == nil {
		t.Fatal("expected error for missing file source")
	}
}
