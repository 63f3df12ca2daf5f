package service

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/pwin/internal/binary"
	"github.com/ZebulonRouseFrantzich/pwin/internal/catalog"
	"github.com/ZebulonRouseFrantzich/pwin/internal/config"
	"github.com/ZebulonRouseFrantzich/pwin/internal/lock"
	"github.com/ZebulonRouseFrantzich/pwin/internal/platform"
	"github.com/ZebulonRouseFrantzich/pwin/internal/version"
)

const testBaseURL = "https://downloads.example.test/releases"

type fakeCatalog struct {
	cat     catalog.Catalog
	err     error
	fetches int
}

func (f *fakeCatalog) Fetch(ctx context.Context) (catalog.Catalog, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.cat, nil
}

func (f *fakeCatalog) ArchiveURL(path string) string {
	return testBaseURL + "/" + path
}

// fakeFetcher serves archives by URL.
type fakeFetcher struct {
	archives map[string][]byte
	err      error
	urls     []string
	dests    []string
}

func (f *fakeFetcher) DownloadToFile(ctx context.Context, url, destPath string) error {
	f.urls = append(f.urls, url)
	f.dests = append(f.dests, destPath)
	if f.err != nil {
		return f.err
	}
	data, ok := f.archives[url]
	if !ok {
		return &binary.HTTPStatusError{URL: url, StatusCode: 404}
	}
	return os.WriteFile(destPath, data, 0644)
}

type staticConfig struct {
	cfg *config.Config
	err error
}

func (s staticConfig) Load(ctx context.Context) (*config.Config, error) {
	return s.cfg, s.err
}

type countingLocker struct {
	acquired int
	released int
	err      error
}

func (c *countingLocker) Acquire(ctx context.Context) (func() error, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.acquired++
	return func() error {
		c.released++
		return nil
	}, nil
}

// recordingLogger keeps "level: message" lines.
type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) record(level, msg string) {
	r.lines = append(r.lines, level+": "+msg)
}

func (r *recordingLogger) Debug(msg string, keysAndValues ...interface{}) { r.record("debug", msg) }
func (r *recordingLogger) Info(msg string, keysAndValues ...interface{})  { r.record("info", msg) }
func (r *recordingLogger) Warn(msg string, keysAndValues ...interface{})  { r.record("warn", msg) }
func (r *recordingLogger) Error(msg string, keysAndValues ...interface{}) { r.record("error", msg) }

// warnings returns the warn-level messages.
func (r *recordingLogger) warnings() []string {
	var out []string
	for _, l := range r.lines {
		if msg, ok := strings.CutPrefix(l, "warn: "); ok {
			out = append(out, msg)
		}
	}
	return out
}

// buildZip returns a zip archive holding the given name -> content pairs.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func phpArchive(t *testing.T, v string) []byte {
	return buildZip(t, map[string]string{
		"php.exe":          "php " + v,
		"ext/php_curl.dll": "curl " + v,
		"license.txt":      "PHP License",
	})
}

// release returns a catalog release with the four usual variants, all
// pointing at archive. The SHA-256 of archive is published for each.
func release(v string, archive []byte) catalog.Release {
	r := catalog.Release{Version: version.MustParse(v), Builds: make(map[string]catalog.Build)}
	for _, variant := range []string{"nts-vs16-x64", "ts-vs16-x64", "nts-vs16-x86", "ts-vs16-x86"} {
		tsPart := "Win32"
		if strings.HasPrefix(variant, "nts-") {
			tsPart = "nts-Win32"
		}
		name := "php-" + v + "-" + tsPart + "-vs16-" + variant[len(variant)-3:] + ".zip"
		r.Builds[variant] = catalog.Build{
			MTime: "2023-03-14T23:52:36+01:00",
			Zip:   catalog.Download{Path: name, Size: "29.37MB", SHA256: sha256Hex(archive)},
		}
	}
	return r
}

type harness struct {
	t         *testing.T
	base      string
	storage   *lock.MemoryStorage
	catalog   *fakeCatalog
	fetcher   *fakeFetcher
	locker    *countingLocker
	cfg       *config.Config
	manager   *Manager
	extractor *binary.Extractor
	logs      *recordingLogger
}

// newHarness serves 8.1 -> 8.1.17 and 8.2 -> 8.2.4.
func newHarness(t *testing.T, arch platform.Arch) *harness {
	t.Helper()

	h := &harness{
		t:         t,
		base:      filepath.Join(t.TempDir(), "php"),
		storage:   lock.NewMemoryStorage(nil),
		fetcher:   &fakeFetcher{archives: make(map[string][]byte)},
		locker:    &countingLocker{},
		extractor: binary.NewExtractor(),
		logs:      &recordingLogger{},
	}
	h.cfg = &config.Config{Path: h.base, ThreadSafety: config.NonSafe}

	cat := catalog.Catalog{}
	for _, rv := range []struct{ key, full string }{{"8.1", "8.1.17"}, {"8.2", "8.2.4"}} {
		archive := phpArchive(t, rv.full)
		r := release(rv.full, archive)
		for _, b := range r.Builds {
			h.fetcher.archives[testBaseURL+"/"+b.Zip.Path] = archive
		}
		cat[rv.key] = r
	}
	h.catalog = &fakeCatalog{cat: cat}

	m, err := NewManager(Deps{
		Storage:   h.storage,
		Config:    staticConfig{cfg: h.cfg},
		Catalog:   h.catalog,
		Fetcher:   h.fetcher,
		Extractor: h.extractor,
		Arch:      arch,
		Locker:    h.locker,
		Logger:    h.logs,
		Clock:     &TestClock{Step: 1},
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	h.manager = m
	return h
}

// seed stores entries in the lock file and creates their directories.
func (h *harness) seed(entries ...lock.Entry) {
	h.t.Helper()
	if err := lock.Save(h.storage, lock.New(entries...)); err != nil {
		h.t.Fatal(err)
	}
	for _, e := range entries {
		dir := filepath.Join(h.base, e.Version.String())
		if err := os.MkdirAll(dir, 0755); err != nil {
			h.t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "php.exe"), []byte("old"), 0644); err != nil {
			h.t.Fatal(err)
		}
	}
	h.storage.Saves = 0
}

func (h *harness) registry() *lock.Registry {
	h.t.Helper()
	reg, err := lock.Load(h.storage)
	if err != nil {
		h.t.Fatalf("load registry: %v", err)
	}
	return reg
}

// baseEntries lists names in the install base directory.
func (h *harness) baseEntries() []string {
	h.t.Helper()
	entries, err := os.ReadDir(h.base)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		h.t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
