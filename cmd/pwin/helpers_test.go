package main

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ZebulonRouseFrantzich/pwin/internal/platform"
	"github.com/ZebulonRouseFrantzich/pwin/internal/testutil"
)

var variants = []string{"nts-vs16-x64", "ts-vs16-x64", "nts-vs16-x86", "ts-vs16-x86"}

// phpServer serves a releases.json manifest and the archives it lists.
type phpServer struct {
	t *testing.T

	mu       sync.Mutex
	releases map[string]string // release line -> full version
	archives map[string][]byte // archive path -> content
	requests []string
}

func newPHPServer(t *testing.T) (*phpServer, *httptest.Server) {
	s := &phpServer{
		t:        t,
		releases: make(map[string]string),
		archives: make(map[string][]byte),
	}
	srv := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(srv.Close)
	return s, srv
}

// publish makes v the current release of its line for every variant.
func (s *phpServer) publish(line, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releases[line] = v
	for _, variant := range variants {
		s.archives[archiveName(v, variant)] = phpArchive(s.t, v)
	}
}

func (s *phpServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimPrefix(r.URL.Path, "/")
	s.requests = append(s.requests, name)

	if name == "releases.json" {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.manifest())
		return
	}
	if data, ok := s.archives[name]; ok {
		_, _ = w.Write(data)
		return
	}
	http.NotFound(w, r)
}

func (s *phpServer) manifest() map[string]any {
	m := make(map[string]any)
	for line, v := range s.releases {
		rel := map[string]any{
			"version": v,
			"source":  map[string]string{"path": "php-" + v + "-src.zip", "size": "25.45MB"},
		}
		for _, variant := range variants {
			path := archiveName(v, variant)
			sum := sha256.Sum256(s.archives[path])
			rel[variant] = map[string]any{
				"mtime": "2023-03-14T23:52:36+01:00",
				"zip": map[string]string{
					"path":   path,
					"size":   "29.37MB",
					"sha256": hex.EncodeToString(sum[:]),
				},
			}
		}
		m[line] = rel
	}
	return m
}

// archiveRequests returns the requested archive paths.
func (s *phpServer) archiveRequests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, r := range s.requests {
		if strings.HasSuffix(r, ".zip") {
			out = append(out, r)
		}
	}
	return out
}

func (s *phpServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func archiveName(v, variant string) string {
	tsPart := "Win32"
	if strings.HasPrefix(variant, "nts-") {
		tsPart = "nts-Win32"
	}
	return "php-" + v + "-" + tsPart + "-vs16-" + variant[len(variant)-3:] + ".zip"
}

func phpArchive(t *testing.T, v string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"php.exe":          "php " + v,
		"ext/php_curl.dll": "curl " + v,
	} {
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

// cli runs pwin commands in an isolated environment against a phpServer.
type cli struct {
	t        *testing.T
	env      testutil.Env
	server   *phpServer
	baseURL  string
	arch     platform.Arch
	detector platform.Detector
}

func newCLI(t *testing.T) *cli {
	t.Helper()

	env := testutil.SetupTestEnv(t)
	server, srv := newPHPServer(t)
	server.publish("8.1", "8.1.17")
	server.publish("8.2", "8.2.4")

	return &cli{
		t:       t,
		env:     env,
		server:  server,
		baseURL: srv.URL,
		arch:    platform.X64,
		detector: platform.StaticDetector{Info: &platform.Info{
			OS:      "windows",
			Arch:    platform.X64,
			ArchRaw: "amd64",
		}},
	}
}

type cliResult struct {
	stdout string
	stderr string
	code   int
}

func (c *cli) run(args ...string) cliResult {
	c.t.Helper()

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.baseURL = c.baseURL
	a.arch = c.arch
	a.detector = c.detector

	code := execute(context.Background(), a, args)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// mustRun fails the test unless the command exits 0.
func (c *cli) mustRun(args ...string) cliResult {
	c.t.Helper()

	res := c.run(args...)
	if res.code != 0 {
		c.t.Fatalf("pwin %s: exit %d\nstdout:\n%s\nstderr:\n%s", strings.Join(args, " "), res.code, res.stdout, res.stderr)
	}
	return res
}
