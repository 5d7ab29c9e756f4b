package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionId(t *testing.T) {
	assert.NotEmpty(t, SessionId)
	assert.NotContains(t, SessionId, "-")
}

func TestUserAgent(t *testing.T) {
	agent := UserAgent()
	assert.Contains(t, agent, "lets-build-gpt/")
	assert.Contains(t, agent, SessionId)
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	assert.Equal(t, "/tmp/xdg-cache/lets-build-gpt", DefaultCacheDir())

	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/home/somebody")
	assert.Equal(t, "/home/somebody/.cache/lets-build-gpt", DefaultCacheDir())
}

func TestFlatDirName(t *testing.T) {
	src := New("karpathy/tinyshakespeare", "https://example.com/input.txt")
	assert.Equal(t, "datasets--karpathy--tinyshakespeare", src.flatDirName())

	src = New("plain", "https://example.com/input.txt")
	assert.Equal(t, "datasets--plain", src.flatDirName())
}

func TestFileName(t *testing.T) {
	for _, test := range []struct {
		url, want string
	}{
		{"https://raw.githubusercontent.com/karpathy/char-rnn/master/data/tinyshakespeare/input.txt", "input.txt"},
		{"https://example.com/corpus.txt?raw=true", "corpus.txt"},
		{"https://example.com/", "corpus.txt"},
		{"https://example.com", "corpus.txt"},
	} {
		src := New("test/test", test.url)
		assert.Equalf(t, test.want, src.fileName(), "url=%q", test.url)
	}
}

func TestSourceConfiguration(t *testing.T) {
	src := New("a/b", "https://example.com/b.txt")
	assert.Same(t, src, src.WithAuth("token").WithVerbosity(2).WithCacheDir("/tmp/elsewhere"))
	assert.Equal(t, "token", src.authToken)
	assert.Equal(t, 2, src.Verbosity)
	assert.Equal(t, "/tmp/elsewhere", src.cacheDir)
	assert.Equal(t, "a/b", src.String())
}

func TestNamed(t *testing.T) {
	src, err := Named("karpathy/tinyshakespeare")
	require.NoError(t, err)
	assert.Equal(t, "karpathy/tinyshakespeare", src.Name)

	_, err = Named("nobody/nothing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dataset")

	RegisterDataset("test/custom", func() *Source {
		return New("test/custom", "https://example.com/custom.txt")
	})
	src, err = Named("test/custom")
	require.NoError(t, err)
	assert.Equal(t, "custom.txt", src.fileName())
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(corpusPath, []byte("hello, world"), 0644))

	text, err := ReadFile(corpusPath)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", text)

	_, err = ReadFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

func TestDownloadUsesCache(t *testing.T) {
	dir := t.TempDir()
	src := TinyShakespeare().WithCacheDir(dir).WithVerbosity(0)

	// Pre-populate the cache: Download must return the cached copy without touching the
	// network.
	cachedPath := filepath.Join(dir, "datasets--karpathy--tinyshakespeare", "input.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(cachedPath), 0755))
	require.NoError(t, os.WriteFile(cachedPath, []byte("First Citizen:"), 0644))

	gotPath, err := src.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedPath, gotPath)

	text, err := src.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "First Citizen:", text)
}

// seedCache writes text as the cached corpus file of src and returns its path.
func seedCache(t *testing.T, cacheDir string, src *Source, text string) string {
	t.Helper()
	cachedPath := filepath.Join(cacheDir, src.flatDirName(), src.fileName())
	require.NoError(t, os.MkdirAll(filepath.Dir(cachedPath), 0755))
	require.NoError(t, os.WriteFile(cachedPath, []byte(text), 0644))
	return cachedPath
}

func TestPrefetch(t *testing.T) {
	dir := t.TempDir()
	var sources []*Source
	for _, name := range []string{"alpha", "beta", "gamma"} {
		src := New("test/"+name, "https://example.com/"+name+".txt").WithCacheDir(dir).WithVerbosity(0)
		seedCache(t, dir, src, name+" text")
		sources = append(sources, src)
	}

	// Every source is cached already, so the warm-up completes without touching the network.
	require.NoError(t, Prefetch(context.Background(), 2, sources...))

	for i, name := range []string{"alpha", "beta", "gamma"} {
		text, err := sources[i].Text(context.Background())
		require.NoError(t, err)
		assert.Equal(t, name+" text", text)
	}
}

func TestPrefetchSurfacesError(t *testing.T) {
	dir := t.TempDir()
	cached := New("test/cached", "https://example.com/cached.txt").WithCacheDir(dir).WithVerbosity(0)
	seedCache(t, dir, cached, "cached text")
	missing := New("test/missing", "https://example.com/missing.txt").WithCacheDir(dir).WithVerbosity(0)

	// The cancelled context aborts the uncached download; the cached source is unaffected.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Prefetch(ctx, 1, cached, missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "test/missing")
}

func TestRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Second Citizen:"))
	}))
	defer server.Close()

	dir := t.TempDir()
	src := New("test/refresh", server.URL+"/corpus.txt").WithCacheDir(dir).WithVerbosity(0)
	cachedPath := seedCache(t, dir, src, "First Citizen:")

	// Download keeps returning the cached copy, stale or not.
	text, err := src.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "First Citizen:", text)

	// Refresh replaces it with the upstream content.
	gotPath, err := src.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedPath, gotPath)
	text, err = src.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Second Citizen:", text)
}

func TestExecOnFileLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")
	ran := false
	err := execOnFileLock(context.Background(), lockPath, func() { ran = true })
	require.NoError(t, err)
	assert.True(t, ran)

	// The lock is released afterwards, so a second call must not block.
	err = execOnFileLock(context.Background(), lockPath, func() {})
	require.NoError(t, err)
}
