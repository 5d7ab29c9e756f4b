// Package loader supplies raw corpus text to the data pipeline.
//
// A corpus comes either from a local file (ReadFile) or from a named dataset (Source),
// downloaded once over HTTP and cached on disk so later runs work offline. The cache
// layout lives under "~/.cache/lets-build-gpt" (or ${XDG_CACHE_HOME}) and is safe to share
// between concurrent processes: downloads are coordinated through lock files and land in
// their final location atomically.
package loader

import (
	"fmt"
	"log"
	neturl "net/url"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/gomlx/gomlx/ml/data/downloader"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	letsbuildgpt "github.com/gabehenriques/lets-build-gpt"
	"github.com/gabehenriques/lets-build-gpt/internal/files"
)

// SessionId is unique and always created anew at the start of the program, and used during
// the life of the program. It lets the preparation manifests of one process run be
// correlated with each other.
var SessionId string

// panicf generates an error message and panics with it, in one function.
func panicf(format string, args ...any) {
	err := errors.Errorf(format, args...)
	panic(err)
}

func init() {
	sessionUUID, err := uuid.NewRandom()
	if err != nil {
		panicf("failed generating UUID for SessionId: %v", err)
	}
	SessionId = strings.Replace(sessionUUID.String(), "-", "", -1)
}

var (
	// DefaultDirCreationPerm is used when creating new cache subdirectories.
	DefaultDirCreationPerm = os.FileMode(0755)

	// DefaultFileCreationPerm is used when creating files inside the cache subdirectories.
	DefaultFileCreationPerm = os.FileMode(0644)
)

func getEnvOr(key, defaultValue string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v
}

// DefaultCacheDir for downloaded corpora.
//
// Its prefix is either `${XDG_CACHE_HOME}` if set, or `~/.cache` otherwise. Followed by
// `/lets-build-gpt/`. So typically: `~/.cache/lets-build-gpt/`.
func DefaultCacheDir() string {
	cacheDir := getEnvOr("XDG_CACHE_HOME", path.Join(os.Getenv("HOME"), ".cache"))
	return path.Join(cacheDir, "lets-build-gpt")
}

// UserAgent identifies this library and session, for callers fetching corpora with their
// own HTTP clients and for download debugging logs.
func UserAgent() string {
	return fmt.Sprintf("lets-build-gpt/%v; golang/%s; session_id/%s",
		letsbuildgpt.Version, runtime.Version(), SessionId)
}

// NameSeparator is used to separate dataset name parts when mapping to cache directory
// names. Likely only for internal use.
const NameSeparator = "--"

// Source is a named single-file text corpus that can be downloaded and cached.
// Create it with New, or with Named for the datasets this library knows about.
type Source struct {
	// Name identifies the dataset, usually as author/dataset. E.g.: karpathy/tinyshakespeare
	Name string

	// url of the raw text file for the dataset.
	url string

	// Verbosity: 0 for quiet operation; 1 for information about progress; 2 and higher for
	// debugging.
	Verbosity int

	// MaxParallelDownload is passed through to the download manager. Set to 1 to make
	// downloads sequential; <= 0 downloads everything in parallel.
	MaxParallelDownload int

	// cacheDir is where the downloaded corpus is stored and reused.
	cacheDir string

	// authToken is sent on downloads when the corpus is hosted behind authentication.
	authToken string

	downloadManager *downloader.Manager
}

// New creates a corpus Source given its dataset name and the URL of its raw text file.
//
// It uses the default cache directory in ${XDG_CACHE_HOME} (if set) or `~/.cache`; use
// Source.WithCacheDir to change it.
func New(name, url string) *Source {
	return &Source{
		Name:                name,
		url:                 url,
		cacheDir:            DefaultCacheDir(),
		Verbosity:           1,
		MaxParallelDownload: 20, // At most 20 parallel downloads.
	}
}

// WithAuth sets the authentication token to use during downloads.
//
// Setting it to empty ("") is the same as resetting and not using authentication.
func (s *Source) WithAuth(authToken string) *Source {
	s.authToken = authToken
	return s
}

// WithCacheDir sets the cacheDir to the given directory.
//
// The default is given by DefaultCacheDir: `${XDG_CACHE_HOME}/lets-build-gpt` if set, or
// `~/.cache/lets-build-gpt` otherwise.
func (s *Source) WithCacheDir(cacheDir string) *Source {
	newCacheDir, err := files.ReplaceTildeInDir(cacheDir)
	if err == nil {
		s.cacheDir = path.Clean(newCacheDir)
	} else {
		log.Printf("Failed to resolve directory for %q: %+v", cacheDir, err)
	}
	return s
}

// WithVerbosity sets how chatty downloads are: 0 quiet, 1 progress, >= 2 debugging.
func (s *Source) WithVerbosity(verbosity int) *Source {
	s.Verbosity = verbosity
	return s
}

// WithDownloadManager configures the given downloader.Manager to be used to download the
// corpus file. This allows sharing a manager (and its concurrency budget) among several
// sources.
func (s *Source) WithDownloadManager(manager *downloader.Manager) *Source {
	s.downloadManager = manager
	return s
}

// flatDirName returns a serialized version of the dataset name, safe for disk storage as a
// single non-nested folder.
func (s *Source) flatDirName() string {
	parts := append([]string{"datasets"}, strings.Split(s.Name, "/")...)
	return strings.Join(parts, NameSeparator)
}

// sourceCacheDir joins cacheDir and flatDirName to return the cache subdirectory for the
// dataset. It also creates the directory, and returns an error if creation failed.
func (s *Source) sourceCacheDir() (string, error) {
	dir := path.Join(s.cacheDir, s.flatDirName())
	err := os.MkdirAll(dir, DefaultDirCreationPerm)
	if err != nil {
		return "", errors.Wrapf(err, "while creating cache directory %q", dir)
	}
	return dir, nil
}

// fileName under which the corpus is cached, taken from the last element of the URL path.
func (s *Source) fileName() string {
	u, err := neturl.Parse(s.url)
	if err != nil {
		return "corpus.txt"
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return "corpus.txt"
	}
	return base
}

// corpusPath returns the path the cached corpus file lives at, creating the cache
// directories if needed.
func (s *Source) corpusPath() (string, error) {
	dir, err := s.sourceCacheDir()
	if err != nil {
		return "", err
	}
	return path.Join(dir, s.fileName()), nil
}

// String implements fmt.Stringer.
func (s *Source) String() string {
	return s.Name
}

// TinyShakespeare returns the Source for the ~1MB file of concatenated Shakespeare works
// commonly used to train character-level language models.
func TinyShakespeare() *Source {
	return New("karpathy/tinyshakespeare",
		"https://raw.githubusercontent.com/karpathy/char-rnn/master/data/tinyshakespeare/input.txt")
}

// RegisterDataset makes a dataset available to Named under the given name. The constructor
// is called once per Named call, so each caller gets an independent Source.
func RegisterDataset(name string, constructor func() *Source) {
	namedSources[name] = constructor
}

// Named returns a new Source for a registered dataset name.
// It returns an error when the name is unknown.
func Named(name string) (*Source, error) {
	constructor, found := namedSources[name]
	if !found {
		return nil, errors.Errorf("unknown dataset %q", name)
	}
	return constructor(), nil
}

var namedSources = map[string]func() *Source{}

func init() {
	RegisterDataset("karpathy/tinyshakespeare", TinyShakespeare)
}

// ReadFile loads a local corpus file and returns its text. A leading "~" in the path is
// expanded to the user's home directory.
func ReadFile(filePath string) (string, error) {
	expanded, err := files.ReplaceTildeInDir(filePath)
	if err != nil {
		return "", err
	}
	text, err := files.ReadText(expanded)
	if err != nil {
		return "", errors.WithMessage(err, "can't load corpus")
	}
	return text, nil
}

var _ fmt.Stringer = &Source{}
