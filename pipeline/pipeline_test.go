package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gabehenriques/lets-build-gpt/tokenizer/api"
)

// writeCorpus creates a corpus file with the given text and returns a config prepared to
// read it.
func writeCorpus(t *testing.T, text string) *Config {
	t.Helper()
	corpusPath := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(corpusPath, []byte(text), 0644))
	cfg := DefaultConfig()
	cfg.Corpus.Path = corpusPath
	return cfg
}

func TestPrepareFromFile(t *testing.T) {
	cfg := writeCorpus(t, "hello, world")
	cfg.Manifest = filepath.Join(t.TempDir(), "manifest.yaml")
	cfg.BlockSize = 4

	result, err := Prepare(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 9, result.Tokenizer.VocabSize())
	assert.Equal(t, 12, result.Corpus.Len())

	ids, err := result.Tokenizer.Encode("hello, world")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 5, 5, 6, 1, 0, 8, 6, 7, 5, 2}, ids)
	assert.Equal(t, ids, result.Corpus.Ints())

	// 90% of 12 ids is 10.8, so 10 go to train and the remaining 2 to validation.
	assert.Equal(t, 10, result.Train.Len())
	assert.Equal(t, 2, result.Validation.Len())

	// The manifest was written and is consistent with the result.
	data, err := os.ReadFile(cfg.Manifest)
	require.NoError(t, err)
	var manifest Manifest
	require.NoError(t, yaml.Unmarshal(data, &manifest))
	assert.Equal(t, result.Manifest, manifest)
	assert.Equal(t, result.RunID, manifest.RunID)
	assert.Equal(t, cfg.Corpus.Path, manifest.Source)
	assert.Equal(t, "character", manifest.TokenizerClass)
	assert.Equal(t, 9, manifest.VocabSize)
	assert.Equal(t, 12, manifest.CorpusLen)
	assert.Equal(t, 10, manifest.TrainLen)
	assert.Equal(t, 2, manifest.ValidationLen)

	// "hello, world" repeats some symbols, so its entropy is strictly below uniform.
	assert.Greater(t, manifest.SymbolEntropyNats, 0.0)
	assert.Less(t, manifest.SymbolEntropyNats, manifest.UniformEntropyNats)
}

func TestPrepareRunIDs(t *testing.T) {
	cfg := writeCorpus(t, "to be or not to be")

	first, err := Prepare(context.Background(), cfg)
	require.NoError(t, err)
	second, err := Prepare(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Manifest.SessionID, second.Manifest.SessionID)
}

func TestPrepareRejectsBadBlockSize(t *testing.T) {
	cfg := writeCorpus(t, "hello, world")
	cfg.BlockSize = -1
	_, err := Prepare(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block size")
}

func TestPrepareEmptyCorpus(t *testing.T) {
	cfg := writeCorpus(t, "")
	_, err := Prepare(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrEmptyCorpus)
}

func TestPrepareUnknownDataset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Corpus.Dataset = "nobody/nothing"
	_, err := Prepare(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dataset")
}

func TestPrepareNilConfigUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	// The default config points at a downloadable dataset, so only check it gets that far:
	// a cancelled context must abort before any download is attempted.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Prepare(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSymbolEntropy(t *testing.T) {
	cfg := writeCorpus(t, "aabb")
	result, err := Prepare(context.Background(), cfg)
	require.NoError(t, err)

	// Two symbols, each with probability 1/2: entropy is exactly ln(2) and matches the
	// uniform bound.
	assert.InDelta(t, 0.6931, result.Manifest.SymbolEntropyNats, 1e-4)
	assert.InDelta(t, result.Manifest.UniformEntropyNats, result.Manifest.SymbolEntropyNats, 1e-12)
}
