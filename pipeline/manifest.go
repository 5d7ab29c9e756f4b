package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/gabehenriques/lets-build-gpt/dataset"
	"github.com/gabehenriques/lets-build-gpt/loader"
)

// Manifest summarizes a preparation run, in a form easy to store next to the prepared data
// and to diff between runs.
type Manifest struct {
	// RunID uniquely identifies the preparation run; SessionID identifies the process that
	// produced it, so runs of one process can be correlated.
	RunID     string `yaml:"run_id"`
	SessionID string `yaml:"session_id"`

	// CreatedAt is the UTC time of the run, in RFC 3339 format.
	CreatedAt string `yaml:"created_at"`

	// Source of the corpus text: a dataset name or a local file path.
	Source string `yaml:"source"`

	TokenizerClass string `yaml:"tokenizer_class"`
	VocabSize      int    `yaml:"vocab_size"`

	CorpusLen     int     `yaml:"corpus_len"`
	TrainLen      int     `yaml:"train_len"`
	ValidationLen int     `yaml:"validation_len"`
	TrainFraction float64 `yaml:"train_fraction"`
	BlockSize     int     `yaml:"block_size"`

	// SymbolEntropyNats is the Shannon entropy of the corpus id distribution, in nats.
	// UniformEntropyNats is the maximum possible for the vocabulary size, for comparison.
	SymbolEntropyNats  float64 `yaml:"symbol_entropy_nats"`
	UniformEntropyNats float64 `yaml:"uniform_entropy_nats"`
}

// WriteManifest serializes the manifest as YAML to the given path, creating directories as
// needed.
func WriteManifest(path string, manifest *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), loader.DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "while creating directory for manifest %q", path)
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return errors.Wrap(err, "while serializing manifest")
	}
	if err := os.WriteFile(path, data, loader.DefaultFileCreationPerm); err != nil {
		return errors.Wrapf(err, "while writing manifest %q", path)
	}
	return nil
}

// symbolEntropy returns the Shannon entropy, in nats, of the id distribution of the
// corpus. An empty corpus has entropy 0.
func symbolEntropy(corpus *dataset.Corpus, vocabSize int) float64 {
	if corpus.Len() == 0 || vocabSize == 0 {
		return 0
	}
	distribution := make([]float64, vocabSize)
	for i := 0; i < corpus.Len(); i++ {
		distribution[corpus.At(i)]++
	}
	total := float64(corpus.Len())
	for i := range distribution {
		distribution[i] /= total
	}
	return stat.Entropy(distribution)
}
