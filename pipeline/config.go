package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gabehenriques/lets-build-gpt/loader"
	"github.com/gabehenriques/lets-build-gpt/tokenizer/api"
)

// CorpusConfig says where the training text comes from: a local file (Path) or a registered
// downloadable dataset (Dataset). Path wins when both are set.
type CorpusConfig struct {
	Path     string `yaml:"path,omitempty"`
	Dataset  string `yaml:"dataset,omitempty"`
	CacheDir string `yaml:"cache_dir,omitempty"`
}

// Config is the root configuration of a preparation run.
type Config struct {
	Corpus    CorpusConfig `yaml:"corpus"`
	Tokenizer api.Config   `yaml:"tokenizer"`

	// TrainFraction of the encoded corpus that goes to the training region, the rest goes
	// to validation. Must be strictly between 0 and 1.
	TrainFraction float64 `yaml:"train_fraction"`

	// BlockSize is the maximum context length of the generated examples.
	BlockSize int `yaml:"block_size"`

	// Manifest is the path where the preparation manifest is written, if not empty.
	Manifest string `yaml:"manifest,omitempty"`

	// Verbosity: 0 for quiet operation; 1 for information about progress; 2 and higher for
	// debugging.
	Verbosity int `yaml:"verbosity,omitempty"`
}

const (
	// DefaultTrainFraction of the corpus assigned to the training region.
	DefaultTrainFraction = 0.9

	// DefaultBlockSize for generated examples.
	DefaultBlockSize = 8

	// DefaultDataset used when neither a corpus path nor a dataset name is configured.
	DefaultDataset = "karpathy/tinyshakespeare"
)

// LoadConfig reads a preparation config from the given path. If the file does not exist, it
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "while reading config %q", path)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "while parsing config %q", path)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// SaveConfig writes the config as YAML to the given path, creating directories as needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), loader.DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "while creating directory for config %q", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "while serializing config")
	}
	if err := os.WriteFile(path, data, loader.DefaultFileCreationPerm); err != nil {
		return errors.Wrapf(err, "while writing config %q", path)
	}
	return nil
}

// DefaultConfig returns the configuration used when no config file is present: the
// character-level tokenizer over karpathy/tinyshakespeare, a 90/10 split and block size 8.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *Config) {
	if cfg.Corpus.Path == "" && cfg.Corpus.Dataset == "" {
		cfg.Corpus.Dataset = DefaultDataset
	}
	if cfg.Tokenizer.Class == "" {
		cfg.Tokenizer.Class = api.DefaultClass
	}
	if cfg.TrainFraction == 0 {
		cfg.TrainFraction = DefaultTrainFraction
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = DefaultBlockSize
	}
}
