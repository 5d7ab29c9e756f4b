// Package pipeline assembles the full preparation flow for character-level language model
// training: load the corpus text, build a tokenizer from it, encode the text, split the
// result into train and validation regions and summarize the run in a Manifest.
//
// Most users only need Prepare:
//
//	cfg, err := pipeline.LoadConfig("prepare.yaml")
//	...
//	result, err := pipeline.Prepare(ctx, cfg)
//	...
//	for example := range result.Train.ExamplesAt(0, cfg.BlockSize) {
//		...
//	}
package pipeline

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gabehenriques/lets-build-gpt/dataset"
	"github.com/gabehenriques/lets-build-gpt/loader"
	"github.com/gabehenriques/lets-build-gpt/tokenizer"
)

// Result of a preparation run.
type Result struct {
	// RunID uniquely identifies this run. It is also recorded in the Manifest.
	RunID string

	// Tokenizer built from the corpus text.
	Tokenizer tokenizer.Tokenizer

	// Corpus is the full encoded text.
	Corpus *dataset.Corpus

	// Train and Validation are the two regions of Corpus, according to the configured
	// TrainFraction.
	Train, Validation *dataset.Corpus

	// Manifest describes the run.
	Manifest Manifest
}

// WriteManifest serializes the run's manifest as YAML to the given path.
func (r *Result) WriteManifest(path string) error {
	return WriteManifest(path, &r.Manifest)
}

// Prepare runs the preparation flow described by cfg. A nil cfg runs with DefaultConfig.
//
// The context is used while downloading the corpus, when it comes from a dataset rather
// than a local file.
func Prepare(ctx context.Context, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BlockSize < 1 {
		return nil, errors.Errorf("block size must be at least 1, got %d", cfg.BlockSize)
	}

	runUUID, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.Wrap(err, "failed generating UUID for RunID")
	}
	runID := runUUID.String()

	text, sourceName, err := resolveText(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tok, err := tokenizer.New(&cfg.Tokenizer, text)
	if err != nil {
		return nil, err
	}
	corpus, err := dataset.FromText(text, tok)
	if err != nil {
		return nil, err
	}
	train, validation, err := corpus.Split(cfg.TrainFraction)
	if err != nil {
		return nil, err
	}

	if cfg.Verbosity >= 1 {
		log.Printf("Corpus %q: %s symbols, vocabulary of %d", sourceName,
			humanize.Comma(int64(corpus.Len())), tok.VocabSize())
		log.Printf("Split: train=%s, validation=%s (train fraction %g)",
			humanize.Comma(int64(train.Len())), humanize.Comma(int64(validation.Len())), cfg.TrainFraction)
	}

	entropy := symbolEntropy(corpus, tok.VocabSize())
	uniform := 0.0
	if tok.VocabSize() > 0 {
		uniform = math.Log(float64(tok.VocabSize()))
	}
	if cfg.Verbosity >= 2 {
		log.Printf("Symbol entropy: %.3f nats (uniform would be %.3f nats)", entropy, uniform)
	}

	result := &Result{
		RunID:      runID,
		Tokenizer:  tok,
		Corpus:     corpus,
		Train:      train,
		Validation: validation,
		Manifest: Manifest{
			RunID:              runID,
			SessionID:          loader.SessionId,
			CreatedAt:          time.Now().UTC().Format(time.RFC3339),
			Source:             sourceName,
			TokenizerClass:     cfg.Tokenizer.ClassOrDefault(),
			VocabSize:          tok.VocabSize(),
			CorpusLen:          corpus.Len(),
			TrainLen:           train.Len(),
			ValidationLen:      validation.Len(),
			TrainFraction:      cfg.TrainFraction,
			BlockSize:          cfg.BlockSize,
			SymbolEntropyNats:  entropy,
			UniformEntropyNats: uniform,
		},
	}
	if cfg.Manifest != "" {
		if err := WriteManifest(cfg.Manifest, &result.Manifest); err != nil {
			return nil, err
		}
		if cfg.Verbosity >= 1 {
			log.Printf("Manifest written to %q", cfg.Manifest)
		}
	}
	return result, nil
}

// resolveText returns the corpus text and the name of its source: the configured local
// file if set, a registered dataset otherwise.
func resolveText(ctx context.Context, cfg *Config) (text, sourceName string, err error) {
	if cfg.Corpus.Path != "" {
		text, err = loader.ReadFile(cfg.Corpus.Path)
		if err != nil {
			return "", "", err
		}
		return text, cfg.Corpus.Path, nil
	}

	name := cfg.Corpus.Dataset
	if name == "" {
		name = DefaultDataset
	}
	source, err := loader.Named(name)
	if err != nil {
		return "", "", err
	}
	source.WithVerbosity(cfg.Verbosity)
	if cfg.Corpus.CacheDir != "" {
		source.WithCacheDir(cfg.Corpus.CacheDir)
	}
	text, err = source.Text(ctx)
	if err != nil {
		return "", "", err
	}
	return text, name, nil
}
