// The prepare command runs the text preparation flow for character-level language model
// training: it loads a corpus, builds a tokenizer from it, encodes and splits the text,
// and prints a short report with the first context-target pairs, the way they would be fed
// to a model.
//
// Usage:
//
//	prepare [-config prepare.yaml] [-corpus input.txt] [-dataset name] [-manifest out.yaml] [-verbose]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"

	"github.com/gabehenriques/lets-build-gpt/pipeline"
)

func main() {
	var (
		configPath   string
		corpusPath   string
		datasetName  string
		manifestPath string
		verbose      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to the YAML config file (optional, defaults apply without one)")
	flag.StringVar(&corpusPath, "corpus", "", "Path to a local corpus file, overrides the config")
	flag.StringVar(&datasetName, "dataset", "", "Name of a registered dataset, overrides the config")
	flag.StringVar(&manifestPath, "manifest", "", "Where to write the preparation manifest, overrides the config")
	flag.BoolVar(&verbose, "verbose", false, "Log progress and debugging information")
	flag.Parse()

	cfg, err := pipeline.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if corpusPath != "" {
		cfg.Corpus.Path = corpusPath
		cfg.Corpus.Dataset = ""
	}
	if datasetName != "" {
		cfg.Corpus.Dataset = datasetName
		cfg.Corpus.Path = ""
	}
	if manifestPath != "" {
		cfg.Manifest = manifestPath
	}
	if verbose {
		cfg.Verbosity = 2
	}

	result, err := pipeline.Prepare(context.Background(), cfg)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	report(result, cfg.BlockSize)
}

func report(result *pipeline.Result, blockSize int) {
	manifest := &result.Manifest
	fmt.Printf("Corpus %q: %s symbols, vocabulary of %d\n", manifest.Source,
		humanize.Comma(int64(manifest.CorpusLen)), manifest.VocabSize)
	if lister, ok := result.Tokenizer.(interface{ Symbols() []rune }); ok {
		fmt.Printf("Vocabulary: %q\n", string(lister.Symbols()))
	}
	fmt.Printf("Split: train=%s, validation=%s (train fraction %g)\n",
		humanize.Comma(int64(manifest.TrainLen)), humanize.Comma(int64(manifest.ValidationLen)),
		manifest.TrainFraction)
	fmt.Printf("Symbol entropy: %.3f nats (uniform would be %.3f)\n",
		manifest.SymbolEntropyNats, manifest.UniformEntropyNats)

	// One example per context length, from the start of the train region.
	fmt.Printf("\nFirst context-target pairs (block size %d):\n", blockSize)
	for example := range result.Train.ExamplesAt(0, blockSize) {
		fmt.Printf("when input is %v the target: %d\n", example.Context, example.Target)
	}

	// The same region as one window: targets are the context shifted ahead by one.
	if context, target, err := result.Train.Window(0, blockSize); err == nil {
		fmt.Printf("\nWindow at 0: context %v, targets %v\n", context, target)
	}

	// A short decode round trip as a sanity check.
	limit := blockSize
	if result.Train.Len() < limit {
		limit = result.Train.Len()
	}
	if ids, err := result.Train.Slice(0, limit); err == nil {
		if text, err := result.Tokenizer.Decode(ids); err == nil {
			fmt.Printf("\nTrain head %v decodes to %q\n", ids, text)
		}
	}
}
