// Package letsbuildgpt only holds the version of the character-level data
// pipeline used to prepare next-token-prediction training data.
//
// There are 4 main sub-packages:
//
//   - loader: to load corpus text from local files, or download and cache named datasets.
//   - tokenizer: to build character-level tokenizers (vocabulary + codec) from a corpus.
//   - dataset: to store the encoded corpus, split it into train/validation regions, and generate context/target windows.
//   - pipeline: to run the whole preparation end to end from a configuration.
package letsbuildgpt

// Version of the library.
// Manually kept in sync with project releases.
var Version = "v0.0.0-dev"
