package api

// DefaultClass is the tokenizer class used when a Config doesn't name one.
const DefaultClass = "character"

// Config selects and parameterizes a tokenizer implementation.
//
// Unlike subword tokenizers, the implementations here carry no model file: the vocabulary is
// derived from the corpus itself, so the class name is all a constructor needs.
type Config struct {
	// Class of the tokenizer to build, e.g. "character". See tokenizer.RegisterClass.
	Class string `yaml:"class"`
}

// Default returns a Config selecting the default tokenizer class.
func Default() *Config {
	return &Config{Class: DefaultClass}
}

// ClassOrDefault returns c.Class, or DefaultClass when unset.
func (c *Config) ClassOrDefault() string {
	if c == nil || c.Class == "" {
		return DefaultClass
	}
	return c.Class
}
