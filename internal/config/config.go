package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lexmatch/lexmatch/internal/types"
)

// KeywordFile is the on-disk YAML shape of a keyword set.
type KeywordFile struct {
	Keywords []types.Keyword `yaml:"keywords"`
}

// LoadKeywords reads a keyword set file. Every entry must have a non-empty
// pattern; aliases are optional.
func LoadKeywords(path string) ([]types.Keyword, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseKeywords(b)
}

// ParseKeywords parses keyword set YAML.
func ParseKeywords(b []byte) ([]types.Keyword, error) {
	var kf KeywordFile
	if err := yaml.Unmarshal(b, &kf); err != nil {
		return nil, fmt.Errorf("parse keyword set: %w", err)
	}
	if len(kf.Keywords) == 0 {
		return nil, errors.New("keyword set is empty")
	}
	for i, k := range kf.Keywords {
		if k.Pattern == "" {
			return nil, fmt.Errorf("keyword %d has an empty pattern", i+1)
		}
	}
	return kf.Keywords, nil
}

// FileConfig is the on-disk YAML configuration shape for lexmatch. Nil
// fields are unset and yield to CLI flags.
type FileConfig struct {
	Listen   *string `yaml:"listen"`
	Metrics  *bool   `yaml:"metrics"`
	SetsDir  *string `yaml:"sets_dir"`
	Include  *string `yaml:"include"`
	Exclude  *string `yaml:"exclude"`
	MaxBytes *int64  `yaml:"max_bytes"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a config file in the given root. It supports
// .lexmatch.yml/.yaml and lexmatch.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".lexmatch.yml", ".lexmatch.yaml", "lexmatch.yml", "lexmatch.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}
