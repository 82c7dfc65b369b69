package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AliasFile is the on-disk format of extra principle aliases:
//
//	aliases:
//	  "Corporate Responsibility": accountability
type AliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliases reads extra principle aliases. An empty path yields no aliases.
func LoadAliases(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes an alias document
func ParseAliases(data []byte) (map[string]string, error) {
	var file AliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse alias file: %w", err)
	}
	return file.Aliases, nil
}
