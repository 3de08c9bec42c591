package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config declares one allow-listed command exposed as a function.
type Config struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
	Timeout     time.Duration     `yaml:"timeout" json:"timeout"`
}

// File is the layout of a functions file.
type File struct {
	Functions []Config `yaml:"functions" json:"functions"`
}

// LoadFunctions reads a functions file (YAML, or JSON by extension).
// A missing file yields no functions.
func LoadFunctions(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read functions file: %w", err)
	}

	var file File
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	out := make([]Config, 0, len(file.Functions))
	for _, fn := range file.Functions {
		if fn.Name == "" {
			continue
		}
		if fn.Command == "" {
			return nil, fmt.Errorf("function %s: command is required", fn.Name)
		}
		out = append(out, fn)
	}
	return out, nil
}
