package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Batch is a scripted sequence of scenarios run one after another.
type Batch struct {
	Name        string
	Description string
	Steps       []*Config
}

type batchFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Steps       []yaml.Node `yaml:"steps"`
}

// LoadBatch reads a batch file. A step naming a preset starts from that
// preset's settings; every other key in the step overrides them.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBatch(data)
}

func ParseBatch(data []byte) (*Batch, error) {
	var file batchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("%w: batch has no steps", ErrInvalidConfig)
	}

	batch := &Batch{Name: file.Name, Description: file.Description}
	for i := range file.Steps {
		cfg, err := decodeStep(&file.Steps[i])
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if cfg.Name == "" || cfg.Name == DefaultConfig().Name {
			cfg.Name = fmt.Sprintf("%s_%d", file.Name, i+1)
		}
		batch.Steps = append(batch.Steps, cfg)
	}
	return batch, nil
}

func decodeStep(node *yaml.Node) (*Config, error) {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if head.Preset != "" {
		cfg = GetPreset(head.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, head.Preset)
		}
	}
	if err := node.Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
