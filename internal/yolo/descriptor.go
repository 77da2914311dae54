package yolo

import (
	"fmt"
	"path/filepath"

	"github.com/pbaille/coco2yolo/internal/domain"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DescriptorFile is the dataset descriptor name inside the output root
const DescriptorFile = "data.yaml"

// Descriptor is the data.yaml consumed by YOLO training tools
type Descriptor struct {
	Path       string   `yaml:"path"`
	Train      string   `yaml:"train"`
	Val        string   `yaml:"val"`
	Test       string   `yaml:"test"`
	NamesCount int      `yaml:"nc"`
	Names      []string `yaml:"names,flow"`
}

// NewDescriptor points each split at its directory relative to the dataset root
func NewDescriptor(names []string) *Descriptor {
	if names == nil {
		names = []string{}
	}
	return &Descriptor{
		Train:      string(domain.Train),
		Val:        string(domain.Valid),
		Test:       string(domain.Test),
		NamesCount: len(names),
		Names:      names,
	}
}

// WriteDescriptor writes data.yaml into root
func WriteDescriptor(fs afero.Fs, root string, names []string) error {
	data, err := yaml.Marshal(NewDescriptor(names))
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(root, DescriptorFile), data, 0o644); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}
	return nil
}

// ReadDescriptor loads a data.yaml
func ReadDescriptor(fs afero.Fs, path string) (*Descriptor, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}
	return &d, nil
}
