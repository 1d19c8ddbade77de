package blueprint

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// AspectSpec is one entry in a state's aspect list.
type AspectSpec struct {
	Use  string         `yaml:"use" json:"use"`
	With map[string]any `yaml:"with,omitempty" json:"with,omitempty"`
}

// Document is the file representation of a blueprint.
type Document struct {
	Name        string                  `yaml:"name,omitempty" json:"name,omitempty"`
	Description string                  `yaml:"description,omitempty" json:"description,omitempty"`
	Initial     string                  `yaml:"initial" json:"initial"`
	States      map[string][]AspectSpec `yaml:"states" json:"states"`
	OnEnd       []AspectSpec            `yaml:"on_end,omitempty" json:"on_end,omitempty"`
}

// Parse decodes a document. Unknown top-level or aspect keys are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint: %w", err)
	}
	return &doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint: %w", err)
	}
	return Parse(data)
}

// StateNames returns the declared states in sorted order.
func (d *Document) StateNames() []string {
	names := make([]string, 0, len(d.States))
	for name := range d.States {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
