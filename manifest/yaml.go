package manifest

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/sghaida/odireg/registry"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Instances []yamlInstance `yaml:"instances"`
}

type yamlInstance struct {
	Name   string         `yaml:"name"`
	Kind   string         `yaml:"kind"`
	Params map[string]any `yaml:"params"`
}

// ParseYAML parses a YAML manifest. Unknown fields are rejected.
func ParseYAML(src []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var raw yamlFile
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	m := &Manifest{Instances: make([]Instance, 0, len(raw.Instances))}
	for _, inst := range raw.Instances {
		params := registry.Params(inst.Params)
		if params == nil {
			params = registry.Params{}
		}
		m.Instances = append(m.Instances, Instance{Name: inst.Name, Kind: inst.Kind, Params: params})
	}
	return m, nil
}
