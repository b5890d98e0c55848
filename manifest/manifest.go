// Package manifest describes "what to build" as data and materializes it
// through a registry.
//
// A manifest is a list of named instances, each naming the registry key (kind)
// to build and the params to build it with. Manifests can be written in HCL:
//
//	instance "origin" {
//	  kind   = "shape/point"
//	  params = { x = 0, y = 0 }
//	}
//
// or YAML:
//
//	instances:
//	  - name: origin
//	    kind: shape/point
//	    params: {x: 0, y: 0}
package manifest

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/sghaida/odireg/internal/ctxlog"
	"github.com/sghaida/odireg/registry"
	"github.com/viant/afs"
)

// Manifest is an ordered list of instances to build.
type Manifest struct {
	Instances []Instance
}

// Instance is one named construction request.
type Instance struct {
	Name   string
	Kind   string
	Params registry.Params
}

// Built is an instance produced by Build.
type Built[T any] struct {
	Name  string
	Kind  string
	Value T
}

// Validate checks that names are non-empty and unique and kinds are set.
func (m *Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m.Instances))
	for i, inst := range m.Instances {
		if inst.Name == "" {
			return errors.Errorf("manifest: instance #%d has no name", i+1)
		}
		if _, dup := seen[inst.Name]; dup {
			return errors.Errorf("manifest: duplicate instance %q", inst.Name)
		}
		seen[inst.Name] = struct{}{}
		if inst.Kind == "" {
			return errors.Errorf("manifest: instance %q has no kind", inst.Name)
		}
	}
	return nil
}

// Load reads and parses the manifest at URL. URL is anything afs resolves: a
// plain path, file:// or mem://. The format is chosen by extension: .hcl,
// .yaml or .yml.
func Load(ctx context.Context, URL string) (*Manifest, error) {
	return LoadWith(ctx, afs.New(), URL)
}

// LoadWith is Load on a caller-supplied afs service.
func LoadWith(ctx context.Context, fs afs.Service, URL string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	var parse func([]byte) (*Manifest, error)
	switch ext := strings.ToLower(path.Ext(URL)); ext {
	case ".hcl":
		parse = func(src []byte) (*Manifest, error) { return ParseHCL(src, URL) }
	case ".yaml", ".yml":
		parse = ParseYAML
	default:
		return nil, errors.Errorf("manifest: unsupported file extension %q (want .hcl, .yaml or .yml)", ext)
	}

	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: failed to check %s", URL)
	}
	if !exists {
		return nil, errors.Wrapf(os.ErrNotExist, "manifest: failed to read %s", URL)
	}
	reader, err := fs.OpenURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: failed to open %s", URL)
	}
	defer func() { _ = reader.Close() }()
	src, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: failed to read %s", URL)
	}

	m, err := parse(src)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: failed to parse %s", URL)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, URL)
	}

	logger.Debug("Manifest loaded.", "url", URL, "instances", len(m.Instances))
	return m, nil
}

// Build creates every instance in m through reg, in manifest order.
//
// It stops at the first failure. The returned error names the instance and
// still matches the registry error kinds with errors.As.
func Build[T any](ctx context.Context, reg *registry.Registry[T], m *Manifest) ([]Built[T], error) {
	logger := ctxlog.FromContext(ctx)

	if err := m.Validate(); err != nil {
		return nil, err
	}

	out := make([]Built[T], 0, len(m.Instances))
	for _, inst := range m.Instances {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		v, err := reg.Create(inst.Kind, inst.Params)
		if err != nil {
			logger.Warn("Failed to build instance.", "name", inst.Name, "kind", inst.Kind, "error", err)
			return out, errors.Wrapf(err, "manifest: instance %q", inst.Name)
		}
		logger.Debug("Built instance.", "name", inst.Name, "kind", inst.Kind)
		out = append(out, Built[T]{Name: inst.Name, Kind: inst.Kind, Value: v})
	}
	return out, nil
}
