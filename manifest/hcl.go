package manifest

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sghaida/odireg/registry"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type hclFile struct {
	Instances []hclInstance `hcl:"instance,block"`
}

type hclInstance struct {
	Name   string    `hcl:"name,label"`
	Kind   string    `hcl:"kind"`
	Params cty.Value `hcl:"params,optional"`
}

// ParseHCL parses an HCL manifest. filename is only used in diagnostics.
func ParseHCL(src []byte, filename string) (*Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, diags
	}

	m := &Manifest{Instances: make([]Instance, 0, len(raw.Instances))}
	for _, inst := range raw.Instances {
		params, err := paramsFromCty(inst.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "instance %q", inst.Name)
		}
		m.Instances = append(m.Instances, Instance{Name: inst.Name, Kind: inst.Kind, Params: params})
	}
	return m, nil
}

// paramsFromCty converts an HCL object value into Params by way of its JSON form.
func paramsFromCty(v cty.Value) (registry.Params, error) {
	if v.Type() == cty.NilType || v.IsNull() {
		return registry.Params{}, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, errors.Errorf("params must be an object, got %s", v.Type().FriendlyName())
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("params must be fully known")
	}

	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode params")
	}
	params := registry.Params{}
	if err := jsoniter.Unmarshal(raw, &params); err != nil {
		return nil, errors.Wrap(err, "failed to decode params")
	}
	return params, nil
}
