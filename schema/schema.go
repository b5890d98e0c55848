// Package schema builds registry rules whose parameter bundle is validated
// against a JSON Schema reflected from a Go input struct.
//
// Constraints live on the struct as jsonschema tags:
//
//	type PointInput struct {
//		X float64 `json:"x" jsonschema:"minimum=0"`
//		Y float64 `json:"y" jsonschema:"minimum=0"`
//	}
//
//	rule := schema.MustRule(func(in PointInput) (Shape, error) {
//		return &Point{X: in.X, Y: in.Y}, nil
//	})
//
// Fields are required unless tagged omitempty; unknown params are rejected.
package schema

import (
	"bytes"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
	jsoniter "github.com/json-iterator/go"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sghaida/odireg/registry"
)

const resourceURL = "params.json"

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	missingProps = regexp.MustCompile(`^missing properties: '([^']+)'`)
	extraProps   = regexp.MustCompile(`^additionalProperties '([^']+)' not allowed`)
)

// Validator checks and decodes parameter bundles for the input type In.
type Validator[In any] struct {
	doc    []byte
	schema *sjsonschema.Schema
}

// Compile reflects In into a JSON Schema and compiles it.
//
// In must be a struct type (not a pointer).
func Compile[In any]() (*Validator[In], error) {
	t := reflect.TypeFor[In]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: input must be a struct, got %s", t)
	}

	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
		Anonymous:      true,
	}
	doc, err := json.MarshalIndent(reflector.Reflect(new(In)), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: failed to marshal generated schema for %s: %w", t, err)
	}

	compiler := sjsonschema.NewCompiler()
	compiler.Draft = sjsonschema.Draft2020
	if err := compiler.AddResource(resourceURL, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("schema: failed to load schema for %s: %w", t, err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("schema: failed to compile schema for %s: %w", t, err)
	}
	return &Validator[In]{doc: doc, schema: compiled}, nil
}

// Document returns the JSON Schema document (indented).
func (v *Validator[In]) Document() string { return string(v.doc) }

// Decode validates p and decodes it into In.
//
// Validation failures are reported as registry.InvalidArgumentError naming the
// first offending parameter.
func (v *Validator[In]) Decode(p registry.Params) (In, error) {
	var in In
	if p == nil {
		p = registry.Params{}
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return in, registry.Invalid("", "params are not JSON encodable: "+err.Error())
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return in, registry.Invalid("", err.Error())
	}
	if err := v.schema.Validate(instance); err != nil {
		return in, toInvalid(err)
	}

	if err := json.Unmarshal(raw, &in); err != nil {
		return in, registry.Invalid("", err.Error())
	}
	return in, nil
}

// Rule wraps build into a registry rule that validates and decodes params first.
func Rule[In any, T any](build func(In) (T, error)) (registry.Rule[T], error) {
	if build == nil {
		return nil, fmt.Errorf("schema: nil build function")
	}
	v, err := Compile[In]()
	if err != nil {
		return nil, err
	}
	return func(p registry.Params) (T, error) {
		in, err := v.Decode(p)
		if err != nil {
			var zero T
			return zero, err
		}
		return build(in)
	}, nil
}

// MustRule is Rule that panics on error. Schema problems are programming
// errors, so composition roots usually prefer this.
func MustRule[In any, T any](build func(In) (T, error)) registry.Rule[T] {
	r, err := Rule(build)
	if err != nil {
		panic(err)
	}
	return r
}

// Document returns the JSON Schema reflected from In.
func Document[In any]() (string, error) {
	v, err := Compile[In]()
	if err != nil {
		return "", err
	}
	return v.Document(), nil
}

// toInvalid maps the deepest validation cause onto an InvalidArgumentError.
func toInvalid(err error) error {
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return registry.Invalid("", err.Error())
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	param := strings.ReplaceAll(strings.TrimPrefix(ve.InstanceLocation, "/"), "/", ".")
	reason := ve.Message
	if m := missingProps.FindStringSubmatch(reason); m != nil {
		param = joinParam(param, m[1])
		reason = "is required"
	} else if m := extraProps.FindStringSubmatch(reason); m != nil {
		param = joinParam(param, m[1])
		reason = "is not allowed"
	}
	return registry.InvalidArgumentError{Param: param, Reason: reason}
}

func joinParam(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
