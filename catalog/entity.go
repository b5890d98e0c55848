// Package catalog holds the concrete capability sets and construction rules
// the odireg CLI and examples build by key.
//
// Every instance is an Entity. Shapes and people extend it with richer
// capability sets that callers can narrow to with registry.CreateAs:
//
//	reg := registry.New[catalog.Entity]()
//	catalog.Register(reg)
//	p, err := registry.CreateAs[catalog.Person](reg, catalog.KeyStudent, params)
package catalog

import (
	"github.com/sghaida/odireg/registry"
	"github.com/sghaida/odireg/schema"
)

// Registry keys.
const (
	KeyPoint     = "shape/point"
	KeyCircle    = "shape/circle"
	KeyRectangle = "shape/rectangle"
	KeySquare    = "shape/square"

	KeyPerson   = "person/person"
	KeyStudent  = "person/student"
	KeyEmployee = "person/employee"
)

// Entity is the capability set every catalog instance supports.
type Entity interface {
	// Kind is the registry key the instance was built from.
	Kind() string
	String() string
}

// Shape is an Entity with a geometric extent.
type Shape interface {
	Entity
	Area() float64
	Perimeter() float64
}

// Person is an Entity that has a name and an age.
type Person interface {
	Entity
	Name() string
	Age() int
}

// Register adds every catalog rule to reg.
func Register(reg *registry.Registry[Entity]) error {
	if err := RegisterShapes(reg); err != nil {
		return err
	}
	return RegisterPeople(reg)
}

// Describe returns the JSON Schema of the params a key accepts. Only keys
// whose rule is schema-built have one.
func Describe(key string) (string, bool) {
	var (
		doc string
		err error
	)
	switch key {
	case KeyRectangle:
		doc, err = schema.Document[rectangleInput]()
	case KeySquare:
		doc, err = schema.Document[squareInput]()
	case KeyPerson:
		doc, err = schema.Document[personInput]()
	case KeyStudent:
		doc, err = schema.Document[studentInput]()
	case KeyEmployee:
		doc, err = schema.Document[employeeInput]()
	default:
		return "", false
	}
	if err != nil {
		return "", false
	}
	return doc, true
}
