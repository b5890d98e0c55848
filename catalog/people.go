package catalog

import (
	"fmt"

	"github.com/sghaida/odireg/registry"
	"github.com/sghaida/odireg/schema"
)

// Human is the base Person implementation; Student and Employee embed it.
type Human struct {
	FullName string `json:"name"`
	Years    int    `json:"age"`
}

// Kind returns KeyPerson.
func (h *Human) Kind() string { return KeyPerson }

// Name returns the full name.
func (h *Human) Name() string { return h.FullName }

// Age returns the age in years.
func (h *Human) Age() int { return h.Years }

// String implements fmt.Stringer.
func (h *Human) String() string { return fmt.Sprintf("%s (%d)", h.FullName, h.Years) }

// Student is a Human enrolled at a school.
type Student struct {
	Human
	School string `json:"school"`
}

// Kind returns KeyStudent.
func (s *Student) Kind() string { return KeyStudent }

// String implements fmt.Stringer.
func (s *Student) String() string { return fmt.Sprintf("%s, student at %s", s.Human.String(), s.School) }

// Employee is a Human with a salary.
type Employee struct {
	Human
	Company string  `json:"company,omitempty"`
	Salary  float64 `json:"salary"`
}

// Kind returns KeyEmployee.
func (e *Employee) Kind() string { return KeyEmployee }

// String implements fmt.Stringer.
func (e *Employee) String() string {
	if e.Company == "" {
		return fmt.Sprintf("%s, employee earning %.2f", e.Human.String(), e.Salary)
	}
	return fmt.Sprintf("%s, employee at %s earning %.2f", e.Human.String(), e.Company, e.Salary)
}

type personInput struct {
	Name string `json:"name" jsonschema:"minLength=1"`
	Age  int    `json:"age" jsonschema:"minimum=0,maximum=150"`
}

type studentInput struct {
	Name   string `json:"name" jsonschema:"minLength=1"`
	Age    int    `json:"age" jsonschema:"minimum=0,maximum=150"`
	School string `json:"school" jsonschema:"minLength=1"`
}

type employeeInput struct {
	Name    string  `json:"name" jsonschema:"minLength=1"`
	Age     int     `json:"age" jsonschema:"minimum=16,maximum=150"`
	Company string  `json:"company,omitempty"`
	Salary  float64 `json:"salary" jsonschema:"minimum=0"`
}

// RegisterPeople adds the person rules to reg.
func RegisterPeople(reg *registry.Registry[Entity]) error {
	person, err := schema.Rule(func(in personInput) (Entity, error) {
		return &Human{FullName: in.Name, Years: in.Age}, nil
	})
	if err != nil {
		return err
	}
	student, err := schema.Rule(func(in studentInput) (Entity, error) {
		return &Student{Human: Human{FullName: in.Name, Years: in.Age}, School: in.School}, nil
	})
	if err != nil {
		return err
	}
	employee, err := schema.Rule(func(in employeeInput) (Entity, error) {
		return &Employee{Human: Human{FullName: in.Name, Years: in.Age}, Company: in.Company, Salary: in.Salary}, nil
	})
	if err != nil {
		return err
	}

	for key, rule := range map[string]registry.Rule[Entity]{
		KeyPerson:   person,
		KeyStudent:  student,
		KeyEmployee: employee,
	} {
		if err := reg.Register(key, rule); err != nil {
			return err
		}
	}
	return nil
}
