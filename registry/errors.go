package registry

import (
	"errors"
	"strconv"
)

var (
	// ErrEmptyKey is returned when Register is called with an empty key.
	ErrEmptyKey = errors.New("registry: empty key")

	// ErrRulePanic is wrapped by the error Create returns when a rule panics.
	ErrRulePanic = errors.New("registry: panic during Create")
)

// DuplicateKeyError is returned by Register when the key is already taken and
// the registry uses the Reject policy.
type DuplicateKeyError struct{ Key string }

// Error implements the error interface.
func (e DuplicateKeyError) Error() string {
	// Example: registry: duplicate key "point"
	return "registry: duplicate key " + strconv.Quote(e.Key)
}

// UnknownKeyError is returned by Create when no rule is registered under Key.
type UnknownKeyError struct{ Key string }

// Error implements the error interface.
func (e UnknownKeyError) Error() string {
	// Example: registry: unknown key "circle"
	return "registry: unknown key " + strconv.Quote(e.Key)
}

// InvalidArgumentError is returned by a rule when the parameter bundle does not
// satisfy its preconditions. Create returns it to the caller as is.
type InvalidArgumentError struct {
	// Param names the offending parameter. Empty when the bundle as a whole is invalid.
	Param string

	// Reason is a short human readable explanation (e.g. "must be >= 0").
	Reason string
}

// Error implements the error interface.
func (e InvalidArgumentError) Error() string {
	// Example: registry: invalid argument "x": must be >= 0
	msg := "registry: invalid argument"
	if e.Param != "" {
		msg += " " + strconv.Quote(e.Param)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Invalid is a shorthand for building an InvalidArgumentError inside a rule.
func Invalid(param, reason string) error {
	return InvalidArgumentError{Param: param, Reason: reason}
}

// NilRuleError is returned by Register when rule is nil.
type NilRuleError struct{ Key string }

// Error implements the error interface.
func (e NilRuleError) Error() string {
	return "registry: nil rule for key " + strconv.Quote(e.Key)
}

// CapabilityError is returned by CreateAs when the constructed instance does
// not implement the requested capability set.
type CapabilityError struct {
	Key string

	// Want is the requested type, Got the dynamic type of the instance.
	Want string
	Got  string
}

// Error implements the error interface.
func (e CapabilityError) Error() string {
	// Example: registry: instance for "point" is *catalog.Point, not catalog.Person
	return "registry: instance for " + strconv.Quote(e.Key) + " is " + e.Got + ", not " + e.Want
}
