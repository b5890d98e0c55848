// Package registry provides a small, generic, string-keyed construction registry.
//
// A Registry[T] maps a key (e.g. "shape/point") to a Rule[T]: a function that
// turns a parameter bundle into a new instance of the capability set T. Callers
// ask for instances by name instead of by static type, so what gets built can
// come from configuration rather than code.
//
// Design goals:
//   - Explicit: rules are plain functions registered in the composition root.
//     No reflection-based instantiation in this package.
//   - Predictable conflicts: the duplicate-key Policy is fixed by New
//     (Reject by default, Replace on request).
//   - Typed failures: DuplicateKeyError, UnknownKeyError and
//     InvalidArgumentError are distinct values callers can match with errors.As.
//   - Safe for concurrent use: one mutex covers Register, Create and Unregister.
//
// Typical wiring:
//
//	reg := registry.New[Shape]()
//	reg.MustRegister("point", func(p registry.Params) (Shape, error) {
//		x, err := p.NonNegative("x")
//		if err != nil {
//			return nil, err
//		}
//		y, err := p.NonNegative("y")
//		if err != nil {
//			return nil, err
//		}
//		return &Point{X: x, Y: y}, nil
//	})
//
//	s, err := reg.Create("point", registry.Params{"x": 3, "y": 4})
//
// Rules whose inputs are better described by a struct can be built with the
// schema package instead of the Params getters.
package registry
