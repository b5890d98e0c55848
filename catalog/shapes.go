package catalog

import (
	"fmt"
	"math"

	"github.com/sghaida/odireg/registry"
	"github.com/sghaida/odireg/schema"
)

// Point is a zero-extent shape in the first quadrant.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Kind returns KeyPoint.
func (p *Point) Kind() string { return KeyPoint }

// Area is always zero.
func (p *Point) Area() float64 { return 0 }

// Perimeter is always zero.
func (p *Point) Perimeter() float64 { return 0 }

// String implements fmt.Stringer.
func (p *Point) String() string { return fmt.Sprintf("point(%g, %g)", p.X, p.Y) }

// Distance returns the Euclidean distance to o.
func (p *Point) Distance(o *Point) float64 { return math.Hypot(p.X-o.X, p.Y-o.Y) }

// Circle is centred on a Point.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Kind returns KeyCircle.
func (c *Circle) Kind() string { return KeyCircle }

// Area returns pi r squared.
func (c *Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }

// Perimeter returns the circumference.
func (c *Circle) Perimeter() float64 { return 2 * math.Pi * c.Radius }

// String implements fmt.Stringer.
func (c *Circle) String() string {
	return fmt.Sprintf("circle(r=%g at %g, %g)", c.Radius, c.Center.X, c.Center.Y)
}

// Rectangle is axis aligned.
type Rectangle struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Kind returns KeyRectangle.
func (r *Rectangle) Kind() string { return KeyRectangle }

// Area returns width times height.
func (r *Rectangle) Area() float64 { return r.Width * r.Height }

// Perimeter returns the sum of the four sides.
func (r *Rectangle) Perimeter() float64 { return 2 * (r.Width + r.Height) }

// String implements fmt.Stringer.
func (r *Rectangle) String() string { return fmt.Sprintf("rectangle(%g x %g)", r.Width, r.Height) }

// Square is a Rectangle with equal sides.
type Square struct {
	Rectangle
}

// Kind returns KeySquare.
func (s *Square) Kind() string { return KeySquare }

// Side returns the length of each side.
func (s *Square) Side() float64 { return s.Width }

// String implements fmt.Stringer.
func (s *Square) String() string { return fmt.Sprintf("square(%g)", s.Width) }

type rectangleInput struct {
	Width  float64 `json:"width" jsonschema:"exclusiveMinimum=0"`
	Height float64 `json:"height" jsonschema:"exclusiveMinimum=0"`
}

type squareInput struct {
	Side float64 `json:"side" jsonschema:"exclusiveMinimum=0"`
}

// NewPoint is the rule for KeyPoint: x and y are required and must be >= 0.
func NewPoint(p registry.Params) (Entity, error) {
	x, err := p.NonNegative("x")
	if err != nil {
		return nil, err
	}
	y, err := p.NonNegative("y")
	if err != nil {
		return nil, err
	}
	return &Point{X: x, Y: y}, nil
}

// NewCircle is the rule for KeyCircle: radius > 0, optional non-negative
// centre coordinates cx and cy.
func NewCircle(p registry.Params) (Entity, error) {
	r, err := p.Positive("radius")
	if err != nil {
		return nil, err
	}
	c := &Circle{Radius: r}
	if p.Has("cx") {
		if c.Center.X, err = p.NonNegative("cx"); err != nil {
			return nil, err
		}
	}
	if p.Has("cy") {
		if c.Center.Y, err = p.NonNegative("cy"); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RegisterShapes adds the shape rules to reg.
func RegisterShapes(reg *registry.Registry[Entity]) error {
	rectangle, err := schema.Rule(func(in rectangleInput) (Entity, error) {
		return &Rectangle{Width: in.Width, Height: in.Height}, nil
	})
	if err != nil {
		return err
	}
	square, err := schema.Rule(func(in squareInput) (Entity, error) {
		return &Square{Rectangle{Width: in.Side, Height: in.Side}}, nil
	})
	if err != nil {
		return err
	}

	rules := []struct {
		key  string
		rule registry.Rule[Entity]
	}{
		{KeyPoint, NewPoint},
		{KeyCircle, NewCircle},
		{KeyRectangle, rectangle},
		{KeySquare, square},
	}
	for _, r := range rules {
		if err := reg.Register(r.key, r.rule); err != nil {
			return err
		}
	}
	return nil
}
