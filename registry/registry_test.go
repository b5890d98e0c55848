package registry_test

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/sghaida/odireg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gmetric"
)

// capability sets used across the tests
type shape interface {
	Area() float64
}

type named interface {
	Name() string
}

type point struct{ X, Y float64 }

func (point) Area() float64 { return 0 }

type square struct{ Side float64 }

func (s square) Area() float64 { return s.Side * s.Side }

func pointRule(p registry.Params) (shape, error) {
	x, err := p.NonNegative("x")
	if err != nil {
		return nil, err
	}
	y, err := p.NonNegative("y")
	if err != nil {
		return nil, err
	}
	return point{X: x, Y: y}, nil
}

func squareRule(p registry.Params) (shape, error) {
	side, err := p.Positive("side")
	if err != nil {
		return nil, err
	}
	return square{Side: side}, nil
}

func collect(r *registry.Registry[shape]) []string {
	keys := slices.Collect(r.Keys())
	slices.Sort(keys)
	return keys
}

//
// -----------------------------------------------------------------------------
// New / Policy
// -----------------------------------------------------------------------------

// TestNew_Empty verifies New returns an empty registry with the Reject policy.
func TestNew_Empty(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	require.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, registry.Reject, r.Policy())
	assert.Empty(t, collect(r))
}

// TestNew_WithOptions verifies options are applied and nil logger is ignored.
func TestNew_WithOptions(t *testing.T) {
	t.Parallel()

	r := registry.New[shape](
		registry.WithPolicy(registry.Replace),
		registry.WithLogger(nil),
		registry.WithCapacity(64),
	)
	assert.Equal(t, registry.Replace, r.Policy())

	require.NoError(t, r.Register("point", pointRule))
	assert.True(t, r.Has("point"))
}

//
// -----------------------------------------------------------------------------
// Register
// -----------------------------------------------------------------------------

// TestRegister_ThenCreate verifies a registered rule builds the instance from params.
func TestRegister_ThenCreate(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	require.NoError(t, r.Register("point", pointRule))

	got, err := r.Create("point", registry.Params{"x": 3, "y": 4})
	require.NoError(t, err)
	assert.Equal(t, point{X: 3, Y: 4}, got)
}

// TestRegister_DuplicateRejected verifies the default policy rejects duplicates
// and keeps the original rule.
func TestRegister_DuplicateRejected(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	require.NoError(t, r.Register("k", pointRule))

	err := r.Register("k", squareRule)
	require.Error(t, err)

	var dup registry.DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "k", dup.Key)
	assert.EqualError(t, err, `registry: duplicate key "k"`)

	got, err := r.Create("k", registry.Params{"x": 1, "y": 2})
	require.NoError(t, err)
	assert.Equal(t, point{X: 1, Y: 2}, got)
}

// TestRegister_DuplicateReplaced verifies the Replace policy swaps the rule silently.
func TestRegister_DuplicateReplaced(t *testing.T) {
	t.Parallel()

	r := registry.New[shape](registry.WithPolicy(registry.Replace))
	require.NoError(t, r.Register("k", pointRule))
	require.NoError(t, r.Register("k", squareRule))
	assert.Equal(t, 1, r.Len())

	got, err := r.Create("k", registry.Params{"side": 2})
	require.NoError(t, err)
	assert.Equal(t, square{Side: 2}, got)
}

// TestRegister_InvalidInput verifies empty keys and nil rules are refused.
func TestRegister_InvalidInput(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()

	err := r.Register("", pointRule)
	assert.ErrorIs(t, err, registry.ErrEmptyKey)

	err = r.Register("nil", nil)
	var nilRule registry.NilRuleError
	require.True(t, errors.As(err, &nilRule))
	assert.Equal(t, "nil", nilRule.Key)

	assert.Equal(t, 0, r.Len())
}

// TestMustRegister_PanicsOnDuplicate verifies MustRegister chains and panics on error.
func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	ret := r.MustRegister("point", pointRule).MustRegister("square", squareRule)
	require.Same(t, r, ret)

	require.PanicsWithError(t, `registry: duplicate key "point"`, func() {
		r.MustRegister("point", pointRule)
	})
}

//
// -----------------------------------------------------------------------------
// Create
// -----------------------------------------------------------------------------

// TestCreate_UnknownKey verifies Create fails with UnknownKeyError for absent keys.
func TestCreate_UnknownKey(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("point", pointRule)

	got, err := r.Create("circle", registry.Params{"radius": 1})
	require.Error(t, err)
	assert.Nil(t, got)

	var unknown registry.UnknownKeyError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "circle", unknown.Key)
	assert.EqualError(t, err, `registry: unknown key "circle"`)
}

// TestCreate_InvalidArgumentLeavesRegistryUnchanged verifies rule failures
// propagate unchanged and do not touch the rule table.
func TestCreate_InvalidArgumentLeavesRegistryUnchanged(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("point", pointRule).MustRegister("square", squareRule)
	before := collect(r)

	_, err := r.Create("point", registry.Params{"x": -1, "y": 0})
	require.Error(t, err)

	var inv registry.InvalidArgumentError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "x", inv.Param)
	assert.Equal(t, "must be >= 0", inv.Reason)
	assert.Equal(t, registry.InvalidArgumentError{Param: "x", Reason: "must be >= 0"}, err)

	assert.Equal(t, before, collect(r))
	assert.Equal(t, 2, r.Len())
}

// TestCreate_RuleErrorPassesThrough verifies arbitrary rule errors are returned as is.
func TestCreate_RuleErrorPassesThrough(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	r := registry.New[shape]()
	r.MustRegister("bad", func(registry.Params) (shape, error) { return nil, sentinel })

	_, err := r.Create("bad", nil)
	assert.Same(t, sentinel, err)
}

// TestCreate_RecoversFromPanic verifies a panicking rule is reported as ErrRulePanic.
func TestCreate_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("explode", func(p registry.Params) (shape, error) {
		var m map[string]int
		m["x"] = 1 // nil map write
		return point{}, nil
	})

	got, err := r.Create("explode", nil)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, registry.ErrRulePanic)

	// the registry is still usable afterwards (lock released)
	r.MustRegister("point", pointRule)
	_, err = r.Create("point", registry.Params{"x": 0, "y": 0})
	require.NoError(t, err)
}

// TestCreate_NilParams verifies rules see a nil bundle as "everything missing".
func TestCreate_NilParams(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("point", pointRule)

	_, err := r.Create("point", nil)
	assert.Equal(t, registry.InvalidArgumentError{Param: "x", Reason: "is required"}, err)
}

// TestMustCreate verifies MustCreate returns the value or panics with the error.
func TestMustCreate(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("point", pointRule)

	assert.Equal(t, point{X: 1, Y: 1}, r.MustCreate("point", registry.Params{"x": 1, "y": 1}))
	require.PanicsWithError(t, `registry: unknown key "nope"`, func() {
		_ = r.MustCreate("nope", nil)
	})
}

// TestCreate_WithMetrics verifies every Create is counted on the "create"
// operation, with failures (unknown keys included) counted as errors.
func TestCreate_WithMetrics(t *testing.T) {
	t.Parallel()

	metrics := gmetric.New()
	r := registry.New[shape](registry.WithMetrics(metrics))
	r.MustRegister("point", pointRule)

	_, err := r.Create("point", registry.Params{"x": 1, "y": 1})
	require.NoError(t, err)
	_, err = r.Create("point", registry.Params{"x": -1, "y": 1})
	require.Error(t, err)
	_, err = r.Create("missing", nil)
	require.Error(t, err)

	ops := metrics.OperationCounters()
	require.Len(t, ops, 1)
	assert.Equal(t, "github.com/sghaida/odireg/registry", ops[0].Location)
	assert.Equal(t, "create", ops[0].Name)
	assert.Equal(t, int64(3), ops[0].CountValue())
	assert.Equal(t, int64(2), errorCount(ops[0]))
}

// TestCreate_WithLogger verifies a real logger does not change behaviour.
func TestCreate_WithLogger(t *testing.T) {
	t.Parallel()

	var buf syncBuffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := registry.New[shape](registry.WithLogger(logger))
	r.MustRegister("point", pointRule)

	_, err := r.Create("point", registry.Params{"x": -1, "y": 1})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "key=point")
}

//
// -----------------------------------------------------------------------------
// CreateAs
// -----------------------------------------------------------------------------

type namedSquare struct{ square }

func (namedSquare) Name() string { return "named" }

// TestCreateAs verifies narrowing to a richer capability set.
func TestCreateAs(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("point", pointRule)
	r.MustRegister("named", func(registry.Params) (shape, error) { return namedSquare{square{Side: 1}}, nil })

	n, err := registry.CreateAs[named](r, "named", nil)
	require.NoError(t, err)
	assert.Equal(t, "named", n.Name())

	_, err = registry.CreateAs[named](r, "point", registry.Params{"x": 0, "y": 0})
	var capErr registry.CapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, "point", capErr.Key)
	assert.Equal(t, "registry_test.named", capErr.Want)
	assert.Equal(t, "registry_test.point", capErr.Got)

	_, err = registry.CreateAs[named](r, "missing", nil)
	assert.ErrorAs(t, err, new(registry.UnknownKeyError))
}

//
// -----------------------------------------------------------------------------
// Unregister
// -----------------------------------------------------------------------------

// TestUnregister_ThenCreateFails verifies an unregistered key is unknown afterwards.
func TestUnregister_ThenCreateFails(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("point", pointRule)

	r.Unregister("point")
	assert.False(t, r.Has("point"))

	_, err := r.Create("point", registry.Params{"x": 1, "y": 1})
	assert.ErrorAs(t, err, new(registry.UnknownKeyError))

	// key can be registered again under Reject
	require.NoError(t, r.Register("point", pointRule))
}

// TestUnregister_MissingIsNoOp verifies removing an absent key is not an error.
func TestUnregister_MissingIsNoOp(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("point", pointRule)

	assert.NotPanics(t, func() { r.Unregister("missing") })
	assert.Equal(t, 1, r.Len())
}

//
// -----------------------------------------------------------------------------
// Keys / Match
// -----------------------------------------------------------------------------

// TestKeys_Restartable verifies each range takes a fresh snapshot.
func TestKeys_Restartable(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("a", pointRule).MustRegister("b", pointRule)

	seq := r.Keys()
	first := slices.Sorted(seq)
	assert.Equal(t, []string{"a", "b"}, first)

	r.MustRegister("c", pointRule)
	r.Unregister("a")
	second := slices.Sorted(seq)
	assert.Equal(t, []string{"b", "c"}, second)
}

// TestKeys_EarlyStop verifies breaking out of the range is honoured.
func TestKeys_EarlyStop(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	for i := 0; i < 10; i++ {
		r.MustRegister(fmt.Sprintf("k%d", i), pointRule)
	}

	n := 0
	for range r.Keys() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

// TestKeys_MutateWhileRanging verifies the registry can be changed inside the loop.
func TestKeys_MutateWhileRanging(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("a", pointRule).MustRegister("b", pointRule)

	for k := range r.Keys() {
		r.Unregister(k)
	}
	assert.Equal(t, 0, r.Len())
}

// TestMatch verifies glob filtering and pattern validation.
func TestMatch(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("shape/point", pointRule).
		MustRegister("shape/square", squareRule).
		MustRegister("person/student", pointRule)

	got, err := r.Match("shape/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"shape/point", "shape/square"}, got)

	got, err = r.Match("**")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = r.Match("vehicle/*")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = r.Match("shape/[")
	assert.ErrorAs(t, err, new(registry.InvalidArgumentError))
}

//
// -----------------------------------------------------------------------------
// Stats
// -----------------------------------------------------------------------------

// TestStats verifies creation counters and their deterministic rendering.
func TestStats(t *testing.T) {
	t.Parallel()

	r := registry.New[shape]()
	r.MustRegister("point", pointRule).MustRegister("square", squareRule)

	_ = r.MustCreate("point", registry.Params{"x": 1, "y": 1})
	_ = r.MustCreate("point", registry.Params{"x": 2, "y": 1})
	_ = r.MustCreate("square", registry.Params{"side": 1})
	_, _ = r.Create("square", registry.Params{"side": 0})
	_, _ = r.Create("circle", nil)

	s := r.Stats()
	assert.Equal(t, 3, s.Created)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, map[string]int{"point": 2, "square": 1}, s.ByKey)
	assert.Equal(t, "created=3 failed=2 {point=2, square=1}", s.String())

	// snapshot is a copy
	s.ByKey["point"] = 100
	assert.Equal(t, 2, r.Stats().ByKey["point"])
}

//
// -----------------------------------------------------------------------------
// Concurrency
// -----------------------------------------------------------------------------

// TestConcurrentUse exercises Register/Create/Unregister/Keys from many goroutines.
// Run with -race to catch unguarded access.
func TestConcurrentUse(t *testing.T) {
	t.Parallel()

	r := registry.New[shape](registry.WithPolicy(registry.Replace))
	r.MustRegister("point", pointRule)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("sq%d", i%4)
			for j := 0; j < 100; j++ {
				_ = r.Register(key, squareRule)
				_, _ = r.Create(key, registry.Params{"side": j + 1})
				_, err := r.Create("point", registry.Params{"x": j, "y": j})
				assert.NoError(t, err)
				for range r.Keys() {
				}
				if j%10 == 0 {
					r.Unregister(key)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.True(t, r.Has("point"))
	assert.Equal(t, 16*100, r.Stats().ByKey["point"])
}
