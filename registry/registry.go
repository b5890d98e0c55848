package registry

import (
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dolthub/swiss"
	"github.com/viant/gmetric"
	"github.com/viant/gmetric/provider"
	"github.com/viant/gmetric/stat"
)

const (
	defaultCapacity = 16
	createOperation = "create"
)

// Rule constructs a new instance of the capability set T from a parameter bundle.
//
// A rule reports precondition failures as InvalidArgumentError (see Invalid and
// the Params getters). A rule must not call back into the registry that runs it.
type Rule[T any] func(p Params) (T, error)

// Registry maps string keys to construction rules for the capability set T.
//
// It is safe for concurrent use. A single mutex covers Register, Create
// (including the rule call) and Unregister, so no partial update is ever
// observable. The zero value is not usable; call New.
type Registry[T any] struct {
	mu     sync.Mutex
	rules  *swiss.Map[string, Rule[T]]
	policy Policy
	logger *slog.Logger
	create *gmetric.Operation

	// creation counters, guarded by mu
	created map[string]int
	total   int
	failed  int
}

// New returns an empty registry configured by opts.
func New[T any](opts ...Option) *Registry[T] {
	s := settings{
		policy: Reject,
		logger: slog.New(slog.DiscardHandler),
		size:   defaultCapacity,
	}
	for _, opt := range opts {
		opt(&s)
	}

	r := &Registry[T]{
		rules:   swiss.NewMap[string, Rule[T]](s.size),
		policy:  s.policy,
		logger:  s.logger,
		created: make(map[string]int),
	}
	if s.metrics != nil {
		r.create = s.metrics.MultiOperationCounter(reflect.TypeOf(r).Elem().PkgPath(), createOperation, createOperation+" operation", time.Microsecond, time.Minute, 2, provider.NewBasic())
	}
	return r
}

// Policy returns the duplicate-key policy fixed at construction.
func (r *Registry[T]) Policy() Policy { return r.policy }

// Register adds rule under key.
//
// It fails with ErrEmptyKey, NilRuleError, or (under the Reject policy)
// DuplicateKeyError. Under Replace an existing rule is swapped silently.
func (r *Registry[T]) Register(key string, rule Rule[T]) error {
	if key == "" {
		return ErrEmptyKey
	}
	if rule == nil {
		return NilRuleError{Key: key}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rules.Has(key) {
		if r.policy != Replace {
			return DuplicateKeyError{Key: key}
		}
		r.logger.Debug("Replacing construction rule.", "key", key)
	} else {
		r.logger.Debug("Registering construction rule.", "key", key)
	}
	r.rules.Put(key, rule)
	return nil
}

// MustRegister is Register for composition roots: it panics on error.
func (r *Registry[T]) MustRegister(key string, rule Rule[T]) *Registry[T] {
	if err := r.Register(key, rule); err != nil {
		panic(err)
	}
	return r
}

// Create builds a new instance using the rule registered under key.
//
// It fails with UnknownKeyError when key is absent. Errors returned by the rule
// (InvalidArgumentError in particular) reach the caller unchanged. A panicking
// rule yields an error wrapping ErrRulePanic. The rule table is never modified.
func (r *Registry[T]) Create(key string, p Params) (val T, err error) {
	if r.create != nil {
		stats := stat.New()
		onDone := r.create.Begin(time.Now())
		defer func() {
			if err != nil {
				stats.Append(err)
			}
			onDone(time.Now(), stats)
		}()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules.Get(key)
	if !ok {
		r.failed++
		return val, UnknownKeyError{Key: key}
	}

	val, err = invoke(rule, p)
	if err != nil {
		r.failed++
		r.logger.Debug("Construction rule failed.", "key", key, "error", err)
		return val, err
	}
	r.total++
	r.created[key]++
	return val, nil
}

// invoke runs rule and converts a panic into an error.
func invoke[T any](rule Rule[T], p Params) (val T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var zero T
			val = zero
			err = fmt.Errorf("%w: %v", ErrRulePanic, rec)
		}
	}()
	return rule(p)
}

// MustCreate returns the instance or panics with the Create error.
// Useful in examples/tests where a failing key should fail fast.
func (r *Registry[T]) MustCreate(key string, p Params) T {
	v, err := r.Create(key, p)
	if err != nil {
		panic(err)
	}
	return v
}

// CreateAs creates an instance and narrows it to the capability set V.
//
// It fails with CapabilityError when the instance does not implement V.
func CreateAs[V any, T any](r *Registry[T], key string, p Params) (V, error) {
	var zero V
	inst, err := r.Create(key, p)
	if err != nil {
		return zero, err
	}
	v, ok := any(inst).(V)
	if !ok {
		return zero, CapabilityError{
			Key:  key,
			Want: reflect.TypeFor[V]().String(),
			Got:  fmt.Sprintf("%T", inst),
		}
	}
	return v, nil
}

// Unregister removes the rule under key. Missing keys are ignored.
func (r *Registry[T]) Unregister(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rules.Delete(key) {
		r.logger.Debug("Unregistered construction rule.", "key", key)
	}
}

// Has reports whether a rule is registered under key.
func (r *Registry[T]) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rules.Has(key)
}

// Len returns the number of registered rules.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rules.Count()
}

// Keys returns the registered keys in unspecified order.
//
// The sequence is lazy and restartable: every iteration takes its own
// snapshot, so ranging twice reflects registrations made in between. The
// yield loop runs without holding the lock.
func (r *Registry[T]) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, k := range r.snapshot() {
			if !yield(k) {
				return
			}
		}
	}
}

// Match returns the sorted keys matching a doublestar glob such as "shape/*".
func (r *Registry[T]) Match(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, InvalidArgumentError{Param: "pattern", Reason: "bad glob " + pattern}
	}
	var out []string
	for _, k := range r.snapshot() {
		ok, err := doublestar.Match(pattern, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (r *Registry[T]) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, r.rules.Count())
	r.rules.Iter(func(k string, _ Rule[T]) bool {
		keys = append(keys, k)
		return false
	})
	return keys
}
