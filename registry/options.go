package registry

import (
	"log/slog"
	"strings"

	"github.com/viant/gmetric"
)

// Policy decides what Register does with a key that is already taken.
//
// It is fixed when the registry is constructed.
type Policy int

const (
	// Reject makes Register fail with DuplicateKeyError. This is the default.
	Reject Policy = iota
	// Replace makes Register silently swap the existing rule.
	Replace
)

// String returns the lower-case policy name used in config and flags.
func (p Policy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// ParsePolicy converts "reject" or "replace" (case-insensitive) into a Policy.
// An empty string yields Reject.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return Reject, nil
	case "replace":
		return Replace, nil
	default:
		return Reject, InvalidArgumentError{Param: "policy", Reason: "must be reject or replace, got " + s}
	}
}

type settings struct {
	policy  Policy
	logger  *slog.Logger
	metrics *gmetric.Service
	size    uint32
}

// Option configures a Registry at construction time.
type Option func(*settings)

// WithPolicy sets the duplicate-key policy.
func WithPolicy(p Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithLogger sets the logger used for registration and creation events.
// A nil logger keeps the default, which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics registers a "create" operation counter on svc and times every
// Create call with it.
func WithMetrics(svc *gmetric.Service) Option {
	return func(s *settings) {
		s.metrics = svc
	}
}

// WithCapacity pre-sizes the rule table.
func WithCapacity(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.size = uint32(n)
		}
	}
}
