package registry

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/traitkit-dev/traitkit/application/model"
	"github.com/traitkit-dev/traitkit/domain/ports"
)

// OverwritePolicy decides what happens when Define names a capability that
// already has a definition. Sealed capabilities reject redefinition under
// every policy.
type OverwritePolicy int

const (
	// OverwriteAlways replaces the existing definition (last write wins).
	// This is the default.
	OverwriteAlways OverwritePolicy = iota

	// OverwriteNever rejects any redefinition with a DuplicateError.
	OverwriteNever

	// OverwriteIfNewer replaces the definition only when both versions parse
	// as semver and the incoming one is strictly newer.
	OverwriteIfNewer
)

func (p OverwritePolicy) String() string {
	switch p {
	case OverwriteNever:
		return "never"
	case OverwriteIfNewer:
		return "if-newer"
	default:
		return "always"
	}
}

// Option configures a Registry instance.
type Option func(*Registry)

// WithLogger sets the registry logger. The default is zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink. The default discards everything.
func WithMetrics(m ports.Metrics) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithClock sets the time source used to stamp implementation records.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithOverwritePolicy sets the redefinition policy for Define.
func WithOverwritePolicy(p OverwritePolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// WithStructuralValidator replaces the structural validation stage.
func WithStructuralValidator(v ports.StructuralValidator) Option {
	return func(r *Registry) {
		if v != nil {
			r.structural = v
		}
	}
}

// WithCoherenceGuard replaces the coherence stage. The default guard treats
// this module as local; a replacement starts from whatever patterns it was
// built with.
func WithCoherenceGuard(g ports.CoherenceGuard) Option {
	return func(r *Registry) {
		if g != nil {
			r.coherence = g
		}
	}
}

// WithDependencyResolver replaces the prerequisite resolution stage.
func WithDependencyResolver(d ports.DependencyResolver) Option {
	return func(r *Registry) {
		if d != nil {
			r.dependency = d
		}
	}
}

// WithComposer replaces the capability composer.
func WithComposer(c ports.Composer) Option {
	return func(r *Registry) {
		if c != nil {
			r.composer = c
		}
	}
}

// WithModelFactory replaces the model factory used by BuildModel.
func WithModelFactory(f *model.Factory) Option {
	return func(r *Registry) {
		if f != nil {
			r.factory = f
		}
	}
}
