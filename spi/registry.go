// Package spi discovers provider implementations and runs the resolution
// protocol the monetary façades share: pick an ordered provider chain, invoke
// each provider in isolation, reduce the results.
package spi

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	// ErrAmbiguousRegistration is returned when more than one implementation of a
	// capability that allows exactly one is registered.
	ErrAmbiguousRegistration = errors.New("ambiguous registration")

	// ErrRegistryFrozen is returned when registering a provider for a capability
	// that has already been discovered.
	ErrRegistryFrozen = errors.New("capability already discovered")
)

// Registry hands out the provider instances implementing a capability.
// Implementations must be safe for concurrent use and must return the same
// instances on every call.
type Registry interface {
	Services(capability reflect.Type) []any
}

// Services returns the providers of r implementing T.
func Services[T any](r Registry) []T {
	raw := r.Services(reflect.TypeFor[T]())
	services := make([]T, 0, len(raw))
	for _, s := range raw {
		if v, ok := s.(T); ok {
			services = append(services, v)
		}
	}
	return services
}

// Single returns the only provider of T, or fallback when none is registered.
// More than one registration is an ErrAmbiguousRegistration.
func Single[T any](r Registry, fallback T) (T, error) {
	services := Services[T](r)
	switch len(services) {
	case 0:
		return fallback, nil
	case 1:
		return services[0], nil
	default:
		var zero T
		return zero, fmt.Errorf("%w: %d implementations of %v", ErrAmbiguousRegistration, len(services), reflect.TypeFor[T]())
	}
}

// Factory constructs a provider instance.
type Factory func() (any, error)

type registration struct {
	name    string
	factory Factory
}

// discovery holds the instances of one capability. services is written once,
// inside once, and never mutated afterwards.
type discovery struct {
	once     sync.Once
	services []any
}

// StaticRegistry is a Registry fed by compiled-in registrations. Providers of
// a capability are constructed on the first Services call for it, exactly once,
// in registration order.
type StaticRegistry struct {
	mu            sync.Mutex
	registrations map[reflect.Type][]registration
	discovered    map[reflect.Type]*discovery
	logger        log.Logger
}

// NewStaticRegistry returns an empty registry logging to logger.
func NewStaticRegistry(logger log.Logger) *StaticRegistry {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &StaticRegistry{
		registrations: map[reflect.Type][]registration{},
		discovered:    map[reflect.Type]*discovery{},
		logger:        logger,
	}
}

// SetLogger replaces the registry logger.
func (r *StaticRegistry) SetLogger(logger log.Logger) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds a factory for capability T under name. Registering the same
// name twice for one capability panics.
func Register[T any](r *StaticRegistry, name string, factory func() (T, error)) error {
	return r.register(reflect.TypeFor[T](), name, func() (any, error) {
		return factory()
	})
}

// RegisterInstance adds an already constructed provider for capability T.
func RegisterInstance[T any](r *StaticRegistry, name string, instance T) error {
	return Register(r, name, func() (T, error) {
		return instance, nil
	})
}

func (r *StaticRegistry) register(capability reflect.Type, name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.discovered[capability]; ok {
		return fmt.Errorf("register %q [%v]: %w", name, capability, ErrRegistryFrozen)
	}
	for _, reg := range r.registrations[capability] {
		if reg.name == name {
			panic(fmt.Sprintf("spi: provider %q already registered for %v", name, capability))
		}
	}
	r.registrations[capability] = append(r.registrations[capability], registration{name: name, factory: factory})
	level.Debug(r.logger).Log("msg", "registered provider", "capability", capability, "provider", name)
	return nil
}

// Services returns the instances registered for capability, discovering them
// on first access.
func (r *StaticRegistry) Services(capability reflect.Type) []any {
	r.mu.Lock()
	d, ok := r.discovered[capability]
	if !ok {
		d = &discovery{}
		r.discovered[capability] = d
	}
	regs := slices.Clone(r.registrations[capability])
	logger := r.logger
	r.mu.Unlock()

	d.once.Do(func() {
		d.services = discover(capability, regs, logger)
	})
	return slices.Clone(d.services)
}

func discover(capability reflect.Type, regs []registration, logger log.Logger) []any {
	services := make([]any, 0, len(regs))
	for _, reg := range regs {
		instance, err := construct(reg)
		if err != nil {
			level.Warn(logger).Log("msg", "provider construction failed", "capability", capability, "provider", reg.name, "err", err)
			continue
		}
		services = append(services, instance)
	}
	level.Debug(logger).Log("msg", "discovered providers", "capability", capability, "count", len(services))
	return services
}

// construct isolates a single factory call, converting panics into errors.
func construct(reg registration) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	instance, err = reg.factory()
	if err == nil && instance == nil {
		err = errors.New("factory returned nil")
	}
	return instance, err
}

var (
	defaultOnce     sync.Once
	defaultRegistry *StaticRegistry
)

// Default returns the process-wide registry. It is created on first use.
func Default() *StaticRegistry {
	defaultOnce.Do(func() {
		defaultRegistry = NewStaticRegistry(log.NewNopLogger())
	})
	return defaultRegistry
}
