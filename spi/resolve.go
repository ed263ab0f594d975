package spi

import (
	"fmt"
	"regexp"
	"slices"
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Named is implemented by every provider. Names must be stable and unique per
// capability; they drive ordering and filtering.
type Named interface {
	Name() string
}

// Resolver runs the resolution protocol over the providers of one capability.
// It is immutable after construction and safe for concurrent use.
type Resolver[P Named] struct {
	capability   string
	providers    []P
	defaultChain []string
	logger       log.Logger
}

// NewResolver returns a resolver over providers. When defaultChain is empty the
// default chain is every provider name, sorted lexicographically.
func NewResolver[P Named](capability string, providers []P, defaultChain []string, logger log.Logger) *Resolver[P] {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if len(defaultChain) == 0 {
		defaultChain = sortedNames(providers)
	}
	return &Resolver[P]{
		capability:   capability,
		providers:    slices.Clone(providers),
		defaultChain: slices.Clone(defaultChain),
		logger:       logger,
	}
}

func sortedNames[P Named](providers []P) []string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return slices.Compact(names)
}

// Providers returns all providers in discovery order.
func (r *Resolver[P]) Providers() []P {
	return slices.Clone(r.providers)
}

// ProviderNames returns the names of all providers, sorted.
func (r *Resolver[P]) ProviderNames() []string {
	return sortedNames(r.providers)
}

// DefaultChain returns the provider names queried when a query names none.
func (r *Resolver[P]) DefaultChain() []string {
	return slices.Clone(r.defaultChain)
}

// Provider returns the provider registered under name.
func (r *Resolver[P]) Provider(name string) (P, bool) {
	for _, p := range r.providers {
		if p.Name() == name {
			return p, true
		}
	}
	var zero P
	return zero, false
}

// Chain returns the providers to invoke, in order, for the given query provider
// names. An empty list selects the default chain. Matching is by exact name;
// names without a provider are skipped.
func (r *Resolver[P]) Chain(names []string) []P {
	if len(names) == 0 {
		names = r.defaultChain
	}
	chain := make([]P, 0, len(names))
	for _, name := range names {
		found := false
		for _, p := range r.providers {
			if p.Name() == name {
				chain = append(chain, p)
				found = true
			}
		}
		if !found {
			level.Debug(r.logger).Log("msg", "no provider with name", "capability", r.capability, "provider", name)
		}
	}
	return chain
}

// Match is like Chain but a name without an exact match is used as a regular
// expression that must match a whole provider name. Each provider appears once.
func (r *Resolver[P]) Match(patterns []string) []P {
	if len(patterns) == 0 {
		return r.Chain(nil)
	}
	seen := map[string]bool{}
	var matched []P
	add := func(p P) {
		if !seen[p.Name()] {
			seen[p.Name()] = true
			matched = append(matched, p)
		}
	}
	for _, pattern := range patterns {
		exact := r.Chain([]string{pattern})
		if len(exact) > 0 {
			for _, p := range exact {
				add(p)
			}
			continue
		}
		re, err := regexp.Compile("^(?:" + pattern + ")$")
		if err != nil {
			level.Warn(r.logger).Log("msg", "invalid provider pattern", "capability", r.capability, "pattern", pattern, "err", err)
			continue
		}
		for _, p := range r.providers {
			if re.MatchString(p.Name()) {
				add(p)
			}
		}
	}
	return matched
}

// First invokes fn on each provider of chain in order and returns the first
// result reported as found. Failing providers are logged and skipped.
func First[P Named, R any](r *Resolver[P], chain []P, query any, fn func(P) (R, bool, error)) (R, bool) {
	type result struct {
		value R
		found bool
	}
	for _, p := range chain {
		res, err := call(r, p, query, func(p P) (result, error) {
			v, ok, err := fn(p)
			return result{value: v, found: ok}, err
		})
		if err == nil && res.found {
			return res.value, true
		}
	}
	var zero R
	return zero, false
}

// Collect invokes fn on every provider of chain and returns the union of their
// results in chain order, dropping values whose key was already seen.
func Collect[P Named, R any, K comparable](r *Resolver[P], chain []P, query any, fn func(P) ([]R, error), key func(R) K) []R {
	seen := map[K]bool{}
	var all []R
	for _, p := range chain {
		results, err := call(r, p, query, fn)
		if err != nil {
			continue
		}
		for _, v := range results {
			k := key(v)
			if seen[k] {
				continue
			}
			seen[k] = true
			all = append(all, v)
		}
	}
	return all
}

// call invokes fn on a single provider, recovering panics. Any failure is
// logged with the provider and the query.
func call[P Named, Z any](r *Resolver[P], p P, query any, fn func(P) (Z, error)) (z Z, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		if err != nil {
			level.Warn(r.logger).Log(
				"msg", "provider failed",
				"capability", r.capability,
				"provider", p.Name(),
				"query", query,
				"err", err,
			)
		}
	}()
	return fn(p)
}
