package logbridge

import (
	"maps"
	"strings"
	"sync"

	"go.uber.org/atomic"
)

// Resolver resolves logger names to tiers by longest configured prefix,
// matching on whole dot-separated segments only: "foo" covers "foo" and
// "foo.bar" but not "foobar".
//
// Resolved names are memoized. The configuration never changes after
// NewResolver, so the cache is never invalidated. Concurrent misses on the
// same name may compute the tier twice; both computations agree.
type Resolver struct {
	tiers  map[string]int
	cache  sync.Map // string -> int
	size   atomic.Int64
	hits   atomic.Uint64
	misses atomic.Uint64
}

// ResolverStats is a snapshot of the resolution cache counters.
type ResolverStats struct {
	Hits   uint64
	Misses uint64
	Size   int64
}

// NewResolver returns a resolver over a private copy of cfg.
func NewResolver(cfg SeverityConfig) *Resolver {
	tiers := make(map[string]int, len(cfg))
	maps.Copy(tiers, cfg)
	return &Resolver{tiers: tiers}
}

// Resolve returns the tier of name, 0 when nothing (not even the root)
// is configured for it. The empty name is the root logger.
func (r *Resolver) Resolve(name string) int {
	if v, ok := r.cache.Load(name); ok {
		r.hits.Inc()
		return v.(int)
	}
	r.misses.Inc()

	tier := r.lookup(name)
	if _, loaded := r.cache.LoadOrStore(name, tier); !loaded {
		r.size.Inc()
	}
	return tier
}

// lookup tests name, then each shorter prefix cut at the last dot, and the
// root last.
func (r *Resolver) lookup(name string) int {
	prefix := name
	for {
		if tier, ok := r.tiers[prefix]; ok {
			return tier
		}
		if prefix == emptyString {
			return 0
		}
		if i := strings.LastIndexByte(prefix, separator); i >= 0 {
			prefix = prefix[:i]
		} else {
			prefix = emptyString
		}
	}
}

// Tiers returns a copy of the configuration.
func (r *Resolver) Tiers() SeverityConfig {
	return Mapping(r.tiers)
}

func (r *Resolver) Stats() ResolverStats {
	return ResolverStats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Size:   r.size.Load(),
	}
}
