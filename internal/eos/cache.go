package eos

import (
	"log/slog"
	"sync"
)

// Cache memoizes constructed EOS surfaces per composition label for the
// life of a run. Get-or-build is a single locked operation, so a cache
// may be shared by sequential evaluations; concurrent sweeps should give
// each worker its own cache instead of contending on one.
type Cache struct {
	mu      sync.Mutex
	log     *slog.Logger
	entries map[string]*cacheEntry

	hits     int
	rebuilds int
}

type cacheEntry struct {
	eos  *EOS
	desc descriptor
}

func NewCache(log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{log: log, entries: make(map[string]*cacheEntry)}
}

// OceanEOS returns a solution EOS valid over the requested ranges,
// reusing or widening the cached surface under the same label.
func (c *Cache) OceanEOS(spec OceanSpec) (*EOS, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return getOrBuild(c, spec.label(), descriptor{p: spec.P, t: spec.T},
		func(p, t Range) (*EOS, error) {
			s := spec
			s.P, s.T = p, t
			return buildOcean(s)
		})
}

// IceEOS returns a single-phase ice EOS valid over the requested ranges,
// with the same reuse policy as OceanEOS.
func (c *Cache) IceEOS(spec IceSpec) (*EOS, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return getOrBuild(c, spec.label(), descriptor{p: spec.P, t: spec.T},
		func(p, t Range) (*EOS, error) {
			s := spec
			s.P, s.T = p, t
			return buildIceEOS(s)
		})
}

// getOrBuild implements the memoization policy: exact descriptor match or
// a contained range reuses the entry; anything wider rebuilds over the
// union of old and new ranges and replaces the entry under its label. A
// failed build leaves the previous entry untouched.
func getOrBuild(c *Cache, label string, want descriptor, build func(p, t Range) (*EOS, error)) (*EOS, error) {
	if prev, ok := c.entries[label]; ok {
		if prev.desc.digest() == want.digest() || prev.desc.contains(want) {
			c.hits++
			return prev.eos, nil
		}
		want = prev.desc.union(want)
		c.rebuilds++
		c.log.Debug("widening cached EOS", "label", label,
			"p_max", want.p.Max, "t_max", want.t.Max)
	}
	e, err := build(want.p, want.t)
	if err != nil {
		return nil, err
	}
	c.entries[label] = &cacheEntry{eos: e, desc: want}
	return e, nil
}

// Reset drops all entries, forcing recomputation on next request.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.hits = 0
	c.rebuilds = 0
}

// Stats reports entry count, reuse hits, and union rebuilds.
func (c *Cache) Stats() (entries, hits, rebuilds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.hits, c.rebuilds
}
