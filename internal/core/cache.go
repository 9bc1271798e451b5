package core

// cache.go holds the rendered blog page in an expiring LRU so the public
// page does not hit the database on every request. A successful upload
// invalidates the cached entry; the TTL covers writes made outside this
// process.

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	renderCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogcms_render_cache_hits_total",
		Help: "Number of blog page renders served from cache.",
	})
	renderCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogcms_render_cache_misses_total",
		Help: "Number of blog page renders that required a database read.",
	})
)

const renderCacheKey = "blog"

// renderCacheTTL bounds staleness when content changes without going
// through this process (e.g. manual database edits).
const renderCacheTTL = 5 * time.Minute

type renderCache struct {
	lru *expirable.LRU[string, string]
}

func newRenderCache() *renderCache {
	return &renderCache{
		lru: expirable.NewLRU[string, string](1, nil, renderCacheTTL),
	}
}

func (c *renderCache) Get() (string, bool) {
	html, ok := c.lru.Get(renderCacheKey)
	if ok {
		renderCacheHits.Inc()
		return html, true
	}
	renderCacheMisses.Inc()
	return "", false
}

func (c *renderCache) Set(html string) {
	c.lru.Add(renderCacheKey, html)
}

func (c *renderCache) Invalidate() {
	c.lru.Remove(renderCacheKey)
}
