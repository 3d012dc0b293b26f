package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/LegacyCodeHQ/codegraph/formatters"
)

// Key identifies one analysis request.
type Key struct {
	RepoURL      string
	MaxFiles     int
	IncludeTests bool
}

func (k Key) String() string {
	return fmt.Sprintf("%s|max=%d|tests=%t", k.RepoURL, k.MaxFiles, k.IncludeTests)
}

// AnalysisCache memoizes analysis responses for a bounded time and collapses
// concurrent requests for the same key into one analysis. Cached responses are
// shared and must not be mutated.
type AnalysisCache struct {
	// Timeout bounds one shared analysis. Zero leaves it unbounded.
	Timeout time.Duration

	lru   *expirable.LRU[string, formatters.AnalyzeResponse]
	group singleflight.Group
}

// panicked carries a panic out of the shared analysis so it is raised again
// in every waiting caller instead of crashing the process.
type panicked struct {
	value any
}

func (p panicked) Error() string {
	return fmt.Sprintf("analysis panicked: %v", p.value)
}

// New returns a cache holding at most size entries for ttl. A size of zero
// disables storage; concurrent identical requests are still collapsed.
func New(size int, ttl time.Duration) *AnalysisCache {
	c := &AnalysisCache{}
	if size > 0 {
		c.lru = expirable.NewLRU[string, formatters.AnalyzeResponse](size, nil, ttl)
	}
	return c
}

// Get returns a cached response.
func (c *AnalysisCache) Get(key Key) (formatters.AnalyzeResponse, bool) {
	if c.lru == nil {
		return formatters.AnalyzeResponse{}, false
	}
	return c.lru.Get(key.String())
}

// Do returns the cached response for key or runs analyze and caches its
// successful result. cached reports whether the caller did not start the
// analysis itself.
//
// The shared analysis keeps the first caller's context values but not its
// cancellation, so one caller leaving does not fail the others. Each caller
// stops waiting when its own ctx is done.
func (c *AnalysisCache) Do(ctx context.Context, key Key, analyze func(context.Context) (formatters.AnalyzeResponse, error)) (resp formatters.AnalyzeResponse, cached bool, err error) {
	if resp, ok := c.Get(key); ok {
		return resp, true, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (v interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = panicked{value: r}
			}
		}()

		workCtx := detached
		if c.Timeout > 0 {
			var cancel context.CancelFunc
			workCtx, cancel = context.WithTimeout(detached, c.Timeout)
			defer cancel()
		}
		resp, err := analyze(workCtx)
		if err != nil {
			return nil, err
		}
		if c.lru != nil {
			c.lru.Add(key.String(), resp)
		}
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return formatters.AnalyzeResponse{}, false, ctx.Err()
	case res := <-ch:
		var p panicked
		if errors.As(res.Err, &p) {
			panic(p.value)
		}
		if res.Err != nil {
			return formatters.AnalyzeResponse{}, false, res.Err
		}
		return res.Val.(formatters.AnalyzeResponse), res.Shared, nil
	}
}

// Len returns the number of live entries.
func (c *AnalysisCache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge drops every entry.
func (c *AnalysisCache) Purge() {
	if c.lru != nil {
		c.lru.Purge()
	}
}
