package imageload

import (
	"context"
	"image"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var _ Loader = (*Cache)(nil)

type result struct {
	img image.Image
	err error
}

// Cache deduplicates loads by reference. Concurrent requests for the same
// reference share one underlying load, and completed results (failures
// included) are reused by later requesters.
type Cache struct {
	loader Loader
	logger *zap.Logger

	group   singleflight.Group
	mu      sync.Mutex
	results map[string]result
}

func NewCache(loader Loader, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		loader:  loader,
		logger:  logger.Named("imageload"),
		results: make(map[string]result),
	}
}

func (c *Cache) Load(ctx context.Context, ref string) (image.Image, error) {
	if r, ok := c.cached(ref); ok {
		return r.img, r.err
	}

	v, _, _ := c.group.Do(ref, func() (any, error) {
		if r, ok := c.cached(ref); ok {
			return r, nil
		}
		// in-flight loads are shared, so one requester's cancellation must not fail the others
		img, err := c.loader.Load(context.WithoutCancel(ctx), ref)
		if err != nil {
			c.logger.Debug("image load failed", zap.String("reference", ref), zap.Error(err))
		}
		r := result{img: img, err: err}
		c.mu.Lock()
		c.results[ref] = r
		c.mu.Unlock()
		return r, nil
	})

	r := v.(result)
	return r.img, r.err
}

// Len reports how many references have a completed result.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

func (c *Cache) cached(ref string) (result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[ref]
	return r, ok
}
