package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"procap-study-service/internal/app"
	"procap-study-service/internal/domain"
)

// NotebookCache caches the notebook listing with TTL to avoid hitting the
// gateway on every visit to the study-setup screen. Notebooks are small and
// read-only, so single lookups are served from the cached listing too.
type NotebookCache struct {
	source app.NotebookRepository
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	notebooks []domain.QuestionNotebook
	expiresAt time.Time
}

func NewNotebookCache(source app.NotebookRepository, ttl time.Duration) *NotebookCache {
	return &NotebookCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *NotebookCache) ListNotebooks(ctx context.Context) ([]domain.QuestionNotebook, error) {
	now := c.clock()

	c.mu.RLock()
	if c.notebooks != nil && c.expiresAt.After(now) {
		cached := c.notebooks
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("notebooks", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.notebooks != nil && c.expiresAt.After(now) {
			cached := c.notebooks
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		notebooks, err := c.source.ListNotebooks(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.notebooks = notebooks
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return notebooks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionNotebook), nil
}

func (c *NotebookCache) FindNotebook(ctx context.Context, id string) (domain.QuestionNotebook, bool, error) {
	notebooks, err := c.ListNotebooks(ctx)
	if err != nil {
		return domain.QuestionNotebook{}, false, err
	}
	for _, nb := range notebooks {
		if nb.ID == id {
			return nb, true, nil
		}
	}
	return domain.QuestionNotebook{}, false, nil
}

func (c *NotebookCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
