package rates

import (
	"container/list"
	"sync"
	"time"

	"github.com/rhinoxpay/rhinoxcore/common"
)

// quoteCache is a small concurrency-safe LRU with per-entry TTL used for
// read-through rate resolution.
type quoteCache struct {
	mu    sync.Mutex
	cap   int
	ttl   time.Duration
	clock common.Clock
	l     *list.List
	items map[string]*list.Element
}

type cacheItem struct {
	key      string
	quote    *Quote
	deadline time.Time
}

func newQuoteCache(capacity int, ttl time.Duration, clock common.Clock) *quoteCache {
	return &quoteCache{
		cap:   capacity,
		ttl:   ttl,
		clock: clock,
		l:     list.New(),
		items: make(map[string]*list.Element),
	}
}

func (c *quoteCache) get(key string) *Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil
	}
	it := el.Value.(*cacheItem)
	if c.clock.Now().After(it.deadline) {
		c.l.Remove(el)
		delete(c.items, key)
		return nil
	}
	c.l.MoveToFront(el)
	return it.quote
}

func (c *quoteCache) add(key string, q *Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline := c.clock.Now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		c.l.MoveToFront(el)
		it := el.Value.(*cacheItem)
		it.quote = q
		it.deadline = deadline
		return
	}
	el := c.l.PushFront(&cacheItem{key: key, quote: q, deadline: deadline})
	c.items[key] = el
	if c.l.Len() > c.cap {
		oldest := c.l.Back()
		if oldest != nil {
			c.l.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheItem).key)
		}
	}
}

func (c *quoteCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l.Init()
	c.items = make(map[string]*list.Element)
}
