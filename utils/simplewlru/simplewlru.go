// Package simplewlru is an LRU cache bounded both by the number of entries
// and by their total weight. It isn't safe for concurrent use.
package simplewlru

import (
	"container/list"
	"errors"
)

// Cache evicts the least recently added or updated entries when a limit is exceeded.
type Cache[K comparable, V any] struct {
	order   *list.List // front is the newest
	items   map[K]*list.Element
	weight  uint
	limitW  uint
	limitN  int
	onEvict func(key K, value V)
}

type entry[K comparable, V any] struct {
	key    K
	value  V
	weight uint
}

func New[K comparable, V any](maxWeight uint, maxSize int) (*Cache[K, V], error) {
	return NewWithEvict[K, V](maxWeight, maxSize, nil)
}

// NewWithEvict makes a cache which calls onEvict for every entry dropped
// to fit the limits. Remove and Purge don't call it.
func NewWithEvict[K comparable, V any](maxWeight uint, maxSize int, onEvict func(key K, value V)) (*Cache[K, V], error) {
	if maxSize < 0 {
		return nil, errors.New("negative cache size")
	}
	return &Cache[K, V]{
		order:   list.New(),
		items:   make(map[K]*list.Element),
		limitW:  maxWeight,
		limitN:  maxSize,
		onEvict: onEvict,
	}, nil
}

// Add inserts or updates the entry and returns the number of evicted ones.
// An entry heavier than the whole limit evicts everything including itself.
func (c *Cache[K, V]) Add(key K, value V, weight uint) (evicted int) {
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		c.weight = c.weight - e.weight + weight
		e.value, e.weight = value, weight
		c.order.MoveToFront(el)
	} else {
		c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, weight: weight})
		c.weight += weight
	}
	for c.weight > c.limitW || c.order.Len() > c.limitN {
		c.drop(c.order.Back(), true)
		evicted++
	}
	return evicted
}

// Peek returns the value without refreshing the entry.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	el, ok := c.items[key]
	if !ok {
		return value, false
	}
	return el.Value.(*entry[K, V]).value, true
}

func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

func (c *Cache[K, V]) Remove(key K) bool {
	el, ok := c.items[key]
	if ok {
		c.drop(el, false)
	}
	return ok
}

// Keys from the oldest to the newest.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.items))
	for el := c.order.Back(); el != nil; el = el.Prev() {
		keys = append(keys, el.Value.(*entry[K, V]).key)
	}
	return keys
}

func (c *Cache[K, V]) Len() int {
	return c.order.Len()
}

func (c *Cache[K, V]) Weight() uint {
	return c.weight
}

func (c *Cache[K, V]) Purge() {
	c.items = make(map[K]*list.Element)
	c.order.Init()
	c.weight = 0
}

func (c *Cache[K, V]) drop(el *list.Element, evicted bool) {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.items, e.key)
	c.weight -= e.weight
	if evicted && c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}
