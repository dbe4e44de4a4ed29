// Package content resolves tile keys to displayable content.
//
// A Pool is a fixed list of items reused cyclically across every tile key
// via key mod len(pool), so the whole virtual grid is covered by a handful
// of distinct items.
package content

import (
	"errors"
	"sync/atomic"
)

// ErrEmptyPool is returned when a pool would have no items.
var ErrEmptyPool = errors.New("content pool is empty")

// Item is one displayable piece of content.
type Item struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	URL   string `yaml:"url,omitempty"`
	Color string `yaml:"color,omitempty"`
}

// Resolver maps a tile key to content. Implementations must be
// deterministic and must not block.
type Resolver interface {
	Resolve(key int) Item
}

// Pool is an immutable, non-empty list of items.
type Pool struct {
	items  []Item
	source string
}

// NewPool copies items into a pool. source labels where the items came from
// ("builtin", a file path, a catalog path) for display and logs.
func NewPool(source string, items []Item) (*Pool, error) {
	if len(items) == 0 {
		return nil, ErrEmptyPool
	}
	cp := make([]Item, len(items))
	copy(cp, items)
	return &Pool{items: cp, source: source}, nil
}

// Resolve returns the item at key mod Len. Negative keys wrap too.
func (p *Pool) Resolve(key int) Item {
	n := len(p.items)
	i := key % n
	if i < 0 {
		i += n
	}
	return p.items[i]
}

// Len returns the number of distinct items.
func (p *Pool) Len() int { return len(p.items) }

// Source returns the pool's origin label.
func (p *Pool) Source() string { return p.source }

// Items returns a copy of the pool's items.
func (p *Pool) Items() []Item {
	cp := make([]Item, len(p.items))
	copy(cp, p.items)
	return cp
}

// Swappable is a Resolver whose pool can be replaced while readers keep
// resolving, used when a watched content source reloads.
type Swappable struct {
	pool atomic.Pointer[Pool]
}

// NewSwappable wraps an initial pool.
func NewSwappable(p *Pool) *Swappable {
	s := &Swappable{}
	s.pool.Store(p)
	return s
}

// Resolve delegates to the current pool.
func (s *Swappable) Resolve(key int) Item {
	return s.pool.Load().Resolve(key)
}

// Swap installs p and returns the previous pool. A nil pool is ignored.
func (s *Swappable) Swap(p *Pool) *Pool {
	if p == nil {
		return s.pool.Load()
	}
	return s.pool.Swap(p)
}

// Pool returns the current pool.
func (s *Swappable) Pool() *Pool {
	return s.pool.Load()
}
