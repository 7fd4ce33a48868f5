package raptorq

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// matrixCache keeps systematic encoding matrices by K', blocks with the
// same K' share one immutable build. Memory of kept builds is bounded
// by limit bytes, least recently used are dropped first.
type matrixCache struct {
	items *lru.Cache
	group singleflight.Group
	limit atomic.Int64
	used  atomic.Int64
}

var (
	matricesMx sync.Mutex
	matrices   *matrixCache
)

func newMatrixCache(limit int64) (*matrixCache, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: matrix cache limit should be positive", ErrInvalidParameters)
	}

	c := &matrixCache{}
	items, err := lru.NewWithEvict(len(systematicIndices), func(_, value interface{}) {
		c.used.Add(-value.(*encodingMatrix).memSize())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create matrix cache: %w", err)
	}
	c.items = items
	c.limit.Store(limit)
	return c, nil
}

// sharedMatrices returns the process wide cache limited to limit bytes.
func sharedMatrices(limit int64) (*matrixCache, error) {
	matricesMx.Lock()
	defer matricesMx.Unlock()

	if matrices == nil {
		c, err := newMatrixCache(limit)
		if err != nil {
			return nil, err
		}
		matrices = c
		return c, nil
	}

	if limit <= 0 {
		return nil, fmt.Errorf("%w: matrix cache limit should be positive", ErrInvalidParameters)
	}
	if matrices.limit.Swap(limit) != limit {
		matrices.evict()
	}
	return matrices, nil
}

// systematic returns the matrix solving the extended source block of K' symbols.
func (c *matrixCache) systematic(p *blockParams) (*encodingMatrix, error) {
	if v, ok := c.items.Get(p.KPrime); ok {
		return v.(*encodingMatrix), nil
	}

	v, err, _ := c.group.Do(strconv.FormatUint(uint64(p.KPrime), 10), func() (interface{}, error) {
		if v, ok := c.items.Get(p.KPrime); ok {
			return v, nil
		}

		ext, err := calcParams(p.KPrime)
		if err != nil {
			return nil, err
		}

		isis := make([]uint32, ext.KPrime)
		for i := range isis {
			isis[i] = uint32(i)
		}

		m := buildMatrix(ext, isis)
		c.add(p.KPrime, m)
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build matrix for %d symbols: %w", p.KPrime, err)
	}
	return v.(*encodingMatrix), nil
}

// add keeps the matrix unless it alone does not fit into the limit.
func (c *matrixCache) add(kPrime uint32, m *encodingMatrix) {
	size := m.memSize()
	if size > c.limit.Load() {
		Logger("[RAPTORQ] matrix for", kPrime, "symbols takes", size, "bytes, not cached")
		return
	}

	if ok, _ := c.items.ContainsOrAdd(kPrime, m); ok {
		return
	}
	c.used.Add(size)
	c.evict()
}

func (c *matrixCache) evict() {
	for c.used.Load() > c.limit.Load() {
		if _, _, ok := c.items.RemoveOldest(); !ok {
			return
		}
	}
}

func (c *matrixCache) len() int {
	return c.items.Len()
}

// size returns bytes held by kept matrices.
func (c *matrixCache) size() int64 {
	return c.used.Load()
}
