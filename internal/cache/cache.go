package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store backend de caché de bytes con TTL. Lo implementan MemoryStore y RedisStore.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

type cacheItem struct {
	value      []byte
	expiration int64
}

// MemoryStore caché en memoria del proceso
type MemoryStore struct {
	items map[string]cacheItem
	mu    sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryStore crea el caché y arranca la limpieza periódica de expirados
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	c := &MemoryStore{
		items: make(map[string]cacheItem),
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanupExpired(cleanupInterval)
	}
	return c
}

// Set guarda un valor en caché
func (c *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl).UnixNano(),
	}
	return nil
}

// Get obtiene un valor del caché
func (c *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found || time.Now().UnixNano() > item.expiration {
		return nil, false, nil
	}
	return item.value, true, nil
}

// Delete elimina uno o más valores del caché
func (c *MemoryStore) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

// DeleteByPrefix elimina todas las claves que empiecen con un prefijo
func (c *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

// Size retorna el número de items en caché
func (c *MemoryStore) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close detiene la limpieza periódica
func (c *MemoryStore) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

// cleanupExpired limpia items expirados periódicamente
func (c *MemoryStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now().UnixNano()
			for key, item := range c.items {
				if now > item.expiration {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
