package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-catalog/internal/models"
)

const (
	productKeyPrefix = "product:"
	slugKeyPrefix    = "product:slug:"
	listKeyPrefix    = "products:list:"
)

// ProductCache caché de detalle y de listados de productos sobre un Store.
type ProductCache struct {
	store Store
	ttl   time.Duration
}

func NewProductCache(store Store, ttl time.Duration) *ProductCache {
	return &ProductCache{store: store, ttl: ttl}
}

func productKey(id string) string { return productKeyPrefix + id }
func slugKey(slug string) string  { return slugKeyPrefix + slug }

// ListKey clave de un listado a partir de su firma de filtros
func ListKey(signature string) string { return listKeyPrefix + signature }

// GetProduct busca un producto por id
func (c *ProductCache) GetProduct(ctx context.Context, id string) (*models.Product, bool) {
	return c.getProduct(ctx, productKey(id))
}

// GetProductBySlug busca un producto por slug
func (c *ProductCache) GetProductBySlug(ctx context.Context, slug string) (*models.Product, bool) {
	return c.getProduct(ctx, slugKey(slug))
}

func (c *ProductCache) getProduct(ctx context.Context, key string) (*models.Product, bool) {
	var p models.Product
	found, err := c.Unmarshal(ctx, key, &p)
	if err != nil || !found {
		return nil, false
	}
	return &p, true
}

// SetProduct guarda el producto bajo su id y su slug
func (c *ProductCache) SetProduct(ctx context.Context, p *models.Product) error {
	id := p.ID.Hex()
	if err := c.Marshal(ctx, productKey(id), p); err != nil {
		return err
	}
	return c.Marshal(ctx, slugKey(p.Slug), p)
}

// InvalidateProduct borra el detalle y todos los listados.
// slugs incluye el slug anterior cuando el nombre cambió.
func (c *ProductCache) InvalidateProduct(ctx context.Context, id string, slugs ...string) error {
	if err := c.DropProduct(ctx, id, slugs...); err != nil {
		return err
	}
	return c.InvalidateLists(ctx)
}

// DropProduct borra solo las entradas de detalle
func (c *ProductCache) DropProduct(ctx context.Context, id string, slugs ...string) error {
	keys := []string{productKey(id)}
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, slugKey(s))
		}
	}
	return c.store.Delete(ctx, keys...)
}

// InvalidateLists borra todos los listados cacheados
func (c *ProductCache) InvalidateLists(ctx context.Context) error {
	return c.store.DeleteByPrefix(ctx, listKeyPrefix)
}

// Marshal serializa y guarda en caché
func (c *ProductCache) Marshal(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.store.Set(ctx, key, data, c.ttl)
}

// Unmarshal obtiene y deserializa del caché
func (c *ProductCache) Unmarshal(ctx context.Context, key string, target any) (bool, error) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, err
	}
	return true, nil
}
