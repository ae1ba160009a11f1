package cache

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-catalog/internal/models"
)

func TestMemoryStoreExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore(0)
	defer c.Close()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), -time.Second)

	if v, ok, _ := c.Get(ctx, "a"); !ok || string(v) != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatal("Get(b) returned an expired item")
	}
}

func TestMemoryStoreDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore(0)
	defer c.Close()

	for _, k := range []string{"products:list:1", "products:list:2", "product:x"} {
		_ = c.Set(ctx, k, []byte("v"), time.Minute)
	}
	_ = c.DeleteByPrefix(ctx, "products:list:")

	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}
	if _, ok, _ := c.Get(ctx, "product:x"); !ok {
		t.Fatal("product:x was removed")
	}
}

func TestMemoryStoreCloseIsIdempotent(t *testing.T) {
	c := NewMemoryStore(time.Millisecond)
	_ = c.Close()
	_ = c.Close()
}

func TestProductCache(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	defer store.Close()
	pc := NewProductCache(store, time.Minute)

	p := &models.Product{ID: primitive.NewObjectID(), Name: "Desk Lamp", Slug: "desk-lamp", Price: 40, Stock: 3, LowStockThreshold: 10}
	if err := pc.SetProduct(ctx, p); err != nil {
		t.Fatalf("SetProduct() error = %v", err)
	}
	if err := pc.Marshal(ctx, ListKey("p1"), []string{"x"}); err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, ok := pc.GetProduct(ctx, p.ID.Hex())
	if !ok || got.ID != p.ID || got.Name != p.Name {
		t.Fatalf("GetProduct() = %+v, %v", got, ok)
	}
	if _, ok := pc.GetProductBySlug(ctx, "desk-lamp"); !ok {
		t.Fatal("GetProductBySlug() miss")
	}

	if err := pc.InvalidateProduct(ctx, p.ID.Hex(), p.Slug); err != nil {
		t.Fatalf("InvalidateProduct() error = %v", err)
	}
	if _, ok := pc.GetProduct(ctx, p.ID.Hex()); ok {
		t.Fatal("product still cached after invalidation")
	}
	if _, ok := pc.GetProductBySlug(ctx, "desk-lamp"); ok {
		t.Fatal("slug still cached after invalidation")
	}
	var list []string
	if found, _ := pc.Unmarshal(ctx, ListKey("p1"), &list); found {
		t.Fatal("list still cached after invalidation")
	}
}
