package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-catalog/internal/models"
	"storefront-catalog/internal/repository"
)

// memoryRepository implementación en memoria con las mismas garantías que
// los índices únicos de Mongo y el filtro por versión de Replace.
type memoryRepository struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product

	// conflicts fuerza N conflictos de versión en Replace
	conflicts int
	replaces  int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{products: make(map[primitive.ObjectID]models.Product)}
}

func (r *memoryRepository) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(p, primitive.NilObjectID); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Version = 1
	r.products[p.ID] = *p
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[objID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepository) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryRepository) Replace(_ context.Context, p *models.Product, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaces++

	stored, ok := r.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.conflicts > 0 {
		r.conflicts--
		stored.Version++
		r.products[p.ID] = stored
		return repository.ErrVersionConflict
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	if err := r.checkUnique(p, p.ID); err != nil {
		return err
	}
	// views solo lo escribe IncrementViews
	p.Views = stored.Views
	p.UpdatedAt = time.Now().UTC()
	p.Version = expectedVersion + 1
	r.products[p.ID] = *p
	return nil
}

func (r *memoryRepository) IncrementViews(_ context.Context, id string) (*repository.ViewCount, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[objID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Views++
	r.products[objID] = p
	return &repository.ViewCount{Slug: p.Slug, Views: p.Views}, nil
}

func (r *memoryRepository) FindAll(_ context.Context, f repository.ListFilter) ([]*models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		p := p
		out = append(out, &p)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepository) checkUnique(p *models.Product, self primitive.ObjectID) error {
	for id, other := range r.products {
		if id == self {
			continue
		}
		switch {
		case other.SKU == p.SKU:
			return &repository.DuplicateKeyError{Field: "sku"}
		case p.Barcode != "" && other.Barcode == p.Barcode:
			return &repository.DuplicateKeyError{Field: "barcode"}
		case other.Slug == p.Slug:
			return &repository.DuplicateKeyError{Field: "slug"}
		}
	}
	return nil
}
