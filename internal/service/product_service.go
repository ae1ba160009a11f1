package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"storefront-catalog/internal/cache"
	"storefront-catalog/internal/models"
	"storefront-catalog/internal/repository"
	"storefront-catalog/internal/validation"
)

// maxWriteAttempts reintentos del ciclo leer-modificar-escribir ante conflicto de versión
const maxWriteAttempts = 3

// ProductRepository persistencia de productos que necesita el servicio.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	Replace(ctx context.Context, p *models.Product, expectedVersion int64) error
	IncrementViews(ctx context.Context, id string) (*repository.ViewCount, error)
	FindAll(ctx context.Context, f repository.ListFilter) ([]*models.Product, int64, error)
}

// ProductService reglas del catálogo: validación, campos derivados,
// ajustes de stock y contador de vistas.
type ProductService struct {
	repo  ProductRepository
	cache *cache.ProductCache
}

// NewProductService crea el servicio; cache puede ser nil.
func NewProductService(repo ProductRepository, c *cache.ProductCache) *ProductService {
	return &ProductService{repo: repo, cache: c}
}

// ListResult página de productos
type ListResult struct {
	Products   []*models.Product `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int64             `json:"totalPages"`
}

// Create valida el alta, deriva slug y finalPrice, y persiste.
func (s *ProductService) Create(ctx context.Context, in *models.ProductInput) (*models.Product, error) {
	// Las violaciones de tags se reportan junto con las de la entidad
	tagErr := validation.Struct(in)
	if tagErr != nil && !validation.IsValidationError(tagErr) {
		return nil, tagErr
	}

	p := in.ToProduct()
	if err := s.persistNew(ctx, p, tagErr); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateLists(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate product lists")
		}
	}

	log.Info().Str("product_id", p.ID.Hex()).Str("sku", p.SKU).Str("slug", p.Slug).Msg("product created")
	return p, nil
}

// Update aplica un patch parcial, revalida la entidad completa y persiste.
func (s *ProductService) Update(ctx context.Context, id string, patch *models.ProductPatch) (*models.Product, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	tagErr := validation.Struct(patch)
	if tagErr != nil && !validation.IsValidationError(tagErr) {
		return nil, tagErr
	}

	var (
		p       *models.Product
		oldSlug string
	)
	err := s.readModifyWrite(ctx, id, tagErr, func(current *models.Product) error {
		oldSlug = current.Slug
		prevStock := current.Stock
		patch.Apply(current)
		// Un cambio de stock por patch pasa por el mismo guard, salvo que el
		// patch fije el status explícitamente.
		if patch.Stock != nil && patch.Status == nil && current.Stock != prevStock {
			models.ApplyStockStatusGuard(current)
		}
		p = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.ID.Hex(), oldSlug, p.Slug)
	log.Info().Str("product_id", p.ID.Hex()).Int64("version", p.Version).Msg("product updated")
	return p, nil
}

// AdjustStock descuenta (venta) o repone stock y aplica la transición
// automática de status. Una baja mayor al stock disponible se rechaza.
func (s *ProductService) AdjustStock(ctx context.Context, id string, quantity int, direction models.StockDirection) (*models.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if direction != models.StockDecrease && direction != models.StockIncrease {
		return nil, ErrInvalidDirection
	}

	var p *models.Product
	err := s.readModifyWrite(ctx, id, nil, func(current *models.Product) error {
		if direction == models.StockDecrease && quantity > current.Stock {
			return &StockError{Requested: quantity, Available: current.Stock}
		}
		current.AdjustStock(quantity, direction)
		p = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.ID.Hex(), p.Slug)
	log.Info().
		Str("product_id", p.ID.Hex()).
		Str("direction", string(direction)).
		Int("quantity", quantity).
		Int("stock", p.Stock).
		Str("status", string(p.Status)).
		Msg("stock adjusted")
	return p, nil
}

// IncrementViews suma una vista; no recalcula ningún campo derivado.
// Descarta el detalle cacheado por id y por slug; los listados se conservan.
func (s *ProductService) IncrementViews(ctx context.Context, id string) (int64, error) {
	vc, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.DropProduct(ctx, id, vc.Slug); err != nil {
			log.Warn().Err(err).Str("product_id", id).Msg("failed to drop cached product")
		}
	}
	return vc.Views, nil
}

// Get obtiene un producto por id (con caché)
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	if s.cache != nil {
		if p, ok := s.cache.GetProduct(ctx, id); ok {
			return p, nil
		}
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, p)
	return p, nil
}

// GetBySlug obtiene un producto por slug (con caché)
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if s.cache != nil {
		if p, ok := s.cache.GetProductBySlug(ctx, slug); ok {
			return p, nil
		}
	}

	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, p)
	return p, nil
}

// List lista productos con filtros y orden (con caché)
func (s *ProductService) List(ctx context.Context, f repository.ListFilter) (*ListResult, error) {
	key := cache.ListKey(listSignature(f))
	if s.cache != nil {
		var cached ListResult
		if found, err := s.cache.Unmarshal(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	products, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = repository.DefaultPageSize
	}
	result := &ListResult{
		Products:   products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	if s.cache != nil {
		if err := s.cache.Marshal(ctx, key, result); err != nil {
			log.Warn().Err(err).Msg("failed to cache product list")
		}
	}
	return result, nil
}

// readModifyWrite carga el producto, aplica mutate y persiste con control de
// versión, reintentando si otro escritor se adelantó. prior son violaciones
// ya detectadas en el payload; se reportan junto con las de la entidad.
func (s *ProductService) readModifyWrite(ctx context.Context, id string, prior error, mutate func(*models.Product) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		prevName, version := current.Name, current.Version
		if err := mutate(current); err != nil {
			return err
		}

		lastErr = s.persist(ctx, current, prevName, version, prior)
		if !errors.Is(lastErr, ErrVersionConflict) {
			return lastErr
		}
		log.Debug().Str("product_id", id).Int("attempt", attempt).Msg("version conflict, retrying")
	}
	return lastErr
}

// persistNew es el límite de persistencia del alta: deriva, valida y escribe.
func (s *ProductService) persistNew(ctx context.Context, p *models.Product, prior error) error {
	models.Derive(p, nil)
	if err := validation.Merge(prior, validation.Product(p)); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return conflictFrom(err, p)
	}
	return nil
}

// persist es el límite de persistencia de las actualizaciones.
func (s *ProductService) persist(ctx context.Context, p *models.Product, prevName string, version int64, prior error) error {
	models.Derive(p, &prevName)
	if err := validation.Merge(prior, validation.Product(p)); err != nil {
		return err
	}
	if err := s.repo.Replace(ctx, p, version); err != nil {
		return conflictFrom(err, p)
	}
	return nil
}

func (s *ProductService) remember(ctx context.Context, p *models.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProduct(ctx, p); err != nil {
		log.Warn().Err(err).Str("product_id", p.ID.Hex()).Msg("failed to cache product")
	}
}

func (s *ProductService) invalidate(ctx context.Context, id string, slugs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id, slugs...); err != nil {
		log.Warn().Err(err).Str("product_id", id).Msg("failed to invalidate product cache")
	}
}

func conflictFrom(err error, p *models.Product) error {
	var dke *repository.DuplicateKeyError
	if !errors.As(err, &dke) {
		return err
	}
	value := ""
	switch dke.Field {
	case "sku":
		value = p.SKU
	case "barcode":
		value = p.Barcode
	case "slug":
		value = p.Slug
	}
	return &ConflictError{Field: dke.Field, Value: value}
}

func listSignature(f repository.ListFilter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "q=%s|st=%s|br=%s|in=%t|sort=%s|p=%d|ps=%d", f.Query, f.Status, f.Brand, f.InStock, f.Sort, f.Page, f.PageSize)
	if f.Category != nil {
		fmt.Fprintf(&b, "|cat=%s", f.Category.Hex())
	}
	if f.Subcategory != nil {
		fmt.Fprintf(&b, "|sub=%s", f.Subcategory.Hex())
	}
	if f.Vendor != nil {
		fmt.Fprintf(&b, "|ven=%s", f.Vendor.Hex())
	}
	if f.Featured != nil {
		fmt.Fprintf(&b, "|feat=%t", *f.Featured)
	}
	if f.NewArrival != nil {
		fmt.Fprintf(&b, "|new=%t", *f.NewArrival)
	}
	if f.Bestseller != nil {
		fmt.Fprintf(&b, "|best=%t", *f.Bestseller)
	}
	if f.MinPrice != nil {
		fmt.Fprintf(&b, "|min=%g", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		fmt.Fprintf(&b, "|max=%g", *f.MaxPrice)
	}
	return b.String()
}
