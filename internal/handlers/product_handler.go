package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-catalog/internal/models"
	"storefront-catalog/internal/repository"
	"storefront-catalog/internal/service"
)

// ProductService operaciones del catálogo que expone la API
type ProductService interface {
	Create(ctx context.Context, in *models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, patch *models.ProductPatch) (*models.Product, error)
	AdjustStock(ctx context.Context, id string, quantity int, direction models.StockDirection) (*models.Product, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, f repository.ListFilter) (*service.ListResult, error)
}

type ProductHandler struct {
	svc     ProductService
	timeout time.Duration
}

func NewProductHandler(svc ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{svc: svc, timeout: timeout}
}

// StockRequest cuerpo de POST /products/:id/stock
type StockRequest struct {
	Quantity  int                   `json:"quantity"`
	Direction models.StockDirection `json:"direction"`
}

func (h *ProductHandler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return c.Request.Context(), func() {}
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// CreateProduct crea un nuevo producto
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	product, err := h.svc.Create(ctx, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProduct obtiene un producto por ID
func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	product, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetProductBySlug obtiene un producto por slug y suma una vista
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	product, err := h.svc.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	views, err := h.svc.IncrementViews(ctx, product.ID.Hex())
	if err != nil {
		// La vista no es crítica para responder el detalle
		log.Warn().Err(err).Str("product_id", product.ID.Hex()).Msg("failed to increment views")
	} else {
		product.Views = views
	}
	c.JSON(http.StatusOK, product)
}

// ListProducts lista productos con paginación, filtros y búsqueda
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	result, err := h.svc.List(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateProduct actualiza parcialmente un producto
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	product, err := h.svc.Update(ctx, c.Param("id"), &patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// AdjustStock registra una venta (decrease) o una reposición (increase)
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	product, err := h.svc.AdjustStock(ctx, c.Param("id"), req.Quantity, req.Direction)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// IncrementViews suma una vista al producto
func (h *ProductHandler) IncrementViews(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	views, err := h.svc.IncrementViews(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "views": views})
}

// respondError traduce errores del servicio a códigos HTTP
func respondError(c *gin.Context, err error) {
	var (
		verr     *service.ValidationError
		conflict *service.ConflictError
		stock    *service.StockError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "violations": verr.Violations})
	case errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, service.ErrEmptyUpdate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "field": conflict.Field})
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{"error": service.ErrInsufficientStock.Error(), "requested": stock.Requested, "available": stock.Available})
	case errors.Is(err, service.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

var errBadQuery = errors.New("invalid query parameter")

type queryError struct{ param string }

func (e *queryError) Error() string { return errBadQuery.Error() + ": " + e.param }
func (e *queryError) Unwrap() error { return errBadQuery }

func parseListFilter(c *gin.Context) (repository.ListFilter, error) {
	f := repository.ListFilter{
		Query:  strings.TrimSpace(c.Query("q")),
		Brand:  strings.TrimSpace(c.Query("brand")),
		Status: models.ProductStatus(c.Query("status")),
		Sort:   c.Query("sort"),
	}

	var err error
	if f.Category, err = objectIDParam(c, "category"); err != nil {
		return f, err
	}
	if f.Subcategory, err = objectIDParam(c, "subcategory"); err != nil {
		return f, err
	}
	if f.Vendor, err = objectIDParam(c, "vendor"); err != nil {
		return f, err
	}
	if f.Featured, err = boolParam(c, "featured"); err != nil {
		return f, err
	}
	if f.NewArrival, err = boolParam(c, "newArrival"); err != nil {
		return f, err
	}
	if f.Bestseller, err = boolParam(c, "bestseller"); err != nil {
		return f, err
	}
	if f.MinPrice, err = floatParam(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = floatParam(c, "maxPrice"); err != nil {
		return f, err
	}
	inStock, err := boolParam(c, "inStock")
	if err != nil {
		return f, err
	}
	f.InStock = inStock != nil && *inStock

	if f.Page, err = intParam(c, "page", 1); err != nil {
		return f, err
	}
	if f.PageSize, err = intParam(c, "pageSize", repository.DefaultPageSize); err != nil {
		return f, err
	}
	return f, nil
}

func objectIDParam(c *gin.Context, name string) (*primitive.ObjectID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, &queryError{param: name}
	}
	return &id, nil
}

func boolParam(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &queryError{param: name}
	}
	return &v, nil
}

func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, &queryError{param: name}
	}
	return &v, nil
}

func intParam(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, &queryError{param: name}
	}
	return v, nil
}
