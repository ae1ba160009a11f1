package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStatus estado de merchandising del producto
type ProductStatus string

const (
	StatusDraft        ProductStatus = "draft"
	StatusActive       ProductStatus = "active"
	StatusInactive     ProductStatus = "inactive"
	StatusOutOfStock   ProductStatus = "out_of_stock"
	StatusDiscontinued ProductStatus = "discontinued"
)

// StockStatus se deriva de stock y lowStockThreshold; nunca se persiste.
type StockStatus string

const (
	StockOutOfStock StockStatus = "out_of_stock"
	StockLow        StockStatus = "low_stock"
	StockIn         StockStatus = "in_stock"
)

const DefaultLowStockThreshold = 10

// Product representa un producto en el catálogo
type Product struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SKU     string             `json:"sku" bson:"sku"`
	Barcode string             `json:"barcode,omitempty" bson:"barcode,omitempty"`
	Slug    string             `json:"slug" bson:"slug"`

	Name             string          `json:"name" bson:"name"`
	Description      string          `json:"description" bson:"description"`
	ShortDescription string          `json:"shortDescription,omitempty" bson:"short_description,omitempty"`
	Brand            string          `json:"brand,omitempty" bson:"brand,omitempty"`
	Features         []string        `json:"features,omitempty" bson:"features,omitempty"`
	Tags             []string        `json:"tags,omitempty" bson:"tags,omitempty"`
	Specifications   []Specification `json:"specifications,omitempty" bson:"specifications,omitempty"`

	Price        float64  `json:"price" bson:"price"`
	ComparePrice *float64 `json:"comparePrice,omitempty" bson:"compare_price,omitempty"`
	CostPrice    *float64 `json:"costPrice,omitempty" bson:"cost_price,omitempty"`
	Discount     float64  `json:"discount" bson:"discount"`
	FinalPrice   float64  `json:"finalPrice" bson:"final_price"`

	Stock             int `json:"stock" bson:"stock"`
	LowStockThreshold int `json:"lowStockThreshold" bson:"low_stock_threshold"`

	Category    primitive.ObjectID   `json:"category" bson:"category"`
	Subcategory *primitive.ObjectID  `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	Vendor      primitive.ObjectID   `json:"vendor" bson:"vendor"`
	Reviews     []primitive.ObjectID `json:"reviews,omitempty" bson:"reviews,omitempty"`

	Images     []Image      `json:"images,omitempty" bson:"images,omitempty"`
	Variants   []Variant    `json:"variants,omitempty" bson:"variants,omitempty"`
	Weight     *Weight      `json:"weight,omitempty" bson:"weight,omitempty"`
	Dimensions *Dimensions  `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Shipping   ShippingInfo `json:"shipping" bson:"shipping"`

	Status       ProductStatus `json:"status" bson:"status"`
	IsFeatured   bool          `json:"isFeatured" bson:"is_featured"`
	IsNewArrival bool          `json:"isNewArrival" bson:"is_new_arrival"`
	IsBestseller bool          `json:"isBestseller" bson:"is_bestseller"`

	Views   int64   `json:"views" bson:"views"`
	Sales   int64   `json:"sales" bson:"sales"`
	Ratings Ratings `json:"ratings" bson:"ratings"`

	SEO SEO `json:"seo" bson:"seo"`

	CreatedAt   time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updated_at"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" bson:"published_at,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" bson:"expires_at,omitempty"`

	// Version token de concurrencia optimista; se incrementa en cada escritura completa.
	Version int64 `json:"version" bson:"version"`
}

type Specification struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

type Image struct {
	PublicID  string `json:"publicId,omitempty" bson:"public_id,omitempty"`
	URL       string `json:"url" bson:"url"`
	AltText   string `json:"altText,omitempty" bson:"alt_text,omitempty"`
	IsDefault bool   `json:"isDefault" bson:"is_default"`
}

type Variant struct {
	Name    string          `json:"name" bson:"name"`
	Options []VariantOption `json:"options" bson:"options"`
}

type VariantOption struct {
	Value string   `json:"value" bson:"value"`
	Price *float64 `json:"price,omitempty" bson:"price,omitempty"`
	Stock *int     `json:"stock,omitempty" bson:"stock,omitempty"`
	SKU   string   `json:"sku,omitempty" bson:"sku,omitempty"`
	Image string   `json:"image,omitempty" bson:"image,omitempty"`
}

type Weight struct {
	Value float64 `json:"value" bson:"value"`
	Unit  string  `json:"unit" bson:"unit"`
}

type Dimensions struct {
	Length float64 `json:"length" bson:"length"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Unit   string  `json:"unit" bson:"unit"`
}

type ShippingInfo struct {
	IsFreeShipping    bool               `json:"isFreeShipping" bson:"is_free_shipping"`
	ShippingCost      float64            `json:"shippingCost" bson:"shipping_cost"`
	EstimatedDelivery *EstimatedDelivery `json:"estimatedDelivery,omitempty" bson:"estimated_delivery,omitempty"`
}

type EstimatedDelivery struct {
	Min  int    `json:"min" bson:"min"`
	Max  int    `json:"max" bson:"max"`
	Unit string `json:"unit" bson:"unit"`
}

type Ratings struct {
	Average float64 `json:"average" bson:"average"`
	Count   int64   `json:"count" bson:"count"`
}

type SEO struct {
	MetaTitle       string   `json:"metaTitle,omitempty" bson:"meta_title,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty" bson:"meta_description,omitempty"`
	MetaKeywords    []string `json:"metaKeywords,omitempty" bson:"meta_keywords,omitempty"`
	CanonicalURL    string   `json:"canonicalUrl,omitempty" bson:"canonical_url,omitempty"`
}

// StockStatus calcula el estado de inventario actual
func (p *Product) StockStatus() StockStatus {
	return ComputeStockStatus(p.Stock, p.LowStockThreshold)
}

// DiscountPercentage usa comparePrice cuando es mayor al precio; si no, el descuento declarado.
func (p *Product) DiscountPercentage() float64 {
	if p.ComparePrice != nil && *p.ComparePrice > p.Price {
		return percentOff(*p.ComparePrice, p.Price)
	}
	return p.Discount
}

// MarshalJSON agrega los campos derivados que no se persisten.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		StockStatus        StockStatus `json:"stockStatus"`
		DiscountPercentage float64     `json:"discountPercentage"`
	}{
		plain:              plain(p),
		StockStatus:        p.StockStatus(),
		DiscountPercentage: p.DiscountPercentage(),
	})
}

// ComputeStockStatus 0 → out_of_stock; ≤ umbral → low_stock; resto → in_stock.
func ComputeStockStatus(stock, threshold int) StockStatus {
	switch {
	case stock <= 0:
		return StockOutOfStock
	case stock <= threshold:
		return StockLow
	default:
		return StockIn
	}
}
