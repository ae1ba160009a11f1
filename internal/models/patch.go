package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductPatch representa los campos actualizables de un producto.
// Un campo nil no se modifica; las colecciones se reemplazan completas.
type ProductPatch struct {
	SKU     *string `json:"sku,omitempty" validate:"omitnil,min=1,max=100"`
	Barcode *string `json:"barcode,omitempty" validate:"omitnil,max=100"`

	Name             *string         `json:"name,omitempty" validate:"omitnil,min=1,max=200"`
	Description      *string         `json:"description,omitempty" validate:"omitnil,min=1,max=5000"`
	ShortDescription *string         `json:"shortDescription,omitempty" validate:"omitnil,max=500"`
	Brand            *string         `json:"brand,omitempty" validate:"omitnil,max=200"`
	Features         []string        `json:"features,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	Specifications   []Specification `json:"specifications,omitempty"`

	Price        *float64 `json:"price,omitempty" validate:"omitnil,gte=0"`
	ComparePrice *float64 `json:"comparePrice,omitempty" validate:"omitnil,gte=0"`
	CostPrice    *float64 `json:"costPrice,omitempty" validate:"omitnil,gte=0"`
	Discount     *float64 `json:"discount,omitempty" validate:"omitnil,gte=0,lte=100"`

	Stock             *int `json:"stock,omitempty" validate:"omitnil,gte=0"`
	LowStockThreshold *int `json:"lowStockThreshold,omitempty" validate:"omitnil,gte=0"`

	Category    *string  `json:"category,omitempty" validate:"omitnil,mongodb"`
	Subcategory *string  `json:"subcategory,omitempty" validate:"omitnil,mongodb"`
	Vendor      *string  `json:"vendor,omitempty" validate:"omitnil,mongodb"`
	Reviews     []string `json:"reviews,omitempty" validate:"dive,mongodb"`

	Images     []ImageInput    `json:"images,omitempty" validate:"dive"`
	Variants   []VariantInput  `json:"variants,omitempty" validate:"dive"`
	Weight     *WeightInput    `json:"weight,omitempty"`
	Dimensions *DimensionInput `json:"dimensions,omitempty"`
	Shipping   *ShippingInput  `json:"shipping,omitempty"`

	Status       *ProductStatus `json:"status,omitempty" validate:"omitnil,oneof=draft active inactive out_of_stock discontinued"`
	IsFeatured   *bool          `json:"isFeatured,omitempty"`
	IsNewArrival *bool          `json:"isNewArrival,omitempty"`
	IsBestseller *bool          `json:"isBestseller,omitempty"`

	Ratings *RatingsInput `json:"ratings,omitempty"`
	SEO     *SEOInput     `json:"seo,omitempty"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// IsEmpty indica que el patch no trae ningún campo
func (pt *ProductPatch) IsEmpty() bool {
	return pt.SKU == nil && pt.Barcode == nil && pt.Name == nil && pt.Description == nil &&
		pt.ShortDescription == nil && pt.Brand == nil && pt.Features == nil && pt.Tags == nil &&
		pt.Specifications == nil && pt.Price == nil && pt.ComparePrice == nil && pt.CostPrice == nil &&
		pt.Discount == nil && pt.Stock == nil && pt.LowStockThreshold == nil && pt.Category == nil &&
		pt.Subcategory == nil && pt.Vendor == nil && pt.Reviews == nil && pt.Images == nil &&
		pt.Variants == nil && pt.Weight == nil && pt.Dimensions == nil && pt.Shipping == nil &&
		pt.Status == nil && pt.IsFeatured == nil && pt.IsNewArrival == nil && pt.IsBestseller == nil &&
		pt.Ratings == nil && pt.SEO == nil && pt.PublishedAt == nil && pt.ExpiresAt == nil
}

// Apply vuelca el patch sobre el producto. Asume que el patch ya fue validado.
func (pt *ProductPatch) Apply(p *Product) {
	if pt.SKU != nil {
		p.SKU = strings.TrimSpace(*pt.SKU)
	}
	if pt.Barcode != nil {
		p.Barcode = strings.TrimSpace(*pt.Barcode)
	}
	if pt.Name != nil {
		p.Name = strings.TrimSpace(*pt.Name)
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.ShortDescription != nil {
		p.ShortDescription = *pt.ShortDescription
	}
	if pt.Brand != nil {
		p.Brand = strings.TrimSpace(*pt.Brand)
	}
	if pt.Features != nil {
		p.Features = pt.Features
	}
	if pt.Tags != nil {
		p.Tags = pt.Tags
	}
	if pt.Specifications != nil {
		p.Specifications = pt.Specifications
	}

	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.ComparePrice != nil {
		p.ComparePrice = pt.ComparePrice
	}
	if pt.CostPrice != nil {
		p.CostPrice = pt.CostPrice
	}
	if pt.Discount != nil {
		p.Discount = *pt.Discount
	}
	if pt.Stock != nil {
		p.Stock = *pt.Stock
	}
	if pt.LowStockThreshold != nil {
		p.LowStockThreshold = *pt.LowStockThreshold
	}

	if pt.Category != nil {
		p.Category, _ = primitive.ObjectIDFromHex(*pt.Category)
	}
	if pt.Subcategory != nil {
		if id, err := primitive.ObjectIDFromHex(*pt.Subcategory); err == nil {
			p.Subcategory = &id
		}
	}
	if pt.Vendor != nil {
		p.Vendor, _ = primitive.ObjectIDFromHex(*pt.Vendor)
	}
	if pt.Reviews != nil {
		p.Reviews = objectIDs(pt.Reviews)
	}

	if pt.Images != nil {
		p.Images = toImages(pt.Images)
	}
	if pt.Variants != nil {
		p.Variants = toVariants(pt.Variants)
	}
	if pt.Weight != nil {
		p.Weight = pt.Weight.toWeight()
	}
	if pt.Dimensions != nil {
		p.Dimensions = pt.Dimensions.toDimensions()
	}
	if pt.Shipping != nil {
		p.Shipping = pt.Shipping.toShipping()
	}

	if pt.Status != nil {
		p.Status = *pt.Status
	}
	if pt.IsFeatured != nil {
		p.IsFeatured = *pt.IsFeatured
	}
	if pt.IsNewArrival != nil {
		p.IsNewArrival = *pt.IsNewArrival
	}
	if pt.IsBestseller != nil {
		p.IsBestseller = *pt.IsBestseller
	}
	if pt.Ratings != nil {
		p.Ratings = Ratings{Average: pt.Ratings.Average, Count: pt.Ratings.Count}
	}
	if pt.SEO != nil {
		p.SEO = pt.SEO.toSEO()
	}
	if pt.PublishedAt != nil {
		p.PublishedAt = pt.PublishedAt
	}
	if pt.ExpiresAt != nil {
		p.ExpiresAt = pt.ExpiresAt
	}
}
