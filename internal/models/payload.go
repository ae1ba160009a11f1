package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductInput representa el payload de alta de un producto.
// Las referencias llegan como hex para poder reportar ids mal formados como
// violaciones de campo en lugar de fallar al decodificar.
type ProductInput struct {
	SKU     string `json:"sku" validate:"required,max=100"`
	Barcode string `json:"barcode,omitempty" validate:"omitempty,max=100"`

	Name             string          `json:"name" validate:"required,max=200"`
	Description      string          `json:"description" validate:"required,max=5000"`
	ShortDescription string          `json:"shortDescription,omitempty" validate:"max=500"`
	Brand            string          `json:"brand,omitempty" validate:"max=200"`
	Features         []string        `json:"features,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	Specifications   []Specification `json:"specifications,omitempty"`

	Price        *float64 `json:"price" validate:"required,gte=0"`
	ComparePrice *float64 `json:"comparePrice,omitempty" validate:"omitnil,gte=0"`
	CostPrice    *float64 `json:"costPrice,omitempty" validate:"omitnil,gte=0"`
	Discount     *float64 `json:"discount,omitempty" validate:"omitnil,gte=0,lte=100"`

	Stock             *int `json:"stock" validate:"required,gte=0"`
	LowStockThreshold *int `json:"lowStockThreshold,omitempty" validate:"omitnil,gte=0"`

	Category    string   `json:"category" validate:"required,mongodb"`
	Subcategory string   `json:"subcategory,omitempty" validate:"omitempty,mongodb"`
	Vendor      string   `json:"vendor" validate:"required,mongodb"`
	Reviews     []string `json:"reviews,omitempty" validate:"dive,mongodb"`

	Images     []ImageInput    `json:"images,omitempty" validate:"dive"`
	Variants   []VariantInput  `json:"variants,omitempty" validate:"dive"`
	Weight     *WeightInput    `json:"weight,omitempty"`
	Dimensions *DimensionInput `json:"dimensions,omitempty"`
	Shipping   *ShippingInput  `json:"shipping,omitempty"`

	Status       ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=draft active inactive out_of_stock discontinued"`
	IsFeatured   bool          `json:"isFeatured"`
	IsNewArrival bool          `json:"isNewArrival"`
	IsBestseller bool          `json:"isBestseller"`

	Ratings *RatingsInput `json:"ratings,omitempty"`
	SEO     *SEOInput     `json:"seo,omitempty"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type ImageInput struct {
	PublicID  string `json:"publicId,omitempty"`
	URL       string `json:"url" validate:"required"`
	AltText   string `json:"altText,omitempty" validate:"max=300"`
	IsDefault bool   `json:"isDefault"`
}

type VariantInput struct {
	Name    string               `json:"name" validate:"max=100"`
	Options []VariantOptionInput `json:"options" validate:"dive"`
}

type VariantOptionInput struct {
	Value string   `json:"value"`
	Price *float64 `json:"price,omitempty" validate:"omitnil,gte=0"`
	Stock *int     `json:"stock,omitempty" validate:"omitnil,gte=0"`
	SKU   string   `json:"sku,omitempty"`
	Image string   `json:"image,omitempty"`
}

type WeightInput struct {
	Value float64 `json:"value" validate:"gte=0"`
	Unit  string  `json:"unit,omitempty" validate:"omitempty,oneof=kg g lb oz"`
}

type DimensionInput struct {
	Length float64 `json:"length" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
	Unit   string  `json:"unit,omitempty" validate:"omitempty,oneof=cm in m"`
}

type ShippingInput struct {
	IsFreeShipping    bool                    `json:"isFreeShipping"`
	ShippingCost      float64                 `json:"shippingCost" validate:"gte=0"`
	EstimatedDelivery *EstimatedDeliveryInput `json:"estimatedDelivery,omitempty"`
}

type EstimatedDeliveryInput struct {
	Min  int    `json:"min" validate:"gte=0"`
	Max  int    `json:"max" validate:"gte=0,gtefield=Min"`
	Unit string `json:"unit,omitempty" validate:"omitempty,oneof=days weeks"`
}

type RatingsInput struct {
	Average float64 `json:"average" validate:"gte=0,lte=5"`
	Count   int64   `json:"count" validate:"gte=0"`
}

type SEOInput struct {
	MetaTitle       string   `json:"metaTitle,omitempty" validate:"max=200"`
	MetaDescription string   `json:"metaDescription,omitempty" validate:"max=500"`
	MetaKeywords    []string `json:"metaKeywords,omitempty"`
	CanonicalURL    string   `json:"canonicalUrl,omitempty" validate:"omitempty,url"`
}

// ToProduct construye la entidad aplicando los valores por defecto.
// Asume que el input ya fue validado.
func (in *ProductInput) ToProduct() *Product {
	p := &Product{
		SKU:               strings.TrimSpace(in.SKU),
		Barcode:           strings.TrimSpace(in.Barcode),
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		ShortDescription:  in.ShortDescription,
		Brand:             strings.TrimSpace(in.Brand),
		Features:          in.Features,
		Tags:              in.Tags,
		Specifications:    in.Specifications,
		ComparePrice:      in.ComparePrice,
		CostPrice:         in.CostPrice,
		LowStockThreshold: DefaultLowStockThreshold,
		Status:            StatusDraft,
		IsFeatured:        in.IsFeatured,
		IsNewArrival:      in.IsNewArrival,
		IsBestseller:      in.IsBestseller,
		PublishedAt:       in.PublishedAt,
		ExpiresAt:         in.ExpiresAt,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.LowStockThreshold != nil {
		p.LowStockThreshold = *in.LowStockThreshold
	}
	if in.Status != "" {
		p.Status = in.Status
	}

	p.Category, _ = primitive.ObjectIDFromHex(in.Category)
	p.Vendor, _ = primitive.ObjectIDFromHex(in.Vendor)
	if in.Subcategory != "" {
		if id, err := primitive.ObjectIDFromHex(in.Subcategory); err == nil {
			p.Subcategory = &id
		}
	}
	p.Reviews = objectIDs(in.Reviews)

	p.Images = toImages(in.Images)
	p.Variants = toVariants(in.Variants)
	p.Weight = in.Weight.toWeight()
	p.Dimensions = in.Dimensions.toDimensions()
	if in.Shipping != nil {
		p.Shipping = in.Shipping.toShipping()
	}
	if in.Ratings != nil {
		p.Ratings = Ratings{Average: in.Ratings.Average, Count: in.Ratings.Count}
	}
	if in.SEO != nil {
		p.SEO = in.SEO.toSEO()
	}
	return p
}

func objectIDs(hexes []string) []primitive.ObjectID {
	if len(hexes) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		if id, err := primitive.ObjectIDFromHex(h); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func toImages(in []ImageInput) []Image {
	if len(in) == 0 {
		return nil
	}
	out := make([]Image, len(in))
	for i, img := range in {
		out[i] = Image{PublicID: img.PublicID, URL: img.URL, AltText: img.AltText, IsDefault: img.IsDefault}
	}
	return out
}

func toVariants(in []VariantInput) []Variant {
	if len(in) == 0 {
		return nil
	}
	out := make([]Variant, len(in))
	for i, v := range in {
		opts := make([]VariantOption, len(v.Options))
		for j, o := range v.Options {
			opts[j] = VariantOption{Value: o.Value, Price: o.Price, Stock: o.Stock, SKU: o.SKU, Image: o.Image}
		}
		out[i] = Variant{Name: v.Name, Options: opts}
	}
	return out
}

func (w *WeightInput) toWeight() *Weight {
	if w == nil {
		return nil
	}
	unit := w.Unit
	if unit == "" {
		unit = "kg"
	}
	return &Weight{Value: w.Value, Unit: unit}
}

func (d *DimensionInput) toDimensions() *Dimensions {
	if d == nil {
		return nil
	}
	unit := d.Unit
	if unit == "" {
		unit = "cm"
	}
	return &Dimensions{Length: d.Length, Width: d.Width, Height: d.Height, Unit: unit}
}

func (s *ShippingInput) toShipping() ShippingInfo {
	info := ShippingInfo{IsFreeShipping: s.IsFreeShipping, ShippingCost: s.ShippingCost}
	if ed := s.EstimatedDelivery; ed != nil {
		unit := ed.Unit
		if unit == "" {
			unit = "days"
		}
		info.EstimatedDelivery = &EstimatedDelivery{Min: ed.Min, Max: ed.Max, Unit: unit}
	}
	return info
}

func (s *SEOInput) toSEO() SEO {
	return SEO{
		MetaTitle:       s.MetaTitle,
		MetaDescription: s.MetaDescription,
		MetaKeywords:    s.MetaKeywords,
		CanonicalURL:    s.CanonicalURL,
	}
}
