package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-catalog/internal/models"
)

// Criterios de ordenamiento soportados por los índices secundarios
const (
	SortNewest      = "newest"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortRating      = "rating"
	SortBestselling = "bestselling"
	SortRelevance   = "relevance"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListFilter parámetros de búsqueda del listado
type ListFilter struct {
	Query       string
	Category    *primitive.ObjectID
	Subcategory *primitive.ObjectID
	Vendor      *primitive.ObjectID
	Status      models.ProductStatus
	Brand       string
	Featured    *bool
	NewArrival  *bool
	Bestseller  *bool
	MinPrice    *float64
	MaxPrice    *float64
	InStock     bool

	Sort     string
	Page     int
	PageSize int
}

func (f ListFilter) normalized() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		f.PageSize = DefaultPageSize
	}
	switch f.Sort {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortBestselling:
	case SortRelevance:
		if f.Query == "" {
			f.Sort = SortNewest
		}
	default:
		if f.Query != "" {
			f.Sort = SortRelevance
		} else {
			f.Sort = SortNewest
		}
	}
	return f
}

// buildFilter construye el filtro de MongoDB
func buildFilter(f ListFilter) bson.M {
	filter := bson.M{}

	// Búsqueda de texto sobre name, description y tags
	if f.Query != "" {
		filter["$text"] = bson.M{"$search": f.Query}
	}
	if f.Category != nil {
		filter["category"] = *f.Category
	}
	if f.Subcategory != nil {
		filter["subcategory"] = *f.Subcategory
	}
	if f.Vendor != nil {
		filter["vendor"] = *f.Vendor
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Brand != "" {
		filter["brand"] = f.Brand
	}
	if f.Featured != nil {
		filter["is_featured"] = *f.Featured
	}
	if f.NewArrival != nil {
		filter["is_new_arrival"] = *f.NewArrival
	}
	if f.Bestseller != nil {
		filter["is_bestseller"] = *f.Bestseller
	}
	if f.InStock {
		filter["stock"] = bson.M{"$gt": 0}
	}

	priceFilter := bson.M{}
	if f.MinPrice != nil {
		priceFilter["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		priceFilter["$lte"] = *f.MaxPrice
	}
	if len(priceFilter) > 0 {
		filter["final_price"] = priceFilter
	}

	return filter
}

// buildSort traduce el criterio a un documento de orden con desempate por _id
func buildSort(f ListFilter) bson.D {
	switch f.Sort {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: -1}}
	case SortRating:
		return bson.D{{Key: "ratings.average", Value: -1}, {Key: "_id", Value: -1}}
	case SortBestselling:
		return bson.D{{Key: "sales", Value: -1}, {Key: "_id", Value: -1}}
	case SortRelevance:
		return bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}
