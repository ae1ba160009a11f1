package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-catalog/internal/repository"
)

// ProductIndexes índices de la colección de productos: unicidad de sku,
// barcode (solo cuando existe) y slug, más los que soportan búsqueda y orden.
func ProductIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetName(repository.IndexSKU).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "barcode", Value: 1}},
			Options: options.Index().
				SetName(repository.IndexBarcode).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"barcode": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName(repository.IndexSlug).SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().
				SetName("product_text").
				SetWeights(bson.D{{Key: "name", Value: 10}, {Key: "tags", Value: 5}, {Key: "description", Value: 1}}),
		},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("category_status")},
		{Keys: bson.D{{Key: "vendor", Value: 1}}, Options: options.Index().SetName("vendor")},
		{Keys: bson.D{{Key: "price", Value: 1}}, Options: options.Index().SetName("price")},
		{Keys: bson.D{{Key: "ratings.average", Value: -1}}, Options: options.Index().SetName("rating_desc")},
		{Keys: bson.D{{Key: "sales", Value: -1}}, Options: options.Index().SetName("sales_desc")},
		{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("created_desc")},
	}
}

// EnsureIndexes crea los índices si no existen; CreateMany es idempotente.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.Collection(ProductsCollection).Indexes().CreateMany(ctx, ProductIndexes()); err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}
