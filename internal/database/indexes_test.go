package database

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"storefront-catalog/internal/repository"
)

func TestProductIndexesUniqueness(t *testing.T) {
	unique := map[string]bool{}
	for _, idx := range ProductIndexes() {
		if idx.Options != nil && idx.Options.Name != nil && idx.Options.Unique != nil && *idx.Options.Unique {
			unique[*idx.Options.Name] = true
		}
	}

	for _, name := range []string{repository.IndexSKU, repository.IndexBarcode, repository.IndexSlug} {
		if !unique[name] {
			t.Errorf("index %s is not unique", name)
		}
	}
	if len(unique) != 3 {
		t.Fatalf("unique indexes = %v, want exactly sku, barcode and slug", unique)
	}
}

func TestBarcodeIndexIsSparse(t *testing.T) {
	for _, idx := range ProductIndexes() {
		if idx.Options == nil || idx.Options.Name == nil || *idx.Options.Name != repository.IndexBarcode {
			continue
		}
		expr, ok := idx.Options.PartialFilterExpression.(bson.M)
		if !ok {
			t.Fatalf("PartialFilterExpression = %T, want bson.M", idx.Options.PartialFilterExpression)
		}
		if _, ok := expr["barcode"]; !ok {
			t.Fatalf("partial filter does not reference barcode: %v", expr)
		}
		return
	}
	t.Fatal("barcode index not found")
}
