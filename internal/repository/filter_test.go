package repository

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-catalog/internal/models"
)

func TestNormalized(t *testing.T) {
	tests := []struct {
		name         string
		in           ListFilter
		wantSort     string
		wantPage     int
		wantPageSize int
	}{
		{name: "defaults", in: ListFilter{}, wantSort: SortNewest, wantPage: 1, wantPageSize: DefaultPageSize},
		{name: "query defaults to relevance", in: ListFilter{Query: "shoe"}, wantSort: SortRelevance, wantPage: 1, wantPageSize: DefaultPageSize},
		{name: "relevance without query", in: ListFilter{Sort: SortRelevance}, wantSort: SortNewest, wantPage: 1, wantPageSize: DefaultPageSize},
		{name: "page size too large", in: ListFilter{Sort: SortRating, Page: 3, PageSize: 500}, wantSort: SortRating, wantPage: 3, wantPageSize: DefaultPageSize},
		{name: "unknown sort", in: ListFilter{Sort: "name"}, wantSort: SortNewest, wantPage: 1, wantPageSize: DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.normalized()
			if got.Sort != tt.wantSort || got.Page != tt.wantPage || got.PageSize != tt.wantPageSize {
				t.Fatalf("normalized() = %+v", got)
			}
		})
	}
}

func TestBuildFilter(t *testing.T) {
	cat := primitive.NewObjectID()
	vendor := primitive.NewObjectID()
	featured := true
	lo, hi := 10.0, 50.0

	filter := buildFilter(ListFilter{
		Query:    "running shoes",
		Category: &cat,
		Vendor:   &vendor,
		Status:   models.StatusActive,
		Featured: &featured,
		MinPrice: &lo,
		MaxPrice: &hi,
		InStock:  true,
	})

	if got := filter["$text"].(bson.M)["$search"]; got != "running shoes" {
		t.Fatalf("$text.$search = %v", got)
	}
	if filter["category"] != cat || filter["vendor"] != vendor {
		t.Fatalf("category/vendor filter = %v / %v", filter["category"], filter["vendor"])
	}
	if filter["status"] != models.StatusActive {
		t.Fatalf("status = %v", filter["status"])
	}
	if filter["is_featured"] != true {
		t.Fatalf("is_featured = %v", filter["is_featured"])
	}
	price := filter["final_price"].(bson.M)
	if price["$gte"] != 10.0 || price["$lte"] != 50.0 {
		t.Fatalf("final_price = %v", price)
	}
	if _, ok := filter["stock"]; !ok {
		t.Fatal("expected stock filter")
	}
	if _, ok := filter["is_bestseller"]; ok {
		t.Fatal("unexpected is_bestseller filter")
	}
}

func TestBuildSort(t *testing.T) {
	tests := []struct {
		sort  string
		key   string
		order any
	}{
		{SortNewest, "created_at", -1},
		{SortPriceAsc, "price", 1},
		{SortPriceDesc, "price", -1},
		{SortRating, "ratings.average", -1},
		{SortBestselling, "sales", -1},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			d := buildSort(ListFilter{Sort: tt.sort})
			if d[0].Key != tt.key || d[0].Value != tt.order {
				t.Fatalf("buildSort(%s)[0] = %v", tt.sort, d[0])
			}
		})
	}
}

func TestMapWriteError(t *testing.T) {
	dup := func(index string) error {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{
			Code:    11000,
			Message: "E11000 duplicate key error collection: storefront.products index: " + index + " dup key",
		}}}
	}

	tests := []struct {
		index string
		field string
	}{
		{IndexSKU, "sku"},
		{IndexBarcode, "barcode"},
		{IndexSlug, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			var dke *DuplicateKeyError
			if !errors.As(mapWriteError(dup(tt.index)), &dke) {
				t.Fatal("expected *DuplicateKeyError")
			}
			if dke.Field != tt.field {
				t.Fatalf("Field = %q, want %q", dke.Field, tt.field)
			}
		})
	}

	other := errors.New("boom")
	if got := mapWriteError(other); got != other {
		t.Fatalf("mapWriteError(other) = %v", got)
	}
}

func TestVersionedUpdateNeverWritesViews(t *testing.T) {
	p := &models.Product{
		ID:      primitive.NewObjectID(),
		SKU:     "SKU-1",
		Name:    "Lamp",
		Slug:    "lamp",
		Brand:   "Lumo",
		Stock:   4,
		Views:   17,
		Version: 3,
	}

	update, err := versionedUpdate(p)
	if err != nil {
		t.Fatalf("versionedUpdate() error = %v", err)
	}
	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("$set = %T, want bson.M", update["$set"])
	}
	for _, field := range []string{"_id", "views"} {
		if _, ok := set[field]; ok {
			t.Fatalf("$set contains %q", field)
		}
	}
	if set["slug"] != "lamp" || set["version"] != int64(3) {
		t.Fatalf("$set = %v", set)
	}
	if _, ok := set["stock"]; !ok {
		t.Fatalf("$set missing stock: %v", set)
	}

	unset, ok := update["$unset"].(bson.M)
	if !ok {
		t.Fatalf("$unset = %T, want bson.M", update["$unset"])
	}
	if _, ok := unset["barcode"]; !ok {
		t.Fatalf("empty barcode not unset: %v", unset)
	}
	if _, ok := unset["brand"]; ok {
		t.Fatalf("brand unset although present: %v", unset)
	}
}
