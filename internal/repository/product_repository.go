package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"storefront-catalog/internal/models"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidID       = errors.New("invalid product ID")
	ErrVersionConflict = errors.New("product was modified concurrently")
)

// DuplicateKeyError se produce cuando se viola un índice único (sku, barcode, slug).
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// Nombres de los índices únicos; se usan para mapear el error de clave duplicada al campo.
const (
	IndexSKU     = "sku_unique"
	IndexBarcode = "barcode_unique"
	IndexSlug    = "slug_unique"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 3 * time.Second
	listTimeout  = 10 * time.Second
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

// Create inserta un producto nuevo; el llamador ya derivó slug y finalPrice.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.Version = 1

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		product.ID = primitive.NilObjectID
		return mapWriteError(err)
	}
	return nil
}

// FindByID obtiene un producto por ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// FindBySlug obtiene un producto por slug
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var product models.Product
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Replace reescribe el producto solo si la versión persistida sigue siendo
// expectedVersion; en ese caso incrementa Version. views no se escribe:
// solo lo modifica IncrementViews, y el valor vigente se devuelve en product.
func (r *ProductRepository) Replace(ctx context.Context, product *models.Product, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	prevUpdated := product.UpdatedAt
	product.UpdatedAt = time.Now().UTC()
	product.Version = expectedVersion + 1

	update, err := versionedUpdate(product)
	if err != nil {
		product.UpdatedAt, product.Version = prevUpdated, expectedVersion
		return err
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"views": 1})

	var out struct {
		Views int64 `bson:"views"`
	}
	filter := bson.M{"_id": product.ID, "version": expectedVersion}
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err == nil {
		product.Views = out.Views
		return nil
	}

	product.UpdatedAt, product.Version = prevUpdated, expectedVersion
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return mapWriteError(err)
	}
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": product.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

// optionalFields campos con omitempty; si faltan en el documento se eliminan con $unset
var optionalFields = []string{
	"barcode", "short_description", "brand", "features", "tags", "specifications",
	"compare_price", "cost_price", "subcategory", "reviews", "images", "variants",
	"weight", "dimensions", "published_at", "expires_at",
}

// versionedUpdate arma el $set/$unset de una escritura completa sin _id ni views.
func versionedUpdate(product *models.Product) (bson.M, error) {
	raw, err := bson.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	delete(set, "_id")
	delete(set, "views")

	update := bson.M{"$set": set}
	unset := bson.M{}
	for _, f := range optionalFields {
		if _, ok := set[f]; !ok {
			unset[f] = ""
		}
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}

// ViewCount resultado de IncrementViews
type ViewCount struct {
	Slug  string `bson:"slug"`
	Views int64  `bson:"views"`
}

// IncrementViews suma una vista de forma atómica; no toca ningún otro campo.
func (r *ProductRepository) IncrementViews(ctx context.Context, id string) (*ViewCount, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"views": 1, "slug": 1})

	var out ViewCount
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// FindAll lista productos con paginación, filtros y ordenamiento
func (r *ProductRepository) FindAll(ctx context.Context, f ListFilter) ([]*models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	f = f.normalized()
	filter := buildFilter(f)

	findOptions := options.Find().
		SetSkip(int64((f.Page - 1) * f.PageSize)).
		SetLimit(int64(f.PageSize)).
		SetSort(buildSort(f))

	var (
		products []*models.Product
		total    int64
	)

	// Contar total en paralelo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.collection.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		cursor, err := r.collection.Find(gctx, filter, findOptions)
		if err != nil {
			return fmt.Errorf("find products: %w", err)
		}
		defer cursor.Close(gctx)

		products = make([]*models.Product, 0, f.PageSize)
		return cursor.All(gctx, &products)
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func mapWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, IndexSKU):
		return &DuplicateKeyError{Field: "sku", Err: err}
	case strings.Contains(msg, IndexBarcode):
		return &DuplicateKeyError{Field: "barcode", Err: err}
	case strings.Contains(msg, IndexSlug):
		return &DuplicateKeyError{Field: "slug", Err: err}
	default:
		return &DuplicateKeyError{Field: "unknown", Err: err}
	}
}
