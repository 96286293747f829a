package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Product struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	Description     string         `json:"description"`
	FullDescription string         `json:"fullDescription"`
	CategoryID      int64          `json:"categoryId"`
	Image           string         `json:"image"`
	Gradient        string         `json:"gradient"`
	InStock         bool           `json:"inStock"`
	Featured        bool           `json:"featured"`
	DisplayOrder    int            `json:"displayOrder"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	Variants        []PriceVariant `json:"amounts"`
	Images          []GalleryImage `json:"images"`
}

// PrimaryImageURL returns the gallery primary, falling back to the legacy
// single image column.
func (p *Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	return p.Image
}

// PriceVariant is a purchasable denomination of a product, e.g. "$25" at 25.00.
type PriceVariant struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	Denomination string          `json:"amount"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// GalleryImage is one entry of a product gallery. ID is zero until the
// entry has been persisted.
type GalleryImage struct {
	ID           int64  `json:"id,omitempty"`
	ProductID    int64  `json:"productId,omitempty"`
	URL          string `json:"url"`
	DisplayOrder int    `json:"displayOrder"`
	IsPrimary    bool   `json:"isPrimary"`
}

// Persisted reports whether the entry carries a server id.
func (g GalleryImage) Persisted() bool {
	return g.ID != 0
}

type ProductFilter struct {
	CategoryID *int64
	Featured   *bool
	InStock    *bool
	Limit      int
	Offset     int
}

// --- Interfaces ---

// ProductRepository is the plain CRUD surface of the catalog.
type ProductRepository interface {
	GetCategories(ctx context.Context) ([]Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	CreateCategory(ctx context.Context, category *Category) error

	GetProducts(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// CatalogGateway performs the row level mutations behind the catalog
// structure manager. Every call stands alone: nothing is rolled back when a
// later call of the same logical operation fails, unless the caller wraps
// the sequence in a TransactionManager. Deleting a row that is already gone
// succeeds.
type CatalogGateway interface {
	ListProductIDs(ctx context.Context) ([]int64, error)
	ListVariants(ctx context.Context, productID int64) ([]PriceVariant, error)
	ListImages(ctx context.Context, productID int64) ([]GalleryImage, error)

	CreateVariant(ctx context.Context, productID int64, denomination string, price decimal.Decimal) (int64, error)
	DeleteVariant(ctx context.Context, id int64) error

	CreateImage(ctx context.Context, productID int64, url string, order int, isPrimary bool) (int64, error)
	UpdateImage(ctx context.Context, id int64, order int, isPrimary bool) error
	DeleteImage(ctx context.Context, id int64) error

	// SetProductImage writes the product's single image column, kept in step
	// with the gallery primary.
	SetProductImage(ctx context.Context, productID int64, url string) error

	// BulkSetDisplayOrder applies the whole plan or nothing.
	BulkSetDisplayOrder(ctx context.Context, plan OrderingPlan) error
}
