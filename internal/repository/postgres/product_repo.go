package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"

	"github.com/jackc/pgx/v5"
)

type productRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) domain.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, slug, description, full_description, category_id,
	image, gradient, in_stock, featured, display_order, created_at, updated_at`

const categoryColumns = `id, name, slug, description, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.FullDescription, &p.CategoryID,
		&p.Image, &p.Gradient, &p.InStock, &p.Featured, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// --- Categories ---

func (r *productRepository) GetCategories(ctx context.Context) ([]domain.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC`
	rows, err := conn(ctx, r.db).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		return scanCategory(row)
	})
}

func (r *productRepository) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	c, err := scanCategory(conn(ctx, r.db).QueryRow(ctx, q, slug))
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *productRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	q := `INSERT INTO categories (name, slug, description) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	return conn(ctx, r.db).QueryRow(ctx, q, category.Name, category.Slug, category.Description).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

// --- Products ---

// GetProducts returns a page of products in storefront order together with
// the total matching the filter.
func (r *productRepository) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	var where []string
	var args []any
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		where = append(where, fmt.Sprintf("featured = $%d", len(args)))
	}
	if filter.InStock != nil {
		args = append(args, *filter.InStock)
		where = append(where, fmt.Sprintf("in_stock = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	db := conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + productColumns + ` FROM products` + clause +
		` ORDER BY display_order ASC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	start := time.Now()
	rows, err := db.Query(ctx, q, args...)
	if err != nil {
		logger.DBQuery(ctx, q, time.Since(start), err)
		return nil, 0, err
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		p, err := scanProduct(row)
		if err != nil {
			return domain.Product{}, err
		}
		return *p, nil
	})
	logger.DBQuery(ctx, q, time.Since(start), err)
	if err != nil {
		return nil, 0, err
	}

	if err := r.hydrate(ctx, db, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
}

func (r *productRepository) getOne(ctx context.Context, q string, arg any) (*domain.Product, error) {
	db := conn(ctx, r.db)
	p, err := scanProduct(db.QueryRow(ctx, q, arg))
	if err != nil {
		return nil, notFound(err)
	}
	products := []domain.Product{*p}
	if err := r.hydrate(ctx, db, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// CreateProduct inserts the product row at the end of the storefront order.
// Variants and images are written through the catalog gateway.
func (r *productRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	q := `INSERT INTO products (name, slug, description, full_description, category_id,
			image, gradient, in_stock, featured, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT COALESCE(MAX(display_order) + 1, 0) FROM products))
		RETURNING id, display_order, created_at, updated_at`

	start := time.Now()
	err := conn(ctx, r.db).QueryRow(ctx, q,
		p.Name, p.Slug, p.Description, p.FullDescription, p.CategoryID,
		p.Image, p.Gradient, p.InStock, p.Featured,
	).Scan(&p.ID, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt)
	logger.DBQuery(ctx, q, time.Since(start), err)
	return err
}

// UpdateProduct writes the descriptive fields. Display order is owned by the
// order sequencer and is left untouched.
func (r *productRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	q := `UPDATE products SET name = $2, slug = $3, description = $4, full_description = $5,
			category_id = $6, image = $7, gradient = $8, in_stock = $9, featured = $10,
			updated_at = now()
		WHERE id = $1
		RETURNING display_order, created_at, updated_at`

	err := conn(ctx, r.db).QueryRow(ctx, q,
		p.ID, p.Name, p.Slug, p.Description, p.FullDescription,
		p.CategoryID, p.Image, p.Gradient, p.InStock, p.Featured,
	).Scan(&p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt)
	return notFound(err)
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// hydrate loads variants and gallery images for every product in one query
// each.
func (r *productRepository) hydrate(ctx context.Context, db DBTX, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
		products[i].Variants = []domain.PriceVariant{}
		products[i].Images = []domain.GalleryImage{}
	}

	rows, err := db.Query(ctx, `SELECT id, product_id, denomination, price, created_at
		FROM product_variants WHERE product_id = ANY($1) ORDER BY id ASC`, ids)
	if err != nil {
		return err
	}
	variants, err := collectVariants(rows)
	if err != nil {
		return err
	}
	for _, v := range variants {
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}

	rows, err = db.Query(ctx, `SELECT id, product_id, url, display_order, is_primary
		FROM product_images WHERE product_id = ANY($1) ORDER BY display_order ASC, id ASC`, ids)
	if err != nil {
		return err
	}
	images, err := collectImages(rows)
	if err != nil {
		return err
	}
	for _, img := range images {
		i := index[img.ProductID]
		products[i].Images = append(products[i].Images, img)
	}
	return nil
}
