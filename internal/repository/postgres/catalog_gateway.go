package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type catalogGateway struct {
	db DBTX
}

func NewCatalogGateway(db DBTX) domain.CatalogGateway {
	return &catalogGateway{db: db}
}

const (
	listProductIDsSQL = `SELECT id FROM products ORDER BY display_order ASC, created_at DESC`

	listVariantsSQL = `SELECT id, product_id, denomination, price, created_at
		FROM product_variants WHERE product_id = $1 ORDER BY id ASC`

	listImagesSQL = `SELECT id, product_id, url, display_order, is_primary
		FROM product_images WHERE product_id = $1 ORDER BY display_order ASC, id ASC`

	createVariantSQL = `INSERT INTO product_variants (product_id, denomination, price)
		VALUES ($1, $2, $3) RETURNING id`

	deleteVariantSQL = `DELETE FROM product_variants WHERE id = $1`

	createImageSQL = `INSERT INTO product_images (product_id, url, display_order, is_primary)
		VALUES ($1, $2, $3, $4) RETURNING id`

	updateImageSQL = `UPDATE product_images SET display_order = $2, is_primary = $3 WHERE id = $1`

	deleteImageSQL = `DELETE FROM product_images WHERE id = $1`

	setDisplayOrderSQL = `UPDATE products SET display_order = $2, updated_at = now() WHERE id = $1`

	setProductImageSQL = `UPDATE products SET image = $2, updated_at = now() WHERE id = $1`
)

func (g *catalogGateway) ListProductIDs(ctx context.Context) ([]int64, error) {
	start := time.Now()
	rows, err := conn(ctx, g.db).Query(ctx, listProductIDsSQL)
	if err != nil {
		logger.DBQuery(ctx, listProductIDsSQL, time.Since(start), err)
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	logger.DBQuery(ctx, listProductIDsSQL, time.Since(start), err)
	return ids, err
}

func (g *catalogGateway) ListVariants(ctx context.Context, productID int64) ([]domain.PriceVariant, error) {
	rows, err := conn(ctx, g.db).Query(ctx, listVariantsSQL, productID)
	if err != nil {
		return nil, err
	}
	return collectVariants(rows)
}

func (g *catalogGateway) ListImages(ctx context.Context, productID int64) ([]domain.GalleryImage, error) {
	rows, err := conn(ctx, g.db).Query(ctx, listImagesSQL, productID)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

func (g *catalogGateway) CreateVariant(ctx context.Context, productID int64, denomination string, price decimal.Decimal) (int64, error) {
	num, err := decimalToNumeric(price)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	var id int64
	err = conn(ctx, g.db).QueryRow(ctx, createVariantSQL, productID, denomination, num).Scan(&id)
	logger.DBQuery(ctx, createVariantSQL, time.Since(start), err)
	return id, err
}

func (g *catalogGateway) DeleteVariant(ctx context.Context, id int64) error {
	return g.exec(ctx, deleteVariantSQL, id)
}

func (g *catalogGateway) CreateImage(ctx context.Context, productID int64, url string, order int, isPrimary bool) (int64, error) {
	start := time.Now()
	var id int64
	err := conn(ctx, g.db).QueryRow(ctx, createImageSQL, productID, url, order, isPrimary).Scan(&id)
	logger.DBQuery(ctx, createImageSQL, time.Since(start), err)
	return id, err
}

func (g *catalogGateway) UpdateImage(ctx context.Context, id int64, order int, isPrimary bool) error {
	return g.execOne(ctx, updateImageSQL, id, order, isPrimary)
}

func (g *catalogGateway) DeleteImage(ctx context.Context, id int64) error {
	return g.exec(ctx, deleteImageSQL, id)
}

func (g *catalogGateway) SetProductImage(ctx context.Context, productID int64, url string) error {
	return g.execOne(ctx, setProductImageSQL, productID, url)
}

// BulkSetDisplayOrder queues every assignment in one batch inside a
// transaction, so the reorder lands whole or not at all.
func (g *catalogGateway) BulkSetDisplayOrder(ctx context.Context, plan domain.OrderingPlan) error {
	if len(plan) == 0 {
		return nil
	}
	start := time.Now()
	err := pgx.BeginFunc(ctx, conn(ctx, g.db), func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range plan {
			batch.Queue(setDisplayOrderSQL, a.ProductID, a.DisplayOrder)
		}

		br := tx.SendBatch(ctx, batch)
		for _, a := range plan {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return fmt.Errorf("product %d: %w", a.ProductID, err)
			}
			if tag.RowsAffected() == 0 {
				br.Close()
				return fmt.Errorf("product %d: %w", a.ProductID, domain.ErrNotFound)
			}
		}
		return br.Close()
	})
	logger.DBQuery(ctx, setDisplayOrderSQL, time.Since(start), err)
	return err
}

// exec runs a statement whose row count does not matter.
func (g *catalogGateway) exec(ctx context.Context, sql string, args ...any) error {
	_, err := g.run(ctx, sql, args...)
	return err
}

// execOne runs a statement that must touch exactly one row.
func (g *catalogGateway) execOne(ctx context.Context, sql string, args ...any) error {
	affected, err := g.run(ctx, sql, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (g *catalogGateway) run(ctx context.Context, sql string, args ...any) (int64, error) {
	start := time.Now()
	tag, err := conn(ctx, g.db).Exec(ctx, sql, args...)
	logger.DBQuery(ctx, sql, time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// --- Mappers ---

func collectVariants(rows pgx.Rows) ([]domain.PriceVariant, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PriceVariant, error) {
		var v domain.PriceVariant
		var price pgtype.Numeric
		if err := row.Scan(&v.ID, &v.ProductID, &v.Denomination, &price, &v.CreatedAt); err != nil {
			return v, err
		}
		v.Price = numericToDecimal(price)
		return v, nil
	})
}

func collectImages(rows pgx.Rows) ([]domain.GalleryImage, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.GalleryImage, error) {
		var img domain.GalleryImage
		err := row.Scan(&img.ID, &img.ProductID, &img.URL, &img.DisplayOrder, &img.IsPrimary)
		return img, err
	})
}
