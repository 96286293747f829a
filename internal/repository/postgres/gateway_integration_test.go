package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// openTestPool connects to TEST_DATABASE_URL and resets the catalog tables.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE product_images, product_variants, products, categories RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

func seedProducts(t *testing.T, repo domain.ProductRepository, names ...string) []int64 {
	t.Helper()
	ctx := context.Background()
	cat := &domain.Category{Name: "Gaming", Slug: "gaming"}
	if err := repo.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	var ids []int64
	for _, n := range names {
		p := &domain.Product{Name: n, Slug: n, CategoryID: cat.ID, InStock: true}
		if err := repo.CreateProduct(ctx, p); err != nil {
			t.Fatalf("create product: %v", err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func TestGatewayBulkSetDisplayOrder(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewProductRepository(pool)
	gw := NewCatalogGateway(pool)
	ids := seedProducts(t, repo, "a", "b", "c")

	plan, err := domain.NewOrderingPlan(ids, []int64{ids[2], ids[0], ids[1]})
	if err != nil {
		t.Fatal(err)
	}
	if err := gw.BulkSetDisplayOrder(ctx, plan); err != nil {
		t.Fatalf("BulkSetDisplayOrder: %v", err)
	}
	got, err := gw.ListProductIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != ids[2] || got[1] != ids[0] || got[2] != ids[1] {
		t.Fatalf("order = %v", got)
	}

	// An unknown id fails the whole batch.
	bad := domain.OrderingPlan{{ProductID: ids[0], DisplayOrder: 0}, {ProductID: 9999, DisplayOrder: 1}}
	if err := gw.BulkSetDisplayOrder(ctx, bad); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	after, _ := gw.ListProductIDs(ctx)
	if after[0] != ids[2] {
		t.Fatalf("failed batch leaked changes: %v", after)
	}
}

func TestGatewayVariantsAndImages(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewProductRepository(pool)
	gw := NewCatalogGateway(pool)
	pid := seedProducts(t, repo, "steam")[0]

	vid, err := gw.CreateVariant(ctx, pid, "$25", decimal.RequireFromString("24.99"))
	if err != nil {
		t.Fatalf("CreateVariant: %v", err)
	}
	iid, err := gw.CreateImage(ctx, pid, "https://cdn/a.webp", 0, true)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	if err := gw.UpdateImage(ctx, iid, 1, false); err != nil {
		t.Fatalf("UpdateImage: %v", err)
	}

	p, err := repo.GetProductByID(ctx, pid)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Variants) != 1 || !p.Variants[0].Price.Equal(decimal.RequireFromString("24.99")) {
		t.Fatalf("variants = %+v", p.Variants)
	}
	if len(p.Images) != 1 || p.Images[0].DisplayOrder != 1 || p.Images[0].IsPrimary {
		t.Fatalf("images = %+v", p.Images)
	}

	if err := gw.DeleteVariant(ctx, vid); err != nil {
		t.Fatal(err)
	}
	if err := gw.DeleteVariant(ctx, vid); err != nil {
		t.Fatalf("repeated delete should succeed: %v", err)
	}
	if err := gw.DeleteImage(ctx, iid); err != nil {
		t.Fatal(err)
	}
	if err := gw.DeleteImage(ctx, iid); err != nil {
		t.Fatalf("repeated image delete should succeed: %v", err)
	}

	if err := gw.SetProductImage(ctx, pid, "https://cdn/b.webp"); err != nil {
		t.Fatalf("SetProductImage: %v", err)
	}
	p, err = repo.GetProductByID(ctx, pid)
	if err != nil || p.Image != "https://cdn/b.webp" {
		t.Fatalf("image = %q, %v", p.Image, err)
	}
	if err := gw.SetProductImage(ctx, 999999, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown product: %v", err)
	}
}

func TestTransactionManagerRollsBack(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewProductRepository(pool)
	gw := NewCatalogGateway(pool)
	tm := NewTransactionManager(pool)
	pid := seedProducts(t, repo, "xbox")[0]

	boom := errors.New("boom")
	err := tm.Do(ctx, func(ctx context.Context) error {
		if _, err := gw.CreateVariant(ctx, pid, "$10", decimal.NewFromInt(10)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Do = %v", err)
	}
	vs, _ := gw.ListVariants(ctx, pid)
	if len(vs) != 0 {
		t.Fatalf("rolled back variant is visible: %+v", vs)
	}
}

func TestProductRepositoryNotFound(t *testing.T) {
	pool := openTestPool(t)
	repo := NewProductRepository(pool)
	if _, err := repo.GetProductBySlug(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteProduct(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
