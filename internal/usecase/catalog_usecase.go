package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/config"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/cache"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"
)

const (
	productCachePrefix  = "product:"
	categoryCacheKey    = "category:all"
	productListCacheKey = "product:list:%v:%v:%v:%d:%d"
)

type CatalogUsecase struct {
	repo     domain.ProductRepository
	executor *commitExecutor
	cache    cache.CacheService
	cfg      *config.Config
}

// NewCatalogUsecase wires product CRUD. txManager may be nil, in which case a
// product and its variants are written by independent calls.
func NewCatalogUsecase(repo domain.ProductRepository, gateway domain.CatalogGateway, txManager domain.TransactionManager, cache cache.CacheService, cfg *config.Config) *CatalogUsecase {
	return &CatalogUsecase{
		repo:     repo,
		executor: &commitExecutor{gateway: gateway, txManager: txManager},
		cache:    cache,
		cfg:      cfg,
	}
}

// CreateProduct validates the variant rows and gallery, inserts the product
// at the end of the storefront order, then writes its variants and images.
func (uc *CatalogUsecase) CreateProduct(ctx context.Context, product *domain.Product, variants []domain.VariantEntry, imageURLs []string) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	drafts, err := domain.NewVariantSetFromEntries(variants).Validate()
	if err != nil {
		return err
	}
	gallery := domain.NewGallery(nil, uc.cfg.MaxGalleryImages)
	for _, u := range imageURLs {
		if err := gallery.Add(u); err != nil {
			return err
		}
	}

	// 1. Generate Slug if missing
	if product.Slug == "" {
		product.Slug = utils.GenerateSlug(product.Name)
	}
	if product.Image == "" {
		if idx, ok := gallery.Primary(); ok {
			product.Image = gallery.Images()[idx].URL
		}
	}

	create := func(ctx context.Context) error {
		if err := uc.repo.CreateProduct(ctx, product); err != nil {
			return &domain.GatewayError{Op: domain.OpCreate, Entity: domain.EntityProduct, Err: err}
		}
		plan := domain.CommitPlan{
			ProductID:      product.ID,
			CreateVariants: drafts,
			Gallery:        domain.Reconcile(nil, gallery.Images()),
		}
		_, err := uc.executor.run(ctx, plan)
		return err
	}

	if uc.executor.txManager != nil {
		err = uc.executor.txManager.Do(ctx, create)
	} else {
		err = create(ctx)
	}
	if err != nil {
		return err
	}

	uc.invalidateProductCache(ctx, "product created")
	logger.WithContext(ctx).Info().Int64("product_id", product.ID).Str("slug", product.Slug).Msg("Product created")

	created, err := uc.repo.GetProductByID(ctx, product.ID)
	if err == nil {
		*product = *created
	}
	return nil
}

// UpdateProduct writes descriptive fields only. Variants and gallery are
// edited through an edit session.
func (uc *CatalogUsecase) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if product.Slug == "" {
		product.Slug = utils.GenerateSlug(product.Name)
	}
	if err := uc.repo.UpdateProduct(ctx, product); err != nil {
		return err
	}
	uc.invalidateProductCache(ctx, "product updated")
	return nil
}

func (uc *CatalogUsecase) DeleteProduct(ctx context.Context, id int64) error {
	if err := uc.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	uc.invalidateProductCache(ctx, "product deleted")
	return nil
}

func (uc *CatalogUsecase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return uc.repo.GetProductByID(ctx, id)
}

func (uc *CatalogUsecase) GetProductDetails(ctx context.Context, slug string) (*domain.Product, error) {
	key := fmt.Sprintf("product:slug:%s", slug)
	if val, found := uc.cache.Get(key); found {
		return val.(*domain.Product), nil
	}

	product, err := uc.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(key, product, uc.cfg.CacheProductTTL)
	return product, nil
}

type productPage struct {
	products []domain.Product
	total    int64
}

// ListProducts returns products in storefront order: display order
// ascending, newest first among equals.
func (uc *CatalogUsecase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	key := fmt.Sprintf(productListCacheKey,
		derefInt64(filter.CategoryID), derefBool(filter.Featured), derefBool(filter.InStock),
		filter.Limit, filter.Offset)
	if val, found := uc.cache.Get(key); found {
		page := val.(productPage)
		return page.products, page.total, nil
	}

	products, total, err := uc.repo.GetProducts(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	uc.cache.Set(key, productPage{products: products, total: total}, uc.cfg.CacheProductTTL)
	return products, total, nil
}

func (uc *CatalogUsecase) GetCategories(ctx context.Context) ([]domain.Category, error) {
	if val, found := uc.cache.Get(categoryCacheKey); found {
		return val.([]domain.Category), nil
	}

	cats, err := uc.repo.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(categoryCacheKey, cats, uc.cfg.CacheCategoryTTL)
	return cats, nil
}

func (uc *CatalogUsecase) CreateCategory(ctx context.Context, category *domain.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return domain.NewValidationError("name", "category name is required")
	}
	if category.Slug == "" {
		category.Slug = utils.GenerateSlug(category.Name)
	}
	// Check if slug is already taken
	existing, err := uc.repo.GetCategoryBySlug(ctx, category.Slug)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if existing != nil {
		return domain.NewValidationError("slug", fmt.Sprintf("slug '%s' is already taken", category.Slug))
	}
	if err := uc.repo.CreateCategory(ctx, category); err != nil {
		return err
	}
	uc.cache.Delete(categoryCacheKey)
	return nil
}

func (uc *CatalogUsecase) invalidateProductCache(ctx context.Context, reason string) {
	uc.cache.DeletePrefix(productCachePrefix)
	logger.CacheInvalidated(ctx, productCachePrefix, reason)
}

func validateProduct(p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.NewValidationError("name", "product name is required")
	}
	if p.CategoryID <= 0 {
		return domain.NewValidationError("categoryId", "category is required")
	}
	return nil
}

func derefInt64(v *int64) any {
	if v == nil {
		return "-"
	}
	return *v
}

func derefBool(v *bool) any {
	if v == nil {
		return "-"
	}
	return *v
}
