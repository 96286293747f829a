package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/config"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	memcache "github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/infrastructure/cache"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/cache"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/storage"

	"github.com/shopspring/decimal"
)

var errInjected = errors.New("injected failure")

type gatewayState struct {
	order    map[int64]int
	variants map[int64]domain.PriceVariant
	images   map[int64]domain.GalleryImage
	primary  map[int64]string
	nextID   int64
}

func (s gatewayState) clone() gatewayState {
	out := gatewayState{
		order:    map[int64]int{},
		variants: map[int64]domain.PriceVariant{},
		images:   map[int64]domain.GalleryImage{},
		primary:  map[int64]string{},
		nextID:   s.nextID,
	}
	for k, v := range s.primary {
		out.primary[k] = v
	}
	for k, v := range s.order {
		out.order[k] = v
	}
	for k, v := range s.variants {
		out.variants[k] = v
	}
	for k, v := range s.images {
		out.images[k] = v
	}
	return out
}

// fakeGateway is an in-memory CatalogGateway recording every write.
type fakeGateway struct {
	mu    sync.Mutex
	state gatewayState
	calls []string
	// failAt makes the nth write (1-based) fail; 0 disables.
	failAt   int
	writes   int
	failList bool
	failBulk bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{state: gatewayState{
		order:    map[int64]int{},
		variants: map[int64]domain.PriceVariant{},
		images:   map[int64]domain.GalleryImage{},
		primary:  map[int64]string{},
		nextID:   100,
	}}
}

func (g *fakeGateway) write(call string) error {
	g.writes++
	g.calls = append(g.calls, call)
	if g.failAt != 0 && g.writes == g.failAt {
		return errInjected
	}
	return nil
}

func (g *fakeGateway) addProduct(id int64, order int) {
	g.state.order[id] = order
}

func (g *fakeGateway) addVariant(productID int64, denom, price string) int64 {
	g.state.nextID++
	id := g.state.nextID
	g.state.variants[id] = domain.PriceVariant{ID: id, ProductID: productID, Denomination: denom, Price: decimal.RequireFromString(price)}
	return id
}

func (g *fakeGateway) addImage(productID int64, url string, order int, primary bool) int64 {
	g.state.nextID++
	id := g.state.nextID
	g.state.images[id] = domain.GalleryImage{ID: id, ProductID: productID, URL: url, DisplayOrder: order, IsPrimary: primary}
	return id
}

func (g *fakeGateway) ListProductIDs(ctx context.Context) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failList {
		return nil, errInjected
	}
	ids := make([]int64, 0, len(g.state.order))
	for id := range g.state.order {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if g.state.order[ids[i]] != g.state.order[ids[j]] {
			return g.state.order[ids[i]] < g.state.order[ids[j]]
		}
		return ids[i] > ids[j]
	})
	return ids, nil
}

func (g *fakeGateway) ListVariants(ctx context.Context, productID int64) ([]domain.PriceVariant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.PriceVariant
	for _, v := range g.state.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *fakeGateway) ListImages(ctx context.Context, productID int64) ([]domain.GalleryImage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.GalleryImage
	for _, img := range g.state.images {
		if img.ProductID == productID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (g *fakeGateway) CreateVariant(ctx context.Context, productID int64, denomination string, price decimal.Decimal) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write("create variant " + denomination); err != nil {
		return 0, err
	}
	g.state.nextID++
	id := g.state.nextID
	g.state.variants[id] = domain.PriceVariant{ID: id, ProductID: productID, Denomination: denomination, Price: price}
	return id, nil
}

func (g *fakeGateway) DeleteVariant(ctx context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write(fmt.Sprintf("delete variant %d", id)); err != nil {
		return err
	}
	delete(g.state.variants, id)
	return nil
}

func (g *fakeGateway) CreateImage(ctx context.Context, productID int64, url string, order int, isPrimary bool) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write("create image " + url); err != nil {
		return 0, err
	}
	g.state.nextID++
	id := g.state.nextID
	g.state.images[id] = domain.GalleryImage{ID: id, ProductID: productID, URL: url, DisplayOrder: order, IsPrimary: isPrimary}
	return id, nil
}

func (g *fakeGateway) UpdateImage(ctx context.Context, id int64, order int, isPrimary bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write(fmt.Sprintf("update image %d", id)); err != nil {
		return err
	}
	img, ok := g.state.images[id]
	if !ok {
		return domain.ErrNotFound
	}
	img.DisplayOrder, img.IsPrimary = order, isPrimary
	g.state.images[id] = img
	return nil
}

func (g *fakeGateway) DeleteImage(ctx context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write(fmt.Sprintf("delete image %d", id)); err != nil {
		return err
	}
	delete(g.state.images, id)
	return nil
}

func (g *fakeGateway) SetProductImage(ctx context.Context, productID int64, url string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.write(fmt.Sprintf("set product image %d", productID)); err != nil {
		return err
	}
	if _, ok := g.state.order[productID]; !ok {
		return domain.ErrNotFound
	}
	g.state.primary[productID] = url
	return nil
}

func (g *fakeGateway) BulkSetDisplayOrder(ctx context.Context, plan domain.OrderingPlan) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "bulk order")
	if g.failBulk {
		return errInjected
	}
	for _, a := range plan {
		if _, ok := g.state.order[a.ProductID]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, a := range plan {
		g.state.order[a.ProductID] = a.DisplayOrder
	}
	return nil
}

// fakeTxManager restores the gateway state when fn fails.
type fakeTxManager struct {
	gw *fakeGateway
}

func (tm *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tm.gw.mu.Lock()
	snapshot := tm.gw.state.clone()
	tm.gw.mu.Unlock()

	if err := fn(ctx); err != nil {
		tm.gw.mu.Lock()
		tm.gw.state = snapshot
		tm.gw.mu.Unlock()
		return err
	}
	return nil
}

// fakeRepo backs ProductRepository with the fake gateway for child rows.
type fakeRepo struct {
	mu         sync.Mutex
	gw         *fakeGateway
	products   map[int64]*domain.Product
	categories []domain.Category
	nextID     int64
	failCreate bool
}

func newFakeRepo(gw *fakeGateway) *fakeRepo {
	return &fakeRepo{gw: gw, products: map[int64]*domain.Product{}, nextID: 1}
}

func (r *fakeRepo) add(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.products[id] = &domain.Product{ID: id, Name: name, Slug: name, CategoryID: 1, DisplayOrder: len(r.products)}
	r.gw.mu.Lock()
	r.gw.addProduct(id, len(r.products)-1)
	r.gw.mu.Unlock()
	return id
}

func (r *fakeRepo) GetCategories(ctx context.Context) ([]domain.Category, error) {
	return r.categories, nil
}

func (r *fakeRepo) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) CreateCategory(ctx context.Context, category *domain.Category) error {
	category.ID = int64(len(r.categories) + 1)
	r.categories = append(r.categories, *category)
	return nil
}

func (r *fakeRepo) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	ids, _ := r.gw.ListProductIDs(ctx)
	var out []domain.Product
	for _, id := range ids {
		p, err := r.GetProductByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	p, ok := r.products[id]
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	cp.Variants, _ = r.gw.ListVariants(ctx, id)
	cp.Images, _ = r.gw.ListImages(ctx, id)
	r.gw.mu.Lock()
	cp.DisplayOrder = r.gw.state.order[id]
	if url, ok := r.gw.state.primary[id]; ok {
		cp.Image = url
	}
	r.gw.mu.Unlock()
	return &cp, nil
}

func (r *fakeRepo) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	var id int64
	for _, p := range r.products {
		if p.Slug == slug {
			id = p.ID
		}
	}
	r.mu.Unlock()
	if id == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetProductByID(ctx, id)
}

func (r *fakeRepo) CreateProduct(ctx context.Context, p *domain.Product) error {
	if r.failCreate {
		return errInjected
	}
	r.mu.Lock()
	p.ID = r.nextID
	r.nextID++
	p.DisplayOrder = len(r.products)
	p.CreatedAt = time.Now()
	cp := *p
	r.products[p.ID] = &cp
	r.mu.Unlock()
	r.gw.mu.Lock()
	r.gw.addProduct(p.ID, p.DisplayOrder)
	r.gw.mu.Unlock()
	return nil
}

func (r *fakeRepo) UpdateProduct(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeRepo) DeleteProduct(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	r.gw.mu.Lock()
	delete(r.gw.state.order, id)
	r.gw.mu.Unlock()
	return nil
}

type fakeUploader struct {
	calls   int
	err     error
	removed []string
}

func (u *fakeUploader) Remove(ctx context.Context, fileURL string) error {
	u.removed = append(u.removed, fileURL)
	return nil
}

func (u *fakeUploader) Upload(ctx context.Context, data []byte, folder, filename string) (*storage.UploadResult, error) {
	u.calls++
	if u.err != nil {
		return nil, u.err
	}
	key := fmt.Sprintf("%s/%d-%s", folder, u.calls, filename)
	return &storage.UploadResult{URL: "https://cdn.test/" + key, Bytes: int64(len(data)), Key: key}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxGalleryImages: 3,
		EditSessionTTL:   time.Minute,
		UploadFolder:     "giftcards",
		CacheProductTTL:  time.Minute,
		CacheCategoryTTL: time.Minute,
	}
}

func newTestCache() cache.CacheService {
	return memcache.NewMemoryCache(time.Minute, time.Minute)
}
