package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/config"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/cache"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/storage"

	"github.com/google/uuid"
)

const sessionCacheKey = "session:%s"

// sessionEntry guards one EditSession. committing is set for the duration of
// a commit; every other operation is refused while it is.
type sessionEntry struct {
	mu         sync.Mutex
	committing bool
	session    *domain.EditSession
}

// SessionView is the client facing snapshot of an edit session.
type SessionView struct {
	ID        string                `json:"sessionId"`
	ProductID int64                 `json:"productId"`
	OpenedAt  time.Time             `json:"openedAt"`
	Variants  []domain.VariantEntry `json:"amounts"`
	Images    []domain.GalleryImage `json:"images"`
	MaxImages int                   `json:"maxImages"`
}

// CommitResult reports what a commit applied and the product as re-read
// afterwards.
type CommitResult struct {
	Steps   []domain.CommitStep `json:"steps"`
	Product *domain.Product     `json:"product,omitempty"`
}

// EditSessionUsecase hosts the pending edits of products' variants and
// galleries and commits them through the catalog gateway.
type EditSessionUsecase struct {
	repo     domain.ProductRepository
	gateway  domain.CatalogGateway
	uploader storage.Uploader
	executor *commitExecutor
	sessions cache.CacheService
	cache    cache.CacheService
	cfg      *config.Config
}

// NewEditSessionUsecase wires the session lifecycle. sessions stores open
// sessions and should expire idle entries; cache is the product read cache
// purged after each commit. txManager may be nil.
func NewEditSessionUsecase(
	repo domain.ProductRepository,
	gateway domain.CatalogGateway,
	txManager domain.TransactionManager,
	uploader storage.Uploader,
	sessions cache.CacheService,
	cache cache.CacheService,
	cfg *config.Config,
) *EditSessionUsecase {
	return &EditSessionUsecase{
		repo:     repo,
		gateway:  gateway,
		uploader: uploader,
		executor: &commitExecutor{gateway: gateway, txManager: txManager},
		sessions: sessions,
		cache:    cache,
		cfg:      cfg,
	}
}

// Open seeds a new session from the persisted variants and images of a
// product.
func (uc *EditSessionUsecase) Open(ctx context.Context, productID int64) (*SessionView, error) {
	if _, err := uc.repo.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	variants, err := uc.gateway.ListVariants(ctx, productID)
	if err != nil {
		return nil, &domain.GatewayError{Op: domain.OpList, Entity: domain.EntityVariant, ID: productID, Err: err}
	}
	images, err := uc.gateway.ListImages(ctx, productID)
	if err != nil {
		return nil, &domain.GatewayError{Op: domain.OpList, Entity: domain.EntityImage, ID: productID, Err: err}
	}

	s := domain.NewEditSession(uuid.NewString(), productID, variants, images, uc.cfg.MaxGalleryImages)
	uc.store(&sessionEntry{session: s})

	logger.WithContext(ctx).Debug().Str("session_id", s.ID).Int64("product_id", productID).Msg("Edit session opened")
	return viewOf(s), nil
}

func (uc *EditSessionUsecase) Get(ctx context.Context, sid string) (*SessionView, error) {
	return uc.mutate(sid, func(*domain.EditSession) error { return nil })
}

// Abandon discards a session without touching the gateway. Pending uploads
// still in the gallery are removed from storage on a best effort basis when
// the uploader supports it.
func (uc *EditSessionUsecase) Abandon(ctx context.Context, sid string) error {
	entry, err := uc.lookup(sid)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.committing {
		return domain.ErrSessionBusy
	}
	uc.sessions.Delete(fmt.Sprintf(sessionCacheKey, sid))

	remover, ok := uc.uploader.(storage.Remover)
	if !ok {
		return nil
	}
	for _, img := range entry.session.Gallery.Images() {
		if img.Persisted() {
			continue
		}
		if err := remover.Remove(ctx, img.URL); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("url", img.URL).Msg("Orphaned upload not removed")
		}
	}
	return nil
}

// AddImage uploads data and appends the resulting URL to the gallery. The
// capacity check runs before the upload.
func (uc *EditSessionUsecase) AddImage(ctx context.Context, sid string, data []byte, filename string) (*SessionView, error) {
	return uc.mutate(sid, func(s *domain.EditSession) error {
		if err := s.Gallery.CanAdd(); err != nil {
			return err
		}
		res, err := uc.uploader.Upload(ctx, data, uc.cfg.UploadFolder, filename)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
		}
		logger.WithContext(ctx).Info().Str("session_id", sid).Str("url", res.URL).Int64("bytes", res.Bytes).Msg("Gallery image uploaded")
		return s.Gallery.Add(res.URL)
	})
}

// AttachImage appends an already hosted image URL without uploading.
func (uc *EditSessionUsecase) AttachImage(ctx context.Context, sid string, url string) (*SessionView, error) {
	return uc.mutate(sid, func(s *domain.EditSession) error { return s.Gallery.Add(url) })
}

func (uc *EditSessionUsecase) RemoveImage(ctx context.Context, sid string, index int) (*SessionView, error) {
	return uc.mutate(sid, func(s *domain.EditSession) error { return s.Gallery.Remove(index) })
}

func (uc *EditSessionUsecase) SetPrimary(ctx context.Context, sid string, index int) (*SessionView, error) {
	return uc.mutate(sid, func(s *domain.EditSession) error { return s.Gallery.SetPrimary(index) })
}

// MoveImage swaps the image with its neighbour; direction is "up" or "down".
func (uc *EditSessionUsecase) MoveImage(ctx context.Context, sid string, index int, direction string) (*SessionView, error) {
	return uc.mutate(sid, func(s *domain.EditSession) error {
		switch direction {
		case "up":
			return s.Gallery.MoveUp(index)
		case "down":
			return s.Gallery.MoveDown(index)
		default:
			return domain.NewValidationError("direction", "direction must be up or down")
		}
	})
}

func (uc *EditSessionUsecase) AddVariant(ctx context.Context, sid string) (*SessionView, error) {
	return uc.mutate(sid, func(s *domain.EditSession) error {
		s.Variants.Add()
		return nil
	})
}

func (uc *EditSessionUsecase) SetVariant(ctx context.Context, sid string, index int, denomination, price string) (*SessionView, error) {
	return uc.mutate(sid, func(s *domain.EditSession) error {
		return s.Variants.Set(index, denomination, price)
	})
}

// RemoveVariant drops an entry. Removing the last entry is a no-op.
func (uc *EditSessionUsecase) RemoveVariant(ctx context.Context, sid string, index int) (*SessionView, error) {
	return uc.mutate(sid, func(s *domain.EditSession) error {
		s.Variants.Remove(index)
		return nil
	})
}

// Commit validates the session and persists its plan. Validation failures
// make no gateway call. On success the session is closed; on any failure it
// stays open so the admin can retry, with the steps already applied folded
// into its persisted snapshot.
func (uc *EditSessionUsecase) Commit(ctx context.Context, sid string) (*CommitResult, error) {
	entry, err := uc.lookup(sid)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	if entry.committing {
		entry.mu.Unlock()
		return nil, domain.ErrSessionBusy
	}
	plan, err := entry.session.Plan()
	if err != nil {
		entry.mu.Unlock()
		return nil, err
	}
	entry.committing = true
	entry.mu.Unlock()

	defer func() {
		entry.mu.Lock()
		entry.committing = false
		entry.mu.Unlock()
	}()

	log := logger.WithContext(ctx).With().Str("session_id", sid).Int64("product_id", plan.ProductID).Logger()

	steps, err := uc.executor.Execute(ctx, plan)
	if err != nil {
		log.Error().Err(err).Int("applied", len(steps)).Msg("Commit failed")
		entry.mu.Lock()
		entry.session.Absorb(plan, steps)
		entry.mu.Unlock()
		uc.sessions.Set(fmt.Sprintf(sessionCacheKey, sid), entry, uc.cfg.EditSessionTTL)
		return nil, err
	}

	uc.sessions.Delete(fmt.Sprintf(sessionCacheKey, sid))
	uc.cache.DeletePrefix(productCachePrefix)
	logger.CacheInvalidated(ctx, productCachePrefix, "edit session committed")
	log.Info().Int("calls", plan.Calls()).Msg("Edit session committed")

	result := &CommitResult{Steps: steps}
	if product, err := uc.repo.GetProductByID(ctx, plan.ProductID); err != nil {
		log.Warn().Err(err).Msg("Re-read after commit failed")
	} else {
		result.Product = product
	}
	return result, nil
}

// mutate runs fn on the session under its lock and refreshes its expiry.
func (uc *EditSessionUsecase) mutate(sid string, fn func(*domain.EditSession) error) (*SessionView, error) {
	entry, err := uc.lookup(sid)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.committing {
		return nil, domain.ErrSessionBusy
	}
	if err := fn(entry.session); err != nil {
		return nil, err
	}
	uc.store(entry)
	return viewOf(entry.session), nil
}

func (uc *EditSessionUsecase) lookup(sid string) (*sessionEntry, error) {
	val, found := uc.sessions.Get(fmt.Sprintf(sessionCacheKey, sid))
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	return val.(*sessionEntry), nil
}

func (uc *EditSessionUsecase) store(entry *sessionEntry) {
	uc.sessions.Set(fmt.Sprintf(sessionCacheKey, entry.session.ID), entry, uc.cfg.EditSessionTTL)
}

func viewOf(s *domain.EditSession) *SessionView {
	return &SessionView{
		ID:        s.ID,
		ProductID: s.ProductID,
		OpenedAt:  s.OpenedAt,
		Variants:  s.Variants.Entries(),
		Images:    s.Gallery.Images(),
		MaxImages: s.Gallery.Max(),
	}
}
