package usecase

import (
	"context"
	"fmt"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/storage"
)

// UploadUsecase stores files outside of any edit session, e.g. a category
// banner or the legacy single product image.
type UploadUsecase struct {
	uploader storage.Uploader
	folder   string
}

func NewUploadUsecase(uploader storage.Uploader, folder string) *UploadUsecase {
	return &UploadUsecase{uploader: uploader, folder: folder}
}

func (uc *UploadUsecase) Upload(ctx context.Context, data []byte, filename string) (*storage.UploadResult, error) {
	if len(data) == 0 {
		return nil, domain.NewValidationError("file", "file is empty")
	}
	res, err := uc.uploader.Upload(ctx, data, uc.folder, filename)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Str("filename", filename).Msg("Upload failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	return res, nil
}
