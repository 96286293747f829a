package v1

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/usecase"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"
)

var (
	allowedMimeTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	}
)

type UploadHandler struct {
	uploadUC      *usecase.UploadUsecase
	maxUploadSize int64
}

func NewUploadHandler(uc *usecase.UploadUsecase, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		uploadUC:      uc,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// UploadFile stores a file outside of any edit session.
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	data, filename, err := readImage(w, r, h.maxUploadSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.uploadUC.Upload(r.Context(), data, filename)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"url":   res.URL,
		"bytes": res.Bytes,
	})
}

// readImage pulls the "file" part of a multipart form and checks it is an
// image of an allowed type. The content is sniffed, not trusted from the
// part header.
func readImage(w http.ResponseWriter, r *http.Request, maxSize int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		logger.WithContext(r.Context()).Warn().Err(err).Msg("ParseMultipartForm failed")
		return nil, "", domain.NewValidationError("file", "file too large or invalid format")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", domain.NewValidationError("file", "invalid file")
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, "", domain.NewValidationError("file", fmt.Sprintf("file exceeds %d MB", maxSize>>20))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, "", domain.NewValidationError("file", "invalid file extension")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", domain.NewValidationError("file", "failed to read file")
	}
	if !allowedMimeTypes[http.DetectContentType(data)] {
		return nil, "", domain.NewValidationError("file", "invalid file type. Allowed: JPEG, PNG, WebP, GIF")
	}
	return data, header.Filename, nil
}
