package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"
)

// UploadResult is what the storage collaborator hands back for one file.
type UploadResult struct {
	URL   string `json:"url"`
	Bytes int64  `json:"bytes"`
	Key   string `json:"key,omitempty"`
}

// Uploader stores binary image data and returns its public URL. The catalog
// only ever deals with the returned URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder, filename string) (*UploadResult, error)
}

// Remover deletes a previously uploaded file given its public URL.
type Remover interface {
	Remove(ctx context.Context, fileURL string) error
}

// objectName builds a collision free name "<slug>-<id>" from a client
// filename, without extension.
func objectName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	slug := utils.GenerateSlug(base)
	id := uuid.NewString()[:8]
	if slug == "" {
		return id
	}
	return fmt.Sprintf("%s-%s", slug, id)
}

// objectKey joins folder, generated name and the lower-cased extension.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := objectName(filename) + ext
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}
