package domain

import (
	"fmt"
	"sort"
	"strings"
)

const DefaultMaxGalleryImages = 3

// Gallery is the in-memory, ordered image list of one product being edited.
//
// After every operation DisplayOrder equals the array position of each entry,
// and a non-empty gallery has exactly one primary image.
type Gallery struct {
	max    int
	images []GalleryImage
}

// NewGallery seeds a gallery from persisted rows. Rows are ordered by their
// stored display order; inconsistent legacy rows (gaps, no primary, several
// primaries) are normalized, which makes the next commit write the repair.
func NewGallery(persisted []GalleryImage, max int) *Gallery {
	if max <= 0 {
		max = DefaultMaxGalleryImages
	}
	images := make([]GalleryImage, len(persisted))
	copy(images, persisted)
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].DisplayOrder < images[j].DisplayOrder
	})

	g := &Gallery{max: max, images: images}
	g.renumber()

	primary := -1
	for i := range g.images {
		if g.images[i].IsPrimary {
			if primary >= 0 {
				g.images[i].IsPrimary = false
				continue
			}
			primary = i
		}
	}
	if primary < 0 && len(g.images) > 0 {
		g.images[0].IsPrimary = true
	}
	return g
}

func (g *Gallery) Max() int { return g.max }

func (g *Gallery) Len() int { return len(g.images) }

// Images returns a copy of the current entries.
func (g *Gallery) Images() []GalleryImage {
	out := make([]GalleryImage, len(g.images))
	copy(out, g.images)
	return out
}

// Primary returns the index of the primary entry.
func (g *Gallery) Primary() (int, bool) {
	for i, img := range g.images {
		if img.IsPrimary {
			return i, true
		}
	}
	return -1, false
}

// PrimaryURL returns the URL of the primary entry, or "" for an empty gallery.
func (g *Gallery) PrimaryURL() string {
	if i, ok := g.Primary(); ok {
		return g.images[i].URL
	}
	return ""
}

// markPersisted records the id the gateway assigned to the entry at index.
func (g *Gallery) markPersisted(index int, id, productID int64) {
	if index >= 0 && index < len(g.images) {
		g.images[index].ID = id
		g.images[index].ProductID = productID
	}
}

// CanAdd reports whether another image fits, so callers can refuse before
// uploading anything.
func (g *Gallery) CanAdd() error {
	if len(g.images) >= g.max {
		return &CapacityError{Max: g.max}
	}
	return nil
}

// Add appends a pending entry for an uploaded URL. The first image of an
// empty gallery becomes primary.
func (g *Gallery) Add(url string) error {
	if err := g.CanAdd(); err != nil {
		return err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return NewValidationError("url", "image url is required")
	}
	g.images = append(g.images, GalleryImage{
		URL:          url,
		DisplayOrder: len(g.images),
		IsPrimary:    len(g.images) == 0,
	})
	return nil
}

// Remove drops the entry at index. If it was primary, the new first entry
// takes over.
func (g *Gallery) Remove(index int) error {
	if err := g.check(index); err != nil {
		return err
	}
	wasPrimary := g.images[index].IsPrimary
	g.images = append(g.images[:index], g.images[index+1:]...)
	g.renumber()
	if wasPrimary && len(g.images) > 0 {
		g.images[0].IsPrimary = true
	}
	return nil
}

// SetPrimary makes index the only primary entry.
func (g *Gallery) SetPrimary(index int) error {
	if err := g.check(index); err != nil {
		return err
	}
	for i := range g.images {
		g.images[i].IsPrimary = i == index
	}
	return nil
}

// MoveUp swaps index with its predecessor. No-op at the top.
func (g *Gallery) MoveUp(index int) error {
	if err := g.check(index); err != nil {
		return err
	}
	if index == 0 {
		return nil
	}
	g.swap(index-1, index)
	return nil
}

// MoveDown swaps index with its successor. No-op at the bottom.
func (g *Gallery) MoveDown(index int) error {
	if err := g.check(index); err != nil {
		return err
	}
	if index == len(g.images)-1 {
		return nil
	}
	g.swap(index, index+1)
	return nil
}

func (g *Gallery) swap(i, j int) {
	g.images[i], g.images[j] = g.images[j], g.images[i]
	g.renumber()
}

func (g *Gallery) renumber() {
	for i := range g.images {
		g.images[i].DisplayOrder = i
	}
}

func (g *Gallery) check(index int) error {
	if index < 0 || index >= len(g.images) {
		return NewValidationError("index", fmt.Sprintf("image index %d out of range [0,%d)", index, len(g.images)))
	}
	return nil
}
