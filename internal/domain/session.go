package domain

import "time"

// EditSession is the pending editing state of one product: its variant
// editor and gallery together with the persisted rows they were seeded from.
// It is owned by a single caller and has no server effect until committed.
type EditSession struct {
	ID        string
	ProductID int64
	OpenedAt  time.Time
	Variants  *VariantSet
	Gallery   *Gallery

	persistedVariants []PriceVariant
	persistedImages   []GalleryImage
	// persistedPrimary is the primary URL last written to the product's
	// image column by this session, or the seeded gallery primary.
	persistedPrimary string
}

func NewEditSession(id string, productID int64, variants []PriceVariant, images []GalleryImage, maxImages int) *EditSession {
	pv := make([]PriceVariant, len(variants))
	copy(pv, variants)
	pi := make([]GalleryImage, len(images))
	copy(pi, images)

	gallery := NewGallery(images, maxImages)
	return &EditSession{
		ID:                id,
		ProductID:         productID,
		OpenedAt:          time.Now(),
		Variants:          NewVariantSet(variants),
		Gallery:           gallery,
		persistedVariants: pv,
		persistedImages:   pi,
		persistedPrimary:  gallery.PrimaryURL(),
	}
}

func (s *EditSession) PersistedImages() []GalleryImage {
	out := make([]GalleryImage, len(s.persistedImages))
	copy(out, s.persistedImages)
	return out
}

func (s *EditSession) PersistedVariants() []PriceVariant {
	out := make([]PriceVariant, len(s.persistedVariants))
	copy(out, s.persistedVariants)
	return out
}

// CommitPlan lists every gateway call a commit will make, in execution
// order: variant deletes, variant creates, image deletes, image creates,
// image updates, then the product image.
type CommitPlan struct {
	ProductID      int64          `json:"productId"`
	DeleteVariants []PriceVariant `json:"deleteVariants"`
	CreateVariants []VariantDraft `json:"createVariants"`
	Gallery        GalleryDiff    `json:"gallery"`
	// PrimaryImage is the new value of the product's image column, when the
	// gallery primary changed.
	PrimaryImage *string `json:"primaryImage,omitempty"`
}

func (p CommitPlan) Empty() bool {
	return p.Calls() == 0
}

// Calls is the number of gateway writes the plan issues.
func (p CommitPlan) Calls() int {
	n := len(p.DeleteVariants) + len(p.CreateVariants) +
		len(p.Gallery.ToDelete) + len(p.Gallery.ToCreate) + len(p.Gallery.ToUpdate)
	if p.PrimaryImage != nil {
		n++
	}
	return n
}

// Plan validates the session and computes its commit plan. Variants are
// replaced wholesale when they differ from the persisted set; the gallery is
// reconciled entry by entry.
func (s *EditSession) Plan() (CommitPlan, error) {
	drafts, err := s.Variants.Validate()
	if err != nil {
		return CommitPlan{}, err
	}

	plan := CommitPlan{
		ProductID: s.ProductID,
		Gallery:   Reconcile(s.persistedImages, s.Gallery.Images()),
	}
	if !SameVariants(s.persistedVariants, drafts) {
		plan.DeleteVariants = s.PersistedVariants()
		plan.CreateVariants = drafts
	}
	if url := s.Gallery.PrimaryURL(); url != s.persistedPrimary {
		plan.PrimaryImage = &url
	}
	return plan, nil
}

// Absorb folds the leading steps of plan that a failed commit already
// applied into the persisted snapshot, so the next Plan covers only the
// remaining work. steps must be the completed prefix of plan, in order.
func (s *EditSession) Absorb(plan CommitPlan, steps []CommitStep) {
	n := 0
	next := func() (CommitStep, bool) {
		if n >= len(steps) {
			return CommitStep{}, false
		}
		n++
		return steps[n-1], true
	}

	for _, v := range plan.DeleteVariants {
		if _, ok := next(); !ok {
			return
		}
		s.persistedVariants = withoutVariant(s.persistedVariants, v.ID)
	}
	for _, d := range plan.CreateVariants {
		step, ok := next()
		if !ok {
			return
		}
		s.persistedVariants = append(s.persistedVariants, PriceVariant{
			ID: step.ID, ProductID: s.ProductID, Denomination: d.Denomination, Price: d.Price,
		})
	}
	for _, img := range plan.Gallery.ToDelete {
		if _, ok := next(); !ok {
			return
		}
		s.persistedImages = withoutImage(s.persistedImages, img.ID)
	}
	for _, img := range plan.Gallery.ToCreate {
		step, ok := next()
		if !ok {
			return
		}
		// Entries cannot move while a commit runs, so the planned order is
		// still the gallery index.
		img.ID, img.ProductID = step.ID, s.ProductID
		s.Gallery.markPersisted(img.DisplayOrder, step.ID, s.ProductID)
		s.persistedImages = append(s.persistedImages, img)
	}
	for _, img := range plan.Gallery.ToUpdate {
		if _, ok := next(); !ok {
			return
		}
		for i := range s.persistedImages {
			if s.persistedImages[i].ID == img.ID {
				s.persistedImages[i].DisplayOrder = img.DisplayOrder
				s.persistedImages[i].IsPrimary = img.IsPrimary
			}
		}
	}
	if plan.PrimaryImage != nil {
		if _, ok := next(); ok {
			s.persistedPrimary = *plan.PrimaryImage
		}
	}
}

func withoutVariant(vs []PriceVariant, id int64) []PriceVariant {
	out := vs[:0:0]
	for _, v := range vs {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out
}

func withoutImage(imgs []GalleryImage, id int64) []GalleryImage {
	out := imgs[:0:0]
	for _, img := range imgs {
		if img.ID != id {
			out = append(out, img)
		}
	}
	return out
}
