package domain

// GalleryDiff is the minimal set of gateway writes that moves a persisted
// gallery to a desired one.
type GalleryDiff struct {
	ToDelete []GalleryImage `json:"toDelete"`
	ToCreate []GalleryImage `json:"toCreate"`
	// ToUpdate holds persisted entries whose order or primary flag changed.
	ToUpdate []GalleryImage `json:"toUpdate"`
}

func (d GalleryDiff) Empty() bool {
	return len(d.ToDelete) == 0 && len(d.ToCreate) == 0 && len(d.ToUpdate) == 0
}

// Reconcile diffs the persisted gallery against the desired one. It has no
// side effects and preserves the ordering of its inputs in each bucket.
//
// A desired entry whose id is unknown to persisted is treated as pending and
// recreated.
func Reconcile(persisted, desired []GalleryImage) GalleryDiff {
	var diff GalleryDiff

	old := make(map[int64]GalleryImage, len(persisted))
	for _, p := range persisted {
		if p.Persisted() {
			old[p.ID] = p
		}
	}

	keep := make(map[int64]struct{}, len(desired))
	for _, g := range desired {
		p, ok := old[g.ID]
		if !g.Persisted() || !ok {
			created := g
			created.ID = 0
			diff.ToCreate = append(diff.ToCreate, created)
			continue
		}
		keep[g.ID] = struct{}{}
		if p.DisplayOrder != g.DisplayOrder || p.IsPrimary != g.IsPrimary {
			diff.ToUpdate = append(diff.ToUpdate, g)
		}
	}

	for _, p := range persisted {
		if !p.Persisted() {
			continue
		}
		if _, ok := keep[p.ID]; !ok {
			diff.ToDelete = append(diff.ToDelete, p)
		}
	}
	return diff
}
