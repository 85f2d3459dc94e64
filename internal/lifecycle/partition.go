package lifecycle

import (
	"sort"

	"github.com/Dias221467/Wishlist_Manager/internal/models"
)

// Partition splits wishes into the active and the archived view. Every wish
// lands in exactly one of them; order is preserved.
func Partition(wishes []models.Wish) (active, archived []models.Wish) {
	active = make([]models.Wish, 0, len(wishes))
	archived = make([]models.Wish, 0)
	for _, w := range wishes {
		if w.Status().IsActive() {
			active = append(active, w)
		} else {
			archived = append(archived, w)
		}
	}
	return active, archived
}

// SortByCreatedDesc orders wishes newest first.
func SortByCreatedDesc(wishes []models.Wish) {
	sort.SliceStable(wishes, func(i, j int) bool {
		return wishes[i].CreatedAt.After(wishes[j].CreatedAt)
	})
}

// SortByArchivedDesc orders wishes by archive date, newest first. Wishes that
// were bought or dropped have no archive date and go last, newest created first.
func SortByArchivedDesc(wishes []models.Wish) {
	sort.SliceStable(wishes, func(i, j int) bool {
		a, b := wishes[i].ArchivedAt(), wishes[j].ArchivedAt()
		switch {
		case a != nil && b != nil:
			return a.After(*b)
		case a != nil:
			return true
		case b != nil:
			return false
		}
		return wishes[i].CreatedAt.After(wishes[j].CreatedAt)
	})
}
