package lifecycle

import (
	"strings"

	"github.com/Dias221467/Wishlist_Manager/internal/models"
)

// Change is a status transition together with the fields it sets. Only the
// fields relevant to the target status are non-nil.
type Change struct {
	To         models.Status
	Objection  *models.Objection
	ApprovedAt *models.Date
	ArchivedAt *models.Date
	Automatic  bool
}

// Apply returns w moved into the target state of c. The objection and the
// approval date already on w are kept.
func (c Change) Apply(w models.Wish) models.Wish {
	objection := w.Objection()
	approvedAt := w.ApprovedAt()
	if c.Objection != nil {
		objection = c.Objection
	}
	if c.ApprovedAt != nil {
		approvedAt = c.ApprovedAt
	}

	switch c.To {
	case models.StatusWaiting:
		w.State = models.Waiting{}
	case models.StatusObjected:
		var o models.Objection
		if objection != nil {
			o = *objection
		}
		w.State = models.Objected{Objection: o}
	case models.StatusApproved:
		w.State = models.Approved{ApprovedAt: approvedAt, Objection: objection}
	case models.StatusPurchased:
		w.State = models.Purchased{ApprovedAt: approvedAt, Objection: objection}
	case models.StatusDiscarded:
		w.State = models.Discarded{ApprovedAt: approvedAt, Objection: objection}
	case models.StatusArchived:
		var at models.Date
		if c.ArchivedAt != nil {
			at = *c.ArchivedAt
		}
		w.State = models.Archived{ApprovedAt: approvedAt, ArchivedAt: at, Objection: objection}
	}
	return w
}

// ShouldAutoApprove reports whether a waiting wish has sat out its waiting period.
func ShouldAutoApprove(w models.Wish, today models.Date) bool {
	if w.Status() != models.StatusWaiting {
		return false
	}
	return RemainingWaitDays(w.CreatedAt, today) == 0
}

// ShouldAutoArchive reports whether an approved wish has run out its buying period.
func ShouldAutoArchive(w models.Wish, today models.Date) bool {
	if w.Status() != models.StatusApproved {
		return false
	}
	approvedAt := w.ApprovedAt()
	if approvedAt == nil {
		return false
	}
	return RemainingBuyDays(*approvedAt, today) == 0
}

// AutoChange returns the time-triggered transition due for w, if any.
// Evaluating an already transitioned wish yields nothing.
func AutoChange(w models.Wish, today models.Date) (Change, bool) {
	if ShouldAutoApprove(w, today) {
		return Change{To: models.StatusApproved, ApprovedAt: &today, Automatic: true}, true
	}
	if ShouldAutoArchive(w, today) {
		return Change{To: models.StatusArchived, ArchivedAt: &today, Automatic: true}, true
	}
	return Change{}, false
}

// Request is a user-initiated status change.
type Request struct {
	Status           string
	ObjectionComment string
	ObjectedBy       *models.Person
}

// userEdges lists the transitions a user may request.
var userEdges = map[models.Status][]models.Status{
	models.StatusWaiting:  {models.StatusObjected},
	models.StatusObjected: {models.StatusApproved, models.StatusDiscarded},
	models.StatusApproved: {models.StatusPurchased, models.StatusDiscarded},
}

// Allowed reports whether a user may move a wish from one status to another.
func Allowed(from, to models.Status) bool {
	for _, next := range userEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Plan validates req against the current state of w and returns the change to
// commit. Nothing is mutated; errors are returned before any write happens.
func Plan(w models.Wish, req Request, today models.Date) (Change, error) {
	to, err := ParseStatus(req.Status)
	if err != nil {
		return Change{}, err
	}

	from := w.Status()
	if !Allowed(from, to) {
		return Change{}, invalidTransition(from, to)
	}

	switch to {
	case models.StatusObjected:
		comment := strings.TrimSpace(req.ObjectionComment)
		if comment == "" {
			return Change{}, missing("objectionComment")
		}
		by := w.CreatedBy.Other()
		if req.ObjectedBy != nil {
			if !req.ObjectedBy.Valid() {
				return Change{}, invalid("objectedBy", "unknown person")
			}
			if *req.ObjectedBy == w.CreatedBy {
				return Change{}, invalid("objectedBy", "must not be the creator")
			}
			by = *req.ObjectedBy
		}
		return Change{To: to, Objection: &models.Objection{Comment: comment, By: by}}, nil
	case models.StatusApproved:
		return Change{To: to, ApprovedAt: &today}, nil
	}
	return Change{To: to}, nil
}
