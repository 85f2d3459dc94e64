package models

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusObjected  Status = "objected"
	StatusApproved  Status = "approved"
	StatusPurchased Status = "purchased"
	StatusDiscarded Status = "discarded"
	StatusArchived  Status = "archived"
)

var AllStatuses = []Status{
	StatusWaiting,
	StatusObjected,
	StatusApproved,
	StatusPurchased,
	StatusDiscarded,
	StatusArchived,
}

// ActiveStatuses are shown on the main list; the rest end up in the archive.
var ActiveStatuses = []Status{StatusWaiting, StatusObjected, StatusApproved}

var ArchivedStatuses = []Status{StatusArchived, StatusPurchased, StatusDiscarded}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusPurchased || s == StatusDiscarded || s == StatusArchived
}

func (s Status) IsActive() bool {
	return s == StatusWaiting || s == StatusObjected || s == StatusApproved
}
