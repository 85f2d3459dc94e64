package models

const MaxImages = 5

type WishImage struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	SmallURL string `json:"smallUrl,omitempty"`
	LargeURL string `json:"largeUrl,omitempty"`
}

type Objection struct {
	Comment string
	By      Person
}

type Wish struct {
	ID        string
	Title     string
	Price     float64
	Link      string
	Images    []WishImage
	CreatedBy Person
	CreatedAt Date
	State     State
}

func (w Wish) Status() Status {
	if w.State == nil {
		return StatusWaiting
	}
	return w.State.Status()
}

// Objection returns the objection filed against the wish, if it ever was objected.
func (w Wish) Objection() *Objection {
	switch s := w.State.(type) {
	case Objected:
		o := s.Objection
		return &o
	case Approved:
		return s.Objection
	case Purchased:
		return s.Objection
	case Discarded:
		return s.Objection
	case Archived:
		return s.Objection
	}
	return nil
}

func (w Wish) ApprovedAt() *Date {
	switch s := w.State.(type) {
	case Approved:
		return s.ApprovedAt
	case Purchased:
		return s.ApprovedAt
	case Discarded:
		return s.ApprovedAt
	case Archived:
		return s.ApprovedAt
	}
	return nil
}

func (w Wish) ArchivedAt() *Date {
	if s, ok := w.State.(Archived); ok {
		at := s.ArchivedAt
		return &at
	}
	return nil
}
