package models

// State is the status of a wish together with the data that status carries.
// Only the variants in this file implement it.
//
// The objection and the approval date are carried into later states so that
// they are never lost once set.
type State interface {
	Status() Status
	state()
}

type Waiting struct{}

type Objected struct {
	Objection Objection
}

type Approved struct {
	// ApprovedAt may be missing on records written before it was tracked.
	ApprovedAt *Date
	Objection  *Objection
}

type Purchased struct {
	ApprovedAt *Date
	Objection  *Objection
}

// Discarded is reachable from Objected (no approval date) and from Approved.
type Discarded struct {
	ApprovedAt *Date
	Objection  *Objection
}

type Archived struct {
	ApprovedAt *Date
	ArchivedAt Date
	Objection  *Objection
}

func (Waiting) Status() Status   { return StatusWaiting }
func (Objected) Status() Status  { return StatusObjected }
func (Approved) Status() Status  { return StatusApproved }
func (Purchased) Status() Status { return StatusPurchased }
func (Discarded) Status() Status { return StatusDiscarded }
func (Archived) Status() Status  { return StatusArchived }

func (Waiting) state()   {}
func (Objected) state()  {}
func (Approved) state()  {}
func (Purchased) state() {}
func (Discarded) state() {}
func (Archived) state()  {}
