package lifecycle

import (
	"time"

	"github.com/Dias221467/Wishlist_Manager/internal/models"
)

const (
	// WaitPeriodDays is how long a new wish waits for an objection.
	WaitPeriodDays = 7
	// BuyPeriodDays is how long an approved wish may be bought.
	BuyPeriodDays = 7
)

// Clock supplies today's calendar day.
type Clock interface {
	Today() models.Date
}

// SystemClock reads the wall clock in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() models.Date {
	now := time.Now()
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return models.DateOf(now)
}

// FixedClock always returns the same day.
type FixedClock models.Date

func (c FixedClock) Today() models.Date { return models.Date(c) }

// remainingDays counts whole calendar days left in a window that opened on from.
func remainingDays(from, today models.Date, window int) int {
	left := window - today.DaysSince(from)
	if left < 0 {
		return 0
	}
	return left
}

// RemainingWaitDays returns the days left before a wish created on createdAt
// is approved automatically. A creation date in the future counts as full.
func RemainingWaitDays(createdAt, today models.Date) int {
	return min(remainingDays(createdAt, today, WaitPeriodDays), WaitPeriodDays)
}

// RemainingBuyDays returns the days left to buy a wish approved on approvedAt.
func RemainingBuyDays(approvedAt, today models.Date) int {
	return min(remainingDays(approvedAt, today, BuyPeriodDays), BuyPeriodDays)
}
