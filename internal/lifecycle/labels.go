package lifecycle

import (
	"fmt"
	"math"

	"github.com/Dias221467/Wishlist_Manager/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var swissGerman = message.NewPrinter(language.MustParse("de-CH"))

// Action is a button offered for a wish in its current status.
type Action struct {
	Label  string        `json:"label"`
	Status models.Status `json:"status"`
}

var actionLabels = map[models.Status]map[models.Status]string{
	models.StatusWaiting: {
		models.StatusObjected: "Einspruch",
	},
	models.StatusObjected: {
		models.StatusApproved:  "Freigeben",
		models.StatusDiscarded: "Verwerfen",
	},
	models.StatusApproved: {
		models.StatusPurchased: "Gekauft",
		models.StatusDiscarded: "Doch nicht",
	},
}

// Actions lists what a user can do with a wish in status s.
func Actions(s models.Status) []Action {
	actions := make([]Action, 0, len(userEdges[s]))
	for _, to := range userEdges[s] {
		actions = append(actions, Action{Label: actionLabels[s][to], Status: to})
	}
	return actions
}

func days(n int) string {
	if n == 1 {
		return "1 Tag"
	}
	return fmt.Sprintf("%d Tage", n)
}

// RemainingDays returns the days left in the window the wish is currently in,
// or -1 when it is in none.
func RemainingDays(w models.Wish, today models.Date) int {
	switch w.Status() {
	case models.StatusWaiting:
		return RemainingWaitDays(w.CreatedAt, today)
	case models.StatusApproved:
		// Without an approval date the wish never auto-archives, so it has no window.
		if at := w.ApprovedAt(); at != nil {
			return RemainingBuyDays(*at, today)
		}
	}
	return -1
}

// StatusLabel is the short line shown next to the creator's name.
func StatusLabel(w models.Wish, today models.Date) string {
	switch w.Status() {
	case models.StatusWaiting:
		return "noch " + days(RemainingDays(w, today))
	case models.StatusObjected:
		if o := w.Objection(); o != nil && o.By.Valid() {
			return "Einspruch von " + o.By.String()
		}
		return "Einspruch"
	case models.StatusApproved:
		if n := RemainingDays(w, today); n >= 0 {
			return "Noch " + days(n) + " zum Kaufen"
		}
		return "Freigegeben"
	}
	return ""
}

// FormatPrice renders a price in whole Swiss francs.
func FormatPrice(price float64) string {
	return swissGerman.Sprintf("CHF %d", int64(math.Round(price)))
}

func ImageCountLabel(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "1 Bild"
	}
	return fmt.Sprintf("%d Bilder", n)
}
