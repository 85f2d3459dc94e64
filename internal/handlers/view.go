package handlers

import (
	"github.com/Dias221467/Wishlist_Manager/internal/lifecycle"
	"github.com/Dias221467/Wishlist_Manager/internal/models"
)

// WishView is a wish as sent to the client, with the fields the UI derives
// from the status and today's date.
type WishView struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Price            float64            `json:"price"`
	PriceLabel       string             `json:"priceLabel"`
	Link             string             `json:"link,omitempty"`
	Images           []models.WishImage `json:"images,omitempty"`
	ImageLabel       string             `json:"imageLabel,omitempty"`
	Status           models.Status      `json:"status"`
	CreatedBy        models.Person      `json:"createdBy"`
	CreatedAt        models.Date        `json:"createdAt"`
	ObjectionComment string             `json:"objectionComment,omitempty"`
	ObjectedBy       *models.Person     `json:"objectedBy,omitempty"`
	ApprovedAt       *models.Date       `json:"approvedAt,omitempty"`
	ArchivedAt       *models.Date       `json:"archivedAt,omitempty"`
	StatusLabel      string             `json:"statusLabel,omitempty"`
	RemainingDays    *int               `json:"remainingDays,omitempty"`
	Actions          []lifecycle.Action `json:"actions"`
}

func NewWishView(w models.Wish, today models.Date) WishView {
	v := WishView{
		ID:          w.ID,
		Title:       w.Title,
		Price:       w.Price,
		PriceLabel:  lifecycle.FormatPrice(w.Price),
		Link:        w.Link,
		Images:      w.Images,
		ImageLabel:  lifecycle.ImageCountLabel(len(w.Images)),
		Status:      w.Status(),
		CreatedBy:   w.CreatedBy,
		CreatedAt:   w.CreatedAt,
		ApprovedAt:  w.ApprovedAt(),
		ArchivedAt:  w.ArchivedAt(),
		StatusLabel: lifecycle.StatusLabel(w, today),
		Actions:     lifecycle.Actions(w.Status()),
	}
	if o := w.Objection(); o != nil {
		by := o.By
		v.ObjectionComment = o.Comment
		v.ObjectedBy = &by
	}
	if days := lifecycle.RemainingDays(w, today); days >= 0 {
		v.RemainingDays = &days
	}
	return v
}

func newWishViews(wishes []models.Wish, today models.Date) []WishView {
	views := make([]WishView, 0, len(wishes))
	for _, w := range wishes {
		views = append(views, NewWishView(w, today))
	}
	return views
}
