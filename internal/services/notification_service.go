package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dias221467/Wishlist_Manager/internal/lifecycle"
	"github.com/Dias221467/Wishlist_Manager/internal/models"
	"github.com/sirupsen/logrus"
)

// Mailer sends a single plain text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationService tells the other person when something happens to a
// wish. Delivery runs in the background and failures are only logged.
type NotificationService struct {
	mailer    Mailer
	addresses map[models.Person]string
	appURL    string
}

// NewNotificationService returns nil when mailer is nil; a nil service
// drops every notification.
func NewNotificationService(mailer Mailer, addresses map[models.Person]string, appURL string) *NotificationService {
	if mailer == nil {
		return nil
	}
	return &NotificationService{
		mailer:    mailer,
		addresses: addresses,
		appURL:    strings.TrimRight(appURL, "/"),
	}
}

func (s *NotificationService) wishURL(w models.Wish) string {
	if s.appURL == "" {
		return ""
	}
	return "\n\n" + s.appURL + "/wish/" + w.ID
}

func (s *NotificationService) send(ctx context.Context, to models.Person, notifType, subject, body string, w models.Wish) {
	if s == nil {
		return
	}
	address := s.addresses[to]
	if address == "" {
		logrus.WithFields(logrus.Fields{"person": to.String(), "type": notifType}).Debug("No address configured, skipping notification")
		return
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.mailer.Send(ctx, address, subject, body+s.wishURL(w)); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"wish_id": w.ID,
				"type":    notifType,
			}).Warn("Failed to send notification")
		}
	}()
}

// WishCreated asks the other person to look at a new wish.
func (s *NotificationService) WishCreated(ctx context.Context, w models.Wish) {
	subject := fmt.Sprintf("Neuer Wunsch von %s: %s", w.CreatedBy, w.Title)
	body := fmt.Sprintf("%s wünscht sich \"%s\" für %s.\nDu hast %d Tage Zeit für einen Einspruch.",
		w.CreatedBy, w.Title, lifecycle.FormatPrice(w.Price), lifecycle.WaitPeriodDays)
	s.send(ctx, w.CreatedBy.Other(), "wish_created", subject, body, w)
}

// WishObjected tells the creator why the other person objected.
func (s *NotificationService) WishObjected(ctx context.Context, w models.Wish) {
	o := w.Objection()
	if o == nil {
		return
	}
	subject := fmt.Sprintf("Einspruch von %s: %s", o.By, w.Title)
	body := fmt.Sprintf("%s hat Einspruch gegen \"%s\" erhoben:\n\n\"%s\"", o.By, w.Title, o.Comment)
	s.send(ctx, w.CreatedBy, "wish_objected", subject, body, w)
}

// WishApproved tells the creator the buying window has opened.
func (s *NotificationService) WishApproved(ctx context.Context, w models.Wish) {
	subject := fmt.Sprintf("Freigegeben: %s", w.Title)
	body := fmt.Sprintf("\"%s\" ist freigegeben. Du hast %d Tage Zeit zum Kaufen.", w.Title, lifecycle.BuyPeriodDays)
	s.send(ctx, w.CreatedBy, "wish_approved", subject, body, w)
}
