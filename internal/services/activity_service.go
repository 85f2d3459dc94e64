package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Wishlist_Manager/internal/lifecycle"
	"github.com/Dias221467/Wishlist_Manager/internal/models"
	"github.com/sirupsen/logrus"
)

type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	GetWishActivities(ctx context.Context, wishID string, limit int) ([]models.Activity, error)
}

// ActivityService keeps a per-wish history. A nil *ActivityService is valid
// and records nothing; history is best effort and never fails the caller.
type ActivityService struct {
	repo ActivityStore
	now  func() time.Time
}

func NewActivityService(repo ActivityStore) *ActivityService {
	if repo == nil {
		return nil
	}
	return &ActivityService{repo: repo, now: time.Now}
}

func (s *ActivityService) Enabled() bool { return s != nil }

func (s *ActivityService) log(ctx context.Context, activity models.Activity) {
	if s == nil {
		return
	}
	activity.Timestamp = s.now()
	if err := s.repo.CreateActivity(ctx, &activity); err != nil {
		logrus.WithError(err).WithField("wish_id", activity.WishID).Warn("Failed to record wish activity")
		return
	}
	logrus.WithFields(logrus.Fields{
		"wish_id": activity.WishID,
		"type":    activity.Type,
	}).Debug("Activity logged")
}

func (s *ActivityService) WishCreated(ctx context.Context, w models.Wish) {
	s.log(ctx, models.Activity{
		WishID:  w.ID,
		Type:    models.ActivityCreated,
		To:      models.StatusWaiting,
		Message: fmt.Sprintf("%s hat \"%s\" erfasst", w.CreatedBy, w.Title),
	})
}

func (s *ActivityService) WishTransitioned(ctx context.Context, from models.Status, c lifecycle.Change, w models.Wish) {
	msg := fmt.Sprintf("%s -> %s", from, c.To)
	if c.Objection != nil {
		msg = fmt.Sprintf("Einspruch von %s: %s", c.Objection.By, c.Objection.Comment)
	}
	s.log(ctx, models.Activity{
		WishID:    w.ID,
		Type:      models.ActivityTransitioned,
		From:      from,
		To:        c.To,
		Automatic: c.Automatic,
		Message:   msg,
	})
}

func (s *ActivityService) WishDeleted(ctx context.Context, id string) {
	s.log(ctx, models.Activity{WishID: id, Type: models.ActivityDeleted, Message: "gelöscht"})
}

// GetWishHistory returns up to limit entries, newest first
func (s *ActivityService) GetWishHistory(ctx context.Context, wishID string, limit int) ([]models.Activity, error) {
	return s.repo.GetWishActivities(ctx, wishID, limit)
}
