package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Dias221467/Wishlist_Manager/internal/lifecycle"
	"github.com/Dias221467/Wishlist_Manager/internal/models"
	"github.com/Dias221467/Wishlist_Manager/internal/repository"
	"github.com/Dias221467/Wishlist_Manager/pkg/logger"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// commitWorkers bounds concurrent auto-transition commits during a list.
const commitWorkers = 4

// CreateWishInput is a new wish as entered by one of the two people.
type CreateWishInput struct {
	Title     string   `json:"title" validate:"required"`
	Price     *float64 `json:"price" validate:"required,gte=0"`
	Link      string   `json:"link" validate:"omitempty,http_url"`
	CreatedBy string   `json:"createdBy" validate:"required,oneof=Patrik Julia"`
	ImageURLs []string `json:"imageUrls" validate:"max=5,dive,http_url"`
}

// WishService runs the wish lifecycle on top of a record store. Every read
// applies due automatic transitions before returning.
type WishService struct {
	store    repository.RecordStore
	clock    lifecycle.Clock
	notifier *NotificationService
	activity *ActivityService
	validate *validator.Validate
}

var ErrHistoryUnavailable = errors.New("wish history is not recorded")

func NewWishService(store repository.RecordStore, clock lifecycle.Clock, notifier *NotificationService) *WishService {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &WishService{
		store:    store,
		clock:    clock,
		notifier: notifier,
		validate: v,
	}
}

// WithActivity turns on the per-wish history.
func (s *WishService) WithActivity(activity *ActivityService) *WishService {
	s.activity = activity
	return s
}

func (s *WishService) toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return &lifecycle.ValidationError{Field: fe.Field(), Err: lifecycle.ErrMissingRequiredField}
	}
	return &lifecycle.ValidationError{Field: fe.Field(), Reason: fe.Tag(), Err: lifecycle.ErrInvalidField}
}

// evaluate commits the automatic transition due for w, if any, and returns
// the transitioned wish. On a failed commit the wish is not returned.
func (s *WishService) evaluate(ctx context.Context, w models.Wish, today models.Date) (models.Wish, bool, error) {
	change, ok := lifecycle.AutoChange(w, today)
	if !ok {
		return w, false, nil
	}
	if _, err := s.store.Update(ctx, w.ID, repository.ChangeFields(change)); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"wish_id": w.ID,
			"from":    w.Status(),
			"to":      change.To,
		}).Error("Failed to commit automatic transition")
		return models.Wish{}, false, fmt.Errorf("auto-transition of wish %s to %s: %w", w.ID, change.To, err)
	}

	updated := change.Apply(w)
	logger.Log.WithFields(map[string]interface{}{
		"wish_id": w.ID,
		"from":    w.Status(),
		"to":      change.To,
	}).Info("Wish transitioned automatically")
	s.activity.WishTransitioned(ctx, w.Status(), change, updated)
	if change.To == models.StatusApproved {
		s.notifier.WishApproved(ctx, updated)
	}
	return updated, true, nil
}

func (s *WishService) get(ctx context.Context, id string, today models.Date) (models.Wish, error) {
	rec, err := s.store.FetchOne(ctx, id)
	if err != nil {
		return models.Wish{}, err
	}
	w, err := repository.ToWish(*rec)
	if err != nil {
		return models.Wish{}, fmt.Errorf("failed to decode wish: %w", err)
	}
	w, _, err = s.evaluate(ctx, w, today)
	return w, err
}

// Today is the day the service evaluates against. Callers that render the
// result read it once and pass it to the *At methods.
func (s *WishService) Today() models.Date {
	return s.clock.Today()
}

// GetWish returns a wish with any due automatic transition applied.
func (s *WishService) GetWish(ctx context.Context, id string) (*models.Wish, error) {
	return s.GetWishAt(ctx, id, s.clock.Today())
}

func (s *WishService) GetWishAt(ctx context.Context, id string, today models.Date) (*models.Wish, error) {
	w, err := s.get(ctx, id, today)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WishService) decodeAll(records []repository.Record) []models.Wish {
	wishes := make([]models.Wish, 0, len(records))
	for _, rec := range records {
		w, err := repository.ToWish(rec)
		if err != nil {
			logger.Log.WithError(err).WithField("record_id", rec.ID).Warn("Skipping undecodable wish record")
			continue
		}
		wishes = append(wishes, w)
	}
	return wishes
}

// evaluateAll loads every wish and applies due automatic transitions.
func (s *WishService) evaluateAll(ctx context.Context, today models.Date) ([]models.Wish, int, error) {
	records, err := s.store.FetchAll(ctx, repository.Filter{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wishes: %w", err)
	}
	wishes := s.decodeAll(records)

	changed := make([]bool, len(wishes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(commitWorkers)
	for i := range wishes {
		i := i
		g.Go(func() error {
			w, ok, err := s.evaluate(gctx, wishes[i], today)
			if err != nil {
				return err
			}
			wishes[i], changed[i] = w, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	n := 0
	for _, c := range changed {
		if c {
			n++
		}
	}
	return wishes, n, nil
}

// ListActive returns waiting, objected and approved wishes, newest first.
// Transitions are applied to the whole set before filtering, so a wish that
// just ran out its buying window is left out.
func (s *WishService) ListActive(ctx context.Context) ([]models.Wish, error) {
	return s.ListActiveAt(ctx, s.clock.Today())
}

func (s *WishService) ListActiveAt(ctx context.Context, today models.Date) ([]models.Wish, error) {
	wishes, _, err := s.evaluateAll(ctx, today)
	if err != nil {
		return nil, err
	}
	active, _ := lifecycle.Partition(wishes)
	lifecycle.SortByCreatedDesc(active)
	return active, nil
}

// ListArchived returns archived, purchased and discarded wishes. These are
// terminal, so nothing is re-evaluated.
func (s *WishService) ListArchived(ctx context.Context) ([]models.Wish, error) {
	records, err := s.store.FetchAll(ctx, repository.Filter{Statuses: models.ArchivedStatuses})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archived wishes: %w", err)
	}
	_, archived := lifecycle.Partition(s.decodeAll(records))
	lifecycle.SortByArchivedDesc(archived)
	return archived, nil
}

// Sweep applies due automatic transitions to all wishes and reports how
// many changed.
func (s *WishService) Sweep(ctx context.Context) (int, error) {
	_, n, err := s.evaluateAll(ctx, s.clock.Today())
	return n, err
}

// CreateWish validates the input and stores a new waiting wish.
func (s *WishService) CreateWish(ctx context.Context, in CreateWishInput) (*models.Wish, error) {
	return s.CreateWishAt(ctx, in, s.clock.Today())
}

func (s *WishService) CreateWishAt(ctx context.Context, in CreateWishInput, today models.Date) (*models.Wish, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Link = strings.TrimSpace(in.Link)
	if err := s.validate.Struct(in); err != nil {
		logger.Log.WithError(err).Warn("Rejected wish input")
		return nil, s.toValidationError(err)
	}
	createdBy, err := models.ParsePerson(in.CreatedBy)
	if err != nil {
		return nil, &lifecycle.ValidationError{Field: "createdBy", Reason: in.CreatedBy, Err: lifecycle.ErrInvalidField}
	}

	fields := repository.NewWishFields(in.Title, *in.Price, in.Link, createdBy, today, in.ImageURLs)
	rec, err := s.store.Create(ctx, fields)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create wish")
		return nil, fmt.Errorf("failed to create wish: %w", err)
	}
	w, err := repository.ToWish(*rec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode created wish: %w", err)
	}

	logger.Log.WithField("wish_id", w.ID).Info("Wish created in service layer")
	s.activity.WishCreated(ctx, w)
	s.notifier.WishCreated(ctx, w)
	return &w, nil
}

// TransitionWish applies a user-requested status change. The wish is read
// first, so a due automatic transition takes effect before the request is
// checked against the transition table.
func (s *WishService) TransitionWish(ctx context.Context, id string, req lifecycle.Request) (*models.Wish, error) {
	return s.TransitionWishAt(ctx, id, req, s.clock.Today())
}

func (s *WishService) TransitionWishAt(ctx context.Context, id string, req lifecycle.Request, today models.Date) (*models.Wish, error) {
	w, err := s.get(ctx, id, today)
	if err != nil {
		return nil, err
	}

	change, err := lifecycle.Plan(w, req, today)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"wish_id": id,
			"from":    w.Status(),
			"to":      req.Status,
		}).Warn("Rejected status change")
		return nil, err
	}

	if _, err := s.store.Update(ctx, id, repository.ChangeFields(change)); err != nil {
		logger.Log.WithError(err).WithField("wish_id", id).Error("Failed to update wish status")
		return nil, fmt.Errorf("failed to update wish: %w", err)
	}
	updated := change.Apply(w)

	logger.Log.WithFields(map[string]interface{}{
		"wish_id": id,
		"from":    w.Status(),
		"to":      change.To,
	}).Info("Wish status updated")
	s.activity.WishTransitioned(ctx, w.Status(), change, updated)
	switch change.To {
	case models.StatusObjected:
		s.notifier.WishObjected(ctx, updated)
	case models.StatusApproved:
		s.notifier.WishApproved(ctx, updated)
	}
	return &updated, nil
}

func (s *WishService) DeleteWish(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		logger.Log.WithError(err).WithField("wish_id", id).Error("Failed to delete wish")
		return err
	}
	logger.Log.WithField("wish_id", id).Info("Wish deleted")
	s.activity.WishDeleted(ctx, id)
	return nil
}

// WishHistory returns the recorded history of a wish, newest first.
func (s *WishService) WishHistory(ctx context.Context, id string, limit int) ([]models.Activity, error) {
	if !s.activity.Enabled() {
		return nil, ErrHistoryUnavailable
	}
	return s.activity.GetWishHistory(ctx, id, limit)
}
