package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Dias221467/Wishlist_Manager/internal/lifecycle"
	"github.com/Dias221467/Wishlist_Manager/internal/models"
	"github.com/Dias221467/Wishlist_Manager/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func (m *recordingMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func today(s string) lifecycle.FixedClock {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return lifecycle.FixedClock(d)
}

func record(status, createdAt string) repository.Fields {
	return repository.Fields{
		Title:     "Kopfhörer",
		Price:     250,
		Status:    status,
		CreatedBy: "Patrik",
		CreatedAt: createdAt,
	}
}

func price(p float64) *float64 { return &p }

func TestGetWish_AutoApprovesAndCommits(t *testing.T) {
	store := newMemoryStore()
	store.put("rec1", record("waiting", "2024-01-01"))
	svc := NewWishService(store, today("2024-01-08"), nil)

	w, err := svc.GetWish(context.Background(), "rec1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, w.Status())
	assert.Equal(t, "2024-01-08", w.ApprovedAt().String())

	stored := store.fields("rec1")
	assert.Equal(t, "approved", stored.Status)
	assert.Equal(t, "2024-01-08", stored.ApprovedAt)

	// Reading again changes nothing.
	_, err = svc.GetWish(context.Background(), "rec1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.updateCount())
}

func TestGetWish_BuyWindow(t *testing.T) {
	store := newMemoryStore()
	f := record("approved", "2024-01-01")
	f.ApprovedAt = "2024-01-08"
	store.put("rec1", f)

	w, err := NewWishService(store, today("2024-01-14"), nil).GetWish(context.Background(), "rec1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, w.Status())
	assert.Equal(t, 0, store.updateCount())

	w, err = NewWishService(store, today("2024-01-15"), nil).GetWish(context.Background(), "rec1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, w.Status())
	assert.Equal(t, "2024-01-15", store.fields("rec1").ArchivedAt)
}

func TestGetWish_FailsClosedWhenCommitFails(t *testing.T) {
	store := newMemoryStore()
	store.put("rec1", record("waiting", "2024-01-01"))
	store.failUpdate = errors.New("airtable down")

	w, err := NewWishService(store, today("2024-01-08"), nil).GetWish(context.Background(), "rec1")
	assert.Nil(t, w)
	var serr *repository.StorageError
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, "waiting", store.fields("rec1").Status)
}

func TestGetWish_NotFound(t *testing.T) {
	_, err := NewWishService(newMemoryStore(), today("2024-01-08"), nil).GetWish(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListActive_TransitionsBeforeFiltering(t *testing.T) {
	store := newMemoryStore()
	store.put("a", record("waiting", "2024-01-01"))  // auto-approves, stays active
	store.put("b", record("waiting", "2024-01-10"))  // still waiting
	expired := record("approved", "2023-12-20")
	expired.ApprovedAt = "2024-01-05"
	store.put("c", expired)                          // auto-archives, drops out
	store.put("d", record("purchased", "2023-12-01")) // terminal
	objected := record("objected", "2024-01-09")
	objected.ObjectionComment = "zu teuer"
	objected.ObjectedBy = "Julia"
	store.put("e", objected)

	svc := NewWishService(store, today("2024-01-12"), nil)
	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, w := range active {
		ids = append(ids, w.ID)
		assert.True(t, w.Status().IsActive())
	}
	assert.Equal(t, []string{"b", "e", "a"}, ids)
	assert.Equal(t, "archived", store.fields("c").Status)
	assert.Equal(t, "2024-01-12", store.fields("c").ArchivedAt)

	archived, err := svc.ListArchived(context.Background())
	require.NoError(t, err)
	var archivedIDs []string
	for _, w := range archived {
		archivedIDs = append(archivedIDs, w.ID)
	}
	assert.Equal(t, []string{"c", "d"}, archivedIDs)
	assert.Len(t, append(ids, archivedIDs...), 5)
}

func TestListActive_SurfacesCommitFailure(t *testing.T) {
	store := newMemoryStore()
	store.put("a", record("waiting", "2024-01-01"))
	store.put("b", record("waiting", "2024-01-10"))
	store.failUpdate = errors.New("timeout")

	wishes, err := NewWishService(store, today("2024-01-12"), nil).ListActive(context.Background())
	assert.Error(t, err)
	assert.Nil(t, wishes)
}

func TestListActive_SkipsBrokenRecords(t *testing.T) {
	store := newMemoryStore()
	store.put("a", record("waiting", "2024-01-10"))
	broken := record("waiting", "2024-01-10")
	broken.CreatedBy = "Nobody"
	store.put("b", broken)

	active, err := NewWishService(store, today("2024-01-12"), nil).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)
}

func TestSweep_CountsChanges(t *testing.T) {
	store := newMemoryStore()
	store.put("a", record("waiting", "2024-01-01"))
	store.put("b", record("waiting", "2024-01-02"))
	store.put("c", record("waiting", "2024-01-10"))

	svc := NewWishService(store, today("2024-01-09"), nil)
	n, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCreateWish(t *testing.T) {
	store := newMemoryStore()
	mailer := &recordingMailer{}
	notifier := NewNotificationService(mailer, map[models.Person]string{models.Julia: "julia@example.com"}, "https://wishes.example.com")
	svc := NewWishService(store, today("2024-03-02"), notifier)

	w, err := svc.CreateWish(context.Background(), CreateWishInput{
		Title:     "  Wanderschuhe ",
		Price:     price(180),
		Link:      "https://shop.example.com/schuhe",
		CreatedBy: "Patrik",
		ImageURLs: []string{"https://blob.example.com/wishes/a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Wanderschuhe", w.Title)
	assert.Equal(t, models.StatusWaiting, w.Status())
	assert.Equal(t, "2024-03-02", w.CreatedAt.String())
	assert.Equal(t, models.Patrik, w.CreatedBy)
	require.Len(t, w.Images, 1)

	assert.Eventually(t, func() bool { return len(mailer.all()) == 1 }, time.Second, 5*time.Millisecond)
	mail := mailer.all()[0]
	assert.Equal(t, "julia@example.com", mail.to)
	assert.Contains(t, mail.subject, "Wanderschuhe")
	assert.Contains(t, mail.body, "https://wishes.example.com/wish/"+w.ID)
}

func TestCreateWish_Validation(t *testing.T) {
	svc := NewWishService(newMemoryStore(), today("2024-03-02"), nil)
	tests := []struct {
		name  string
		in    CreateWishInput
		field string
		want  error
	}{
		{"blank title", CreateWishInput{Title: "   ", Price: price(10), CreatedBy: "Julia"}, "title", lifecycle.ErrMissingRequiredField},
		{"no price", CreateWishInput{Title: "Buch", CreatedBy: "Julia"}, "price", lifecycle.ErrMissingRequiredField},
		{"negative price", CreateWishInput{Title: "Buch", Price: price(-1), CreatedBy: "Julia"}, "price", lifecycle.ErrInvalidField},
		{"unknown person", CreateWishInput{Title: "Buch", Price: price(10), CreatedBy: "Max"}, "createdBy", lifecycle.ErrInvalidField},
		{"bad link", CreateWishInput{Title: "Buch", Price: price(10), CreatedBy: "Julia", Link: "ftp://x"}, "link", lifecycle.ErrInvalidField},
		{"too many images", CreateWishInput{Title: "Buch", Price: price(10), CreatedBy: "Julia", ImageURLs: []string{
			"https://b/1", "https://b/2", "https://b/3", "https://b/4", "https://b/5", "https://b/6",
		}}, "imageUrls", lifecycle.ErrInvalidField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateWish(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			var verr *lifecycle.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	w, err := svc.CreateWish(context.Background(), CreateWishInput{Title: "Gratis", Price: price(0), CreatedBy: "Julia"})
	require.NoError(t, err)
	assert.Equal(t, float64(0), w.Price)
}

func TestTransitionWish_Objection(t *testing.T) {
	store := newMemoryStore()
	store.put("rec1", record("waiting", "2024-01-01"))
	mailer := &recordingMailer{}
	notifier := NewNotificationService(mailer, map[models.Person]string{models.Patrik: "patrik@example.com"}, "")
	svc := NewWishService(store, today("2024-01-03"), notifier)

	w, err := svc.TransitionWish(context.Background(), "rec1", lifecycle.Request{Status: "objected", ObjectionComment: "Sonntag besprechen"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusObjected, w.Status())
	assert.Equal(t, models.Julia, w.Objection().By)

	stored := store.fields("rec1")
	assert.Equal(t, "objected", stored.Status)
	assert.Equal(t, "Julia", stored.ObjectedBy)
	assert.Equal(t, "Sonntag besprechen", stored.ObjectionComment)

	assert.Eventually(t, func() bool { return len(mailer.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "patrik@example.com", mailer.all()[0].to)

	w, err = svc.TransitionWish(context.Background(), "rec1", lifecycle.Request{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, w.Status())
	assert.Equal(t, "2024-01-03", store.fields("rec1").ApprovedAt)
	assert.Equal(t, "Sonntag besprechen", w.Objection().Comment)

	// Approving by hand mails the creator just like the automatic approval.
	assert.Eventually(t, func() bool { return len(mailer.all()) == 2 }, time.Second, 5*time.Millisecond)
	approved := mailer.all()[1]
	assert.Equal(t, "patrik@example.com", approved.to)
	assert.Contains(t, approved.subject, "Freigegeben")
}

func TestTransitionWishAt_UsesGivenDay(t *testing.T) {
	store := newMemoryStore()
	store.put("rec1", record("waiting", "2024-01-01"))
	svc := NewWishService(store, today("2024-01-03"), nil)

	// The service clock says day 2, the caller's day is past the waiting period.
	w, err := svc.TransitionWishAt(context.Background(), "rec1", lifecycle.Request{Status: "purchased"}, today("2024-01-08").Today())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPurchased, w.Status())
	assert.Equal(t, "2024-01-08", w.ApprovedAt().String())
}

func TestTransitionWish_AutoTransitionAppliesFirst(t *testing.T) {
	store := newMemoryStore()
	store.put("rec1", record("waiting", "2024-01-01"))
	svc := NewWishService(store, today("2024-01-09"), nil)

	// The waiting period is over, so the wish is approved before the objection is checked.
	_, err := svc.TransitionWish(context.Background(), "rec1", lifecycle.Request{Status: "objected", ObjectionComment: "zu spät"})
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Equal(t, "approved", store.fields("rec1").Status)

	w, err := svc.TransitionWish(context.Background(), "rec1", lifecycle.Request{Status: "purchased"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPurchased, w.Status())
	assert.Equal(t, "2024-01-09", w.ApprovedAt().String())
}

func TestTransitionWish_RejectsWithoutWriting(t *testing.T) {
	store := newMemoryStore()
	f := record("purchased", "2024-01-01")
	f.ApprovedAt = "2024-01-08"
	store.put("rec1", f)
	svc := NewWishService(store, today("2024-01-10"), nil)

	_, err := svc.TransitionWish(context.Background(), "rec1", lifecycle.Request{Status: "approved"})
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	_, err = svc.TransitionWish(context.Background(), "rec1", lifecycle.Request{Status: "gekauft"})
	assert.ErrorIs(t, err, lifecycle.ErrUnknownStatus)
	assert.Equal(t, 0, store.updateCount())

	_, err = svc.TransitionWish(context.Background(), "missing", lifecycle.Request{Status: "approved"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteWish(t *testing.T) {
	store := newMemoryStore()
	store.put("rec1", record("waiting", "2024-01-01"))
	svc := NewWishService(store, today("2024-01-02"), nil)

	require.NoError(t, svc.DeleteWish(context.Background(), "rec1"))
	assert.ErrorIs(t, svc.DeleteWish(context.Background(), "rec1"), repository.ErrNotFound)
}
