package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/Wishlist_Manager/internal/lifecycle"
	"github.com/Dias221467/Wishlist_Manager/internal/models"
)

// Field names as they appear in the wishes table.
const (
	FieldTitle            = "Title"
	FieldPrice            = "Price"
	FieldLink             = "Link"
	FieldImages           = "Images"
	FieldStatus           = "Status"
	FieldCreatedBy        = "Created_By"
	FieldCreatedAt        = "Created_At"
	FieldObjectionComment = "Objection_Comment"
	FieldObjectedBy       = "Objected_By"
	FieldApprovedAt       = "Approved_At"
	FieldArchivedAt       = "Archived_At"
)

var ErrNotFound = errors.New("wish not found")

// StorageError wraps a failed round trip to the record store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("record store %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

type Thumbnail struct {
	URL string `json:"url" bson:"url"`
}

type Thumbnails struct {
	Small *Thumbnail `json:"small,omitempty" bson:"small,omitempty"`
	Large *Thumbnail `json:"large,omitempty" bson:"large,omitempty"`
}

// Attachment is an image attached to a record. New attachments only need URL;
// the store fills in the rest once it has fetched the file.
type Attachment struct {
	ID         string      `json:"id,omitempty" bson:"id,omitempty"`
	URL        string      `json:"url" bson:"url"`
	Filename   string      `json:"filename,omitempty" bson:"filename,omitempty"`
	Thumbnails *Thumbnails `json:"thumbnails,omitempty" bson:"thumbnails,omitempty"`
}

// Fields is the raw content of a wish record.
type Fields struct {
	Title            string       `json:"Title" bson:"title"`
	Price            float64      `json:"Price" bson:"price"`
	Link             string       `json:"Link,omitempty" bson:"link,omitempty"`
	Images           []Attachment `json:"Images,omitempty" bson:"images,omitempty"`
	Status           string       `json:"Status" bson:"status"`
	CreatedBy        string       `json:"Created_By" bson:"created_by"`
	CreatedAt        string       `json:"Created_At" bson:"created_at"`
	ObjectionComment string       `json:"Objection_Comment,omitempty" bson:"objection_comment,omitempty"`
	ObjectedBy       string       `json:"Objected_By,omitempty" bson:"objected_by,omitempty"`
	ApprovedAt       string       `json:"Approved_At,omitempty" bson:"approved_at,omitempty"`
	ArchivedAt       string       `json:"Archived_At,omitempty" bson:"archived_at,omitempty"`
}

type Record struct {
	ID     string
	Fields Fields
}

// Filter narrows FetchAll. An empty Statuses matches every record.
type Filter struct {
	Statuses []models.Status
}

// RecordStore is the system of record for wishes.
type RecordStore interface {
	FetchAll(ctx context.Context, filter Filter) ([]Record, error)
	// FetchOne returns ErrNotFound when no record has the id.
	FetchOne(ctx context.Context, id string) (*Record, error)
	Create(ctx context.Context, fields Fields) (*Record, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*Record, error)
	Delete(ctx context.Context, id string) error
}

func optionalDate(field, s string) (*models.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &d, nil
}

// ToWish decodes a raw record. A missing status reads as waiting.
func ToWish(r Record) (models.Wish, error) {
	f := r.Fields
	w := models.Wish{
		ID:    r.ID,
		Title: f.Title,
		Price: f.Price,
		Link:  f.Link,
	}

	createdBy, err := models.ParsePerson(f.CreatedBy)
	if err != nil {
		return models.Wish{}, fmt.Errorf("record %s: %s: %w", r.ID, FieldCreatedBy, err)
	}
	w.CreatedBy = createdBy

	createdAt, err := models.ParseDate(f.CreatedAt)
	if err != nil {
		return models.Wish{}, fmt.Errorf("record %s: %s: %w", r.ID, FieldCreatedAt, err)
	}
	w.CreatedAt = createdAt

	for _, a := range f.Images {
		img := models.WishImage{ID: a.ID, URL: a.URL, Filename: a.Filename}
		if a.Thumbnails != nil {
			if a.Thumbnails.Small != nil {
				img.SmallURL = a.Thumbnails.Small.URL
			}
			if a.Thumbnails.Large != nil {
				img.LargeURL = a.Thumbnails.Large.URL
			}
		}
		w.Images = append(w.Images, img)
	}
	if len(w.Images) > models.MaxImages {
		w.Images = w.Images[:models.MaxImages]
	}

	status := models.StatusWaiting
	if f.Status != "" {
		status, err = lifecycle.ParseStatus(f.Status)
		if err != nil {
			return models.Wish{}, fmt.Errorf("record %s: %w", r.ID, err)
		}
	}

	approvedAt, err := optionalDate(FieldApprovedAt, f.ApprovedAt)
	if err != nil {
		return models.Wish{}, fmt.Errorf("record %s: %w", r.ID, err)
	}
	archivedAt, err := optionalDate(FieldArchivedAt, f.ArchivedAt)
	if err != nil {
		return models.Wish{}, fmt.Errorf("record %s: %w", r.ID, err)
	}
	objection := decodeObjection(f, createdBy)

	switch status {
	case models.StatusWaiting:
		w.State = models.Waiting{}
	case models.StatusObjected:
		o := models.Objection{By: createdBy.Other()}
		if objection != nil {
			o = *objection
		}
		w.State = models.Objected{Objection: o}
	case models.StatusApproved:
		w.State = models.Approved{ApprovedAt: approvedAt, Objection: objection}
	case models.StatusPurchased:
		w.State = models.Purchased{ApprovedAt: approvedAt, Objection: objection}
	case models.StatusDiscarded:
		w.State = models.Discarded{ApprovedAt: approvedAt, Objection: objection}
	case models.StatusArchived:
		var at models.Date
		if archivedAt != nil {
			at = *archivedAt
		}
		w.State = models.Archived{ApprovedAt: approvedAt, ArchivedAt: at, Objection: objection}
	}
	return w, nil
}

// decodeObjection never returns the creator as objector; a stored value that
// names the creator or nobody is replaced by the other person.
func decodeObjection(f Fields, createdBy models.Person) *models.Objection {
	if f.ObjectionComment == "" && f.ObjectedBy == "" {
		return nil
	}
	by, err := models.ParsePerson(f.ObjectedBy)
	if err != nil || by == createdBy {
		by = createdBy.Other()
	}
	return &models.Objection{Comment: f.ObjectionComment, By: by}
}

// ChangeFields returns the record fields a transition writes.
func ChangeFields(c lifecycle.Change) map[string]interface{} {
	updates := map[string]interface{}{FieldStatus: string(c.To)}
	if c.Objection != nil {
		updates[FieldObjectionComment] = c.Objection.Comment
		updates[FieldObjectedBy] = c.Objection.By.String()
	}
	if c.ApprovedAt != nil {
		updates[FieldApprovedAt] = c.ApprovedAt.String()
	}
	if c.ArchivedAt != nil {
		updates[FieldArchivedAt] = c.ArchivedAt.String()
	}
	return updates
}

// NewWishFields builds the record for a freshly entered wish.
func NewWishFields(title string, price float64, link string, createdBy models.Person, createdAt models.Date, imageURLs []string) Fields {
	f := Fields{
		Title:     title,
		Price:     price,
		Link:      link,
		Status:    string(models.StatusWaiting),
		CreatedBy: createdBy.String(),
		CreatedAt: createdAt.String(),
	}
	for _, u := range imageURLs {
		f.Images = append(f.Images, Attachment{URL: u})
	}
	return f
}
