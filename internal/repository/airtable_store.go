package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dias221467/Wishlist_Manager/internal/models"
	"github.com/mehanizm/airtable"
	"github.com/sirupsen/logrus"
)

// airtableTable is the part of *airtable.Table the store uses.
type airtableTable interface {
	GetRecords() *airtable.GetRecordsConfig
	GetRecord(recordID string) (*airtable.Record, error)
	AddRecords(records *airtable.Records) (*airtable.Records, error)
	UpdateRecordsPartial(records *airtable.Records) (*airtable.Records, error)
	DeleteRecords(recordIDs []string) (*airtable.Records, error)
}

// AirtableStore keeps wishes in an Airtable table. Attachments are created
// from URLs; Airtable downloads and hosts the files itself.
type AirtableStore struct {
	table airtableTable
	// list is swappable so tests can avoid the query builder.
	list func(formula, offset string) (*airtable.Records, error)
}

func NewAirtableStore(apiKey, baseID, tableName string) *AirtableStore {
	client := airtable.NewClient(apiKey)
	return newAirtableStore(client.GetTable(baseID, tableName))
}

func newAirtableStore(table airtableTable) *AirtableStore {
	s := &AirtableStore{table: table}
	s.list = func(formula, offset string) (*airtable.Records, error) {
		q := table.GetRecords()
		if formula != "" {
			q = q.WithFilterFormula(formula)
		}
		if offset != "" {
			q = q.WithOffset(offset)
		}
		return q.Do()
	}
	return s
}

// statusFormula builds a filterByFormula expression matching any of statuses.
func statusFormula(statuses []models.Status) string {
	if len(statuses) == 0 {
		return ""
	}
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, fmt.Sprintf("{%s} = '%s'", FieldStatus, s))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "OR(" + strings.Join(parts, ", ") + ")"
}

func (s *AirtableStore) FetchAll(ctx context.Context, filter Filter) ([]Record, error) {
	formula := statusFormula(filter.Statuses)
	var out []Record
	offset := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, storageErr("list", err)
		}
		page, err := s.list(formula, offset)
		if err != nil {
			return nil, storageErr("list", err)
		}
		for _, r := range page.Records {
			rec, err := fromAirtable(r)
			if err != nil {
				return nil, storageErr("list", err)
			}
			out = append(out, rec)
		}
		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

func (s *AirtableStore) FetchOne(ctx context.Context, id string) (*Record, error) {
	r, err := s.table.GetRecord(id)
	if err != nil {
		if isAirtableNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get", err)
	}
	rec, err := fromAirtable(r)
	if err != nil {
		return nil, storageErr("get", err)
	}
	return &rec, nil
}

func (s *AirtableStore) Create(ctx context.Context, fields Fields) (*Record, error) {
	m, err := toAirtableFields(fields)
	if err != nil {
		return nil, storageErr("create", err)
	}
	created, err := s.table.AddRecords(&airtable.Records{
		Records: []*airtable.Record{{Fields: m}},
	})
	if err != nil {
		return nil, storageErr("create", err)
	}
	if created == nil || len(created.Records) == 0 {
		return nil, storageErr("create", errors.New("no record returned"))
	}
	rec, err := fromAirtable(created.Records[0])
	if err != nil {
		return nil, storageErr("create", err)
	}
	logrus.WithField("record_id", rec.ID).Info("Wish record created in Airtable")
	return &rec, nil
}

func (s *AirtableStore) Update(ctx context.Context, id string, updates map[string]interface{}) (*Record, error) {
	updated, err := s.table.UpdateRecordsPartial(&airtable.Records{
		Records: []*airtable.Record{{ID: id, Fields: updates}},
	})
	if err != nil {
		if isAirtableNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, storageErr("update", err)
	}
	if updated == nil || len(updated.Records) == 0 {
		return nil, storageErr("update", errors.New("no record returned"))
	}
	rec, err := fromAirtable(updated.Records[0])
	if err != nil {
		return nil, storageErr("update", err)
	}
	return &rec, nil
}

func (s *AirtableStore) Delete(ctx context.Context, id string) error {
	if _, err := s.table.DeleteRecords([]string{id}); err != nil {
		if isAirtableNotFound(err) {
			return ErrNotFound
		}
		return storageErr("delete", err)
	}
	return nil
}

func isAirtableNotFound(err error) bool {
	var httpErr *airtable.HTTPClientError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// fromAirtable decodes the loosely typed field map through JSON so that
// numbers, attachments and absent cells land in Fields the same way.
func fromAirtable(r *airtable.Record) (Record, error) {
	if r == nil {
		return Record{}, errors.New("nil record")
	}
	raw, err := json.Marshal(r.Fields)
	if err != nil {
		return Record{}, fmt.Errorf("encode fields of %s: %w", r.ID, err)
	}
	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return Record{}, fmt.Errorf("decode fields of %s: %w", r.ID, err)
	}
	return Record{ID: r.ID, Fields: f}, nil
}

func toAirtableFields(f Fields) (map[string]any, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
