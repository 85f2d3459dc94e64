package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Dias221467/Wishlist_Manager/internal/repository"
)

// memoryStore is an in-memory RecordStore for service tests.
type memoryStore struct {
	mu         sync.Mutex
	records    map[string]repository.Fields
	nextID     int
	updates    int
	failUpdate error
	failFetch  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]repository.Fields{}}
}

func (m *memoryStore) put(id string, f repository.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = f
}

func (m *memoryStore) fields(id string) repository.Fields {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

func (m *memoryStore) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

func (m *memoryStore) FetchAll(ctx context.Context, filter repository.Filter) ([]repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFetch != nil {
		return nil, &repository.StorageError{Op: "list", Err: m.failFetch}
	}
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []repository.Record
	for _, id := range ids {
		f := m.records[id]
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if string(s) == f.Status {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, repository.Record{ID: id, Fields: f})
	}
	return out, nil
}

func (m *memoryStore) FetchOne(ctx context.Context, id string) (*repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFetch != nil {
		return nil, &repository.StorageError{Op: "get", Err: m.failFetch}
	}
	f, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.Record{ID: id, Fields: f}, nil
}

func (m *memoryStore) Create(ctx context.Context, f repository.Fields) (*repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("rec%03d", m.nextID)
	m.records[id] = f
	return &repository.Record{ID: id, Fields: f}, nil
}

func (m *memoryStore) Update(ctx context.Context, id string, updates map[string]interface{}) (*repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return nil, &repository.StorageError{Op: "update", Err: m.failUpdate}
	}
	f, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range updates {
		s, _ := v.(string)
		switch k {
		case repository.FieldStatus:
			f.Status = s
		case repository.FieldApprovedAt:
			f.ApprovedAt = s
		case repository.FieldArchivedAt:
			f.ArchivedAt = s
		case repository.FieldObjectionComment:
			f.ObjectionComment = s
		case repository.FieldObjectedBy:
			f.ObjectedBy = s
		default:
			return nil, errors.New("unexpected field " + k)
		}
	}
	m.records[id] = f
	m.updates++
	return &repository.Record{ID: id, Fields: f}, nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.records, id)
	return nil
}
