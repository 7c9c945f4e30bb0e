package evidence_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/aretw0/dossier/pkg/core"
	"github.com/aretw0/dossier/pkg/evidence"
)

// memFile is an in-memory evidence.File.
type memFile struct {
	name    string
	mime    string
	data    []byte
	noSize  bool
	openErr error
}

func (f memFile) Name() string     { return f.name }
func (f memFile) MIMEType() string { return f.mime }
func (f memFile) Size() (int64, bool) {
	if f.noSize {
		return 0, false
	}
	return int64(len(f.data)), true
}
func (f memFile) Open() (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// MockRepository implements core.Repository in memory.
type MockRepository struct {
	mu   sync.Mutex
	docs map[string]core.Document
}

func NewMockRepository() *MockRepository {
	return &MockRepository{docs: make(map[string]core.Document)}
}

func (m *MockRepository) Save(ctx context.Context, doc core.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *MockRepository) Get(ctx context.Context, id string) (core.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return core.Document{}, core.ErrNotFound
	}
	return doc, nil
}

func (m *MockRepository) List(ctx context.Context) ([]core.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []core.Document
	for _, doc := range m.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MockRepository) Initialize(ctx context.Context) error { return nil }

// recordingStore is an evidence.Store that records calls and can fail on
// a given create call.
type recordingStore struct {
	created  []evidence.Record
	deleted  []string
	failAt   int // 1-based create call to fail; 0 never fails
	calls    int
	onCreate func()
	records  map[string]evidence.Record
}

var errStoreDown = errors.New("store unavailable")

func (s *recordingStore) Create(ctx context.Context, rec evidence.Record) (evidence.Record, error) {
	s.calls++
	if s.onCreate != nil {
		s.onCreate()
	}
	if s.failAt == s.calls {
		return evidence.Record{}, errStoreDown
	}
	if _, ok := s.records[rec.ID]; ok {
		return evidence.Record{}, evidence.ErrRecordExists
	}
	s.created = append(s.created, rec)
	if s.records == nil {
		s.records = make(map[string]evidence.Record)
	}
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *recordingStore) Get(ctx context.Context, id string) (evidence.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return evidence.Record{}, core.ErrNotFound
	}
	return rec, nil
}

func (s *recordingStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.records[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.records, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *recordingStore) List(ctx context.Context, filter evidence.Filter) ([]evidence.Record, error) {
	var out []evidence.Record
	for _, rec := range s.created {
		if _, live := s.records[rec.ID]; !live {
			continue
		}
		if v, ok := filter["entity_type"]; ok && string(rec.EntityType) != v {
			continue
		}
		if v, ok := filter["entity_id"]; ok && rec.EntityID != v {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// memBlobs is an in-memory evidence.BlobStore.
type memBlobs struct {
	files   map[string][]byte
	err     error
	removed []string
}

func (b *memBlobs) Put(ctx context.Context, path, mimeType string, data []byte) error {
	if b.err != nil {
		return b.err
	}
	if b.files == nil {
		b.files = make(map[string][]byte)
	}
	b.files[path] = data
	return nil
}

func (b *memBlobs) Remove(ctx context.Context, path string) error {
	b.removed = append(b.removed, path)
	delete(b.files, path)
	return nil
}
