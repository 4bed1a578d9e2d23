package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

type record struct {
	seq uint64
	doc storage.Document
}

// Store реализует storage.Backend в памяти.
// Документы хранятся в нормализованном json-виде, порядок выдачи - порядок вставки.
type Store struct {
	mu          sync.RWMutex
	seq         uint64
	collections map[string]map[string]*record
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]*record),
	}
}

func (s *Store) FindByID(ctx context.Context, collection, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s with id %s: %w", collection, id, storage.ErrNotFound)
	}
	return storage.Decode(rec.doc, out)
}

func (s *Store) Find(ctx context.Context, collection string, filter storage.Filter, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*record, 0, len(s.collections[collection]))
	for _, rec := range s.collections[collection] {
		ok, err := rec.doc.Matches(filter)
		if err != nil {
			return err
		}
		if ok {
			matched = append(matched, rec)
		}
	}

	// Сортируем по порядку вставки, чтобы выдача была стабильной
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].seq < matched[j].seq
	})

	docs := make([]storage.Document, len(matched))
	for i, rec := range matched {
		docs[i] = rec.doc
	}
	return storage.Decode(docs, out)
}

func (s *Store) Insert(ctx context.Context, collection string, doc any) error {
	d, err := storage.ToDocument(doc)
	if err != nil {
		return err
	}
	id, _ := d["id"].(string)
	if id == "" {
		return errors.New("document has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]*record)
	}
	if _, exists := s.collections[collection][id]; exists {
		return fmt.Errorf("%s with id %s already exists", collection, id)
	}
	s.seq++
	s.collections[collection][id] = &record{seq: s.seq, doc: d}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, patch storage.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s with id %s: %w", collection, id, storage.ErrNotFound)
	}
	// id документа не меняется
	delete(patch, "id")

	next := make(storage.Document, len(rec.doc))
	for k, v := range rec.doc {
		next[k] = v
	}
	if err := next.Apply(patch); err != nil {
		return err
	}
	rec.doc = next
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return fmt.Errorf("%s with id %s: %w", collection, id, storage.ErrNotFound)
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *Store) Count(ctx context.Context, collection string, filter storage.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, rec := range s.collections[collection] {
		ok, err := rec.doc.Matches(filter)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) Close(ctx context.Context) error { return nil }
