// Package storagetest содержит драйвер-обёртку для тестов: считает обращения
// и подставляет ошибки по коллекциям.
package storagetest

import (
	"context"
	"sync"

	"github.com/UkralStul/hub-graphql-service/internal/storage"
	"github.com/UkralStul/hub-graphql-service/internal/storage/inmemory"
)

// NewMock оборачивает in-memory драйвер.
func NewMock() *Mock {
	return &Mock{
		Backend:   inmemory.New(),
		InsertErr: map[string]error{},
		UpdateErr: map[string]error{},
		FindErr:   map[string]error{},
	}
}

// Mock - storage.Backend, который делегирует настоящему драйверу,
// но возвращает ReturnError (для всех операций) или ошибку, заданную для коллекции.
type Mock struct {
	Backend storage.Backend

	mu          sync.Mutex
	ReturnError error
	InsertErr   map[string]error
	UpdateErr   map[string]error
	FindErr     map[string]error

	writes int
	reads  int
}

// Writes - число попыток записи (insert/update/delete).
func (m *Mock) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Reads - число попыток чтения.
func (m *Mock) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// FailInsert задаёт ошибку вставки в коллекцию.
func (m *Mock) FailInsert(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertErr[collection] = err
}

// FailFind задаёт ошибку чтения коллекции.
func (m *Mock) FailFind(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindErr[collection] = err
}

func (m *Mock) read(collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.ReturnError != nil {
		return m.ReturnError
	}
	return m.FindErr[collection]
}

func (m *Mock) write(errs map[string]error, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.ReturnError != nil {
		return m.ReturnError
	}
	if errs == nil {
		return nil
	}
	return errs[collection]
}

func (m *Mock) FindByID(ctx context.Context, collection, id string, out any) error {
	if err := m.read(collection); err != nil {
		return err
	}
	return m.Backend.FindByID(ctx, collection, id, out)
}

func (m *Mock) Find(ctx context.Context, collection string, filter storage.Filter, out any) error {
	if err := m.read(collection); err != nil {
		return err
	}
	return m.Backend.Find(ctx, collection, filter, out)
}

func (m *Mock) Insert(ctx context.Context, collection string, doc any) error {
	if err := m.write(m.InsertErr, collection); err != nil {
		return err
	}
	return m.Backend.Insert(ctx, collection, doc)
}

func (m *Mock) Update(ctx context.Context, collection, id string, patch storage.Patch) error {
	if err := m.write(m.UpdateErr, collection); err != nil {
		return err
	}
	return m.Backend.Update(ctx, collection, id, patch)
}

func (m *Mock) Delete(ctx context.Context, collection, id string) error {
	if err := m.write(nil, collection); err != nil {
		return err
	}
	return m.Backend.Delete(ctx, collection, id)
}

func (m *Mock) Count(ctx context.Context, collection string, filter storage.Filter) (int64, error) {
	if err := m.read(collection); err != nil {
		return 0, err
	}
	return m.Backend.Count(ctx, collection, filter)
}

func (m *Mock) Close(ctx context.Context) error {
	return m.Backend.Close(ctx)
}
