package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound возвращается, если документ с заданным id (или по фильтру) не найден.
var ErrNotFound = errors.New("not found")

// Filter - фильтр по равенству полей документа (имена полей как в json-тегах, "id" - идентификатор).
// Скалярное значение для поля-массива означает "массив содержит значение".
// Значение типа In означает "поле входит в множество".
type Filter map[string]any

// In - множество допустимых значений поля.
type In []string

// Patch - частичное обновление: только присутствующие ключи перезаписываются.
type Patch map[string]any

// Set безусловно записывает поле.
func (p Patch) Set(field string, v any) Patch {
	p[field] = v
	return p
}

// SetIf записывает поле, только если значение было передано (v != nil).
// Нулевые значения (0, "", false) при этом сохраняются как есть.
func SetIf[T any](p Patch, field string, v *T) {
	if v != nil {
		p[field] = *v
	}
}

// Backend определяет контракт драйвера хранилища документов.
// out - указатель на сущность (FindByID) или на срез указателей (Find), как в mongo-driver.
type Backend interface {
	FindByID(ctx context.Context, collection, id string, out any) error
	Find(ctx context.Context, collection string, filter Filter, out any) error
	Insert(ctx context.Context, collection string, doc any) error
	Update(ctx context.Context, collection, id string, patch Patch) error
	Delete(ctx context.Context, collection, id string) error
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	Close(ctx context.Context) error
}

// Error - ошибка хранилища (StoreError): соединение, валидация драйвера или отсутствие документа.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Collection: collection, Err: err}
}

// IsNotFound - сокращение для errors.Is(err, ErrNotFound).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
