package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// document - строка таблицы documents: одна сущность любой коллекции в jsonb.
type document struct {
	Collection string    `gorm:"primaryKey;size:64"`
	ID         string    `gorm:"primaryKey;size:64"`
	Data       string    `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

// Store реализует storage.Backend с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New создает новый экземпляр хранилища PostgreSQL.
func New(dsn string, debug bool) (*Store, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// where накладывает фильтр на запрос к одной коллекции.
func where(q *gorm.DB, collection string, f storage.Filter) (*gorm.DB, error) {
	q = q.Where("collection = ?", collection)
	for field, v := range f {
		if set, ok := v.(storage.In); ok {
			if field == "id" {
				q = q.Where("id IN ?", []string(set))
			} else {
				q = q.Where("data ->> ? IN ?", field, []string(set))
			}
			continue
		}
		if field == "id" {
			q = q.Where("id = ?", v)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("filter field %q: %w", field, err)
		}
		// для массивов @> означает "содержит элемент", для скаляров - равенство
		q = q.Where("data -> ? @> ?::jsonb", field, string(raw))
	}
	return q, nil
}

func notFound(collection, id string) error {
	return fmt.Errorf("%s with id %s: %w", collection, id, storage.ErrNotFound)
}

func (s *Store) FindByID(ctx context.Context, collection, id string, out any) error {
	var row document
	err := s.db.WithContext(ctx).First(&row, "collection = ? AND id = ?", collection, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(collection, id)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(row.Data), out)
}

func (s *Store) Find(ctx context.Context, collection string, filter storage.Filter, out any) error {
	q, err := where(s.db.WithContext(ctx).Model(&document{}), collection, filter)
	if err != nil {
		return err
	}
	var rows []document
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return err
	}
	docs := make([]json.RawMessage, len(rows))
	for i, row := range rows {
		docs[i] = json.RawMessage(row.Data)
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
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&document{Collection: collection, ID: id, Data: string(raw)}).Error
}

func (s *Store) Update(ctx context.Context, collection, id string, patch storage.Patch) error {
	// Используем транзакцию для атомарности операции чтения-записи
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row document
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "collection = ? AND id = ?", collection, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(collection, id)
		}
		if err != nil {
			return err
		}

		var d storage.Document
		if err := json.Unmarshal([]byte(row.Data), &d); err != nil {
			return err
		}
		delete(patch, "id")
		if err := d.Apply(patch); err != nil {
			return err
		}
		raw, err := json.Marshal(d)
		if err != nil {
			return err
		}
		return tx.Model(&row).Update("data", string(raw)).Error
	})
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(collection, id)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, collection string, filter storage.Filter) (int64, error) {
	q, err := where(s.db.WithContext(ctx).Model(&document{}), collection, filter)
	if err != nil {
		return 0, err
	}
	var n int64
	err = q.Count(&n).Error
	return n, err
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
