package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// Store реализует storage.Backend поверх MongoDB.
// Сущности кодируются bson-тегами доменных типов, идентификатор лежит в _id.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New подключается к MongoDB и проверяет соединение.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// toBSON переводит фильтр хранилища в фильтр mongo.
func toBSON(f storage.Filter) bson.M {
	out := bson.M{}
	for field, v := range f {
		if field == "id" {
			field = "_id"
		}
		if set, ok := v.(storage.In); ok {
			out[field] = bson.M{"$in": []string(set)}
			continue
		}
		out[field] = v
	}
	return out
}

func (s *Store) FindByID(ctx context.Context, collection, id string, out any) error {
	err := s.coll(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s with id %s: %w", collection, id, storage.ErrNotFound)
	}
	return err
}

func (s *Store) Find(ctx context.Context, collection string, filter storage.Filter, out any) error {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (s *Store) Insert(ctx context.Context, collection string, doc any) error {
	_, err := s.coll(collection).InsertOne(ctx, doc)
	return err
}

func (s *Store) Update(ctx context.Context, collection, id string, patch storage.Patch) error {
	set := bson.M{}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		set[k] = v
	}
	res, err := s.coll(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s with id %s: %w", collection, id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.coll(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s with id %s: %w", collection, id, storage.ErrNotFound)
	}
	return nil
}

// Count без фильтра использует метаданные коллекции (estimatedDocumentCount).
func (s *Store) Count(ctx context.Context, collection string, filter storage.Filter) (int64, error) {
	if len(filter) == 0 {
		return s.coll(collection).EstimatedDocumentCount(ctx)
	}
	return s.coll(collection).CountDocuments(ctx, toBSON(filter))
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
