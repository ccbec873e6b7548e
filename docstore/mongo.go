// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore maps each collection to a Mongo collection of the same name.
// Increments use $inc, so the server does the addition.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// ConnectMongo dials uri and verifies the connection with a primary ping.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, errors.Wrap(err, "ping mongo")
	}
	return NewMongoStore(client.Database(database)), client.Disconnect, nil
}

func handleMongoError(err error) error {
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (s *MongoStore) Query(ctx context.Context, collection, orderBy string, dir Direction) ([]Record, error) {
	if err := validateField(orderBy); err != nil {
		return nil, err
	}

	order := 1
	if dir == Desc {
		order = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: orderBy, Value: order}, {Key: "_id", Value: order}})

	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(handleMongoError(err), "find documents")
	}
	defer cursor.Close(ctx)

	var records []Record
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "decode document")
		}
		records = append(records, fromBSON(raw))
	}
	return records, errors.Wrap(cursor.Err(), "iterate documents")
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Record, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&raw)
	if err != nil {
		err = handleMongoError(err)
		if err == ErrNotFound {
			return Record{}, err
		}
		return Record{}, errors.Wrap(err, "find document")
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}

	doc := bson.M{"_id": id}
	for k, v := range data {
		doc[k] = toBSON(v)
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", errors.Wrap(handleMongoError(err), "insert document")
	}
	return id, nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, patch Document) error {
	set := bson.M{}
	for k, v := range patch {
		set[k] = toBSON(v)
	}
	res, err := s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return errors.Wrap(handleMongoError(err), "update document")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return errors.Wrap(handleMongoError(err), "delete document")
}

func (s *MongoStore) Increment(ctx context.Context, collection, id, fieldPath string, delta int64) error {
	if _, err := splitPath(fieldPath); err != nil {
		return err
	}

	res, err := s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$inc": bson.M{fieldPath: delta}})
	if err != nil {
		return errors.Wrap(handleMongoError(err), "increment counter")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func toBSON(v any) any {
	switch val := v.(type) {
	case time.Time:
		return primitive.NewDateTimeFromTime(val)
	case Document:
		out := bson.M{}
		for k, nested := range val {
			out[k] = toBSON(nested)
		}
		return out
	case map[string]any:
		return toBSON(Document(val))
	default:
		return v
	}
}

func fromBSON(raw bson.M) Record {
	id, _ := raw["_id"].(string)
	delete(raw, "_id")
	doc, _ := normalizeBSON(raw).(Document)
	return Record{ID: id, Data: doc}
}

func normalizeBSON(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(Document, len(val))
		for k, nested := range val {
			out[k] = normalizeBSON(nested)
		}
		return out
	case map[string]any:
		return normalizeBSON(bson.M(val))
	case bson.D:
		out := make(Document, len(val))
		for _, e := range val {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case bson.A:
		items := make([]any, len(val))
		for i := range val {
			items[i] = normalizeBSON(val[i])
		}
		return items
	case primitive.DateTime:
		return val.Time().UTC()
	case int32:
		return int64(val)
	default:
		return v
	}
}
