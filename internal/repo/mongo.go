package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	productsCollection    = "products"
	usersCollection       = "users"
	ordersCollection      = "orders"
	subscribersCollection = "subscribers"
)

type MongoRepo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// OpenMongo builds a client without waiting for the server; the driver
// connects lazily, so an unreachable server surfaces on first use or Ping.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepo, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return &MongoRepo{Client: client, DB: client.Database(database)}, nil
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		usersCollection:       {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		subscribersCollection: {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		productsCollection:    {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		ordersCollection: {
			{Keys: bson.D{{Key: "orderDate", Value: -1}}},
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "orderDate", Value: -1}}},
		},
	}
	for coll, idx := range specs {
		if _, err := r.DB.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (r *MongoRepo) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepo) Close(ctx context.Context) error {
	return r.Client.Disconnect(ctx)
}

func (r *MongoRepo) coll(name string) *mongo.Collection {
	return r.DB.Collection(name)
}

func byID(id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return bson.M{"_id": oid}, nil
}

func insertedHex(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}
