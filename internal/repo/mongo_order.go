package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *MongoRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	o.ID = ""
	res, err := r.coll(ordersCollection).InsertOne(ctx, o)
	if err != nil {
		return translateMongo(err)
	}
	o.ID = insertedHex(res)
	return nil
}

func (r *MongoRepo) findOrders(ctx context.Context, filter any) ([]models.Order, error) {
	cur, err := r.coll(ordersCollection).Find(ctx, filter, newestFirst("orderDate"))
	if err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	return r.findOrders(ctx, bson.M{})
}

func (r *MongoRepo) ListOrdersByEmail(ctx context.Context, email string) ([]models.Order, error) {
	return r.findOrders(ctx, bson.M{"email": email})
}

func (r *MongoRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	filter, err := byID(id)
	if err != nil {
		return nil, err
	}
	var out models.Order
	if err := r.coll(ordersCollection).FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translateMongo(err)
	}
	return &out, nil
}

func (r *MongoRepo) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	filter, err := byID(id)
	if err != nil {
		return nil, err
	}
	var out models.Order
	err = r.coll(ordersCollection).FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, translateMongo(err)
	}
	return &out, nil
}
