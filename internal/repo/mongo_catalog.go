package repo

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *MongoRepo) findProducts(ctx context.Context, filter any) ([]models.Product, error) {
	cur, err := r.coll(productsCollection).Find(ctx, filter, newestFirst("createdAt"))
	if err != nil {
		return nil, err
	}
	items := make([]models.Product, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	return r.findProducts(ctx, bson.M{})
}

func (r *MongoRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	filter, err := byID(id)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := r.coll(productsCollection).FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, translateMongo(err)
	}
	return &p, nil
}

func (r *MongoRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	p.ID = ""
	res, err := r.coll(productsCollection).InsertOne(ctx, p)
	if err != nil {
		return translateMongo(err)
	}
	p.ID = insertedHex(res)
	return nil
}

func (r *MongoRepo) ReplaceProduct(ctx context.Context, id string, p *models.Product) (*models.Product, error) {
	filter, err := byID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"image":       p.Image,
	}
	if p.Reviews != nil {
		set["reviews"] = p.Reviews
	}

	var out models.Product
	err = r.coll(productsCollection).FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, translateMongo(err)
	}
	return &out, nil
}

func (r *MongoRepo) DeleteProduct(ctx context.Context, id string) error {
	filter, err := byID(id)
	if err != nil {
		return err
	}
	_, err = r.coll(productsCollection).DeleteOne(ctx, filter)
	return err
}

func (r *MongoRepo) AddReview(ctx context.Context, id string, review models.Review) error {
	filter, err := byID(id)
	if err != nil {
		return err
	}
	res, err := r.coll(productsCollection).UpdateOne(ctx, filter, bson.M{"$push": bson.M{"reviews": review}})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	return r.findProducts(ctx, bson.M{"$or": bson.A{
		bson.M{"name": rx},
		bson.M{"description": rx},
		bson.M{"category": rx},
	}})
}
