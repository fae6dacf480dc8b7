package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *MongoRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = ""
	res, err := r.coll(usersCollection).InsertOne(ctx, u)
	if err != nil {
		return translateMongo(err)
	}
	u.ID = insertedHex(res)
	return nil
}

func (r *MongoRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.coll(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translateMongo(err)
	}
	return &u, nil
}

func (r *MongoRepo) CreateSubscriber(ctx context.Context, s *models.Subscriber) error {
	s.ID = ""
	res, err := r.coll(subscribersCollection).InsertOne(ctx, s)
	if err != nil {
		return translateMongo(err)
	}
	s.ID = insertedHex(res)
	return nil
}
