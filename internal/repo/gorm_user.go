package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = newID()
	return translateGorm(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateGorm(err)
	}
	return &user, nil
}

func (r *GormRepo) CreateSubscriber(ctx context.Context, s *models.Subscriber) error {
	s.ID = newID()
	return translateGorm(r.DB.WithContext(ctx).Create(s).Error)
}
