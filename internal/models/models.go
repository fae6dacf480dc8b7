package models

import "time"

const DefaultOrderStatus = "Pending"

// Review is embedded in Product.Reviews; it has no identity of its own.
type Review struct {
	User    string    `json:"user"    bson:"user"`
	Rating  float64   `json:"rating"  bson:"rating"`
	Comment string    `json:"comment" bson:"comment"`
	Date    time.Time `json:"date"    bson:"date"`
}

type Product struct {
	ID          string    `json:"_id"         bson:"_id,omitempty" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name"        bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price"       bson:"price"`
	Category    string    `json:"category"    bson:"category"`
	Image       string    `json:"image"       bson:"image"`
	Reviews     []Review  `json:"reviews"     bson:"reviews"       gorm:"serializer:json;type:text"`
	CreatedAt   time.Time `json:"createdAt"   bson:"createdAt"     gorm:"index"`
}

type User struct {
	ID           string `json:"_id"     bson:"_id,omitempty" gorm:"primaryKey;type:varchar(36)"`
	Name         string `json:"name"    bson:"name"          gorm:"not null"`
	Email        string `json:"email"   bson:"email"         gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-"       bson:"password"      gorm:"column:password;not null"`
	IsAdmin      bool   `json:"isAdmin" bson:"isAdmin"       gorm:"not null;default:false"`
}

// PublicUser is the profile projection returned on login.
type PublicUser struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func (u User) Public() PublicUser {
	return PublicUser{Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}

type Order struct {
	ID           string           `json:"_id"          bson:"_id,omitempty" gorm:"primaryKey;type:varchar(36)"`
	CustomerName string           `json:"customerName" bson:"customerName"`
	Email        string           `json:"email"        bson:"email"         gorm:"index"`
	Address      string           `json:"address"      bson:"address"`
	Phone        string           `json:"phone"        bson:"phone"`
	Items        []map[string]any `json:"items"        bson:"items"         gorm:"serializer:json;type:text"`
	TotalAmount  float64          `json:"totalAmount"  bson:"totalAmount"`
	Status       string           `json:"status"       bson:"status"        gorm:"not null"`
	OrderDate    time.Time        `json:"orderDate"    bson:"orderDate"     gorm:"index"`
}

type Subscriber struct {
	ID           string    `json:"_id"          bson:"_id,omitempty" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email"        bson:"email"         gorm:"uniqueIndex;not null"`
	SubscribedAt time.Time `json:"subscribedAt" bson:"subscribedAt"`
}
