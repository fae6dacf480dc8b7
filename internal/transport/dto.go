package transport

import (
	"encoding/json"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

// ProductRequest is the body of POST and PUT /api/items.
// Reviews stays nil when the body does not carry them.
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Reviews     []models.Review `json:"reviews"`
}

// ReviewRequest.Rating is kept raw so an absent rating can be told
// apart from null.
type ReviewRequest struct {
	User    string          `json:"user"`
	Rating  json.RawMessage `json:"rating"`
	Comment string          `json:"comment"`
	Date    *time.Time      `json:"date"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type OrderRequest struct {
	CustomerName string           `json:"customerName"`
	Email        string           `json:"email"`
	Address      string           `json:"address"`
	Phone        string           `json:"phone"`
	Items        []map[string]any `json:"items"`
	TotalAmount  float64          `json:"totalAmount"`
	Status       string           `json:"status"`
	OrderDate    *time.Time       `json:"orderDate"`
}

// StatusRequest.Status is nil when the body has no "status" key.
type StatusRequest struct {
	Status *string `json:"status"`
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
