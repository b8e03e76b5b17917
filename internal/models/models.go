package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"         json:"id"`
	Name        string    `gorm:"not null"                    bson:"name"        json:"name"`
	Description string    `gorm:"not null"                    bson:"description" json:"description"`
	Price       float64   `gorm:"not null"                    bson:"price"       json:"price"`
	Stock       int       `gorm:"not null;default:0"          bson:"stock"       json:"stock"`
	Category    string    `gorm:"not null;index"              bson:"category"    json:"category"`
	ImageURL    string    `gorm:"not null"                    bson:"imageUrl"    json:"imageUrl"`
	CreatedAt   time.Time `gorm:"not null"                    bson:"createdAt"   json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null"                    bson:"updatedAt"   json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Admin struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"       json:"id"`
	Name         string    `gorm:"not null"                    bson:"name"      json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"        bson:"email"     json:"email"`
	PasswordHash string    `gorm:"not null"                    bson:"password"  json:"-"`
	CreatedAt    time.Time `gorm:"not null"                    bson:"createdAt" json:"createdAt"`
}

func (a *Admin) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ProductFields are the business fields a client may set on a product.
type ProductFields struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
	ImageURL    string
}

func (f ProductFields) Apply(p *Product) {
	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.Stock = f.Stock
	p.Category = f.Category
	p.ImageURL = f.ImageURL
}

// Identity is what a session exposes about the signed-in admin.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
