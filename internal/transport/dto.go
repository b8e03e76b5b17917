package transport

import (
	"time"

	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/validation"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type ErrorResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

type SessionResponse struct {
	User    models.Identity `json:"user"`
	Expires time.Time       `json:"expires"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Products []models.Product `json:"products"`
}

type AdminsCountResponse struct {
	Count   int64  `json:"count"`
	SiteURL string `json:"siteUrl"`
}
