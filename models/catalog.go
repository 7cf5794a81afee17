package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	NameEN      string    `db:"name_en" json:"name_en"`
	NameAR      *string   `db:"name_ar" json:"name_ar,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Product is never hard-deleted; disabling is_available keeps historical
// order snapshots pointing at a real row.
type Product struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	CategoryID    *uuid.UUID      `db:"category_id" json:"category_id,omitempty"`
	NameEN        string          `db:"name_en" json:"name_en"`
	NameAR        *string         `db:"name_ar" json:"name_ar,omitempty"`
	DescriptionEN *string         `db:"description_en" json:"description_en,omitempty"`
	DescriptionAR *string         `db:"description_ar" json:"description_ar,omitempty"`
	Price         decimal.Decimal `db:"price" json:"price"`
	ImageURL      *string         `db:"image_url" json:"image_url,omitempty"`
	IsAvailable   bool            `db:"is_available" json:"is_available"`
	NutritionInfo json.RawMessage `db:"nutrition_info" json:"nutrition_info,omitempty"`
	Allergens     json.RawMessage `db:"allergens" json:"allergens,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	Extras        []ProductExtra  `db:"-" json:"extras"`
}

type ProductExtra struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	ProductID uuid.UUID       `db:"product_id" json:"product_id"`
	NameEN    string          `db:"name_en" json:"name_en"`
	NameAR    *string         `db:"name_ar" json:"name_ar,omitempty"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

type CategoryPatch struct {
	NameEN      *string `json:"name_en"`
	NameAR      *string `json:"name_ar"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type ProductPatch struct {
	CategoryID    *uuid.UUID       `json:"category_id"`
	NameEN        *string          `json:"name_en"`
	NameAR        *string          `json:"name_ar"`
	DescriptionEN *string          `json:"description_en"`
	DescriptionAR *string          `json:"description_ar"`
	Price         *decimal.Decimal `json:"price"`
	ImageURL      *string          `json:"image_url"`
	IsAvailable   *bool            `json:"is_available"`
}

// CartItem is what a client submits when placing an order. It only lives for
// the duration of order creation; the ledger stores resolved snapshots instead.
type CartItem struct {
	ProductID uuid.UUID   `json:"product_id"`
	Quantity  int         `json:"quantity"`
	ExtraIDs  []uuid.UUID `json:"extras"`
	Note      *string     `json:"note"`
}
