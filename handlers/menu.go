package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/cafedesk/pos-backend/models"
)

// MenuCatalog is the catalog surface the menu handler needs.
type MenuCatalog interface {
	ListAvailableProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, p models.Product, extras []models.ProductExtra) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch models.ProductPatch) (*models.Product, error)
	DisableProduct(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error)
	DisableCategory(ctx context.Context, id uuid.UUID) error
}

type MenuHandler struct {
	Catalog MenuCatalog
}

func (h *MenuHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.ListAvailableProducts(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *MenuHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *MenuHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	type extraInput struct {
		NameEN string           `json:"name_en"`
		NameAR *string          `json:"name_ar"`
		Price  *decimal.Decimal `json:"price"`
	}
	type request struct {
		CategoryID    *uuid.UUID      `json:"category_id"`
		NameEN        string          `json:"name_en"`
		NameAR        *string         `json:"name_ar"`
		DescriptionEN *string         `json:"description_en"`
		DescriptionAR *string         `json:"description_ar"`
		Price         decimal.Decimal `json:"price"`
		ImageURL      *string         `json:"image_url"`
		IsAvailable   *bool           `json:"is_available"`
		NutritionInfo json.RawMessage `json:"nutrition_info"`
		Allergens     json.RawMessage `json:"allergens"`
		Extras        []extraInput    `json:"extras"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NameEN == "" {
		respondMessage(w, http.StatusBadRequest, "name_en is required")
		return
	}
	if req.Price.IsNegative() {
		respondMessage(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	extras := make([]models.ProductExtra, 0, len(req.Extras))
	for _, ex := range req.Extras {
		if ex.NameEN == "" {
			respondMessage(w, http.StatusBadRequest, "extra name_en is required")
			return
		}
		price := decimal.Zero
		if ex.Price != nil {
			if ex.Price.IsNegative() {
				respondMessage(w, http.StatusBadRequest, "extra price must not be negative")
				return
			}
			price = *ex.Price
		}
		extras = append(extras, models.ProductExtra{
			NameEN: ex.NameEN,
			NameAR: ex.NameAR,
			Price:  price,
		})
	}

	product, err := h.Catalog.CreateProduct(r.Context(), models.Product{
		CategoryID:    req.CategoryID,
		NameEN:        req.NameEN,
		NameAR:        req.NameAR,
		DescriptionEN: req.DescriptionEN,
		DescriptionAR: req.DescriptionAR,
		Price:         req.Price,
		ImageURL:      req.ImageURL,
		IsAvailable:   available,
		NutritionInfo: req.NutritionInfo,
		Allergens:     req.Allergens,
	}, extras)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *MenuHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var patch models.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		respondMessage(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	product, err := h.Catalog.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *MenuHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.Catalog.DisableProduct(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "product disabled")
}

func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	type request struct {
		NameEN      string  `json:"name_en"`
		NameAR      *string `json:"name_ar"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NameEN == "" {
		respondMessage(w, http.StatusBadRequest, "name_en is required")
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	category, err := h.Catalog.CreateCategory(r.Context(), models.Category{
		NameEN:      req.NameEN,
		NameAR:      req.NameAR,
		Description: req.Description,
		IsActive:    active,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *MenuHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var patch models.CategoryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.Catalog.UpdateCategory(r.Context(), id, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.Catalog.DisableCategory(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "category disabled")
}
