package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cafedesk/pos-backend/database"
	"github.com/cafedesk/pos-backend/models"
)

const productColumns = `id, category_id, name_en, name_ar, description_en, description_ar,
	price, image_url, is_available, nutrition_info, allergens, created_at`

// CatalogStore owns products, extras and categories. Reads have no side
// effects; unknown ids yield empty results.
type CatalogStore struct {
	db *database.DB
}

func NewCatalogStore(db *database.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// GetProducts returns the subset of known products matching ids, available
// or not; the caller decides what unavailability means.
func (s *CatalogStore) GetProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)`, uuidArray(ids))
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetExtras returns every extra belonging to the given products.
func (s *CatalogStore) GetExtras(ctx context.Context, productIDs []uuid.UUID) ([]models.ProductExtra, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, name_en, name_ar, price
		FROM product_extras
		WHERE product_id = ANY($1)`, uuidArray(productIDs))
	if err != nil {
		return nil, fmt.Errorf("query extras: %w", err)
	}
	defer rows.Close()

	return scanExtras(rows)
}

// ListAvailableProducts returns the customer-facing menu with extras attached.
func (s *CatalogStore) ListAvailableProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_available = TRUE
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	extras, err := s.GetExtras(ctx, ids)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[uuid.UUID][]models.ProductExtra)
	for _, ex := range extras {
		byProduct[ex.ProductID] = append(byProduct[ex.ProductID], ex)
	}
	for i := range products {
		products[i].Extras = byProduct[products[i].ID]
		if products[i].Extras == nil {
			products[i].Extras = []models.ProductExtra{}
		}
	}
	return products, nil
}

func (s *CatalogStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	extras, err := s.GetExtras(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	p.Extras = extras
	if p.Extras == nil {
		p.Extras = []models.ProductExtra{}
	}
	return p, nil
}

// CreateProduct inserts the product and its inline extras in one transaction.
func (s *CatalogStore) CreateProduct(ctx context.Context, p models.Product, extras []models.ProductExtra) (*models.Product, error) {
	txErr := s.db.Tx(func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO products
				(category_id, name_en, name_ar, description_en, description_ar,
				 price, image_url, is_available, nutrition_info, allergens)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id, created_at`,
			p.CategoryID, p.NameEN, p.NameAR, p.DescriptionEN, p.DescriptionAR,
			p.Price, p.ImageURL, p.IsAvailable, nullableJSON(p.NutritionInfo, "{}"), nullableJSON(p.Allergens, "[]")).
			Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		for i := range extras {
			extras[i].ProductID = p.ID
			err := tx.QueryRowContext(ctx, `
				INSERT INTO product_extras (product_id, name_en, name_ar, price)
				VALUES ($1,$2,$3,$4)
				RETURNING id`,
				extras[i].ProductID, extras[i].NameEN, extras[i].NameAR, extras[i].Price).
				Scan(&extras[i].ID)
			if err != nil {
				return fmt.Errorf("insert product extra: %w", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if extras == nil {
		extras = []models.ProductExtra{}
	}
	p.Extras = extras
	return &p, nil
}

func (s *CatalogStore) UpdateProduct(ctx context.Context, id uuid.UUID, patch models.ProductPatch) (*models.Product, error) {
	var b updateBuilder
	if patch.CategoryID != nil {
		b.set("category_id", *patch.CategoryID)
	}
	if patch.NameEN != nil {
		b.set("name_en", *patch.NameEN)
	}
	if patch.NameAR != nil {
		b.set("name_ar", *patch.NameAR)
	}
	if patch.DescriptionEN != nil {
		b.set("description_en", *patch.DescriptionEN)
	}
	if patch.DescriptionAR != nil {
		b.set("description_ar", *patch.DescriptionAR)
	}
	if patch.Price != nil {
		b.set("price", *patch.Price)
	}
	if patch.ImageURL != nil {
		b.set("image_url", *patch.ImageURL)
	}
	if patch.IsAvailable != nil {
		b.set("is_available", *patch.IsAvailable)
	}
	if b.empty() {
		return nil, ErrNothingToUpdate
	}

	query, args := b.build("products", id, productColumns)
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// DisableProduct soft-deletes; the row stays so historical order snapshots
// keep a valid reference.
func (s *CatalogStore) DisableProduct(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET is_available = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("disable product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *CatalogStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name_en, name_ar, description, is_active, created_at
		FROM categories
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.NameEN, &c.NameAR, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *CatalogStore) CreateCategory(ctx context.Context, c models.Category) (*models.Category, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name_en, name_ar, description, is_active)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`,
		c.NameEN, c.NameAR, c.Description, c.IsActive).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &c, nil
}

func (s *CatalogStore) UpdateCategory(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	var b updateBuilder
	if patch.NameEN != nil {
		b.set("name_en", *patch.NameEN)
	}
	if patch.NameAR != nil {
		b.set("name_ar", *patch.NameAR)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}
	if patch.IsActive != nil {
		b.set("is_active", *patch.IsActive)
	}
	if b.empty() {
		return nil, ErrNothingToUpdate
	}

	query, args := b.build("categories", id, "id, name_en, name_ar, description, is_active, created_at")
	var c models.Category
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&c.ID, &c.NameEN, &c.NameAR, &c.Description, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

func (s *CatalogStore) DisableCategory(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("disable category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var nutrition, allergens []byte
	err := row.Scan(&p.ID, &p.CategoryID, &p.NameEN, &p.NameAR, &p.DescriptionEN, &p.DescriptionAR,
		&p.Price, &p.ImageURL, &p.IsAvailable, &nutrition, &allergens, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.NutritionInfo = nutrition
	p.Allergens = allergens
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func scanExtras(rows *sql.Rows) ([]models.ProductExtra, error) {
	var extras []models.ProductExtra
	for rows.Next() {
		var ex models.ProductExtra
		if err := rows.Scan(&ex.ID, &ex.ProductID, &ex.NameEN, &ex.NameAR, &ex.Price); err != nil {
			return nil, fmt.Errorf("scan extra: %w", err)
		}
		extras = append(extras, ex)
	}
	return extras, rows.Err()
}

func nullableJSON(raw []byte, fallback string) []byte {
	if len(raw) == 0 {
		return []byte(fallback)
	}
	return raw
}
