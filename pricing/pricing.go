// Package pricing turns a submitted cart into an auditable price breakdown.
// A quote is a pure function of the catalog at the moment of resolution;
// nothing is cached between calls and no stale price is ever reused.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"github.com/cafedesk/pos-backend/models"
)

// VATRate is the fixed 15% rate applied to every order.
var VATRate = decimal.RequireFromString("0.15")

var ErrEmptyCart = errors.New("cart has no items")

// InvalidProductError names the cart reference that failed to resolve,
// either because the product does not exist or is no longer available.
type InvalidProductError struct {
	ProductID uuid.UUID
}

func (e InvalidProductError) Error() string {
	return fmt.Sprintf("invalid product %s", e.ProductID)
}

// InvalidQuantityError rejects non-positive quantities.
type InvalidQuantityError struct {
	ProductID uuid.UUID
	Quantity  int
}

func (e InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

// Catalog is the read-only product source. Unknown ids simply produce no
// rows; callers treat a missing row as invalid input, never as a free item.
type Catalog interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	GetExtras(ctx context.Context, productIDs []uuid.UUID) ([]models.ProductExtra, error)
}

// Line is one fully resolved cart line, ready to be persisted as an
// order item snapshot.
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	BasePrice   decimal.Decimal
	Quantity    int
	Extras      []models.ExtraSnapshot
	FinalPrice  decimal.Decimal
	Note        *string
}

// Quote is the subtotal/vat/total triple plus the resolved lines.
type Quote struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
	Lines    []Line
}

type Engine struct {
	catalog Catalog
}

func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Quote resolves and prices the cart against live catalog data. The whole
// cart is rejected if any line references an unknown or unavailable product
// or carries a non-positive quantity; every offending line is reported.
// Extra ids that do not belong to their product are silently dropped.
func (e *Engine) Quote(ctx context.Context, items []models.CartItem) (*Quote, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := e.catalog.GetProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	extras, err := e.catalog.GetExtras(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve extras: %w", err)
	}

	productByID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	extrasByProduct := make(map[uuid.UUID][]models.ProductExtra)
	for _, ex := range extras {
		extrasByProduct[ex.ProductID] = append(extrasByProduct[ex.ProductID], ex)
	}

	var invalid *multierror.Error
	subtotal := decimal.Zero
	lines := make([]Line, 0, len(items))

	for _, item := range items {
		if item.Quantity <= 0 {
			invalid = multierror.Append(invalid, InvalidQuantityError{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
			continue
		}

		product, ok := productByID[item.ProductID]
		if !ok || !product.IsAvailable {
			invalid = multierror.Append(invalid, InvalidProductError{ProductID: item.ProductID})
			continue
		}

		selected := resolveExtras(item.ExtraIDs, extrasByProduct[product.ID])

		final := product.Price
		for _, ex := range selected {
			final = final.Add(ex.Price)
		}
		subtotal = subtotal.Add(final.Mul(decimal.NewFromInt(int64(item.Quantity))))

		lines = append(lines, Line{
			ProductID:   product.ID,
			ProductName: product.NameEN,
			BasePrice:   product.Price,
			Quantity:    item.Quantity,
			Extras:      selected,
			FinalPrice:  final,
			Note:        item.Note,
		})
	}

	if err := invalid.ErrorOrNil(); err != nil {
		return nil, err
	}

	vat := subtotal.Mul(VATRate).Round(2)
	return &Quote{
		Subtotal: subtotal,
		VAT:      vat,
		Total:    subtotal.Add(vat),
		Lines:    lines,
	}, nil
}

func resolveExtras(requested []uuid.UUID, available []models.ProductExtra) []models.ExtraSnapshot {
	selected := make([]models.ExtraSnapshot, 0, len(requested))
	for _, id := range requested {
		for _, ex := range available {
			if ex.ID == id {
				selected = append(selected, models.ExtraSnapshot{
					ID:    ex.ID,
					Name:  ex.NameEN,
					Price: ex.Price,
				})
				break
			}
		}
	}
	return selected
}
