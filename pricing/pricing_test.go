package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/pos-backend/models"
)

// fakeCatalog implements Catalog over fixed slices; unknown ids produce no
// rows, mirroring the store contract.
type fakeCatalog struct {
	products []models.Product
	extras   []models.ProductExtra
	err      error
}

func (f *fakeCatalog) GetProducts(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Product
	for _, p := range f.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetExtras(_ context.Context, productIDs []uuid.UUID) ([]models.ProductExtra, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ProductExtra
	for _, ex := range f.extras {
		for _, id := range productIDs {
			if ex.ProductID == id {
				out = append(out, ex)
				break
			}
		}
	}
	return out, nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestQuote_LatteWithOatMilk(t *testing.T) {
	latteID := uuid.New()
	oatMilkID := uuid.New()
	catalog := &fakeCatalog{
		products: []models.Product{
			{ID: latteID, NameEN: "Latte", Price: price("4.00"), IsAvailable: true},
		},
		extras: []models.ProductExtra{
			{ID: oatMilkID, ProductID: latteID, NameEN: "Oat Milk", Price: price("0.50")},
		},
	}
	engine := NewEngine(catalog)

	quote, err := engine.Quote(context.Background(), []models.CartItem{
		{ProductID: latteID, Quantity: 2, ExtraIDs: []uuid.UUID{oatMilkID}},
	})
	require.NoError(t, err)

	assert.True(t, quote.Subtotal.Equal(price("9.00")), "subtotal = %s", quote.Subtotal)
	assert.True(t, quote.VAT.Equal(price("1.35")), "vat = %s", quote.VAT)
	assert.True(t, quote.Total.Equal(price("10.35")), "total = %s", quote.Total)

	require.Len(t, quote.Lines, 1)
	line := quote.Lines[0]
	assert.Equal(t, "Latte", line.ProductName)
	assert.True(t, line.BasePrice.Equal(price("4.00")))
	assert.True(t, line.FinalPrice.Equal(price("4.50")))
	assert.Equal(t, 2, line.Quantity)
	require.Len(t, line.Extras, 1)
	assert.Equal(t, "Oat Milk", line.Extras[0].Name)
	assert.True(t, line.Extras[0].Price.Equal(price("0.50")))
}

func TestQuote_TotalInvariant(t *testing.T) {
	productID := uuid.New()
	catalog := &fakeCatalog{
		products: []models.Product{
			{ID: productID, NameEN: "Mocha", Price: price("3.33"), IsAvailable: true},
		},
	}
	engine := NewEngine(catalog)

	quote, err := engine.Quote(context.Background(), []models.CartItem{
		{ProductID: productID, Quantity: 3},
	})
	require.NoError(t, err)

	expectedVAT := quote.Subtotal.Mul(VATRate).Round(2)
	assert.True(t, quote.VAT.Equal(expectedVAT))
	assert.True(t, quote.Total.Equal(quote.Subtotal.Add(quote.VAT)))
}

func TestQuote_EmptyCart(t *testing.T) {
	engine := NewEngine(&fakeCatalog{})

	_, err := engine.Quote(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestQuote_UnknownProductRejectsWholeOrder(t *testing.T) {
	knownID := uuid.New()
	unknownID := uuid.New()
	catalog := &fakeCatalog{
		products: []models.Product{
			{ID: knownID, NameEN: "Espresso", Price: price("2.50"), IsAvailable: true},
		},
	}
	engine := NewEngine(catalog)

	quote, err := engine.Quote(context.Background(), []models.CartItem{
		{ProductID: knownID, Quantity: 1},
		{ProductID: unknownID, Quantity: 1},
	})
	require.Error(t, err)
	assert.Nil(t, quote)

	var invalid InvalidProductError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, unknownID, invalid.ProductID)
}

func TestQuote_UnavailableProductRejected(t *testing.T) {
	productID := uuid.New()
	catalog := &fakeCatalog{
		products: []models.Product{
			{ID: productID, NameEN: "Seasonal Latte", Price: price("5.00"), IsAvailable: false},
		},
	}
	engine := NewEngine(catalog)

	_, err := engine.Quote(context.Background(), []models.CartItem{
		{ProductID: productID, Quantity: 1},
	})
	var invalid InvalidProductError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, productID, invalid.ProductID)
}

func TestQuote_NonPositiveQuantityRejected(t *testing.T) {
	productID := uuid.New()
	catalog := &fakeCatalog{
		products: []models.Product{
			{ID: productID, NameEN: "Flat White", Price: price("4.20"), IsAvailable: true},
		},
	}
	engine := NewEngine(catalog)

	for _, qty := range []int{0, -1} {
		_, err := engine.Quote(context.Background(), []models.CartItem{
			{ProductID: productID, Quantity: qty},
		})
		var invalid InvalidQuantityError
		require.ErrorAs(t, err, &invalid, "quantity %d", qty)
		assert.Equal(t, qty, invalid.Quantity)
	}
}

func TestQuote_ReportsEveryInvalidLine(t *testing.T) {
	productID := uuid.New()
	missingID := uuid.New()
	catalog := &fakeCatalog{
		products: []models.Product{
			{ID: productID, NameEN: "Americano", Price: price("3.00"), IsAvailable: true},
		},
	}
	engine := NewEngine(catalog)

	_, err := engine.Quote(context.Background(), []models.CartItem{
		{ProductID: productID, Quantity: 0},
		{ProductID: missingID, Quantity: 1},
	})
	require.Error(t, err)

	var invalidQty InvalidQuantityError
	var invalidProduct InvalidProductError
	assert.ErrorAs(t, err, &invalidQty)
	assert.ErrorAs(t, err, &invalidProduct)
}

func TestQuote_UnresolvableExtraSilentlyDropped(t *testing.T) {
	latteID := uuid.New()
	otherProductID := uuid.New()
	foreignExtraID := uuid.New()
	catalog := &fakeCatalog{
		products: []models.Product{
			{ID: latteID, NameEN: "Latte", Price: price("4.00"), IsAvailable: true},
		},
		extras: []models.ProductExtra{
			// belongs to a different product, must not price into the latte
			{ID: foreignExtraID, ProductID: otherProductID, NameEN: "Whipped Cream", Price: price("0.75")},
		},
	}
	engine := NewEngine(catalog)

	quote, err := engine.Quote(context.Background(), []models.CartItem{
		{ProductID: latteID, Quantity: 1, ExtraIDs: []uuid.UUID{foreignExtraID, uuid.New()}},
	})
	require.NoError(t, err)

	assert.True(t, quote.Subtotal.Equal(price("4.00")))
	assert.Empty(t, quote.Lines[0].Extras)
}

func TestQuote_CatalogFailurePropagates(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("connection refused")}
	engine := NewEngine(catalog)

	_, err := engine.Quote(context.Background(), []models.CartItem{
		{ProductID: uuid.New(), Quantity: 1},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyCart)
}
