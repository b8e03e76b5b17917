package dashboard

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/shop_admin/internal/models"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	products := []models.Product{
		{Name: "A", Price: 2.5, Stock: 4},
		{Name: "B", Price: 10, Stock: 10},
		{Name: "C", Price: 1, Stock: 9},
		{Name: "D", Price: 100, Stock: 0},
	}

	s := Compute(products)
	assert.Equal(t, 4, s.TotalProducts)
	assert.Equal(t, 23, s.TotalStock)
	assert.InDelta(t, 2.5*4+10*10+1*9, s.TotalValue, 1e-9)
	assert.Equal(t, 3, s.LowStockCount)
}

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Stats{}, Compute(nil))
}

func TestCompute_MatchesSums(t *testing.T) {
	t.Parallel()

	products := make([]models.Product, 50)
	var (
		wantStock int
		wantValue float64
		wantLow   int
	)
	for i := range products {
		p := models.Product{Price: gofakeit.Price(0.01, 999), Stock: gofakeit.Number(0, 40)}
		products[i] = p
		wantStock += p.Stock
		wantValue += p.Price * float64(p.Stock)
		if p.Stock < 10 {
			wantLow++
		}
	}

	s := Compute(products)
	assert.Equal(t, wantStock, s.TotalStock)
	assert.InDelta(t, wantValue, s.TotalValue, 1e-6)
	assert.Equal(t, wantLow, s.LowStockCount)
}

func TestIsLowStock(t *testing.T) {
	t.Parallel()

	assert.True(t, IsLowStock(9))
	assert.False(t, IsLowStock(10))
	assert.True(t, IsLowStock(0))
}

func TestStockByProduct(t *testing.T) {
	t.Parallel()

	bars := StockByProduct([]models.Product{
		{Name: "Ultra Wide Monitor 34in", Stock: 3},
		{Name: "", Stock: 1},
		{Name: "Café crème au lait", Stock: 2},
	})

	assert.Equal(t, []StockBar{
		{Name: "Ultra Wide M", Stock: 3},
		{Name: "Unnamed", Stock: 1},
		{Name: "Café crème a", Stock: 2},
	}, bars)
}

func TestStockByCategory(t *testing.T) {
	t.Parallel()

	totals := StockByCategory([]models.Product{
		{Category: "Books", Stock: 3},
		{Category: "", Stock: 2},
		{Category: "Toys", Stock: 1},
		{Category: "Books", Stock: 4},
	})

	assert.Equal(t, []CategoryTotal{
		{Category: "Books", Stock: 7},
		{Category: "Uncategorized", Stock: 2},
		{Category: "Toys", Stock: 1},
	}, totals)
}

func TestNewOverview(t *testing.T) {
	t.Parallel()

	o := NewOverview([]models.Product{{Name: "Lamp", Category: "Home", Price: 5, Stock: 2}})
	assert.Equal(t, 1, o.Stats.TotalProducts)
	assert.Len(t, o.Products, 1)
	assert.Len(t, o.Categories, 1)
}
