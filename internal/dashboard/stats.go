// Package dashboard computes inventory aggregates and drives the product form.
package dashboard

import "github.com/Skotchmaster/shop_admin/internal/models"

// LowStockThreshold is the stock level below which a product is flagged.
const LowStockThreshold = 10

const (
	chartNameLimit     = 12
	unnamedLabel       = "Unnamed"
	uncategorizedLabel = "Uncategorized"
)

type Stats struct {
	TotalProducts int     `json:"totalProducts"`
	TotalStock    int     `json:"totalStock"`
	TotalValue    float64 `json:"totalValue"`
	LowStockCount int     `json:"lowStockCount"`
}

func IsLowStock(stock int) bool {
	return stock < LowStockThreshold
}

// Compute aggregates a snapshot of the catalog. It does no I/O.
func Compute(products []models.Product) Stats {
	s := Stats{TotalProducts: len(products)}
	for _, p := range products {
		s.TotalStock += p.Stock
		s.TotalValue += p.Price * float64(p.Stock)
		if IsLowStock(p.Stock) {
			s.LowStockCount++
		}
	}
	return s
}

type StockBar struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// StockByProduct feeds the per-product histogram.
func StockByProduct(products []models.Product) []StockBar {
	bars := make([]StockBar, 0, len(products))
	for _, p := range products {
		name := p.Name
		if r := []rune(name); len(r) > chartNameLimit {
			name = string(r[:chartNameLimit])
		}
		if name == "" {
			name = unnamedLabel
		}
		bars = append(bars, StockBar{Name: name, Stock: p.Stock})
	}
	return bars
}

type CategoryTotal struct {
	Category string `json:"category"`
	Stock    int    `json:"stock"`
}

// StockByCategory sums stock per category in order of first appearance.
func StockByCategory(products []models.Product) []CategoryTotal {
	var totals []CategoryTotal
	pos := map[string]int{}
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = uncategorizedLabel
		}
		i, ok := pos[cat]
		if !ok {
			i = len(totals)
			pos[cat] = i
			totals = append(totals, CategoryTotal{Category: cat})
		}
		totals[i].Stock += p.Stock
	}
	return totals
}

// Overview is everything the dashboard landing page shows.
type Overview struct {
	Stats      Stats           `json:"stats"`
	Products   []StockBar      `json:"products"`
	Categories []CategoryTotal `json:"categories"`
}

func NewOverview(products []models.Product) Overview {
	return Overview{
		Stats:      Compute(products),
		Products:   StockByProduct(products),
		Categories: StockByCategory(products),
	}
}
