package webadmin

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/dashboard"
	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/models"
)

const (
	pageLogin       = "login"
	pageDashboard   = "dashboard"
	pageProductForm = "product_form"
	pageAdmins      = "admins"
)

var templateFuncs = template.FuncMap{
	"money":    func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"imageSrc": imageSrc,
}

// imageSrc lets inline data images through the template URL filter.
func imageSrc(u string) template.URL {
	if strings.HasPrefix(u, "data:image/") || strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
		return template.URL(u)
	}
	return ""
}

type pageData struct {
	Title     string
	User      *models.Identity
	CSRFToken string
	Notice    string
	Error     string
}

type loginData struct {
	pageData
	Email string
}

type productRow struct {
	models.Product
	LowStock bool
}

type chartBar struct {
	Label   string
	Value   int
	Percent int
}

type dashboardData struct {
	pageData
	Stats         dashboard.Stats
	Threshold     int
	Products      []productRow
	StockChart    []chartBar
	CategoryChart []chartBar
}

type stepItem struct {
	Number  int
	Title   string
	Current bool
	Done    bool
}

type productFormData struct {
	pageData
	Form          *dashboard.ProductForm
	Action        string
	Editing       bool
	Steps         []stepItem
	Categories    []string
	OtherCategory string
	HostedUploads bool
}

type adminsData struct {
	pageData
	Name  string
	Email string
}

func parsePages() map[string]*template.Template {
	pages := map[string]*template.Template{}
	for _, name := range []string{pageLogin, pageDashboard, pageProductForm, pageAdmins} {
		pages[name] = template.Must(template.New("base.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/base.html", "templates/"+name+".html"))
	}
	return pages
}

func (a *Admin) render(c echo.Context, status int, page string, data any) error {
	tmpl, ok := a.pages[page]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logging.FromContext(c.Request().Context()).Error("render_page_failed", "page", page, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.HTMLBlob(status, buf.Bytes())
}

func newDashboardData(products []models.Product) dashboardData {
	overview := dashboard.NewOverview(products)

	rows := make([]productRow, len(products))
	for i, p := range products {
		rows[i] = productRow{Product: p, LowStock: dashboard.IsLowStock(p.Stock)}
	}

	stock := make([]chartBar, len(overview.Products))
	for i, b := range overview.Products {
		stock[i] = chartBar{Label: b.Name, Value: b.Stock}
	}
	categories := make([]chartBar, len(overview.Categories))
	for i, ct := range overview.Categories {
		categories[i] = chartBar{Label: ct.Category, Value: ct.Stock}
	}

	return dashboardData{
		Stats:         overview.Stats,
		Threshold:     dashboard.LowStockThreshold,
		Products:      rows,
		StockChart:    scaleBars(stock),
		CategoryChart: scaleBars(categories),
	}
}

// scaleBars sets Percent relative to the largest value.
func scaleBars(bars []chartBar) []chartBar {
	maxValue := 0
	for _, b := range bars {
		maxValue = max(maxValue, b.Value)
	}
	if maxValue <= 0 {
		return bars
	}
	for i := range bars {
		if bars[i].Value > 0 {
			bars[i].Percent = bars[i].Value * 100 / maxValue
		}
	}
	return bars
}

func stepItems(current dashboard.Step) []stepItem {
	steps := dashboard.Steps()
	items := make([]stepItem, len(steps))
	for i, s := range steps {
		items[i] = stepItem{
			Number:  s.Number(),
			Title:   s.Title(),
			Current: s == current,
			Done:    s.Number() < current.Number(),
		}
	}
	return items
}
