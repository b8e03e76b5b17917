package dashboard

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Skotchmaster/shop_admin/internal/models"
)

type Step string

const (
	StepDetails Step = "details"
	StepPricing Step = "pricing"
	StepImage   Step = "image"
)

var steps = []Step{StepDetails, StepPricing, StepImage}

var stepTitles = map[Step]string{
	StepDetails: "Basic Information",
	StepPricing: "Pricing & Inventory",
	StepImage:   "Product Image",
}

const OtherCategory = "Other"

// Categories offered in the category picker. OtherCategory enables free text.
var Categories = []string{"Electronics", "Clothing", "Food", "Books", "Toys", "Home", OtherCategory}

var (
	ErrNotFinalStep = errors.New("form can only be submitted from the image step")
	ErrInvalidStep  = errors.New("form step is invalid")
)

// ProductForm holds the raw inputs of the multi-step product editor and the
// step the user is on. Values stay as typed until Submit converts them.
type ProductForm struct {
	Step           Step
	Name           string
	Description    string
	Price          string
	Stock          string
	Category       string
	CustomCategory string
	ImageURL       string

	Errors map[string]string
}

func NewProductForm() *ProductForm {
	return &ProductForm{Step: StepDetails, Errors: map[string]string{}}
}

// FormFromProduct pre-fills the editor for an existing product.
func FormFromProduct(p models.Product) *ProductForm {
	f := NewProductForm()
	f.Name = p.Name
	f.Description = p.Description
	f.Price = strconv.FormatFloat(p.Price, 'f', -1, 64)
	f.Stock = strconv.Itoa(p.Stock)
	f.ImageURL = p.ImageURL

	switch {
	case p.Category == "":
	case IsPredefinedCategory(p.Category):
		f.Category = p.Category
	default:
		f.Category = OtherCategory
		f.CustomCategory = p.Category
	}
	return f
}

func IsPredefinedCategory(c string) bool {
	return c != OtherCategory && slices.Contains(Categories, c)
}

func ParseStep(s string) Step {
	for _, st := range steps {
		if string(st) == s {
			return st
		}
	}
	return StepDetails
}

func (s Step) Title() string { return stepTitles[s] }

// Number is the 1-based position of the step.
func (s Step) Number() int { return slices.Index(steps, s) + 1 }

func StepCount() int { return len(steps) }

// Steps returns the form steps in order.
func Steps() []Step { return slices.Clone(steps) }

func (f *ProductForm) IsFirst() bool { return f.Step == StepDetails }
func (f *ProductForm) IsLast() bool  { return f.Step == StepImage }

// Validate checks only the fields owned by step and records the messages.
func (f *ProductForm) Validate(step Step) bool {
	errs := map[string]string{}

	switch step {
	case StepDetails:
		switch {
		case strings.TrimSpace(f.Name) == "":
			errs["name"] = "Name is required"
		case len([]rune(f.Name)) < 3:
			errs["name"] = "Name must be at least 3 characters"
		}
		switch {
		case strings.TrimSpace(f.Description) == "":
			errs["description"] = "Description is required"
		case len([]rune(f.Description)) < 10:
			errs["description"] = "Description must be at least 10 characters"
		}

	case StepPricing:
		if strings.TrimSpace(f.Price) == "" {
			errs["price"] = "Price is required"
		} else if v, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			errs["price"] = "Price must be a number"
		} else if v <= 0 {
			errs["price"] = "Price must be greater than 0"
		}

		if strings.TrimSpace(f.Stock) == "" {
			errs["stock"] = "Stock is required"
		} else if v, err := strconv.Atoi(strings.TrimSpace(f.Stock)); err != nil {
			errs["stock"] = "Stock must be a whole number"
		} else if v < 0 {
			errs["stock"] = "Stock cannot be negative"
		}

		switch {
		case strings.TrimSpace(f.Category) == "":
			errs["category"] = "Category is required"
		case f.Category == OtherCategory && strings.TrimSpace(f.CustomCategory) == "":
			errs["category"] = "Please enter a custom category"
		}

	case StepImage:
		if strings.TrimSpace(f.ImageURL) == "" {
			errs["imageUrl"] = "Image is required"
		}
	}

	f.Errors = errs
	return len(errs) == 0
}

// Next advances one step when the current step is valid.
func (f *ProductForm) Next() bool {
	if f.IsLast() || !f.Validate(f.Step) {
		return false
	}
	f.Step = steps[f.Step.Number()]
	return true
}

// Back moves one step back without validating.
func (f *ProductForm) Back() {
	f.Errors = map[string]string{}
	if i := f.Step.Number() - 1; i > 0 {
		f.Step = steps[i-1]
	}
}

// Submit validates every step, not only the one the client claims to be on,
// and converts the inputs to product fields. On failure the form is moved to
// the first invalid step.
func (f *ProductForm) Submit() (models.ProductFields, error) {
	if !f.IsLast() {
		return models.ProductFields{}, ErrNotFinalStep
	}
	for _, st := range steps {
		if !f.Validate(st) {
			f.Step = st
			return models.ProductFields{}, fmt.Errorf("%w: %s", ErrInvalidStep, st)
		}
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		f.Step = StepPricing
		return models.ProductFields{}, fmt.Errorf("parse price: %w", err)
	}
	stock, err := strconv.Atoi(strings.TrimSpace(f.Stock))
	if err != nil {
		f.Step = StepPricing
		return models.ProductFields{}, fmt.Errorf("parse stock: %w", err)
	}
	category := f.Category
	if category == OtherCategory {
		category = strings.TrimSpace(f.CustomCategory)
	}

	return models.ProductFields{
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Stock:       stock,
		Category:    category,
		ImageURL:    f.ImageURL,
	}, nil
}

// StepOf reports which step owns a field, so server-side errors can send the
// user back to the right place.
func StepOf(field string) Step {
	switch field {
	case "name", "description":
		return StepDetails
	case "price", "stock", "category":
		return StepPricing
	default:
		return StepImage
	}
}
