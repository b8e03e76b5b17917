// Package validation is the server-side gate for product payloads.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/shop_admin/internal/models"
)

var ErrMalformed = errors.New("request body must be a JSON object")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors lists every violated field, in schema order.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

type productSchema struct {
	Name        string  `json:"name"        validate:"min=3"`
	Description string  `json:"description" validate:"min=10"`
	Price       float64 `json:"price"       validate:"gt=0"`
	Stock       int     `json:"stock"       validate:"gte=0"`
	Category    string  `json:"category"    validate:"required"`
	ImageURL    string  `json:"imageUrl"    validate:"required,url"`
}

var fieldOrder = []string{"name", "description", "price", "stock", "category", "imageUrl"}

var messages = map[string]string{
	"name":        "Name must be at least 3 characters",
	"description": "Description must be at least 10 characters",
	"price":       "Price must be greater than 0",
	"stock":       "Stock cannot be negative",
	"category":    "Category is required",
	"imageUrl":    "Must be a valid URL",
}

var typeMessages = map[string]string{
	"name":        "Name must be a string",
	"description": "Description must be a string",
	"price":       "Price must be a number",
	"stock":       "Stock must be an integer",
	"category":    "Category must be a string",
	"imageUrl":    "Image URL must be a string",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeProduct parses a JSON object into product fields. Unknown keys and
// wrongly typed values are reported alongside rule violations.
func DecodeProduct(data []byte) (models.ProductFields, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return models.ProductFields{}, ErrMalformed
	}

	var (
		s       productSchema
		typeErr = map[string]bool{}
	)
	str := func(key string, dst *string) {
		v, ok := raw[key]
		if !ok {
			return
		}
		if err := json.Unmarshal(v, dst); err != nil || isNull(v) {
			typeErr[key] = true
		}
	}
	str("name", &s.Name)
	str("description", &s.Description)
	str("category", &s.Category)
	str("imageUrl", &s.ImageURL)

	if v, ok := raw["price"]; ok {
		if f, err := number(v); err == nil {
			s.Price = f
		} else {
			typeErr["price"] = true
		}
	} else {
		typeErr["price"] = true
	}

	if v, ok := raw["stock"]; ok {
		f, err := number(v)
		if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
			typeErr["stock"] = true
		} else {
			s.Stock = int(f)
		}
	} else {
		typeErr["stock"] = true
	}

	errs := check(s, typeErr)

	var unknown []string
	for k := range raw {
		if _, ok := messages[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		errs = append(errs, FieldError{Field: k, Message: "Unknown field"})
	}

	if len(errs) > 0 {
		return models.ProductFields{}, errs
	}
	return s.fields(), nil
}

// Product checks already typed fields against the same rules.
func Product(f models.ProductFields) error {
	s := productSchema{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Stock:       f.Stock,
		Category:    f.Category,
		ImageURL:    f.ImageURL,
	}
	if errs := check(s, nil); len(errs) > 0 {
		return errs
	}
	return nil
}

func check(s productSchema, typeErr map[string]bool) Errors {
	failed := map[string]bool{}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Errors{{Field: "body", Message: err.Error()}}
		}
		for _, fe := range verrs {
			failed[fe.Field()] = true
		}
	}

	var errs Errors
	for _, field := range fieldOrder {
		switch {
		case typeErr[field]:
			errs = append(errs, FieldError{Field: field, Message: typeMessages[field]})
		case failed[field]:
			errs = append(errs, FieldError{Field: field, Message: messages[field]})
		}
	}
	return errs
}

func (s productSchema) fields() models.ProductFields {
	return models.ProductFields{
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Stock:       s.Stock,
		Category:    s.Category,
		ImageURL:    s.ImageURL,
	}
}

func number(v json.RawMessage) (float64, error) {
	var f float64
	if isNull(v) {
		return 0, fmt.Errorf("null")
	}
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return f, nil
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}
