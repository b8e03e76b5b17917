package webadmin

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/dashboard"
	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/service"
	"github.com/Skotchmaster/shop_admin/internal/upload"
	"github.com/Skotchmaster/shop_admin/internal/validation"
)

const (
	imageField    = "imageFile"
	maxImageBytes = 10 << 20
)

var errNotImage = errors.New("Please choose an image file")

func (a *Admin) handleNewProduct(c echo.Context) error {
	return a.renderForm(c, http.StatusOK, dashboard.NewProductForm(), "")
}

func (a *Admin) handleEditProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	p, err := a.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/dashboard?notice=notfound")
		}
		logging.FromContext(ctx).Error("edit_product_error", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch product")
	}
	return a.renderForm(c, http.StatusOK, dashboard.FormFromProduct(*p), id)
}

func (a *Admin) handleNewProductStep(c echo.Context) error {
	return a.productStep(c, "")
}

func (a *Admin) handleEditProductStep(c echo.Context) error {
	return a.productStep(c, c.Param("id"))
}

// productStep applies one transition of the product form. An empty id
// creates a product on submit, otherwise the product with that id is updated.
func (a *Admin) productStep(c echo.Context, id string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webadmin.product_form", "admin_id", identityOf(c).ID)

	f := formFromRequest(c)

	switch c.FormValue("action") {
	case "back":
		f.Back()
		return a.renderForm(c, http.StatusOK, f, id)
	case "submit":
	default:
		if !f.Next() {
			return a.renderForm(c, http.StatusBadRequest, f, id)
		}
		return a.renderForm(c, http.StatusOK, f, id)
	}

	if f.IsLast() {
		imageURL, err := a.imageFromRequest(c)
		if err != nil {
			l.Warn("product_image_error", "status", 400, "error", err)
			f.Errors = map[string]string{"imageUrl": imageErrorMessage(err)}
			return a.renderForm(c, http.StatusBadRequest, f, id)
		}
		if imageURL != "" {
			f.ImageURL = imageURL
		}
	}

	fields, err := f.Submit()
	if err != nil {
		return a.renderForm(c, http.StatusBadRequest, f, id)
	}

	op, notice := "update", "updated"
	if id == "" {
		op, notice = "create", "created"
		id, err = a.catalog.CreateProduct(ctx, fields)
	} else {
		err = a.catalog.UpdateProduct(ctx, id, fields)
	}
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			applyServerErrors(f, verrs)
			return a.renderForm(c, http.StatusBadRequest, f, id)
		case errors.Is(err, service.ErrNotFound):
			return c.Redirect(http.StatusSeeOther, "/dashboard?notice=notfound")
		default:
			l.Error("save_product_error", "status", 500, "reason", "cannot save product", "error", err)
			f.Errors = map[string]string{"form": "Failed to save product"}
			return a.renderForm(c, http.StatusInternalServerError, f, id)
		}
	}

	a.metrics.ProductWrite(op)
	l.Info("save_product_success", "product_id", id, "op", op)
	return c.Redirect(http.StatusSeeOther, "/dashboard?notice="+notice)
}

func (a *Admin) handleDeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := a.catalog.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/dashboard?notice=notfound")
		}
		logging.FromContext(ctx).Error("delete_product_error", "status", 500, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete product")
	}

	a.metrics.ProductWrite("delete")
	return c.Redirect(http.StatusSeeOther, "/dashboard?notice=deleted")
}

func (a *Admin) renderForm(c echo.Context, status int, f *dashboard.ProductForm, id string) error {
	title, action := "New Product", "/dashboard/products/new"
	if id != "" {
		title, action = "Edit Product", "/dashboard/products/"+id+"/edit"
	}

	return a.render(c, status, pageProductForm, productFormData{
		pageData:      a.page(c, title),
		Form:          f,
		Action:        action,
		Editing:       id != "",
		Steps:         stepItems(f.Step),
		Categories:    dashboard.Categories,
		OtherCategory: dashboard.OtherCategory,
		HostedUploads: a.uploads != nil && a.uploads.Enabled(),
	})
}

func formFromRequest(c echo.Context) *dashboard.ProductForm {
	f := dashboard.NewProductForm()
	f.Step = dashboard.ParseStep(c.FormValue("step"))
	f.Name = c.FormValue("name")
	f.Description = c.FormValue("description")
	f.Price = c.FormValue("price")
	f.Stock = c.FormValue("stock")
	f.Category = c.FormValue("category")
	f.CustomCategory = c.FormValue("customCategory")
	f.ImageURL = strings.TrimSpace(c.FormValue("imageUrl"))
	return f
}

// imageFromRequest turns an uploaded image into a URL: hosted when the image
// host is configured, otherwise an embedded data URL. No file yields "".
func (a *Admin) imageFromRequest(c echo.Context) (string, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	if fh.Size == 0 {
		return "", nil
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return "", errNotImage
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if a.uploads != nil && a.uploads.Enabled() {
		return a.uploads.Upload(c.Request().Context(), upload.File{Name: fh.Filename, ContentType: contentType, Body: src}, nil)
	}

	data, err := io.ReadAll(io.LimitReader(src, maxImageBytes))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

func imageErrorMessage(err error) string {
	if errors.Is(err, errNotImage) {
		return errNotImage.Error()
	}
	return "Failed to upload image"
}

// applyServerErrors moves the form back to the first step the server rejected.
func applyServerErrors(f *dashboard.ProductForm, verrs validation.Errors) {
	f.Errors = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		f.Errors[fe.Field] = fe.Message
	}
	if len(verrs) > 0 {
		f.Step = dashboard.StepOf(verrs[0].Field)
	}
}
