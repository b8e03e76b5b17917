package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/transport"
	"github.com/Skotchmaster/shop_admin/internal/upload"
)

type UploadHTTP struct {
	Client *upload.Client
}

// Upload relays one multipart file to the image host and returns its URL.
func (h *UploadHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.upload")

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn("upload_error", "status", 400, "reason", "no file", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}

	src, err := fh.Open()
	if err != nil {
		l.Error("upload_error", "status", 500, "reason", "cannot open file", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload image")
	}
	defer src.Close()

	fields := map[string]string{}
	if form, err := c.MultipartForm(); err == nil {
		for k, v := range form.Value {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
	}

	url, err := h.Client.Upload(ctx, upload.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        src,
	}, fields)
	if err != nil {
		l.Error("upload_error", "status", 500, "reason", "image host failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload image")
	}

	l.Info("upload_success", "size", fh.Size)
	return c.JSON(http.StatusOK, transport.UploadResponse{URL: url})
}
