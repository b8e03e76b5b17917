package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("image host is not configured")

// File is one uploaded part as received from the browser.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type Client struct {
	baseURL      string
	cloudName    string
	uploadPreset string
	httpClient   *http.Client
}

func NewClient(baseURL, cloudName, uploadPreset string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.cloudName != ""
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload forwards the file and any extra form fields to the image host and
// returns the public https URL it reports.
func (c *Client) Upload(ctx context.Context, f File, fields map[string]string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if c.uploadPreset != "" {
		if _, ok := fields["upload_preset"]; !ok {
			if err := mw.WriteField("upload_preset", c.uploadPreset); err != nil {
				return "", fmt.Errorf("write field: %w", err)
			}
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write field: %w", err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	if f.ContentType != "" {
		h.Set("Content-Type", f.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create part: %w", err)
	}
	if _, err := io.Copy(part, f.Body); err != nil {
		return "", fmt.Errorf("copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.cloudName+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var result uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, msg)
	}
	if result.SecureURL == "" {
		return "", errors.New("upload response has no secure_url")
	}
	return result.SecureURL, nil
}
