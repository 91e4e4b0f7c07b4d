// Package legacy is the HTTP client of the legacy campaign backend, which owns
// the image gallery and the account's editor settings.
package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/campaign-editor/internal/model"
)

var ErrUnexpectedStatus = errors.New("unexpected status from legacy backend")

const (
	PathImageGallery   = "/Campaigns/Editor/GetImageGallery"
	PathUploadImage    = "/Campaigns/Editor/UploadImage"
	PathEditorSettings = "/Campaigns/Editor/GetSettings"

	// GalleryPageSize is the number of images requested per gallery page.
	GalleryPageSize = 50

	galleryDateLayout = "01/02/2006 03:04:05 PM"
	uploadField       = "file"
)

type Client struct {
	httpClient *http.Client
	baseURL    string

	sessionName  string
	sessionValue string

	log zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithSessionCookie forwards the given cookie on every request.
func WithSessionCookie(name, value string) Option {
	return func(c *Client) {
		c.sessionName = name
		c.sessionValue = value
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GalleryPage is one page of the remote gallery. An empty Continuation means
// there are no more pages.
type GalleryPage struct {
	Items        []model.ImageItem
	Continuation string
}

type galleryResponse struct {
	Images []galleryImage `json:"images"`
	Count  int            `json:"count"`
}

type galleryImage struct {
	Name             string `json:"name"`
	LastModifiedDate string `json:"lastModifiedDate"`
	Size             string `json:"size"`
	Type             string `json:"type"`
	URL              string `json:"url"`
	ThumbnailURL     string `json:"thumbnailUrl"`
	ThumbnailURL150  string `json:"thumbnailUrl150"`
}

func (img galleryImage) item() (model.ImageItem, error) {
	modified, err := time.ParseInLocation(galleryDateLayout, img.LastModifiedDate, time.UTC)
	if err != nil {
		return model.ImageItem{}, fmt.Errorf("image %q: bad lastModifiedDate: %w", img.Name, err)
	}
	size, err := strconv.ParseInt(img.Size, 10, 64)
	if err != nil {
		return model.ImageItem{}, fmt.Errorf("image %q: bad size: %w", img.Name, err)
	}

	return model.ImageItem{
		Name:             img.Name,
		Extension:        img.Type,
		LastModifiedDate: modified,
		Size:             size,
		URL:              img.URL,
		ThumbnailURL:     img.ThumbnailURL,
		ThumbnailURL150:  img.ThumbnailURL150,
	}, nil
}

// GalleryPath builds the gallery request path for a search term and a
// continuation (the position of the first image, "0" when empty).
func GalleryPath(searchTerm, continuation string) string {
	if continuation == "" {
		continuation = "0"
	}
	return fmt.Sprintf("%s?offset=%d&position=%s&query=%s&sortingCriteria=DATE",
		PathImageGallery, GalleryPageSize, EncodeURIComponent(continuation), EncodeURIComponent(searchTerm))
}

func (c *Client) GetImageGallery(ctx context.Context, searchTerm, continuation string) (GalleryPage, error) {
	position := 0
	if continuation != "" {
		p, err := strconv.Atoi(continuation)
		if err != nil || p < 0 {
			return GalleryPage{}, fmt.Errorf("invalid gallery continuation %q", continuation)
		}
		position = p
	}

	var resp galleryResponse
	if err := c.getJSON(ctx, GalleryPath(searchTerm, continuation), &resp); err != nil {
		return GalleryPage{}, err
	}

	page := GalleryPage{Items: make([]model.ImageItem, 0, len(resp.Images))}
	for _, img := range resp.Images {
		item, err := img.item()
		if err != nil {
			return GalleryPage{}, err
		}
		page.Items = append(page.Items, item)
	}

	next := position + len(page.Items)
	more := len(page.Items) == GalleryPageSize
	if resp.Count > 0 {
		more = len(page.Items) > 0 && next < resp.Count
	}
	if more {
		page.Continuation = strconv.Itoa(next)
	}

	return page, nil
}

// UploadImage posts an image to the gallery as a multipart form.
func (c *Client) UploadImage(ctx context.Context, name string, r io.Reader) error {
	body, contentType := multipartBody(name, r)

	req, err := c.newRequest(ctx, http.MethodPost, PathUploadImage, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode upload response: %w", err)
	}
	if result.Success != nil && !*result.Success {
		return fmt.Errorf("upload of %q rejected: %s", name, result.Message)
	}

	c.log.Debug().Str("name", name).Msg("Image uploaded")
	return nil
}

func (c *Client) GetEditorSettings(ctx context.Context) (model.EditorSettings, error) {
	var settings model.EditorSettings
	if err := c.getJSON(ctx, PathEditorSettings, &settings); err != nil {
		return model.EditorSettings{}, err
	}
	return settings, nil
}

func multipartBody(name string, r io.Reader) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(uploadField, name)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.sessionValue != "" {
		req.AddCookie(&http.Cookie{Name: c.sessionName, Value: c.sessionValue})
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Legacy request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s %s: %d %s",
			ErrUnexpectedStatus, req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
